// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package main is the entry point for the Curator server.

Curator serves personalized content recommendations built from user-based
and item-based collaborative filtering and content-feature similarity,
reranked by popularity, freshness, engagement and creator reputation.

# Application Architecture

Long-running components run under a Suture v4 supervision tree:

	Root ("curator")
	├── pipeline-layer
	│   └── trainer (periodic similarity snapshot)
	├── messaging-layer
	│   └── interaction-consumer (cache invalidation)
	└── api-layer
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON or console output
 3. Storage: DuckDB, or an in-memory store loaded from a seed file
 4. Cache: in-process LRU, optionally tiered over Redis or Badger
 5. Recommendation pipeline: engines, trainer, reranking and orchestrator
 6. Event bus: Watermill over a Go channel or NATS JetStream
 7. Authentication (JWT or trusted headers) and Casbin authorization
 8. HTTP server: chi router under /api/v1/recommendations

# Configuration

Priority: environment variables > config file > defaults.

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	DATABASE_DRIVER=duckdb       # duckdb or memory
	DUCKDB_PATH=/data/curator.duckdb
	SEED_FILE=/data/seed.json    # optional catalog and interactions
	CACHE_BACKEND=memory         # memory, redis or badger
	EVENTS_BACKEND=gochannel     # gochannel, nats or embedded
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the consumer and trainer stop, and storage and cache
are closed.
*/
package main
