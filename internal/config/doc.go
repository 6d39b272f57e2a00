// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package config loads and validates the service configuration.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. Later layers win.

Config file lookup order:
  - $CONFIG_PATH
  - ./config.yaml, ./config.yml
  - /etc/curator/config.yaml, /etc/curator/config.yml

Example config.yaml:

	server:
	  port: 8080
	  request_timeout: 10s
	recommend:
	  history_window: 2160h
	  train_interval: 1h
	  experiment_id: hybrid-rec-v1
	cache:
	  backend: redis
	  redis_addr: redis:6379
	database:
	  driver: duckdb
	  path: /data/curator.duckdb
	events:
	  backend: nats
	  nats_url: nats://nats:4222
	security:
	  auth_mode: jwt

Environment variables use flat names such as HTTP_PORT, LOG_LEVEL,
CACHE_BACKEND, DUCKDB_PATH, NATS_URL and JWT_SECRET; envMappings lists
them all. Unknown variables are ignored.

Validation runs once in LoadWithKoanf. AUTH_MODE=jwt requires a
JWT_SECRET of at least 32 characters.
*/
package config
