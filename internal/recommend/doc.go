// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package recommend implements the hybrid content recommendation core.
//
// # Architecture
//
// A request flows through a fixed pipeline:
//
//	cache -> history -> engines -> combine -> rank -> diversify -> filter -> cache
//
// Three similarity engines run concurrently against the current model
// snapshot:
//
//   - User-based collaborative filtering (cosine over interaction vectors)
//   - Item-based collaborative filtering (Jaccard over co-interacting users)
//   - Content-based similarity (category, tags, file type, creator, fingerprint)
//
// Their scores are normalized per engine and combined with weights of
// 0.42/0.28/0.30 at the default content weight. The combined list is then
// re-scored by the ranker, penalized for redundancy by the diversity pass
// and filtered.
//
// # Models
//
// Engines are trained into an immutable Snapshot by the Trainer and
// published by atomic swap. Requests load the snapshot once, so a retrain
// never blocks or tears a request.
//
// # Failure Handling
//
// The Orchestrator is the only place where errors become fallback
// responses. A user without history, an upstream timeout, an engine error
// or a recovered panic all produce the popularity fallback list with
// source "fallback". Invalid parameters, unknown content and caller
// cancellation are returned to the caller.
//
// # Usage
//
//	trainer := recommend.NewTrainer(events, catalog, engines, cfg)
//	o, err := recommend.NewOrchestrator(cfg, recommend.Deps{
//	    Interactions: events,
//	    Content:      catalog,
//	    Trainer:      trainer,
//	    Ranker:       reranking.NewRanker(cfg.Weights.Ranker, cfg.FreshnessHalfLife),
//	    Diversifier:  reranking.NewDiversity(cfg.Weights.Diversity),
//	    Cache:        store,
//	})
//	res, err := o.GetRecommendations(ctx, userID, recommend.DefaultOptions())
//
// # Thread Safety
//
// Every exported type is safe for concurrent use unless documented
// otherwise.
package recommend
