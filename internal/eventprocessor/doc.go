// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package eventprocessor carries tracked interactions over a Watermill
// event bus.
//
// POST /recommendations/track-interaction stores the interaction and then
// publishes an InteractionTracked event. The Consumer receives it,
// invalidates the user's cached recommendation lists and counts the
// interaction per experiment bucket.
//
// Three transports are available:
//
//   - gochannel: in-process, for single-instance deployments and tests.
//   - nats: NATS JetStream through watermill-nats. Every instance joins the
//     same queue group, so each event is handled once per deployment.
//     Cache invalidation is idempotent, so redelivery is harmless.
//   - embedded: the nats transport against an in-process JetStream server
//     started by NewEmbeddedServer.
//
// The JetStream stream is created up front with a dot-free name and the
// subscriber binds to it.
//
// Publishing goes through a circuit breaker. When publishing fails the
// API handler invalidates the user's cache inline instead.
package eventprocessor
