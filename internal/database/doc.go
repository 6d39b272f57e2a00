// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package database stores interactions and the content catalog in DuckDB and
serves them to the recommendation core through the recommend gateway
interfaces.

Tables:
  - interactions: one row per tracked user action
  - content: catalog items with engagement counters and perceptual fingerprint
  - content_tags: one row per (content, tag)
  - creators: reputation inputs per creator

The schema is versioned by the ordered migrations list and recorded in
schema_migrations. Path ":memory:" opens a private in-memory database,
which the tests use.
*/
package database
