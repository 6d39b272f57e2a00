// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package supervisor runs the long-lived services of Curator under a suture v4
supervision tree.

	RootSupervisor ("curator")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── TrainerService
	├── MessagingSupervisor ("messaging-layer")
	│   └── eventprocessor.Consumer
	└── APISupervisor ("api-layer")
	    └── APIService

A crashing consumer is restarted without touching the HTTP server, and a
failing training run never takes the API down. Supervisor events are
logged through sutureslog into the zerolog logger.
*/
package supervisor
