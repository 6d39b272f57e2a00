// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

const embeddedReadyTimeout = 30 * time.Second

// EmbeddedServer is an in-process NATS JetStream server for single-node
// deployments that have no external broker.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
	// tempDir is removed on Shutdown when the store was not configured.
	tempDir string
}

// NewEmbeddedServer starts a JetStream server listening on a random
// loopback port. An empty storeDir uses a temporary directory.
func NewEmbeddedServer(storeDir string) (*EmbeddedServer, error) {
	var tempDir string
	if storeDir == "" {
		dir, err := os.MkdirTemp("", "curator-nats-")
		if err != nil {
			return nil, fmt.Errorf("create NATS store dir: %w", err)
		}
		storeDir, tempDir = dir, dir
	}

	opts := &server.Options{
		ServerName: "curator-events",
		Host:       "127.0.0.1",
		Port:       -1, // random free port
		JetStream:  true,
		StoreDir:   storeDir,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		removeTemp(tempDir)
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	go ns.Start()

	if !ns.ReadyForConnections(embeddedReadyTimeout) {
		ns.Shutdown()
		removeTemp(tempDir)
		return nil, errors.New("NATS server not ready within timeout")
	}

	return &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
		tempDir:   tempDir,
	}, nil
}

// ClientURL returns the nats:// URL clients connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Running reports whether the server accepts connections.
func (s *EmbeddedServer) Running() bool {
	return s.server.Running() && s.server.JetStreamEnabled()
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
	removeTemp(s.tempDir)
}

func removeTemp(dir string) {
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
}
