/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package engine provides the reference camera and folder backends and
// wires them to a query builder and runner.
package engine

import (
	"time"

	"github.com/dburkart/lens/pkg/builder"
	"github.com/dburkart/lens/pkg/camera"
	"github.com/dburkart/lens/pkg/catalog"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/rs/zerolog"
)

type Config struct {
	Cameras  []*camera.Camera
	Folders  []*query.FolderConfig
	Catalog  catalog.Store
	CacheTTL time.Duration

	// Optional
	Metrics           runner.Metrics
	FolderConcurrency int
}

// Engine bundles the backends with the builder and runner that use them.
type Engine struct {
	Cameras *CameraEngine
	Folders *FolderEngine
	Builder *builder.Builder
	Runner  *runner.Runner
	Catalog catalog.Store
}

func New(log zerolog.Logger, cfg Config) *Engine {
	store := cfg.Catalog
	if store == nil {
		store = catalog.NewMemoryStore()
	}

	cameras := NewCameraEngine(
		log.With().Str("component", "cameras").Logger(),
		camera.NewStore(cfg.Cameras...),
		store,
		CameraEngineOptions{TTL: cfg.CacheTTL},
	)
	folders := NewFolderEngine(log.With().Str("component", "folders").Logger(), cfg.Folders...)

	var opts []runner.Option
	if cfg.Metrics != nil {
		opts = append(opts, runner.WithMetrics(cfg.Metrics))
	}
	if cfg.FolderConcurrency > 0 {
		opts = append(opts, runner.WithFolderConcurrency(cfg.FolderConcurrency))
	}

	return &Engine{
		Cameras: cameras,
		Folders: folders,
		Builder: builder.New(log.With().Str("component", "builder").Logger(), cameras, folders),
		Runner:  runner.New(log.With().Str("component", "runner").Logger(), cameras, folders, opts...),
		Catalog: store,
	}
}
