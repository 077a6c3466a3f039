/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package config turns loaded configuration into cameras, folders and a
// ready to use engine.
package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/dburkart/lens/pkg/camera"
	"github.com/dburkart/lens/pkg/catalog"
	"github.com/dburkart/lens/pkg/engine"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func key(parts ...string) string {
	k := parts[0]
	for _, p := range parts[1:] {
		k += "." + p
	}
	return k
}

// tableIDs returns the sorted names of the tables below prefix.
func tableIDs(v *viper.Viper, prefix string) []string {
	ids := make([]string, 0)
	for id := range v.GetStringMap(prefix) {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Cameras reads the cameras.<id> tables, sorted by id.
func Cameras(v *viper.Viper) ([]*camera.Camera, error) {
	var cameras []*camera.Camera

	for _, id := range tableIDs(v, "cameras") {
		media, err := camera.ParseMediaPreference(v.GetString(key("cameras", id, "media")))
		if err != nil {
			return nil, errors.Wrapf(err, "camera %s", id)
		}
		events, err := camera.ParseEventsPolicy(v.GetString(key("cameras", id, "events-media")))
		if err != nil {
			return nil, errors.Wrapf(err, "camera %s", id)
		}

		cameras = append(cameras, &camera.Camera{
			ID:    id,
			Title: v.GetString(key("cameras", id, "title")),
			Capabilities: camera.Capabilities{
				Clips:      v.GetBool(key("cameras", id, "clips")),
				Snapshots:  v.GetBool(key("cameras", id, "snapshots")),
				Recordings: v.GetBool(key("cameras", id, "recordings")),
				Reviews:    v.GetBool(key("cameras", id, "reviews")),
			},
			Media:        media,
			EventsMedia:  events,
			What:         v.GetStringSlice(key("cameras", id, "what")),
			Where:        v.GetStringSlice(key("cameras", id, "where")),
			Dependencies: v.GetStringSlice(key("cameras", id, "dependencies")),
			Folder:       v.GetString(key("cameras", id, "folder")),
		})
	}

	return cameras, nil
}

// Folders reads the folders.<id> tables, sorted by id.
func Folders(v *viper.Viper) ([]*query.FolderConfig, error) {
	var folders []*query.FolderConfig

	for _, id := range tableIDs(v, "folders") {
		f := &query.FolderConfig{
			ID:          id,
			Title:       v.GetString(key("folders", id, "title")),
			Type:        v.GetString(key("folders", id, "type")),
			Root:        v.GetString(key("folders", id, "root")),
			DefaultPath: v.GetStringSlice(key("folders", id, "default-path")),
		}
		if f.Type == "" {
			f.Type = "local"
		}
		if f.Type != "local" {
			return nil, fmt.Errorf("folder %s: unsupported type %q", id, f.Type)
		}
		if f.Root == "" {
			return nil, fmt.Errorf("folder %s: root is required", id)
		}
		folders = append(folders, f)
	}

	return folders, nil
}

// Catalog opens the configured catalog and loads the seed file into it, if
// one is set.
func Catalog(ctx context.Context, v *viper.Viper) (catalog.Store, error) {
	store, err := catalog.Open(catalog.Config{
		Driver: v.GetString("catalog.driver"),
		Path:   v.GetString("catalog.path"),
	})
	if err != nil {
		return nil, err
	}

	if seed := v.GetString("catalog.seed"); seed != "" {
		items, err := catalog.LoadSeed(seed)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err = store.Insert(ctx, items...); err != nil {
			store.Close()
			return nil, err
		}
	}

	return store, nil
}

// Engine builds an engine from the loaded configuration. metrics may be nil.
func Engine(ctx context.Context, log zerolog.Logger, v *viper.Viper, metrics runner.Metrics) (*engine.Engine, error) {
	cameras, err := Cameras(v)
	if err != nil {
		return nil, err
	}
	folders, err := Folders(v)
	if err != nil {
		return nil, err
	}
	store, err := Catalog(ctx, v)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("cameras", len(cameras)).
		Int("folders", len(folders)).
		Str("catalog", v.GetString("catalog.driver")).
		Msg("configured engine")

	return engine.New(log, engine.Config{
		Cameras:           cameras,
		Folders:           folders,
		Catalog:           store,
		CacheTTL:          v.GetDuration("cache.ttl"),
		Metrics:           metrics,
		FolderConcurrency: v.GetInt("runner.folder-concurrency"),
	}), nil
}
