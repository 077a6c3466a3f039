/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package catalog stores the media items served by the reference camera
// engine.
package catalog

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/dburkart/lens/pkg/media"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Selection narrows a catalog read. Zero fields match everything; time
// bounds are inclusive and apply to the item start time.
type Selection struct {
	CameraIDs []string
	Kind      media.Kind
	Start     *time.Time
	End       *time.Time
}

func (s Selection) Matches(item *media.Item) bool {
	if len(s.CameraIDs) > 0 && !slices.Contains(s.CameraIDs, item.CameraID) {
		return false
	}
	if s.Kind != "" && item.Kind != s.Kind {
		return false
	}
	if s.Start != nil && item.Start.Before(*s.Start) {
		return false
	}
	if s.End != nil && item.Start.After(*s.End) {
		return false
	}
	return true
}

// Store holds media items ordered by start time.
type Store interface {
	Insert(ctx context.Context, items ...media.Item) error
	// Select returns matching items in ascending start order.
	Select(ctx context.Context, sel Selection) (media.Items, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

type Config struct {
	Driver string
	Path   string
}

// Open creates the store named by cfg.Driver.
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	}
	return nil, fmt.Errorf("unknown catalog driver: %s", cfg.Driver)
}

type seedFile struct {
	Items media.Items `yaml:"items"`
}

// LoadSeed reads items from a yaml seed file. Items without an id are given
// a random one.
func LoadSeed(path string) (media.Items, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read seed file")
	}

	var seed seedFile
	if err = yaml.Unmarshal(contents, &seed); err != nil {
		return nil, errors.Wrapf(err, "unable to parse seed file %s", path)
	}

	for i := range seed.Items {
		if seed.Items[i].ID == "" {
			seed.Items[i].ID = uuid.NewString()
		}
		if seed.Items[i].Kind == "" {
			return nil, fmt.Errorf("seed item %s has no kind", seed.Items[i].ID)
		}
	}
	return seed.Items, nil
}
