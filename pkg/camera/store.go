/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package camera

import (
	"sync"

	"github.com/dburkart/lens/pkg/query"
)

// Store is the registry of configured cameras, kept in configuration order.
type Store struct {
	cameras []*Camera
	lookup  map[string]*Camera
	lock    sync.RWMutex
}

func NewStore(cameras ...*Camera) *Store {
	s := &Store{lookup: make(map[string]*Camera)}
	for _, c := range cameras {
		s.Add(c)
	}
	return s
}

// Add registers c, replacing any camera with the same id.
func (s *Store) Add(c *Camera) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.lookup[c.ID]; exists {
		for i, existing := range s.cameras {
			if existing.ID == c.ID {
				s.cameras[i] = c
			}
		}
	} else {
		s.cameras = append(s.cameras, c)
	}
	s.lookup[c.ID] = c
}

func (s *Store) Camera(id string) (*Camera, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	c, ok := s.lookup[id]
	return c, ok
}

// CameraIDs returns every camera id in configuration order.
func (s *Store) CameraIDs() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ids := make([]string, 0, len(s.cameras))
	for _, c := range s.cameras {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *Store) QueryDefaults(id string, t query.QueryType) QueryDefaults {
	c, ok := s.Camera(id)
	if !ok {
		return QueryDefaults{}
	}
	return c.QueryDefaults(t)
}

// DependentCameras returns id followed by every camera it transitively
// depends on. Unknown ids and cycles are skipped.
func (s *Store) DependentCameras(id string) []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var ids []string
	seen := make(map[string]bool)

	var visit func(string)
	visit = func(id string) {
		c, ok := s.lookup[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
		for _, dep := range c.Dependencies {
			visit(dep)
		}
	}
	visit(id)

	return ids
}

// Capabilities returns the union of the capabilities of the given cameras.
func (s *Store) Capabilities(ids ...string) Capabilities {
	var caps Capabilities
	for _, id := range ids {
		if c, ok := s.Camera(id); ok {
			caps = caps.Union(c.Capabilities)
		}
	}
	return caps
}
