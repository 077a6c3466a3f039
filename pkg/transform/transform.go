/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package transform reshapes an existing query for a new viewport without
// consulting any backend. Every function returns a new query and leaves its
// input untouched.
package transform

import (
	"time"

	"github.com/dburkart/lens/pkg/query"
)

// StripTimeRange removes the time bounds from every media node.
func StripTimeRange(q *query.UnifiedQuery) *query.UnifiedQuery {
	return mapMedia(q, func(m *query.MediaQuery) {
		m.Start = nil
		m.End = nil
	})
}

// RebuildOptions lists the fields to overwrite. Nil fields are left alone.
type RebuildOptions struct {
	Start *time.Time
	End   *time.Time
	Limit *int
}

// Rebuild overwrites the time bounds and limit of every media node with the
// supplied values.
func Rebuild(q *query.UnifiedQuery, opts RebuildOptions) *query.UnifiedQuery {
	return mapMedia(q, func(m *query.MediaQuery) {
		if opts.Start != nil {
			m.Start = query.Time(*opts.Start)
		}
		if opts.End != nil {
			m.End = query.Time(*opts.End)
		}
		if opts.Limit != nil {
			m.Limit = *opts.Limit
		}
	})
}

// ConvertToClips turns every event node into a clips-only event node.
func ConvertToClips(q *query.UnifiedQuery) *query.UnifiedQuery {
	return mapMedia(q, func(m *query.MediaQuery) {
		if m.Type != query.TypeEvent {
			return
		}
		m.HasClip = query.Bool(true)
		m.HasSnapshot = nil
	})
}

// mapMedia clones q and applies fn to each cloned media node.
func mapMedia(q *query.UnifiedQuery, fn func(*query.MediaQuery)) *query.UnifiedQuery {
	if q == nil {
		return nil
	}

	out := query.New()
	for _, n := range q.Nodes() {
		switch t := n.(type) {
		case *query.MediaQuery:
			m := t.CloneMedia()
			fn(m)
			out.AddNode(m)
		case *query.FolderQuery:
			out.AddNode(t.CloneFolder())
		}
	}
	return out
}
