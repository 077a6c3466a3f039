/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package engine

import (
	"context"
	"slices"
	"time"

	"github.com/dburkart/lens/pkg/camera"
	"github.com/dburkart/lens/pkg/catalog"
	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/rs/zerolog"
)

type CameraEngineOptions struct {
	// How long fetched results are considered fresh
	TTL time.Duration
	// Maximum number of cached node results
	CacheSize int
}

// CameraEngine answers media nodes from a catalog. It also serves as the
// builder's camera manager through the embedded camera store.
type CameraEngine struct {
	*camera.Store

	log     zerolog.Logger
	catalog catalog.Store
	cache   *resultCache
	ttl     time.Duration
	now     func() time.Time
}

func NewCameraEngine(log zerolog.Logger, cameras *camera.Store, store catalog.Store, opts CameraEngineOptions) *CameraEngine {
	if opts.TTL <= 0 {
		opts.TTL = time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}

	e := &CameraEngine{
		Store:   cameras,
		log:     log,
		catalog: store,
		ttl:     opts.TTL,
		now:     time.Now,
	}
	e.cache = newResultCache(opts.CacheSize, func() time.Time { return e.now() })
	return e
}

// ExecuteMediaQueries runs each node and concatenates the results in node
// order. Each node's results are newest first.
func (e *CameraEngine) ExecuteMediaQueries(ctx context.Context, nodes []*query.MediaQuery, opts runner.ExecuteOptions) (media.Items, error) {
	results := media.Items{}
	for _, node := range nodes {
		items, err := e.executeNode(ctx, node, opts.UseCache)
		if err != nil {
			return nil, err
		}
		results = append(results, items...)
	}
	return results, nil
}

func (e *CameraEngine) executeNode(ctx context.Context, node *query.MediaQuery, useCache bool) (media.Items, error) {
	if useCache {
		if items, ok := e.cache.lookup(node, e.ttl); ok {
			e.log.Trace().Str("node", query.DumpNode(node)).Int("results", len(items)).Msg("answered from cache")
			return items, nil
		}
	}

	selection := catalog.Selection{
		CameraIDs: node.CameraIDs.Sorted(),
		Kind:      itemKind(node.Type),
		Start:     node.Start,
		End:       node.End,
	}

	candidates, err := e.catalog.Select(ctx, selection)
	if err != nil {
		return nil, err
	}

	items := media.Items{}
	for i := range candidates {
		if matches(node, &candidates[i]) {
			items = append(items, candidates[i])
		}
	}
	items.SortNewestFirst()
	if node.Limit > 0 && len(items) > node.Limit {
		items = items[:node.Limit]
	}

	e.cache.store(node, items)
	e.log.Trace().Str("node", query.DumpNode(node)).Int("results", len(items)).Msg("answered from catalog")

	return slices.Clone(items), nil
}

// ExtendMediaQueries fetches the window adjacent to the existing results in
// the given direction. Each node anchors on the results it could have
// produced itself, so folder items and other cameras never move its window.
// The returned nodes span both the old and the new window. It returns nil
// when no node has anything to anchor on or nothing new was found.
func (e *CameraEngine) ExtendMediaQueries(ctx context.Context, nodes []*query.MediaQuery, existing media.Items, direction media.Direction, _ runner.ExecuteOptions) (*runner.MediaExtension, error) {
	var extended []*query.MediaQuery
	var fetched media.Items
	anchored := false

	for _, node := range nodes {
		anchor, ok := extendAnchor(node, existing, direction)
		if !ok {
			extended = append(extended, node.CloneMedia())
			continue
		}
		anchored = true

		window := node.CloneMedia()
		covered := node.CloneMedia()

		switch direction {
		case media.Earlier:
			window.End = query.Time(anchor)
			window.Start = nil
			if node.Start != nil && node.End != nil {
				window.Start = query.Time(anchor.Add(-node.End.Sub(*node.Start)))
			}
			covered.Start = window.Start
		case media.Later:
			window.Start = query.Time(anchor)
			window.End = nil
			if node.Start != nil && node.End != nil {
				window.End = query.Time(anchor.Add(node.End.Sub(*node.Start)))
			}
			covered.End = window.End
		}

		items, err := e.executeNode(ctx, window, false)
		if err != nil {
			return nil, err
		}
		fetched = append(fetched, items...)
		extended = append(extended, covered)
	}
	if !anchored {
		return nil, nil
	}

	results := existing.Merge(fetched)
	if len(results) == len(existing) {
		return nil, nil
	}
	results.SortNewestFirst()

	e.log.Debug().
		Str("direction", string(direction)).
		Int("new", len(results)-len(existing)).
		Msg("extended media queries")

	return &runner.MediaExtension{Queries: extended, Results: results}, nil
}

// extendAnchor returns the oldest (earlier) or newest (later) start among
// the existing items of the node's kind and cameras.
func extendAnchor(node *query.MediaQuery, existing media.Items, direction media.Direction) (time.Time, bool) {
	kind := itemKind(node.Type)

	var own media.Items
	for _, item := range existing {
		if item.Kind == kind && node.CameraIDs.Has(item.CameraID) {
			own = append(own, item)
		}
	}

	switch direction {
	case media.Earlier:
		return own.Oldest()
	case media.Later:
		return own.Newest()
	}
	return time.Time{}, false
}

// AreMediaQueriesResultsFresh reports results as fresh within the TTL, or
// indefinitely when every node's window closed before they were fetched.
func (e *CameraEngine) AreMediaQueriesResultsFresh(timestamp time.Time, nodes []*query.MediaQuery) bool {
	if e.now().Sub(timestamp) < e.ttl {
		return true
	}
	for _, node := range nodes {
		if node.End == nil || !node.End.Before(timestamp) {
			return false
		}
	}
	return len(nodes) > 0
}

func itemKind(t query.QueryType) media.Kind {
	switch t {
	case query.TypeEvent:
		return media.KindEvent
	case query.TypeRecording, query.TypeRecordingSegments:
		return media.KindRecording
	case query.TypeReview:
		return media.KindReview
	}
	return ""
}

func matches(node *query.MediaQuery, item *media.Item) bool {
	if node.HasClip != nil && *node.HasClip != item.HasClip {
		return false
	}
	if node.HasSnapshot != nil && *node.HasSnapshot != item.HasSnapshot {
		return false
	}
	if node.Favorite != nil && *node.Favorite != item.Favorite {
		return false
	}
	if node.Reviewed != nil && *node.Reviewed != item.Reviewed {
		return false
	}
	if len(node.Severity) > 0 && !node.Severity.Has(query.Severity(item.Severity)) {
		return false
	}
	return intersects(node.Tags, item.Tags) &&
		intersects(node.What, item.What) &&
		intersects(node.Where, item.Where)
}

// intersects is true when want is empty or shares a member with have.
func intersects(want query.Set[string], have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, v := range have {
		if want.Has(v) {
			return true
		}
	}
	return false
}
