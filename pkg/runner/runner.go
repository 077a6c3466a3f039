/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package runner

import (
	"context"
	"time"

	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// ConditionState is opaque viewer state forwarded to folder backends, which
// may use it to evaluate conditional path components.
type ConditionState map[string]string

type ExecuteOptions struct {
	UseCache   bool
	Conditions ConditionState
}

// MediaExtension is a camera backend's answer to an extension request.
type MediaExtension struct {
	Queries []*query.MediaQuery
	Results media.Items
}

// CameraDispatcher routes media nodes to the camera backends. A nil result
// from ExtendMediaQueries means the nodes cannot be extended.
type CameraDispatcher interface {
	ExecuteMediaQueries(ctx context.Context, nodes []*query.MediaQuery, opts ExecuteOptions) (media.Items, error)
	ExtendMediaQueries(ctx context.Context, nodes []*query.MediaQuery, existing media.Items, direction media.Direction, opts ExecuteOptions) (*MediaExtension, error)
	AreMediaQueriesResultsFresh(timestamp time.Time, nodes []*query.MediaQuery) bool
}

// FolderDispatcher expands folder nodes, one node per call.
type FolderDispatcher interface {
	ExpandFolder(ctx context.Context, node *query.FolderQuery, conditions ConditionState, opts ExecuteOptions) (media.Items, error)
	AreResultsFresh(timestamp time.Time, node *query.FolderQuery) bool
}

// Metrics receives one observation per dispatcher call.
type Metrics interface {
	IncRequests(op, source string)
	ObserveResponseNS(op, source string, t int64)
}

type Option func(*Runner)

func WithMetrics(m Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithFolderConcurrency bounds how many folder nodes are expanded at once.
func WithFolderConcurrency(n int) Option {
	return func(r *Runner) {
		r.folderConcurrency = n
	}
}

// Runner executes unified queries against the camera and folder
// dispatchers. It holds no per-query state, and errors raised by a
// dispatcher are returned to the caller untouched.
type Runner struct {
	log     zerolog.Logger
	cameras CameraDispatcher
	folders FolderDispatcher
	metrics Metrics

	folderConcurrency int
}

func New(log zerolog.Logger, cameras CameraDispatcher, folders FolderDispatcher, opts ...Option) *Runner {
	r := &Runner{
		log:               log,
		cameras:           cameras,
		folders:           folders,
		folderConcurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs every node of q. All media nodes go to the camera dispatcher
// in a single call; folder nodes are expanded individually. Camera results
// come first, followed by folder results in node order.
func (r *Runner) Execute(ctx context.Context, q *query.UnifiedQuery, opts ExecuteOptions) (media.Items, error) {
	results := media.Items{}
	if q == nil {
		return results, nil
	}

	mediaNodes := q.MediaQueries(query.MediaQueryFilter{})
	if len(mediaNodes) > 0 {
		items, err := r.executeMedia(ctx, mediaNodes, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, items...)
	}

	folderNodes := q.FolderQueries("")
	if len(folderNodes) > 0 {
		listings := iter.Mapper[*query.FolderQuery, folderListing]{
			MaxGoroutines: r.folderConcurrency,
		}.Map(folderNodes, func(node **query.FolderQuery) folderListing {
			items, err := r.expandFolder(ctx, *node, opts)
			return folderListing{items, err}
		})

		// The first failure in node order wins so that errors are stable.
		for _, listing := range listings {
			if listing.err != nil {
				return nil, listing.err
			}
			results = append(results, listing.items...)
		}
	}

	r.log.Debug().
		Int("media-nodes", len(mediaNodes)).
		Int("folder-nodes", len(folderNodes)).
		Int("results", len(results)).
		Msg("executed query")

	return results, nil
}

func (r *Runner) executeMedia(ctx context.Context, nodes []*query.MediaQuery, opts ExecuteOptions) (media.Items, error) {
	defer r.observe("execute", query.SourceCamera, time.Now())

	r.log.Trace().Int("nodes", len(nodes)).Bool("cache", opts.UseCache).Msg("dispatching media queries")
	return r.cameras.ExecuteMediaQueries(ctx, nodes, opts)
}

type folderListing struct {
	items media.Items
	err   error
}

func (r *Runner) expandFolder(ctx context.Context, node *query.FolderQuery, opts ExecuteOptions) (media.Items, error) {
	defer r.observe("execute", query.SourceFolder, time.Now())

	r.log.Trace().Str("folder", node.FolderID()).Int("depth", len(node.Path)).Msg("expanding folder")
	return r.folders.ExpandFolder(ctx, node, opts.Conditions, opts)
}

// AreResultsFresh reports whether results fetched at timestamp are still
// fresh for every node of q.
func (r *Runner) AreResultsFresh(timestamp time.Time, q *query.UnifiedQuery) bool {
	if q == nil {
		return true
	}

	mediaNodes := q.MediaQueries(query.MediaQueryFilter{})
	if len(mediaNodes) > 0 && !r.cameras.AreMediaQueriesResultsFresh(timestamp, mediaNodes) {
		return false
	}

	for _, node := range q.FolderQueries("") {
		if !r.folders.AreResultsFresh(timestamp, node) {
			return false
		}
	}
	return true
}

// Extension is an extended query together with its full result list.
type Extension struct {
	Query   *query.UnifiedQuery
	Results media.Items
}

// Extend asks the camera dispatcher for results adjacent to existing in the
// given direction. The returned query has its media nodes replaced by the
// dispatcher's and every other node carried over. A nil Extension with a
// nil error means the query cannot be extended.
func (r *Runner) Extend(ctx context.Context, q *query.UnifiedQuery, existing media.Items, direction media.Direction, opts ExecuteOptions) (*Extension, error) {
	if q == nil {
		return nil, nil
	}

	mediaNodes := q.MediaQueries(query.MediaQueryFilter{})
	if len(mediaNodes) == 0 {
		return nil, nil
	}

	start := time.Now()
	extension, err := r.cameras.ExtendMediaQueries(ctx, mediaNodes, existing, direction, opts)
	r.observe("extend", query.SourceCamera, start)
	if err != nil {
		return nil, err
	}
	if extension == nil {
		r.log.Debug().Str("direction", string(direction)).Msg("query cannot be extended")
		return nil, nil
	}

	extended := query.New()
	for _, node := range extension.Queries {
		extended.AddNode(node)
	}
	for _, node := range q.NonMediaQueries() {
		extended.AddNode(node.Clone())
	}

	results := extension.Results
	if results == nil {
		results = media.Items{}
	}

	r.log.Debug().
		Str("direction", string(direction)).
		Int("before", len(existing)).
		Int("after", len(results)).
		Msg("extended query")

	return &Extension{Query: extended, Results: results}, nil
}

func (r *Runner) observe(op string, source query.Source, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.IncRequests(op, string(source))
	r.metrics.ObserveResponseNS(op, string(source), time.Since(start).Nanoseconds())
}
