/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package builder

import (
	"time"

	"github.com/dburkart/lens/pkg/camera"
	"github.com/dburkart/lens/pkg/query"
	"github.com/rs/zerolog"
)

// CameraManager answers the per-camera questions the builder needs.
type CameraManager interface {
	CameraIDs() []string
	Camera(id string) (*camera.Camera, bool)
	QueryDefaults(id string, t query.QueryType) camera.QueryDefaults
	DependentCameras(id string) []string
}

// FolderManager resolves configured folders and their default queries.
type FolderManager interface {
	Folder(id string) (*query.FolderConfig, bool)
	DefaultQueryParameters(folder *query.FolderConfig) *query.FolderQuery
}

// Options are copied onto every media node a build produces. Explicit What
// and Where values replace the merged camera defaults.
type Options struct {
	Start *time.Time
	End   *time.Time
	Limit int

	Favorite *bool
	Reviewed *bool
	Tags     query.Set[string]
	What     query.Set[string]
	Where    query.Set[string]
	Severity query.Set[query.Severity]
}

// Builder turns viewer intents into unified queries. Every Build method
// returns nil when no node could be produced.
type Builder struct {
	log     zerolog.Logger
	cameras CameraManager
	folders FolderManager
}

// New creates a Builder. folders may be nil, in which case folder builds
// always return nil.
func New(log zerolog.Logger, cameras CameraManager, folders FolderManager) *Builder {
	return &Builder{
		log:     log,
		cameras: cameras,
		folders: folders,
	}
}

func (b *Builder) BuildClipsQuery(cameraIDs query.Set[string], opts Options) *query.UnifiedQuery {
	return b.BuildMediaQuery(query.KindClips, cameraIDs, opts)
}

func (b *Builder) BuildSnapshotsQuery(cameraIDs query.Set[string], opts Options) *query.UnifiedQuery {
	return b.BuildMediaQuery(query.KindSnapshots, cameraIDs, opts)
}

func (b *Builder) BuildEventsQuery(cameraIDs query.Set[string], opts Options) *query.UnifiedQuery {
	return b.BuildMediaQuery(query.KindEvents, cameraIDs, opts)
}

func (b *Builder) BuildRecordingsQuery(cameraIDs query.Set[string], opts Options) *query.UnifiedQuery {
	return b.BuildMediaQuery(query.KindRecordings, cameraIDs, opts)
}

func (b *Builder) BuildReviewsQuery(cameraIDs query.Set[string], opts Options) *query.UnifiedQuery {
	return b.BuildMediaQuery(query.KindReviews, cameraIDs, opts)
}

// BuildMediaQuery builds a single node of the given kind covering every
// camera in cameraIDs that is capable of producing it. Camera defaults are
// unioned across those cameras.
func (b *Builder) BuildMediaQuery(kind query.MediaKind, cameraIDs query.Set[string], opts Options) *query.UnifiedQuery {
	node := b.mediaNode(kind, b.capable(kind, cameraIDs.Sorted()), opts, true)
	if node == nil {
		return nil
	}
	return query.New(node)
}

// BuildFilterQuery builds one node per requested media kind, all sharing the
// same filters. A nil camera set means every media capable camera and a nil
// kind set means every viewable kind.
func (b *Builder) BuildFilterQuery(cameraIDs query.Set[string], kinds query.Set[query.MediaKind], opts Options) *query.UnifiedQuery {
	var ids []string
	if cameraIDs == nil {
		for _, id := range b.cameras.CameraIDs() {
			if c, ok := b.cameras.Camera(id); ok && c.Capabilities.Media() {
				ids = append(ids, id)
			}
		}
	} else {
		ids = cameraIDs.Sorted()
	}
	if len(ids) == 0 {
		return nil
	}

	if kinds == nil {
		kinds = query.NewSet(query.ViewableKinds...)
	}

	q := query.New()
	for _, kind := range filterOrder {
		if !kinds.Has(kind) {
			continue
		}
		if node := b.mediaNode(kind, ids, opts, false); node != nil {
			q.AddNode(node)
		}
	}

	if q.IsEmpty() {
		return nil
	}
	return q
}

var filterOrder = []query.MediaKind{
	query.KindClips,
	query.KindSnapshots,
	query.KindEvents,
	query.KindRecordings,
	query.KindReviews,
}

type FolderOptions struct {
	Limit int
}

// BuildFolderQuery builds a query listing path within folder.
func (b *Builder) BuildFolderQuery(folder *query.FolderConfig, path []query.PathComponent, opts FolderOptions) *query.UnifiedQuery {
	if folder == nil || len(path) == 0 {
		return nil
	}

	node := &query.FolderQuery{Folder: folder, Path: path, Limit: opts.Limit}
	return query.New(node.CloneFolder())
}

// BuildDefaultFolderQuery builds the folder backend's default query for the
// folder with the given id.
func (b *Builder) BuildDefaultFolderQuery(folderID string) *query.UnifiedQuery {
	if b.folders == nil {
		return nil
	}

	folder, ok := b.folders.Folder(folderID)
	if !ok {
		b.log.Debug().Str("folder", folderID).Msg("no such folder")
		return nil
	}

	node := b.folders.DefaultQueryParameters(folder)
	if node == nil || len(node.Path) == 0 {
		return nil
	}
	return query.New(node)
}

// BuildDefaultCameraQuery resolves what a camera shows by default. Under the
// auto preference it tries reviews, then events, then recordings, then the
// camera's folder. An explicit preference the camera cannot satisfy yields
// nil rather than a fallback.
func (b *Builder) BuildDefaultCameraQuery(cameraID string, opts Options) *query.UnifiedQuery {
	cam, ok := b.cameras.Camera(cameraID)
	if !ok {
		return nil
	}

	ids := b.cameras.DependentCameras(cameraID)
	var caps camera.Capabilities
	for _, id := range ids {
		if c, ok := b.cameras.Camera(id); ok {
			caps = caps.Union(c.Capabilities)
		}
	}

	build := func(kind query.MediaKind) *query.UnifiedQuery {
		node := b.mediaNode(kind, b.capable(kind, ids), opts, true)
		if node == nil {
			return nil
		}
		return query.New(node)
	}

	switch cam.Media {
	case camera.MediaAuto, "":
		switch {
		case caps.Reviews:
			return build(query.KindReviews)
		case caps.Clips || caps.Snapshots:
			return build(eventsKind(caps, cam.EventsMedia))
		case caps.Recordings:
			return build(query.KindRecordings)
		case cam.Folder != "":
			return b.BuildDefaultFolderQuery(cam.Folder)
		}
	case camera.MediaEvents:
		if caps.Clips || caps.Snapshots {
			return build(eventsKind(caps, cam.EventsMedia))
		}
	case camera.MediaClips:
		return build(query.KindClips)
	case camera.MediaSnapshots:
		return build(query.KindSnapshots)
	case camera.MediaRecordings:
		return build(query.KindRecordings)
	case camera.MediaReviews:
		return build(query.KindReviews)
	case camera.MediaFolder:
		if cam.Folder != "" {
			return b.BuildDefaultFolderQuery(cam.Folder)
		}
	}

	b.log.Debug().Str("camera", cameraID).Str("media", string(cam.Media)).Msg("no default query for camera")
	return nil
}

// eventsKind picks the event flavor for a camera with the given capabilities.
func eventsKind(caps camera.Capabilities, policy camera.EventsPolicy) query.MediaKind {
	switch {
	case caps.Clips && caps.Snapshots:
		switch policy {
		case camera.EventsClips:
			return query.KindClips
		case camera.EventsSnapshots:
			return query.KindSnapshots
		}
		return query.KindEvents
	case caps.Clips:
		return query.KindClips
	}
	return query.KindSnapshots
}

// capable filters ids down to the cameras able to produce kind.
func (b *Builder) capable(kind query.MediaKind, ids []string) []string {
	var capable []string
	for _, id := range ids {
		c, ok := b.cameras.Camera(id)
		if ok && c.Capabilities.Supports(kind) {
			capable = append(capable, id)
		}
	}
	return capable
}

func (b *Builder) mediaNode(kind query.MediaKind, ids []string, opts Options, withDefaults bool) *query.MediaQuery {
	if len(ids) == 0 {
		return nil
	}

	node := &query.MediaQuery{CameraIDs: query.NewSet(ids...)}
	switch kind {
	case query.KindClips:
		node.Type = query.TypeEvent
		node.HasClip = query.Bool(true)
	case query.KindSnapshots:
		node.Type = query.TypeEvent
		node.HasSnapshot = query.Bool(true)
	case query.KindEvents:
		node.Type = query.TypeEvent
	case query.KindRecordings:
		node.Type = query.TypeRecording
	case query.KindReviews:
		node.Type = query.TypeReview
	default:
		return nil
	}

	if opts.Start != nil {
		node.Start = query.Time(*opts.Start)
	}
	if opts.End != nil {
		node.End = query.Time(*opts.End)
	}
	node.Limit = opts.Limit
	if opts.Favorite != nil {
		node.Favorite = query.Bool(*opts.Favorite)
	}
	if opts.Reviewed != nil {
		node.Reviewed = query.Bool(*opts.Reviewed)
	}
	node.Tags = opts.Tags.Clone()
	node.Severity = opts.Severity.Clone()
	node.What = opts.What.Clone()
	node.Where = opts.Where.Clone()

	if withDefaults {
		var what, where query.Set[string]
		for _, id := range ids {
			defaults := b.cameras.QueryDefaults(id, node.Type)
			what = what.Union(defaults.What)
			where = where.Union(defaults.Where)
		}
		if len(node.What) == 0 {
			node.What = what.Clone()
		}
		if len(node.Where) == 0 {
			node.Where = where.Clone()
		}
	}

	return node
}
