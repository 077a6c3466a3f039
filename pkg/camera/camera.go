/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package camera

import (
	"fmt"

	"github.com/dburkart/lens/pkg/query"
)

// MediaPreference selects what a camera shows by default.
type MediaPreference string

const (
	MediaAuto       MediaPreference = "auto"
	MediaEvents     MediaPreference = "events"
	MediaClips      MediaPreference = "clips"
	MediaSnapshots  MediaPreference = "snapshots"
	MediaRecordings MediaPreference = "recordings"
	MediaReviews    MediaPreference = "reviews"
	MediaFolder     MediaPreference = "folder"
)

func ParseMediaPreference(s string) (MediaPreference, error) {
	switch p := MediaPreference(s); p {
	case "":
		return MediaAuto, nil
	case MediaAuto, MediaEvents, MediaClips, MediaSnapshots, MediaRecordings, MediaReviews, MediaFolder:
		return p, nil
	}
	return "", fmt.Errorf("unknown media preference: %s", s)
}

// EventsPolicy decides which event flavor to show for a camera that has
// both clips and snapshots.
type EventsPolicy string

const (
	EventsAll       EventsPolicy = "all"
	EventsClips     EventsPolicy = "clips"
	EventsSnapshots EventsPolicy = "snapshots"
)

func ParseEventsPolicy(s string) (EventsPolicy, error) {
	switch p := EventsPolicy(s); p {
	case "":
		return EventsAll, nil
	case EventsAll, EventsClips, EventsSnapshots:
		return p, nil
	}
	return "", fmt.Errorf("unknown events media policy: %s", s)
}

type Capabilities struct {
	Clips      bool
	Snapshots  bool
	Recordings bool
	Reviews    bool
}

// Media reports whether the camera can produce any media at all.
func (c Capabilities) Media() bool {
	return c.Clips || c.Snapshots || c.Recordings || c.Reviews
}

func (c Capabilities) Union(o Capabilities) Capabilities {
	return Capabilities{
		Clips:      c.Clips || o.Clips,
		Snapshots:  c.Snapshots || o.Snapshots,
		Recordings: c.Recordings || o.Recordings,
		Reviews:    c.Reviews || o.Reviews,
	}
}

// Supports reports whether a node of the given kind can be answered.
func (c Capabilities) Supports(kind query.MediaKind) bool {
	switch kind {
	case query.KindClips:
		return c.Clips
	case query.KindSnapshots:
		return c.Snapshots
	case query.KindEvents:
		return c.Clips || c.Snapshots
	case query.KindRecordings:
		return c.Recordings
	case query.KindReviews:
		return c.Reviews
	}
	return false
}

type Camera struct {
	ID    string
	Title string

	Capabilities Capabilities
	Media        MediaPreference
	EventsMedia  EventsPolicy

	// Default filters applied to event and review queries
	What  []string
	Where []string

	// Other cameras shown alongside this one
	Dependencies []string

	// Folder shown when the preference resolves to a folder
	Folder string
}

// QueryDefaults are the per-camera filter values a builder merges into the
// nodes it creates.
type QueryDefaults struct {
	What  query.Set[string]
	Where query.Set[string]
}

func (c *Camera) QueryDefaults(t query.QueryType) QueryDefaults {
	switch t {
	case query.TypeEvent, query.TypeReview:
		return QueryDefaults{
			What:  query.NewSet(c.What...),
			Where: query.NewSet(c.Where...),
		}
	}
	return QueryDefaults{}
}
