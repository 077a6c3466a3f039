/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package media

import (
	"fmt"
	"slices"
	"time"
)

type Kind string

const (
	KindEvent     Kind = "event"
	KindRecording Kind = "recording"
	KindReview    Kind = "review"
	KindFolder    Kind = "folder"
	KindFile      Kind = "file"
)

// Direction is the time axis direction of an extension.
type Direction string

const (
	Earlier Direction = "earlier"
	Later   Direction = "later"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Earlier, Later:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction: %s", s)
}

// An Item is a single result produced by a backend, either a piece of camera
// media or an entry in a folder listing.
type Item struct {
	ID       string    `json:"id" yaml:"id"`
	Kind     Kind      `json:"kind" yaml:"kind"`
	CameraID string    `json:"camera,omitempty" yaml:"camera"`
	FolderID string    `json:"folder,omitempty" yaml:"folder"`
	Title    string    `json:"title,omitempty" yaml:"title"`
	Path     string    `json:"path,omitempty" yaml:"path"`
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end,omitempty" yaml:"end"`
	Size     int64     `json:"size,omitempty" yaml:"size"`

	HasClip     bool     `json:"has_clip,omitempty" yaml:"has_clip"`
	HasSnapshot bool     `json:"has_snapshot,omitempty" yaml:"has_snapshot"`
	Favorite    bool     `json:"favorite,omitempty" yaml:"favorite"`
	Reviewed    bool     `json:"reviewed,omitempty" yaml:"reviewed"`
	Severity    string   `json:"severity,omitempty" yaml:"severity"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
	What        []string `json:"what,omitempty" yaml:"what"`
	Where       []string `json:"where,omitempty" yaml:"where"`
}

func (i *Item) ToString() string {
	source := i.CameraID
	if source == "" {
		source = i.FolderID
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", i.Start.Format(time.RFC3339), i.Kind, source, i.Title)
}

type Items []Item

// Newest returns the latest start time among the items.
func (items Items) Newest() (time.Time, bool) {
	var newest time.Time
	for _, i := range items {
		if i.Start.After(newest) {
			newest = i.Start
		}
	}
	return newest, !newest.IsZero()
}

// Oldest returns the earliest non-zero start time among the items.
func (items Items) Oldest() (time.Time, bool) {
	var oldest time.Time
	for _, i := range items {
		if i.Start.IsZero() {
			continue
		}
		if oldest.IsZero() || i.Start.Before(oldest) {
			oldest = i.Start
		}
	}
	return oldest, !oldest.IsZero()
}

// SortNewestFirst orders the items by descending start time, keeping the
// relative order of items that start together.
func (items Items) SortNewestFirst() {
	slices.SortStableFunc(items, func(a, b Item) int {
		return b.Start.Compare(a.Start)
	})
}

// Merge appends the items of more whose ids are not already present.
func (items Items) Merge(more Items) Items {
	seen := make(map[string]struct{}, len(items))
	for _, i := range items {
		seen[i.ID] = struct{}{}
	}

	merged := slices.Clone(items)
	for _, i := range more {
		if _, ok := seen[i.ID]; ok {
			continue
		}
		seen[i.ID] = struct{}{}
		merged = append(merged, i)
	}
	return merged
}
