/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"errors"
	"maps"
	"slices"
	"time"
)

type Source string

const (
	SourceCamera Source = "camera"
	SourceFolder Source = "folder"
)

type QueryType string

const (
	TypeEvent             QueryType = "event"
	TypeRecording         QueryType = "recording"
	TypeRecordingSegments QueryType = "recording-segments"
	TypeMediaMetadata     QueryType = "media-metadata"
	TypeReview            QueryType = "review"
)

type Severity string

const (
	SeverityAlert     Severity = "alert"
	SeverityDetection Severity = "detection"
)

// Node is one atomic, backend-routable request. The set of implementations
// is closed: *MediaQuery and *FolderQuery.
type Node interface {
	Source() Source
	Clone() Node
	Equal(other Node) bool

	node()
}

// MediaQuery is routed to the camera backends. Pointer fields are optional;
// nil means the key is absent.
type MediaQuery struct {
	Type      QueryType
	CameraIDs Set[string]

	Start *time.Time
	End   *time.Time
	Limit int // 0 means unlimited

	Favorite *bool
	Reviewed *bool
	Tags     Set[string]
	What     Set[string]
	Where    Set[string]
	Severity Set[Severity]

	// Only meaningful for TypeEvent
	HasClip     *bool
	HasSnapshot *bool
}

func (m *MediaQuery) Source() Source { return SourceCamera }
func (m *MediaQuery) node()          {}

// Validate checks that the node names a camera and only carries event flags
// on event queries.
func (m *MediaQuery) Validate() error {
	if len(m.CameraIDs) == 0 {
		return errors.New("media query requires at least one camera")
	}
	if m.Type != TypeEvent && (m.HasClip != nil || m.HasSnapshot != nil) {
		return errors.New("clip and snapshot flags only apply to event queries")
	}
	return nil
}

func (m *MediaQuery) Clone() Node {
	return m.CloneMedia()
}

// CloneMedia is Clone without the loss of the concrete type.
func (m *MediaQuery) CloneMedia() *MediaQuery {
	c := *m
	c.CameraIDs = m.CameraIDs.Clone()
	c.Start = cloneTime(m.Start)
	c.End = cloneTime(m.End)
	c.Favorite = cloneBool(m.Favorite)
	c.Reviewed = cloneBool(m.Reviewed)
	c.Tags = m.Tags.Clone()
	c.What = m.What.Clone()
	c.Where = m.Where.Clone()
	c.Severity = m.Severity.Clone()
	c.HasClip = cloneBool(m.HasClip)
	c.HasSnapshot = cloneBool(m.HasSnapshot)
	return &c
}

func (m *MediaQuery) Equal(other Node) bool {
	o, ok := other.(*MediaQuery)
	if !ok || o == nil {
		return false
	}
	return m.equalIgnoringTime(o) && timeEqual(m.Start, o.Start) && timeEqual(m.End, o.End)
}

func (m *MediaQuery) equalIgnoringTime(o *MediaQuery) bool {
	return m.Type == o.Type &&
		m.CameraIDs.Equal(o.CameraIDs) &&
		m.Limit == o.Limit &&
		boolEqual(m.Favorite, o.Favorite) &&
		boolEqual(m.Reviewed, o.Reviewed) &&
		m.Tags.Equal(o.Tags) &&
		m.What.Equal(o.What) &&
		m.Where.Equal(o.Where) &&
		m.Severity.Equal(o.Severity) &&
		boolEqual(m.HasClip, o.HasClip) &&
		boolEqual(m.HasSnapshot, o.HasSnapshot)
}

// Covers reports whether m can answer o: every field except the time bounds
// is equal, and m's interval contains o's. An absent bound is unbounded, and
// an unbounded bound on o is only covered by an unbounded bound on m.
func (m *MediaQuery) Covers(o *MediaQuery) bool {
	if !m.equalIgnoringTime(o) {
		return false
	}

	if m.Start != nil && (o.Start == nil || m.Start.After(*o.Start)) {
		return false
	}
	if m.End != nil && (o.End == nil || m.End.Before(*o.End)) {
		return false
	}
	return true
}

// FolderConfig describes a configured folder backend. Folder queries hold a
// reference to it; it is never copied by Clone.
type FolderConfig struct {
	ID    string
	Type  string
	Title string
	Root  string

	DefaultPath []string
}

func (f *FolderConfig) Equal(o *FolderConfig) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.ID == o.ID &&
		f.Type == o.Type &&
		f.Title == o.Title &&
		f.Root == o.Root &&
		slices.Equal(f.DefaultPath, o.DefaultPath)
}

// PathComponent identifies one level of a folder hierarchy. Hints carry
// backend specific matching and parsing instructions.
type PathComponent struct {
	ID    string
	Title string
	Hints map[string]string
}

func (p PathComponent) clone() PathComponent {
	p.Hints = maps.Clone(p.Hints)
	return p
}

func (p PathComponent) Equal(o PathComponent) bool {
	return p.ID == o.ID && p.Title == o.Title && maps.Equal(p.Hints, o.Hints)
}

// FolderQuery is routed to the folder backends.
type FolderQuery struct {
	Folder *FolderConfig
	Path   []PathComponent
	Limit  int
}

func (f *FolderQuery) Source() Source { return SourceFolder }
func (f *FolderQuery) node()          {}

func (f *FolderQuery) Validate() error {
	if f.Folder == nil {
		return errors.New("folder query requires a folder")
	}
	if len(f.Path) == 0 {
		return errors.New("folder query requires a non-empty path")
	}
	return nil
}

func (f *FolderQuery) Clone() Node {
	return f.CloneFolder()
}

func (f *FolderQuery) CloneFolder() *FolderQuery {
	c := *f
	c.Path = make([]PathComponent, len(f.Path))
	for i, p := range f.Path {
		c.Path[i] = p.clone()
	}
	return &c
}

func (f *FolderQuery) Equal(other Node) bool {
	o, ok := other.(*FolderQuery)
	if !ok || o == nil {
		return false
	}
	if f.Limit != o.Limit || !f.Folder.Equal(o.Folder) || len(f.Path) != len(o.Path) {
		return false
	}
	for i := range f.Path {
		if !f.Path[i].Equal(o.Path[i]) {
			return false
		}
	}
	return true
}

// FolderID returns the id of the referenced folder, or "" when unset.
func (f *FolderQuery) FolderID() string {
	if f.Folder == nil {
		return ""
	}
	return f.Folder.ID
}

func Bool(b bool) *bool { return &b }

func Time(t time.Time) *time.Time { return &t }

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func boolEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
