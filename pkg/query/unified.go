/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

// MediaKind is the viewer-facing name for a kind of media.
type MediaKind string

const (
	KindClips      MediaKind = "clips"
	KindSnapshots  MediaKind = "snapshots"
	KindEvents     MediaKind = "events"
	KindRecordings MediaKind = "recordings"
	KindReviews    MediaKind = "reviews"
	KindFolder     MediaKind = "folder"
)

// ViewableKinds are the kinds a UnifiedQuery can report from AllMediaTypes,
// in display order.
var ViewableKinds = []MediaKind{KindClips, KindSnapshots, KindRecordings, KindReviews}

// UnifiedQuery is an ordered collection of nodes making up one logical
// request. Order does not affect execution but does affect Equal.
type UnifiedQuery struct {
	nodes []Node
}

func New(nodes ...Node) *UnifiedQuery {
	q := &UnifiedQuery{}
	return q.AddNodes(nodes...)
}

// AddNode appends n and returns q for chaining. Duplicate nodes are allowed.
func (q *UnifiedQuery) AddNode(n Node) *UnifiedQuery {
	q.nodes = append(q.nodes, n)
	return q
}

func (q *UnifiedQuery) AddNodes(nodes ...Node) *UnifiedQuery {
	q.nodes = append(q.nodes, nodes...)
	return q
}

// Nodes returns the nodes in insertion order. The returned slice is a copy;
// the nodes themselves are shared.
func (q *UnifiedQuery) Nodes() []Node {
	nodes := make([]Node, len(q.nodes))
	copy(nodes, q.nodes)
	return nodes
}

func (q *UnifiedQuery) Len() int {
	return len(q.nodes)
}

func (q *UnifiedQuery) IsEmpty() bool {
	return len(q.nodes) == 0
}

// MediaQueryFilter narrows MediaQueries. Zero fields match everything.
type MediaQueryFilter struct {
	CameraID string
	Type     QueryType
}

// MediaQueries returns the camera-routed nodes matching filter. CameraID
// matches by membership in the node's camera set.
func (q *UnifiedQuery) MediaQueries(filter MediaQueryFilter) []*MediaQuery {
	queries := []*MediaQuery{}
	for _, n := range q.nodes {
		m, ok := n.(*MediaQuery)
		if !ok {
			continue
		}
		if filter.CameraID != "" && !m.CameraIDs.Has(filter.CameraID) {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		queries = append(queries, m)
	}
	return queries
}

// FolderQueries returns the folder-routed nodes, restricted to folderID when
// it is not empty.
func (q *UnifiedQuery) FolderQueries(folderID string) []*FolderQuery {
	queries := []*FolderQuery{}
	for _, n := range q.nodes {
		f, ok := n.(*FolderQuery)
		if !ok {
			continue
		}
		if folderID != "" && f.FolderID() != folderID {
			continue
		}
		queries = append(queries, f)
	}
	return queries
}

// NonMediaQueries returns every node that is not a *MediaQuery.
func (q *UnifiedQuery) NonMediaQueries() []Node {
	nodes := []Node{}
	for _, n := range q.nodes {
		if _, ok := n.(*MediaQuery); !ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (q *UnifiedQuery) AllCameraIDs() Set[string] {
	ids := NewSet[string]()
	for _, m := range q.MediaQueries(MediaQueryFilter{}) {
		for id := range m.CameraIDs {
			ids.Add(id)
		}
	}
	return ids
}

// AllMediaTypes maps media nodes onto ViewableKinds. Event nodes contribute
// only through their clip and snapshot flags, and recording segment and
// metadata nodes contribute nothing.
func (q *UnifiedQuery) AllMediaTypes() Set[MediaKind] {
	kinds := NewSet[MediaKind]()
	for _, m := range q.MediaQueries(MediaQueryFilter{}) {
		switch m.Type {
		case TypeEvent:
			if m.HasClip != nil && *m.HasClip {
				kinds.Add(KindClips)
			}
			if m.HasSnapshot != nil && *m.HasSnapshot {
				kinds.Add(KindSnapshots)
			}
		case TypeRecording:
			kinds.Add(KindRecordings)
		case TypeReview:
			kinds.Add(KindReviews)
		}
	}
	return kinds
}

// Clone returns a deep copy. Folder configuration references are shared.
func (q *UnifiedQuery) Clone() *UnifiedQuery {
	c := &UnifiedQuery{nodes: make([]Node, len(q.nodes))}
	for i, n := range q.nodes {
		c.nodes[i] = n.Clone()
	}
	return c
}

// Equal is a deep, order sensitive comparison.
func (q *UnifiedQuery) Equal(other *UnifiedQuery) bool {
	if q == nil || other == nil {
		return q == other
	}
	if len(q.nodes) != len(other.nodes) {
		return false
	}
	for i := range q.nodes {
		if !q.nodes[i].Equal(other.nodes[i]) {
			return false
		}
	}
	return true
}

// IsSupersetOf reports whether every node of other is covered by some node
// of q. Media nodes may be covered by a wider time range; all other nodes
// require exact equality.
func (q *UnifiedQuery) IsSupersetOf(other *UnifiedQuery) bool {
	if other == nil {
		return true
	}
	if q == nil {
		return other.IsEmpty()
	}

	for _, theirs := range other.nodes {
		if !q.covers(theirs) {
			return false
		}
	}
	return true
}

func (q *UnifiedQuery) covers(theirs Node) bool {
	for _, ours := range q.nodes {
		switch n := ours.(type) {
		case *MediaQuery:
			if t, ok := theirs.(*MediaQuery); ok && n.Covers(t) {
				return true
			}
		case *FolderQuery:
			if n.Equal(theirs) {
				return true
			}
		}
	}
	return false
}
