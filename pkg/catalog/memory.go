/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package catalog

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dburkart/lens/pkg/media"
)

// SegmentSize is the number of items held by a segment before it splits.
const SegmentSize int = 1024

// A Segment is a run of items sorted by start time. HeadTime is the start of
// its first item.
type Segment struct {
	HeadTime time.Time
	Series   []media.Item
}

func (s *Segment) insert(item media.Item) {
	index := sort.Search(len(s.Series), func(i int) bool {
		return s.Series[i].Start.After(item.Start)
	})
	s.Series = slices.Insert(s.Series, index, item)
	s.HeadTime = s.Series[0].Start
}

// FindIndex returns the index of the first item starting at or after
// desired.
func (s *Segment) FindIndex(desired time.Time) int {
	return sort.Search(len(s.Series), func(i int) bool {
		return !s.Series[i].Start.Before(desired)
	})
}

// MemoryStore keeps items in time ordered segments.
type MemoryStore struct {
	Segments []Segment

	ids  map[string]struct{}
	lock sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]struct{})}
}

func (m *MemoryStore) Insert(_ context.Context, items ...media.Item) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, item := range items {
		if _, exists := m.ids[item.ID]; exists {
			continue
		}
		m.ids[item.ID] = struct{}{}
		m.insertInternal(item)
	}
	return nil
}

func (m *MemoryStore) insertInternal(item media.Item) {
	if len(m.Segments) == 0 {
		m.Segments = append(m.Segments, Segment{HeadTime: item.Start})
	}

	// The owning segment is the last one whose head is not after the item
	index := sort.Search(len(m.Segments), func(i int) bool {
		return m.Segments[i].HeadTime.After(item.Start)
	}) - 1
	if index < 0 {
		index = 0
	}

	segment := &m.Segments[index]
	segment.insert(item)

	if len(segment.Series) > SegmentSize {
		half := len(segment.Series) / 2
		tail := Segment{Series: slices.Clone(segment.Series[half:])}
		tail.HeadTime = tail.Series[0].Start
		segment.Series = slices.Clip(segment.Series[:half])
		m.Segments = slices.Insert(m.Segments, index+1, tail)
	}
}

func (m *MemoryStore) Select(_ context.Context, sel Selection) (media.Items, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	results := media.Items{}

	// A split can leave items sharing a segment's head time at the tail of
	// the segment before it, so scanning starts one segment before the first
	// head at or after the selection start.
	first := 0
	if sel.Start != nil {
		first = sort.Search(len(m.Segments), func(i int) bool {
			return !m.Segments[i].HeadTime.Before(*sel.Start)
		}) - 1
		if first < 0 {
			first = 0
		}
	}

	for i := first; i < len(m.Segments); i++ {
		segment := &m.Segments[i]
		if sel.End != nil && segment.HeadTime.After(*sel.End) {
			break
		}

		start := 0
		if sel.Start != nil {
			start = segment.FindIndex(*sel.Start)
		}
		for j := start; j < len(segment.Series); j++ {
			item := &segment.Series[j]
			if sel.End != nil && item.Start.After(*sel.End) {
				break
			}
			if sel.Matches(item) {
				results = append(results, *item)
			}
		}
	}

	return results, nil
}

func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.ids), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
