/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package engine

import (
	"slices"
	"sync"
	"time"

	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
)

type cacheEntry struct {
	query   *query.UnifiedQuery
	node    *query.MediaQuery
	items   media.Items
	fetched time.Time
}

// resultCache remembers recent node results, newest entry last. A request
// is answered from an entry whose query is a superset of it.
type resultCache struct {
	size    int
	now     func() time.Time
	entries []cacheEntry
	lock    sync.Mutex
}

func newResultCache(size int, now func() time.Time) *resultCache {
	return &resultCache{size: size, now: now}
}

func (c *resultCache) store(node *query.MediaQuery, items media.Items) {
	c.lock.Lock()
	defer c.lock.Unlock()

	cached := node.CloneMedia()
	c.entries = append(c.entries, cacheEntry{
		query:   query.New(cached),
		node:    cached,
		items:   slices.Clone(items),
		fetched: c.now(),
	})
	if len(c.entries) > c.size {
		c.entries = slices.Delete(c.entries, 0, len(c.entries)-c.size)
	}
}

func (c *resultCache) lookup(node *query.MediaQuery, ttl time.Duration) (media.Items, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	request := query.New(node)
	now := c.now()

	for i := len(c.entries) - 1; i >= 0; i-- {
		entry := &c.entries[i]
		if now.Sub(entry.fetched) >= ttl || !entry.query.IsSupersetOf(request) {
			continue
		}
		// Coverage already requires an equal limit. A limited entry still only
		// holds the newest items of its own window, so a different window with
		// the same limit must go to the catalog.
		if entry.node.Limit > 0 && !entry.node.Equal(node) {
			continue
		}

		items := media.Items{}
		for _, item := range entry.items {
			if node.Start != nil && item.Start.Before(*node.Start) {
				continue
			}
			if node.End != nil && item.Start.After(*node.End) {
				continue
			}
			items = append(items, item)
		}
		if node.Limit > 0 && len(items) > node.Limit {
			items = items[:node.Limit]
		}
		return items, true
	}
	return nil, false
}
