/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dburkart/lens/pkg/camera"
	"github.com/dburkart/lens/pkg/catalog"
	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/rs/zerolog"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return epoch.Add(time.Duration(minutes) * time.Minute)
}

// newTestEngine returns an engine over 60 front camera events, one per
// minute. Even minutes have clips, every tenth minute is a favorite.
func newTestEngine(t *testing.T) (*CameraEngine, catalog.Store) {
	t.Helper()

	store := catalog.NewMemoryStore()
	var items media.Items
	for i := 0; i < 60; i++ {
		items = append(items, media.Item{
			ID:          fmt.Sprintf("front-%d", i),
			Kind:        media.KindEvent,
			CameraID:    "front",
			Start:       at(i),
			HasClip:     i%2 == 0,
			HasSnapshot: true,
			Favorite:    i%10 == 0,
			What:        []string{"person"},
		})
	}
	items = append(items, media.Item{ID: "back-rec", Kind: media.KindRecording, CameraID: "back", Start: at(5)})
	if err := store.Insert(context.Background(), items...); err != nil {
		t.Fatal(err)
	}

	cameras := camera.NewStore(
		&camera.Camera{ID: "front", Capabilities: camera.Capabilities{Clips: true, Snapshots: true}},
		&camera.Camera{ID: "back", Capabilities: camera.Capabilities{Recordings: true}},
	)
	e := NewCameraEngine(zerolog.Nop(), cameras, store, CameraEngineOptions{TTL: time.Minute})
	e.now = func() time.Time { return at(100) }
	return e, store
}

func TestExecuteMediaQueries(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name string
		node *query.MediaQuery
		want []string
	}{
		{
			name: "clips with limit",
			node: &query.MediaQuery{Type: query.TypeEvent, CameraIDs: query.NewSet("front"), HasClip: query.Bool(true), Limit: 3},
			want: []string{"front-58", "front-56", "front-54"},
		},
		{
			name: "favorites in window",
			node: &query.MediaQuery{Type: query.TypeEvent, CameraIDs: query.NewSet("front"), Favorite: query.Bool(true), Start: query.Time(at(15)), End: query.Time(at(40))},
			want: []string{"front-40", "front-30", "front-20"},
		},
		{
			name: "unknown label",
			node: &query.MediaQuery{Type: query.TypeEvent, CameraIDs: query.NewSet("front"), What: query.NewSet("car")},
			want: []string{},
		},
		{
			name: "recordings",
			node: &query.MediaQuery{Type: query.TypeRecording, CameraIDs: query.NewSet("front", "back")},
			want: []string{"back-rec"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{tc.node}, runner.ExecuteOptions{})
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != len(tc.want) {
				t.Fatalf("expected %d items, got %d", len(tc.want), len(items))
			}
			for i, id := range tc.want {
				if items[i].ID != id {
					t.Errorf("item %d: expected %s, got %s", i, id, items[i].ID)
				}
			}
		})
	}
}

func TestExecuteMediaQueriesCache(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	wide := &query.MediaQuery{Type: query.TypeEvent, CameraIDs: query.NewSet("front"), HasClip: query.Bool(true)}
	if _, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{wide}, runner.ExecuteOptions{}); err != nil {
		t.Fatal(err)
	}

	late := media.Item{ID: "front-late", Kind: media.KindEvent, CameraID: "front", Start: at(59).Add(time.Second), HasClip: true}
	if err := store.Insert(ctx, late); err != nil {
		t.Fatal(err)
	}

	narrow := wide.CloneMedia()
	narrow.Start = query.Time(at(50))

	cached, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{narrow}, runner.ExecuteOptions{UseCache: true})
	if err != nil {
		t.Fatal(err)
	}
	// Minutes 50 through 58
	if len(cached) != 5 || cached[0].ID != "front-58" {
		t.Errorf("expected 5 cached items, got %d", len(cached))
	}

	fresh, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{narrow}, runner.ExecuteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 6 || fresh[0].ID != "front-late" {
		t.Errorf("expected the late item without the cache, got %d items", len(fresh))
	}

	// A limited entry cannot answer a narrower request
	limited := wide.CloneMedia()
	limited.Limit = 2
	if _, err = e.ExecuteMediaQueries(ctx, []*query.MediaQuery{limited}, runner.ExecuteOptions{}); err != nil {
		t.Fatal(err)
	}
	narrowLimited := limited.CloneMedia()
	narrowLimited.End = query.Time(at(10))
	items, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{narrowLimited}, runner.ExecuteOptions{UseCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "front-10" {
		t.Errorf("expected a catalog read for the narrower limited query, got %v", items)
	}
}

func TestExtendMediaQueries(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	node := &query.MediaQuery{
		Type:      query.TypeEvent,
		CameraIDs: query.NewSet("front"),
		Start:     query.Time(at(40)),
		End:       query.Time(at(49)),
	}
	existing, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{node}, runner.ExecuteOptions{})
	if err != nil {
		t.Fatal(err)
	}

	ext, err := e.ExtendMediaQueries(ctx, []*query.MediaQuery{node}, existing, media.Earlier, runner.ExecuteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if ext == nil {
		t.Fatal("expected an extension")
	}
	// The earlier window is [31m, 40m]
	if len(ext.Results) != 19 {
		t.Errorf("expected 19 results, got %d", len(ext.Results))
	}
	if oldest, _ := ext.Results.Oldest(); !oldest.Equal(at(31)) {
		t.Errorf("expected oldest at 31m, got %s", oldest)
	}
	if len(ext.Queries) != 1 || !ext.Queries[0].Start.Equal(at(31)) || !ext.Queries[0].End.Equal(at(49)) {
		t.Errorf("expected the extended query to span both windows, got %s", query.DumpNode(ext.Queries[0]))
	}
	if !node.Start.Equal(at(40)) {
		t.Error("extension mutated the input node")
	}

	// Nothing exists after the last event
	all, _ := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{{Type: query.TypeEvent, CameraIDs: query.NewSet("front")}}, runner.ExecuteOptions{})
	later, err := e.ExtendMediaQueries(ctx, []*query.MediaQuery{{Type: query.TypeEvent, CameraIDs: query.NewSet("front")}}, all, media.Later, runner.ExecuteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if later != nil {
		t.Errorf("expected no extension, got %d results", len(later.Results))
	}

	none, err := e.ExtendMediaQueries(ctx, []*query.MediaQuery{node}, nil, media.Earlier, runner.ExecuteOptions{})
	if err != nil || none != nil {
		t.Errorf("expected no extension without existing results")
	}
}

func TestExtendMediaQueriesMixedResults(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	events := &query.MediaQuery{
		Type:      query.TypeEvent,
		CameraIDs: query.NewSet("front"),
		Start:     query.Time(at(40)),
		End:       query.Time(at(49)),
	}
	recordings := &query.MediaQuery{Type: query.TypeRecording, CameraIDs: query.NewSet("back"), End: query.Time(at(1))}
	nodes := []*query.MediaQuery{events, recordings}

	existing, err := e.ExecuteMediaQueries(ctx, []*query.MediaQuery{events}, runner.ExecuteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// A folder file modified after every event must not become the anchor
	existing = append(existing, media.Item{ID: "clips:2024/a.mp4", Kind: media.KindFile, FolderID: "clips", Start: at(99)})

	ext, err := e.ExtendMediaQueries(ctx, nodes, existing, media.Later, runner.ExecuteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if ext == nil {
		t.Fatal("expected an extension")
	}
	// The later window is [49m, 58m]
	if len(ext.Results) != 20 {
		t.Errorf("expected 20 results, got %d", len(ext.Results))
	}
	ids := make(map[string]bool)
	for _, item := range ext.Results {
		ids[item.ID] = true
	}
	for _, id := range []string{"front-50", "front-58", "clips:2024/a.mp4"} {
		if !ids[id] {
			t.Errorf("expected %s in the extended results", id)
		}
	}
	if ids["back-rec"] {
		t.Error("a node without results of its own should not be extended")
	}

	if len(ext.Queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(ext.Queries))
	}
	if !ext.Queries[0].Start.Equal(at(40)) || !ext.Queries[0].End.Equal(at(58)) {
		t.Errorf("unexpected extended events node: %s", query.DumpNode(ext.Queries[0]))
	}
	if !ext.Queries[1].Equal(recordings) {
		t.Errorf("expected the recordings node unchanged, got %s", query.DumpNode(ext.Queries[1]))
	}

	// Only folder items: nothing to anchor on
	files := media.Items{{ID: "clips:2024/a.mp4", Kind: media.KindFile, FolderID: "clips", Start: at(99)}}
	none, err := e.ExtendMediaQueries(ctx, []*query.MediaQuery{events}, files, media.Earlier, runner.ExecuteOptions{})
	if err != nil || none != nil {
		t.Errorf("expected no extension from folder items alone")
	}
}

func TestAreMediaQueriesResultsFresh(t *testing.T) {
	e, _ := newTestEngine(t)

	open := &query.MediaQuery{Type: query.TypeEvent, CameraIDs: query.NewSet("front")}
	closed := &query.MediaQuery{Type: query.TypeEvent, CameraIDs: query.NewSet("front"), End: query.Time(at(10))}

	if !e.AreMediaQueriesResultsFresh(at(100).Add(-time.Second), []*query.MediaQuery{open}) {
		t.Error("expected results within the ttl to be fresh")
	}
	if e.AreMediaQueriesResultsFresh(at(90), []*query.MediaQuery{open}) {
		t.Error("expected stale results for an open window")
	}
	if !e.AreMediaQueriesResultsFresh(at(90), []*query.MediaQuery{closed}) {
		t.Error("expected a closed window to stay fresh")
	}
	if e.AreMediaQueriesResultsFresh(at(90), []*query.MediaQuery{closed, open}) {
		t.Error("expected any open window to make results stale")
	}
}
