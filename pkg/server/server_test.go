/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dburkart/lens/pkg/camera"
	"github.com/dburkart/lens/pkg/catalog"
	"github.com/dburkart/lens/pkg/engine"
	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*Server, MetricsStore) {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "2024"), 0755); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"b.jpg", "a.mp4"} {
		path := filepath.Join(root, "2024", name)
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		mtime := start.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}

	store := catalog.NewMemoryStore()
	err := store.Insert(context.Background(),
		media.Item{ID: "e1", Kind: media.KindEvent, CameraID: "front", Start: start, HasClip: true},
		media.Item{ID: "e2", Kind: media.KindEvent, CameraID: "front", Start: start.Add(time.Hour), HasSnapshot: true},
		media.Item{ID: "r1", Kind: media.KindRecording, CameraID: "back", Start: start},
	)
	if err != nil {
		t.Fatal(err)
	}

	metrics := NewMetricsStore()
	e := engine.New(zerolog.Nop(), engine.Config{
		Cameras: []*camera.Camera{
			{ID: "front", Title: "Front", Capabilities: camera.Capabilities{Clips: true, Snapshots: true}, EventsMedia: camera.EventsClips},
			{ID: "back", Title: "Back", Capabilities: camera.Capabilities{Recordings: true}},
			{ID: "attic", Title: "Attic", Media: camera.MediaFolder, Folder: "clips"},
		},
		Folders: []*query.FolderConfig{
			{ID: "clips", Title: "Clips", Type: "local", Root: root, DefaultPath: []string{"2024"}},
		},
		Catalog:  store,
		CacheTTL: time.Minute,
		Metrics:  metrics,
	})
	metrics.RegisterCollector(NewCatalogStatsCollector(e))

	return New(zerolog.Nop(), e, metrics, 0, 0), metrics
}

func get(t *testing.T, handler http.Handler, target string) (*httptest.ResponseRecorder, MediaResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var resp MediaResponse
	if rec.Code == http.StatusOK && strings.HasPrefix(target, "/api/") && !strings.HasSuffix(target, "/cameras") && !strings.HasSuffix(target, "/folders") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unable to decode %s: %s", target, err)
		}
	}
	return rec, resp
}

func TestMediaEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	tests := []struct {
		name   string
		target string
		status int
		want   []string
		query  string
	}{
		{
			name:   "filter clips",
			target: "/api/media?camera=front&media=clips",
			status: http.StatusOK,
			want:   []string{"e1"},
			query:  "UnifiedQuery[1]",
		},
		{
			name:   "filter every kind",
			target: "/api/media?camera=front,back",
			status: http.StatusOK,
			want:   []string{"e1", "e2", "r1"},
			query:  "UnifiedQuery[4]",
		},
		{
			name:   "time window",
			target: "/api/media?camera=front&media=snapshots&start=2024-01-01T00:30:00Z",
			status: http.StatusOK,
			want:   []string{"e2"},
		},
		{
			name:   "single kind query gates capabilities",
			target: "/api/query?kind=recordings",
			status: http.StatusOK,
			want:   []string{"r1"},
			query:  "cameras(back)",
		},
		{
			name:   "camera default",
			target: "/api/cameras/front/media",
			status: http.StatusOK,
			want:   []string{"e1"},
			query:  "hasClip(true)",
		},
		{
			name:   "camera default folder",
			target: "/api/cameras/attic/media",
			status: http.StatusOK,
			want:   []string{"clips:2024/a.mp4", "clips:2024/b.jpg"},
		},
		{
			name:   "folder default path",
			target: "/api/folders/clips?limit=1",
			status: http.StatusOK,
			want:   []string{"clips:2024/a.mp4"},
			query:  "FolderQuery[clips]",
		},
		{
			name:   "folder match",
			target: "/api/folders/clips?path=2024&match=*.jpg",
			status: http.StatusOK,
			want:   []string{"clips:2024/b.jpg"},
		},
		{name: "unknown camera", target: "/api/cameras/garage/media", status: http.StatusNotFound},
		{name: "unknown folder", target: "/api/folders/nope", status: http.StatusNotFound},
		{name: "bad time", target: "/api/media?start=yesterday", status: http.StatusBadRequest},
		{name: "bad kind", target: "/api/media?media=gifs", status: http.StatusBadRequest},
		{name: "bad limit", target: "/api/query?kind=clips&limit=-1", status: http.StatusBadRequest},
		{name: "inverted window", target: "/api/media?start=2024-01-02T00:00:00Z&end=2024-01-01T00:00:00Z", status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := get(t, router, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Error("expected a request id")
			}

			if tc.status != http.StatusOK {
				var errResp ErrResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil || errResp.Error == "" {
					t.Errorf("expected a json error body, got %s", rec.Body.String())
				}
				return
			}

			if !strings.Contains(resp.Query, tc.query) {
				t.Errorf("expected query to contain %q, got %q", tc.query, resp.Query)
			}
			got := make(map[string]bool)
			for _, item := range resp.Results {
				got[item.ID] = true
			}
			if len(resp.Results) != len(tc.want) {
				t.Errorf("expected %d results, got %d", len(tc.want), len(resp.Results))
			}
			for _, id := range tc.want {
				if !got[id] {
					t.Errorf("missing %s in results", id)
				}
			}
		})
	}
}

func TestListEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec, _ := get(t, router, "/api/cameras")
	var cameras []cameraInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &cameras); err != nil {
		t.Fatal(err)
	}
	if len(cameras) != 3 || cameras[0].ID != "front" || cameras[2].Default != "folder" {
		t.Errorf("unexpected cameras: %+v", cameras)
	}

	rec, _ = get(t, router, "/api/folders")
	var folders []folderInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &folders); err != nil {
		t.Fatal(err)
	}
	if len(folders) != 1 || folders[0].ID != "clips" {
		t.Errorf("unexpected folders: %+v", folders)
	}
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cameras", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if id := rec.Header().Get(RequestIDHeader); id != "abc" {
		t.Errorf("expected the request id to be echoed, got %q", id)
	}
}

func TestMetrics(t *testing.T) {
	srv, metrics := newTestServer(t)
	router := srv.Router()

	get(t, router, "/api/media?camera=front")
	get(t, router, "/api/cameras/garage/media")

	if n := testutil.CollectAndCount(metrics.Registry(), "lens_api_requests"); n != 2 {
		t.Errorf("expected 2 api request series, got %d", n)
	}
	if n := testutil.CollectAndCount(metrics.Registry(), "lens_requests"); n != 1 {
		t.Errorf("expected 1 dispatcher series, got %d", n)
	}
	if n := testutil.CollectAndCount(metrics.Registry(), "lens_catalog_items", "lens_cameras", "lens_folders"); n != 3 {
		t.Errorf("expected catalog gauges, got %d", n)
	}
}
