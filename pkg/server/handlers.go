/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dburkart/lens/pkg/builder"
	"github.com/dburkart/lens/pkg/engine"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type cameraInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Default string `json:"default,omitempty"`
}

type folderInfo struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

func (s *Server) handleCameras(w http.ResponseWriter, r *http.Request) {
	cameras := []cameraInfo{}
	for _, id := range s.engine.Cameras.CameraIDs() {
		cam, _ := s.engine.Cameras.Camera(id)
		cameras = append(cameras, cameraInfo{ID: id, Title: cam.Title, Default: string(cam.Media)})
	}
	writeJSON(w, r, http.StatusOK, cameras)
}

func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	folders := []folderInfo{}
	for _, f := range s.engine.Folders.Folders() {
		folders = append(folders, folderInfo{ID: f.ID, Title: f.Title, Type: f.Type})
	}
	writeJSON(w, r, http.StatusOK, folders)
}

// handleMedia runs a filter query over the requested cameras and media
// kinds.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	opts, err := builder.ParseOptions(params)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	kinds, err := builder.ParseKinds(params)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	q := s.engine.Builder.BuildFilterQuery(builder.ParseList(params, "camera"), kinds, opts)
	s.execute(w, r, q)
}

// handleQuery builds a single media kind query the way a viewer would,
// with capability gating and camera defaults applied.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	opts, err := builder.ParseOptions(params)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	kind := query.MediaKind(params.Get("kind"))
	if !builder.IsMediaKind(kind) {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("unknown media kind: %q", kind))
		return
	}

	cameras := builder.ParseList(params, "camera")
	if cameras == nil {
		cameras = query.NewSet(s.engine.Cameras.CameraIDs()...)
	}

	q := s.engine.Builder.BuildMediaQuery(kind, cameras, opts)
	s.execute(w, r, q)
}

func (s *Server) handleCameraMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.engine.Cameras.Camera(id); !ok {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown camera: %s", id))
		return
	}

	opts, err := builder.ParseOptions(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	q := s.engine.Builder.BuildDefaultCameraQuery(id, opts)
	if q == nil {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("camera %s has no media to show", id))
		return
	}
	s.execute(w, r, q)
}

// handleFolder lists a folder at its default path, or at the slash separated
// path below its root given by the path parameter.
func (s *Server) handleFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	folder, ok := s.engine.Folders.Folder(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, errors.Wrap(engine.ErrUnknownFolder, id))
		return
	}

	params := r.URL.Query()
	limit, err := builder.ParseLimit(params)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var q *query.UnifiedQuery
	if p := params.Get("path"); p != "" || params.Has("match") {
		path := []query.PathComponent{{ID: folder.Root, Title: folder.Title}}
		for _, part := range strings.Split(p, "/") {
			if part != "" {
				path = append(path, query.PathComponent{ID: part})
			}
		}
		if match := params.Get("match"); match != "" {
			last := &path[len(path)-1]
			last.Hints = map[string]string{engine.HintMatch: match}
		}
		q = s.engine.Builder.BuildFolderQuery(folder, path, builder.FolderOptions{Limit: limit})
	} else {
		q = s.engine.Builder.BuildDefaultFolderQuery(id)
		if q != nil && limit > 0 {
			for _, node := range q.FolderQueries("") {
				node.Limit = limit
			}
		}
	}

	if q == nil {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("folder %s has no default path", id))
		return
	}
	s.execute(w, r, q)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, q *query.UnifiedQuery) {
	opts := runner.ExecuteOptions{
		UseCache:   r.URL.Query().Get("cache") != "false",
		Conditions: parseConditions(r.URL.Query()),
	}

	results, err := s.engine.Runner.Execute(r.Context(), q, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrUnknownFolder) {
			status = http.StatusNotFound
		}
		writeError(w, r, status, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newMediaResponse(q, results))
}

// parseConditions reads condition state from "if.<key>=<value>" parameters.
func parseConditions(params url.Values) runner.ConditionState {
	var conditions runner.ConditionState
	for key := range params {
		name, ok := strings.CutPrefix(key, "if.")
		if !ok {
			continue
		}
		if conditions == nil {
			conditions = runner.ConditionState{}
		}
		conditions[name] = params.Get(key)
	}
	return conditions
}
