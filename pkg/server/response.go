/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"encoding/json"
	"net/http"

	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/rs/zerolog"
)

// MediaResponse is the body of every successful query endpoint.
type MediaResponse struct {
	Query   string      `json:"query"`
	Results media.Items `json:"results"`
}

func newMediaResponse(q *query.UnifiedQuery, results media.Items) MediaResponse {
	resp := MediaResponse{Results: results}
	if q != nil {
		resp.Query = q.String()
	}
	if resp.Results == nil {
		resp.Results = media.Items{}
	}
	return resp
}

type ErrResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unable to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, ErrResponse{Error: err.Error()})
}
