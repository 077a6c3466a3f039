/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dburkart/lens/pkg/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-Id"

type Server struct {
	log     zerolog.Logger
	metrics MetricsStore
	engine  *engine.Engine

	apiPort     int
	metricsPort int
}

func New(log zerolog.Logger, e *engine.Engine, metrics MetricsStore, apiPort, metricsPort int) *Server {
	return &Server{
		log:         log,
		metrics:     metrics,
		engine:      e,
		apiPort:     apiPort,
		metricsPort: metricsPort,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/media", s.handleMedia)
		r.Get("/query", s.handleQuery)
		r.Get("/cameras", s.handleCameras)
		r.Get("/cameras/{id}/media", s.handleCameraMedia)
		r.Get("/folders", s.handleFolders)
		r.Get("/folders/{id}", s.handleFolder)
	})

	return r
}

// requestLogger tags each request with an id, logs it and counts it by
// route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		log := s.log.With().Str("request-id", id).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.IncAPIRequests(route, ww.Status())
		}

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("handled request")
	})
}

// ServeAPI listens on the API port until ctx is cancelled.
func (s *Server) ServeAPI(ctx context.Context) error {
	s.log.Info().Int("port", s.apiPort).Msg("listening for API requests")
	return s.listenAndServe(ctx, s.apiPort, s.Router())
}

func (s *Server) ServeMetrics(ctx context.Context) error {
	s.log.Info().Int("port", s.metricsPort).Msg("/metrics endpoint started")

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	return s.listenAndServe(ctx, s.metricsPort, mux)
}

func (s *Server) listenAndServe(ctx context.Context, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			s.log.Error().Err(err).Int("port", port).Msg("error shutting down")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
