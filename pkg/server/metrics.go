/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsStore interface {
	Registry() *prometheus.Registry
	RegisterCollector(c prometheus.Collector)
	Handler() http.Handler

	// Collection
	IncAPIRequests(route string, status int)
	IncRequests(op, source string)
	ObserveResponseNS(op, source string, t int64)
}

type metricsStore struct {
	registry    *prometheus.Registry
	APIRequests *prometheus.CounterVec
	Requests    *prometheus.CounterVec
	ResponseNS  *prometheus.HistogramVec
}

var (
	OperationLabel = "op"
	SourceLabel    = "source"
	RouteLabel     = "route"
	StatusLabel    = "status"
)

func NewMetricsStore() MetricsStore {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsAll),
		),
	)

	buckets := []float64{}
	for i := 1; i < 20; i++ {
		buckets = append(buckets, float64(2*i*int(time.Millisecond)))
	}

	factory := promauto.With(reg)
	return &metricsStore{
		registry: reg,
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lens_api_requests",
			Help: "Requests served by the HTTP API",
		}, []string{RouteLabel, StatusLabel}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lens_requests",
			Help: "Dispatcher calls made by the query runner",
		}, []string{OperationLabel, SourceLabel}),
		ResponseNS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lens_response_ns",
			Help:    "Response times of dispatcher calls",
			Buckets: buckets,
		}, []string{OperationLabel, SourceLabel}),
	}
}

func (ms *metricsStore) Registry() *prometheus.Registry {
	return ms.registry
}

func (ms *metricsStore) RegisterCollector(c prometheus.Collector) {
	ms.registry.MustRegister(c)
}

func (ms *metricsStore) Handler() http.Handler {
	return promhttp.HandlerFor(ms.Registry(), promhttp.HandlerOpts{Registry: ms.Registry()})
}

func (ms *metricsStore) IncAPIRequests(route string, status int) {
	ms.APIRequests.With(prometheus.Labels{RouteLabel: route, StatusLabel: strconv.Itoa(status)}).Inc()
}

func (ms *metricsStore) IncRequests(op, source string) {
	ms.Requests.With(prometheus.Labels{OperationLabel: op, SourceLabel: source}).Inc()
}

func (ms *metricsStore) ObserveResponseNS(op, source string, t int64) {
	ms.ResponseNS.
		With(prometheus.Labels{OperationLabel: op, SourceLabel: source}).
		Observe(float64(t))
}
