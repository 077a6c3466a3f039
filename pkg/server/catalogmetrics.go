/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"

	"github.com/dburkart/lens/pkg/engine"
	"github.com/prometheus/client_golang/prometheus"
)

type catalogStatsCollector struct {
	engine *engine.Engine

	items   *prometheus.Desc
	cameras *prometheus.Desc
	folders *prometheus.Desc
}

func NewCatalogStatsCollector(e *engine.Engine) prometheus.Collector {
	return &catalogStatsCollector{
		engine: e,
		items: prometheus.NewDesc(
			"lens_catalog_items",
			"Number of media items in the catalog.",
			nil, nil,
		),
		cameras: prometheus.NewDesc(
			"lens_cameras",
			"Number of configured cameras.",
			nil, nil,
		),
		folders: prometheus.NewDesc(
			"lens_folders",
			"Number of configured folders.",
			nil, nil,
		),
	}
}

// Describe implements Collector.
func (c *catalogStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.items
	ch <- c.cameras
	ch <- c.folders
}

// Collect implements Collector.
func (c *catalogStatsCollector) Collect(ch chan<- prometheus.Metric) {
	if count, err := c.engine.Catalog.Len(context.Background()); err == nil {
		ch <- prometheus.MustNewConstMetric(c.items, prometheus.GaugeValue, float64(count))
	}
	ch <- prometheus.MustNewConstMetric(c.cameras, prometheus.GaugeValue, float64(len(c.engine.Cameras.CameraIDs())))
	ch <- prometheus.MustNewConstMetric(c.folders, prometheus.GaugeValue, float64(len(c.engine.Folders.Folders())))
}
