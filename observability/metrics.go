// Copyright (c) 2024-2026, The Wiplan Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package observability bundles Prometheus metrics for the coverage and
// placement engines. A nil *Collector is a valid no-op, so library callers
// that do not scrape metrics pay nothing.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the engine metrics and provides an HTTP handler to
// expose them.
type Collector struct {
	gatherer prometheus.Gatherer

	CoverageCells    prometheus.Counter
	CoverageDuration prometheus.Histogram
	Predictions      prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// NewCollector registers the engine metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		CoverageCells: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wiplan_coverage_cells_total",
			Help: "Total number of grid cells evaluated by the coverage generator.",
		}),
		CoverageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wiplan_coverage_generation_seconds",
			Help:    "Coverage map generation latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		Predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wiplan_predictions_total",
			Help: "Total number of single-point propagation predictions.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wiplan_placement_cache_hits_total",
			Help: "Placement recommendation cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wiplan_placement_cache_misses_total",
			Help: "Placement recommendation cache misses.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.CoverageCells, c.CoverageDuration, c.Predictions, c.CacheHits, c.CacheMisses,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveCoverage records one coverage map generation.
func (c *Collector) ObserveCoverage(cells int, dur time.Duration) {
	if c == nil {
		return
	}
	c.CoverageCells.Add(float64(cells))
	c.CoverageDuration.Observe(dur.Seconds())
}

// ObservePredictions records n single-point predictions.
func (c *Collector) ObservePredictions(n int) {
	if c == nil {
		return
	}
	c.Predictions.Add(float64(n))
}

// ObserveCacheHit records a placement cache hit or miss.
func (c *Collector) ObserveCacheHit(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.Inc()
	} else {
		c.CacheMisses.Inc()
	}
}
