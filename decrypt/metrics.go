// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package decrypt

import (
	"github.com/prometheus/client_golang/prometheus"
)

type orchestratorMetrics struct {
	requests     prometheus.Counter
	failures     prometheus.Counter
	staleResults prometheus.Counter
	latencyMS    prometheus.Histogram
}

func newOrchestratorMetrics(registerer prometheus.Registerer) (*orchestratorMetrics, error) {
	m := orchestratorMetrics{
		requests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "decrypt_requests",
				Help: "Number of decryption runs started",
			},
		),
		failures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "decrypt_failures",
				Help: "Number of decryption runs that failed",
			},
		),
		staleResults: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "decrypt_stale_results",
				Help: "Number of run outcomes discarded because a newer run superseded them",
			},
		),
		latencyMS: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "decrypt_latency_ms",
				Help:    "Latency of a full decryption run in milliseconds",
				Buckets: prometheus.ExponentialBucketsRange(10, 60000, 10),
			},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.failures, m.staleResults, m.latencyMS} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
