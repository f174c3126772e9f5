// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package authsig

import (
	"github.com/prometheus/client_golang/prometheus"
)

type cacheMetrics struct {
	hits         prometheus.Counter
	misses       prometheus.Counter
	signFailures prometheus.Counter
}

func newCacheMetrics(registerer prometheus.Registerer) (*cacheMetrics, error) {
	m := cacheMetrics{
		hits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authsig_cache_hits",
				Help: "Number of authorization lookups served from storage",
			},
		),
		misses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authsig_cache_misses",
				Help: "Number of authorization lookups that required a new signature",
			},
		),
		signFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "authsig_sign_failures",
				Help: "Number of failed authorization signing flows",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.signFailures} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
