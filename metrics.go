// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package avatar

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded in the requests counter.
const (
	outcomeNetwork     = "network"
	outcomeCache       = "cache"
	outcomeRevalidated = "revalidated"
	outcomeStale       = "stale"
	outcomeError       = "error"
)

// fetchMetrics counts fetcher activity.
type fetchMetrics struct {
	requests  *prometheus.CounterVec
	network   prometheus.Counter
	cacheHits prometheus.Counter
	bytes     prometheus.Counter
}

// newFetchMetrics creates the fetcher collectors and registers them on reg
// when it is not nil. Collectors already registered by another fetcher are
// reused.
func newFetchMetrics(reg prometheus.Registerer) (*fetchMetrics, error) {
	m := &fetchMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "avatar",
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Image fetches by outcome.",
		}, []string{"outcome"}),
		network: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avatar",
			Subsystem: "fetch",
			Name:      "network_round_trips_total",
			Help:      "HTTP requests sent to origin servers.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avatar",
			Subsystem: "fetch",
			Name:      "cache_hits_total",
			Help:      "Fetches answered from the disk cache, fresh or revalidated.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "avatar",
			Subsystem: "fetch",
			Name:      "bytes_total",
			Help:      "Response body bytes received from the network.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.network, err = register(reg, m.network); err != nil {
		return nil, err
	}
	if m.cacheHits, err = register(reg, m.cacheHits); err != nil {
		return nil, err
	}
	if m.bytes, err = register(reg, m.bytes); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, returning the existing collector of the same type
// if an identical one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, fmt.Errorf("avatar: register fetch metrics: %w", err)
}
