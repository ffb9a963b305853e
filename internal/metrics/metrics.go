// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package metrics exposes the core's counters and gauges to an
// embedding application through a standard Prometheus registry. The
// core never starts its own HTTP listener; metrics export is the
// embedder's concern, kept outside the no-RPC non-goal of spec.md §1.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set is one handle's metric instruments, registered into a freshly
// created prometheus.Registry.
type Set struct {
	Registry *prometheus.Registry

	FramesSent     *prometheus.CounterVec // labels: host, link
	FramesReceived *prometheus.CounterVec // labels: host, link
	FramesDropped  *prometheus.CounterVec // labels: reason
	ActiveLinks    *prometheus.GaugeVec   // labels: host
	Pings          *prometheus.CounterVec // labels: host, link
	Pongs          *prometheus.CounterVec // labels: host, link
	RTT            *prometheus.HistogramVec
	DedupHits      prometheus.Counter
}

// New builds and registers a fresh Set on its own registry.
func New(nodeID uint16) *Set {
	reg := prometheus.NewRegistry()
	ns := "knet"
	constLabels := prometheus.Labels{"node_id": uint16ToLabel(nodeID)}

	s := &Set{
		Registry: reg,
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "frames_sent_total", ConstLabels: constLabels,
		}, []string{"host", "link"}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "frames_received_total", ConstLabels: constLabels,
		}, []string{"host", "link"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "frames_dropped_total", ConstLabels: constLabels,
		}, []string{"reason"}),
		ActiveLinks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Name: "active_links", ConstLabels: constLabels,
		}, []string{"host"}),
		Pings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "pings_sent_total", ConstLabels: constLabels,
		}, []string{"host", "link"}),
		Pongs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "pongs_received_total", ConstLabels: constLabels,
		}, []string{"host", "link"}),
		RTT: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "rtt_seconds", ConstLabels: constLabels,
			Buckets: prometheus.DefBuckets,
		}, []string{"host", "link"}),
		DedupHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "dedup_hits_total", ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(s.FramesSent, s.FramesReceived, s.FramesDropped,
		s.ActiveLinks, s.Pings, s.Pongs, s.RTT, s.DedupHits)
	return s
}

// Handler returns an http.Handler the embedding application may mount
// on its own mux. The core never starts a listener itself, per
// spec.md §1's no-RPC-surface non-goal: metrics export is the
// embedder's concern.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})
}

func uint16ToLabel(v uint16) string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 4)
	for i := 3; i >= 0; i-- {
		buf[i] = hex[v&0xf]
		v >>= 4
	}
	return string(buf)
}
