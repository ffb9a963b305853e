// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"time"

	"go.uber.org/zap"
)

// logSummaryInterval is how often the LOG dispatcher emits a periodic
// diagnostic summary, independent of the direct zap calls the other
// dispatchers make on their own hot paths.
const logSummaryInterval = 30 * time.Second

// runLog is the LOG dispatcher of spec.md §4.6. The other dispatchers
// log through zap directly on their own goroutines; this one owns the
// periodic diagnostic summary and the final sync on shutdown, so a
// hung flush can never stall TX/RX/HEARTBEAT/DST-LINK.
func (h *Handle) runLog() {
	defer h.wg.Done()
	ticker := h.clock.Ticker(logSummaryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.shutdownCh:
			h.syncLog()
			return
		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *Handle) logSummary() {
	h.mu.RLock()
	hostCount := len(h.hosts)
	linkCount := 0
	for _, ho := range h.hosts {
		linkCount += len(ho.Links())
	}
	h.mu.RUnlock()

	h.logger.Info("summary",
		zap.Int("hosts", hostCount),
		zap.Int("links", linkCount),
		zap.Uint64("dedup_hits", h.dedup.Hits()),
		zap.Bool("forwarding", h.Forwarding()),
	)
}

func (h *Handle) syncLog() {
	if h.logFile == nil {
		return
	}
	_ = h.logger.Sync()
}
