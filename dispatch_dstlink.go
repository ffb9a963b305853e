// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"github.com/knotted/knet/internal/host"
)

// scheduleDstLinkRecompute requests that host id's active link set and
// reachability be recomputed. It never blocks: a host already queued
// gets recomputed once that pending pass runs, which is equivalent to
// queuing it twice (spec.md §4.4 guarantees exactly-once notification
// per actual transition, not per request).
func (h *Handle) scheduleDstLinkRecompute(id HostID) {
	select {
	case h.dstLinkCh <- id:
	default:
		// Channel full: hand the request to a goroutine that waits for
		// room, so the caller never blocks and no host's recompute is lost.
		go func() {
			select {
			case h.dstLinkCh <- id:
			case <-h.shutdownCh:
			}
		}()
	}
}

// runDstLink is the DST-LINK dispatcher of spec.md §4.6: it recomputes
// a host's active link set after any link-level transition and fires
// the host reachability callback outside the handle lock, exactly once
// per transition.
func (h *Handle) runDstLink() {
	defer h.wg.Done()
	for {
		select {
		case <-h.shutdownCh:
			return
		case id := <-h.dstLinkCh:
			h.recomputeHost(id)
		}
	}
}

func (h *Handle) recomputeHost(id HostID) {
	h.mu.RLock()
	ho, ok := h.hosts[id]
	notify := h.hostNotify
	h.mu.RUnlock()
	if !ok {
		return
	}

	switch ho.Recompute() {
	case host.BecameReachable:
		if notify != nil {
			notify(id, true)
		}
	case host.BecameUnreachable:
		if notify != nil {
			notify(id, false)
		}
	}
}
