// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"time"

	"go.uber.org/zap"

	"github.com/knotted/knet/internal/frame"
	"github.com/knotted/knet/internal/link"
)

// heartbeatTick resolves spec.md §9's open question: a 200ms core tick
// (not the literally suggested 1kHz, see DESIGN.md) that scans every
// enabled link for a due ping and a health check.
const heartbeatTick = 200 * time.Millisecond

// runHeartbeat is the HEARTBEAT dispatcher of spec.md §4.6: on every
// tick it walks the enabled links, sends a ping to whichever are due,
// and runs each link's missed-pong/dead-timeout check.
func (h *Handle) runHeartbeat() {
	defer h.wg.Done()
	ticker := h.clock.Ticker(heartbeatTick)
	defer ticker.Stop()
	for {
		select {
		case <-h.shutdownCh:
			return
		case <-ticker.C:
			h.heartbeatTick()
		}
	}
}

func (h *Handle) heartbeatTick() {
	h.mu.RLock()
	type target struct {
		id HostID
		l  *link.Link
	}
	targets := make([]target, 0)
	for id, ho := range h.hosts {
		for _, l := range ho.Links() {
			if l.Enabled() {
				targets = append(targets, target{id: id, l: l})
			}
		}
	}
	h.mu.RUnlock()

	for _, t := range targets {
		cfg := t.l.Config()
		if t.l.DuePing(cfg.PingInterval) {
			h.sendPing(t.id, t.l)
		}
		if t.l.CheckHealth() {
			h.mu.RLock()
			notify := h.linkNotify
			h.mu.RUnlock()
			if notify != nil {
				notify(t.id, t.l.Slot, false)
			}
			h.scheduleDstLinkRecompute(t.id)
		}
	}
}

func (h *Handle) sendPing(id HostID, l *link.Link) {
	remote := l.RemoteAddr()
	if remote == nil {
		return // dynamic link awaiting its peer's first datagram
	}
	seq := l.NextPingSeq()
	payload := encodeProbePayload(probePayload{
		Slot:      l.Slot,
		Timestamp: h.clock.Now().UnixNano(),
	})
	hdr := frame.Header{
		Type:         frame.Ping,
		Sender:       uint16(h.NodeID),
		Seq:          h.nextSeq(frame.Ping),
		ChannelOrSeq: uint16(seq),
	}
	buf := make([]byte, frame.HeaderLen+len(payload))
	n, err := frame.Encode(buf, hdr, payload)
	if err != nil {
		return
	}
	if _, err := l.Transport.WriteTo(buf[:n], remote); err != nil {
		h.logger.Debug("ping send failed", zap.Uint16("host_id", uint16(id)), zap.Error(err))
	}
}
