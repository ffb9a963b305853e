// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/knotted/knet/internal/knerr"
	"github.com/knotted/knet/internal/link"
	"github.com/knotted/knet/internal/transport"
)

// LinkConfig describes one link's transport and addressing. Remote
// may be nil for a dynamic link whose peer address is learned from the
// first inbound datagram (spec.md §8 scenario 2).
type LinkConfig struct {
	Transport transport.Tag
	Local     *net.UDPAddr
	Remote    *net.UDPAddr
	Tuning    link.Config // zero value selects the handle's default
}

// LinkInfo is the read-only snapshot EnumerateLinks returns.
type LinkInfo struct {
	HostID    HostID
	Slot      LinkSlot
	State     link.State
	RTT       int64 // nanoseconds
	PingCount uint64
	PongCount uint64
}

// SetLinkConfig creates or replaces the transport for host id's link
// at slot. The link starts disabled (spec.md §4.3). Replacing an
// existing slot requires that link to already be disabled (spec.md
// §3: "must be disabled before clear"); its old transport is closed
// before the new one is installed, so its reader goroutine exits on
// its own rather than leaking.
func (h *Handle) SetLinkConfig(id HostID, slot LinkSlot, cfg LinkConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ho, ok := h.hostLocked(id)
	if !ok {
		return knerr.New(knerr.State, "knet.SetLinkConfig", fmt.Errorf("host %d not found", id))
	}

	if old := findLink(ho, slot); old != nil {
		if old.Enabled() {
			return knerr.New(knerr.State, "knet.SetLinkConfig",
				fmt.Errorf("host %d link %d still enabled", id, slot))
		}
		if err := old.ClearConfig(); err != nil {
			return err
		}
	}

	var tr transport.Transport
	var err error
	switch cfg.Transport {
	case transport.SCTP:
		tr, err = transport.NewSCTP(cfg.Local, cfg.Remote)
	default:
		tr, err = transport.NewUDP(cfg.Local, cfg.Remote)
	}
	if err != nil {
		return knerr.New(knerr.Transport, "knet.SetLinkConfig", err)
	}

	tuning := cfg.Tuning
	if tuning.PingInterval == 0 {
		tuning = h.linkCfg
	}

	var remote net.Addr
	if cfg.Remote != nil {
		remote = cfg.Remote
	}
	l := link.New(slot, tr, cfg.Local, remote, h.clock, tuning)
	ho.SetLink(l)
	h.logger.Info("link configured", zap.Uint16("host_id", uint16(id)), zap.Uint8("slot", slot))

	h.linkWG.Add(1)
	go h.runLinkReader(id, l)
	return nil
}

// ClearLinkConfig tears the link down. It requires the link to be
// disabled first (spec.md §4.3) and is idempotent once cleared.
func (h *Handle) ClearLinkConfig(id HostID, slot LinkSlot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ho, ok := h.hostLocked(id)
	if !ok {
		return knerr.New(knerr.State, "knet.ClearLinkConfig", fmt.Errorf("host %d not found", id))
	}
	l := findLink(ho, slot)
	if l == nil {
		return nil
	}
	if err := l.ClearConfig(); err != nil {
		return err
	}
	ho.ClearLink(slot)
	return nil
}

// SetLinkEnable drives the link's disabled<->probing transition
// (spec.md §4.3). Enabling schedules it into the heartbeat rotation;
// disabling stops pings and drops it from the active set on the next
// DST-LINK recompute.
func (h *Handle) SetLinkEnable(id HostID, slot LinkSlot, enable bool) error {
	h.mu.RLock()
	ho, ok := h.hostLocked(id)
	h.mu.RUnlock()
	if !ok {
		return knerr.New(knerr.State, "knet.SetLinkEnable", fmt.Errorf("host %d not found", id))
	}
	l := findLink(ho, slot)
	if l == nil {
		return knerr.New(knerr.State, "knet.SetLinkEnable", fmt.Errorf("host %d link %d not configured", id, slot))
	}
	l.SetEnable(enable)
	h.scheduleDstLinkRecompute(id)
	return nil
}

// EnumerateLinks returns a snapshot of every configured link.
func (h *Handle) EnumerateLinks() []LinkInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []LinkInfo
	for id, ho := range h.hosts {
		for _, l := range ho.Links() {
			out = append(out, LinkInfo{
				HostID:    id,
				Slot:      l.Slot,
				State:     l.State(),
				RTT:       int64(l.RTT()),
				PingCount: l.PingCount(),
				PongCount: l.PongCount(),
			})
		}
	}
	return out
}

func findLink(ho interface{ Links() []*link.Link }, slot LinkSlot) *link.Link {
	for _, l := range ho.Links() {
		if l.Slot == slot {
			return l
		}
	}
	return nil
}
