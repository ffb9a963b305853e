// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package host implements the host entity and link-selection policies
// of spec.md §4.4: a peer identified by a 16-bit id, holding up to a
// small fixed number of links, with a recomputed active link set and
// exactly-once reachability transitions.
package host

import (
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/knotted/knet/internal/link"
)

// MaxLinks bounds the number of link slots a host may hold, matching
// spec.md §3's "array of link slots (bounded, e.g. 8)".
const MaxLinks = 8

// Policy selects how a host's active link set is computed from its
// connected links, per spec.md §4.4.
type Policy uint8

const (
	// Passive ranks connected links by slot index and egresses only
	// on the top-ranked one (active/standby failover).
	Passive Policy = iota
	// Active egresses on every connected link; the receiver
	// deduplicates by fingerprint.
	Active
)

// ID is a 16-bit peer identifier.
type ID uint16

// Host is a configured peer. External/remote flags are carried as
// plain fields since they are informational only and never drive the
// link-selection state machine.
type Host struct {
	ID       ID
	Policy   Policy
	External bool
	Remote   bool

	reachable atomic.Bool

	mu        sync.Mutex
	links     [MaxLinks]*link.Link
	activeSet []uint8
}

// New constructs an unreachable host with no configured links.
func New(id ID, policy Policy) *Host {
	return &Host{ID: id, Policy: policy}
}

// SetLink installs l at its slot. Slot indices are unique within a
// host (spec.md §3).
func (h *Host) SetLink(l *link.Link) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.links[l.Slot] = l
}

// ClearLink removes whatever link occupies slot.
func (h *Host) ClearLink(slot uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.links[slot] = nil
}

// Links returns a snapshot slice of the configured (non-nil) links.
func (h *Host) Links() []*link.Link {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*link.Link, 0, MaxLinks)
	for _, l := range h.links {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Reachable reports whether at least one link is connected.
func (h *Host) Reachable() bool { return h.reachable.Load() }

// ActiveSet returns the slot indices currently selected for egress.
func (h *Host) ActiveSet() []uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint8, len(h.activeSet))
	copy(out, h.activeSet)
	return out
}

// Recompute re-derives the active link set and reachability from the
// current connected state of each link. It returns a
// ReachabilityChange describing a transition, or Unchanged if none
// occurred — the dst-link worker uses this to fire at most one
// notification per transition, per spec.md §4.4.
type ReachabilityChange uint8

const (
	Unchanged ReachabilityChange = iota
	BecameReachable
	BecameUnreachable
)

func (h *Host) Recompute() ReachabilityChange {
	h.mu.Lock()
	defer h.mu.Unlock()

	connected := make([]*link.Link, 0, MaxLinks)
	for _, l := range h.links {
		if l != nil && l.Connected() {
			connected = append(connected, l)
		}
	}

	switch h.Policy {
	case Passive:
		h.activeSet = passiveActiveSet(connected)
	default:
		h.activeSet = activeActiveSet(connected)
	}

	nowReachable := len(connected) > 0
	wasReachable := h.reachable.Load()
	if nowReachable == wasReachable {
		return Unchanged
	}
	h.reachable.Store(nowReachable)
	if nowReachable {
		return BecameReachable
	}
	return BecameUnreachable
}

// passiveActiveSet ranks connected links by slot index (lower wins
// ties) and selects only the top one, per spec.md §4.4.
func passiveActiveSet(connected []*link.Link) []uint8 {
	if len(connected) == 0 {
		return nil
	}
	sort.Slice(connected, func(i, j int) bool { return connected[i].Slot < connected[j].Slot })
	return []uint8{connected[0].Slot}
}

// activeActiveSet selects every connected link.
func activeActiveSet(connected []*link.Link) []uint8 {
	out := make([]uint8, 0, len(connected))
	for _, l := range connected {
		out = append(out, l.Slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
