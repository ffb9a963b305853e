// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package dedup implements the bounded per-handle fingerprint window
// described in spec.md §4.4/§5: a fixed-capacity cache of recently
// delivered (sender, type, seq) triples that suppresses duplicate
// deliveries fanned out across redundant links.
package dedup

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/atomic"

	"github.com/knotted/knet/internal/frame"
)

// MinCapacity is the floor spec.md §9's open question leaves to
// measurement; DESIGN.md records the sizing rationale.
const MinCapacity = 4096

// PerLinkCapacity scales the window with the configured link count.
const PerLinkCapacity = 512

// Window is a fixed-capacity deduplication cache. It is safe for
// concurrent use; golang-lru/v2's Cache guards itself with its own
// lock and this package adds no outer lock, matching spec.md §5's
// "deduplication window... protected by its own lock" by delegating
// that lock to the underlying cache.
type Window struct {
	cache *lru.Cache[uint64, struct{}]
	hits  atomic.Uint64
}

// Size computes the configured capacity from the number of links a
// handle has configured across all its hosts and an expected queue
// depth, per spec.md §4.4's sizing guidance.
func Size(linkCount, queueDepth int) int {
	n := linkCount * PerLinkCapacity
	if queueDepth > 0 {
		n += queueDepth
	}
	if n < MinCapacity {
		n = MinCapacity
	}
	return n
}

// New builds a Window with the given capacity.
func New(capacity int) (*Window, error) {
	c, err := lru.New[uint64, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Window{cache: c}, nil
}

func key(fp frame.Fingerprint) uint64 {
	var buf [7]byte
	binary.BigEndian.PutUint16(buf[0:2], fp.Sender)
	buf[2] = byte(fp.Type)
	binary.BigEndian.PutUint32(buf[3:7], fp.Seq)
	return xxhash.Sum64(buf[:])
}

// Seen reports whether fp is already in the window and, regardless of
// the answer, records it as seen (inserting evicts the
// least-recently-used entry once the window is full). Callers must
// still count a duplicate even though it is not delivered, per
// spec.md §4.4: "a fingerprint already present suppresses delivery
// but is still counted."
func (w *Window) Seen(fp frame.Fingerprint) bool {
	k := key(fp)
	if w.cache.Contains(k) {
		w.hits.Inc()
		w.cache.Get(k) // refresh recency
		return true
	}
	w.cache.Add(k, struct{}{})
	return false
}

// Hits returns the number of duplicate fingerprints observed so far.
func (w *Window) Hits() uint64 { return w.hits.Load() }

// Len returns the current number of tracked fingerprints.
func (w *Window) Len() int { return w.cache.Len() }
