// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package host

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knotted/knet/internal/link"
	"github.com/knotted/knet/internal/transport"
)

func newConnectedLink(t *testing.T, mc *clock.Mock, slot uint8) *link.Link {
	t.Helper()
	a, _ := transport.NewMemPair("a", "b")
	cfg := link.Config{PingInterval: time.Second, DeadTimeout: 5 * time.Second, MaxMissedPongs: 3}
	l := link.New(slot, a, nil, nil, mc, cfg)
	l.SetEnable(true)
	seq := l.NextPingSeq()
	l.RecordPong(seq, time.Millisecond)
	require.Equal(t, link.Connected, l.State())
	return l
}

func TestRecomputeBecomesReachable(t *testing.T) {
	mc := clock.NewMock()
	h := New(1, Passive)
	l := newConnectedLink(t, mc, 0)
	h.SetLink(l)

	change := h.Recompute()
	assert.Equal(t, BecameReachable, change)
	assert.True(t, h.Reachable())
	assert.Equal(t, []uint8{0}, h.ActiveSet())
}

func TestRecomputeIsIdempotentBetweenTransitions(t *testing.T) {
	mc := clock.NewMock()
	h := New(1, Passive)
	l := newConnectedLink(t, mc, 0)
	h.SetLink(l)

	h.Recompute()
	assert.Equal(t, Unchanged, h.Recompute())
}

func TestPassivePolicyPicksLowestSlot(t *testing.T) {
	mc := clock.NewMock()
	h := New(1, Passive)
	h.SetLink(newConnectedLink(t, mc, 1))
	h.SetLink(newConnectedLink(t, mc, 0))

	h.Recompute()
	assert.Equal(t, []uint8{0}, h.ActiveSet())
}

func TestActivePolicySelectsAllConnected(t *testing.T) {
	mc := clock.NewMock()
	h := New(1, Active)
	h.SetLink(newConnectedLink(t, mc, 0))
	h.SetLink(newConnectedLink(t, mc, 1))

	h.Recompute()
	assert.Equal(t, []uint8{0, 1}, h.ActiveSet())
}

func TestBecomesUnreachableOnlyWhenLastLinkDrops(t *testing.T) {
	mc := clock.NewMock()
	h := New(1, Passive)
	a := newConnectedLink(t, mc, 0)
	b := newConnectedLink(t, mc, 1)
	h.SetLink(a)
	h.SetLink(b)
	h.Recompute()
	require.True(t, h.Reachable())

	a.SetEnable(false)
	assert.Equal(t, Unchanged, h.Recompute(), "second link still connected, host stays reachable")

	b.SetEnable(false)
	assert.Equal(t, BecameUnreachable, h.Recompute())
}
