// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knotted/knet/internal/frame"
)

func TestSeenSuppressesDuplicate(t *testing.T) {
	w, err := New(16)
	require.NoError(t, err)

	fp := frame.Fingerprint{Sender: 1, Type: frame.Data, Seq: 5}
	assert.False(t, w.Seen(fp))
	assert.True(t, w.Seen(fp))
	assert.EqualValues(t, 1, w.Hits())
}

func TestSeenDistinguishesFingerprints(t *testing.T) {
	w, err := New(16)
	require.NoError(t, err)

	a := frame.Fingerprint{Sender: 1, Type: frame.Data, Seq: 5}
	b := frame.Fingerprint{Sender: 2, Type: frame.Data, Seq: 5}
	assert.False(t, w.Seen(a))
	assert.False(t, w.Seen(b))
}

func TestEvictionAtCapacity(t *testing.T) {
	w, err := New(2)
	require.NoError(t, err)

	for i := uint32(0); i < 3; i++ {
		w.Seen(frame.Fingerprint{Sender: 1, Type: frame.Data, Seq: i})
	}
	assert.LessOrEqual(t, w.Len(), 2)
}

func TestSizeFloor(t *testing.T) {
	assert.Equal(t, MinCapacity, Size(0, 0))
	assert.Greater(t, Size(16, 0), MinCapacity)
}
