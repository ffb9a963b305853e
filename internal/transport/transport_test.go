// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemPairRoundTrip(t *testing.T) {
	a, b := NewMemPair("a", "b")
	_, err := a.WriteTo([]byte("hello"), nil)
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, from, err := b.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
	assert.Equal(t, "a", from.String())
}

func TestMemReadDeadline(t *testing.T) {
	a, _ := NewMemPair("a", "b")
	require.NoError(t, a.SetReadDeadline(time.Now().Add(10*time.Millisecond)))
	_, _, err := a.ReadFrom(make([]byte, 4))
	assert.Error(t, err)
}

func TestSCTPReturnsUnsupported(t *testing.T) {
	_, err := NewSCTP(nil, nil)
	assert.Error(t, err)
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "udp", UDP.String())
	assert.Equal(t, "sctp", SCTP.String())
}
