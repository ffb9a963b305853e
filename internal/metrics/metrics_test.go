// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersWithoutPanic(t *testing.T) {
	s := New(1)
	require.NotNil(t, s)

	s.FramesSent.WithLabelValues("2", "0").Inc()
	s.DedupHits.Inc()

	mfs, err := s.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}
