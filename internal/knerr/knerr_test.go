// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(State, "knet.Test", fmt.Errorf("boom"))
	assert.True(t, Is(err, State))
	assert.False(t, Is(err, Config))
}

func TestIsWalksWrappedChain(t *testing.T) {
	inner := New(Transport, "knet.Inner", fmt.Errorf("bad"))
	outer := fmt.Errorf("outer: %w", inner)
	assert.True(t, Is(outer, Transport))
}

func TestErrorStringIncludesKindAndOp(t *testing.T) {
	err := New(Resource, "knet.AddHost", fmt.Errorf("table full"))
	assert.Contains(t, err.Error(), "knet.AddHost")
	assert.Contains(t, err.Error(), "resource")
	assert.Contains(t, err.Error(), "table full")
}

func TestErrorStringWithoutWrappedErr(t *testing.T) {
	err := New(Config, "knet.Open", nil)
	assert.Contains(t, err.Error(), "knet.Open")
	assert.Contains(t, err.Error(), "config")
}
