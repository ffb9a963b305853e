// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package chanqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushPopFIFO(t *testing.T) {
	q := New()
	q.Push([]byte("a"))
	q.Push([]byte("b"))

	v, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	v, ok = q.Pop()
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), v)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestLen(t *testing.T) {
	q := New()
	assert.Equal(t, 0, q.Len())
	q.Push([]byte("x"))
	assert.Equal(t, 1, q.Len())
}
