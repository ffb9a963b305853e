// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package chanqueue implements the per-channel pending-write queue
// described in spec.md §5 ("channel queues: each protected by its own
// lock"), backed by a growable ring buffer rather than a slice that
// reallocates and copies on every growth past capacity.
package chanqueue

import (
	"sync"

	"github.com/eapache/queue"
)

// Queue is a FIFO byte-slice queue safe for concurrent use.
type Queue struct {
	mu sync.Mutex
	q  *queue.Queue
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{q: queue.New()}
}

// Push enqueues a payload copy is the caller's responsibility; Queue
// stores the slice as given.
func (c *Queue) Push(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.q.Add(payload)
}

// Pop removes and returns the oldest payload, or ok=false if empty.
func (c *Queue) Pop() (payload []byte, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.q.Length() == 0 {
		return nil, false
	}
	v := c.q.Peek()
	c.q.Remove()
	return v.([]byte), true
}

// Len reports the number of queued payloads.
func (c *Queue) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Length()
}
