// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"context"
	"fmt"

	"github.com/knotted/knet/internal/chanqueue"
	"github.com/knotted/knet/internal/knerr"
)

// maxChannels bounds the channel table, per spec.md §7's "channel
// table full" resource error.
const maxChannels = 64

// dataChannel is the small signed-index, application-facing endpoint
// of spec.md §3. In place of the original's raw file descriptor, the
// Go binding exposes delivery through an in-process buffered channel;
// embedders that need a real fd can bridge it with os.Pipe themselves.
type dataChannel struct {
	Index  ChannelIndex
	notify func()
	owner  bool

	queue *chanqueue.Queue // pending outbound writes, drained by TX
	in    chan []byte      // inbound deliveries, drained by Recv
}

// AddDataChannel registers a new application channel at idx. notify,
// if non-nil, is invoked (outside any core lock) whenever a payload is
// delivered to it.
func (h *Handle) AddDataChannel(idx ChannelIndex, notify func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.channels[idx]; exists {
		return knerr.New(knerr.State, "knet.AddDataChannel", fmt.Errorf("channel %d already added", idx))
	}
	if len(h.channels) >= maxChannels {
		return knerr.New(knerr.Resource, "knet.AddDataChannel", fmt.Errorf("channel table full"))
	}
	h.channels[idx] = &dataChannel{
		Index:  idx,
		notify: notify,
		owner:  true,
		queue:  chanqueue.New(),
		in:     make(chan []byte, 256),
	}
	return nil
}

// RemoveDataChannel unregisters idx.
func (h *Handle) RemoveDataChannel(idx ChannelIndex) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[idx]; !ok {
		return knerr.New(knerr.State, "knet.RemoveDataChannel", fmt.Errorf("channel %d not found", idx))
	}
	delete(h.channels, idx)
	return nil
}

// Send enqueues payload for transmission on channel idx and wakes the
// TX worker. It returns a resource error if the channel does not
// exist; the underlying filter/link failures surface asynchronously
// through the log sink, per spec.md §4.6 ("a failed send on one link
// does not abort the others").
func (h *Handle) Send(idx ChannelIndex, payload []byte) error {
	h.mu.RLock()
	ch, ok := h.channels[idx]
	h.mu.RUnlock()
	if !ok {
		return knerr.New(knerr.Resource, "knet.Send", fmt.Errorf("channel %d not found", idx))
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	ch.queue.Push(cp)

	select {
	case h.txWake <- struct{}{}:
	default:
	}
	return nil
}

// Recv blocks until a payload is delivered to channel idx or ctx is
// done.
func (h *Handle) Recv(ctx context.Context, idx ChannelIndex) ([]byte, error) {
	h.mu.RLock()
	ch, ok := h.channels[idx]
	h.mu.RUnlock()
	if !ok {
		return nil, knerr.New(knerr.Resource, "knet.Recv", fmt.Errorf("channel %d not found", idx))
	}

	select {
	case payload := <-ch.in:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.shutdownCh:
		return nil, knerr.New(knerr.State, "knet.Recv", fmt.Errorf("handle closed"))
	}
}
