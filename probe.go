// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"encoding/binary"
	"fmt"
)

// probePayload is the body of a ping or pong packet: the sender's
// link slot and its local timestamp in nanoseconds, per spec.md §4.3
// ("Ping carries sender id, link slot, a monotonically increasing
// probe seq, and the sender's local timestamp"; the probe seq itself
// travels in the frame header's ChannelOrSeq field). A pong simply
// echoes the same bytes it received.
type probePayload struct {
	Slot      uint8
	Timestamp int64
}

const probePayloadLen = 9

func encodeProbePayload(p probePayload) []byte {
	buf := make([]byte, probePayloadLen)
	buf[0] = p.Slot
	binary.BigEndian.PutUint64(buf[1:9], uint64(p.Timestamp))
	return buf
}

func decodeProbePayload(buf []byte) (probePayload, error) {
	if len(buf) < probePayloadLen {
		return probePayload{}, fmt.Errorf("knet: short probe payload")
	}
	return probePayload{
		Slot:      buf[0],
		Timestamp: int64(binary.BigEndian.Uint64(buf[1:9])),
	}, nil
}
