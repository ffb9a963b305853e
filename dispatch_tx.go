// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/knotted/knet/internal/compress"
	"github.com/knotted/knet/internal/frame"
)

// runTX is the TX dispatcher of spec.md §4.6: it drains every data
// channel's pending-write queue, resolves destinations through the
// installed filter, frames and optionally compresses the payload, and
// fans it out to each destination host's active links. A failed send
// on one link never aborts the others.
func (h *Handle) runTX() {
	defer h.wg.Done()
	for {
		select {
		case <-h.shutdownCh:
			h.drainChannels() // final drain before join, best effort
			return
		case <-h.txWake:
			h.drainChannels()
		}
	}
}

func (h *Handle) drainChannels() {
	h.mu.RLock()
	channels := make([]*dataChannel, 0, len(h.channels))
	for _, ch := range h.channels {
		channels = append(channels, ch)
	}
	h.mu.RUnlock()

	for _, ch := range channels {
		for {
			payload, ok := ch.queue.Pop()
			if !ok {
				break
			}
			h.transmit(ch.Index, payload)
		}
	}
}

func (h *Handle) transmit(idx ChannelIndex, payload []byte) {
	if !h.Forwarding() {
		return
	}
	h.mu.RLock()
	filter := h.filter
	h.mu.RUnlock()
	if filter == nil {
		return
	}

	dests, channel := filter(h.NodeID, h.NodeID, TX, payload)
	if len(dests) == 0 || channel < 0 {
		return // dropped silently on egress, per spec.md §4.5
	}

	body, flags, algoIdx := h.maybeCompress(payload)

	seq := h.nextSeq(frame.Data)
	hdr := frame.Header{
		Type:         frame.Data,
		Flags:        flags,
		Sender:       uint16(h.NodeID),
		Seq:          seq,
		ChannelOrSeq: uint16(uint8(channel)),
		CompressAlgo: algoIdx,
	}
	buf := make([]byte, frame.HeaderLen+len(body))
	n, err := frame.Encode(buf, hdr, body)
	if err != nil {
		h.logger.Warn("encode failed", zap.Error(err))
		return
	}
	buf = buf[:n]

	h.mu.RLock()
	defer h.mu.RUnlock()

	var sendErrs error
	for _, destID := range dests {
		ho, ok := h.hostLocked(destID)
		if !ok {
			continue
		}
		for _, slot := range ho.ActiveSet() {
			l := findLink(ho, slot)
			if l == nil || !l.Connected() {
				continue
			}
			if _, werr := l.Transport.WriteTo(buf, l.RemoteAddr()); werr != nil {
				sendErrs = multierr.Append(sendErrs, werr)
				h.metrics.FramesDropped.WithLabelValues("tx-error").Inc()
				continue
			}
			h.metrics.FramesSent.WithLabelValues(hostLabel(destID), slotLabel(slot)).Inc()
		}
	}
	if sendErrs != nil {
		h.logger.Warn("some link sends failed", zap.Error(sendErrs))
	}
}

func (h *Handle) maybeCompress(payload []byte) (body []byte, flags uint8, algoIdx uint8) {
	if !compress.ShouldCompress(h.compressCfg, len(payload)) {
		return payload, 0, 0
	}
	compressed, err := compress.Compress(h.compressCfg, nil, payload)
	if err != nil {
		h.logger.Warn("compress failed, sending uncompressed", zap.Error(err))
		return payload, 0, 0
	}
	return compressed, frame.FlagCompressed, uint8(h.compressCfg.Algo)
}

func hostLabel(id HostID) string { return strconv.Itoa(int(id)) }

func slotLabel(slot LinkSlot) string { return strconv.Itoa(int(slot)) }
