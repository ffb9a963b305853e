// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/knotted/knet/internal/compress"
	"github.com/knotted/knet/internal/frame"
	"github.com/knotted/knet/internal/link"
)

// readDeadline bounds each blocking ReadFrom call so a per-link reader
// can still notice shutdownCh within one tick instead of hanging on an
// idle socket forever.
const readDeadline = 200 * time.Millisecond

// rxDatagram is one inbound packet handed from a per-link reader to the
// RX dispatcher, paired with the host/link it arrived on.
type rxDatagram struct {
	ownerID HostID
	link    *link.Link
	data    []byte
	addr    net.Addr
}

// runLinkReader owns one link's socket reads for the life of its
// transport (spec.md §4.3: a link's transport persists from
// set_link_config until clear_config, independent of enable/disable).
// It stops when the transport closes or the handle shuts down.
func (h *Handle) runLinkReader(ownerID HostID, l *link.Link) {
	defer h.linkWG.Done()
	buf := make([]byte, h.maxPktSize)
	for {
		select {
		case <-h.shutdownCh:
			return
		default:
		}
		if err := l.Transport.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return
		}
		n, addr, err := l.Transport.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return // transport closed
		}
		cp := make([]byte, n)
		copy(cp, buf[:n])
		select {
		case h.rxCh <- rxDatagram{ownerID: ownerID, link: l, data: cp, addr: addr}:
		case <-h.shutdownCh:
			return
		}
	}
}

// runRX is the RX dispatcher of spec.md §4.6: it serializes decode,
// dedup, decompression, and delivery for every datagram handed to it
// by the per-link readers.
func (h *Handle) runRX() {
	defer h.wg.Done()
	for {
		select {
		case <-h.shutdownCh:
			return
		case dg := <-h.rxCh:
			h.handleInbound(dg)
		}
	}
}

func (h *Handle) handleInbound(dg rxDatagram) {
	hdr, payload, err := frame.Decode(dg.data)
	if err != nil {
		h.metrics.FramesDropped.WithLabelValues("bad-frame").Inc()
		return
	}
	dg.link.RecordRx()

	switch hdr.Type {
	case frame.Ping:
		h.handlePing(dg, hdr, payload)
	case frame.Pong:
		h.handlePong(dg, hdr, payload)
	case frame.PMTUProbe:
		h.handlePMTUProbe(dg, hdr, payload)
	case frame.PMTUReply:
		// No MTU-sizing decision is wired to a reply yet; receipt alone
		// still counts as RX traffic via RecordRx above.
	case frame.Data:
		h.handleData(dg, hdr, payload)
	default:
		h.metrics.FramesDropped.WithLabelValues("unknown-type").Inc()
	}
}

// handlePing replies with an echoed pong and learns a dynamic remote
// address from the first inbound datagram, per spec.md §8 scenario 2.
func (h *Handle) handlePing(dg rxDatagram, hdr frame.Header, payload []byte) {
	if dg.link.RemoteAddr() == nil {
		dg.link.SetRemoteAddr(dg.addr)
	}
	reply := frame.Header{
		Type:         frame.Pong,
		Sender:       uint16(h.NodeID),
		Seq:          h.nextSeq(frame.Pong),
		ChannelOrSeq: hdr.ChannelOrSeq,
	}
	buf := make([]byte, frame.HeaderLen+len(payload))
	n, err := frame.Encode(buf, reply, payload)
	if err != nil {
		return
	}
	if _, err := dg.link.Transport.WriteTo(buf[:n], dg.addr); err != nil {
		h.logger.Warn("pong reply failed", zap.Error(err))
	}
}

// handlePong feeds the echoed send timestamp back into the link's RTT
// estimator and drives the probing->connected transition.
func (h *Handle) handlePong(dg rxDatagram, hdr frame.Header, payload []byte) {
	probe, err := decodeProbePayload(payload)
	if err != nil {
		h.metrics.FramesDropped.WithLabelValues("bad-probe-payload").Inc()
		return
	}
	rtt := h.clock.Now().Sub(time.Unix(0, probe.Timestamp))
	if rtt < 0 {
		rtt = 0
	}
	becameConnected, _ := dg.link.RecordPong(uint32(hdr.ChannelOrSeq), rtt)
	if becameConnected {
		h.mu.RLock()
		notify := h.linkNotify
		h.mu.RUnlock()
		if notify != nil {
			notify(dg.ownerID, dg.link.Slot, true)
		}
		h.scheduleDstLinkRecompute(dg.ownerID)
	}
}

// handlePMTUProbe echoes the probe back as a reply. No path-MTU
// decision consumes the reply yet; the exchange exists so the wire
// format's two PMTU types are exercised end to end.
func (h *Handle) handlePMTUProbe(dg rxDatagram, hdr frame.Header, payload []byte) {
	reply := frame.Header{
		Type:         frame.PMTUReply,
		Sender:       uint16(h.NodeID),
		Seq:          h.nextSeq(frame.PMTUReply),
		ChannelOrSeq: hdr.ChannelOrSeq,
	}
	buf := make([]byte, frame.HeaderLen+len(payload))
	n, err := frame.Encode(buf, reply, payload)
	if err != nil {
		return
	}
	if _, err := dg.link.Transport.WriteTo(buf[:n], dg.addr); err != nil {
		h.logger.Warn("pmtu reply failed", zap.Error(err))
	}
}

// handleData runs the ingress dedup/decompress/filter pipeline and
// delivers the payload to a local channel. Per spec.md §4.5 the
// filter's returned channel index of -1 means "no local delivery";
// multi-host forwarding on ingress is out of scope (see DESIGN.md), so
// the filter's dests return value is evaluated only for its channel.
func (h *Handle) handleData(dg rxDatagram, hdr frame.Header, payload []byte) {
	if !h.Forwarding() {
		// Pings/pongs still flow while forwarding is disabled (handle.go's
		// SetForwarding doc comment); only data delivery is gated.
		return
	}

	fp := frame.Fingerprint{Sender: hdr.Sender, Type: hdr.Type, Seq: hdr.Seq}
	if h.dedup.Seen(fp) {
		h.metrics.DedupHits.Inc()
		return
	}

	body := payload
	if hdr.Flags&frame.FlagEncrypted != 0 {
		h.metrics.FramesDropped.WithLabelValues("encrypted-unsupported").Inc()
		return
	}
	if hdr.Flags&frame.FlagCompressed != 0 {
		decoded, err := compress.Decompress(compress.Algo(hdr.CompressAlgo), nil, payload)
		if err != nil {
			h.logger.Warn("decompress failed, dropping", zap.Error(err))
			h.metrics.FramesDropped.WithLabelValues("decompress-error").Inc()
			return
		}
		body = decoded
	}

	h.mu.RLock()
	_, senderKnown := h.hosts[HostID(hdr.Sender)]
	filter := h.filter
	h.mu.RUnlock()
	if !senderKnown {
		h.logger.Debug("dropping data from unknown sender", zap.Uint16("sender", hdr.Sender))
		h.metrics.FramesDropped.WithLabelValues("unknown-sender").Inc()
		return
	}
	if filter == nil {
		return
	}
	_, channel := filter(HostID(hdr.Sender), h.NodeID, RX, body)
	if channel < 0 {
		return
	}

	h.mu.RLock()
	ch, ok := h.channels[channel]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("dropping data for unknown channel", zap.Int8("channel", channel))
		h.metrics.FramesDropped.WithLabelValues("no-channel").Inc()
		return
	}

	select {
	case ch.in <- body:
		h.metrics.FramesReceived.WithLabelValues(hostLabel(dg.ownerID), slotLabel(dg.link.Slot)).Inc()
		if ch.notify != nil {
			ch.notify()
		}
	default:
		h.metrics.FramesDropped.WithLabelValues("rx-queue-full").Inc()
	}
}
