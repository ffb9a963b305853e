// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package transport defines the socket I/O primitives spec.md §1
// treats as external collaborators to the core: concrete UDP/SCTP
// endpoints the link state machine drives but never implements
// itself. The core only depends on the Transport interface.
package transport

import (
	"net"
	"time"
)

// Tag identifies which concrete transport a link uses. It travels
// alongside link configuration, not on the wire.
type Tag uint8

const (
	UDP Tag = iota
	SCTP
)

func (t Tag) String() string {
	switch t {
	case UDP:
		return "udp"
	case SCTP:
		return "sctp"
	default:
		return "unknown"
	}
}

// Transport is the minimal socket surface the link state machine
// needs: deadline-bounded datagram exchange with a configured remote, or
// a dynamic remote learned from the first inbound packet (spec.md §8
// scenario 2).
type Transport interface {
	// WriteTo sends b to addr. addr may be nil to use the transport's
	// configured remote.
	WriteTo(b []byte, addr net.Addr) (int, error)
	// ReadFrom blocks (subject to deadline) until a datagram arrives,
	// returning its length and source address.
	ReadFrom(b []byte) (n int, addr net.Addr, err error)
	// SetReadDeadline bounds the next ReadFrom call so a blocked RX
	// worker can still observe a shutdown flag.
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	Close() error
}
