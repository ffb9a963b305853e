// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package transport

import (
	"errors"
	"net"
	"time"
)

// memAddr is a trivial net.Addr for in-memory transports.
type memAddr string

func (a memAddr) Network() string { return "mem" }
func (a memAddr) String() string  { return string(a) }

// datagram is one in-flight payload on a Mem transport.
type datagram struct {
	payload []byte
	from    net.Addr
}

// Mem is an in-process Transport used by tests that exercise the link
// and host state machines without touching a real socket, mirroring
// how the teacher repo's dogstatsd listener tests prefer an
// in-process pipe over the network where the network isn't the thing
// under test.
type Mem struct {
	local net.Addr
	peer  *Mem
	inbox chan datagram
	dl    time.Time
}

// NewMemPair returns two transports wired to each other: writes to a
// reach b's ReadFrom and vice versa.
func NewMemPair(localA, localB string) (*Mem, *Mem) {
	a := &Mem{local: memAddr(localA), inbox: make(chan datagram, 64)}
	b := &Mem{local: memAddr(localB), inbox: make(chan datagram, 64)}
	a.peer = b
	b.peer = a
	return a, b
}

func (m *Mem) WriteTo(b []byte, _ net.Addr) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case m.peer.inbox <- datagram{payload: cp, from: m.local}:
		return len(b), nil
	default:
		return 0, errors.New("transport: mem inbox full")
	}
}

func (m *Mem) ReadFrom(b []byte) (int, net.Addr, error) {
	var timeout <-chan time.Time
	if !m.dl.IsZero() {
		d := time.Until(m.dl)
		if d <= 0 {
			return 0, nil, errTimeout
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case dg := <-m.inbox:
		n := copy(b, dg.payload)
		return n, dg.from, nil
	case <-timeout:
		return 0, nil, errTimeout
	}
}

// timeoutError satisfies net.Error so callers can distinguish a
// deadline expiry from a genuine transport failure the same way they
// would for a real socket.
type timeoutError struct{ error }

func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var errTimeout net.Error = timeoutError{errors.New("transport: mem read deadline exceeded")}

func (m *Mem) SetReadDeadline(t time.Time) error { m.dl = t; return nil }
func (m *Mem) LocalAddr() net.Addr               { return m.local }
func (m *Mem) RemoteAddr() net.Addr {
	if m.peer == nil {
		return nil
	}
	return m.peer.local
}
func (m *Mem) Close() error { return nil }
