// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package transport

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// udpTransport is the concrete UDP back-end spec.md §1 calls
// out-of-scope but whose interface §6 requires. remote may be nil,
// meaning "dynamic": the first inbound packet's source address is
// learned and subsequent WriteTo(nil) calls target it, matching
// spec.md §8 scenario 2.
type udpTransport struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
}

// NewUDP binds a UDP socket at local and optionally targets remote.
// A nil remote leaves the link dynamic until a peer is heard from.
func NewUDP(local, remote *net.UDPAddr) (Transport, error) {
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, fmt.Errorf("transport: udp listen %s: %w", local, err)
	}
	if err := tuneSocketBuffers(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &udpTransport{conn: conn, remote: remote}, nil
}

// tuneSocketBuffers raises the kernel receive/send buffers on the
// underlying file descriptor, mirroring the socket-tuning a
// production multi-link datapath needs under bursty loss — the kind
// of low-level knob the original C core reaches for directly and
// which golang.org/x/sys/unix is needed to express in Go.
func tuneSocketBuffers(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	const wantBuf = 1 << 20 // 1 MiB
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, wantBuf); e != nil {
			sockErr = e
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, wantBuf)
	})
	if err != nil {
		return err
	}
	// Buffer sizing is best-effort: some kernels/sandboxes clamp or
	// refuse SO_RCVBUF/SO_SNDBUF entirely. Never fail link setup over it.
	_ = sockErr
	return nil
}

func (u *udpTransport) WriteTo(b []byte, addr net.Addr) (int, error) {
	target := u.remote
	if addr != nil {
		var ok bool
		target, ok = addr.(*net.UDPAddr)
		if !ok {
			return 0, fmt.Errorf("transport: udp write: addr is not *net.UDPAddr")
		}
	}
	if target == nil {
		return 0, fmt.Errorf("transport: udp write: no remote configured")
	}
	return u.conn.WriteToUDP(b, target)
}

func (u *udpTransport) ReadFrom(b []byte) (int, net.Addr, error) {
	n, addr, err := u.conn.ReadFromUDP(b)
	if err != nil {
		return n, addr, err
	}
	if u.remote == nil {
		// Dynamic remote: learn the peer from the first datagram, per
		// spec.md §8 scenario 2.
		u.remote = addr
	}
	return n, addr, nil
}

func (u *udpTransport) SetReadDeadline(t time.Time) error { return u.conn.SetReadDeadline(t) }
func (u *udpTransport) LocalAddr() net.Addr                { return u.conn.LocalAddr() }
func (u *udpTransport) RemoteAddr() net.Addr {
	if u.remote == nil {
		return nil
	}
	return u.remote
}
func (u *udpTransport) Close() error { return u.conn.Close() }
