// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/knotted/knet/internal/compress"
	"github.com/knotted/knet/internal/link"
	"github.com/knotted/knet/internal/transport"
)

// fastLinkConfig keeps the heartbeat loop quick enough for a test
// deadline without relying on a mocked clock; Open always runs on a
// real clock (spec.md §4.6 runs against wall time in production).
func fastLinkConfig() link.Config {
	return link.Config{
		PingInterval:   20 * time.Millisecond,
		DeadTimeout:    2 * time.Second,
		MaxMissedPongs: 50,
	}
}

func openTestHandle(t *testing.T, id HostID) *Handle {
	t.Helper()
	h, err := Open(id, nil, LogError, 0, Config{Link: fastLinkConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { closeTestHandle(t, h) })
	h.SetForwarding(true) // data only moves with forwarding on
	return h
}

// closeTestHandle disables every link before Close, which refuses to
// tear down a handle with anything still enabled (spec.md §4.6).
func closeTestHandle(t *testing.T, h *Handle) {
	t.Helper()
	for _, li := range h.EnumerateLinks() {
		_ = h.SetLinkEnable(li.HostID, li.Slot, false)
	}
	_ = h.Close()
}

// udpAddr returns a loopback address on a port that was free when
// probed, so each end of a link can be given the other's real address
// before either is bound.
func udpAddr(t *testing.T) *net.UDPAddr {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	addr := conn.LocalAddr().(*net.UDPAddr)
	require.NoError(t, conn.Close())
	return addr
}

func passThroughFilter(dest HostID) Filter {
	return func(sender, self HostID, dir Direction, payload []byte) ([]HostID, ChannelIndex) {
		if dir == TX {
			return []HostID{dest}, 0
		}
		return nil, 0
	}
}

func localUDPAddr(t *testing.T, tr transport.Transport) *net.UDPAddr {
	t.Helper()
	addr, ok := tr.LocalAddr().(*net.UDPAddr)
	require.True(t, ok)
	return addr
}

// linkUp configures a static-remote UDP link on h toward peer and
// enables it. The link can only reach Connected once the peer's end is
// configured too; waitConnected waits for that.
func linkUp(t *testing.T, h *Handle, peer HostID, local, remote *net.UDPAddr) {
	t.Helper()
	require.NoError(t, h.SetLinkConfig(peer, 0, LinkConfig{
		Transport: transport.UDP,
		Local:     local,
		Remote:    remote,
		Tuning:    fastLinkConfig(),
	}))
	require.NoError(t, h.SetLinkEnable(peer, 0, true))
}

// waitConnected waits for h's link toward peer to reach Connected.
func waitConnected(t *testing.T, h *Handle, peer HostID) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, li := range h.EnumerateLinks() {
			if li.HostID == peer && li.State == link.Connected {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTwoNodeLoopbackSendRecv(t *testing.T) {
	const idA, idB HostID = 1, 2

	a := openTestHandle(t, idA)
	b := openTestHandle(t, idB)

	require.NoError(t, a.AddHost(idB, PolicyPassive, false, true))
	require.NoError(t, b.AddHost(idA, PolicyPassive, false, true))

	aAddr, bAddr := udpAddr(t), udpAddr(t)
	linkUp(t, a, idB, aAddr, bAddr)
	linkUp(t, b, idA, bAddr, aAddr)
	waitConnected(t, a, idB)
	waitConnected(t, b, idA)

	a.InstallFilter(passThroughFilter(idB))
	b.InstallFilter(passThroughFilter(idA))

	require.NoError(t, a.AddDataChannel(0, nil))
	require.NoError(t, b.AddDataChannel(0, nil))

	require.NoError(t, a.Send(0, []byte("hello across the link")))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := b.Recv(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "hello across the link", string(got))
}

func TestDynamicRemoteAddressIsLearned(t *testing.T) {
	const idA, idB HostID = 1, 2

	a := openTestHandle(t, idA)
	b := openTestHandle(t, idB)

	require.NoError(t, a.AddHost(idB, PolicyPassive, false, true))
	require.NoError(t, b.AddHost(idA, PolicyPassive, false, true))

	// B's link is configured with no remote: its peer address is
	// learned from the first inbound datagram (spec.md §8 scenario 2).
	require.NoError(t, b.SetLinkConfig(idA, 0, LinkConfig{
		Transport: transport.UDP, Local: udpAddr(t), Remote: nil, Tuning: fastLinkConfig(),
	}))
	require.NoError(t, b.SetLinkEnable(idA, 0, true))

	b.mu.RLock()
	bHost, _ := b.hostLocked(idA)
	bActualAddr := localUDPAddr(t, findLink(bHost, 0).Transport)
	b.mu.RUnlock()

	linkUp(t, a, idB, udpAddr(t), bActualAddr)
	waitConnected(t, a, idB)

	require.Eventually(t, func() bool {
		for _, li := range b.EnumerateLinks() {
			if li.HostID == idA && li.State == link.Connected {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCompressionRoundTrip(t *testing.T) {
	const idA, idB HostID = 1, 2

	cfg := Config{
		Link: fastLinkConfig(),
		Compress: &compress.Config{
			Algo:      compress.Zlib,
			Level:     6,
			Threshold: 8,
		},
	}
	a, err := Open(idA, nil, LogError, 0, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { closeTestHandle(t, a) })
	a.SetForwarding(true)
	b := openTestHandle(t, idB)

	require.NoError(t, a.AddHost(idB, PolicyPassive, false, true))
	require.NoError(t, b.AddHost(idA, PolicyPassive, false, true))

	aAddr, bAddr := udpAddr(t), udpAddr(t)
	linkUp(t, a, idB, aAddr, bAddr)
	linkUp(t, b, idA, bAddr, aAddr)
	waitConnected(t, a, idB)
	waitConnected(t, b, idA)

	a.InstallFilter(passThroughFilter(idB))
	b.InstallFilter(passThroughFilter(idA))

	require.NoError(t, a.AddDataChannel(0, nil))
	require.NoError(t, b.AddDataChannel(0, nil))

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, a.Send(0, payload))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := b.Recv(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}
