// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"github.com/knotted/knet/internal/frame"
	"github.com/knotted/knet/internal/host"
)

// HostID identifies a configured peer, unique within a Handle.
type HostID = host.ID

// LinkSlot identifies one of a host's link slots.
type LinkSlot = uint8

// ChannelIndex is the small, signed, application-level multiplexing
// tag carried in a data packet's header.
type ChannelIndex = int8

// PacketType tags the purpose of a packet on the wire.
type PacketType = frame.Type

// Re-export the wire-level packet types for callers that inspect
// notifications or enumerations.
const (
	PacketData      = frame.Data
	PacketPing      = frame.Ping
	PacketPong      = frame.Pong
	PacketPMTUProbe = frame.PMTUProbe
	PacketPMTUReply = frame.PMTUReply
)

// Policy selects how a host's active link set is derived from its
// connected links.
type Policy = host.Policy

const (
	PolicyPassive = host.Passive
	PolicyActive  = host.Active
)

// Direction tells a Filter callback which pipeline invoked it.
type Direction uint8

const (
	TX Direction = iota
	RX
)

func (d Direction) String() string {
	if d == TX {
		return "tx"
	}
	return "rx"
}

// Filter is the application-installed packet filter of spec.md §4.5.
// It is invoked on every data packet on both the egress and ingress
// paths and must be pure: it must not block, must not call back into
// the Handle, and must complete in bounded time. An empty dests slice
// means "drop on egress, deliver only locally (or not at all) on
// ingress."
type Filter func(sender, self HostID, dir Direction, payload []byte) (dests []HostID, channel ChannelIndex)

// HostStatusNotify fires exactly once per reachability transition,
// outside any core lock, per spec.md §4.4.
type HostStatusNotify func(id HostID, reachable bool)

// LinkStatusNotify fires on link-level (not host-level) connect/disconnect
// transitions — the "install_socket_notify" collaborator of spec.md §6.
type LinkStatusNotify func(id HostID, slot LinkSlot, connected bool)
