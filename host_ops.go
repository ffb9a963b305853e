// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/knotted/knet/internal/host"
	"github.com/knotted/knet/internal/knerr"
)

// HostInfo is the read-only snapshot EnumerateHosts returns.
type HostInfo struct {
	ID        HostID
	Policy    Policy
	Reachable bool
	External  bool
	Remote    bool
}

// AddHost registers a new peer. Host ids are unique within a handle
// (spec.md §3); adding a duplicate id is a state error.
func (h *Handle) AddHost(id HostID, policy Policy, external, remote bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.hosts[id]; exists {
		return knerr.New(knerr.State, "knet.AddHost", fmt.Errorf("host %d already added", id))
	}
	ho := host.New(id, policy)
	ho.External = external
	ho.Remote = remote
	h.hosts[id] = ho
	h.logger.Info("host added", zap.Uint16("host_id", uint16(id)))
	return nil
}

// RemoveHost removes a peer. The host must be unreachable first
// (spec.md §3: "must be unreachable before removal").
func (h *Handle) RemoveHost(id HostID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ho, ok := h.hosts[id]
	if !ok {
		return knerr.New(knerr.State, "knet.RemoveHost", fmt.Errorf("host %d not found", id))
	}
	if ho.Reachable() {
		return knerr.New(knerr.State, "knet.RemoveHost", fmt.Errorf("host %d still reachable", id))
	}
	delete(h.hosts, id)
	h.logger.Info("host removed", zap.Uint16("host_id", uint16(id)))
	return nil
}

// EnumerateHosts returns a snapshot of every configured host.
func (h *Handle) EnumerateHosts() []HostInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HostInfo, 0, len(h.hosts))
	for _, ho := range h.hosts {
		out = append(out, HostInfo{
			ID:        ho.ID,
			Policy:    ho.Policy,
			Reachable: ho.Reachable(),
			External:  ho.External,
			Remote:    ho.Remote,
		})
	}
	return out
}

func (h *Handle) hostLocked(id HostID) (*host.Host, bool) {
	ho, ok := h.hosts[id]
	return ho, ok
}
