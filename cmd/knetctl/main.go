// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Command knetctl opens a handle from flags, optionally wires up one
// peer host and one link to it from --peer-id/--remote, and
// periodically prints host and link state. It exists
// for manual exercising of the core during development, not as a
// production control plane (spec.md §1's no-RPC non-goal applies here
// too: knetctl only drives the local process's own Handle).
package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/knotted/knet"
	"github.com/knotted/knet/internal/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "knetctl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		nodeID     uint16
		localAddr  string
		remoteAddr string
		peerID     uint16
		watch      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "knetctl",
		Short: "Exercise a knet handle from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := net.ResolveUDPAddr("udp", localAddr)
			if err != nil {
				return fmt.Errorf("resolve local: %w", err)
			}

			h, err := knet.Open(knet.HostID(nodeID), os.Stderr, knet.LogInfo, 0, knet.Config{})
			if err != nil {
				return err
			}
			defer h.Close()

			if remoteAddr != "" {
				remote, err := net.ResolveUDPAddr("udp", remoteAddr)
				if err != nil {
					return fmt.Errorf("resolve remote: %w", err)
				}
				if err := h.AddHost(knet.HostID(peerID), knet.PolicyPassive, false, true); err != nil {
					return err
				}
				if err := h.SetLinkConfig(knet.HostID(peerID), 0, knet.LinkConfig{
					Transport: transport.UDP,
					Local:     local,
					Remote:    remote,
				}); err != nil {
					return err
				}
				if err := h.SetLinkEnable(knet.HostID(peerID), 0, true); err != nil {
					return err
				}
			}

			h.SetForwarding(true)

			ticker := time.NewTicker(watch)
			defer ticker.Stop()
			for range ticker.C {
				printStatus(h)
			}
			return nil
		},
	}

	cmd.Flags().Uint16Var(&nodeID, "id", 1, "this node's host id")
	cmd.Flags().StringVar(&localAddr, "local", "127.0.0.1:0", "local UDP address to bind")
	cmd.Flags().StringVar(&remoteAddr, "remote", "", "peer UDP address to link to")
	cmd.Flags().Uint16Var(&peerID, "peer-id", 2, "the peer's host id, when --remote is set")
	cmd.Flags().DurationVar(&watch, "watch", 2*time.Second, "status print interval")
	return cmd
}

func printStatus(h *knet.Handle) {
	for _, hi := range h.EnumerateHosts() {
		fmt.Printf("host %d reachable=%v policy=%v\n", hi.ID, hi.Reachable, hi.Policy)
	}
	for _, li := range h.EnumerateLinks() {
		fmt.Printf("  link host=%d slot=%d state=%s rtt=%s pings=%d pongs=%d\n",
			li.HostID, li.Slot, li.State, time.Duration(li.RTT), li.PingCount, li.PongCount)
	}
}
