// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package transport

import (
	"net"

	"github.com/knotted/knet/internal/knerr"
)

// NewSCTP would bind an SCTP one-to-one socket, but no SCTP
// implementation is present in this build. It returns the first-class
// "skip" signal spec.md §7 describes: "Protocol-unsupported on the
// SCTP transport is a first-class skip signal used by the test
// harness," letting callers and tests distinguish "not configured"
// from "failed."
func NewSCTP(_, _ *net.UDPAddr) (Transport, error) {
	return nil, knerr.New(knerr.Transport, "transport.NewSCTP", knerr.ErrUnsupported)
}
