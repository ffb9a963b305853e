// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package knerr implements the discriminated error taxonomy described
// in spec.md §7: config, state, transport, framing, and resource
// errors, each carrying a Kind a caller can switch on without string
// matching.
package knerr

import "fmt"

// Kind discriminates the error taxonomy of spec.md §7. Timeouts are
// deliberately absent: they drive the link state machine internally
// and are never surfaced as synchronous errors.
type Kind uint8

const (
	// Config covers bad ids, unknown compression algorithms, invalid
	// levels, and dynamic-bind port exhaustion.
	Config Kind = iota
	// State covers operations on a link/host in the wrong lifecycle
	// state, e.g. clearing an enabled link, re-adding a host id.
	State
	// Transport covers address-in-use, unsupported protocol, and
	// per-link send failures.
	Transport
	// Framing covers bad magic, unknown version, and length mismatches.
	Framing
	// Resource covers out-of-memory and full fixed-size tables.
	Resource
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case State:
		return "state"
	case Transport:
		return "transport"
	case Framing:
		return "framing"
	case Resource:
		return "resource"
	default:
		return "unknown"
	}
}

// Error is the single error type every fallible core operation returns.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("knet: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("knet: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a *Error of the given kind for operation op, wrapping err
// (which may be nil).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of kind k, walking the chain.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == k
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ErrUnsupported marks a registered but not-compiled-in capability —
// e.g. a compression algorithm with no available codec, or a transport
// protocol absent from this build. Distinct from Config because the
// caller asked for something real that this build simply cannot do, a
// distinction the SCTP transport's "skip" signal (spec.md §7) relies
// on to tell the test harness "not configured" from "failed".
var ErrUnsupported = fmt.Errorf("knet: capability not available in this build")
