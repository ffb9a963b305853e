// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import "github.com/knotted/knet/internal/knerr"

// unsupportedCodec backs a registered, wire-numbered slot with no
// available implementation. It keeps the slot's index reserved
// (append-only numbering, spec.md §3) while returning ErrUnsupported
// from every operation (Init and Compress report it as a config
// error, Decompress as a framing error), mirroring upstream kronosnet's own
// configure-time-optional compression plugins: a plugin missing from
// the build says so rather than silently falling back.
type unsupportedCodec struct{}

func newUnsupportedCodec() *unsupportedCodec { return &unsupportedCodec{} }

func (*unsupportedCodec) Init() error { return nil }
func (*unsupportedCodec) Fini()       {}

func (*unsupportedCodec) ValidateLevel(int) error { return knerr.ErrUnsupported }

func (*unsupportedCodec) Compress(_, _ []byte, _ int) ([]byte, error) {
	return nil, knerr.ErrUnsupported
}

func (*unsupportedCodec) Decompress(_, _ []byte) ([]byte, error) {
	return nil, knerr.ErrUnsupported
}
