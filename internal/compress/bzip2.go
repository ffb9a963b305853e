// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
)

// bzip2Codec backs wire index 6. No repository in the retrieved
// dependency set carries a bzip2 *encoder* — the standard library's
// own compress/bzip2 package is decode-only — so Compress reports
// ErrUnsupported while Decompress works against any bzip2 stream
// produced elsewhere on the cluster. See DESIGN.md.
type bzip2Codec struct{}

func newBzip2Codec() *bzip2Codec { return &bzip2Codec{} }

func (*bzip2Codec) Init() error { return nil }
func (*bzip2Codec) Fini()       {}

func (*bzip2Codec) ValidateLevel(int) error {
	// Rejected unconditionally: selecting bzip2 as this handle's
	// egress algorithm can never succeed without an encoder, so Init
	// refuses it outright rather than deferring the failure to the
	// first Compress call.
	return fmt.Errorf("bzip2: no encoder available in this build")
}

func (*bzip2Codec) Compress(_, _ []byte, _ int) ([]byte, error) {
	return nil, fmt.Errorf("bzip2: no encoder available in this build")
}

func (*bzip2Codec) Decompress(dst, src []byte) ([]byte, error) {
	r := bzip2.NewReader(bytes.NewReader(src))
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
