// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// snappyCodec backs the appended wire index 8. Snappy has no notion
// of compression level; ValidateLevel accepts only 0.
type snappyCodec struct{}

func newSnappyCodec() *snappyCodec { return &snappyCodec{} }

func (*snappyCodec) Init() error { return nil }
func (*snappyCodec) Fini()       {}

func (*snappyCodec) ValidateLevel(level int) error {
	if level != 0 {
		return errSnappyLevel
	}
	return nil
}

var errSnappyLevel = fmt.Errorf("snappy: algorithm has no compression levels")

func (*snappyCodec) Compress(dst, src []byte, _ int) ([]byte, error) {
	return snappy.Encode(dst, src), nil
}

func (*snappyCodec) Decompress(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst, src)
}
