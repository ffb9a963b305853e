// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"fmt"

	"github.com/DataDog/zstd"
)

// zstdCodec backs the appended wire index 7. Not part of spec.md's
// original algorithm table; appending it is exactly what the
// append-only rule in spec.md §3/§4.2 exists to allow.
type zstdCodec struct{}

func newZstdCodec() *zstdCodec { return &zstdCodec{} }

func (*zstdCodec) Init() error { return nil }
func (*zstdCodec) Fini()       {}

func (*zstdCodec) ValidateLevel(level int) error {
	if level != 0 && (level < zstd.BestSpeed || level > zstd.BestCompression) {
		return fmt.Errorf("zstd: level %d out of range [%d,%d]", level, zstd.BestSpeed, zstd.BestCompression)
	}
	return nil
}

func (*zstdCodec) Compress(dst, src []byte, level int) ([]byte, error) {
	if level == 0 {
		level = zstd.DefaultCompression
	}
	out, err := zstd.CompressLevel(dst[:0], src, level)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (*zstdCodec) Decompress(dst, src []byte) ([]byte, error) {
	out, err := zstd.Decompress(dst[:0], src)
	if err != nil {
		return nil, err
	}
	return out, nil
}
