// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec backs wire indices 2 (lz4) and 3 (lz4hc). Both share the
// same underlying library; lz4hc simply pins the compressor into the
// high-compression level band.
type lz4Codec struct {
	hc bool
}

func newLZ4Codec(hc bool) *lz4Codec { return &lz4Codec{hc: hc} }

func (*lz4Codec) Init() error { return nil }
func (*lz4Codec) Fini()       {}

func (c *lz4Codec) ValidateLevel(level int) error {
	if level < 0 || level > int(lz4.Level9) {
		return fmt.Errorf("lz4: level %d out of range [0,%d]", level, lz4.Level9)
	}
	if c.hc && level != 0 && level < int(lz4.Level7) {
		return fmt.Errorf("lz4hc: level %d below the high-compression band", level)
	}
	return nil
}

func (c *lz4Codec) Compress(dst, src []byte, level int) ([]byte, error) {
	lvl := lz4.Level9
	if level != 0 {
		lvl = lz4.CompressionLevel(level)
	}

	bound := lz4.CompressBlockBound(len(src))
	out := make([]byte, binary.MaxVarintLen64+bound)
	prefixLen := binary.PutUvarint(out, uint64(len(src)))

	var n int
	var err error
	if c.hc {
		n, err = lz4.CompressBlockHC(src, out[prefixLen:], lvl, nil, nil)
	} else {
		// lz4.Compressor has no level setting; level only applies to lz4hc.
		var w lz4.Compressor
		n, err = w.CompressBlock(src, out[prefixLen:])
	}
	if err != nil {
		return nil, err
	}
	if n == 0 && len(src) > 0 {
		// lz4 reports 0 when the input does not compress; store the
		// original bytes literally after the length prefix. Decompress
		// recognises this by a body exactly as long as the original.
		out = append(out[:prefixLen], src...)
		return appendInto(dst, out), nil
	}
	return appendInto(dst, out[:prefixLen+n]), nil
}

func (*lz4Codec) Decompress(dst, src []byte) ([]byte, error) {
	origLen, prefixLen := binary.Uvarint(src)
	if prefixLen <= 0 {
		return nil, fmt.Errorf("lz4: malformed length prefix")
	}
	body := src[prefixLen:]
	out := make([]byte, origLen)
	if len(body) == int(origLen) {
		// literal fallback written by Compress for incompressible input.
		copy(out, body)
		return appendInto(dst, out), nil
	}
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, err
	}
	return appendInto(dst, out[:n]), nil
}
