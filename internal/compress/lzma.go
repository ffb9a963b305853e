// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kjk/lzma"
)

// lzmaCodec backs wire index 5, using kjk/lzma — the only LZMA
// implementation carried anywhere in the retrieved dependency set.
type lzmaCodec struct{}

func newLZMACodec() *lzmaCodec { return &lzmaCodec{} }

func (*lzmaCodec) Init() error { return nil }
func (*lzmaCodec) Fini()       {}

func (*lzmaCodec) ValidateLevel(level int) error {
	if level < 0 || level > 9 {
		return fmt.Errorf("lzma: level %d out of range [0,9]", level)
	}
	return nil
}

func (*lzmaCodec) Compress(dst, src []byte, _ int) ([]byte, error) {
	var buf bytes.Buffer
	w := lzma.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return appendInto(dst, buf.Bytes()), nil
}

func (*lzmaCodec) Decompress(dst, src []byte) ([]byte, error) {
	r := lzma.NewReader(bytes.NewReader(src))
	defer r.Close()
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
