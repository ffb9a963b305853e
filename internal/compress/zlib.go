// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"bytes"
	"fmt"
	"io"

	kzlib "github.com/klauspost/compress/zlib"
)

// zlibCodec backs wire index 1, using klauspost/compress's drop-in,
// faster zlib implementation rather than the standard library's.
type zlibCodec struct{}

func newZlibCodec() *zlibCodec { return &zlibCodec{} }

func (*zlibCodec) Init() error { return nil }
func (*zlibCodec) Fini()       {}

func (*zlibCodec) ValidateLevel(level int) error {
	if level < kzlib.NoCompression || level > kzlib.BestCompression {
		return fmt.Errorf("zlib: level %d out of range [%d,%d]", level, kzlib.NoCompression, kzlib.BestCompression)
	}
	return nil
}

func (*zlibCodec) Compress(dst, src []byte, level int) ([]byte, error) {
	if level == 0 {
		level = kzlib.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := kzlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return appendInto(dst, buf.Bytes()), nil
}

func (*zlibCodec) Decompress(dst, src []byte) ([]byte, error) {
	r, err := kzlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendInto writes src into dst's backing array when it has capacity,
// otherwise allocates. Shared by every codec to keep the caller-buffer
// contract from spec.md §4.1/§4.2 ("caller supplies the output buffer
// and receives the written length").
func appendInto(dst, src []byte) []byte {
	if cap(dst) >= len(src) {
		dst = dst[:len(src)]
		copy(dst, src)
		return dst
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out
}
