// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knotted/knet/internal/knerr"
)

const maxPktForTest = 65507

func TestInitPreWarmsWithNilConfig(t *testing.T) {
	_, err := Init(nil, maxPktForTest)
	assert.NoError(t, err)
}

func TestInitUnknownAlgorithm(t *testing.T) {
	_, err := Init(&Config{Algo: Algo(200)}, maxPktForTest)
	assert.Error(t, err)
}

func TestInitThresholdZeroSubstitutesDefault(t *testing.T) {
	cfg, err := Init(&Config{Algo: LZ4, Threshold: 0}, maxPktForTest)
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, cfg.Threshold)
}

func TestInitThresholdExceedsMaxPacketSize(t *testing.T) {
	_, err := Init(&Config{Algo: LZ4, Threshold: maxPktForTest + 1}, maxPktForTest)
	assert.Error(t, err)
}

func TestInitLZO2AndBzip2RejectedAsEgressSelection(t *testing.T) {
	_, err := Init(&Config{Algo: LZO2}, maxPktForTest)
	assert.Error(t, err, "lzo2 has no implementation in this build")

	_, err = Init(&Config{Algo: Bzip2}, maxPktForTest)
	assert.Error(t, err, "bzip2 has no encoder in this build")
}

func roundTrip(t *testing.T, algo Algo, payload []byte) {
	t.Helper()
	cfg, err := Init(&Config{Algo: algo, Threshold: 1}, maxPktForTest)
	require.NoError(t, err)

	compressed, err := Compress(cfg, nil, payload)
	require.NoError(t, err)

	out, err := Decompress(algo, nil, compressed)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(payload, out), "round trip mismatch for %s", algo)
}

func TestRoundTripEveryAvailableAlgorithm(t *testing.T) {
	payload := bytes.Repeat([]byte("ABCD"), 1024)
	for _, a := range []Algo{Zlib, LZ4, LZ4HC, LZMA, Zstd, Snappy} {
		a := a
		t.Run(a.String(), func(t *testing.T) {
			roundTrip(t, a, payload)
		})
	}
}

func TestBzip2CompressIsRefused(t *testing.T) {
	// No encoder is available in this build, so Compress on bzip2 is
	// refused; Decompress is not exercised here.
	_, err := Compress(Config{Algo: Bzip2}, nil, []byte("x"))
	assert.Error(t, err)
}

func TestShouldCompressThreshold(t *testing.T) {
	cfg := Config{Algo: LZ4, Threshold: 100}
	assert.False(t, ShouldCompress(cfg, 50))
	assert.True(t, ShouldCompress(cfg, 101))

	none := Config{Algo: None, Threshold: 100}
	assert.False(t, ShouldCompress(none, 1000))
}

func TestByName(t *testing.T) {
	a, ok := ByName("zstd")
	require.True(t, ok)
	assert.Equal(t, Zstd, a)

	_, ok = ByName("does-not-exist")
	assert.False(t, ok)
}

func TestFiniIsIdempotentWithoutInit(t *testing.T) {
	assert.NotPanics(t, func() { Fini() })
	assert.NotPanics(t, func() { Fini() })
}

func TestDecompressUnknownIndexIsFramingError(t *testing.T) {
	_, err := Decompress(Algo(31), nil, []byte("x"))
	assert.Error(t, err)
	assert.True(t, knerr.Is(err, knerr.Framing))
}
