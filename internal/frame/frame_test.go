// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Type:         Data,
		Flags:        FlagCompressed,
		Sender:       7,
		Seq:          42,
		ChannelOrSeq: 3,
		CompressAlgo: 2,
	}
	payload := []byte("Testing")
	buf := make([]byte, HeaderLen+len(payload))

	n, err := Encode(buf, h, payload)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	got, body, err := Decode(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, payload, body)
}

func TestDecodeBadMagic(t *testing.T) {
	buf := make([]byte, HeaderLen)
	_, _, err := Decode(buf)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDecodeShortBuffer(t *testing.T) {
	_, _, err := Decode(make([]byte, 4))
	var short *ErrShortBuffer
	assert.ErrorAs(t, err, &short)
}

func TestEncodeTooLarge(t *testing.T) {
	h := Header{Type: Data}
	big := make([]byte, MaxPacketSize)
	_, err := Encode(make([]byte, MaxPacketSize+HeaderLen), h, big)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestExtractFingerprintMatchesDecode(t *testing.T) {
	h := Header{Type: Ping, Sender: 9, Seq: 100}
	buf := make([]byte, HeaderLen)
	_, err := Encode(buf, h, nil)
	require.NoError(t, err)

	fp, err := ExtractFingerprint(buf)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint{Sender: 9, Type: Ping, Seq: 100}, fp)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "data", Data.String())
	assert.Equal(t, "pmtuReply", PMTUReply.String())
}
