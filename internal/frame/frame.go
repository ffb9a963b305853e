// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package frame implements the on-wire packet header: a fixed-size,
// big-endian header followed by a variable-length payload. Encode and
// Decode never perform I/O and never block; they operate purely on
// caller-supplied buffers so the hot send/receive paths can reuse
// buffers across packets.
package frame

import (
	"encoding/binary"
	"fmt"
)

// Type tags the purpose of a packet. The numeric values are on the wire
// and must never be reassigned.
type Type uint8

const (
	Data Type = iota
	Ping
	Pong
	PMTUProbe
	PMTUReply
)

func (t Type) String() string {
	switch t {
	case Data:
		return "data"
	case Ping:
		return "ping"
	case Pong:
		return "pong"
	case PMTUProbe:
		return "pmtu"
	case PMTUReply:
		return "pmtuReply"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Flag bits live in the header's single flags byte.
const (
	FlagCompressed uint8 = 1 << 0
	FlagEncrypted  uint8 = 1 << 1
)

// Magic identifies the protocol and version. A mismatch is not fatal:
// callers count and drop.
const Magic uint32 = 0x6b6e6501 // "kne" + version 1

// HeaderLen is the fixed header size in bytes, per spec.md §6.
const HeaderLen = 16

// MaxPacketSize is the hard ceiling on an encoded packet, header
// included: 65507 is the largest payload a single UDP datagram over
// IPv4 can carry. Packets larger than the path MTU are fragmented by IP.
const MaxPacketSize = 65507

// Header mirrors the wire layout:
//
//	0   magic+version     4B
//	4   packet type       1B
//	5   flags             1B
//	6   sender node id    2B
//	8   sequence number   4B
//	12  channel/probe seq 2B
//	14  compression algo  1B
//	15  reserved          1B
//	16+ payload           var
type Header struct {
	Type          Type
	Flags         uint8
	Sender        uint16
	Seq           uint32
	ChannelOrSeq  uint16
	CompressAlgo  uint8
}

// Fingerprint is the (sender, type, seq) triple used for deduplication.
// It never allocates.
type Fingerprint struct {
	Sender uint16
	Type   Type
	Seq    uint32
}

// ErrShortBuffer is returned when the destination buffer cannot hold
// the header plus payload.
type ErrShortBuffer struct {
	Need, Have int
}

func (e *ErrShortBuffer) Error() string {
	return fmt.Sprintf("frame: short buffer: need %d, have %d", e.Need, e.Have)
}

// ErrBadMagic signals a magic/version mismatch. Callers must count and
// drop, never treat this as fatal.
var ErrBadMagic = fmt.Errorf("frame: bad magic or unsupported version")

// ErrTooLarge signals a payload that would exceed MaxPacketSize once
// framed.
var ErrTooLarge = fmt.Errorf("frame: packet exceeds max size")

// Encode serializes h and payload into buf, returning the number of
// bytes written. buf must be at least HeaderLen+len(payload) long.
func Encode(buf []byte, h Header, payload []byte) (int, error) {
	total := HeaderLen + len(payload)
	if total > MaxPacketSize {
		return 0, ErrTooLarge
	}
	if len(buf) < total {
		return 0, &ErrShortBuffer{Need: total, Have: len(buf)}
	}
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	buf[4] = byte(h.Type)
	buf[5] = h.Flags
	binary.BigEndian.PutUint16(buf[6:8], h.Sender)
	binary.BigEndian.PutUint32(buf[8:12], h.Seq)
	binary.BigEndian.PutUint16(buf[12:14], h.ChannelOrSeq)
	buf[14] = h.CompressAlgo
	buf[15] = 0
	copy(buf[HeaderLen:total], payload)
	return total, nil
}

// Decode parses buf into a Header and returns the payload slice, which
// aliases buf. It checks that buf holds a full header and validates the
// magic/version, but performs no decompression or decryption.
func Decode(buf []byte) (Header, []byte, error) {
	if len(buf) < HeaderLen {
		return Header{}, nil, &ErrShortBuffer{Need: HeaderLen, Have: len(buf)}
	}
	if binary.BigEndian.Uint32(buf[0:4]) != Magic {
		return Header{}, nil, ErrBadMagic
	}
	h := Header{
		Type:         Type(buf[4]),
		Flags:        buf[5],
		Sender:       binary.BigEndian.Uint16(buf[6:8]),
		Seq:          binary.BigEndian.Uint32(buf[8:12]),
		ChannelOrSeq: binary.BigEndian.Uint16(buf[12:14]),
		CompressAlgo: buf[14],
	}
	return h, buf[HeaderLen:], nil
}

// ExtractFingerprint reads the (sender, type, seq) triple straight out
// of an encoded buffer without a full Decode, for the hot dedup path.
func ExtractFingerprint(buf []byte) (Fingerprint, error) {
	if len(buf) < HeaderLen {
		return Fingerprint{}, &ErrShortBuffer{Need: HeaderLen, Have: len(buf)}
	}
	return Fingerprint{
		Sender: binary.BigEndian.Uint16(buf[6:8]),
		Type:   Type(buf[4]),
		Seq:    binary.BigEndian.Uint32(buf[8:12]),
	}, nil
}
