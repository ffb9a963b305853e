// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package compress implements the append-only compression algorithm
// registry described in spec.md §4.2. Index 0 ("none") is a sentinel
// that is never invoked; every other registered index has a codec
// (lzo2's reports every operation as unsupported, bzip2's can only
// decompress) and must keep its numeric position stable forever,
// since the index travels on the wire (spec.md §6).
package compress

import (
	"fmt"
	"sync"

	"github.com/knotted/knet/internal/knerr"
)

// Algo is a stable, wire-numbered compression algorithm index.
type Algo uint8

const (
	None Algo = iota
	Zlib
	LZ4
	LZ4HC
	LZO2
	LZMA
	Bzip2
	Zstd   // appended: not in spec.md's original wire table
	Snappy // appended
)

func (a Algo) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("algo(%d)", uint8(a))
}

var names = map[Algo]string{
	None: "none", Zlib: "zlib", LZ4: "lz4", LZ4HC: "lz4hc", LZO2: "lzo2",
	LZMA: "lzma", Bzip2: "bzip2", Zstd: "zstd", Snappy: "snappy",
}

// maxAlgorithms is a compile-time bound on the registry, tested at
// init per spec.md §4.2 ("too many algorithms registered → internal
// error, the bound is a compile-time constant").
const maxAlgorithms = 32

// codec is the four-operation contract every non-sentinel algorithm
// implements: optional Init/Fini, level validation, Compress,
// Decompress. This is the Go expression of the source's function
// pointer table (spec.md §9): a fixed-index registry of one
// implementation per variant.
type codec interface {
	Init() error
	Fini()
	ValidateLevel(level int) error
	Compress(dst, src []byte, level int) ([]byte, error)
	Decompress(dst, src []byte) ([]byte, error)
}

type registration struct {
	name  string
	codec codec
}

var registry [maxAlgorithms]registration
var registryMu sync.Mutex
var byName = map[string]Algo{}

func register(a Algo, name string, c codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if int(a) >= maxAlgorithms {
		panic("compress: algorithm index exceeds compile-time registry bound")
	}
	registry[a] = registration{name: name, codec: c}
	byName[name] = a
}

func init() {
	register(None, "none", nil)
	register(Zlib, "zlib", newZlibCodec())
	register(LZ4, "lz4", newLZ4Codec(false))
	register(LZ4HC, "lz4hc", newLZ4Codec(true))
	register(LZO2, "lzo2", newUnsupportedCodec())
	register(LZMA, "lzma", newLZMACodec())
	register(Bzip2, "bzip2", newBzip2Codec())
	register(Zstd, "zstd", newZstdCodec())
	register(Snappy, "snappy", newSnappyCodec())
}

// Config resolves the (algorithm, level, threshold) triple Init stores
// on a handle.
type Config struct {
	Algo      Algo
	Level     int
	Threshold int
}

// DefaultThreshold is substituted when the caller passes a zero
// threshold, per spec.md §4.2.
const DefaultThreshold = 100

// Init resolves and validates cfg against maxPacketSize. A nil cfg
// eagerly pre-warms every algorithm that declares an Init hook and
// reports success without selecting one — matching spec.md §4.2's
// "library pre-warming" path used once at process start, independent
// of any handle's own selection.
func Init(cfg *Config, maxPacketSize int) (Config, error) {
	if cfg == nil {
		registryMu.Lock()
		defer registryMu.Unlock()
		for i := range registry {
			if registry[i].codec != nil {
				if err := registry[i].codec.Init(); err != nil {
					return Config{}, knerr.New(knerr.Config, "compress.Init", err)
				}
			}
		}
		return Config{}, nil
	}

	algo := cfg.Algo
	if int(algo) >= maxAlgorithms {
		return Config{}, knerr.New(knerr.Config, "compress.Init",
			fmt.Errorf("unknown compression algorithm index %d", algo))
	}
	reg := registry[algo]
	if reg.codec == nil && algo != None {
		return Config{}, knerr.New(knerr.Config, "compress.Init",
			fmt.Errorf("unknown compression algorithm index %d", algo))
	}
	if algo != None {
		if err := reg.codec.ValidateLevel(cfg.Level); err != nil {
			return Config{}, knerr.New(knerr.Config, "compress.Init", err)
		}
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold > maxPacketSize {
		return Config{}, knerr.New(knerr.Config, "compress.Init",
			fmt.Errorf("threshold %d exceeds max packet size %d", threshold, maxPacketSize))
	}

	return Config{Algo: algo, Level: cfg.Level, Threshold: threshold}, nil
}

// Fini calls every algorithm's Fini hook. Idempotent and safe to call
// even when Init was never called.
func Fini() {
	registryMu.Lock()
	defer registryMu.Unlock()
	for i := range registry {
		if registry[i].codec != nil {
			registry[i].codec.Fini()
		}
	}
}

// ByName resolves an algorithm index by its registered name.
func ByName(name string) (Algo, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	a, ok := byName[name]
	return a, ok
}

// ShouldCompress reports whether a payload of length n exceeds cfg's
// threshold and should be compressed on egress. Policy per spec.md
// §4.2: "applied on egress only if the post-framing payload length
// exceeds the threshold."
func ShouldCompress(cfg Config, n int) bool {
	return cfg.Algo != None && n > cfg.Threshold
}

// Compress dispatches to cfg's selected algorithm, writing into dst
// and returning the written slice.
func Compress(cfg Config, dst, src []byte) ([]byte, error) {
	if cfg.Algo == None {
		return nil, knerr.New(knerr.Config, "compress.Compress", fmt.Errorf("none is not invoked"))
	}
	reg := registry[cfg.Algo]
	if reg.codec == nil {
		return nil, knerr.New(knerr.Config, "compress.Compress", fmt.Errorf("unknown algorithm %d", cfg.Algo))
	}
	out, err := reg.codec.Compress(dst, src, cfg.Level)
	if err != nil {
		return nil, knerr.New(knerr.Config, "compress.Compress", err)
	}
	return out, nil
}

// Decompress dispatches to the algorithm named by idx, which travelled
// in the packet header and may differ from the handle's own selection
// (spec.md §4.2: "Ingress must tolerate a mix of compressed and
// uncompressed packets on the same link").
func Decompress(idx Algo, dst, src []byte) ([]byte, error) {
	if int(idx) >= maxAlgorithms {
		return nil, knerr.New(knerr.Framing, "compress.Decompress", fmt.Errorf("algorithm index %d out of range", idx))
	}
	reg := registry[idx]
	if reg.codec == nil {
		return nil, knerr.New(knerr.Framing, "compress.Decompress", fmt.Errorf("unrecognized algorithm index %d", idx))
	}
	out, err := reg.codec.Decompress(dst, src)
	if err != nil {
		return nil, knerr.New(knerr.Framing, "compress.Decompress", err)
	}
	return out, nil
}
