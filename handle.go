// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package knet

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/knotted/knet/internal/compress"
	"github.com/knotted/knet/internal/dedup"
	"github.com/knotted/knet/internal/frame"
	"github.com/knotted/knet/internal/host"
	"github.com/knotted/knet/internal/knerr"
	"github.com/knotted/knet/internal/link"
	"github.com/knotted/knet/internal/metrics"
)

// LogLevel is knet's own small severity enum, mapped internally onto
// zap's so the public API does not force a logging library choice on
// embedders.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogDebug:
		return zapcore.DebugLevel
	case LogWarn:
		return zapcore.WarnLevel
	case LogError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// OpenFlags tunes Open's behavior. Reserved for future use; zero value
// is the default.
type OpenFlags uint32

// Config bundles the compression/threshold/heartbeat knobs an
// embedder may set at Open time. All fields are optional; the zero
// value selects knet's own defaults.
type Config struct {
	Compress      *compress.Config
	MaxPacketSize int
	Link          link.Config
}

// Handle is the top-level per-node object: it owns the host table, the
// data-channel table, dispatcher goroutines, and the compression/filter
// configuration, per spec.md §4.6.
type Handle struct {
	NodeID HostID

	mu    sync.RWMutex // handle-wide config lock; hot-path readers, config writers
	hosts map[HostID]*host.Host

	channels   map[ChannelIndex]*dataChannel
	filter     Filter
	hostNotify HostStatusNotify
	linkNotify LinkStatusNotify

	compressCfg compress.Config
	maxPktSize  int
	linkCfg     link.Config

	forwarding atomic.Bool
	closed     atomic.Bool

	logger  *zap.Logger
	metrics *metrics.Set
	dedup   *dedup.Window
	clock   clock.Clock

	seqCounters [5]atomic.Uint32 // indexed by frame.Type

	txWake     chan struct{}
	rxCh       chan rxDatagram
	dstLinkCh  chan HostID
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	linkWG     sync.WaitGroup // per-link reader goroutines, joined after wg

	logFile *os.File
}

// Open constructs and starts a Handle for nodeID, logging at logLevel
// through logFD (which may be nil to discard logs). It creates the
// dispatcher goroutines described in spec.md §4.6 (TX, RX, HEARTBEAT,
// DST-LINK, LOG); callers must Close the handle once every link has
// been disabled.
func Open(nodeID HostID, logFD *os.File, logLevel LogLevel, _ OpenFlags, cfg Config) (*Handle, error) {
	logger, err := newLogger(logFD, logLevel)
	if err != nil {
		return nil, knerr.New(knerr.Resource, "knet.Open", err)
	}

	maxPkt := cfg.MaxPacketSize
	if maxPkt == 0 {
		maxPkt = frame.MaxPacketSize
	}
	compressCfg, err := compress.Init(cfg.Compress, maxPkt)
	if err != nil {
		return nil, err
	}

	linkCfg := cfg.Link
	if linkCfg.PingInterval == 0 {
		linkCfg = link.DefaultConfig()
	}

	window, err := dedup.New(dedup.MinCapacity)
	if err != nil {
		return nil, knerr.New(knerr.Resource, "knet.Open", err)
	}

	h := &Handle{
		NodeID:      nodeID,
		hosts:       make(map[HostID]*host.Host),
		channels:    make(map[ChannelIndex]*dataChannel),
		compressCfg: compressCfg,
		maxPktSize:  maxPkt,
		linkCfg:     linkCfg,
		logger:      logger,
		metrics:     metrics.New(uint16(nodeID)),
		dedup:       window,
		clock:       clock.New(),
		txWake:      make(chan struct{}, 1),
		rxCh:        make(chan rxDatagram, 256),
		dstLinkCh:   make(chan HostID, 64),
		shutdownCh:  make(chan struct{}),
		logFile:     logFD,
	}

	h.wg.Add(5)
	go h.runTX()
	go h.runRX()
	go h.runHeartbeat()
	go h.runDstLink()
	go h.runLog()

	h.logger.Info("handle opened", zap.Uint16("node_id", uint16(nodeID)))
	return h, nil
}

// Close tears the handle down: it clears the forwarding flag, signals
// all five dispatcher goroutines to stop at once and waits until every
// one has returned (no join order among them is imposed; TX empties the
// channel queues without sending, as forwarding is already off), then
// clears every link and removes every host. It requires every link to
// already be disabled (spec.md §4.6). A second call returns a state
// error.
func (h *Handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return knerr.New(knerr.State, "knet.Close", fmt.Errorf("already closed"))
	}

	h.forwarding.Store(false)

	h.mu.RLock()
	for id, ho := range h.hosts {
		for _, l := range ho.Links() {
			if l.Enabled() {
				h.mu.RUnlock()
				return knerr.New(knerr.State, "knet.Close",
					fmt.Errorf("host %d link %d still enabled", id, l.Slot))
			}
		}
	}
	h.mu.RUnlock()

	close(h.shutdownCh)
	h.wg.Wait()     // TX, RX, HEARTBEAT, DST-LINK, LOG all select{} on shutdownCh; waits for every one
	h.linkWG.Wait() // per-link readers notice shutdownCh within one read-deadline tick

	h.mu.Lock()
	var errs *multierror.Error
	for id, ho := range h.hosts {
		for _, l := range ho.Links() {
			if err := l.ClearConfig(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		delete(h.hosts, id)
	}
	h.mu.Unlock()

	compress.Fini()
	return errs.ErrorOrNil()
}

// SetForwarding gates TX and application-ingress delivery without
// tearing down links: pings still flow while forwarding is disabled,
// so links stay warm (spec.md §4.6). Repeated identical calls are a
// no-op.
func (h *Handle) SetForwarding(on bool) {
	h.forwarding.Store(on)
}

// Forwarding reports the current forwarding flag.
func (h *Handle) Forwarding() bool { return h.forwarding.Load() }

// MetricsHandler returns an http.Handler serving this handle's
// Prometheus metrics, for an embedding application to mount on its own
// mux (spec.md §1's no-RPC-surface non-goal keeps the core itself from
// starting a listener).
func (h *Handle) MetricsHandler() http.Handler { return h.metrics.Handler() }

// InstallFilter installs the packet filter callback. A nil filter
// drops every packet on egress.
func (h *Handle) InstallFilter(f Filter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filter = f
}

// InstallHostStatusNotify installs the host reachability callback.
func (h *Handle) InstallHostStatusNotify(f HostStatusNotify) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hostNotify = f
}

// InstallSocketNotify installs the per-link connect/disconnect callback.
func (h *Handle) InstallSocketNotify(f LinkStatusNotify) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.linkNotify = f
}

func (h *Handle) nextSeq(t frame.Type) uint32 {
	idx := int(t)
	if idx < 0 || idx >= len(h.seqCounters) {
		idx = 0
	}
	return h.seqCounters[idx].Add(1)
}

func newLogger(fd *os.File, level LogLevel) (*zap.Logger, error) {
	if fd == nil {
		return zap.NewNop(), nil
	}
	enc := zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(fd), level.zapLevel())
	return zap.New(core), nil
}
