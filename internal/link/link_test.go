// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

package link

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knotted/knet/internal/transport"
)

func newTestLink(t *testing.T, mc *clock.Mock) *Link {
	t.Helper()
	a, _ := transport.NewMemPair("a", "b")
	cfg := Config{PingInterval: time.Second, DeadTimeout: 5 * time.Second, MaxMissedPongs: 3}
	return New(0, a, nil, nil, mc, cfg)
}

func TestDisabledToProbingOnEnable(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	assert.Equal(t, Disabled, l.State())

	transitioned := l.SetEnable(true)
	assert.True(t, transitioned)
	assert.Equal(t, Probing, l.State())
}

func TestSetEnableFalseIsNoOpWhenAlreadyDisabled(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	assert.False(t, l.SetEnable(false))
}

func TestProbingToConnectedOnFirstPong(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)

	seq := l.NextPingSeq()
	became, isFirst := l.RecordPong(seq, 5*time.Millisecond)
	assert.True(t, became)
	assert.True(t, isFirst)
	assert.Equal(t, Connected, l.State())
}

func TestDuplicatePongIsStatsOnly(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)

	seq := l.NextPingSeq()
	l.RecordPong(seq, time.Millisecond)
	became, isFirst := l.RecordPong(seq, time.Millisecond)
	assert.False(t, became)
	assert.False(t, isFirst)
	assert.EqualValues(t, 2, l.PongCount())
}

func TestConnectedDropsToProbingOnMissedPongs(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)
	seq := l.NextPingSeq()
	l.RecordPong(seq, time.Millisecond)
	require.Equal(t, Connected, l.State())

	for i := 0; i < 5; i++ {
		l.NextPingSeq()
		mc.Add(2 * time.Second)
		l.RecordRx() // other traffic keeps the idle timer fresh; only pongs are missing
		l.CheckHealth()
	}
	assert.Equal(t, Probing, l.State())
}

func TestConnectedDropsToProbingOnDeadTimeout(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)
	seq := l.NextPingSeq()
	l.RecordPong(seq, time.Millisecond)
	require.Equal(t, Connected, l.State())

	mc.Add(10 * time.Second)
	dropped := l.CheckHealth()
	assert.True(t, dropped)
	assert.Equal(t, Probing, l.State())
}

func TestSetEnableFalseFromConnectedGoesToDisabled(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)
	seq := l.NextPingSeq()
	l.RecordPong(seq, time.Millisecond)
	require.Equal(t, Connected, l.State())

	l.SetEnable(false)
	assert.Equal(t, Disabled, l.State())
}

func TestClearConfigRequiresDisabled(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)
	assert.Error(t, l.ClearConfig())

	l.SetEnable(false)
	assert.NoError(t, l.ClearConfig())
}

func TestRTTSmoothing(t *testing.T) {
	mc := clock.NewMock()
	l := newTestLink(t, mc)
	l.SetEnable(true)
	seq := l.NextPingSeq()
	l.RecordPong(seq, 100*time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, l.RTT())

	seq = l.NextPingSeq()
	l.RecordPong(seq, 200*time.Millisecond)
	assert.Greater(t, l.RTT(), 100*time.Millisecond)
	assert.Less(t, l.RTT(), 200*time.Millisecond)
}
