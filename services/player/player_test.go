// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package player

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

const tick = 100 * time.Millisecond

func seq(n int) []frames.Frame {
	out := make([]frames.Frame, n)
	for i := range out {
		out[i] = &frames.ArrayFrame{Array: []int{i}, Step: frames.Step{Description: fmt.Sprintf("step %d", i)}}
	}
	return out
}

type recorder struct {
	mu  sync.Mutex
	evs []Event
}

func (r *recorder) observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, e)
}

func (r *recorder) frameIndices() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int{}
	for _, e := range r.evs {
		if e.Kind == EventFrame {
			out = append(out, e.Index)
		}
	}
	return out
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.evs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func newTestPlayer(t *testing.T, n int) (*Player, *ManualClock, *recorder) {
	t.Helper()
	clock := NewManualClock()
	p := New(Options{Speed: tick, Clock: clock})
	rec := &recorder{}
	p.Subscribe(rec.observe)
	p.Load(seq(n))
	return p, clock, rec
}

func TestLoad_NotifiesFirstFrame(t *testing.T) {
	p, _, rec := newTestPlayer(t, 3)
	assert.Equal(t, []int{0}, rec.frameIndices())
	assert.Equal(t, "step 0", p.Current().StepInfo().Description)
	assert.Equal(t, State{Index: 0, Len: 3, Playing: false, Speed: tick}, p.State())
}

func TestLoad_ResetsIndexAndStopsPlayback(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 4)
	require.NoError(t, p.Seek(2))
	p.Play()

	p.Load(seq(2))
	assert.Equal(t, 0, p.State().Index)
	assert.False(t, p.State().Playing)
	assert.Equal(t, 0, clock.Active())
}

func TestPlay_AdvancesOncePerTickAndAutoPauses(t *testing.T) {
	p, clock, rec := newTestPlayer(t, 3)
	p.Play()
	assert.True(t, p.State().Playing)

	clock.Advance(tick)
	assert.Equal(t, 1, p.State().Index)
	clock.Advance(tick)
	assert.Equal(t, 2, p.State().Index)
	assert.True(t, p.State().Playing)

	clock.Advance(tick)
	assert.False(t, p.State().Playing, "tick at the last frame pauses")
	assert.Equal(t, 2, p.State().Index)

	clock.Advance(10 * tick)
	assert.Equal(t, []int{0, 1, 2}, rec.frameIndices())
	assert.Equal(t, 0, clock.Active())
	// started + auto-paused
	assert.Equal(t, 2, rec.count(EventState))
}

func TestPlay_TwiceKeepsSingleTimer(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 5)
	p.Play()
	p.Play()
	assert.Equal(t, 1, clock.Active())

	clock.Advance(tick)
	assert.Equal(t, 1, p.State().Index, "one advance per interval")
	assert.Equal(t, 1, clock.Active())
}

func TestPlay_EmptySequenceIsNoop(t *testing.T) {
	p := New(Options{Clock: NewManualClock()})
	p.Play()
	p.StepForward()
	p.StepBack()
	p.Reset()
	assert.False(t, p.State().Playing)
	assert.Nil(t, p.Current())
	assert.True(t, p.State().AtEnd())
}

func TestStep_PausesAndClamps(t *testing.T) {
	p, clock, rec := newTestPlayer(t, 3)
	p.Play()
	p.StepForward()
	assert.False(t, p.State().Playing)
	assert.Equal(t, 0, clock.Active())
	assert.Equal(t, 1, p.State().Index)

	p.StepBack()
	p.StepBack()
	assert.Equal(t, 0, p.State().Index)
	assert.Equal(t, []int{0, 1, 0}, rec.frameIndices())

	for range 5 {
		p.StepForward()
	}
	assert.Equal(t, 2, p.State().Index)
	assert.Equal(t, []int{0, 1, 0, 1, 2}, rec.frameIndices())
}

func TestSeekThenStepVisitsEveryIndexOnce(t *testing.T) {
	p, _, rec := newTestPlayer(t, 6)
	require.NoError(t, p.Seek(4))
	require.NoError(t, p.Seek(0))
	for range 10 {
		p.StepForward()
	}
	got := rec.frameIndices()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got[len(got)-6:])
}

func TestSeek_OutOfRange(t *testing.T) {
	p, _, _ := newTestPlayer(t, 2)
	assert.ErrorIs(t, p.Seek(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.Seek(-1), ErrIndexOutOfRange)
	assert.Equal(t, 0, p.State().Index)
}

func TestSeek_KeepsPlaying(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 5)
	p.Play()
	require.NoError(t, p.Seek(3))
	assert.True(t, p.State().Playing)
	clock.Advance(tick)
	assert.Equal(t, 4, p.State().Index)
}

func TestReset_PausesAndRewinds(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 4)
	p.Play()
	clock.Advance(2 * tick)
	require.Equal(t, 2, p.State().Index)

	p.Reset()
	assert.Equal(t, 0, p.State().Index)
	assert.False(t, p.State().Playing)
	assert.Equal(t, 0, clock.Active())
}

func TestSetSpeed_AffectsLaterTicksOnly(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 4)
	p.Play()
	p.SetSpeed(3 * tick)

	clock.Advance(tick)
	assert.Equal(t, 1, p.State().Index, "in-flight tick keeps its delay")
	clock.Advance(tick)
	assert.Equal(t, 1, p.State().Index)
	clock.Advance(2 * tick)
	assert.Equal(t, 2, p.State().Index)
}

func TestSetSpeed_Clamped(t *testing.T) {
	p := New(Options{Clock: NewManualClock()})
	assert.Equal(t, DefaultSpeed, p.State().Speed)
	p.SetSpeed(time.Millisecond)
	assert.Equal(t, MinSpeed, p.State().Speed)
	p.SetSpeed(time.Hour)
	assert.Equal(t, MaxSpeed, p.State().Speed)
}

func TestStaleTimerCallbackIsIgnored(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 5)
	clock.LeakyStop = true

	p.Play()
	p.Pause()
	clock.Advance(tick)
	assert.Equal(t, 0, p.State().Index)

	p.Play()
	p.Pause()
	p.Play()
	clock.Advance(tick)
	assert.Equal(t, 1, p.State().Index, "only the live timer advances")
}

func TestToggle(t *testing.T) {
	p, _, _ := newTestPlayer(t, 2)
	p.Toggle()
	assert.True(t, p.State().Playing)
	p.Toggle()
	assert.False(t, p.State().Playing)
}

func TestUnsubscribe(t *testing.T) {
	p, _, rec := newTestPlayer(t, 3)
	other := &recorder{}
	stop := p.Subscribe(other.observe)
	p.StepForward()
	stop()
	p.StepForward()
	assert.Equal(t, []int{1}, other.frameIndices())
	assert.Equal(t, []int{0, 1, 2}, rec.frameIndices())
}

func TestObserverMayCallBack(t *testing.T) {
	p, clock, _ := newTestPlayer(t, 3)
	var seen []State
	p.Subscribe(func(e Event) {
		seen = append(seen, p.State())
		if e.Kind == EventFrame && e.Index == 1 {
			p.Pause()
		}
	})
	p.Play()
	clock.Advance(5 * tick)
	assert.Equal(t, 1, p.State().Index)
	assert.False(t, p.State().Playing)
	assert.NotEmpty(t, seen)
}

func TestRealClock(t *testing.T) {
	p := New(Options{Speed: MinSpeed})
	p.Load(seq(2))
	p.Play()
	require.Eventually(t, func() bool {
		s := p.State()
		return s.Index == 1 && !s.Playing
	}, 2*time.Second, 10*time.Millisecond)
}
