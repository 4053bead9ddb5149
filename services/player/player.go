// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package player drives presentation of a generated frame sequence.
//
// # Description
//
// A Player holds a frame sequence, the current index, the play state and
// the playback speed. Timed playback advances one frame per tick and
// pauses itself at the last frame. Manual stepping always pauses first, so
// timed and manual control never interleave.
//
// # Invariants
//
//   - At most one playback timer is scheduled at any time.
//   - 0 <= index < len(frames), or the sequence is empty and index is 0.
//   - A timer callback from an earlier play session never moves the index.
//     Each Play, Pause and Load bumps a generation counter and callbacks
//     carry the generation they were scheduled under.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Observers are invoked without
// the internal lock held, so they may call back into the Player.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// Playback speed bounds. The speed is the delay between two ticks.
const (
	DefaultSpeed = 500 * time.Millisecond
	MinSpeed     = 50 * time.Millisecond
	MaxSpeed     = 1000 * time.Millisecond
)

// ErrIndexOutOfRange is returned by Seek for an index outside the sequence.
var ErrIndexOutOfRange = errors.New("index out of range")

// EventKind tells observers what changed.
type EventKind int

const (
	// EventFrame fires on every index change and when a non-empty sequence
	// is loaded.
	EventFrame EventKind = iota + 1

	// EventState fires when playback starts or stops without the index
	// moving, e.g. the auto-pause at the last frame.
	EventState
)

// Event is delivered to observers.
type Event struct {
	Kind  EventKind
	Index int
	Frame frames.Frame
	State State
}

// Observer receives player events.
type Observer func(Event)

// State is a snapshot of the player.
type State struct {
	Index   int           `json:"index"`
	Len     int           `json:"len"`
	Playing bool          `json:"playing"`
	Speed   time.Duration `json:"speed"`
}

// AtEnd reports whether the index is on the last frame.
func (s State) AtEnd() bool { return s.Len == 0 || s.Index == s.Len-1 }

// Options configures New. Zero values select defaults.
type Options struct {
	Speed  time.Duration
	Clock  Clock
	Logger *slog.Logger
}

// Player is the playback controller. Construct with New.
type Player struct {
	mu      sync.Mutex
	frames  []frames.Frame
	index   int
	playing bool
	speed   time.Duration
	timer   Timer
	gen     uint64

	clock  Clock
	logger *slog.Logger

	observers map[int]Observer
	nextObsID int
}

// New creates an empty, paused Player.
func New(opts Options) *Player {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}
	return &Player{
		speed:     clampSpeed(opts.Speed),
		clock:     opts.Clock,
		logger:    opts.Logger.With("component", "player"),
		observers: make(map[int]Observer),
	}
}

func clampSpeed(d time.Duration) time.Duration {
	return min(max(d, MinSpeed), MaxSpeed)
}

// Subscribe registers fn and returns a function that removes it.
func (p *Player) Subscribe(fn Observer) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextObsID
	p.nextObsID++
	p.observers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.observers, id)
	}
}

// Load replaces the sequence, stops playback and rewinds to index 0.
func (p *Player) Load(fs []frames.Frame) {
	p.mu.Lock()
	p.stopLocked()
	p.frames = slices.Clone(fs)
	p.index = 0
	p.logger.Debug("sequence loaded", "frames", len(fs))
	var evs []Event
	if len(p.frames) > 0 {
		evs = append(evs, p.eventLocked(EventFrame))
	}
	p.dispatch(evs)
}

// Play starts timed playback. Calling Play while playing restarts the
// timer; there is never more than one. Play on an empty sequence is a
// no-op.
func (p *Player) Play() {
	p.mu.Lock()
	if len(p.frames) == 0 {
		p.mu.Unlock()
		return
	}
	wasPlaying := p.playing
	p.stopLocked()
	p.playing = true
	p.scheduleLocked()
	var evs []Event
	if !wasPlaying {
		p.logger.Debug("playback started", "index", p.index, "speed", p.speed)
		evs = append(evs, p.eventLocked(EventState))
	}
	p.dispatch(evs)
}

// Pause stops timed playback.
func (p *Player) Pause() {
	p.mu.Lock()
	wasPlaying := p.playing
	p.stopLocked()
	var evs []Event
	if wasPlaying {
		p.logger.Debug("playback paused", "index", p.index)
		evs = append(evs, p.eventLocked(EventState))
	}
	p.dispatch(evs)
}

// Toggle pauses when playing and plays otherwise.
func (p *Player) Toggle() {
	if p.State().Playing {
		p.Pause()
		return
	}
	p.Play()
}

// StepForward pauses and moves one frame ahead, stopping at the last frame.
func (p *Player) StepForward() { p.step(1) }

// StepBack pauses and moves one frame back, stopping at the first frame.
func (p *Player) StepBack() { p.step(-1) }

func (p *Player) step(delta int) {
	p.mu.Lock()
	wasPlaying := p.playing
	p.stopLocked()
	var evs []Event
	if len(p.frames) > 0 {
		next := min(max(p.index+delta, 0), len(p.frames)-1)
		if next != p.index {
			p.index = next
			evs = append(evs, p.eventLocked(EventFrame))
		} else if wasPlaying {
			evs = append(evs, p.eventLocked(EventState))
		}
	}
	p.dispatch(evs)
}

// Seek jumps to index i without changing the play state.
//
// # Outputs
//
//   - error: ErrIndexOutOfRange (wrapped) when i is outside [0, len).
func (p *Player) Seek(i int) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.frames) {
		n := len(p.frames)
		p.mu.Unlock()
		return fmt.Errorf("seek %d of %d: %w", i, n, ErrIndexOutOfRange)
	}
	var evs []Event
	if i != p.index {
		p.index = i
		evs = append(evs, p.eventLocked(EventFrame))
	}
	p.dispatch(evs)
	return nil
}

// Reset pauses and rewinds to the first frame.
func (p *Player) Reset() {
	p.mu.Lock()
	wasPlaying := p.playing
	p.stopLocked()
	var evs []Event
	switch {
	case p.index != 0:
		p.index = 0
		evs = append(evs, p.eventLocked(EventFrame))
	case wasPlaying:
		evs = append(evs, p.eventLocked(EventState))
	}
	p.dispatch(evs)
}

// SetSpeed changes the delay for ticks scheduled from now on. A tick that
// is already scheduled keeps its delay. The value is clamped to
// [MinSpeed, MaxSpeed].
func (p *Player) SetSpeed(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = clampSpeed(d)
}

// State returns a snapshot.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// Current returns the active frame, or nil for an empty sequence.
func (p *Player) Current() frames.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frames) == 0 {
		return nil
	}
	return p.frames[p.index]
}

// Frames returns the loaded sequence.
func (p *Player) Frames() []frames.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.frames)
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || !p.playing {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	var evs []Event
	if p.index >= len(p.frames)-1 {
		p.playing = false
		p.gen++
		p.logger.Debug("playback reached the end", "index", p.index)
		evs = append(evs, p.eventLocked(EventState))
	} else {
		p.index++
		p.scheduleLocked()
		evs = append(evs, p.eventLocked(EventFrame))
	}
	p.dispatch(evs)
}

// scheduleLocked arms the single playback timer. p.mu must be held.
func (p *Player) scheduleLocked() {
	gen := p.gen
	p.timer = p.clock.AfterFunc(p.speed, func() { p.tick(gen) })
}

// stopLocked cancels the timer and invalidates any in-flight callback.
// p.mu must be held.
func (p *Player) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.playing = false
	p.gen++
}

func (p *Player) stateLocked() State {
	return State{Index: p.index, Len: len(p.frames), Playing: p.playing, Speed: p.speed}
}

func (p *Player) eventLocked(kind EventKind) Event {
	ev := Event{Kind: kind, Index: p.index, State: p.stateLocked()}
	if len(p.frames) > 0 {
		ev.Frame = p.frames[p.index]
	}
	return ev
}

// dispatch releases p.mu and delivers evs to a snapshot of the observers.
func (p *Player) dispatch(evs []Event) {
	var obs []Observer
	if len(evs) > 0 {
		ids := make([]int, 0, len(p.observers))
		for id := range p.observers {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			obs = append(obs, p.observers[id])
		}
	}
	p.mu.Unlock()
	for _, ev := range evs {
		for _, fn := range obs {
			fn(ev)
		}
	}
}
