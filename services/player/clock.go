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
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or is running.
	Stop() bool
}

// Clock schedules callbacks. RealClock uses the runtime timer; tests supply
// a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules with time.AfterFunc.
type RealClock struct{}

// AfterFunc implements Clock.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a Clock driven by Advance. It is exported for tests of
// packages that embed a Player.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTimer

	// LeakyStop makes Stop report success without removing the timer, which
	// reproduces a callback that was already dispatched when it was stopped.
	LeakyStop bool
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

// NewManualClock returns a clock at time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc implements Clock.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	if !t.clock.LeakyStop {
		t.stopped = true
	}
	return true
}

// Advance moves the clock forward by d and runs every due callback in
// deadline order. Callbacks run without the clock lock held, so they may
// schedule further timers; those fire too when they fall within d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := -1
		for i, t := range c.pending {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next < 0 || t.at < c.pending[next].at {
				next = i
			}
		}
		if next < 0 {
			c.now = target
			c.compact()
			c.mu.Unlock()
			return
		}
		t := c.pending[next]
		t.fired = true
		c.now = t.at
		c.mu.Unlock()
		t.f()
	}
}

// Active counts timers that are scheduled and not stopped.
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *ManualClock) compact() {
	kept := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped && !t.fired {
			kept = append(kept, t)
		}
	}
	c.pending = kept
}
