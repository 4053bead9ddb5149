// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// RandomIntervals draws n intervals with a start in [0, 20) and a length in
// [2, 10).
func RandomIntervals(rng *rand.Rand, n int) []frames.Interval {
	out := make([]frames.Interval, 0, max(n, 0))
	for i := range n {
		start := rng.IntN(20)
		out = append(out, frames.Interval{ID: i, Start: start, End: start + rng.IntN(8) + 2})
	}
	return out
}

// IntervalScheduling selects a maximum set of non-overlapping intervals
// greedily: sort by end time (stable), then accept an interval iff it
// starts at or after the end of the last accepted one.
func IntervalScheduling(intervals []frames.Interval) []*frames.IntervalFrame {
	work := slices.Clone(intervals)
	for i := range work {
		work[i].IsSelected, work[i].IsConsidered, work[i].IsEliminated = false, false, false
	}

	var out []*frames.IntervalFrame
	var lastSelected *int
	emit := func(desc string, codeLine int, current *int) {
		f := &frames.IntervalFrame{
			Intervals:      work,
			CurrentID:      current,
			LastSelectedID: lastSelected,
			Step:           frames.Step{Description: desc, CodeLine: frames.Int(codeLine)},
		}
		snap := f.Clone().(*frames.IntervalFrame)
		if snap.Intervals == nil {
			snap.Intervals = []frames.Interval{}
		}
		out = append(out, snap)
	}

	emit("Initial set of intervals. Goal: Select maximum non-overlapping intervals.", 0, nil)

	slices.SortStableFunc(work, func(a, b frames.Interval) int { return a.End - b.End })
	emit("Greedy Strategy: Sort intervals by their Finish Time (earliest finish first).", 1, nil)

	lastEnd := 0
	hasLast := false
	for i := range work {
		cur := &work[i]
		id := frames.Int(cur.ID)
		cur.IsConsidered = true
		emit(fmt.Sprintf("Considering Interval %d (Ends at %d).", cur.ID, cur.End), 2, id)

		cur.IsConsidered = false
		if !hasLast || cur.Start >= lastEnd {
			cur.IsSelected = true
			lastEnd, hasLast = cur.End, true
			lastSelected = frames.Int(cur.ID)
			emit(fmt.Sprintf("Interval %d starts after previous selection ends. Selected.", cur.ID), 3, id)
		} else {
			cur.IsEliminated = true
			emit(fmt.Sprintf("Interval %d overlaps. Eliminated.", cur.ID), 4, id)
		}
	}

	emit("Interval Scheduling Complete. Optimal set selected.", 5, nil)
	return out
}
