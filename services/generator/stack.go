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

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// MonotonicStack computes the next greater element of every index with a
// stack of indices whose values decrease from bottom to top. SecondArray
// holds the answers, -1 where none exists.
func MonotonicStack(arr []int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	n := len(a)
	var t arrayTrace

	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	st := []int{}

	t.emit(a, "Monotonic Stack: Finding Next Greater Element (NGE) using a Decreasing Stack.",
		withResults(result), withStack(st), atLine(0))

	for i := range n {
		t.emit(a, fmt.Sprintf("Step %d: Processing element %d (index %d).", i, a[i], i),
			withResults(result), withStack(st), withMid(i), atLine(1))

		for len(st) > 0 {
			top := st[len(st)-1]
			t.emit(a, fmt.Sprintf("Compare Current (%d) vs Stack Top (%d). Is %d > %d?", a[i], a[top], a[i], a[top]),
				withResults(result), withStack(st), withMid(i), withCompare(i, top), atLine(2))

			if a[i] <= a[top] {
				t.emit(a, fmt.Sprintf("No. %d <= %d. Cannot pop. Pushing current.", a[i], a[top]),
					withResults(result), withStack(st), withMid(i), withCompare(i, top), atLine(2))
				break
			}

			result[top] = a[i]
			t.emit(a, fmt.Sprintf("Yes! %d > %d. %d is the NGE for index %d.", a[i], a[top], a[i], top),
				withResults(result), withStack(st), withMid(i), withOverwrite(top), atLine(3))

			st = st[:len(st)-1]
			t.emit(a, fmt.Sprintf("Popped index %d. Checking next stack top...", top),
				withResults(result), withStack(st), withMid(i), atLine(4))
		}

		st = append(st, i)
		t.emit(a, fmt.Sprintf("Pushed index %d (%d) onto the stack.", i, a[i]),
			withResults(result), withStack(st), withMid(i), atLine(5))
	}

	t.emit(a, "Finished processing. Remaining items in stack have no Next Greater Element.",
		withResults(result), withStack(st), atLine(6))
	return t.frames
}
