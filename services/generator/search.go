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

// LinearSearch scans arr left to right for target.
func LinearSearch(arr []int, target int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	var t arrayTrace

	t.emit(a, fmt.Sprintf("Starting Linear Search for target %d.", target), atLine(0))
	for i, v := range a {
		t.emit(a, fmt.Sprintf("Checking index %d (Value: %d).", i, v), withMid(i), atLine(1))
		if v == target {
			t.emit(a, fmt.Sprintf("Found target %d at index %d!", target, i),
				withMid(i), withFound(i), atLine(2))
			return t.frames
		}
	}
	t.emit(a, fmt.Sprintf("Target %d not found in the array.", target), withFound(-1), atLine(3))
	return t.frames
}

// BinarySearch searches a sorted arr for target. Every iteration shows the
// loop check, the midpoint, the comparison and the bound update as separate
// frames. The not-found frame has FoundIndex -1 and Left > Right.
func BinarySearch(arr []int, target int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	var t arrayTrace
	lo, hi := 0, len(a)-1

	t.emit(a, fmt.Sprintf("Starting Binary Search for target %d. Range: [%d, %d].", target, lo, hi),
		withLeft(lo), withRight(hi), atLine(0))

	for lo <= hi {
		t.emit(a, fmt.Sprintf("Check loop condition: %d <= %d.", lo, hi),
			withLeft(lo), withRight(hi), atLine(1))

		m := (lo + hi) / 2
		t.emit(a, fmt.Sprintf("Checking middle element at index %d (Value: %d).", m, a[m]),
			withLeft(lo), withRight(hi), withMid(m), atLine(2))

		if a[m] == target {
			t.emit(a, fmt.Sprintf("Found target %d at index %d!", target, m),
				withLeft(lo), withRight(hi), withMid(m), withFound(m), atLine(3))
			return t.frames
		}

		if a[m] < target {
			t.emit(a, fmt.Sprintf("%d is less than %d.", a[m], target),
				withLeft(lo), withRight(hi), withMid(m), atLine(4))
			lo = m + 1
			t.emit(a, fmt.Sprintf("Moving left bound to %d.", lo),
				withLeft(lo), withRight(hi), withMid(m), atLine(5))
		} else {
			t.emit(a, fmt.Sprintf("%d is greater than %d.", a[m], target),
				withLeft(lo), withRight(hi), withMid(m), atLine(6))
			hi = m - 1
			t.emit(a, fmt.Sprintf("Moving right bound to %d.", hi),
				withLeft(lo), withRight(hi), withMid(m), atLine(7))
		}
	}

	t.emit(a, fmt.Sprintf("Target %d not found in the array.", target),
		withLeft(lo), withRight(hi), withFound(-1), atLine(8))
	return t.frames
}

// TwoPointers looks for a pair in a sorted arr summing to target, moving the
// outer pointers inward. A found pair is marked by FoundIndex (left) and Mid
// (right).
func TwoPointers(arr []int, target int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	var t arrayTrace
	lo, hi := 0, len(a)-1

	t.emit(a, fmt.Sprintf("Starting Two Pointers search for pair summing to %d. Sorted array required.", target),
		withLeft(lo), withRight(hi), atLine(0))

	for lo < hi {
		t.emit(a, fmt.Sprintf("Loop condition %d < %d is true.", lo, hi),
			withLeft(lo), withRight(hi), atLine(1))

		sum := a[lo] + a[hi]
		t.emit(a, fmt.Sprintf("Checking sum of %d + %d = %d. Target is %d.", a[lo], a[hi], sum, target),
			withLeft(lo), withRight(hi), withCompare(lo, hi), atLine(2))

		switch {
		case sum == target:
			t.emit(a, fmt.Sprintf("Found pair! %d + %d = %d.", a[lo], a[hi], target),
				withLeft(lo), withRight(hi), withFound(lo), withMid(hi), atLine(3))
			return t.frames
		case sum < target:
			t.emit(a, fmt.Sprintf("Sum %d is too small.", sum), withLeft(lo), withRight(hi), atLine(4))
			lo++
			t.emit(a, fmt.Sprintf("Moving left pointer to index %d to increase sum.", lo),
				withLeft(lo), withRight(hi), atLine(4))
		default:
			t.emit(a, fmt.Sprintf("Sum %d is too large.", sum), withLeft(lo), withRight(hi), atLine(5))
			hi--
			t.emit(a, fmt.Sprintf("Moving right pointer to index %d to decrease sum.", hi),
				withLeft(lo), withRight(hi), atLine(5))
		}
	}

	t.emit(a, "No pair found summing to target.", withFound(-1), atLine(6))
	return t.frames
}

// SlidingWindow finds the shortest contiguous subarray whose sum is at least
// target, for non-negative arr.
//
// While a window is valid, FoundIndex marks its start only when it is
// strictly shorter than every valid window seen before, so ties keep the
// leftmost window. The terminal frame spans the best window with Left/Right
// and FoundIndex, or carries FoundIndex -1 when no window qualifies.
func SlidingWindow(arr []int, target int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	var t arrayTrace
	lo, sum := 0, 0
	bestLen, bestStart := 0, -1

	t.emit(a, fmt.Sprintf("Find Minimum Size Subarray with Sum >= %d. Initializing window.", target), atLine(0))

	for hi := range a {
		sum += a[hi]
		t.emit(a, fmt.Sprintf("Expanded window right to index %d. Current Sum: %d.", hi, sum),
			withLeft(lo), withRight(hi), withWindowSum(sum), atLine(1))

		for sum >= target && lo <= hi {
			size := hi - lo + 1
			opts := []arrayOpt{withLeft(lo), withRight(hi), withWindowSum(sum), atLine(2)}
			if bestStart < 0 || size < bestLen {
				bestLen, bestStart = size, lo
				opts = append(opts, withFound(lo))
			}
			t.emit(a, fmt.Sprintf("Sum %d >= %d. Valid window! Length: %d. Trying to shrink from left.", sum, target, size),
				opts...)

			sum -= a[lo]
			lo++
			t.emit(a, fmt.Sprintf("Shrunk window. New Sum: %d.", sum),
				withLeft(lo), withRight(hi), withWindowSum(sum), atLine(3))
		}
	}

	if bestStart < 0 {
		t.emit(a, "No subarray found.", withFound(-1), atLine(4))
		return t.frames
	}
	t.emit(a, fmt.Sprintf("Finished. Minimum length found was %d.", bestLen),
		withLeft(bestStart), withRight(bestStart+bestLen-1), withFound(bestStart), atLine(4))
	return t.frames
}
