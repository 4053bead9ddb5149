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

// BubbleSort sorts a copy of arr by adjacent swaps. A pass without swaps
// ends the sort early with a frame marking every index sorted.
func BubbleSort(arr []int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	n := len(a)
	var t arrayTrace
	var done []int

	t.emit(a, "Starting Bubble Sort.", atLine(0))

	for i := 0; i < n-1; i++ {
		swapped := false
		t.emit(a, fmt.Sprintf("Starting pass %d.", i), withSorted(done), atLine(1))

		for j := 0; j < n-i-1; j++ {
			t.emit(a, fmt.Sprintf("Comparing %d and %d.", a[j], a[j+1]),
				withCompare(j, j+1), withSorted(done), atLine(3))

			if a[j] > a[j+1] {
				a[j], a[j+1] = a[j+1], a[j]
				swapped = true
				t.emit(a, fmt.Sprintf("Swapping %d and %d.", a[j+1], a[j]),
					withCompare(j, j+1), withSwap(j, j+1), withSorted(done), atLine(4))
				t.emit(a, "Set swapped = true.",
					withCompare(j, j+1), withSorted(done), atLine(5))
			}
		}

		done = append(done, n-1-i)
		t.emit(a, fmt.Sprintf("Element %d is now in its sorted position.", a[n-1-i]),
			withSorted(done), atLine(6))

		if !swapped {
			t.emit(a, "No swaps in this pass. Array is fully sorted!", withSorted(indices(n)), atLine(6))
			return t.frames
		}
	}

	t.emit(a, "Bubble Sort Complete.", withSorted(indices(n)))
	return t.frames
}

// SelectionSort sorts a copy of arr by repeatedly selecting the minimum of
// the unsorted suffix.
func SelectionSort(arr []int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	n := len(a)
	var t arrayTrace
	var done []int

	t.emit(a, "Starting Selection Sort.", atLine(0))

	for i := range n {
		minIdx := i
		t.emit(a, fmt.Sprintf("Finding minimum element starting from index %d.", i),
			withSorted(done), withMid(i), atLine(1))

		for j := i + 1; j < n; j++ {
			t.emit(a, fmt.Sprintf("Comparing current minimum (%d) with %d.", a[minIdx], a[j]),
				withCompare(minIdx, j), withSorted(done), atLine(3))
			if a[j] < a[minIdx] {
				minIdx = j
				t.emit(a, fmt.Sprintf("Found new minimum: %d at index %d.", a[j], j),
					withCompare(j), withSorted(done), atLine(4))
			}
		}

		if minIdx != i {
			a[i], a[minIdx] = a[minIdx], a[i]
			t.emit(a, fmt.Sprintf("Swapping %d (min) into index %d.", a[i], i),
				withSwap(i, minIdx), withSorted(done), atLine(6))
		}

		done = append(done, i)
		t.emit(a, fmt.Sprintf("%d is now sorted.", a[i]), withSorted(done))
	}

	if n == 0 {
		t.emit(a, "Selection Sort Complete. Nothing to sort.", withSorted(nil))
	}
	return t.frames
}

// InsertionSort sorts a copy of arr by shifting each key left into the
// sorted prefix. Index 0 counts as sorted from the first frame.
func InsertionSort(arr []int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	n := len(a)
	var t arrayTrace

	t.emit(a, "Starting Insertion Sort. Index 0 is considered sorted.",
		withSorted(indices(min(1, n))), atLine(0))

	for i := 1; i < n; i++ {
		key := a[i]
		j := i - 1
		prefix := indices(i)

		t.emit(a, fmt.Sprintf("Taking %d (index %d) to insert into sorted portion.", key, i),
			withMid(i), withSorted(prefix), atLine(1))

		for j >= 0 && a[j] > key {
			t.emit(a, fmt.Sprintf("%d > %d, shifting %d to the right.", a[j], key, a[j]),
				withCompare(j, j+1), withSorted(prefix), atLine(2))

			a[j+1] = a[j]
			t.emit(a, fmt.Sprintf("Moved %d to index %d.", a[j], j+1),
				withSwap(j+1), withSorted(prefix), atLine(3))

			j--
			t.emit(a, fmt.Sprintf("Decrementing j to %d.", j),
				withSwap(j+1), withSorted(prefix), atLine(4))
		}

		a[j+1] = key
		t.emit(a, fmt.Sprintf("Inserted %d at index %d.", key, j+1),
			withSwap(j+1), withSorted(indices(i+1)), atLine(5))
	}

	t.emit(a, "Insertion Sort Complete.", withSorted(indices(n)))
	return t.frames
}

// MergeSort sorts a copy of arr top-down. Frames record each split, each
// base case, and during a merge each comparison and each write
// (OverwriteIndex). Equal keys are taken from the left run first.
func MergeSort(arr []int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	var t arrayTrace

	merge := func(start, m, end int) {
		l := cloneInts(a[start : m+1])
		r := cloneInts(a[m+1 : end+1])
		i, j, k := 0, 0, start

		// place writes v at k and shifts the unconsumed runs in behind it,
		// so every frame holds a permutation of the input.
		place := func(v int, desc string) {
			a[k] = v
			written := k
			k++
			copy(a[k:], l[i:])
			copy(a[k+len(l)-i:], r[j:])
			t.emit(a, desc, withOverwrite(written), withLeft(start), withRight(end), atLine(4))
		}

		t.emit(a, fmt.Sprintf("Merging subarrays: [%d-%d] and [%d-%d].", start, m, m+1, end),
			withLeft(start), withRight(end), atLine(4))

		for i < len(l) && j < len(r) {
			t.emit(a, fmt.Sprintf("Comparing %d (left subarray) and %d (right subarray).", l[i], r[j]),
				withCompare(k, k+len(l)-i), withLeft(start), withRight(end), atLine(4))
			if l[i] <= r[j] {
				v := l[i]
				i++
				place(v, fmt.Sprintf("Placing %d at index %d.", v, k))
			} else {
				v := r[j]
				j++
				place(v, fmt.Sprintf("Placing %d at index %d.", v, k))
			}
		}
		for i < len(l) {
			v := l[i]
			i++
			place(v, fmt.Sprintf("Placing remaining %d at index %d.", v, k))
		}
		for j < len(r) {
			v := r[j]
			j++
			place(v, fmt.Sprintf("Placing remaining %d at index %d.", v, k))
		}
	}

	var sort func(start, end int)
	sort = func(start, end int) {
		if start >= end {
			t.emit(a, fmt.Sprintf("Base case: Range [%d-%d] has 1 element.", start, end),
				withLeft(start), withRight(end), atLine(1))
			return
		}
		m := (start + end) / 2
		t.emit(a, fmt.Sprintf("Split: [%d-%d] into [%d-%d] and [%d-%d].", start, end, start, m, m+1, end),
			withLeft(start), withRight(end), atLine(2))
		sort(start, m)
		sort(m+1, end)
		merge(start, m, end)
	}

	t.emit(a, "Starting Merge Sort.", atLine(0))
	if len(a) > 0 {
		sort(0, len(a)-1)
	}
	t.emit(a, "Merge Sort Complete.", withSorted(indices(len(a))))
	return t.frames
}

// QuickSort sorts a copy of arr with Lomuto partitioning (pivot = last
// element of the range). Sorted positions accumulate across frames; a range
// of one element is marked sorted at once and an empty range emits nothing.
func QuickSort(arr []int) []*frames.ArrayFrame {
	a := cloneInts(arr)
	var t arrayTrace
	var done []int

	partition := func(low, high int) int {
		p := a[high]
		t.emit(a, fmt.Sprintf("Partitioning range [%d, %d]. Pivot is %d (index %d).", low, high, p, high),
			withPivot(high), withLeft(low), withRight(high), withSorted(done), atLine(2))

		i := low - 1
		for j := low; j < high; j++ {
			t.emit(a, fmt.Sprintf("Comparing %d with pivot %d.", a[j], p),
				withPivot(high), withLeft(low), withRight(high), withCompare(j, high),
				withMid(j), withHighlight(i+1), withSorted(done), atLine(2))
			if a[j] < p {
				i++
				a[i], a[j] = a[j], a[i]
				t.emit(a, fmt.Sprintf("%d is smaller than pivot. Swapped to index %d.", a[i], i),
					withPivot(high), withLeft(low), withRight(high), withSwap(i, j),
					withHighlight(i), withSorted(done), atLine(2))
			}
		}

		a[i+1], a[high] = a[high], a[i+1]
		t.emit(a, fmt.Sprintf("Moving pivot to correct position index %d.", i+1),
			withPivot(i+1), withLeft(low), withRight(high), withSwap(i+1, high), withSorted(done), atLine(2))
		return i + 1
	}

	var sort func(low, high int)
	sort = func(low, high int) {
		switch {
		case low < high:
			t.emit(a, fmt.Sprintf("Quick Sort on range [%d, %d].", low, high),
				withLeft(low), withRight(high), withSorted(done), atLine(1))
			pi := partition(low, high)
			done = append(done, pi)
			t.emit(a, fmt.Sprintf("Pivot %d is now at its sorted position.", a[pi]),
				withPivot(pi), withSorted(done), atLine(2))
			sort(low, pi-1)
			sort(pi+1, high)
		case low == high:
			done = append(done, low)
			t.emit(a, fmt.Sprintf("Single element range [%d, %d] is already sorted.", low, low),
				withSorted(done), atLine(1))
		}
	}

	t.emit(a, "Starting Quick Sort (Lomuto Partition).", atLine(0))
	sort(0, len(a)-1)
	t.emit(a, "Quick Sort Complete.", withSorted(indices(len(a))))
	return t.frames
}
