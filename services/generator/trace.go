// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generator turns a problem instance into the ordered list of frames
// that animates one algorithm.
//
// Every generator is a pure function: it copies its input, simulates the
// algorithm on private working state and snapshots that state at each step a
// learner should see (loop checks, comparisons, writes, pointer moves,
// structural changes, start and end). Snapshots are deep copies, so no frame
// aliases another frame or the working state.
//
// Generators never panic on input outside their preconditions (for example
// an unsorted array handed to BinarySearch). They still terminate and return
// at least one frame; only the portrayed result is meaningless.
package generator

import (
	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// arrayOpt sets one optional field of an array snapshot.
type arrayOpt func(*frames.ArrayFrame)

func withLeft(i int) arrayOpt { return func(f *frames.ArrayFrame) { f.Left = frames.Int(i) } }
func withRight(i int) arrayOpt { return func(f *frames.ArrayFrame) { f.Right = frames.Int(i) } }
func withMid(i int) arrayOpt { return func(f *frames.ArrayFrame) { f.Mid = frames.Int(i) } }
func withFound(i int) arrayOpt { return func(f *frames.ArrayFrame) { f.FoundIndex = frames.Int(i) } }
func withPivot(i int) arrayOpt { return func(f *frames.ArrayFrame) { f.PivotIndex = frames.Int(i) } }
func atLine(n int) arrayOpt { return func(f *frames.ArrayFrame) { f.CodeLine = frames.Int(n) } }

func withOverwrite(i int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.OverwriteIndex = frames.Int(i) }
}

func withWindowSum(s int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.WindowSum = frames.Int(s) }
}

func withCompare(idx ...int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.CompareIndices = idx }
}

func withSwap(idx ...int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.SwapIndices = idx }
}

func withHighlight(idx ...int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.HighlightIndices = idx }
}

func withSorted(idx []int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.SortedIndices = idx }
}

func withStack(idx []int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.Stack = idx }
}

func withResults(vals []int) arrayOpt {
	return func(f *frames.ArrayFrame) { f.SecondArray = vals }
}

// arrayTrace accumulates array snapshots. Recursive generators share one
// trace so frames land in depth-first, left-to-right call order.
type arrayTrace struct {
	frames []*frames.ArrayFrame
}

// emit snapshots arr with the given options. Everything referenced by the
// options is copied, so callers may keep mutating their slices.
func (t *arrayTrace) emit(arr []int, desc string, opts ...arrayOpt) {
	f := &frames.ArrayFrame{Array: arr, Step: frames.Step{Description: desc}}
	for _, opt := range opts {
		opt(f)
	}
	snap := f.Clone().(*frames.ArrayFrame)
	if snap.Array == nil {
		snap.Array = []int{}
	}
	t.frames = append(t.frames, snap)
}

// indices returns [0, n).
func indices(n int) []int {
	out := make([]int, max(n, 0))
	for i := range out {
		out[i] = i
	}
	return out
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// graphOpt sets one optional field of a graph snapshot.
type graphOpt func(*frames.GraphFrame)

func hlNodes(ids ...int) graphOpt {
	return func(f *frames.GraphFrame) { f.HighlightNodes = ids }
}

func hlEdges(refs ...frames.EdgeRef) graphOpt {
	return func(f *frames.GraphFrame) { f.HighlightEdges = refs }
}

func graphLine(n int) graphOpt {
	return func(f *frames.GraphFrame) { f.CodeLine = frames.Int(n) }
}

func edge(source, target int) frames.EdgeRef {
	return frames.EdgeRef{Source: source, Target: target}
}

// graphTrace accumulates graph snapshots.
type graphTrace struct {
	frames []*frames.GraphFrame
}

func (t *graphTrace) emit(nodes []frames.GraphNode, edges []frames.GraphEdge, desc string, opts ...graphOpt) {
	f := &frames.GraphFrame{Nodes: nodes, Edges: edges, Step: frames.Step{Description: desc}}
	for _, opt := range opts {
		opt(f)
	}
	t.frames = append(t.frames, f.Clone().(*frames.GraphFrame))
}
