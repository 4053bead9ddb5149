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
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/validation"
)

var (
	// ErrUnknownAlgorithm is returned for an AlgorithmType outside the enumeration.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrMissingInput is returned when the section of Input an algorithm
	// needs is absent.
	ErrMissingInput = errors.New("missing input")
)

// Input is the problem instance for any algorithm. Only the section the
// chosen algorithm reads has to be set.
type Input struct {
	// Array and Target feed the searching, sorting and stack algorithms.
	Array  []int `json:"array,omitempty"`
	Target *int  `json:"target,omitempty"`

	Grid        *GridInput        `json:"grid,omitempty"`
	BellmanFord *BellmanFordInput `json:"bellmanFord,omitempty"`
	UnionFind   *UnionFindInput   `json:"unionFind,omitempty"`
	Trie        *TrieInput        `json:"trie,omitempty"`
	Intervals   []frames.Interval `json:"intervals,omitempty"`
}

// Generate runs the generator for algo over in.
//
// # Description
//
// Dispatches to the algorithm's generator and widens the typed result to
// []frames.Frame. BFS, DFS and the linked list need no input; Bellman-Ford
// and the trie fall back to their demonstration inputs when their section is
// nil. Every other algorithm needs its section of Input.
//
// # Inputs
//
//   - ctx: Carries the trace span; generation itself never blocks.
//   - algo: The algorithm to run.
//   - in: The problem instance.
//
// # Outputs
//
//   - []frames.Frame: At least one frame.
//   - error: ErrUnknownAlgorithm or ErrMissingInput, wrapped.
func Generate(ctx context.Context, algo frames.AlgorithmType, in Input) ([]frames.Frame, error) {
	ctx, span := startGenerateSpan(ctx, algo.Slug())
	defer span.End()
	start := time.Now()

	out, err := dispatch(algo, in)
	recordGenerateMetrics(ctx, algo.Slug(), time.Since(start), len(out), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("generator.frames", len(out)))
	return out, nil
}

func dispatch(algo frames.AlgorithmType, in Input) ([]frames.Frame, error) {
	needArray := func() error {
		if in.Array == nil {
			return fmt.Errorf("%w: %s needs an array", ErrMissingInput, algo)
		}
		if algo.RequiresTarget() && in.Target == nil {
			return fmt.Errorf("%w: %s needs a target", ErrMissingInput, algo)
		}
		return nil
	}

	switch algo {
	case frames.LinearSearch, frames.BinarySearch, frames.TwoPointers, frames.SlidingWindow:
		if err := needArray(); err != nil {
			return nil, err
		}
		var fs []*frames.ArrayFrame
		switch algo {
		case frames.LinearSearch:
			fs = LinearSearch(in.Array, *in.Target)
		case frames.BinarySearch:
			fs = BinarySearch(in.Array, *in.Target)
		case frames.TwoPointers:
			fs = TwoPointers(in.Array, *in.Target)
		default:
			fs = SlidingWindow(in.Array, *in.Target)
		}
		return widen(fs), nil

	case frames.BubbleSort, frames.SelectionSort, frames.InsertionSort, frames.MergeSort, frames.QuickSort, frames.MonotonicStack:
		if err := needArray(); err != nil {
			return nil, err
		}
		run := map[frames.AlgorithmType]func([]int) []*frames.ArrayFrame{
			frames.BubbleSort:     BubbleSort,
			frames.SelectionSort:  SelectionSort,
			frames.InsertionSort:  InsertionSort,
			frames.MergeSort:      MergeSort,
			frames.QuickSort:      QuickSort,
			frames.MonotonicStack: MonotonicStack,
		}[algo]
		return widen(run(in.Array)), nil

	case frames.BFS:
		return widen(BFS()), nil
	case frames.DFS:
		return widen(DFS()), nil

	case frames.Dijkstra, frames.AStar:
		if in.Grid == nil {
			return nil, fmt.Errorf("%w: %s needs a grid", ErrMissingInput, algo)
		}
		if algo == frames.Dijkstra {
			return widen(Dijkstra(*in.Grid)), nil
		}
		return widen(AStar(*in.Grid)), nil

	case frames.BellmanFord:
		bf := DefaultBellmanFordInput()
		if in.BellmanFord != nil {
			bf = *in.BellmanFord
		}
		return widen(BellmanFord(bf)), nil

	case frames.UnionFind:
		if in.UnionFind == nil {
			return nil, fmt.Errorf("%w: %s needs a size and operations", ErrMissingInput, algo)
		}
		return widen(UnionFind(*in.UnionFind)), nil

	case frames.LinkedList:
		return widen(LinkedList()), nil

	case frames.Trie:
		ti := DefaultTrieInput()
		if in.Trie != nil {
			ti = *in.Trie
		}
		return widen(Trie(ti)), nil

	case frames.IntervalScheduling:
		if in.Intervals == nil {
			return nil, fmt.Errorf("%w: %s needs intervals", ErrMissingInput, algo)
		}
		return widen(IntervalScheduling(in.Intervals)), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(algo))
}

func widen[F frames.Frame](fs []F) []frames.Frame {
	out := make([]frames.Frame, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

// Sizes of the random inputs.
const (
	GridRows        = 10
	GridCols        = 15
	WallDensity     = 0.25
	UnionFindSize   = 12
	IntervalCount   = 7
	missingTarget   = 100
	presentTargetPr = 0.7
)

// RandomInput draws a fresh problem instance for algo from rng.
func RandomInput(algo frames.AlgorithmType, rng *rand.Rand) (Input, error) {
	randArray := func(n, hi int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = rng.IntN(hi) + 1
		}
		return out
	}
	// The target is present 70% of the time, otherwise 100 (out of range).
	randTarget := func(arr []int) *int {
		if len(arr) > 0 && rng.Float64() < presentTargetPr {
			return frames.Int(arr[rng.IntN(len(arr))])
		}
		return frames.Int(missingTarget)
	}

	switch algo {
	case frames.BinarySearch:
		arr := randArray(13, 99)
		slices.Sort(arr)
		return Input{Array: arr, Target: randTarget(arr)}, nil
	case frames.LinearSearch:
		arr := randArray(12, 99)
		return Input{Array: arr, Target: randTarget(arr)}, nil
	case frames.TwoPointers:
		arr := randArray(10, 20)
		slices.Sort(arr)
		half := len(arr) / 2
		i, j := rng.IntN(half), len(arr)-1-rng.IntN(half)
		return Input{Array: arr, Target: frames.Int(arr[i] + arr[j])}, nil
	case frames.SlidingWindow:
		return Input{Array: randArray(12, 9), Target: frames.Int(rng.IntN(10) + 15)}, nil
	case frames.BubbleSort, frames.SelectionSort, frames.InsertionSort, frames.MergeSort, frames.QuickSort:
		return Input{Array: randArray(8, 99)}, nil
	case frames.MonotonicStack:
		return Input{Array: randArray(10, 20)}, nil
	case frames.Dijkstra, frames.AStar:
		g := RandomGrid(rng, GridRows, GridCols, frames.Coord{1, 1}, frames.Coord{8, 13}, WallDensity)
		return Input{Grid: &g}, nil
	case frames.UnionFind:
		return Input{UnionFind: &UnionFindInput{Size: UnionFindSize, Ops: DefaultUnionOps(UnionFindSize, rng)}}, nil
	case frames.IntervalScheduling:
		return Input{Intervals: RandomIntervals(rng, IntervalCount)}, nil
	case frames.BellmanFord:
		bf := DefaultBellmanFordInput()
		return Input{BellmanFord: &bf}, nil
	case frames.Trie:
		ti := DefaultTrieInput()
		return Input{Trie: &ti}, nil
	case frames.BFS, frames.DFS, frames.LinkedList:
		return Input{}, nil
	}
	return Input{}, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(algo))
}

// RandomGrid draws walls with the given density, never on start or end.
func RandomGrid(rng *rand.Rand, rows, cols int, start, end frames.Coord, density float64) GridInput {
	g := GridInput{Rows: rows, Cols: cols, Start: start, End: end}
	for r := range rows {
		for c := range cols {
			here := frames.Coord{r, c}
			if rng.Float64() < density && here != start && here != end {
				g.Walls = append(g.Walls, here)
			}
		}
	}
	return g
}

// PrepareCustom turns validated user input into an Input for algo, sorting
// the array first when algo requires sorted data.
func PrepareCustom(algo frames.AlgorithmType, ci validation.CustomInput) (Input, error) {
	if !algo.Valid() {
		return Input{}, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(algo))
	}
	if !algo.SupportsCustomInput() {
		return Input{}, fmt.Errorf("%s does not accept custom input", algo)
	}
	arr := slices.Clone(ci.Array)
	if arr == nil {
		arr = []int{}
	}
	if algo.RequiresSorted() {
		slices.Sort(arr)
	}
	in := Input{Array: arr}
	if ci.Target != nil {
		in.Target = frames.Int(*ci.Target)
	}
	return in, nil
}
