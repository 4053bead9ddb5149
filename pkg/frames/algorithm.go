// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package frames

import (
	"fmt"
	"strings"
)

// Category groups algorithms for listing and menus.
type Category string

const (
	CategorySearching      Category = "Searching"
	CategorySorting        Category = "Sorting"
	CategoryStack          Category = "Stack"
	CategoryGraph          Category = "Graph"
	CategoryDataStructures Category = "Data Structures"
	CategoryOptimization   Category = "Optimization"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategorySearching,
		CategorySorting,
		CategoryStack,
		CategoryGraph,
		CategoryDataStructures,
		CategoryOptimization,
	}
}

// AlgorithmType identifies one of the supported algorithms. The zero value
// is invalid.
type AlgorithmType int

const (
	LinearSearch AlgorithmType = iota + 1
	BinarySearch
	TwoPointers
	SlidingWindow
	BubbleSort
	SelectionSort
	InsertionSort
	MergeSort
	QuickSort
	MonotonicStack
	BFS
	DFS
	Dijkstra
	AStar
	BellmanFord
	UnionFind
	LinkedList
	Trie
	IntervalScheduling
)

type algorithmInfo struct {
	label    string
	slug     string
	category Category
	custom   bool
	target   bool
	sorted   bool
}

var algorithmTable = map[AlgorithmType]algorithmInfo{
	LinearSearch:       {"Linear Search", "linear-search", CategorySearching, true, true, false},
	BinarySearch:       {"Binary Search", "binary-search", CategorySearching, true, true, true},
	TwoPointers:        {"Two Pointers (Pair Sum)", "two-pointers", CategorySearching, true, true, true},
	SlidingWindow:      {"Sliding Window (Min Subarray)", "sliding-window", CategorySearching, true, true, false},
	BubbleSort:         {"Bubble Sort", "bubble-sort", CategorySorting, true, false, false},
	SelectionSort:      {"Selection Sort", "selection-sort", CategorySorting, true, false, false},
	InsertionSort:      {"Insertion Sort", "insertion-sort", CategorySorting, true, false, false},
	MergeSort:          {"Merge Sort", "merge-sort", CategorySorting, true, false, false},
	QuickSort:          {"Quick Sort", "quick-sort", CategorySorting, true, false, false},
	MonotonicStack:     {"Monotonic Stack (Next Greater)", "monotonic-stack", CategoryStack, true, false, false},
	BFS:                {"Breadth-First Search", "bfs", CategoryGraph, false, false, false},
	DFS:                {"Depth-First Search", "dfs", CategoryGraph, false, false, false},
	Dijkstra:           {"Dijkstra's Algorithm", "dijkstra", CategoryGraph, false, false, false},
	AStar:              {"A* Search", "a-star", CategoryGraph, false, false, false},
	BellmanFord:        {"Bellman-Ford", "bellman-ford", CategoryGraph, false, false, false},
	UnionFind:          {"Union Find (Disjoint Set)", "union-find", CategoryGraph, false, false, false},
	LinkedList:         {"Linked List Operations", "linked-list", CategoryDataStructures, false, false, false},
	Trie:               {"Trie (Prefix Tree)", "trie", CategoryDataStructures, false, false, false},
	IntervalScheduling: {"Interval Scheduling", "interval-scheduling", CategoryOptimization, false, false, false},
}

// All returns every algorithm in menu order.
func All() []AlgorithmType {
	out := make([]AlgorithmType, 0, len(algorithmTable))
	for a := LinearSearch; a <= IntervalScheduling; a++ {
		out = append(out, a)
	}
	return out
}

// ByCategory returns the algorithms of one category in menu order.
func ByCategory(c Category) []AlgorithmType {
	var out []AlgorithmType
	for _, a := range All() {
		if a.Category() == c {
			out = append(out, a)
		}
	}
	return out
}

// Valid reports whether a is one of the enumerated algorithms.
func (a AlgorithmType) Valid() bool {
	_, ok := algorithmTable[a]
	return ok
}

// String returns the display label, e.g. "Dijkstra's Algorithm".
func (a AlgorithmType) String() string {
	if info, ok := algorithmTable[a]; ok {
		return info.label
	}
	return fmt.Sprintf("AlgorithmType(%d)", int(a))
}

// Slug returns the command-line name, e.g. "dijkstra".
func (a AlgorithmType) Slug() string { return algorithmTable[a].slug }

// Category returns the group a belongs to.
func (a AlgorithmType) Category() Category { return algorithmTable[a].category }

// SupportsCustomInput reports whether a accepts a user-supplied array.
func (a AlgorithmType) SupportsCustomInput() bool { return algorithmTable[a].custom }

// RequiresTarget reports whether a custom input must include a target.
func (a AlgorithmType) RequiresTarget() bool { return algorithmTable[a].target }

// RequiresSorted reports whether a expects its array sorted ascending.
func (a AlgorithmType) RequiresSorted() bool { return algorithmTable[a].sorted }

// ParseAlgorithm resolves a slug or a display label, case-insensitively.
func ParseAlgorithm(name string) (AlgorithmType, error) {
	needle := strings.TrimSpace(name)
	for _, a := range All() {
		info := algorithmTable[a]
		if strings.EqualFold(needle, info.slug) || strings.EqualFold(needle, info.label) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", name)
}

// MarshalText encodes the slug so algorithm types read well in YAML and JSON.
func (a AlgorithmType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid algorithm type %d", int(a))
	}
	return []byte(a.Slug()), nil
}

// UnmarshalText accepts either a slug or a label.
func (a *AlgorithmType) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
