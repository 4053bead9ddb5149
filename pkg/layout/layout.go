// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package layout assigns 2D percentage coordinates to rooted trees and
// forests so that sibling subtrees never overlap.
//
// Every call is stateless: coordinates are derived purely from the
// parent/child relationships passed in, so callers recompute the layout for
// every frame instead of patching an earlier one.
package layout

import "math"

// Point is a position in percent of the drawing area.
type Point struct {
	X     float64
	Y     float64
	Depth int
}

// Options controls normalisation.
type Options struct {
	// ForestGap is the horizontal gap, in leaf widths, between disjoint roots.
	ForestGap float64

	XMin, XMax float64
	YMin, YMax float64

	// MinDepth is the smallest depth used for vertical scaling, so shallow
	// forests do not stretch across the whole height.
	MinDepth int
}

// DefaultOptions returns X 5-95, Y 10-90, a 0.5 gap and a minimum depth of 4.
func DefaultOptions() Options {
	return Options{
		ForestGap: 0.5,
		XMin:      5,
		XMax:      95,
		YMin:      10,
		YMax:      90,
		MinDepth:  4,
	}
}

// Forest lays out the trees hanging off roots.
//
// # Description
//
// Subtree widths are computed post-order (a leaf is 1 wide, an inner node is
// the sum of its children). Placement is pre-order: each node sits at the
// centre of the band allocated to it at its depth, and its children split the
// band left to right in the order children returns them. Roots are placed
// left to right separated by opts.ForestGap. Raw coordinates are then
// normalised into the configured ranges.
//
// A node reachable more than once (shared child or cycle) is placed at its
// first pre-order visit and skipped afterwards, so the function always
// terminates.
//
// # Inputs
//
//   - roots: Roots in display order.
//   - children: Returns the children of a node in display order.
//   - opts: Normalisation ranges.
//
// # Outputs
//
//   - map[K]Point: A point for every node reachable from roots.
func Forest[K comparable](roots []K, children func(K) []K, opts Options) map[K]Point {
	// Claim each node once, in pre-order, to get an acyclic forest.
	claimed := make(map[K]bool)
	tree := make(map[K][]K)
	var order []K
	var claim func(u K)
	claim = func(u K) {
		claimed[u] = true
		order = append(order, u)
		for _, v := range children(u) {
			if claimed[v] {
				continue
			}
			tree[u] = append(tree[u], v)
			claim(v)
		}
	}
	var treeRoots []K
	for _, r := range roots {
		if claimed[r] {
			continue
		}
		treeRoots = append(treeRoots, r)
		claim(r)
	}

	widths := make(map[K]float64, len(order))
	var width func(u K) float64
	width = func(u K) float64 {
		kids := tree[u]
		if len(kids) == 0 {
			widths[u] = 1
			return 1
		}
		w := 0.0
		for _, v := range kids {
			w += width(v)
		}
		widths[u] = w
		return w
	}

	raw := make(map[K]Point, len(order))
	var place func(u K, xStart float64, depth int)
	place = func(u K, xStart float64, depth int) {
		raw[u] = Point{X: xStart + widths[u]/2, Y: float64(depth), Depth: depth}
		x := xStart
		for _, v := range tree[u] {
			place(v, x, depth+1)
			x += widths[v]
		}
	}

	x := 0.0
	for i, r := range treeRoots {
		if i > 0 {
			x += opts.ForestGap
		}
		w := width(r)
		place(r, x, 0)
		x += w
	}

	total := math.Max(x, 1)
	maxDepth := opts.MinDepth
	for _, p := range raw {
		maxDepth = max(maxDepth, p.Depth)
	}
	if maxDepth < 1 {
		maxDepth = 1
	}

	out := make(map[K]Point, len(raw))
	for k, p := range raw {
		out[k] = Point{
			X:     opts.XMin + (p.X/total)*(opts.XMax-opts.XMin),
			Y:     opts.YMin + (p.Y/float64(maxDepth))*(opts.YMax-opts.YMin),
			Depth: p.Depth,
		}
	}
	return out
}

// Tree lays out a single rooted tree.
func Tree[K comparable](root K, children func(K) []K, opts Options) map[K]Point {
	return Forest([]K{root}, children, opts)
}

// ParentForest lays out the forest implied by a parent array, where
// parent[i] == i marks a root. Children keep index order.
func ParentForest(parent []int, opts Options) map[int]Point {
	kids := make(map[int][]int)
	var roots []int
	for i, p := range parent {
		if p == i || p < 0 || p >= len(parent) {
			roots = append(roots, i)
			continue
		}
		kids[p] = append(kids[p], i)
	}
	return Forest(roots, func(u int) []int { return kids[u] }, opts)
}

// Circle places n points evenly on a circle centred at (cx, cy), starting at
// the top and going clockwise in screen coordinates.
func Circle(n int, cx, cy, radius float64) []Point {
	out := make([]Point, n)
	for i := range n {
		angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		out[i] = Point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		}
	}
	return out
}
