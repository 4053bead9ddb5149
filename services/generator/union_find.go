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

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/layout"
)

// forestPalette colors every tree of the union-find forest by its root.
var forestPalette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#84cc16", "#10b981",
	"#06b6d4", "#3b82f6", "#8b5cf6", "#d946ef", "#f43f5e",
}

// UnionFindInput is a set size and the unions to perform, in order.
type UnionFindInput struct {
	Size int      `json:"size"`
	Ops  [][2]int `json:"ops"`
}

// DefaultUnionOps pairs neighbours (0-1, 2-3, ...), merges those pairs into
// quads (0-2, 4-6, ...), then adds three random unions drawn from rng.
func DefaultUnionOps(size int, rng *rand.Rand) [][2]int {
	var ops [][2]int
	for i := 0; i+1 < size; i += 2 {
		ops = append(ops, [2]int{i, i + 1})
	}
	for i := 0; i+2 < size; i += 4 {
		ops = append(ops, [2]int{i, i + 2})
	}
	if size > 0 && rng != nil {
		for range 3 {
			ops = append(ops, [2]int{rng.IntN(size), rng.IntN(size)})
		}
	}
	return ops
}

// Root follows parent links from i to its root. It stops after len(parent)
// hops so a malformed parent array cannot loop forever.
func Root(parent []int, i int) int {
	for range parent {
		if parent[i] == i {
			break
		}
		i = parent[i]
	}
	return i
}

// forestFrame lays out the forest implied by parent. Edges point from child
// to parent and nodes are colored by the root of their tree.
func forestFrame(t *graphTrace, parent []int, desc string, opts ...graphOpt) {
	pts := layout.ParentForest(parent, layout.DefaultOptions())
	nodes := make([]frames.GraphNode, len(parent))
	var edges []frames.GraphEdge
	for i, p := range parent {
		nodes[i] = frames.GraphNode{
			ID:     i,
			X:      pts[i].X,
			Y:      pts[i].Y,
			Color:  forestPalette[Root(parent, i)%len(forestPalette)],
			IsRoot: p == i,
		}
		if p != i {
			edges = append(edges, frames.GraphEdge{Source: i, Target: p})
		}
	}
	t.emit(nodes, edges, desc, opts...)
}

// UnionFind performs the unions of in over a fresh parent array. Each union
// shows the operands, the root-finding paths of both, and the link of one
// root under the other (or that they already share a root). The layout is
// recomputed for every frame.
func UnionFind(in UnionFindInput) []*frames.GraphFrame {
	var t graphTrace
	parent := indices(in.Size)

	forestFrame(&t, parent, "Initialized Union Find. Each element is its own parent.", graphLine(0))

	for _, op := range in.Ops {
		u, v := op[0], op[1]
		if u < 0 || u >= len(parent) || v < 0 || v >= len(parent) {
			forestFrame(&t, parent, fmt.Sprintf("Union(%d, %d) skipped: element out of range.", u, v))
			continue
		}

		forestFrame(&t, parent, fmt.Sprintf("Union(%d, %d). Checking if they are already connected...", u, v),
			hlNodes(u, v), graphLine(1))

		pathU, pathV := findPath(parent, u), findPath(parent, v)
		rootU, rootV := pathU[len(pathU)-1], pathV[len(pathV)-1]

		var hl []frames.EdgeRef
		for _, path := range [][]int{pathU, pathV} {
			for k := 0; k+1 < len(path); k++ {
				hl = append(hl, edge(path[k], path[k+1]))
			}
		}
		forestFrame(&t, parent, fmt.Sprintf("Finding roots: Root(%d) = %d, Root(%d) = %d", u, rootU, v, rootV),
			hlNodes(append(cloneInts(pathU), pathV...)...), hlEdges(hl...), graphLine(2))

		if rootU == rootV {
			forestFrame(&t, parent, fmt.Sprintf("Roots are the same (%d). %d and %d are already connected.", rootU, u, v),
				hlNodes(u, v), graphLine(3))
			continue
		}
		parent[rootU] = rootV
		forestFrame(&t, parent, fmt.Sprintf("Roots differ. Union: Set parent of %d to %d.", rootU, rootV),
			hlNodes(rootU, rootV), hlEdges(edge(rootU, rootV)), graphLine(4))
	}

	forestFrame(&t, parent, "Union Find Operations Complete.")
	return t.frames
}

// findPath returns i followed by its ancestors up to the root.
func findPath(parent []int, i int) []int {
	path := []int{i}
	for range parent {
		if parent[i] == i {
			break
		}
		i = parent[i]
		path = append(path, i)
	}
	return path
}

// ParentsFromFrame recovers the parent array implied by a union-find frame:
// every edge points from child to parent and roots have no outgoing edge.
func ParentsFromFrame(f *frames.GraphFrame) []int {
	parent := indices(len(f.Nodes))
	for _, e := range f.Edges {
		if e.Source >= 0 && e.Source < len(parent) {
			parent[e.Source] = e.Target
		}
	}
	return parent
}
