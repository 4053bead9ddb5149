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
	"slices"
	"strconv"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/layout"
)

// WeightedEdge is a directed edge with a weight.
type WeightedEdge struct {
	Source int `json:"source"`
	Target int `json:"target"`
	Weight int `json:"weight"`
}

// BellmanFordInput is a directed weighted graph and a source node.
type BellmanFordInput struct {
	Nodes  int            `json:"nodes"`
	Source int            `json:"source"`
	Edges  []WeightedEdge `json:"edges"`
}

// DefaultBellmanFordInput returns the six-node demonstration graph. The
// edge 4 -> 3 has a negative weight; the graph has no negative cycle.
func DefaultBellmanFordInput() BellmanFordInput {
	return BellmanFordInput{
		Nodes:  6,
		Source: 0,
		Edges: []WeightedEdge{
			{0, 1, 4}, {0, 2, 2},
			{1, 2, 3}, {1, 3, 2}, {1, 4, 3},
			{2, 1, 1}, {2, 3, 4}, {2, 4, 5},
			{4, 3, -2},
			{3, 5, 2}, {4, 5, 3},
		},
	}
}

const infinity = "∞"

// BellmanFord relaxes every edge |V|-1 times, stopping early after a round
// without change, then makes one more pass looking for an edge that can
// still be relaxed, which proves a negative cycle reachable from Source.
//
// Node labels show the current distance. The source is green, reached nodes
// blue and unreached nodes grey.
func BellmanFord(in BellmanFordInput) []*frames.GraphFrame {
	var t graphTrace
	n := max(in.Nodes, 0)

	var edges []frames.GraphEdge
	var valid []WeightedEdge
	for _, e := range in.Edges {
		if e.Source < 0 || e.Source >= n || e.Target < 0 || e.Target >= n {
			continue
		}
		valid = append(valid, e)
		edges = append(edges, frames.GraphEdge{Source: e.Source, Target: e.Target, Weight: frames.Int(e.Weight)})
	}

	if in.Source < 0 || in.Source >= n {
		t.emit([]frames.GraphNode{}, edges, "Source node is not part of the graph. Nothing to relax.")
		return t.frames
	}

	dist := make([]*int, n)
	dist[in.Source] = frames.Int(0)
	pts := layout.Circle(n, 50, 50, 35)

	paint := func() []frames.GraphNode {
		nodes := make([]frames.GraphNode, n)
		for i := range n {
			node := frames.GraphNode{ID: i, X: pts[i].X, Y: pts[i].Y, IsRoot: i == in.Source, Color: frames.ColorIdle, Label: infinity}
			if dist[i] != nil {
				node.Label = strconv.Itoa(*dist[i])
				node.Color = frames.ColorReached
				if i == in.Source {
					node.Color = frames.ColorVisited
				}
			}
			nodes[i] = node
		}
		return nodes
	}
	show := func(d *int) string {
		if d == nil {
			return infinity
		}
		return strconv.Itoa(*d)
	}
	relaxable := func(e WeightedEdge) bool {
		return dist[e.Source] != nil && (dist[e.Target] == nil || *dist[e.Source]+e.Weight < *dist[e.Target])
	}

	t.emit(paint(), edges, fmt.Sprintf("Initialized Bellman-Ford. Distance to Source (%d) is 0, others %s.", in.Source, infinity),
		graphLine(0))

	for k := 1; k < n; k++ {
		changed := false
		t.emit(paint(), edges, fmt.Sprintf("Iteration %d: Relaxing all edges...", k), graphLine(1))

		for _, e := range valid {
			t.emit(paint(), edges,
				fmt.Sprintf("Checking edge %d -> %d (weight: %d). Dist[%d] = %s.", e.Source, e.Target, e.Weight, e.Source, show(dist[e.Source])),
				hlNodes(e.Source, e.Target), hlEdges(edge(e.Source, e.Target)), graphLine(2))

			if relaxable(e) {
				dist[e.Target] = frames.Int(*dist[e.Source] + e.Weight)
				changed = true
				t.emit(paint(), edges,
					fmt.Sprintf("Relaxation! New Dist[%d] = %d + %d = %d.", e.Target, *dist[e.Source], e.Weight, *dist[e.Target]),
					hlNodes(e.Target), hlEdges(edge(e.Source, e.Target)), graphLine(3))
			}
		}

		if !changed {
			t.emit(paint(), edges, fmt.Sprintf("No changes in Iteration %d. Algorithm terminated early.", k), graphLine(4))
			break
		}
	}

	t.emit(paint(), edges, "Checking every edge once more for negative cycles...", graphLine(5))
	if i := slices.IndexFunc(valid, relaxable); i >= 0 {
		e := valid[i]
		t.emit(paint(), edges,
			fmt.Sprintf("Negative cycle detected! Edge %d->%d can still be relaxed.", e.Source, e.Target),
			hlNodes(e.Source, e.Target), hlEdges(edge(e.Source, e.Target)), graphLine(6))
		return t.frames
	}

	t.emit(paint(), edges, "Bellman-Ford Complete. Shortest paths found (no negative cycles).", graphLine(7))
	return t.frames
}
