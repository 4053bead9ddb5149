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

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/layout"
)

// sampleTreeEdges is the fixed 15-node tree walked by BFS and DFS.
var sampleTreeEdges = [][2]int{
	{0, 1}, {0, 2},
	{1, 3}, {1, 4},
	{2, 5}, {2, 6},
	{3, 7}, {3, 8},
	{4, 9},
	{5, 10}, {5, 11},
	{6, 12},
	{12, 13}, {12, 14},
}

const sampleTreeSize = 15

// traversalGraph is a rooted graph with layout positions and children in
// edge order.
type traversalGraph struct {
	root  int
	nodes []frames.GraphNode
	edges []frames.GraphEdge
	adj   map[int][]int
}

// SampleTree returns the node count and edges of the tree used by BFS and DFS.
func SampleTree() (int, [][2]int) {
	return sampleTreeSize, slices.Clone(sampleTreeEdges)
}

func newTraversalGraph(size int, pairs [][2]int, root int) traversalGraph {
	g := traversalGraph{root: root, adj: make(map[int][]int, size)}
	for _, p := range pairs {
		g.adj[p[0]] = append(g.adj[p[0]], p[1])
		g.edges = append(g.edges, frames.GraphEdge{Source: p[0], Target: p[1]})
	}
	pts := layout.Tree(root, func(u int) []int { return g.adj[u] }, layout.DefaultOptions())
	for id := range size {
		p := pts[id]
		g.nodes = append(g.nodes, frames.GraphNode{
			ID:     id,
			X:      p.X,
			Y:      p.Y,
			Color:  frames.ColorIdle,
			IsRoot: id == root,
		})
	}
	return g
}

// paint returns the nodes colored by state: active first, then visited,
// otherwise idle.
func (g traversalGraph) paint(active func(int) bool, visited map[int]bool) []frames.GraphNode {
	out := slices.Clone(g.nodes)
	for i := range out {
		switch id := out[i].ID; {
		case active(id):
			out[i].Color = frames.ColorActive
		case visited[id]:
			out[i].Color = frames.ColorVisited
		}
	}
	return out
}

func only(id int) func(int) bool { return func(n int) bool { return n == id } }

func none(int) bool { return false }

// BFS traverses the sample tree breadth-first from node 0.
func BFS() []*frames.GraphFrame {
	return bfs(newTraversalGraph(sampleTreeSize, sampleTreeEdges, 0))
}

func bfs(g traversalGraph) []*frames.GraphFrame {
	var t graphTrace
	queue := []int{g.root}
	visited := map[int]bool{g.root: true}

	t.emit(g.paint(only(g.root), nil), g.edges,
		fmt.Sprintf("Starting BFS from Root (%d). Added to Queue.", g.root), graphLine(0))

	for len(queue) > 0 {
		t.emit(g.paint(only(queue[0]), visited), g.edges, "Checking queue condition.", graphLine(2))

		u := queue[0]
		queue = queue[1:]
		t.emit(g.paint(only(u), visited), g.edges,
			fmt.Sprintf("Dequeued %d. Processing neighbors...", u), hlNodes(u), graphLine(3))

		for _, v := range g.adj[u] {
			t.emit(g.paint(only(u), visited), g.edges, fmt.Sprintf("Checking neighbor %d.", v),
				hlNodes(u, v), hlEdges(edge(u, v)), graphLine(5))
			if visited[v] {
				continue
			}
			visited[v] = true
			queue = append(queue, v)
			t.emit(g.paint(only(u), visited), g.edges,
				fmt.Sprintf("Marked %d visited and added to Queue.", v),
				hlNodes(u, v), hlEdges(edge(u, v)), graphLine(7))
		}
	}

	t.emit(g.paint(none, visited), g.edges, "BFS Traversal Complete.")
	return t.frames
}

// DFS traverses the sample tree depth-first from node 0 by recursion. A
// backtrack frame highlights the return edge whenever a branch completes.
func DFS() []*frames.GraphFrame {
	return dfs(newTraversalGraph(sampleTreeSize, sampleTreeEdges, 0))
}

func dfs(g traversalGraph) []*frames.GraphFrame {
	var t graphTrace
	visited := map[int]bool{}

	var visit func(u int)
	visit = func(u int) {
		t.emit(g.paint(only(u), visited), g.edges,
			fmt.Sprintf("Calling DFS(%d). Marking visited.", u), hlNodes(u), graphLine(1))
		visited[u] = true

		for _, v := range g.adj[u] {
			t.emit(g.paint(only(u), visited), g.edges,
				fmt.Sprintf("Checking neighbor %d of %d.", v, u), hlEdges(edge(u, v)), graphLine(2))
			if visited[v] {
				continue
			}
			t.emit(g.paint(only(u), visited), g.edges,
				fmt.Sprintf("%d not visited. Recursing...", v), hlEdges(edge(u, v)), graphLine(4))
			visit(v)
			t.emit(g.paint(only(u), visited), g.edges,
				fmt.Sprintf("Finished branch %d. Backtracking to %d.", v, u),
				hlNodes(u), hlEdges(edge(v, u)), graphLine(4))
		}
	}

	t.emit(g.paint(none, visited), g.edges,
		fmt.Sprintf("Starting DFS from Root (%d).", g.root), graphLine(0))
	visit(g.root)
	t.emit(g.paint(none, visited), g.edges, "DFS Traversal Complete.")
	return t.frames
}
