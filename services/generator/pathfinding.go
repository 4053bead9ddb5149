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
	"container/heap"
	"fmt"
	"slices"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// GridInput describes a pathfinding problem.
type GridInput struct {
	Rows  int            `json:"rows"`
	Cols  int            `json:"cols"`
	Start frames.Coord   `json:"start"`
	End   frames.Coord   `json:"end"`
	Walls []frames.Coord `json:"walls,omitempty"`

	// Weights[r][c] is the cost of entering cell (r, c). Missing or
	// non-positive entries cost 1.
	Weights [][]int `json:"weights,omitempty"`
}

func (in GridInput) inBounds(c frames.Coord) bool {
	return c.Row() >= 0 && c.Row() < in.Rows && c.Col() >= 0 && c.Col() < in.Cols
}

func (in GridInput) weight(r, c int) int {
	if r < len(in.Weights) && c < len(in.Weights[r]) && in.Weights[r][c] > 0 {
		return in.Weights[r][c]
	}
	return 1
}

// buildGrid creates the cell matrix. Walls on the start or end cell are
// ignored.
func (in GridInput) buildGrid() [][]frames.GridCell {
	walls := make(map[frames.Coord]bool, len(in.Walls))
	for _, w := range in.Walls {
		walls[w] = true
	}
	grid := make([][]frames.GridCell, in.Rows)
	for r := range in.Rows {
		grid[r] = make([]frames.GridCell, in.Cols)
		for c := range in.Cols {
			here := frames.Coord{r, c}
			cell := frames.GridCell{
				Row:     r,
				Col:     c,
				IsStart: here == in.Start,
				IsEnd:   here == in.End,
				Weight:  in.weight(r, c),
			}
			cell.IsWall = walls[here] && !cell.IsStart && !cell.IsEnd
			grid[r][c] = cell
		}
	}
	return grid
}

// openItem is one entry of the open set.
type openItem struct {
	at  frames.Coord
	g   int
	h   int
	seq int
}

func (it openItem) f() int { return it.g + it.h }

// openSet orders by f = g + h, then by smaller h, then by insertion order.
// With h = 0 this is Dijkstra's cumulative-cost order with FIFO ties.
type openSet []openItem

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *openSet) Push(x any) { *s = append(*s, x.(openItem)) }

func (s *openSet) Pop() any {
	old := *s
	it := old[len(old)-1]
	*s = old[:len(old)-1]
	return it
}

// ordered returns the entries in pop order without disturbing the heap.
func (s openSet) ordered() []openItem {
	out := slices.Clone([]openItem(s))
	slices.SortFunc(out, func(a, b openItem) int {
		switch {
		case openSet{a, b}.Less(0, 1):
			return -1
		case openSet{b, a}.Less(0, 1):
			return 1
		}
		return 0
	})
	return out
}

type gridSearch struct {
	intro     string
	heuristic func(frames.Coord) int
	label     func(openItem) string
	visitDesc func(openItem) string
	doneDesc  string
}

// Dijkstra finds the cheapest path from Start to End, settling cells in
// order of cumulative cost. Cells with equal cost are settled in the order
// they were queued.
func Dijkstra(in GridInput) []*frames.GridFrame {
	return runGridSearch(in, gridSearch{
		intro:     "Starting Dijkstra. Initialized priority queue with Start Node (dist: 0).",
		heuristic: func(frames.Coord) int { return 0 },
		label: func(it openItem) string {
			return fmt.Sprintf("[%d,%d]:%d", it.at.Row(), it.at.Col(), it.g)
		},
		visitDesc: func(it openItem) string {
			return fmt.Sprintf("Visiting node [%d, %d] with distance %d.", it.at.Row(), it.at.Col(), it.g)
		},
		doneDesc: "Target found! Shortest path guaranteed.",
	})
}

// AStar finds a shortest path guided by the Manhattan distance to End. On
// equal f the cell with the smaller heuristic (closer to the goal) is
// expanded first; remaining ties go to the earlier queued cell.
func AStar(in GridInput) []*frames.GridFrame {
	manhattan := func(c frames.Coord) int {
		return abs(c.Row()-in.End.Row()) + abs(c.Col()-in.End.Col())
	}
	return runGridSearch(in, gridSearch{
		intro:     "Starting A*. Using Manhattan distance heuristic.",
		heuristic: manhattan,
		label: func(it openItem) string {
			return fmt.Sprintf("[%d,%d]:%d", it.at.Row(), it.at.Col(), it.f())
		},
		visitDesc: func(it openItem) string {
			return fmt.Sprintf("Visiting [%d, %d] (g: %d, h: %d, f: %d).", it.at.Row(), it.at.Col(), it.g, it.h, it.f())
		},
		doneDesc: "Target found! Path reconstructed.",
	})
}

func runGridSearch(in GridInput, s gridSearch) []*frames.GridFrame {
	var out []*frames.GridFrame
	if in.Rows <= 0 || in.Cols <= 0 || !in.inBounds(in.Start) || !in.inBounds(in.End) {
		return []*frames.GridFrame{{
			Grid:    [][]frames.GridCell{},
			Visited: []string{},
			Queue:   []string{},
			Step:    frames.Step{Description: "Start or end lies outside the grid. Nothing to search."},
		}}
	}

	grid := in.buildGrid()
	var visited []string
	var open openSet
	parent := map[frames.Coord]frames.Coord{}
	closed := map[frames.Coord]bool{}
	seq := 0

	snap := func(current *frames.Coord, queue []string, desc string) {
		f := &frames.GridFrame{
			Grid:    grid,
			Current: current,
			Visited: visited,
			Queue:   queue,
			Step:    frames.Step{Description: desc},
		}
		snapshot := f.Clone().(*frames.GridFrame)
		if snapshot.Visited == nil {
			snapshot.Visited = []string{}
		}
		if snapshot.Queue == nil {
			snapshot.Queue = []string{}
		}
		out = append(out, snapshot)
	}
	queueLabels := func() []string {
		items := open.ordered()
		labels := make([]string, len(items))
		for i, it := range items {
			labels[i] = s.label(it)
		}
		return labels
	}

	grid[in.Start.Row()][in.Start.Col()].Distance = frames.Int(0)
	heap.Push(&open, openItem{at: in.Start, g: 0, h: s.heuristic(in.Start), seq: seq})
	seq++

	snap(nil, []string{in.Start.Key()}, s.intro)

	for open.Len() > 0 {
		cur := heap.Pop(&open).(openItem)
		if closed[cur.at] {
			continue
		}
		closed[cur.at] = true
		visited = append(visited, cur.at.Key())

		r, c := cur.at.Row(), cur.at.Col()
		grid[r][c].IsVisited = true
		grid[r][c].IsCurrent = true
		at := cur.at
		snap(&at, queueLabels(), s.visitDesc(cur))
		grid[r][c].IsCurrent = false

		if cur.at == in.End {
			for p, ok := cur.at, true; ok; p, ok = parent[p] {
				grid[p.Row()][p.Col()].IsPath = true
			}
			snap(nil, []string{}, s.doneDesc)
			return out
		}

		for _, d := range [4]frames.Coord{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			next := frames.Coord{r + d.Row(), c + d.Col()}
			if !in.inBounds(next) || closed[next] {
				continue
			}
			cell := &grid[next.Row()][next.Col()]
			if cell.IsWall {
				continue
			}
			g := cur.g + cell.Weight
			if cell.Distance != nil && *cell.Distance <= g {
				continue
			}
			cell.Distance = frames.Int(g)
			parent[next] = cur.at
			heap.Push(&open, openItem{at: next, g: g, h: s.heuristic(next), seq: seq})
			seq++
		}
	}

	snap(nil, []string{}, "Queue empty. Target not reachable.")
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
