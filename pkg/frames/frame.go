// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package frames defines the snapshot model produced by the algorithm
// generators and consumed by the player, the renderers and the chat tutor.
//
// # Description
//
// A Frame is one immutable instant of an algorithm's execution. Frames are a
// closed sum type: every concrete frame implements Frame and reports its
// Kind, so consumers switch on the concrete type and get exhaustive handling
// of the six structure kinds (array, grid, interval, graph, linked list, trie).
//
// # Invariants
//
//   - Every frame is a self-contained deep copy. No frame shares a slice,
//     map or pointer target with another frame or with generator state.
//   - Description is always set; CodeLine is optional.
//
// # Thread Safety
//
// Frames are never mutated after construction, so they are safe to share
// between goroutines for reading.
package frames

// Kind discriminates the frame variants. The string values are the wire
// "type" field.
type Kind string

const (
	KindArray      Kind = "array"
	KindGrid       Kind = "grid"
	KindInterval   Kind = "interval"
	KindGraph      Kind = "graph"
	KindLinkedList Kind = "linked-list"
	KindTrie       Kind = "trie"
)

// Frame is implemented by *ArrayFrame, *GridFrame, *IntervalFrame,
// *GraphFrame, *LinkedListFrame and *TrieFrame.
type Frame interface {
	// Kind reports the variant.
	Kind() Kind

	// StepInfo returns the description and pseudocode line.
	StepInfo() Step

	// Clone returns a deep copy.
	Clone() Frame
}

// Step holds the fields shared by every frame variant.
type Step struct {
	// Description is the human-readable narration of this instant.
	Description string `json:"description"`

	// CodeLine is the zero-based pseudocode line to highlight, if any.
	CodeLine *int `json:"codeLine,omitempty"`
}

// StepInfo implements Frame for every variant embedding Step.
func (s Step) StepInfo() Step { return s }

func (s Step) clone() Step {
	return Step{Description: s.Description, CodeLine: cloneInt(s.CodeLine)}
}

// Int returns a pointer to a copy of v. Optional integer fields use it.
func Int(v int) *int { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// =============================================================================
// Array
// =============================================================================

// ArrayFrame is a snapshot of an array algorithm: searching, sorting and
// the monotonic stack.
type ArrayFrame struct {
	Array []int `json:"array"`

	Left       *int `json:"left,omitempty"`
	Right      *int `json:"right,omitempty"`
	Mid        *int `json:"mid,omitempty"`
	FoundIndex *int `json:"foundIndex,omitempty"`

	CompareIndices   []int `json:"compareIndices,omitempty"`
	SwapIndices      []int `json:"swapIndices,omitempty"`
	SortedIndices    []int `json:"sortedIndices,omitempty"`
	PivotIndex       *int  `json:"pivotIndex,omitempty"`
	OverwriteIndex   *int  `json:"overwriteIndex,omitempty"`
	HighlightIndices []int `json:"highlightIndices,omitempty"`

	// Stack holds indices into Array, bottom first.
	Stack       []int `json:"stack,omitempty"`
	SecondArray []int `json:"secondArray,omitempty"`
	WindowSum   *int  `json:"windowSum,omitempty"`

	Step
}

func (f *ArrayFrame) Kind() Kind { return KindArray }

func (f *ArrayFrame) Clone() Frame {
	return &ArrayFrame{
		Array:            cloneInts(f.Array),
		Left:             cloneInt(f.Left),
		Right:            cloneInt(f.Right),
		Mid:              cloneInt(f.Mid),
		FoundIndex:       cloneInt(f.FoundIndex),
		CompareIndices:   cloneInts(f.CompareIndices),
		SwapIndices:      cloneInts(f.SwapIndices),
		SortedIndices:    cloneInts(f.SortedIndices),
		PivotIndex:       cloneInt(f.PivotIndex),
		OverwriteIndex:   cloneInt(f.OverwriteIndex),
		HighlightIndices: cloneInts(f.HighlightIndices),
		Stack:            cloneInts(f.Stack),
		SecondArray:      cloneInts(f.SecondArray),
		WindowSum:        cloneInt(f.WindowSum),
		Step:             f.Step.clone(),
	}
}

// =============================================================================
// Grid
// =============================================================================

// Coord is a [row, col] grid coordinate.
type Coord [2]int

// Row returns the row component.
func (c Coord) Row() int { return c[0] }

// Col returns the column component.
func (c Coord) Col() int { return c[1] }

// Key returns the "row,col" form used in GridFrame.Visited.
func (c Coord) Key() string { return coordKey(c[0], c[1]) }

// GridCell is one cell of a pathfinding grid.
type GridCell struct {
	Row       int  `json:"row"`
	Col       int  `json:"col"`
	IsWall    bool `json:"isWall"`
	IsStart   bool `json:"isStart"`
	IsEnd     bool `json:"isEnd"`
	IsVisited bool `json:"isVisited"`
	IsPath    bool `json:"isPath"`
	IsCurrent bool `json:"isCurrent"`

	// Distance is the best known cost from the start; nil means infinity.
	Distance *int `json:"distance,omitempty"`

	// Weight is the cost of entering this cell.
	Weight int `json:"weight,omitempty"`
}

// GridFrame is a snapshot of Dijkstra or A* on a grid.
type GridFrame struct {
	Grid    [][]GridCell `json:"grid"`
	Current *Coord       `json:"current"`
	Visited []string     `json:"visited"`
	Queue   []string     `json:"queue"`

	Step
}

func (f *GridFrame) Kind() Kind { return KindGrid }

func (f *GridFrame) Clone() Frame {
	out := &GridFrame{
		Grid:    CloneGrid(f.Grid),
		Visited: cloneStrings(f.Visited),
		Queue:   cloneStrings(f.Queue),
		Step:    f.Step.clone(),
	}
	if f.Current != nil {
		c := *f.Current
		out.Current = &c
	}
	return out
}

// CloneGrid deep-copies a grid of cells.
func CloneGrid(grid [][]GridCell) [][]GridCell {
	if grid == nil {
		return nil
	}
	out := make([][]GridCell, len(grid))
	for r, row := range grid {
		out[r] = make([]GridCell, len(row))
		for c, cell := range row {
			cell.Distance = cloneInt(cell.Distance)
			out[r][c] = cell
		}
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// =============================================================================
// Interval
// =============================================================================

// Interval is one candidate of interval scheduling.
type Interval struct {
	ID           int  `json:"id"`
	Start        int  `json:"start"`
	End          int  `json:"end"`
	IsSelected   bool `json:"isSelected"`
	IsConsidered bool `json:"isConsidered"`
	IsEliminated bool `json:"isEliminated"`
}

// IntervalFrame is a snapshot of greedy interval scheduling.
type IntervalFrame struct {
	Intervals      []Interval `json:"intervals"`
	CurrentID      *int       `json:"currentId,omitempty"`
	LastSelectedID *int       `json:"lastSelectedId,omitempty"`

	Step
}

func (f *IntervalFrame) Kind() Kind { return KindInterval }

func (f *IntervalFrame) Clone() Frame {
	var intervals []Interval
	if f.Intervals != nil {
		intervals = make([]Interval, len(f.Intervals))
		copy(intervals, f.Intervals)
	}
	return &IntervalFrame{
		Intervals:      intervals,
		CurrentID:      cloneInt(f.CurrentID),
		LastSelectedID: cloneInt(f.LastSelectedID),
		Step:           f.Step.clone(),
	}
}

// =============================================================================
// Graph
// =============================================================================

// Node colors used by the graph generators.
const (
	ColorIdle    = "#cbd5e1"
	ColorActive  = "#f59e0b"
	ColorVisited = "#10b981"
	ColorReached = "#3b82f6"
)

// GraphNode is a node positioned in percent coordinates (0-100).
type GraphNode struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	IsRoot bool    `json:"isRoot"`
	Label  string  `json:"label,omitempty"`
}

// GraphEdge is a directed edge.
type GraphEdge struct {
	Source int  `json:"source"`
	Target int  `json:"target"`
	Weight *int `json:"weight,omitempty"`
}

// EdgeRef identifies an edge for highlighting.
type EdgeRef struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// GraphFrame is a snapshot of a graph or forest algorithm.
type GraphFrame struct {
	Nodes          []GraphNode `json:"nodes"`
	Edges          []GraphEdge `json:"edges"`
	HighlightNodes []int       `json:"highlightNodes,omitempty"`
	HighlightEdges []EdgeRef   `json:"highlightEdges,omitempty"`

	Step
}

func (f *GraphFrame) Kind() Kind { return KindGraph }

func (f *GraphFrame) Clone() Frame {
	out := &GraphFrame{
		HighlightNodes: cloneInts(f.HighlightNodes),
		Step:           f.Step.clone(),
	}
	if f.Nodes != nil {
		out.Nodes = make([]GraphNode, len(f.Nodes))
		copy(out.Nodes, f.Nodes)
	}
	if f.Edges != nil {
		out.Edges = make([]GraphEdge, len(f.Edges))
		for i, e := range f.Edges {
			e.Weight = cloneInt(e.Weight)
			out.Edges[i] = e
		}
	}
	if f.HighlightEdges != nil {
		out.HighlightEdges = make([]EdgeRef, len(f.HighlightEdges))
		copy(out.HighlightEdges, f.HighlightEdges)
	}
	return out
}

// Node returns the node with the given id.
func (f *GraphFrame) Node(id int) (GraphNode, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// =============================================================================
// Linked list
// =============================================================================

// LinkedListNode is one node of the scripted linked list demonstration.
type LinkedListNode struct {
	ID        int    `json:"id"`
	Value     int    `json:"value"`
	NextID    *int   `json:"nextId"`
	IsHead    bool   `json:"isHead,omitempty"`
	IsTail    bool   `json:"isTail,omitempty"`
	IsCurrent bool   `json:"isCurrent,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	Label     string `json:"label,omitempty"`
}

// LinkedListFrame is a snapshot of the linked list. Nodes that are not
// reachable from the head are floating (detached or not yet linked).
type LinkedListFrame struct {
	Nodes []LinkedListNode `json:"nodes"`

	Step
}

func (f *LinkedListFrame) Kind() Kind { return KindLinkedList }

func (f *LinkedListFrame) Clone() Frame {
	out := &LinkedListFrame{Step: f.Step.clone()}
	if f.Nodes != nil {
		out.Nodes = make([]LinkedListNode, len(f.Nodes))
		for i, n := range f.Nodes {
			n.NextID = cloneInt(n.NextID)
			out.Nodes[i] = n
		}
	}
	return out
}

// Chain returns the nodes reachable from the head, in list order.
func (f *LinkedListFrame) Chain() []LinkedListNode {
	byID := make(map[int]LinkedListNode, len(f.Nodes))
	var head *LinkedListNode
	for i := range f.Nodes {
		byID[f.Nodes[i].ID] = f.Nodes[i]
		if f.Nodes[i].IsHead && head == nil {
			head = &f.Nodes[i]
		}
	}
	if head == nil {
		return nil
	}
	var chain []LinkedListNode
	seen := make(map[int]bool, len(f.Nodes))
	node, ok := *head, true
	for ok && !seen[node.ID] {
		seen[node.ID] = true
		chain = append(chain, node)
		if node.NextID == nil {
			break
		}
		node, ok = byID[*node.NextID]
	}
	return chain
}

// Floating returns the nodes not reachable from the head, in node order.
func (f *LinkedListFrame) Floating() []LinkedListNode {
	linked := make(map[int]bool, len(f.Nodes))
	for _, n := range f.Chain() {
		linked[n.ID] = true
	}
	var out []LinkedListNode
	for _, n := range f.Nodes {
		if !linked[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// Values returns the values of the head-reachable chain.
func (f *LinkedListFrame) Values() []int {
	chain := f.Chain()
	out := make([]int, len(chain))
	for i, n := range chain {
		out[i] = n.Value
	}
	return out
}

// =============================================================================
// Trie
// =============================================================================

// TrieRootID is the id of the trie root. Every other node's id is the
// literal prefix it represents.
const TrieRootID = "root"

// TrieNode is one node of the trie.
type TrieNode struct {
	ID          string   `json:"id"`
	Char        string   `json:"char"`
	IsEndOfWord bool     `json:"isEndOfWord"`
	Children    []string `json:"children"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Highlight   bool     `json:"highlight,omitempty"`
	IsCurrent   bool     `json:"isCurrent,omitempty"`
}

// TrieFrame is a snapshot of trie insertion or search.
type TrieFrame struct {
	Nodes []TrieNode `json:"nodes"`

	Step
}

func (f *TrieFrame) Kind() Kind { return KindTrie }

func (f *TrieFrame) Clone() Frame {
	out := &TrieFrame{Step: f.Step.clone()}
	if f.Nodes != nil {
		out.Nodes = make([]TrieNode, len(f.Nodes))
		for i, n := range f.Nodes {
			n.Children = cloneStrings(n.Children)
			out.Nodes[i] = n
		}
	}
	return out
}

// Node returns the node with the given id.
func (f *TrieFrame) Node(id string) (TrieNode, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return TrieNode{}, false
}

// Compile-time checks that every variant implements Frame.
var (
	_ Frame = (*ArrayFrame)(nil)
	_ Frame = (*GridFrame)(nil)
	_ Frame = (*IntervalFrame)(nil)
	_ Frame = (*GraphFrame)(nil)
	_ Frame = (*LinkedListFrame)(nil)
	_ Frame = (*TrieFrame)(nil)
)
