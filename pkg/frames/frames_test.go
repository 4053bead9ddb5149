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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// AlgorithmType Tests
// =============================================================================

func TestAll_HasNineteenAlgorithms(t *testing.T) {
	all := All()
	assert.Len(t, all, 19)

	seen := map[string]bool{}
	for _, a := range all {
		assert.True(t, a.Valid())
		assert.NotEmpty(t, a.Slug())
		assert.False(t, seen[a.Slug()], "duplicate slug %s", a.Slug())
		seen[a.Slug()] = true
	}
}

func TestByCategory_CoversEveryAlgorithmOnce(t *testing.T) {
	total := 0
	for _, c := range Categories() {
		total += len(ByCategory(c))
	}
	assert.Equal(t, len(All()), total)
	assert.Equal(t, []AlgorithmType{MonotonicStack}, ByCategory(CategoryStack))
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want AlgorithmType
	}{
		{"binary-search", BinarySearch},
		{"Binary Search", BinarySearch},
		{"  DIJKSTRA ", Dijkstra},
		{"A* Search", AStar},
		{"interval-scheduling", IntervalScheduling},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAlgorithm("bogo-sort")
	assert.Error(t, err)
}

func TestAlgorithmFlags(t *testing.T) {
	assert.True(t, BinarySearch.RequiresSorted())
	assert.True(t, TwoPointers.RequiresSorted())
	assert.False(t, LinearSearch.RequiresSorted())
	assert.True(t, SlidingWindow.RequiresTarget())
	assert.False(t, BubbleSort.RequiresTarget())
	assert.True(t, MonotonicStack.SupportsCustomInput())
	assert.False(t, Trie.SupportsCustomInput())
	assert.Equal(t, "AlgorithmType(0)", AlgorithmType(0).String())
}

func TestAlgorithmType_TextRoundTrip(t *testing.T) {
	text, err := AStar.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "a-star", string(text))

	var a AlgorithmType
	require.NoError(t, a.UnmarshalText([]byte("Bellman-Ford")))
	assert.Equal(t, BellmanFord, a)

	_, err = AlgorithmType(99).MarshalText()
	assert.Error(t, err)
}

// =============================================================================
// Clone Tests
// =============================================================================

func TestArrayFrame_CloneIsDeep(t *testing.T) {
	orig := &ArrayFrame{
		Array:         []int{3, 1, 2},
		Mid:           Int(1),
		SortedIndices: []int{0},
		Stack:         []int{2},
		Step:          Step{Description: "start", CodeLine: Int(4)},
	}
	cp := orig.Clone().(*ArrayFrame)
	cp.Array[0] = 99
	*cp.Mid = 7
	cp.SortedIndices[0] = 5
	cp.Stack[0] = 8
	*cp.CodeLine = 0

	assert.Equal(t, []int{3, 1, 2}, orig.Array)
	assert.Equal(t, 1, *orig.Mid)
	assert.Equal(t, []int{0}, orig.SortedIndices)
	assert.Equal(t, []int{2}, orig.Stack)
	assert.Equal(t, 4, *orig.CodeLine)
}

func TestGridFrame_CloneIsDeep(t *testing.T) {
	orig := &GridFrame{
		Grid:    [][]GridCell{{{Row: 0, Col: 0, Distance: Int(3)}}},
		Current: &Coord{0, 0},
		Visited: []string{"0,0"},
	}
	cp := orig.Clone().(*GridFrame)
	cp.Grid[0][0].IsWall = true
	*cp.Grid[0][0].Distance = 9
	cp.Current[0] = 4
	cp.Visited[0] = "x"

	assert.False(t, orig.Grid[0][0].IsWall)
	assert.Equal(t, 3, *orig.Grid[0][0].Distance)
	assert.Equal(t, Coord{0, 0}, *orig.Current)
	assert.Equal(t, "0,0", orig.Visited[0])
}

func TestGraphAndTrieFrame_CloneIsDeep(t *testing.T) {
	g := &GraphFrame{
		Nodes: []GraphNode{{ID: 1, Color: ColorIdle}},
		Edges: []GraphEdge{{Source: 1, Target: 2, Weight: Int(5)}},
	}
	gc := g.Clone().(*GraphFrame)
	gc.Nodes[0].Color = ColorActive
	*gc.Edges[0].Weight = -1
	assert.Equal(t, ColorIdle, g.Nodes[0].Color)
	assert.Equal(t, 5, *g.Edges[0].Weight)

	tr := &TrieFrame{Nodes: []TrieNode{{ID: TrieRootID, Children: []string{"T"}}}}
	tc := tr.Clone().(*TrieFrame)
	tc.Nodes[0].Children[0] = "X"
	assert.Equal(t, []string{"T"}, tr.Nodes[0].Children)
}

// =============================================================================
// Linked list helpers
// =============================================================================

func TestLinkedListFrame_ChainAndFloating(t *testing.T) {
	f := &LinkedListFrame{Nodes: []LinkedListNode{
		{ID: 0, Value: 10, NextID: Int(1), IsHead: true},
		{ID: 1, Value: 20, NextID: nil, IsTail: true},
		{ID: 2, Value: 99, NextID: Int(1)},
	}}
	assert.Equal(t, []int{10, 20}, f.Values())

	floating := f.Floating()
	require.Len(t, floating, 1)
	assert.Equal(t, 2, floating[0].ID)
}

func TestLinkedListFrame_ChainStopsOnCycle(t *testing.T) {
	f := &LinkedListFrame{Nodes: []LinkedListNode{
		{ID: 0, Value: 1, NextID: Int(1), IsHead: true},
		{ID: 1, Value: 2, NextID: Int(0)},
	}}
	assert.Equal(t, []int{1, 2}, f.Values())
}

// =============================================================================
// Codec Tests
// =============================================================================

func TestMarshalJSON_AddsTypeDiscriminator(t *testing.T) {
	data, err := json.Marshal(&ArrayFrame{Array: []int{1}, Step: Step{Description: "d"}})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "array", m["type"])
	assert.Equal(t, "d", m["description"])
	assert.NotContains(t, m, "codeLine")
}

func TestDecodeFrames_RestoresConcreteTypes(t *testing.T) {
	in := []Frame{
		&ArrayFrame{Array: []int{2, 1}, FoundIndex: Int(-1), Step: Step{Description: "a", CodeLine: Int(2)}},
		&GridFrame{Grid: [][]GridCell{{{IsStart: true}}}, Current: &Coord{0, 0}, Step: Step{Description: "g"}},
		&IntervalFrame{Intervals: []Interval{{ID: 1, Start: 0, End: 3}}, Step: Step{Description: "i"}},
		&GraphFrame{Nodes: []GraphNode{{ID: 0}}, Step: Step{Description: "gr"}},
		&LinkedListFrame{Nodes: []LinkedListNode{{ID: 0, IsHead: true}}, Step: Step{Description: "l"}},
		&TrieFrame{Nodes: []TrieNode{{ID: TrieRootID}}, Step: Step{Description: "t"}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := DecodeFrames(data)
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Kind(), out[i].Kind())
		assert.Equal(t, in[i].StepInfo().Description, out[i].StepInfo().Description)
	}
	arr := out[0].(*ArrayFrame)
	assert.Equal(t, -1, *arr.FoundIndex)
	assert.Equal(t, 2, *arr.CodeLine)
	assert.Equal(t, Coord{0, 0}, *out[1].(*GridFrame).Current)
}

func TestDecodeFrames_UnknownType(t *testing.T) {
	_, err := DecodeFrames([]byte(`[{"type":"hologram","description":"x"}]`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

// =============================================================================
// ContextText Tests
// =============================================================================

func TestContextText_Array(t *testing.T) {
	f := &ArrayFrame{
		Array: []int{1, 3, 5},
		Left:  Int(0),
		Right: Int(2),
		Mid:   Int(1),
		Step:  Step{Description: "Check middle"},
	}
	want := "Current Visualization Step:\n" +
		"- Type: array\n" +
		"- Description: Check middle\n" +
		"- Array State: [1, 3, 5]\n" +
		"- Pointers: Mid=1, Left=0, Right=2"
	assert.Equal(t, want, ContextText(f))
}

func TestContextText_GridAndList(t *testing.T) {
	g := &GridFrame{Current: &Coord{2, 7}, Step: Step{Description: "Visit"}}
	assert.Contains(t, ContextText(g), "- Visiting Node: [2, 7]")

	g.Current = nil
	assert.Contains(t, ContextText(g), "- Visiting Node: None")

	l := &LinkedListFrame{Step: Step{Description: "Insert"}}
	assert.Contains(t, ContextText(l), "- Current Action on List.")
	assert.Empty(t, ContextText(nil))
}
