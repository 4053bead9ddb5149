// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

func TestRender_Nil(t *testing.T) {
	assert.Contains(t, Render(nil, 80), "No frame loaded.")
}

func TestRender_Array(t *testing.T) {
	f := &frames.ArrayFrame{
		Array:       []int{5, 3, 8, -2},
		Left:        frames.Int(0),
		Mid:         frames.Int(1),
		Right:       frames.Int(3),
		Stack:       []int{0, 1},
		SecondArray: []int{1, -1},
		WindowSum:   frames.Int(9),
	}
	out := Render(f, 0)
	for _, want := range []string{"5", "-2", "stack (bottom→top): 5, 3", "result: [1, -1]", "window sum: 9"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[barHeight+2], "L")
	assert.Contains(t, lines[barHeight+2], "M")
	assert.Contains(t, lines[barHeight+2], "R")
}

func TestRender_ArrayEmpty(t *testing.T) {
	assert.Contains(t, Render(&frames.ArrayFrame{}, 40), "(empty array)")
}

func TestRender_ClipsToWidth(t *testing.T) {
	arr := make([]int, 20)
	for i := range arr {
		arr[i] = i * 10
	}
	out := Render(&frames.ArrayFrame{Array: arr}, 30)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30)
	}
}

func TestRender_Grid(t *testing.T) {
	grid := [][]frames.GridCell{
		{{Row: 0, Col: 0, IsStart: true}, {Row: 0, Col: 1, IsWall: true}, {Row: 0, Col: 2, IsEnd: true}},
		{{Row: 1, Col: 0, IsVisited: true}, {Row: 1, Col: 1, IsCurrent: true}, {Row: 1, Col: 2, IsPath: true}},
	}
	out := Render(&frames.GridFrame{
		Grid:    grid,
		Current: &frames.Coord{1, 1},
		Visited: []string{"0,0", "1,0"},
		Queue:   []string{"1,2"},
	}, 0)
	assert.Contains(t, out, "S")
	assert.Contains(t, out, "██")
	assert.Contains(t, out, "E")
	assert.Contains(t, out, "@")
	assert.Contains(t, out, "visited: 2  frontier: 1  current: [1, 1]")
}

func TestRender_Intervals(t *testing.T) {
	out := Render(&frames.IntervalFrame{
		Intervals: []frames.Interval{
			{ID: 0, Start: 1, End: 3, IsSelected: true},
			{ID: 1, Start: 2, End: 5, IsEliminated: true},
			{ID: 2, Start: 4, End: 7, IsConsidered: true},
		},
		CurrentID:      frames.Int(2),
		LastSelectedID: frames.Int(0),
	}, 80)
	assert.Contains(t, out, "✓ #0")
	assert.Contains(t, out, "✗ #1")
	assert.Contains(t, out, "▶ #2")
	assert.Contains(t, out, "last selected: #0")
}

func TestRender_Graph(t *testing.T) {
	out := Render(&frames.GraphFrame{
		Nodes: []frames.GraphNode{
			{ID: 0, Color: frames.ColorActive, IsRoot: true},
			{ID: 1, Color: frames.ColorIdle, Label: "∞"},
		},
		Edges:          []frames.GraphEdge{{Source: 0, Target: 1, Weight: frames.Int(4)}},
		HighlightNodes: []int{0},
		HighlightEdges: []frames.EdgeRef{{Source: 0, Target: 1}},
	}, 0)
	assert.Contains(t, out, "(0)*")
	assert.Contains(t, out, "→ 1(4)!")
	assert.Contains(t, out, "(1)")
	assert.Contains(t, out, "∞")
}

func TestRender_LinkedList(t *testing.T) {
	out := Render(&frames.LinkedListFrame{Nodes: []frames.LinkedListNode{
		{ID: 0, Value: 10, NextID: frames.Int(1), IsHead: true},
		{ID: 1, Value: 20, IsTail: true, IsCurrent: true},
		{ID: 2, Value: 25, Label: "New"},
	}}, 0)
	assert.Contains(t, out, "head → [10] → [20] → ∅")
	assert.Contains(t, out, "floating: [25 New]")
}

func TestRender_Trie(t *testing.T) {
	out := Render(&frames.TrieFrame{Nodes: []frames.TrieNode{
		{ID: frames.TrieRootID, Children: []string{"c"}},
		{ID: "c", Char: "c", Children: []string{"ca"}},
		{ID: "ca", Char: "a", Children: []string{"cat", "car"}, IsCurrent: true},
		{ID: "cat", Char: "t", IsEndOfWord: true},
		{ID: "car", Char: "r", IsEndOfWord: true},
	}}, 0)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "root", lines[0])
	assert.Equal(t, "└─ c", lines[1])
	assert.Equal(t, "   └─ a", lines[2])
	assert.Equal(t, "      ├─ t •", lines[3])
	assert.Equal(t, "      └─ r •", lines[4])
}

func TestRender_TrieWithoutRoot(t *testing.T) {
	assert.Contains(t, Render(&frames.TrieFrame{}, 0), "(empty trie)")
}

func TestRenderCode(t *testing.T) {
	assert.Empty(t, RenderCode(nil, nil))

	out := RenderCode([]string{"for i in arr", "  check i"}, frames.Int(1))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], " 1  for i in arr")
	assert.Contains(t, lines[1], " 2    check i")
}
