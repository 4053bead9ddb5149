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
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// =============================================================================
// Styles
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	descriptionStyle = lipgloss.NewStyle().
				Italic(true).
				Foreground(lipgloss.Color("252"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	activeCodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	userStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	modelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Array element roles, strongest first.
	foundStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	swapStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("203"))
	overwriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("213"))
	compareStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))
	pivotStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("141"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("81"))
	sortedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	// Grid cells.
	wallStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	startStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	endStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	pathStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	visitedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("67"))
)

const barHeight = 6

// =============================================================================
// Frame Rendering
// =============================================================================

// Render draws f as terminal text no wider than width columns. A width of
// zero or less leaves lines unclipped.
func Render(f frames.Frame, width int) string {
	var body string
	switch v := f.(type) {
	case nil:
		body = statsStyle.Render("No frame loaded.")
	case *frames.ArrayFrame:
		body = renderArray(v)
	case *frames.GridFrame:
		body = renderGrid(v)
	case *frames.IntervalFrame:
		body = renderIntervals(v, width)
	case *frames.GraphFrame:
		body = renderGraph(v)
	case *frames.LinkedListFrame:
		body = renderLinkedList(v)
	case *frames.TrieFrame:
		body = renderTrie(v)
	default:
		body = statsStyle.Render(fmt.Sprintf("Unsupported frame kind %q.", f.Kind()))
	}
	if width > 0 {
		return lipgloss.NewStyle().MaxWidth(width).Render(body)
	}
	return body
}

// RenderCode draws pseudocode with the active line highlighted. It returns
// "" when there is no pseudocode.
func RenderCode(lines []string, active *int) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		text := fmt.Sprintf("%2d  %s", i+1, line)
		if active != nil && *active == i {
			b.WriteString(activeCodeStyle.Render(text))
		} else {
			b.WriteString(codeStyle.Render(text))
		}
	}
	return b.String()
}

// =============================================================================
// Array
// =============================================================================

func arrayStyle(f *frames.ArrayFrame, i int) lipgloss.Style {
	switch {
	case f.FoundIndex != nil && *f.FoundIndex == i:
		return foundStyle
	case slices.Contains(f.SwapIndices, i):
		return swapStyle
	case f.OverwriteIndex != nil && *f.OverwriteIndex == i:
		return overwriteStyle
	case slices.Contains(f.CompareIndices, i):
		return compareStyle
	case f.PivotIndex != nil && *f.PivotIndex == i:
		return pivotStyle
	case slices.Contains(f.HighlightIndices, i):
		return highlightStyle
	case slices.Contains(f.SortedIndices, i):
		return sortedStyle
	case f.Left != nil && f.Right != nil && (i < *f.Left || i > *f.Right):
		return mutedStyle
	default:
		return idleStyle
	}
}

func renderArray(f *frames.ArrayFrame) string {
	if len(f.Array) == 0 {
		return statsStyle.Render("(empty array)")
	}
	const cell = 5

	peak := 1
	for _, v := range f.Array {
		peak = max(peak, abs(v))
	}

	var b strings.Builder
	for row := barHeight; row >= 1; row-- {
		for i, v := range f.Array {
			h := (abs(v)*barHeight + peak - 1) / peak
			glyph := strings.Repeat(" ", cell)
			if h >= row {
				glyph = " ███ "
				if v < 0 {
					glyph = " ▒▒▒ "
				}
			}
			b.WriteString(arrayStyle(f, i).Render(glyph))
		}
		b.WriteString("\n")
	}
	for i, v := range f.Array {
		b.WriteString(arrayStyle(f, i).Render(center(strconv.Itoa(v), cell)))
	}
	b.WriteString("\n")
	for i := range f.Array {
		b.WriteString(statsStyle.Render(center(strconv.Itoa(i), cell)))
	}
	if markers := pointerRow(f, cell); strings.TrimSpace(markers) != "" {
		b.WriteString("\n")
		b.WriteString(currentStyle.Render(markers))
	}

	if len(f.Stack) > 0 {
		vals := make([]int, 0, len(f.Stack))
		for _, idx := range f.Stack {
			if idx >= 0 && idx < len(f.Array) {
				vals = append(vals, f.Array[idx])
			}
		}
		fmt.Fprintf(&b, "\nstack (bottom→top): %s", joinInts(vals))
	}
	if f.SecondArray != nil {
		fmt.Fprintf(&b, "\nresult: [%s]", joinInts(f.SecondArray))
	}
	if f.WindowSum != nil {
		fmt.Fprintf(&b, "\nwindow sum: %d", *f.WindowSum)
	}
	return b.String()
}

// pointerRow labels the Left, Mid and Right pointers under their columns.
func pointerRow(f *frames.ArrayFrame, cell int) string {
	labels := make([]string, len(f.Array))
	add := func(p *int, tag string) {
		if p != nil && *p >= 0 && *p < len(labels) {
			labels[*p] += tag
		}
	}
	add(f.Left, "L")
	add(f.Mid, "M")
	add(f.Right, "R")

	var b strings.Builder
	for _, l := range labels {
		b.WriteString(center(l, cell))
	}
	return strings.TrimRight(b.String(), " ")
}

// =============================================================================
// Grid
// =============================================================================

func renderGrid(f *frames.GridFrame) string {
	var b strings.Builder
	for r, row := range f.Grid {
		if r > 0 {
			b.WriteString("\n")
		}
		for _, c := range row {
			b.WriteString(gridCell(c))
		}
	}
	fmt.Fprintf(&b, "\nvisited: %d  frontier: %d", len(f.Visited), len(f.Queue))
	if f.Current != nil {
		fmt.Fprintf(&b, "  current: [%d, %d]", f.Current.Row(), f.Current.Col())
	}
	return b.String()
}

func gridCell(c frames.GridCell) string {
	switch {
	case c.IsWall:
		return wallStyle.Render("██")
	case c.IsStart:
		return startStyle.Render("S ")
	case c.IsEnd:
		return endStyle.Render("E ")
	case c.IsCurrent:
		return currentStyle.Render("@ ")
	case c.IsPath:
		return pathStyle.Render("● ")
	case c.IsVisited:
		return visitedStyle.Render("░░")
	case c.Weight > 1:
		return statsStyle.Render(fmt.Sprintf("%-2d", c.Weight))
	default:
		return mutedStyle.Render("· ")
	}
}

// =============================================================================
// Interval
// =============================================================================

func renderIntervals(f *frames.IntervalFrame, width int) string {
	if len(f.Intervals) == 0 {
		return statsStyle.Render("(no intervals)")
	}
	span := 1
	for _, iv := range f.Intervals {
		span = max(span, iv.End)
	}
	const label = 16
	track := 60
	if width > 0 {
		track = max(10, min(track, width-label-2))
	}

	var b strings.Builder
	for i, iv := range f.Intervals {
		if i > 0 {
			b.WriteString("\n")
		}
		mark, style := " ", idleStyle
		switch {
		case iv.IsSelected:
			mark, style = "✓", foundStyle
		case iv.IsEliminated:
			mark, style = "✗", mutedStyle
		case iv.IsConsidered || (f.CurrentID != nil && *f.CurrentID == iv.ID):
			mark, style = "▶", compareStyle
		}
		from := iv.Start * track / span
		to := max(from+1, iv.End*track/span)
		fmt.Fprintf(&b, "%s #%-2d [%2d,%2d) ", mark, iv.ID, iv.Start, iv.End)
		b.WriteString(strings.Repeat(" ", from))
		b.WriteString(style.Render(strings.Repeat("━", to-from)))
	}
	if f.LastSelectedID != nil {
		fmt.Fprintf(&b, "\nlast selected: #%d", *f.LastSelectedID)
	}
	return b.String()
}

// =============================================================================
// Graph
// =============================================================================

func renderGraph(f *frames.GraphFrame) string {
	if len(f.Nodes) == 0 {
		return statsStyle.Render("(empty graph)")
	}
	out := make(map[int][]frames.GraphEdge, len(f.Nodes))
	for _, e := range f.Edges {
		out[e.Source] = append(out[e.Source], e)
	}
	hot := make(map[frames.EdgeRef]bool, len(f.HighlightEdges))
	for _, e := range f.HighlightEdges {
		hot[e] = true
	}

	var b strings.Builder
	for i, n := range f.Nodes {
		if i > 0 {
			b.WriteString("\n")
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color))
		if slices.Contains(f.HighlightNodes, n.ID) {
			style = style.Bold(true).Underline(true)
		}
		name := fmt.Sprintf("(%d)", n.ID)
		if n.IsRoot {
			name = fmt.Sprintf("(%d)*", n.ID)
		}
		b.WriteString(style.Render(fmt.Sprintf("%-6s", name)))
		if n.Label != "" {
			b.WriteString(" " + statsStyle.Render(n.Label))
		}

		var targets []string
		for _, e := range out[n.ID] {
			t := strconv.Itoa(e.Target)
			if e.Weight != nil {
				t += fmt.Sprintf("(%d)", *e.Weight)
			}
			if hot[frames.EdgeRef{Source: e.Source, Target: e.Target}] {
				t = currentStyle.Render(t + "!")
			}
			targets = append(targets, t)
		}
		if len(targets) > 0 {
			b.WriteString(" → " + strings.Join(targets, ", "))
		}
	}
	return b.String()
}

// =============================================================================
// Linked List
// =============================================================================

func renderLinkedList(f *frames.LinkedListFrame) string {
	var b strings.Builder
	chain := f.Chain()
	if len(chain) == 0 {
		b.WriteString(statsStyle.Render("head → ∅"))
	}
	for i, n := range chain {
		if i == 0 {
			b.WriteString(statsStyle.Render("head → "))
		} else {
			b.WriteString(" → ")
		}
		b.WriteString(listNode(n))
	}
	if len(chain) > 0 {
		b.WriteString(" → ∅")
	}
	if floating := f.Floating(); len(floating) > 0 {
		b.WriteString("\n" + statsStyle.Render("floating: "))
		for i, n := range floating {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(listNode(n))
		}
	}
	return b.String()
}

func listNode(n frames.LinkedListNode) string {
	text := fmt.Sprintf("[%d]", n.Value)
	if n.Label != "" {
		text = fmt.Sprintf("[%d %s]", n.Value, n.Label)
	}
	switch {
	case n.IsCurrent:
		return currentStyle.Render(text)
	case n.Highlight:
		return highlightStyle.Render(text)
	default:
		return idleStyle.Render(text)
	}
}

// =============================================================================
// Trie
// =============================================================================

func renderTrie(f *frames.TrieFrame) string {
	root, ok := f.Node(frames.TrieRootID)
	if !ok {
		return statsStyle.Render("(empty trie)")
	}
	var b strings.Builder
	b.WriteString(trieLabel(root, "root"))

	seen := map[string]bool{root.ID: true}
	var walk func(n frames.TrieNode, prefix string)
	walk = func(n frames.TrieNode, prefix string) {
		for i, id := range n.Children {
			child, ok := f.Node(id)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			branch, next := "├─ ", "│  "
			if i == len(n.Children)-1 {
				branch, next = "└─ ", "   "
			}
			text := child.Char
			if child.IsEndOfWord {
				text += " •"
			}
			b.WriteString("\n" + statsStyle.Render(prefix+branch) + trieLabel(child, text))
			walk(child, prefix+next)
		}
	}
	walk(root, "")
	return b.String()
}

func trieLabel(n frames.TrieNode, text string) string {
	switch {
	case n.IsCurrent:
		return currentStyle.Render(text)
	case n.Highlight:
		return highlightStyle.Render(text)
	case n.IsEndOfWord:
		return sortedStyle.Render(text)
	default:
		return idleStyle.Render(text)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func center(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
