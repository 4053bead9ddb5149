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

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/layout"
)

// TrieInput lists the words to insert, in order, and the word to search for
// afterwards. An empty Search skips the search.
type TrieInput struct {
	Words  []string `json:"words"`
	Search string   `json:"search"`
}

// DefaultTrieInput inserts TO, TEA and TED, then searches for TEA.
func DefaultTrieInput() TrieInput {
	return TrieInput{Words: []string{"TO", "TEA", "TED"}, Search: "TEA"}
}

// trieDemo is the working trie. A node's id is the prefix it spells, so a
// shared prefix is found by id lookup.
type trieDemo struct {
	nodes map[string]*frames.TrieNode
	order []string
	out   []*frames.TrieFrame
}

func newTrieDemo() *trieDemo {
	root := &frames.TrieNode{ID: frames.TrieRootID, Children: []string{}}
	return &trieDemo{
		nodes: map[string]*frames.TrieNode{frames.TrieRootID: root},
		order: []string{frames.TrieRootID},
	}
}

func childID(parent string, ch string) string {
	if parent == frames.TrieRootID {
		return ch
	}
	return parent + ch
}

func prefixOf(id string) string {
	if id == frames.TrieRootID {
		return ""
	}
	return id
}

// emit lays the trie out from scratch and snapshots it.
func (d *trieDemo) emit(desc string, codeLine int) {
	pts := layout.Tree(frames.TrieRootID, func(id string) []string { return d.nodes[id].Children }, layout.DefaultOptions())
	nodes := make([]frames.TrieNode, 0, len(d.order))
	for _, id := range d.order {
		n := *d.nodes[id]
		n.X, n.Y = pts[id].X, pts[id].Y
		nodes = append(nodes, n)
	}
	f := &frames.TrieFrame{Nodes: nodes, Step: frames.Step{Description: desc, CodeLine: frames.Int(codeLine)}}
	d.out = append(d.out, f.Clone().(*frames.TrieFrame))
}

func (d *trieDemo) clearMarks() {
	for _, n := range d.nodes {
		n.IsCurrent = false
		n.Highlight = false
	}
}

func (d *trieDemo) insert(word string) {
	d.emit(fmt.Sprintf("Operation: Insert %q.", word), 0)
	if word == "" {
		d.emit("Empty word. Nothing to insert.", 0)
		return
	}

	cur := d.nodes[frames.TrieRootID]
	cur.IsCurrent = true
	for _, r := range word {
		ch := string(r)
		id := childID(cur.ID, ch)
		if next, ok := d.nodes[id]; ok {
			d.emit(fmt.Sprintf("Character '%s' exists. Moving down.", ch), 2)
			cur.IsCurrent = false
			next.IsCurrent = true
			cur = next
			continue
		}

		d.emit(fmt.Sprintf("Character '%s' not found. Creating new node.", ch), 3)
		cur.IsCurrent = false
		next := &frames.TrieNode{ID: id, Char: ch, Children: []string{}, IsCurrent: true}
		d.nodes[id] = next
		d.order = append(d.order, id)
		cur.Children = append(cur.Children, id)
		d.emit(fmt.Sprintf("Created '%s'. Linking to parent.", ch), 4)
		cur = next
	}

	cur.IsEndOfWord = true
	cur.IsCurrent = false
	cur.Highlight = true
	d.emit(fmt.Sprintf("Marked '%s' as End of Word.", cur.Char), 5)
	d.clearMarks()
}

func (d *trieDemo) search(word string) {
	d.emit(fmt.Sprintf("Operation: Search for %q.", word), 6)
	cur := d.nodes[frames.TrieRootID]
	cur.IsCurrent = true

	for _, r := range word {
		ch := string(r)
		d.emit(fmt.Sprintf("Looking for '%s'...", ch), 7)
		next, ok := d.nodes[childID(cur.ID, ch)]
		if !ok {
			cur.IsCurrent = false
			d.emit(fmt.Sprintf("'%s' is missing below %q. Word %q not found.", ch, prefixOf(cur.ID), word), 8)
			return
		}
		cur.IsCurrent = false
		next.IsCurrent = true
		cur = next
	}

	cur.IsCurrent = false
	if !cur.IsEndOfWord {
		d.emit(fmt.Sprintf("Prefix %q exists but is not marked as a word. Word not found.", word), 8)
		return
	}
	cur.Highlight = true
	d.emit(fmt.Sprintf("Found word %q!", word), 9)
}

// Trie inserts every word of in character by character, creating a branch
// where a prefix is new, then searches for in.Search. Only the node that
// ends a word carries IsEndOfWord. A failed search ends with a not-found
// frame.
func Trie(in TrieInput) []*frames.TrieFrame {
	d := newTrieDemo()
	d.emit("Initialized empty Trie Root.", 0)
	for _, w := range in.Words {
		d.insert(w)
	}
	if in.Search != "" {
		d.search(in.Search)
	}
	return d.out
}
