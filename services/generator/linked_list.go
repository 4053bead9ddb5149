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
	"strings"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// listDemo is the working state of the linked-list demonstration. Nodes are
// never removed from the slice: a detached node stays as a floating node.
type listDemo struct {
	nodes  []frames.LinkedListNode
	nextID int
	out    []*frames.LinkedListFrame
}

func newListDemo(values []int) *listDemo {
	d := &listDemo{}
	for i, v := range values {
		n := frames.LinkedListNode{ID: d.nextID, Value: v, IsHead: i == 0, IsTail: i == len(values)-1}
		if i+1 < len(values) {
			n.NextID = frames.Int(d.nextID + 1)
		}
		d.nodes = append(d.nodes, n)
		d.nextID++
	}
	return d
}

func (d *listDemo) emit(desc string, codeLine int) {
	f := &frames.LinkedListFrame{Nodes: d.nodes, Step: frames.Step{Description: desc, CodeLine: frames.Int(codeLine)}}
	snap := f.Clone().(*frames.LinkedListFrame)
	if snap.Nodes == nil {
		snap.Nodes = []frames.LinkedListNode{}
	}
	d.out = append(d.out, snap)
}

func (d *listDemo) node(id int) *frames.LinkedListNode {
	for i := range d.nodes {
		if d.nodes[i].ID == id {
			return &d.nodes[i]
		}
	}
	return nil
}

func (d *listDemo) head() *frames.LinkedListNode {
	for i := range d.nodes {
		if d.nodes[i].IsHead {
			return &d.nodes[i]
		}
	}
	return nil
}

func (d *listDemo) next(n *frames.LinkedListNode) *frames.LinkedListNode {
	if n == nil || n.NextID == nil {
		return nil
	}
	return d.node(*n.NextID)
}

// clearMarks resets traversal decorations between operations. Detached
// nodes keep their label.
func (d *listDemo) clearMarks() {
	chain := map[int]bool{}
	for n, steps := d.head(), 0; n != nil && steps <= len(d.nodes); n, steps = d.next(n), steps+1 {
		chain[n.ID] = true
	}
	for i := range d.nodes {
		d.nodes[i].IsCurrent = false
		if chain[d.nodes[i].ID] {
			d.nodes[i].Highlight = false
			d.nodes[i].Label = ""
		}
	}
}

// walk visits chain nodes from the head until visit returns true. The
// step bound stops on a malformed cycle.
func (d *listDemo) walk(visit func(n *frames.LinkedListNode) bool) {
	for n, steps := d.head(), 0; n != nil && steps <= len(d.nodes); n, steps = d.next(n), steps+1 {
		if visit(n) {
			return
		}
	}
}

func (d *listDemo) describe() string {
	var parts []string
	d.walk(func(n *frames.LinkedListNode) bool {
		parts = append(parts, fmt.Sprint(n.Value))
		return false
	})
	return strings.Join(parts, " -> ")
}

func (d *listDemo) search(value int) {
	d.emit(fmt.Sprintf("Operation: Search for value %d.", value), 0)
	found := false
	d.walk(func(n *frames.LinkedListNode) bool {
		n.IsCurrent = true
		d.emit(fmt.Sprintf("Checking node with value %d...", n.Value), 1)
		n.IsCurrent = false
		if n.Value != value {
			return false
		}
		n.Highlight = true
		n.Label = "Found"
		d.emit(fmt.Sprintf("Value %d found!", value), 2)
		found = true
		return true
	})
	if !found {
		d.emit(fmt.Sprintf("Value %d is not in the list.", value), 3)
	}
	d.clearMarks()
}

func (d *listDemo) insertAfter(target, value int) {
	d.emit(fmt.Sprintf("Operation: Insert %d after node %d.", value, target), 4)

	var at *frames.LinkedListNode
	d.walk(func(n *frames.LinkedListNode) bool {
		n.IsCurrent = true
		d.emit(fmt.Sprintf("Traversing... at %d", n.Value), 5)
		if n.Value == target {
			n.Label = "Target"
			d.emit(fmt.Sprintf("Found target node %d.", target), 5)
			n.IsCurrent = false
			at = n
			return true
		}
		n.IsCurrent = false
		return false
	})
	if at == nil {
		d.emit(fmt.Sprintf("Node %d not found. Nothing inserted.", target), 5)
		d.clearMarks()
		return
	}
	atID := at.ID

	id := d.nextID
	d.nextID++
	d.nodes = append(d.nodes, frames.LinkedListNode{ID: id, Value: value, Highlight: true, Label: "New"})
	d.emit(fmt.Sprintf("Created new node %d.", value), 6)

	// The append may have moved the backing array.
	at = d.node(atID)
	fresh := d.node(id)
	if at.NextID != nil {
		fresh.NextID = frames.Int(*at.NextID)
		d.emit(fmt.Sprintf("Point %d.next to %d.", value, d.next(at).Value), 7)
	} else {
		fresh.IsTail = true
		at.IsTail = false
		d.emit(fmt.Sprintf("%d becomes the new tail.", value), 7)
	}

	at.NextID = frames.Int(id)
	at.Label = ""
	fresh.Highlight = false
	fresh.Label = ""
	d.emit(fmt.Sprintf("Point %d.next to %d. Insertion Complete.", target, value), 8)
	d.clearMarks()
}

func (d *listDemo) deleteTail() {
	var tail *frames.LinkedListNode
	d.walk(func(n *frames.LinkedListNode) bool {
		if n.NextID == nil {
			tail = n
		}
		return false
	})
	if tail == nil {
		d.emit("Operation: Delete tail. The list is empty.", 9)
		return
	}
	d.emit(fmt.Sprintf("Operation: Delete node %d (Tail).", tail.Value), 9)

	head := d.head()
	if head.ID == tail.ID {
		head.IsHead = false
		head.IsTail = false
		head.Label = "Deleted"
		head.Highlight = true
		d.emit(fmt.Sprintf("Node %d was the only node. The list is now empty.", tail.Value), 11)
		return
	}

	tailID, tailValue := tail.ID, tail.Value
	d.walk(func(n *frames.LinkedListNode) bool {
		n.IsCurrent = true
		d.emit(fmt.Sprintf("Traversing... at %d", n.Value), 10)
		if n.NextID == nil || *n.NextID != tailID {
			n.IsCurrent = false
			return false
		}
		d.emit(fmt.Sprintf("Node %d points to %d. This is the predecessor.", n.Value, tailValue), 10)

		n.NextID = nil
		n.IsTail = true
		n.IsCurrent = false
		gone := d.node(tailID)
		gone.Label = "Deleted"
		gone.Highlight = true
		gone.IsTail = false
		d.emit(fmt.Sprintf("Set %d.next to null. Node %d is detached.", n.Value, tailValue), 11)
		return true
	})
}

// LinkedList runs the scripted demonstration on 10 -> 20 -> 30 -> 40:
// search for 30, insert 25 after 20, then delete the tail. The detached
// tail stays in every later frame as a floating node labelled "Deleted",
// and the new node floats until it is linked.
func LinkedList() []*frames.LinkedListFrame {
	d := newListDemo([]int{10, 20, 30, 40})
	d.emit("Initial Linked List: "+d.describe(), 0)
	d.search(30)
	d.insertAfter(20, 25)
	d.deleteTail()
	d.emit("Deletion Complete. List: "+d.describe(), 12)
	return d.out
}
