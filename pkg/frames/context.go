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
	"fmt"
	"strconv"
	"strings"
)

// ContextText summarises a frame as plain text for the chat tutor.
//
// # Description
//
// The block always starts with "Current Visualization Step:" followed by the
// frame type and description. Array frames add the array contents and the
// Mid/Left/Right pointers, grid frames add the visiting coordinate ("None"
// when there is none) and linked-list frames add a generic note. Graph, trie
// and interval frames add a one-line summary of their highlighted state.
//
// # Inputs
//
//   - f: The current frame. A nil frame yields an empty string.
//
// # Outputs
//
//   - string: Text passed verbatim to the chat client.
func ContextText(f Frame) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Current Visualization Step:\n")
	fmt.Fprintf(&b, "- Type: %s\n", f.Kind())
	fmt.Fprintf(&b, "- Description: %s", f.StepInfo().Description)

	switch v := f.(type) {
	case *ArrayFrame:
		fmt.Fprintf(&b, "\n- Array State: [%s]", joinInts(v.Array))
		fmt.Fprintf(&b, "\n- Pointers: Mid=%s, Left=%s, Right=%s",
			optInt(v.Mid), optInt(v.Left), optInt(v.Right))
	case *GridFrame:
		if v.Current != nil {
			fmt.Fprintf(&b, "\n- Visiting Node: [%d, %d]", v.Current.Row(), v.Current.Col())
		} else {
			b.WriteString("\n- Visiting Node: None")
		}
	case *LinkedListFrame:
		b.WriteString("\n- Current Action on List.")
	case *GraphFrame:
		if len(v.HighlightNodes) > 0 {
			fmt.Fprintf(&b, "\n- Highlighted Nodes: [%s]", joinInts(v.HighlightNodes))
		}
	case *TrieFrame:
		for _, n := range v.Nodes {
			if n.IsCurrent {
				fmt.Fprintf(&b, "\n- Current Prefix: %s", n.ID)
				break
			}
		}
	case *IntervalFrame:
		if v.CurrentID != nil {
			fmt.Fprintf(&b, "\n- Considering Interval: %d", *v.CurrentID)
		}
	}
	return strings.TrimSpace(b.String())
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func optInt(p *int) string {
	if p == nil {
		return "none"
	}
	return strconv.Itoa(*p)
}
