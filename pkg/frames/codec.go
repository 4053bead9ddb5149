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
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownKind is returned by DecodeFrames for an unrecognised "type".
var ErrUnknownKind = errors.New("unknown frame type")

func coordKey(row, col int) string {
	return strconv.Itoa(row) + "," + strconv.Itoa(col)
}

// CoordKey returns the "row,col" key for a cell.
func CoordKey(row, col int) string { return coordKey(row, col) }

// The MarshalJSON methods add the "type" discriminator next to the
// variant's own fields. The local alias types drop the method set so the
// inner Marshal does not recurse.

func (f *ArrayFrame) MarshalJSON() ([]byte, error) {
	type alias ArrayFrame
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindArray, (*alias)(f)})
}

func (f *GridFrame) MarshalJSON() ([]byte, error) {
	type alias GridFrame
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindGrid, (*alias)(f)})
}

func (f *IntervalFrame) MarshalJSON() ([]byte, error) {
	type alias IntervalFrame
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindInterval, (*alias)(f)})
}

func (f *GraphFrame) MarshalJSON() ([]byte, error) {
	type alias GraphFrame
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindGraph, (*alias)(f)})
}

func (f *LinkedListFrame) MarshalJSON() ([]byte, error) {
	type alias LinkedListFrame
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindLinkedList, (*alias)(f)})
}

func (f *TrieFrame) MarshalJSON() ([]byte, error) {
	type alias TrieFrame
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindTrie, (*alias)(f)})
}

// DecodeFrame restores one frame from its JSON form.
func DecodeFrame(data []byte) (Frame, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to read frame type: %w", err)
	}

	var f Frame
	switch head.Type {
	case KindArray:
		f = &ArrayFrame{}
	case KindGrid:
		f = &GridFrame{}
	case KindInterval:
		f = &IntervalFrame{}
	case KindGraph:
		f = &GraphFrame{}
	case KindLinkedList:
		f = &LinkedListFrame{}
	case KindTrie:
		f = &TrieFrame{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, head.Type)
	}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to decode %s frame: %w", head.Type, err)
	}
	return f, nil
}

// DecodeFrames restores a JSON array of frames, as written by
// `algoexplorer generate`.
func DecodeFrames(data []byte) ([]Frame, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to read frame list: %w", err)
	}
	out := make([]Frame, 0, len(raw))
	for i, r := range raw {
		f, err := DecodeFrame(r)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}
