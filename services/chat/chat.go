// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package chat streams tutor answers about the visualization the user is
// looking at.
//
// # Description
//
// A Streamer sends one conversation turn to a completion backend and hands
// back text deltas as they arrive. A Session owns the transcript for one
// provider and algorithm, runs at most one request at a time and supports
// cancelling it: once Stop returns, no further text from the cancelled
// request reaches the transcript.
//
// # Thread Safety
//
// Streamers are safe for concurrent use. Session methods are safe for
// concurrent use; update callbacks run on the goroutine that called Send.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Request is one conversation turn.
type Request struct {
	// History is the transcript before this turn, oldest first.
	History []Message

	// Message is the new user text.
	Message string

	Algorithm frames.AlgorithmType

	// FrameContext describes the current frame; see frames.ContextText.
	FrameContext string
}

// ChunkFunc receives text deltas in arrival order.
type ChunkFunc func(text string)

// Streamer is a completion backend.
//
// Stream returns nil when the backend finished the answer. When ctx is
// cancelled it stops calling onChunk and returns ctx.Err() (possibly
// wrapped). Any other failure is returned as an error.
type Streamer interface {
	Stream(ctx context.Context, req Request, onChunk ChunkFunc) error

	// Name is the provider label shown to the user.
	Name() string
}

var (
	// ErrBusy is returned by Send while another request is in flight.
	ErrBusy = errors.New("a response is already streaming")

	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUpstreamStatus is wrapped when a backend answers with a non-2xx
	// status.
	ErrUpstreamStatus = errors.New("upstream returned an error status")
)

// ErrorNotice is appended to the answer when the backend fails.
const ErrorNotice = "\n(I encountered an error connecting to the knowledge base.)"

// DefaultModel is the OpenAI model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// SystemInstruction builds the tutor persona prompt for algo. frameContext
// is embedded only when non-empty.
func SystemInstruction(algo frames.AlgorithmType, frameContext string) string {
	var b strings.Builder
	b.WriteString("\nYou are Algo, a friendly and expert algorithm tutor.\n")
	fmt.Fprintf(&b, "The user is currently visualizing the %s algorithm.\n", algo)
	b.WriteString("Your goal is to help them understand how it works, explain concepts like time complexity,\n")
	b.WriteString("space complexity, and real-world applications.\n\n")
	if frameContext != "" {
		b.WriteString("CONTEXT - The user is currently looking at this specific step in the visualization:\n")
		b.WriteString(frameContext)
		b.WriteString("\nUse this context to explain exactly what is happening right now if the user asks.")
	}
	b.WriteString("\n\nKeep explanations concise, encouraging, and easy to understand.\n")
	b.WriteString("Do not write code unless asked. Focus on the conceptual \"why\" and \"how\".\n")
	return b.String()
}

// Greeting is the first model message of a fresh transcript.
func Greeting(provider string, algo frames.AlgorithmType) string {
	return fmt.Sprintf("Hello! I'm your AI tutor (%s). I can explain how **%s** works, "+
		"analyze its time complexity, or help you understand the current visualization step. Ask me anything!",
		provider, algo)
}

// wireRole maps transcript roles onto the completion API roles.
func wireRole(r Role) string {
	if r == RoleModel {
		return "assistant"
	}
	return "user"
}
