// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/services/chat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_TranscriptRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	msgs, err := s.Load(ctx, "ChatGPT", frames.BubbleSort)
	require.NoError(t, err)
	assert.Nil(t, msgs)

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	want := []chat.Message{
		{ID: "a", Role: chat.RoleModel, Text: "Hello!", Timestamp: ts},
		{ID: "b", Role: chat.RoleUser, Text: "Why O(n^2)?", Timestamp: ts},
	}
	require.NoError(t, s.Save(ctx, "ChatGPT", frames.BubbleSort, want))

	got, err := s.Load(ctx, "ChatGPT", frames.BubbleSort)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := s.Load(ctx, "Ollama", frames.BubbleSort)
	require.NoError(t, err)
	assert.Nil(t, other, "transcripts are per provider")
}

func TestStore_Draft(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SetDraft(ctx, "ChatGPT", frames.Trie, "what is a prefix"))
	d, err := s.Draft(ctx, "ChatGPT", frames.Trie)
	require.NoError(t, err)
	assert.Equal(t, "what is a prefix", d)

	require.NoError(t, s.SetDraft(ctx, "ChatGPT", frames.Trie, ""))
	d, err = s.Draft(ctx, "ChatGPT", frames.Trie)
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestStore_Provider(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.Provider(ctx)
	require.NoError(t, err)
	assert.Empty(t, p)

	require.NoError(t, s.SetProvider(ctx, "ollama"))
	p, err = s.Provider(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ollama", p)
}

func TestStore_CancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.SetProvider(ctx, "x"), context.Canceled)
	_, err := s.Load(ctx, "x", frames.DFS)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestOpen_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(DefaultConfig(dir))
	require.NoError(t, err)
	require.NoError(t, s.SetProvider(ctx, "ChatGPT"))
	require.NoError(t, s.Close())

	s, err = Open(DefaultConfig(dir))
	require.NoError(t, err)
	defer s.Close()
	p, err := s.Provider(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ChatGPT", p)
}

type cannedStreamer struct{ chunks []string }

func (c cannedStreamer) Name() string { return "Canned" }

func (c cannedStreamer) Stream(_ context.Context, _ chat.Request, onChunk chat.ChunkFunc) error {
	for _, s := range c.chunks {
		onChunk(s)
	}
	return nil
}

func TestStore_BacksSession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	opts := chat.SessionOptions{Streamer: cannedStreamer{chunks: []string{"Because ", "it swaps."}}, History: store}

	s, err := chat.NewSession(ctx, frames.BubbleSort, opts)
	require.NoError(t, err)
	_, err = s.Send(ctx, "Why?", nil, nil)
	require.NoError(t, err)

	restored, err := chat.NewSession(ctx, frames.BubbleSort, opts)
	require.NoError(t, err)
	msgs := restored.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Because it swaps.", msgs[2].Text)

	fresh, err := chat.NewSession(ctx, frames.QuickSort, opts)
	require.NoError(t, err)
	assert.Len(t, fresh.Messages(), 1)
}
