// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// scriptStreamer emits chunks, optionally waiting on release first, and
// returns err.
type scriptStreamer struct {
	chunks      []string
	err         error
	started     chan struct{}
	release     chan struct{}
	ignoreCtx   bool
	mu          sync.Mutex
	lastRequest Request
}

func (s *scriptStreamer) Name() string { return "Script" }

func (s *scriptStreamer) Stream(ctx context.Context, req Request, onChunk ChunkFunc) error {
	s.mu.Lock()
	s.lastRequest = req
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		if s.ignoreCtx {
			<-s.release
		} else {
			select {
			case <-s.release:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	for _, c := range s.chunks {
		onChunk(c)
	}
	return s.err
}

func (s *scriptStreamer) request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequest
}

type memHistory struct {
	mu    sync.Mutex
	saved map[string][]Message
}

func (m *memHistory) key(p string, a frames.AlgorithmType) string { return p + "/" + a.Slug() }

func (m *memHistory) Load(_ context.Context, p string, a frames.AlgorithmType) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[m.key(p, a)], nil
}

func (m *memHistory) Save(_ context.Context, p string, a frames.AlgorithmType, msgs []Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string][]Message{}
	}
	m.saved[m.key(p, a)] = msgs
	return nil
}

func newSession(t *testing.T, s Streamer, h History) *Session {
	t.Helper()
	sess, err := NewSession(context.Background(), frames.BinarySearch, SessionOptions{Streamer: s, History: h})
	require.NoError(t, err)
	return sess
}

func TestSystemInstruction(t *testing.T) {
	plain := SystemInstruction(frames.BinarySearch, "")
	assert.Contains(t, plain, "You are Algo, a friendly and expert algorithm tutor.")
	assert.Contains(t, plain, "The user is currently visualizing the Binary Search algorithm.")
	assert.NotContains(t, plain, "CONTEXT")

	withCtx := SystemInstruction(frames.BinarySearch, "Current Visualization Step:")
	assert.Contains(t, withCtx, "CONTEXT - The user is currently looking at this specific step in the visualization:\nCurrent Visualization Step:\nUse this context")
	assert.Contains(t, withCtx, `Focus on the conceptual "why" and "how".`)
}

func TestNewSession_Greeting(t *testing.T) {
	sess := newSession(t, &scriptStreamer{}, nil)
	msgs := sess.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleModel, msgs[0].Role)
	assert.Equal(t, Greeting("Script", frames.BinarySearch), msgs[0].Text)
	assert.Contains(t, msgs[0].Text, "**Binary Search**")
	assert.NotEmpty(t, msgs[0].ID)
}

func TestNewSession_RequiresStreamer(t *testing.T) {
	_, err := NewSession(context.Background(), frames.DFS, SessionOptions{})
	assert.Error(t, err)
}

func TestSend_AccumulatesChunks(t *testing.T) {
	st := &scriptStreamer{chunks: []string{"Mid ", "is ", "4."}}
	sess := newSession(t, st, nil)
	frame := &frames.ArrayFrame{Array: []int{1, 2}, Mid: frames.Int(1), Step: frames.Step{Description: "Checking"}}

	var updates []string
	reply, err := sess.Send(context.Background(), "Where is mid?", frame, func(m Message) {
		updates = append(updates, m.Text)
	})
	require.NoError(t, err)
	assert.Equal(t, "Mid is 4.", reply.Text)
	assert.Equal(t, []string{"Mid ", "Mid is ", "Mid is 4."}, updates)

	msgs := sess.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "Where is mid?", msgs[1].Text)
	assert.Equal(t, reply, msgs[2])

	req := st.request()
	assert.Len(t, req.History, 1, "history excludes the new turn")
	assert.Equal(t, "Where is mid?", req.Message)
	assert.Equal(t, frames.BinarySearch, req.Algorithm)
	assert.Equal(t, frames.ContextText(frame), req.FrameContext)
	assert.False(t, sess.Busy())
}

func TestSend_EmptyMessage(t *testing.T) {
	sess := newSession(t, &scriptStreamer{}, nil)
	_, err := sess.Send(context.Background(), "   ", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, sess.Messages(), 1)
}

func TestSend_BusyWhileStreaming(t *testing.T) {
	st := &scriptStreamer{started: make(chan struct{}), release: make(chan struct{})}
	sess := newSession(t, st, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sess.Send(context.Background(), "first", nil, nil)
	}()
	<-st.started
	assert.True(t, sess.Busy())

	_, err := sess.Send(context.Background(), "second", nil, nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(st.release)
	<-done
	assert.False(t, sess.Busy())
}

func TestStop_DiscardsLateChunks(t *testing.T) {
	st := &scriptStreamer{
		chunks:    []string{"late"},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
		ignoreCtx: true,
	}
	sess := newSession(t, st, nil)

	var mu sync.Mutex
	var updates int
	done := make(chan Message)
	go func() {
		reply, err := sess.Send(context.Background(), "explain", nil, func(Message) {
			mu.Lock()
			updates++
			mu.Unlock()
		})
		assert.NoError(t, err)
		done <- reply
	}()
	<-st.started

	assert.True(t, sess.Stop())
	assert.False(t, sess.Stop())
	assert.False(t, sess.Busy())
	close(st.release)

	select {
	case reply := <-done:
		assert.Empty(t, reply.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("Send did not return")
	}
	mu.Lock()
	assert.Zero(t, updates)
	mu.Unlock()
	assert.Empty(t, sess.Messages()[2].Text)
}

func TestStop_CancellationIsNotAnError(t *testing.T) {
	st := &scriptStreamer{started: make(chan struct{}), release: make(chan struct{})}
	sess := newSession(t, st, nil)

	done := make(chan Message)
	go func() {
		reply, _ := sess.Send(context.Background(), "explain", nil, nil)
		done <- reply
	}()
	<-st.started
	sess.Stop()
	reply := <-done
	assert.NotContains(t, reply.Text, ErrorNotice)
}

func TestSend_TransportErrorBecomesInlineNotice(t *testing.T) {
	st := &scriptStreamer{chunks: []string{"Partial"}, err: errors.New("connection reset")}
	sess := newSession(t, st, nil)

	reply, err := sess.Send(context.Background(), "hi", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Partial"+ErrorNotice, reply.Text)
}

func TestSend_NextRequestAfterStop(t *testing.T) {
	first := &scriptStreamer{started: make(chan struct{}), release: make(chan struct{})}
	sess := newSession(t, first, nil)
	go func() { _, _ = sess.Send(context.Background(), "one", nil, nil) }()
	<-first.started
	sess.Stop()

	sess.streamer = &scriptStreamer{chunks: []string{"two"}}
	reply, err := sess.Send(context.Background(), "again", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "two", reply.Text)
}

func TestSession_PersistsAndSwitches(t *testing.T) {
	h := &memHistory{}
	st := &scriptStreamer{chunks: []string{"O(log n)"}}
	sess := newSession(t, st, h)

	_, err := sess.Send(context.Background(), "complexity?", nil, nil)
	require.NoError(t, err)
	saved, _ := h.Load(context.Background(), "Script", frames.BinarySearch)
	require.Len(t, saved, 3)

	require.NoError(t, sess.Switch(context.Background(), frames.MergeSort))
	assert.Equal(t, frames.MergeSort, sess.Algorithm())
	assert.Len(t, sess.Messages(), 1)

	require.NoError(t, sess.Switch(context.Background(), frames.BinarySearch))
	assert.Len(t, sess.Messages(), 3)

	require.NoError(t, sess.Clear(context.Background()))
	assert.Len(t, sess.Messages(), 1)
	saved, _ = h.Load(context.Background(), "Script", frames.BinarySearch)
	assert.Len(t, saved, 1)
}

func TestNewStreamer(t *testing.T) {
	_, err := NewStreamer(Config{Provider: "gemini"}, nil)
	assert.Error(t, err)

	_, err = NewStreamer(Config{}, nil)
	assert.Error(t, err, "openai needs a key or a relay")

	s, err := NewStreamer(Config{OpenAI: OpenAIConfig{BaseURL: "http://localhost:8787/v1"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ChatGPT", s.Name())

	s, err = NewStreamer(Config{Provider: "ollama", Ollama: OllamaConfig{BaseURL: "http://localhost:11434"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ollama", s.Name())

	_, err = NewStreamer(Config{Provider: "ollama"}, nil)
	assert.Error(t, err)
}

// halfStreamer sends one chunk and then waits for cancellation.
type halfStreamer struct {
	sent chan struct{}
}

func (s *halfStreamer) Name() string { return "Half" }

func (s *halfStreamer) Stream(ctx context.Context, _ Request, onChunk ChunkFunc) error {
	onChunk("Partly")
	close(s.sent)
	<-ctx.Done()
	return ctx.Err()
}

func TestSend_StoppedExchangeIsSaved(t *testing.T) {
	h := &memHistory{}
	st := &halfStreamer{sent: make(chan struct{})}
	sess := newSession(t, st, h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		_, err := sess.Send(ctx, "how far?", nil, nil)
		done <- err
	}()
	<-st.sent
	require.True(t, sess.Stop())
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Send did not return")
	}

	saved, err := h.Load(context.Background(), "Half", frames.BinarySearch)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, RoleUser, saved[1].Role)
	assert.Equal(t, "how far?", saved[1].Text)
	assert.Equal(t, "Partly", saved[2].Text)
}

func TestSave_WritesPartialAnswerBeforeSendReturns(t *testing.T) {
	h := &memHistory{}
	st := &halfStreamer{sent: make(chan struct{})}
	sess := newSession(t, st, h)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sess.Send(context.Background(), "and now?", nil, nil)
	}()
	<-st.sent
	sess.Stop()
	require.NoError(t, sess.Save(context.Background()))

	saved, _ := h.Load(context.Background(), "Half", frames.BinarySearch)
	require.Len(t, saved, 3)
	assert.Equal(t, "Partly", saved[2].Text)
	<-done
}
