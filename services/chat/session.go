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
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

// History persists transcripts per provider and algorithm.
type History interface {
	Load(ctx context.Context, provider string, algo frames.AlgorithmType) ([]Message, error)
	Save(ctx context.Context, provider string, algo frames.AlgorithmType, msgs []Message) error
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	Streamer Streamer

	// History is optional.
	History History

	Logger *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Session is the transcript and request state for one provider and
// algorithm.
type Session struct {
	mu       sync.Mutex
	streamer Streamer
	history  History
	logger   *slog.Logger
	now      func() time.Time

	algo     frames.AlgorithmType
	messages []Message

	// token identifies the request whose chunks may reach the transcript;
	// zero when idle.
	token   uint64
	lastTok uint64
	cancel  context.CancelFunc
}

// NewSession restores the transcript for algo from opts.History, or starts
// one with a greeting.
func NewSession(ctx context.Context, algo frames.AlgorithmType, opts SessionOptions) (*Session, error) {
	if opts.Streamer == nil {
		return nil, errors.New("chat session needs a streamer")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		streamer: opts.Streamer,
		history:  opts.History,
		logger:   opts.Logger.With("component", "chat", "provider", opts.Streamer.Name()),
		now:      opts.Now,
	}
	s.restore(ctx, algo)
	return s, nil
}

func (s *Session) restore(ctx context.Context, algo frames.AlgorithmType) {
	s.algo = algo
	s.messages = nil
	if s.history != nil {
		msgs, err := s.history.Load(ctx, s.streamer.Name(), algo)
		if err != nil {
			s.logger.Warn("failed to restore chat session", "algorithm", algo.Slug(), "error", err)
		}
		s.messages = msgs
	}
	if len(s.messages) == 0 {
		s.messages = []Message{s.newMessage(RoleModel, Greeting(s.streamer.Name(), algo))}
	}
}

func (s *Session) newMessage(role Role, text string) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text, Timestamp: s.now()}
}

// Algorithm returns the algorithm the transcript belongs to.
func (s *Session) Algorithm() frames.AlgorithmType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.algo
}

// Provider returns the streamer label.
func (s *Session) Provider() string { return s.streamer.Name() }

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Busy reports whether a request is streaming.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != 0
}

// Send appends text as a user message and streams the answer into a new
// model message. frame may be nil; otherwise its context text goes with the
// request. onUpdate, when non-nil, receives the model message after every
// accepted chunk.
//
// # Outputs
//
//   - Message: The model message as it stood when the request ended.
//   - error: ErrEmptyMessage, ErrBusy, or a History write error. Backend
//     failures are reported inline through ErrorNotice and cancellation is
//     not an error.
func (s *Session) Send(ctx context.Context, text string, frame frames.Frame, onUpdate func(Message)) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.token != 0 {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	prior := slices.Clone(s.messages)
	user := s.newMessage(RoleUser, text)
	reply := s.newMessage(RoleModel, "")
	s.messages = append(s.messages, user, reply)
	slot := len(s.messages) - 1

	s.lastTok++
	tok := s.lastTok
	s.token = tok
	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	algo := s.algo
	s.mu.Unlock()
	defer cancel()

	req := Request{History: prior, Message: text, Algorithm: algo, FrameContext: frames.ContextText(frame)}

	// apply appends delta to the reply while tok is still the live request.
	apply := func(delta string) (Message, bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.token != tok {
			return Message{}, false
		}
		s.messages[slot].Text += delta
		return s.messages[slot], true
	}

	err := s.streamer.Stream(reqCtx, req, func(chunk string) {
		if msg, ok := apply(chunk); ok && onUpdate != nil {
			onUpdate(msg)
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) && reqCtx.Err() == nil {
		s.logger.Warn("chat stream failed", "algorithm", algo.Slug(), "error", err)
		if msg, ok := apply(ErrorNotice); ok && onUpdate != nil {
			onUpdate(msg)
		}
	}

	s.mu.Lock()
	live := s.token == tok
	if live {
		s.token = 0
		s.cancel = nil
	}
	final := reply
	if slot < len(s.messages) && s.messages[slot].ID == reply.ID {
		final = s.messages[slot]
	}
	s.mu.Unlock()

	if !live {
		s.logger.Debug("saving stopped exchange", "algorithm", algo.Slug())
	}
	// A stopped exchange is saved too; the caller's ctx may already be done.
	return final, s.persist(context.WithoutCancel(ctx))
}

// Stop abandons the in-flight request. Text that arrives after Stop is
// discarded. It reports whether a request was running.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == 0 {
		return false
	}
	s.token = 0
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.logger.Debug("chat stream stopped", "algorithm", s.algo.Slug())
	return true
}

// Switch stops any request, saves the transcript and loads the one for
// algo.
func (s *Session) Switch(ctx context.Context, algo frames.AlgorithmType) error {
	s.Stop()
	err := s.persist(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(ctx, algo)
	return err
}

// Clear replaces the transcript with a fresh greeting.
func (s *Session) Clear(ctx context.Context) error {
	s.Stop()
	s.mu.Lock()
	s.messages = []Message{s.newMessage(RoleModel, Greeting(s.streamer.Name(), s.algo))}
	s.mu.Unlock()
	return s.persist(ctx)
}

// Save writes the transcript as it stands, including a partial answer left
// by Stop. It is a no-op without a History.
func (s *Session) Save(ctx context.Context) error { return s.persist(ctx) }

func (s *Session) persist(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	s.mu.Lock()
	algo, msgs := s.algo, slices.Clone(s.messages)
	s.mu.Unlock()
	return s.history.Save(ctx, s.streamer.Name(), algo, msgs)
}
