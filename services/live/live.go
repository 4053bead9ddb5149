// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package live streams algorithm playback over a websocket.
//
// A client connects to the handler with the algorithm slug in the query
// string. The server generates the frames, drives a player.Player on its own
// clock and pushes one Update per player event. The client steers playback
// by sending Command messages.
//
// # Wire format
//
//	GET /ws/play?algo=bubble-sort&seed=7&speed=300
//
//	server → client  {"type":"session","session":"…","algorithm":"bubble-sort","total":42,…}
//	server → client  {"type":"frame","index":0,"total":42,"playing":false,"speedMs":300,"frame":{…}}
//	client → server  {"op":"play"}
//	client → server  {"op":"seek","index":10}
//	client → server  {"op":"speed","ms":150}
//	server → client  {"type":"error","error":"index out of range"}
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/services/generator"
	"github.com/AleutianAI/AlgoExplorer/services/player"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxReadBytes = 4096
	outboxSize   = 32
)

// Update types.
const (
	TypeSession = "session"
	TypeFrame   = "frame"
	TypeState   = "state"
	TypeError   = "error"
)

// Command ops.
const (
	OpPlay   = "play"
	OpPause  = "pause"
	OpToggle = "toggle"
	OpStep   = "step"
	OpBack   = "back"
	OpSeek   = "seek"
	OpReset  = "reset"
	OpSpeed  = "speed"
	OpNew    = "new"
)

// Command is a client request.
type Command struct {
	Op    string `json:"op"`
	Index int    `json:"index,omitempty"`
	MS    int    `json:"ms,omitempty"`
}

// Update is a server message.
type Update struct {
	Type      string       `json:"type"`
	Session   string       `json:"session,omitempty"`
	Algorithm string       `json:"algorithm,omitempty"`
	Index     int          `json:"index"`
	Total     int          `json:"total"`
	Playing   bool         `json:"playing"`
	SpeedMS   int64        `json:"speedMs"`
	Frame     frames.Frame `json:"frame,omitempty"`
	Error     string       `json:"error,omitempty"`
}

func stateUpdate(typ string, st player.State) Update {
	return Update{
		Type:    typ,
		Index:   st.Index,
		Total:   st.Len,
		Playing: st.Playing,
		SpeedMS: st.Speed.Milliseconds(),
	}
}

// Options configures NewHandler.
type Options struct {
	// CheckOrigin decides whether a browser origin may connect. Nil
	// accepts only same-host requests, the gorilla default.
	CheckOrigin func(r *http.Request) bool

	// Clock drives every session's player. Nil uses the wall clock.
	Clock player.Clock

	// Sessions tracks open sessions. Optional.
	Sessions prometheus.Gauge

	Logger *slog.Logger
}

// Handler upgrades playback requests. Construct with NewHandler.
type Handler struct {
	upgrader websocket.Upgrader
	clock    player.Clock
	sessions prometheus.Gauge
	logger   *slog.Logger
}

// NewHandler builds a Handler.
func NewHandler(opts Options) *Handler {
	if opts.Clock == nil {
		opts.Clock = player.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		clock:    opts.Clock,
		sessions: opts.Sessions,
		logger:   opts.Logger.With("component", "live"),
	}
}

// request is the parsed query string.
type request struct {
	algo  frames.AlgorithmType
	seed  uint64
	speed time.Duration
}

func parseRequest(r *http.Request) (request, error) {
	q := r.URL.Query()
	algo, err := frames.ParseAlgorithm(q.Get("algo"))
	if err != nil {
		return request{}, err
	}
	req := request{algo: algo, speed: player.DefaultSpeed}
	if s := q.Get("seed"); s != "" {
		if req.seed, err = strconv.ParseUint(s, 10, 64); err != nil {
			return request{}, fmt.Errorf("invalid seed %q", s)
		}
	}
	if s := q.Get("speed"); s != "" {
		ms, err := strconv.Atoi(s)
		if err != nil || ms <= 0 {
			return request{}, fmt.Errorf("invalid speed %q", s)
		}
		req.speed = time.Duration(ms) * time.Millisecond
	}
	return req, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func generate(ctx context.Context, algo frames.AlgorithmType, rng *rand.Rand) ([]frames.Frame, error) {
	in, err := generator.RandomInput(algo, rng)
	if err != nil {
		return nil, err
	}
	return generator.Generate(ctx, algo, in)
}

// ServeHTTP validates the query, generates the first sequence and then
// upgrades. Errors before the upgrade are plain HTTP 400s.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rng := newRand(req.seed)
	fs, err := generate(r.Context(), req.algo, rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if h.sessions != nil {
		h.sessions.Inc()
		defer h.sessions.Dec()
	}

	id := uuid.NewString()
	s := &session{
		id:     id,
		algo:   req.algo,
		conn:   conn,
		rng:    rng,
		out:    make(chan Update, outboxSize),
		done:   make(chan struct{}),
		logger: h.logger.With("session", id, "algorithm", req.algo.Slug()),
	}
	s.player = player.New(player.Options{Speed: req.speed, Clock: h.clock, Logger: s.logger})
	s.run(r.Context(), fs)
}

// session is one websocket connection and its player.
type session struct {
	id     string
	algo   frames.AlgorithmType
	conn   *websocket.Conn
	player *player.Player
	rng    *rand.Rand

	// out feeds the single writer goroutine. done closes when the read
	// loop exits so blocked senders give up.
	out      chan Update
	done     chan struct{}
	doneOnce sync.Once

	logger *slog.Logger
}

func (s *session) run(ctx context.Context, fs []frames.Frame) {
	s.logger.Info("live session opened", "frames", len(fs))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop()
	}()

	// Hijacked connections outlive server shutdown unless closed here.
	stopClose := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stopClose()

	s.send(Update{Type: TypeSession, Session: s.id, Algorithm: s.algo.Slug(), Total: len(fs)})
	unsubscribe := s.player.Subscribe(s.observe)
	s.player.Load(fs)

	s.readLoop(ctx)

	s.player.Pause()
	unsubscribe()
	s.stop()
	wg.Wait()
	s.logger.Info("live session closed")
}

func (s *session) stop() { s.doneOnce.Do(func() { close(s.done) }) }

// send queues u for the writer. It blocks while the outbox is full so
// frame updates are never dropped, and gives up once the session ends.
func (s *session) send(u Update) {
	select {
	case s.out <- u:
	case <-s.done:
	}
}

func (s *session) sendError(err error) {
	s.send(Update{Type: TypeError, Error: err.Error()})
}

func (s *session) observe(ev player.Event) {
	switch ev.Kind {
	case player.EventFrame:
		u := stateUpdate(TypeFrame, ev.State)
		u.Frame = ev.Frame
		s.send(u)
	case player.EventState:
		s.send(stateUpdate(TypeState, ev.State))
	}
}

func (s *session) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case u := <-s.out:
			if err := s.write(u); err != nil {
				s.logger.Debug("live write failed", "error", err)
				s.stop()
				// Unblock the read loop.
				_ = s.conn.Close()
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(writeWait)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.stop()
				_ = s.conn.Close()
				return
			}
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

func (s *session) write(u Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode %s update: %w", u.Type, err)
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(maxReadBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("live read failed", "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			s.sendError(fmt.Errorf("malformed command: %w", err))
			continue
		}
		if err := s.apply(ctx, cmd); err != nil {
			s.sendError(err)
		}
	}
}

// ErrUnknownOp is returned for a command with an unrecognized op.
var ErrUnknownOp = errors.New("unknown op")

func (s *session) apply(ctx context.Context, cmd Command) error {
	p := s.player
	switch cmd.Op {
	case OpPlay:
		p.Play()
	case OpPause:
		p.Pause()
	case OpToggle:
		p.Toggle()
	case OpStep:
		p.StepForward()
	case OpBack:
		p.StepBack()
	case OpReset:
		p.Reset()
	case OpSeek:
		return p.Seek(cmd.Index)
	case OpSpeed:
		if cmd.MS <= 0 {
			return fmt.Errorf("speed must be positive, got %d", cmd.MS)
		}
		p.SetSpeed(time.Duration(cmd.MS) * time.Millisecond)
		s.send(stateUpdate(TypeState, p.State()))
	case OpNew:
		fs, err := generate(ctx, s.algo, s.rng)
		if err != nil {
			return err
		}
		s.send(Update{Type: TypeSession, Session: s.id, Algorithm: s.algo.Slug(), Total: len(fs)})
		p.Load(fs)
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, cmd.Op)
	}
	return nil
}
