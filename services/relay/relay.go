// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package relay forwards chat completion requests to the OpenAI API so the
// API key never leaves the server.
//
// # Description
//
// The relay answers CORS preflights, rejects non-POST methods, injects the
// bearer credential and streams the upstream response back as it arrives.
// Status code, content type and body are passed through unchanged.
//
// RouteLive upgrades to a websocket that streams live playback of any
// algorithm; see package live. Browser clients must come from the allowed
// origin.
//
// # Thread Safety
//
// A Server is safe for concurrent use. Reload swaps the allowed origin and
// the rate limiter atomically; requests in flight keep the settings they
// started with.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/awnumar/memguard"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AlgoExplorer/services/live"
	"github.com/AleutianAI/AlgoExplorer/services/observability"
	"github.com/AleutianAI/AlgoExplorer/services/player"
)

// Routes served by the relay.
const (
	RouteChatGPT     = "/api/chatgpt"
	RouteCompletions = "/v1/chat/completions"
	RouteLive        = "/ws/play"
)

// DefaultUpstream is the OpenAI chat completions endpoint.
const DefaultUpstream = "https://api.openai.com/v1/chat/completions"

// maxBodyBytes caps the request body read from clients.
const maxBodyBytes = 1 << 20

// Config holds the relay settings.
type Config struct {
	Port          int    `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
	Upstream      string `yaml:"upstream"`

	// RatePerSecond is the sustained request rate. Zero or less disables
	// limiting.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// DefaultConfig mirrors the standalone server defaults.
func DefaultConfig() Config {
	return Config{
		Port:          8787,
		AllowedOrigin: "http://localhost:3000",
		Upstream:      DefaultUpstream,
		RatePerSecond: 2,
		Burst:         10,
	}
}

// settings is the hot-reloadable part of Config.
type settings struct {
	origin  string
	limiter *rate.Limiter
}

func newSettings(cfg Config) *settings {
	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = DefaultConfig().AllowedOrigin
	}
	limit := rate.Inf
	burst := max(cfg.Burst, 1)
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &settings{origin: origin, limiter: rate.NewLimiter(limit, burst)}
}

// Credential holds the API key in an encrypted memguard enclave.
type Credential struct {
	enclave *memguard.Enclave
}

// NewCredential seals key. It returns nil for an empty key.
func NewCredential(key string) *Credential {
	if key == "" {
		return nil
	}
	return &Credential{enclave: memguard.NewEnclave([]byte(key))}
}

// bearer opens the enclave just long enough to format the header value.
func (c *Credential) bearer() (string, error) {
	buf, err := c.enclave.Open()
	if err != nil {
		return "", fmt.Errorf("open credential enclave: %w", err)
	}
	defer buf.Destroy()
	return "Bearer " + buf.String(), nil
}

// Options configures New.
type Options struct {
	Config Config

	// APIKey is sealed into a Credential. Empty makes every completion
	// request fail with 500.
	APIKey string

	HTTPClient *http.Client

	// Registry receives the relay metrics and backs /metrics. Nil uses a
	// fresh registry.
	Registry *prometheus.Registry

	// PlaybackClock drives live playback sessions. Nil uses the wall clock.
	PlaybackClock player.Clock

	Logger *slog.Logger
}

// Server is the relay. Construct with New.
type Server struct {
	settings atomic.Pointer[settings]
	cred     *Credential
	upstream string
	port     int
	client   *http.Client
	metrics  *observability.RelayMetrics
	registry *prometheus.Registry
	logger   *slog.Logger
	live     *live.Handler
	engine   *gin.Engine
}

// New builds the relay and its gin router.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg.Upstream == "" {
		cfg.Upstream = DefaultUpstream
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultConfig().Port
	}
	if opts.HTTPClient == nil {
		// No overall timeout; the client's context bounds streamed answers.
		opts.HTTPClient = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 2 * time.Minute,
		}}
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		cred:     NewCredential(opts.APIKey),
		upstream: cfg.Upstream,
		port:     cfg.Port,
		client:   opts.HTTPClient,
		metrics:  observability.NewRelayMetrics(opts.Registry),
		registry: opts.Registry,
		logger:   opts.Logger.With("component", "relay"),
	}
	s.settings.Store(newSettings(cfg))
	s.live = live.NewHandler(live.Options{
		CheckOrigin: s.originAllowed,
		Clock:       opts.PlaybackClock,
		Sessions:    s.metrics.LiveSessions,
		Logger:      s.logger,
	})
	s.engine = s.routes()
	return s
}

// Reload applies the hot-reloadable fields of cfg: allowed origin and rate
// limit.
func (s *Server) Reload(cfg Config) {
	next := newSettings(cfg)
	s.settings.Store(next)
	s.logger.Info("relay settings reloaded", "allowed_origin", next.origin, "rate_per_second", cfg.RatePerSecond)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("algoexplorer-relay"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "credential": s.cred != nil})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.Any(RouteChatGPT, s.handleCompletion(RouteChatGPT))
	r.Any(RouteCompletions, s.handleCompletion(RouteCompletions))
	r.GET(RouteLive, gin.WrapH(s.live))
	r.NoRoute(func(c *gin.Context) {
		s.writeCORS(c, s.settings.Load())
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

// originAllowed admits non-browser clients and the configured origin.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := s.settings.Load().origin
	return allowed == "*" || origin == allowed
}

func (s *Server) writeCORS(c *gin.Context, st *settings) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", st.origin)
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) fail(c *gin.Context, status int, code observability.ErrorCode, msg string) {
	s.metrics.RecordError(code)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) handleCompletion(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := s.settings.Load()
		s.writeCORS(c, st)
		defer func() { s.metrics.RecordRequest(route, c.Writer.Status()) }()

		switch {
		case c.Request.Method == http.MethodOptions:
			c.Status(http.StatusNoContent)
			c.Writer.WriteHeaderNow()
			return
		case c.Request.Method != http.MethodPost:
			s.fail(c, http.StatusMethodNotAllowed, observability.ErrorCodeMethod, "Method not allowed")
			return
		case s.cred == nil:
			s.fail(c, http.StatusInternalServerError, observability.ErrorCodeMissingKey, "OPENAI_API_KEY is missing")
			return
		case !st.limiter.Allow():
			c.Header("Retry-After", "1")
			s.fail(c, http.StatusTooManyRequests, observability.ErrorCodeRateLimited, "Too many requests")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			s.fail(c, http.StatusBadRequest, observability.ErrorCodeBadRequest, "Request body too large or unreadable")
			return
		}
		if len(bytes.TrimSpace(body)) == 0 {
			body = []byte("{}")
		}
		if !json.Valid(body) {
			s.fail(c, http.StatusBadRequest, observability.ErrorCodeBadRequest, "Invalid JSON body")
			return
		}

		s.proxy(c, body)
	}
}

func (s *Server) proxy(c *gin.Context, body []byte) {
	ctx := c.Request.Context()
	start := time.Now()

	auth, err := s.cred.bearer()
	if err != nil {
		s.logger.Error("credential unavailable", "error", err)
		s.fail(c, http.StatusInternalServerError, observability.ErrorCodeSecretAccess, "Upstream request failed")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.upstream, bytes.NewReader(body))
	if err != nil {
		s.fail(c, http.StatusInternalServerError, observability.ErrorCodeUpstream, "Upstream request failed")
		return
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("upstream request failed", "error", err)
		s.metrics.RecordUpstreamDuration(time.Since(start), false)
		s.fail(c, http.StatusInternalServerError, observability.ErrorCodeUpstream, "Upstream request failed")
		return
	}
	defer resp.Body.Close()
	s.metrics.RecordFirstByte(time.Since(start))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Header("Content-Type", contentType)
	c.Status(resp.StatusCode)
	c.Writer.WriteHeaderNow()

	s.metrics.StreamStarted()
	defer s.metrics.StreamEnded()

	err = copyFlushing(c.Writer, resp.Body)
	s.metrics.RecordUpstreamDuration(time.Since(start), err == nil && resp.StatusCode < 400)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		s.metrics.RecordClientDisconnect()
		s.logger.Debug("client disconnected mid-stream")
	default:
		s.metrics.RecordError(observability.ErrorCodeStreamCopy)
		s.logger.Warn("stream copy failed", "error", err)
	}
}

// copyFlushing copies src to w, flushing after every read so streamed
// events reach the client without buffering.
func copyFlushing(w gin.ResponseWriter, src io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			w.Flush()
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("relay listening", "addr", "http://localhost:"+strconv.Itoa(s.port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("relay server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("relay shutdown: %w", err)
		}
		return nil
	}
}
