// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package relay

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AlgoExplorer/services/live"
	"github.com/AleutianAI/AlgoExplorer/services/player"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstreamCall struct {
	auth string
	body string
}

func newUpstream(t *testing.T, status int, contentType, body string) (*httptest.Server, *upstreamCall) {
	t.Helper()
	call := &upstreamCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call.auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		call.body = string(b)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, call
}

func newTestServer(t *testing.T, upstream, key string) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Upstream = upstream
	cfg.RatePerSecond = 0
	return New(Options{Config: cfg, APIKey: key})
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestRelay_Preflight(t *testing.T) {
	s := newTestServer(t, "http://unused", "sk-test")
	for _, route := range []string{RouteChatGPT, RouteCompletions} {
		w := do(s, http.MethodOptions, route, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Empty(t, w.Body.String())
	}
}

func TestRelay_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, "http://unused", "sk-test")
	w := do(s, http.MethodGet, RouteChatGPT, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRelay_MissingKey(t *testing.T) {
	s := newTestServer(t, "http://unused", "")
	w := do(s, http.MethodPost, RouteChatGPT, `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"OPENAI_API_KEY is missing"}`, w.Body.String())
}

func TestRelay_InvalidJSON(t *testing.T) {
	up, call := newUpstream(t, http.StatusOK, "application/json", `{}`)
	s := newTestServer(t, up.URL, "sk-test")
	w := do(s, http.MethodPost, RouteChatGPT, `{"model":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, call.auth, "upstream must not be called")
}

func TestRelay_PassesThroughStreaming(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\ndata: [DONE]\n\n"
	up, call := newUpstream(t, http.StatusOK, "text/event-stream", stream)
	s := newTestServer(t, up.URL, "sk-test")

	payload := `{"model":"gpt-4o-mini","stream":true,"messages":[]}`
	w := do(s, http.MethodPost, RouteChatGPT, payload)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, stream, w.Body.String())
	assert.Equal(t, "Bearer sk-test", call.auth)
	assert.JSONEq(t, payload, call.body)
	assert.True(t, w.Flushed)
}

func TestRelay_PassesThroughUpstreamStatus(t *testing.T) {
	up, _ := newUpstream(t, http.StatusUnauthorized, "", `{"error":{"message":"bad key"}}`)
	s := newTestServer(t, up.URL, "sk-bad")
	w := do(s, http.MethodPost, RouteCompletions, `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `{"error":{"message":"bad key"}}`, w.Body.String())
}

func TestRelay_EmptyBodyBecomesObject(t *testing.T) {
	up, call := newUpstream(t, http.StatusOK, "application/json", `{}`)
	s := newTestServer(t, up.URL, "sk-test")
	w := do(s, http.MethodPost, RouteChatGPT, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{}", call.body)
}

func TestRelay_UpstreamFailure(t *testing.T) {
	up := httptest.NewServer(http.NotFoundHandler())
	url := up.URL
	up.Close()

	s := newTestServer(t, url, "sk-test")
	w := do(s, http.MethodPost, RouteChatGPT, `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Upstream request failed"}`, w.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.ErrorsTotal.WithLabelValues("upstream")))
}

func TestRelay_RateLimit(t *testing.T) {
	up, _ := newUpstream(t, http.StatusOK, "application/json", `{}`)
	cfg := DefaultConfig()
	cfg.Upstream = up.URL
	cfg.RatePerSecond = 0.001
	cfg.Burst = 2
	s := New(Options{Config: cfg, APIKey: "sk-test"})

	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, RouteChatGPT, `{}`).Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, RouteChatGPT, `{}`).Code)
	w := do(s, http.MethodPost, RouteChatGPT, `{}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RateLimitedTotal))

	// Preflights are never limited.
	assert.Equal(t, http.StatusNoContent, do(s, http.MethodOptions, RouteChatGPT, "").Code)

	cfg.RatePerSecond = 0
	s.Reload(cfg)
	assert.Equal(t, http.StatusOK, do(s, http.MethodPost, RouteChatGPT, `{}`).Code)
}

func TestRelay_MissingKeyNotRateLimited(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Upstream = "http://unused"
	cfg.RatePerSecond = 0.001
	cfg.Burst = 1
	s := New(Options{Config: cfg})

	for i := range 5 {
		w := do(s, http.MethodPost, RouteChatGPT, `{}`)
		require.Equal(t, http.StatusInternalServerError, w.Code, "request %d", i)
		assert.JSONEq(t, `{"error":"OPENAI_API_KEY is missing"}`, w.Body.String())
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.RateLimitedTotal))
	assert.InDelta(t, 1.0, s.settings.Load().limiter.Tokens(), 0.01, "key-less requests must not consume tokens")
}

func TestRelay_ReloadOrigin(t *testing.T) {
	s := newTestServer(t, "http://unused", "sk-test")
	cfg := DefaultConfig()
	cfg.AllowedOrigin = "https://algo.example"
	s.Reload(cfg)
	w := do(s, http.MethodOptions, RouteChatGPT, "")
	assert.Equal(t, "https://algo.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRelay_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, "http://unused", "sk-test")
	w := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","credential":true}`, w.Body.String())

	do(s, http.MethodGet, RouteChatGPT, "")
	w = do(s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `algoexplorer_relay_requests_total{code="405",route="/api/chatgpt"} 1`)
}

func TestRelay_NotFound(t *testing.T) {
	s := newTestServer(t, "http://unused", "sk-test")
	w := do(s, http.MethodPost, "/elsewhere", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestCredential(t *testing.T) {
	assert.Nil(t, NewCredential(""))
	c := NewCredential("sk-abc")
	require.NotNil(t, c)
	got, err := c.bearer()
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-abc", got)
}

func TestRelay_LivePlayback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigin = "https://algo.example"
	s := New(Options{Config: cfg, PlaybackClock: player.NewManualClock()})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + RouteLive + "?algo=linked-list"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://other.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://algo.example"}})
	require.NoError(t, err)
	defer conn.Close()

	var hello live.Update
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, live.TypeSession, hello.Type)
	assert.Equal(t, "linked-list", hello.Algorithm)

	w := do(s, http.MethodGet, "/metrics", "")
	assert.Contains(t, w.Body.String(), "algoexplorer_relay_live_sessions 1")
}

func TestRelay_OriginAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedOrigin = "https://algo.example"
	s := New(Options{Config: cfg})

	r := httptest.NewRequest(http.MethodGet, RouteLive, nil)
	assert.True(t, s.originAllowed(r), "no Origin header")
	r.Header.Set("Origin", "https://algo.example")
	assert.True(t, s.originAllowed(r))
	r.Header.Set("Origin", "https://other.example")
	assert.False(t, s.originAllowed(r))

	cfg.AllowedOrigin = "*"
	s.Reload(cfg)
	assert.True(t, s.originAllowed(r))
}
