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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func TestOpenAIStreamer_StreamsDeltas(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("Binary "))
		fmt.Fprint(w, sseChunk("halves."))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	s, err := NewOpenAIStreamer(OpenAIConfig{BaseURL: server.URL + "/v1/"}, nil)
	require.NoError(t, err)

	var got strings.Builder
	err = s.Stream(context.Background(), Request{
		History:   []Message{{Role: RoleModel, Text: "Hello!"}, {Role: RoleUser, Text: "hi"}},
		Message:   "How does it work?",
		Algorithm: frames.BinarySearch,
	}, func(c string) { got.WriteString(c) })
	require.NoError(t, err)
	assert.Equal(t, "Binary halves.", got.String())

	assert.Equal(t, DefaultModel, body.Model)
	assert.True(t, body.Stream)
	require.Len(t, body.Messages, 4)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Contains(t, body.Messages[0].Content, "Binary Search")
	assert.Equal(t, "assistant", body.Messages[1].Role)
	assert.Equal(t, "user", body.Messages[2].Role)
	assert.Equal(t, "How does it work?", body.Messages[3].Content)
}

func TestOpenAIStreamer_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"OPENAI_API_KEY is missing"}`)
	}))
	defer server.Close()

	s, err := NewOpenAIStreamer(OpenAIConfig{BaseURL: server.URL}, nil)
	require.NoError(t, err)
	err = s.Stream(context.Background(), Request{Message: "hi", Algorithm: frames.DFS}, func(string) {})
	assert.Error(t, err)
}

func TestOpenAIStreamer_RequiresKeyOrRelay(t *testing.T) {
	_, err := NewOpenAIStreamer(OpenAIConfig{}, nil)
	assert.Error(t, err)
}

func TestOllamaStreamer_NDJSON(t *testing.T) {
	var req ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/x-ndjson", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Queue "},"done":false}`)
		fmt.Fprintln(w)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"first."},"done":false}`)
		fmt.Fprintln(w, `{"done":true}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"ignored"},"done":false}`)
	}))
	defer server.Close()

	s, err := NewOllamaStreamer(OllamaConfig{BaseURL: server.URL + "/", Model: "test-model"}, nil)
	require.NoError(t, err)

	var got strings.Builder
	err = s.Stream(context.Background(), Request{Message: "why a queue?", Algorithm: frames.BFS},
		func(c string) { got.WriteString(c) })
	require.NoError(t, err)
	assert.Equal(t, "Queue first.", got.String())
	assert.Equal(t, "test-model", req.Model)
	assert.True(t, req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
}

func TestOllamaStreamer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  bool
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			status: true,
		},
		{
			name: "stream error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(w, `{"error":"out of memory"}`)
			},
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(w, `{not json`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			s, err := NewOllamaStreamer(OllamaConfig{BaseURL: server.URL}, nil)
			require.NoError(t, err)
			err = s.Stream(context.Background(), Request{Message: "x"}, func(string) {})
			require.Error(t, err)
			assert.Equal(t, tt.status, errors.Is(err, ErrUpstreamStatus))
		})
	}
}

func TestOllamaStreamer_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"a"},"done":false}`)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	s, err := NewOllamaStreamer(OllamaConfig{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var chunks []string
	err = s.Stream(ctx, Request{Message: "x"}, func(c string) {
		chunks = append(chunks, c)
		cancel()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, chunks)
}
