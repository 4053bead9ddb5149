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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OllamaConfig configures OllamaStreamer.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// DefaultOllamaModel is used when OllamaConfig.Model is empty.
const DefaultOllamaModel = "llama3.2"

// maxChunkLine bounds a single NDJSON line from the server.
const maxChunkLine = 1 << 20

// OllamaStreamer streams from a local Ollama server's /api/chat endpoint.
type OllamaStreamer struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *slog.Logger
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// NewOllamaStreamer validates cfg.
func NewOllamaStreamer(cfg OllamaConfig, logger *slog.Logger) (*OllamaStreamer, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("OLLAMA_BASE_URL is not set")
	}
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		logger.Warn("ollama model not set, using default", "model", DefaultOllamaModel)
		model = DefaultOllamaModel
	}
	return &OllamaStreamer{
		// No overall timeout: ctx bounds the stream.
		httpClient: &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: 2 * time.Minute}},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      model,
		logger:     logger,
	}, nil
}

// Name implements Streamer.
func (s *OllamaStreamer) Name() string { return "Ollama" }

// Stream implements Streamer.
func (s *OllamaStreamer) Stream(ctx context.Context, req Request, onChunk ChunkFunc) error {
	ctx, span := tracer.Start(ctx, "OllamaStreamer.Stream")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", s.model))

	msgs := make([]ollamaMessage, 0, len(req.History)+2)
	msgs = append(msgs, ollamaMessage{Role: "system", Content: SystemInstruction(req.Algorithm, req.FrameContext)})
	for _, m := range req.History {
		msgs = append(msgs, ollamaMessage{Role: wireRole(m.Role), Content: m.Text})
	}
	msgs = append(msgs, ollamaMessage{Role: "user", Content: req.Message})

	body, err := json.Marshal(ollamaChatRequest{Model: s.model, Messages: msgs, Stream: true})
	if err != nil {
		return fmt.Errorf("marshal ollama chat request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create ollama chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send ollama chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("ollama chat returned an error", "status_code", resp.StatusCode, "response", string(msg))
		err := fmt.Errorf("%w: ollama status %d", ErrUpstreamStatus, resp.StatusCode)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChunkLine)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			span.RecordError(err)
			return fmt.Errorf("parse ollama chunk: %w", err)
		}
		if chunk.Error != "" {
			err := fmt.Errorf("ollama stream error: %s", chunk.Error)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if chunk.Message.Content != "" {
			onChunk(chunk.Message.Content)
		}
		if chunk.Done {
			return nil
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ollama stream: %w", err)
	}
	return nil
}
