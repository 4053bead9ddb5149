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
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("algoexplorer.chat")

// OpenAIConfig configures OpenAIStreamer.
type OpenAIConfig struct {
	// APIKey authenticates against the API. It may be empty when BaseURL
	// points at the relay, which injects the key itself.
	APIKey string `yaml:"-"`

	// BaseURL overrides the API root, e.g. "http://localhost:8787/v1" to
	// go through the relay.
	BaseURL string `yaml:"base_url"`

	Model string `yaml:"model"`

	HTTPClient *http.Client `yaml:"-"`
}

// OpenAIStreamer streams chat completions through go-openai.
type OpenAIStreamer struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIStreamer validates cfg and builds the client.
func NewOpenAIStreamer(cfg OpenAIConfig, logger *slog.Logger) (*OpenAIStreamer, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("OPENAI_API_KEY is missing and no relay base URL is configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	logger.Debug("initializing OpenAI streamer", "model", model, "relay", cfg.BaseURL != "")
	return &OpenAIStreamer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

// Name implements Streamer.
func (s *OpenAIStreamer) Name() string { return "ChatGPT" }

// Stream implements Streamer.
func (s *OpenAIStreamer) Stream(ctx context.Context, req Request, onChunk ChunkFunc) error {
	ctx, span := tracer.Start(ctx, "OpenAIStreamer.Stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("llm.num_messages", len(req.History)+2),
	)

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemInstruction(req.Algorithm, req.FrameContext),
	})
	for _, m := range req.History {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: wireRole(m.Role), Content: m.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: msgs,
		Stream:   true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		if errors.As(err, &apiErr) || errors.As(err, &reqErr) {
			return fmt.Errorf("%w: %v", ErrUpstreamStatus, err)
		}
		return fmt.Errorf("open completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("read completion stream: %w", err)
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
			onChunk(resp.Choices[0].Delta.Content)
		}
	}
}
