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
	"fmt"
	"log/slog"
	"strings"
)

// Config selects and configures a Streamer.
type Config struct {
	// Provider is "openai" (default) or "ollama".
	Provider string       `yaml:"provider"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Ollama   OllamaConfig `yaml:"ollama"`
}

// NewStreamer builds the Streamer selected by cfg.Provider.
func NewStreamer(cfg Config, logger *slog.Logger) (Streamer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "chatgpt":
		return NewOpenAIStreamer(cfg.OpenAI, logger)
	case "ollama":
		return NewOllamaStreamer(cfg.Ollama, logger)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}
