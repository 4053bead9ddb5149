// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the AlgoExplorer configuration file.
//
// The file lives at ~/.algoexplorer/config.yaml unless --config says
// otherwise and is created with defaults on first run. A handful of
// environment variables override it; secrets are accepted from the
// environment only.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/AlgoExplorer/pkg/logging"
	"github.com/AleutianAI/AlgoExplorer/pkg/telemetry"
	"github.com/AleutianAI/AlgoExplorer/services/chat"
	"github.com/AleutianAI/AlgoExplorer/services/player"
	"github.com/AleutianAI/AlgoExplorer/services/relay"
)

// Config is the whole configuration file.
type Config struct {
	Player    PlayerConfig     `yaml:"player"`
	Chat      ChatConfig       `yaml:"chat"`
	Relay     relay.Config     `yaml:"relay"`
	Logging   logging.Config   `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// PlayerConfig holds playback defaults.
type PlayerConfig struct {
	// Speed is the delay between frames, e.g. "500ms".
	Speed time.Duration `yaml:"speed"`
}

// ChatConfig is the tutor configuration plus where transcripts are kept.
type ChatConfig struct {
	chat.Config `yaml:",inline"`

	// HistoryDir holds the transcript database. Empty keeps transcripts in
	// memory for the life of the process.
	HistoryDir string `yaml:"history_dir"`
}

// Dir is the per-user configuration directory, ~/.algoexplorer.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".algoexplorer"), nil
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() Config {
	return Config{
		Player: PlayerConfig{Speed: player.DefaultSpeed},
		Chat: ChatConfig{
			Config: chat.Config{
				Provider: "openai",
				OpenAI:   chat.OpenAIConfig{Model: chat.DefaultModel},
				Ollama: chat.OllamaConfig{
					BaseURL: "http://localhost:11434",
					Model:   chat.DefaultOllamaModel,
				},
			},
			HistoryDir: "~/.algoexplorer/history",
		},
		Relay: relay.DefaultConfig(),
		Logging: logging.Config{
			Level:  logging.LevelInfo,
			LogDir: "~/.algoexplorer/logs",
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}
