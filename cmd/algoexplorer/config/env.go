// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ApplyEnv copies the supported environment variables into cfg. getenv is
// usually os.Getenv.
//
//	OPENAI_API_KEY        chat.openai api key and the relay credential
//	OPENAI_MODEL          chat.openai.model
//	CHAT_PROVIDER         chat.provider
//	OLLAMA_BASE_URL       chat.ollama.base_url
//	PORT                  relay.port
//	ALLOWED_ORIGIN        relay.allowed_origin
//	OTEL_TRACES_EXPORTER  telemetry.trace_exporter
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	set := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	set("OPENAI_API_KEY", &cfg.Chat.OpenAI.APIKey)
	set("OPENAI_MODEL", &cfg.Chat.OpenAI.Model)
	set("CHAT_PROVIDER", &cfg.Chat.Provider)
	set("OLLAMA_BASE_URL", &cfg.Chat.Ollama.BaseURL)
	set("ALLOWED_ORIGIN", &cfg.Relay.AllowedOrigin)
	set("OTEL_TRACES_EXPORTER", &cfg.Telemetry.TraceExporter)

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Relay.Port = port
	}
	return nil
}

// LoadDotEnv sets variables from a KEY=VALUE file such as .env.local.
// Variables already present in the environment win. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		key, value, ok, err := parseDotEnvLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if !ok {
			continue
		}
		if _, present := os.LookupEnv(key); present {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseDotEnvLine returns ok=false for blank lines and comments.
func parseDotEnvLine(raw string) (key, value string, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "#") {
		return "", "", false, nil
	}
	s = strings.TrimPrefix(s, "export ")
	key, value, found := strings.Cut(s, "=")
	if !found {
		return "", "", false, fmt.Errorf("expected KEY=VALUE")
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false, fmt.Errorf("invalid key %q", key)
	}
	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		value = value[1 : n-1]
	} else if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return key, value, true, nil
}
