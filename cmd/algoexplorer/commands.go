// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AlgoExplorer/cmd/algoexplorer/config"
	"github.com/AleutianAI/AlgoExplorer/pkg/logging"
	"github.com/AleutianAI/AlgoExplorer/pkg/telemetry"
)

// dotEnvFile is read from the working directory before the config.
const dotEnvFile = ".env.local"

// app carries what PersistentPreRunE sets up for every command.
type app struct {
	configPath string
	cfg        config.Config
	logger     *logging.Logger
	registry   *prometheus.Registry
	shutdown   func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "algoexplorer",
		Short: "Step through classic algorithms one frame at a time",
		Long: `AlgoExplorer turns searching, sorting, graph and data structure algorithms
into frame sequences you can replay, export as JSON, or ask a tutor about.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.algoexplorer/config.yaml)")

	root.AddCommand(
		newListCmd(),
		newGenerateCmd(a),
		newPlayCmd(a),
		newAskCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return fmt.Errorf("read %s: %w", dotEnvFile, err)
	}
	if a.configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.configPath = p
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := cfg.Logging
	logCfg.Service = cmd.Name()
	logCfg.Writer = cmd.ErrOrStderr()
	// The player owns the screen; its logs go to the file only.
	if cmd.Name() == "play" {
		logCfg.Quiet = true
	}
	a.logger = logging.New(logCfg)
	slog.SetDefault(a.logger.Slog())

	a.registry = prometheus.NewRegistry()
	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry, a.registry)
	if err != nil {
		a.logger.Slog().Warn("telemetry disabled", "error", err)
		shutdown = func(context.Context) error { return nil }
	}
	a.shutdown = shutdown
	return nil
}

func (a *app) teardown() error {
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			a.log().Warn("telemetry shutdown failed", "error", err)
		}
	}
	if a.logger != nil {
		return a.logger.Close()
	}
	return nil
}

func (a *app) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger.Slog()
}
