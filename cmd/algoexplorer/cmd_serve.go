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
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AlgoExplorer/cmd/algoexplorer/config"
	"github.com/AleutianAI/AlgoExplorer/services/relay"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat relay and live playback for browser front ends",
		Long: `serve forwards chat completion requests to the OpenAI API, adding the API key
from OPENAI_API_KEY so browsers never see it. It also streams live playback
of any algorithm over a websocket at /ws/play?algo=<slug>. The allowed origin
and rate limit are reloaded when the config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			relayCfg := a.cfg.Relay
			if port != 0 {
				relayCfg.Port = port
			}
			a.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			srv := relay.New(relay.Options{
				Config:   relayCfg,
				APIKey:   a.cfg.Chat.OpenAI.APIKey,
				Registry: a.registry,
				Logger:   a.log(),
			})

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Run(ctx)
			})
			g.Go(func() error {
				return config.Watch(ctx, a.configPath, func(next config.Config) {
					if err := config.ApplyEnv(&next, os.Getenv); err != nil {
						a.log().Warn("config reload skipped", "error", err)
						return
					}
					srv.Reload(next.Relay)
				}, a.log())
			})
			return ignoreCanceled(g.Wait())
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config or PORT)")
	return cmd
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
