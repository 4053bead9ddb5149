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
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/validation"
	"github.com/AleutianAI/AlgoExplorer/services/player"
	"github.com/AleutianAI/AlgoExplorer/services/tui"
)

func newPlayCmd(a *app) *cobra.Command {
	var (
		arrayText  string
		targetText string
		custom     bool
		seed       uint64
		speed      time.Duration
		file       string
		provider   string
	)
	cmd := &cobra.Command{
		Use:   "play <algorithm>",
		Short: "Replay an algorithm interactively in the terminal",
		Example: `  algoexplorer play dijkstra
  algoexplorer play binary-search --custom
  algoexplorer play merge-sort --file merge.json --speed 200ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout.Fd()) {
				return errors.New("play needs a terminal; use 'algoexplorer generate' for JSON output")
			}
			ctx := cmd.Context()
			algo, err := frames.ParseAlgorithm(args[0])
			if err != nil {
				return err
			}

			if custom {
				if !algo.SupportsCustomInput() {
					return errors.New(algo.String() + " does not accept custom input")
				}
				if arrayText, targetText, err = promptCustomInput(algo); err != nil {
					return err
				}
			}

			var (
				fs         []frames.Frame
				regenerate func(context.Context) ([]frames.Frame, error)
			)
			if file != "" {
				fs, err = loadFrames(file)
			} else {
				fs, err = generateFrames(ctx, algo, arrayText, targetText, seed)
				regenerate = func(ctx context.Context) ([]frames.Frame, error) {
					return generateFrames(ctx, algo, "", "", 0)
				}
			}
			if err != nil {
				return err
			}

			if speed == 0 {
				speed = a.cfg.Player.Speed
			}
			p := player.New(player.Options{Speed: speed, Logger: a.log()})
			p.Load(fs)

			opts := tui.Options{
				Algorithm:  algo,
				Player:     p,
				Regenerate: regenerate,
				Context:    ctx,
				Logger:     a.log(),
			}
			sess, store, err := a.openChat(ctx, algo, provider)
			if store != nil {
				defer store.Close()
			}
			if err != nil {
				a.log().Warn("tutor unavailable", "error", err)
			} else {
				opts.Session = sess
				opts.Drafts = store
			}

			model, err := tui.New(opts)
			if err != nil {
				return err
			}
			return tui.Run(ctx, model)
		},
	}
	cmd.Flags().StringVar(&arrayText, "array", "", `custom array, e.g. "5, 3, -2"`)
	cmd.Flags().StringVar(&targetText, "target", "", "target for the searching algorithms")
	cmd.Flags().BoolVar(&custom, "custom", false, "enter the array and target in a form")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().DurationVar(&speed, "speed", 0, "delay between frames (default from config)")
	cmd.Flags().StringVar(&file, "file", "", "play frames written by 'generate'")
	cmd.Flags().StringVar(&provider, "provider", "", "tutor backend: openai or ollama")
	return cmd
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptCustomInput asks for the array, and the target when algo needs
// one, validating each field as it is typed.
func promptCustomInput(algo frames.AlgorithmType) (arrayText, targetText string, err error) {
	fields := []huh.Field{
		huh.NewInput().
			Title("Array").
			Description("Up to 20 integers between -999 and 999, separated by commas").
			Placeholder("5, 3, 8, 1").
			Value(&arrayText).
			Validate(func(s string) error {
				_, err := validation.ParseCustomInput(s, "", false)
				return err
			}),
	}
	if algo.RequiresTarget() {
		fields = append(fields, huh.NewInput().
			Title("Target").
			Placeholder("8").
			Value(&targetText).
			Validate(func(s string) error {
				_, err := validation.ParseCustomInput("0", s, true)
				return err
			}))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", "", errors.New("custom input cancelled")
		}
		return "", "", err
	}
	return arrayText, targetText, nil
}
