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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/services/chat"
)

func newAskCmd(a *app) *cobra.Command {
	var (
		frameIdx   int
		arrayText  string
		targetText string
		seed       uint64
		provider   string
	)
	cmd := &cobra.Command{
		Use:   "ask <algorithm> <question>",
		Short: "Ask the tutor about one frame of an algorithm",
		Example: `  algoexplorer ask quick-sort "why is 42 the pivot?" --seed 3 --frame 4
  algoexplorer ask dfs "what does backtracking mean here?" --provider ollama`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			algo, err := frames.ParseAlgorithm(args[0])
			if err != nil {
				return err
			}
			fs, err := generateFrames(ctx, algo, arrayText, targetText, seed)
			if err != nil {
				return err
			}
			if frameIdx < 0 || frameIdx >= len(fs) {
				return fmt.Errorf("--frame %d is outside [0, %d)", frameIdx, len(fs))
			}
			frame := fs[frameIdx]

			sess, store, err := a.openChat(ctx, algo, provider)
			if store != nil {
				defer store.Close()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Frame %d/%d: %s\n\n", frameIdx+1, len(fs), frame.StepInfo().Description)
			_, err = sess.Send(ctx, args[1], frame, printDelta(out))
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\n(stopped)")
				return nil
			}
			fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().IntVar(&frameIdx, "frame", 0, "zero-based frame index")
	cmd.Flags().StringVar(&arrayText, "array", "", `custom array, e.g. "5, 3, -2"`)
	cmd.Flags().StringVar(&targetText, "target", "", "target for the searching algorithms")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&provider, "provider", "", "tutor backend: openai or ollama")
	return cmd
}

// printDelta writes only the text added since the previous update.
func printDelta(w io.Writer) func(chat.Message) {
	printed := 0
	return func(msg chat.Message) {
		if len(msg.Text) > printed {
			fmt.Fprint(w, msg.Text[printed:])
			printed = len(msg.Text)
		}
	}
}
