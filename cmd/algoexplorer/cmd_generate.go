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
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		arrayText  string
		targetText string
		seed       uint64
		outPath    string
		all        bool
		dir        string
	)
	cmd := &cobra.Command{
		Use:   "generate [algorithm]",
		Short: "Write the frame sequence for an algorithm as JSON",
		Example: `  algoexplorer generate binary-search --array "5,3,4" --target 4
  algoexplorer generate quick-sort --seed 7 --out quick.json
  algoexplorer generate --all --dir frames/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if len(args) > 0 {
					return errors.New("--all takes no algorithm")
				}
				if err := writeAll(cmd.Context(), dir, seed); err != nil {
					return err
				}
				a.log().Info("frames written", "dir", dir, "algorithms", len(frames.All()))
				return nil
			}
			if len(args) == 0 {
				return errors.New("name an algorithm or pass --all; see 'algoexplorer list'")
			}
			algo, err := frames.ParseAlgorithm(args[0])
			if err != nil {
				return err
			}
			fs, err := generateFrames(cmd.Context(), algo, arrayText, targetText, seed)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(fs, "", "  ")
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return err
			}
			a.log().Info("frames written", "algorithm", algo.Slug(), "frames", len(fs), "path", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&arrayText, "array", "", `custom array, e.g. "5, 3, -2"`)
	cmd.Flags().StringVar(&targetText, "target", "", "target for the searching algorithms")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&all, "all", false, "generate every algorithm")
	cmd.Flags().StringVar(&dir, "dir", "frames", "output directory for --all")
	return cmd
}
