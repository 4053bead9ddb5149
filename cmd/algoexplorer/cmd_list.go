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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the algorithms by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, c := range frames.Categories() {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, c)
				for _, algo := range frames.ByCategory(c) {
					custom := ""
					if algo.SupportsCustomInput() {
						custom = "  (custom input)"
					}
					fmt.Fprintf(out, "  %-22s %s%s\n", algo.Slug(), algo, custom)
				}
			}
			return nil
		},
	}
}
