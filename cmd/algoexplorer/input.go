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
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AlgoExplorer/pkg/frames"
	"github.com/AleutianAI/AlgoExplorer/pkg/validation"
	"github.com/AleutianAI/AlgoExplorer/services/generator"
)

// newRand seeds a generator. Seed 0 means "pick one from the clock".
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// buildInput validates arrayText and targetText when arrayText is set and
// draws a random instance otherwise.
func buildInput(algo frames.AlgorithmType, arrayText, targetText string, seed uint64) (generator.Input, error) {
	if arrayText == "" {
		return generator.RandomInput(algo, newRand(seed))
	}
	if !algo.SupportsCustomInput() {
		return generator.Input{}, fmt.Errorf("%s does not accept --array", algo)
	}
	ci, err := validation.ParseCustomInput(arrayText, targetText, algo.RequiresTarget())
	if err != nil {
		return generator.Input{}, err
	}
	return generator.PrepareCustom(algo, ci)
}

func generateFrames(ctx context.Context, algo frames.AlgorithmType, arrayText, targetText string, seed uint64) ([]frames.Frame, error) {
	in, err := buildInput(algo, arrayText, targetText, seed)
	if err != nil {
		return nil, err
	}
	return generator.Generate(ctx, algo, in)
}

// writeAll writes one <slug>.json per algorithm into dir. Each generator
// runs on its own goroutine with its own random source.
func writeAll(ctx context.Context, dir string, seed uint64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, algo := range frames.All() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fs, err := generateFrames(gctx, algo, "", "", seed+uint64(i))
			if err != nil {
				return fmt.Errorf("%s: %w", algo.Slug(), err)
			}
			data, err := json.MarshalIndent(fs, "", "  ")
			if err != nil {
				return fmt.Errorf("%s: %w", algo.Slug(), err)
			}
			return os.WriteFile(filepath.Join(dir, algo.Slug()+".json"), data, 0644)
		})
	}
	return g.Wait()
}

// loadFrames reads a JSON array written by generate.
func loadFrames(path string) ([]frames.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fs, err := frames.DecodeFrames(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(fs) == 0 {
		return nil, fmt.Errorf("%s holds no frames", path)
	}
	return fs, nil
}
