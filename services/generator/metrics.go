// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for frame generation.
var (
	tracer = otel.Tracer("algoexplorer.generator")
	meter  = otel.Meter("algoexplorer.generator")
)

// Metrics for frame generation.
var (
	generateLatency metric.Float64Histogram
	generateTotal   metric.Int64Counter
	framesProduced  metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		generateLatency, err = meter.Float64Histogram(
			"generator_duration_seconds",
			metric.WithDescription("Duration of frame generation"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		generateTotal, err = meter.Int64Counter(
			"generator_runs_total",
			metric.WithDescription("Total number of frame generation runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		framesProduced, err = meter.Int64Histogram(
			"generator_frames",
			metric.WithDescription("Number of frames produced per run"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startGenerateSpan creates a span for one generation run.
func startGenerateSpan(ctx context.Context, algorithm string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "generator.Generate",
		trace.WithAttributes(
			attribute.String("generator.algorithm", algorithm),
		),
	)
}

// recordGenerateMetrics records metrics for one generation run.
func recordGenerateMetrics(ctx context.Context, algorithm string, duration time.Duration, frameCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.Bool("success", success),
	)

	generateLatency.Record(ctx, duration.Seconds(), attrs)
	generateTotal.Add(ctx, 1, attrs)
	framesProduced.Record(ctx, int64(frameCount), metric.WithAttributes(attribute.String("algorithm", algorithm)))
}
