// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the completion relay.
//
// # Description
//
// Metrics include:
//   - Request counters (by route and status code)
//   - Upstream latency histograms (time to first byte, total duration)
//   - Active stream gauge
//   - Rate-limit rejections and client disconnects
//
// Metrics are exposed via the relay's /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "algoexplorer"

const relaySubsystem = "relay"

// RelayMetrics holds the relay's Prometheus collectors.
type RelayMetrics struct {
	// RequestsTotal counts finished requests.
	// Labels: route, code
	RequestsTotal *prometheus.CounterVec

	// UpstreamFirstByteSeconds measures latency until upstream headers.
	UpstreamFirstByteSeconds prometheus.Histogram

	// UpstreamDurationSeconds measures the full proxied exchange.
	// Labels: outcome (success, error)
	UpstreamDurationSeconds *prometheus.HistogramVec

	// ActiveStreams tracks responses currently being streamed.
	ActiveStreams prometheus.Gauge

	// RateLimitedTotal counts requests rejected with 429.
	RateLimitedTotal prometheus.Counter

	// ErrorsTotal counts failures by code.
	// Labels: error_code
	ErrorsTotal *prometheus.CounterVec

	// ClientDisconnectsTotal counts clients that went away mid-stream.
	ClientDisconnectsTotal prometheus.Counter

	// LiveSessions tracks open websocket playback sessions.
	LiveSessions prometheus.Gauge
}

// NewRelayMetrics registers the relay collectors with reg.
//
// # Inputs
//
//   - reg: Target registerer. Tests pass a fresh prometheus.NewRegistry()
//     so repeated construction does not collide.
//
// # Limitations
//
//   - Panics if the collectors are already registered with reg.
func NewRelayMetrics(reg prometheus.Registerer) *RelayMetrics {
	f := promauto.With(reg)
	return &RelayMetrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "requests_total",
				Help:      "Total relay requests by route and status code",
			},
			[]string{"route", "code"},
		),

		UpstreamFirstByteSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "upstream_first_byte_seconds",
				Help:      "Time from forwarding a request to receiving upstream headers",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		UpstreamDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "upstream_duration_seconds",
				Help:      "Total proxied exchange duration in seconds",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),

		ActiveStreams: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "active_streams",
				Help:      "Number of responses currently being streamed",
			},
		),

		RateLimitedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),

		ErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "errors_total",
				Help:      "Relay errors by code",
			},
			[]string{"error_code"},
		),

		ClientDisconnectsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "client_disconnects_total",
				Help:      "Clients that disconnected while a response was streaming",
			},
		),

		LiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: relaySubsystem,
				Name:      "live_sessions",
				Help:      "Number of open websocket playback sessions",
			},
		),
	}
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode categorizes relay failures for metrics.
type ErrorCode string

const (
	ErrorCodeMissingKey   ErrorCode = "missing_key"
	ErrorCodeBadRequest   ErrorCode = "bad_request"
	ErrorCodeUpstream     ErrorCode = "upstream"
	ErrorCodeMethod       ErrorCode = "method_not_allowed"
	ErrorCodeRateLimited  ErrorCode = "rate_limited"
	ErrorCodeStreamCopy   ErrorCode = "stream_copy"
	ErrorCodeSecretAccess ErrorCode = "secret_access"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest counts a finished request.
func (m *RelayMetrics) RecordRequest(route string, code int) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordError counts a failure.
func (m *RelayMetrics) RecordError(code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(code)).Inc()
	if code == ErrorCodeRateLimited {
		m.RateLimitedTotal.Inc()
	}
}

// RecordFirstByte observes upstream header latency.
func (m *RelayMetrics) RecordFirstByte(d time.Duration) {
	m.UpstreamFirstByteSeconds.Observe(d.Seconds())
}

// RecordUpstreamDuration observes a full exchange.
func (m *RelayMetrics) RecordUpstreamDuration(d time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	m.UpstreamDurationSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// StreamStarted increments the active streams gauge.
func (m *RelayMetrics) StreamStarted() { m.ActiveStreams.Inc() }

// StreamEnded decrements the active streams gauge.
func (m *RelayMetrics) StreamEnded() { m.ActiveStreams.Dec() }

// RecordClientDisconnect counts a client that left mid-stream.
func (m *RelayMetrics) RecordClientDisconnect() { m.ClientDisconnectsTotal.Inc() }
