// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRelayMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRelayMetrics(reg)

	m.RecordRequest("/api/chatgpt", 200)
	m.RecordRequest("/api/chatgpt", 200)
	m.RecordRequest("/api/chatgpt", 405)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/chatgpt", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/chatgpt", "405")))

	m.RecordError(ErrorCodeRateLimited)
	m.RecordError(ErrorCodeUpstream)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues(string(ErrorCodeUpstream))))

	m.StreamStarted()
	m.StreamStarted()
	m.StreamEnded()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveStreams))

	m.RecordFirstByte(200 * time.Millisecond)
	m.RecordUpstreamDuration(2*time.Second, true)
	m.RecordClientDisconnect()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClientDisconnectsTotal))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Positive(t, n)
}

func TestNewRelayMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRelayMetrics(prometheus.NewRegistry())
		NewRelayMetrics(prometheus.NewRegistry())
	})
}
