// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the gateway.
//
// # Description
//
// This package implements Prometheus metrics for monitoring chat operations:
//   - Request counters (by endpoint, status)
//   - Error counters (by endpoint, error kind)
//   - Request duration histograms
//   - Model invocation counters (by model, outcome)
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for gateway metrics
const gatewaySubsystem = "gateway"

// GatewayMetrics holds all Prometheus metrics for chat gateway operations.
//
// Initialize once at startup via InitMetrics().
type GatewayMetrics struct {
	// RequestsTotal counts chat requests by endpoint and status.
	// Labels: endpoint (chat), status (success, client_error, backend_error)
	RequestsTotal *prometheus.CounterVec

	// ErrorsTotal counts errors by endpoint and kind.
	// Labels: endpoint, error_kind (malformed_json, missing_fields,
	// invalid_model, backend_error)
	ErrorsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures end-to-end request handling time.
	// Labels: endpoint, status
	RequestDurationSeconds *prometheus.HistogramVec

	// ModelInvocationsTotal counts backend model invocations.
	// Labels: model, outcome (success, error)
	ModelInvocationsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of GatewayMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *GatewayMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// application startup; calling twice panics on duplicate registration.
func InitMetrics() *GatewayMetrics {
	DefaultMetrics = &GatewayMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "requests_total",
				Help:      "Total chat requests by endpoint and status.",
			},
			[]string{"endpoint", "status"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "errors_total",
				Help:      "Total errors by endpoint and kind.",
			},
			[]string{"endpoint", "error_kind"},
		),
		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end request handling duration.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),
		ModelInvocationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: gatewaySubsystem,
				Name:      "model_invocations_total",
				Help:      "Total model backend invocations by model and outcome.",
			},
			[]string{"model", "outcome"},
		),
	}
	return DefaultMetrics
}

// RecordRequest records one handled request with its duration.
func (m *GatewayMetrics) RecordRequest(endpoint, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDurationSeconds.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

// RecordError records one error occurrence.
func (m *GatewayMetrics) RecordError(endpoint, errorKind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(endpoint, errorKind).Inc()
}
