package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	meterName = "github.com/wolfeidau/sessionauth"
)

// Tracer returns the tracer for session operations, a no-op until InitTelemetry runs.
func Tracer() trace.Tracer {
	return otel.Tracer(meterName)
}

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Login metrics
	LoginsTotal   metric.Int64Counter
	LoginDuration metric.Float64Histogram

	// Request bootstrap metrics
	BootstrapTotal metric.Int64Counter

	// Session lifecycle metrics
	SessionsCreatedTotal metric.Int64Counter
	SessionsRevokedTotal metric.Int64Counter
	SessionsReapedTotal  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.LoginsTotal, _ = meter.Int64Counter(
		"sessionauth.logins.total",
		metric.WithDescription("Total number of login attempts by result"),
		metric.WithUnit("{attempt}"),
	)

	m.LoginDuration, _ = meter.Float64Histogram(
		"sessionauth.logins.duration",
		metric.WithDescription("Duration of login attempts including password verification"),
		metric.WithUnit("ms"),
	)

	m.BootstrapTotal, _ = meter.Int64Counter(
		"sessionauth.bootstrap.total",
		metric.WithDescription("Total number of request bootstraps by result"),
		metric.WithUnit("{request}"),
	)

	m.SessionsCreatedTotal, _ = meter.Int64Counter(
		"sessionauth.sessions.created.total",
		metric.WithDescription("Total number of sessions created"),
		metric.WithUnit("{session}"),
	)

	m.SessionsRevokedTotal, _ = meter.Int64Counter(
		"sessionauth.sessions.revoked.total",
		metric.WithDescription("Total number of sessions ended by reason"),
		metric.WithUnit("{session}"),
	)

	m.SessionsReapedTotal, _ = meter.Int64Counter(
		"sessionauth.sessions.reaped.total",
		metric.WithDescription("Total number of expired or inactive sessions deleted by the reaper"),
		metric.WithUnit("{session}"),
	)

	return m
}
