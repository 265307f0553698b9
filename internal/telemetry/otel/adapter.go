package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"bistro-boss/backend/internal/telemetry"
	"bistro-boss/backend/internal/telemetry/domain"
)

const instrumentationName = "bistro-boss/telemetry"

// recordEmitter is the part of otellog.Logger the emitter uses; tests substitute a capture.
type recordEmitter interface {
	Emit(ctx context.Context, record otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger(instrumentationName)}
}

// NewEventEmitterWithLogger returns an EventEmitter writing to logger.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to an OTel log record and emits it. The trace context in ctx is attached
// by the SDK, so records correlate with the request span.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.OccurredAt.IsZero() {
		rec.SetTimestamp(event.OccurredAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	rec.SetSeverity(severityFor(event.Status))
	if len(event.Metadata) > 0 {
		rec.SetBody(otellog.BytesValue(event.Metadata))
	}
	addString(&rec, "event_type", event.Type)
	addString(&rec, "source", event.Source)
	addString(&rec, "request_id", event.RequestID)
	addString(&rec, "actor_email", event.ActorEmail)
	addString(&rec, "http.method", event.Method)
	addString(&rec, "http.route", event.Route)
	if event.Status != 0 {
		rec.AddAttributes(otellog.Int("http.status_code", event.Status))
	}
	if event.Duration > 0 {
		rec.AddAttributes(otellog.Float64("duration_ms", float64(event.Duration)/float64(time.Millisecond)))
	}
	e.logger.Emit(ctx, rec)
	return nil
}

func addString(rec *otellog.Record, key, value string) {
	if value != "" {
		rec.AddAttributes(otellog.String(key, value))
	}
}

func severityFor(status int) otellog.Severity {
	switch {
	case status >= 500:
		return otellog.SeverityError
	case status >= 400:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityInfo
	}
}
