package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

const (
	serviceName    = "camlog"
	serviceVersion = "1.0.0"
)

// Exporter exports combat metrics to an OTEL Collector.
type Exporter struct {
	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	encountersTotal   metric.Int64Counter
	killsTotal        metric.Int64Counter
	damageDealtTotal  metric.Int64Counter
	damageTakenTotal  metric.Int64Counter
	encounterDuration metric.Float64Histogram
	encounterDPS      metric.Float64Histogram
	sessionsTotal     metric.Int64Counter
	sessionDuration   metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter. The runID is attached
// as a resource attribute so that metrics from concurrent watch runs can
// be told apart.
func NewExporter(ctx context.Context, cfg Config, runID string) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("run_id", runID),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	encountersTotal, err := meter.Int64Counter(
		"camlog_encounters_total",
		metric.WithDescription("Total number of finalized encounters"),
		metric.WithUnit("{encounter}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encounters counter: %w", err)
	}

	killsTotal, err := meter.Int64Counter(
		"camlog_kills_total",
		metric.WithDescription("Total number of kills credited to the player"),
		metric.WithUnit("{kill}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kills counter: %w", err)
	}

	damageDealtTotal, err := meter.Int64Counter(
		"camlog_damage_dealt_total",
		metric.WithDescription("Total damage dealt by the player"),
		metric.WithUnit("{hitpoint}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage dealt counter: %w", err)
	}

	damageTakenTotal, err := meter.Int64Counter(
		"camlog_damage_taken_total",
		metric.WithDescription("Total damage taken by the player"),
		metric.WithUnit("{hitpoint}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage taken counter: %w", err)
	}

	encounterDuration, err := meter.Float64Histogram(
		"camlog_encounter_duration_seconds",
		metric.WithDescription("Encounter duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encounter duration histogram: %w", err)
	}

	encounterDPS, err := meter.Float64Histogram(
		"camlog_encounter_dps",
		metric.WithDescription("Damage per second over one encounter"),
		metric.WithUnit("{hitpoint}/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encounter dps histogram: %w", err)
	}

	sessionsTotal, err := meter.Int64Counter(
		"camlog_sessions_total",
		metric.WithDescription("Total number of finalized sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	sessionDuration, err := meter.Float64Histogram(
		"camlog_session_duration_seconds",
		metric.WithDescription("Session duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session duration histogram: %w", err)
	}

	return &Exporter{
		provider:          provider,
		meter:             meter,
		encountersTotal:   encountersTotal,
		killsTotal:        killsTotal,
		damageDealtTotal:  damageDealtTotal,
		damageTakenTotal:  damageTakenTotal,
		encounterDuration: encounterDuration,
		encounterDPS:      encounterDPS,
		sessionsTotal:     sessionsTotal,
		sessionDuration:   sessionDuration,
	}, nil
}

// ExportEncounter records a finalized encounter.
func (e *Exporter) ExportEncounter(ctx context.Context, enc domain.Encounter) error {
	opt := metric.WithAttributes(
		attribute.String("target", enc.Instance.Name),
		attribute.String("end_reason", string(enc.EndReason)),
	)

	e.encountersTotal.Add(ctx, 1, opt)
	e.damageDealtTotal.Add(ctx, int64(enc.DamageDealt), opt)
	e.damageTakenTotal.Add(ctx, int64(enc.DamageTaken), opt)
	e.encounterDuration.Record(ctx, enc.Duration().Seconds(), opt)
	e.encounterDPS.Record(ctx, enc.DPS(), opt)
	if enc.PlayerKill {
		e.killsTotal.Add(ctx, 1, opt)
	}

	return nil
}

// ExportSession records a finalized session.
func (e *Exporter) ExportSession(ctx context.Context, sess domain.Session) error {
	opt := metric.WithAttributes(
		attribute.String("end_reason", string(sess.EndReason)),
	)

	e.sessionsTotal.Add(ctx, 1, opt)
	e.sessionDuration.Record(ctx, sess.Duration().Seconds(), opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
