package otel

import (
	"context"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportEncounter(ctx context.Context, enc domain.Encounter) error {
	return nil
}

func (e *NoOpExporter) ExportSession(ctx context.Context, sess domain.Session) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
