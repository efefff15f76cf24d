package ports

import (
	"context"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

// MetricsExporter exports combat results to an external observability system.
type MetricsExporter interface {
	// ExportEncounter records a finalized encounter.
	ExportEncounter(ctx context.Context, enc domain.Encounter) error
	// ExportSession records a finalized session.
	ExportSession(ctx context.Context, sess domain.Session) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
