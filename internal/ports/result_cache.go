package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/resolver"
)

// CacheKey identifies one resolved log file. Size and ModTime fingerprint
// the file contents so that an appended or rewritten log invalidates the
// cached result. Player and Config are part of the key because resolution
// depends on whose perspective the log is read from and on the
// segmentation thresholds in force.
type CacheKey struct {
	Path    string
	Size    int64
	ModTime time.Time
	Player  string
	Config  resolver.Config
}

// ResultCache stores resolved sessions keyed by source file, so repeated
// analysis of an unchanged log skips the resolve step.
type ResultCache interface {
	// Lookup returns the cached sessions for key. The second return is
	// false on a miss, including when the file changed since Store.
	Lookup(ctx context.Context, key CacheKey) ([]domain.Session, bool, error)
	// Store replaces any cached result for key's path, player and config.
	Store(ctx context.Context, key CacheKey, sessions []domain.Session) error
	// Close releases the underlying store.
	Close() error
}
