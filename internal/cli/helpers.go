package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emiliopalmerini/camlog/internal/adapters/libsql"
	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/parser"
	"github.com/emiliopalmerini/camlog/internal/ports"
	"github.com/emiliopalmerini/camlog/internal/resolver"
	"github.com/emiliopalmerini/camlog/internal/util"
)

func resolverConfig() resolver.Config {
	cfg := resolver.Config{
		EncounterTimeout: flagEncounterTimeout,
		SessionTimeout:   flagSessionTimeout,
		DisableRestSplit: !flagSplitOnRest,
	}
	return cfg.WithDefaults()
}

// openCache opens the result cache under the XDG data directory.
func openCache() (ports.ResultCache, error) {
	dir, err := util.GetXDGDataDir()
	if err != nil {
		return nil, err
	}
	return libsql.Open(filepath.Join(dir, "cache.db"))
}

// loadSessions resolves the sessions of a chat log, answering from the
// local cache when the file has not changed since the last run. Cache
// trouble degrades to a plain resolve with a warning.
func loadSessions(ctx context.Context, path string) ([]domain.Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}
	cfg := resolverConfig()
	key := ports.CacheKey{
		Path:    absolutePath(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Player:  flagPlayer,
		Config:  cfg,
	}

	var cache ports.ResultCache
	if !flagNoCache {
		cache, err = openCache()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: result cache unavailable: %v\n", err)
			cache = nil
		} else {
			defer cache.Close()
			sessions, ok, err := cache.Lookup(ctx, key)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: cache lookup failed: %v\n", err)
			} else if ok {
				return sessions, nil
			}
		}
	}

	events, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	sessions := resolver.ResolveSessions(events, flagPlayer, cfg)

	if cache != nil {
		if err := cache.Store(ctx, key, sessions); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache store failed: %v\n", err)
		}
	}
	return sessions, nil
}

func absolutePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// allEncounters flattens session encounters in chronological order.
func allEncounters(sessions []domain.Session) []domain.Encounter {
	var out []domain.Encounter
	for _, sess := range sessions {
		out = append(out, sess.Encounters...)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
