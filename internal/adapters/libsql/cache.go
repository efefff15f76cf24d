// Package libsql caches resolved sessions in a local libsql database so
// that reanalyzing an unchanged log file skips the resolve step.
package libsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/ports"
	"github.com/emiliopalmerini/camlog/internal/resolver"
)

const schema = `CREATE TABLE IF NOT EXISTS resolved_logs (
	path        TEXT NOT NULL,
	player      TEXT NOT NULL,
	config      TEXT NOT NULL,
	size        INTEGER NOT NULL,
	mtime_unix  INTEGER NOT NULL,
	resolved_at TEXT NOT NULL,
	sessions    TEXT NOT NULL,
	PRIMARY KEY (path, player, config)
)`

// configKey renders the segmentation config as a stable column value,
// so results resolved under different thresholds never answer for each
// other. Normalizing first makes the zero config and DefaultConfig the
// same entry.
func configKey(cfg resolver.Config) string {
	cfg = cfg.WithDefaults()
	rest := "split"
	if cfg.DisableRestSplit {
		rest = "keep"
	}
	return fmt.Sprintf("enc=%s;sess=%s;rest=%s", cfg.EncounterTimeout, cfg.SessionTimeout, rest)
}

// Cache implements ports.ResultCache on a libsql file database.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// A single connection serializes writers, which is all a local
	// cache needs.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Lookup(ctx context.Context, key ports.CacheKey) ([]domain.Session, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT size, mtime_unix, sessions FROM resolved_logs WHERE path = ? AND player = ? AND config = ?`,
		key.Path, key.Player, configKey(key.Config))

	var size, mtime int64
	var payload string
	if err := row.Scan(&size, &mtime, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if size != key.Size || mtime != key.ModTime.UnixNano() {
		// The file changed since this entry was stored.
		return nil, false, nil
	}

	var sessions []domain.Session
	if err := json.Unmarshal([]byte(payload), &sessions); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return sessions, true, nil
}

func (c *Cache) Store(ctx context.Context, key ports.CacheKey, sessions []domain.Session) error {
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO resolved_logs (path, player, config, size, mtime_unix, resolved_at, sessions)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.Path, key.Player, configKey(key.Config), key.Size, key.ModTime.UnixNano(),
		time.Now().UTC().Format(time.RFC3339), string(payload))
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
