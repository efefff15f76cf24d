// Package tail follows a growing log file and emits complete lines as
// they are appended, the way the game client writes its chat log.
package tail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const DefaultInterval = 500 * time.Millisecond

// Options controls how a Tailer follows its file.
type Options struct {
	// Interval is the polling frequency. DefaultInterval when zero.
	Interval time.Duration
	// FromStart replays the file's existing content before following
	// new writes. Otherwise only lines appended after New are emitted.
	FromStart bool
}

// Tailer polls a file for appended lines. The game flushes whole lines,
// so a trailing fragment without a newline is held back until the rest
// of the line arrives.
type Tailer struct {
	path     string
	interval time.Duration

	offset int64
	carry  []byte
}

// New prepares a tailer for the file at path. When opts.FromStart is
// false the current end of the file becomes the starting position, so
// the race between construction and Run cannot replay old content.
func New(path string, opts Options) *Tailer {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Tailer{path: path, interval: interval}
	if !opts.FromStart {
		if info, err := os.Stat(path); err == nil {
			t.offset = info.Size()
		}
	}
	return t
}

// Run blocks, delivering each complete line to ch until ctx is
// cancelled. A missing file is not an error; the tailer waits for it
// to appear. Returns ctx.Err() on cancellation.
func (t *Tailer) Run(ctx context.Context, ch chan<- string) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		if err := t.poll(ctx, ch); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *Tailer) poll(ctx context.Context, ch chan<- string) error {
	info, err := os.Stat(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", t.path, err)
	}
	if info.Size() < t.offset {
		// The file shrank, so it was truncated or replaced. Start over.
		t.offset = 0
		t.carry = nil
	}
	if info.Size() == t.offset {
		return nil
	}

	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", t.path, err)
	}
	defer f.Close()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek %s: %w", t.path, err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", t.path, err)
	}
	t.offset += int64(len(data))

	buf := append(t.carry, data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(buf[:i]), "\r")
		buf = buf[i+1:]
		select {
		case ch <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	t.carry = append([]byte(nil), buf...)
	return nil
}
