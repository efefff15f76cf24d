package stream

import (
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/resolver"
)

// ClusterOptions control burst detection over a buffered window of
// events.
type ClusterOptions struct {
	// InactivityTimeout is the quiet gap that splits two bursts.
	// Defaults to the encounter timeout.
	InactivityTimeout time.Duration
	// MinEvents discards bursts with fewer events as noise. Defaults
	// to 1 (keep everything).
	MinEvents int
	// MergeWindow rejoins adjacent surviving bursts whose boundary gap
	// is below it. Zero disables merging.
	MergeWindow time.Duration
}

func (o ClusterOptions) withDefaults() ClusterOptions {
	if o.InactivityTimeout <= 0 {
		o.InactivityTimeout = resolver.DefaultEncounterTimeout
	}
	if o.MinEvents < 1 {
		o.MinEvents = 1
	}
	return o
}

// Burst is a dense run of combat events, a lighter single-level
// alternative to full encounter resolution.
type Burst struct {
	StartedAt time.Time
	EndedAt   time.Time
	Events    []domain.Event
}

func (b *Burst) Duration() time.Duration {
	return b.EndedAt.Sub(b.StartedAt)
}

// Cluster splits the combat events of a buffered window into bursts
// by inactivity gap, drops bursts below the noise threshold, then
// merges surviving neighbors closer than the merge window. Non-combat
// events are ignored. Input must be sorted by timestamp.
func Cluster(events []domain.Event, opts ClusterOptions) []Burst {
	opts = opts.withDefaults()

	var bursts []Burst
	var cur *Burst
	for _, ev := range events {
		if !ev.Kind.Combat() {
			continue
		}
		if cur != nil && ev.Timestamp.Sub(cur.EndedAt) > opts.InactivityTimeout {
			bursts = append(bursts, *cur)
			cur = nil
		}
		if cur == nil {
			cur = &Burst{StartedAt: ev.Timestamp, EndedAt: ev.Timestamp}
		}
		cur.Events = append(cur.Events, ev)
		if ev.Timestamp.After(cur.EndedAt) {
			cur.EndedAt = ev.Timestamp
		}
	}
	if cur != nil {
		bursts = append(bursts, *cur)
	}

	kept := bursts[:0]
	for _, b := range bursts {
		if len(b.Events) >= opts.MinEvents {
			kept = append(kept, b)
		}
	}

	if opts.MergeWindow <= 0 || len(kept) < 2 {
		return kept
	}
	merged := []Burst{kept[0]}
	for _, b := range kept[1:] {
		last := &merged[len(merged)-1]
		if b.StartedAt.Sub(last.EndedAt) <= opts.MergeWindow {
			last.Events = append(last.Events, b.Events...)
			last.EndedAt = b.EndedAt
			continue
		}
		merged = append(merged, b)
	}
	return merged
}
