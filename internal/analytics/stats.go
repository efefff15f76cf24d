package analytics

import (
	"sort"
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/resolver"
)

// TargetStatistics is the per-target-name rollup across encounters.
type TargetStatistics struct {
	Name              string
	EncounterCount    int
	KillCount         int
	TotalDamageDealt  int
	TotalDamageTaken  int
	AverageDPS        float64
	BestDPS           float64
	FastestKill       time.Duration // zero when the target was never killed
	AverageTimeToKill time.Duration
}

// SessionStatistics is the cross-session rollup.
type SessionStatistics struct {
	TotalSessions    int
	TotalDuration    time.Duration
	TotalCombatTime  time.Duration
	TotalDamageDealt int
	TotalDamageTaken int
	TotalHealingDone int
	TotalKills       int
	MeanDPS          float64
	MaxDPS           float64
	Longest          *domain.Session
	MostKills        *domain.Session
}

// ComputeTargetStatistics rolls encounters up per target name, ordered
// by kill count, then damage dealt, then name. All averages are
// zero-safe.
func ComputeTargetStatistics(encounters []domain.Encounter) []TargetStatistics {
	type acc struct {
		stats    TargetStatistics
		dpsSum   float64
		killTime time.Duration
	}

	byKey := make(map[string]*acc)
	var order []string
	for i := range encounters {
		enc := &encounters[i]
		key := domain.FoldName(enc.Instance.Name)
		a := byKey[key]
		if a == nil {
			a = &acc{stats: TargetStatistics{Name: enc.Instance.Name}}
			byKey[key] = a
			order = append(order, key)
		}

		a.stats.EncounterCount++
		a.stats.TotalDamageDealt += enc.DamageDealt
		a.stats.TotalDamageTaken += enc.DamageTaken
		dps := enc.DPS()
		a.dpsSum += dps
		if dps > a.stats.BestDPS {
			a.stats.BestDPS = dps
		}
		// Kill timing only counts fights the player finished.
		if enc.PlayerKill {
			d := enc.Duration()
			if a.stats.KillCount == 0 || d < a.stats.FastestKill {
				a.stats.FastestKill = d
			}
			a.killTime += d
			a.stats.KillCount++
		}
	}

	out := make([]TargetStatistics, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		a.stats.AverageDPS = a.dpsSum / float64(a.stats.EncounterCount)
		if a.stats.KillCount > 0 {
			a.stats.AverageTimeToKill = a.killTime / time.Duration(a.stats.KillCount)
		}
		out = append(out, a.stats)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].KillCount != out[j].KillCount {
			return out[i].KillCount > out[j].KillCount
		}
		if out[i].TotalDamageDealt != out[j].TotalDamageDealt {
			return out[i].TotalDamageDealt > out[j].TotalDamageDealt
		}
		return domain.FoldName(out[i].Name) < domain.FoldName(out[j].Name)
	})
	return out
}

// ComputeSessionStatistics rolls resolved sessions up into one
// summary. Longest and MostKills point into the given slice and are
// nil for empty input.
func ComputeSessionStatistics(sessions []domain.Session) SessionStatistics {
	var stats SessionStatistics
	stats.TotalSessions = len(sessions)

	var dpsSum float64
	for i := range sessions {
		s := &sessions[i]
		stats.TotalDuration += s.Duration()
		stats.TotalCombatTime += s.CombatTime()
		stats.TotalDamageDealt += s.TotalDamageDealt()
		stats.TotalDamageTaken += s.TotalDamageTaken()
		stats.TotalHealingDone += s.TotalHealingDone()
		stats.TotalKills += s.TotalKills()

		dps := s.DPS()
		dpsSum += dps
		if dps > stats.MaxDPS {
			stats.MaxDPS = dps
		}
		if stats.Longest == nil || s.Duration() > stats.Longest.Duration() {
			stats.Longest = s
		}
		if stats.MostKills == nil || s.TotalKills() > stats.MostKills.TotalKills() {
			stats.MostKills = s
		}
	}
	if stats.TotalSessions > 0 {
		stats.MeanDPS = dpsSum / float64(stats.TotalSessions)
	}
	return stats
}

// SessionStatisticsFor resolves an event stream and summarizes the
// resulting sessions in one step.
func SessionStatisticsFor(events []domain.Event, player string, cfg resolver.Config) SessionStatistics {
	return ComputeSessionStatistics(resolver.ResolveSessions(events, player, cfg))
}
