package domain

import "time"

// SessionEndReason records which termination signal closed a session.
type SessionEndReason string

const (
	SessionCombatExit  SessionEndReason = "combat_exit"
	SessionRest        SessionEndReason = "rest"
	SessionTimeout     SessionEndReason = "timeout"
	SessionLogBoundary SessionEndReason = "log_boundary"
	SessionEndOfLog    SessionEndReason = "end_of_log"
	SessionInProgress  SessionEndReason = "in_progress"
)

// Session is a contiguous block of play containing every event that
// fell inside it and the encounters resolved from those events.
type Session struct {
	ID         string           `json:"id"`
	Number     int              `json:"number"`
	StartedAt  time.Time        `json:"started_at"`
	EndedAt    time.Time        `json:"ended_at"`
	EndReason  SessionEndReason `json:"end_reason"`
	Events     []Event          `json:"events,omitempty"`
	Encounters []Encounter      `json:"encounters"`
}

func (s *Session) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

func (s *Session) TotalDamageDealt() int {
	total := 0
	for i := range s.Encounters {
		total += s.Encounters[i].DamageDealt
	}
	return total
}

func (s *Session) TotalDamageTaken() int {
	total := 0
	for i := range s.Encounters {
		total += s.Encounters[i].DamageTaken
	}
	return total
}

func (s *Session) TotalHealingDone() int {
	total := 0
	for i := range s.Encounters {
		total += s.Encounters[i].HealingDone
	}
	return total
}

// TotalKills counts encounters whose killing blow belonged to the
// player. Deaths credited to others are excluded.
func (s *Session) TotalKills() int {
	kills := 0
	for i := range s.Encounters {
		if s.Encounters[i].PlayerKill {
			kills++
		}
	}
	return kills
}

// UniqueTargetCount counts distinct target names, case-insensitive.
func (s *Session) UniqueTargetCount() int {
	seen := make(map[string]struct{})
	for i := range s.Encounters {
		seen[FoldName(s.Encounters[i].Instance.Name)] = struct{}{}
	}
	return len(seen)
}

// DPS is total damage dealt per second of session duration. Zero-safe:
// returns 0 when the session has no elapsed time.
func (s *Session) DPS() float64 {
	secs := s.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.TotalDamageDealt()) / secs
}

// CombatTime sums encounter durations, excluding downtime between
// fights.
func (s *Session) CombatTime() time.Duration {
	var total time.Duration
	for i := range s.Encounters {
		total += s.Encounters[i].Duration()
	}
	return total
}
