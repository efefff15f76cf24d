package domain

import "time"

// EncounterEndReason records why an encounter stopped accumulating
// events.
type EncounterEndReason string

const (
	EncounterDeath      EncounterEndReason = "death"
	EncounterTimeout    EncounterEndReason = "timeout"
	EncounterSessionEnd EncounterEndReason = "session_end"
	EncounterInProgress EncounterEndReason = "in_progress"
)

// Encounter is one continuous fight against a single target instance.
type Encounter struct {
	Instance    TargetInstance     `json:"instance"`
	StartedAt   time.Time          `json:"started_at"`
	EndedAt     time.Time          `json:"ended_at"`
	EndReason   EncounterEndReason `json:"end_reason"`
	Events      []Event            `json:"events,omitempty"`
	DamageDealt int                `json:"damage_dealt"`
	DamageTaken int                `json:"damage_taken"`
	HealingDone int                `json:"healing_done"`
	PlayerKill  bool               `json:"player_kill,omitempty"`
}

func (e *Encounter) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// DPS is damage dealt per second of encounter duration. Zero-safe:
// returns 0 for instantaneous encounters.
func (e *Encounter) DPS() float64 {
	secs := e.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(e.DamageDealt) / secs
}

func (e *Encounter) WasKilled() bool {
	return e.EndReason == EncounterDeath
}

// TargetGroup collects every encounter against one target name,
// instances in chronological order.
type TargetGroup struct {
	Name       string      `json:"name"`
	TotalKills int         `json:"total_kills"`
	Encounters []Encounter `json:"encounters"`
}
