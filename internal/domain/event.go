package domain

import "time"

// SelfName is the literal the combat log uses for the observing player.
const SelfName = "You"

// EventKind discriminates combat log event types.
type EventKind string

const (
	EventDamage       EventKind = "damage"
	EventPetDamage    EventKind = "pet_damage"
	EventCriticalHit  EventKind = "critical_hit"
	EventHealing      EventKind = "healing"
	EventDeath        EventKind = "death"
	EventResist       EventKind = "resist"
	EventCrowdControl EventKind = "crowd_control"
	EventRestStart    EventKind = "rest_start"
	EventRestEnd      EventKind = "rest_end"
	EventCombatEnter  EventKind = "combat_enter"
	EventCombatExit   EventKind = "combat_exit"
	EventLogBoundary  EventKind = "log_boundary"
)

// Event is a single parsed combat log line. Fields beyond Kind and
// Timestamp are populated per kind: damage events carry Source, Target
// and Amount; deaths carry Target and Killer; boundaries carry Opened.
type Event struct {
	Kind       EventKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source,omitempty"`
	Target     string    `json:"target,omitempty"`
	Amount     int       `json:"amount,omitempty"`
	DamageType string    `json:"damage_type,omitempty"`
	Effect     string    `json:"effect,omitempty"`
	Killer     string    `json:"killer,omitempty"`
	Opened     bool      `json:"opened,omitempty"`
	Raw        string    `json:"raw,omitempty"`
}

// Combat reports whether the kind participates in encounter resolution.
// Bookkeeping kinds (rest, combat mode, boundaries, crowd control) only
// affect session segmentation.
func (k EventKind) Combat() bool {
	switch k {
	case EventDamage, EventPetDamage, EventCriticalHit, EventHealing, EventDeath, EventResist:
		return true
	}
	return false
}

// DamageBearing reports whether the kind delivers or mitigates damage
// against a named opponent.
func (k EventKind) DamageBearing() bool {
	switch k {
	case EventDamage, EventPetDamage, EventCriticalHit, EventResist:
		return true
	}
	return false
}

// IsSelf reports whether name refers to the observing player. The log
// writes the player as "You"; events restored from the cache may carry
// the real character name instead. Self-attribution is case-sensitive,
// unlike opponent-name matching.
func IsSelf(name, player string) bool {
	if name == SelfName {
		return true
	}
	return player != "" && name == player
}
