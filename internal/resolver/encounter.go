package resolver

import (
	"sort"
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

// builder accumulates one in-flight encounter.
type builder struct {
	instance   domain.TargetInstance
	started    time.Time
	last       time.Time
	events     []domain.Event
	dealt      int
	taken      int
	healed     int
	playerKill bool
}

func (b *builder) add(ev domain.Event) {
	b.events = append(b.events, ev)
	if ev.Timestamp.After(b.last) {
		b.last = ev.Timestamp
	}
}

func (b *builder) finalize(reason domain.EncounterEndReason) domain.Encounter {
	return domain.Encounter{
		Instance:    b.instance,
		StartedAt:   b.started,
		EndedAt:     b.last,
		EndReason:   reason,
		Events:      b.events,
		DamageDealt: b.dealt,
		DamageTaken: b.taken,
		HealingDone: b.healed,
		PlayerKill:  b.playerKill,
	}
}

// EncounterState folds combat events into encounters one event at a
// time. A builder per target name stays open until a death, a quiet
// gap longer than the encounter timeout, or an explicit flush. Same
// names are matched case-insensitively; repeat fights against one name
// get increasing instance numbers.
type EncounterState struct {
	player  string
	cfg     Config
	open    map[string]*builder // folded name -> open builder
	counts  map[string]int      // folded name -> instances opened so far
	names   map[string]string   // folded name -> first-seen casing
	lastHit string              // folded name of the last damage event
}

func NewEncounterState(player string, cfg Config) *EncounterState {
	return &EncounterState{
		player: player,
		cfg:    cfg.WithDefaults(),
		open:   make(map[string]*builder),
		counts: make(map[string]int),
		names:  make(map[string]string),
	}
}

// Apply folds one event and returns any encounters it finalized, in
// closure order. Non-combat kinds are ignored.
func (s *EncounterState) Apply(ev domain.Event) []domain.Encounter {
	switch ev.Kind {
	case domain.EventDamage, domain.EventPetDamage:
		return s.applyDamage(ev)
	case domain.EventCriticalHit, domain.EventResist:
		return s.applyFollowup(ev)
	case domain.EventHealing:
		s.applyHealing(ev)
	case domain.EventDeath:
		return s.applyDeath(ev)
	}
	return nil
}

func (s *EncounterState) applyDamage(ev domain.Event) []domain.Encounter {
	name := s.opponentOf(ev)
	if name == "" {
		return nil
	}
	key := domain.FoldName(name)

	var closed []domain.Encounter
	b := s.open[key]
	if b != nil && ev.Timestamp.Sub(b.last) > s.cfg.EncounterTimeout {
		closed = append(closed, s.close(key, domain.EncounterTimeout))
		b = nil
	}
	if b == nil {
		b = s.openBuilder(name, ev.Timestamp)
	}
	b.add(ev)
	s.credit(b, ev)
	s.lastHit = key
	return closed
}

// applyFollowup attaches a critical hit or resist to the fight it
// trails. Crit lines usually name nobody, so they correlate to the
// most recent damage target. Followups never open a fight on their
// own.
func (s *EncounterState) applyFollowup(ev domain.Event) []domain.Encounter {
	key := domain.FoldName(s.opponentOf(ev))
	if key == "" {
		key = s.lastHit
	}
	if key == "" {
		return nil
	}
	b := s.open[key]
	if b == nil {
		return nil
	}
	if ev.Timestamp.Sub(b.last) > s.cfg.EncounterTimeout {
		return []domain.Encounter{s.close(key, domain.EncounterTimeout)}
	}
	b.add(ev)
	s.credit(b, ev)
	return nil
}

// applyHealing folds a player heal into the most recently active open
// fight. Heals sourced by an opponent keep that opponent's own fight
// alive without touching the player's totals. Heals with no live fight
// to attach to are dropped.
func (s *EncounterState) applyHealing(ev domain.Event) {
	if domain.IsSelf(ev.Source, s.player) {
		b := s.mostRecent()
		if b == nil || ev.Timestamp.Sub(b.last) > s.cfg.EncounterTimeout {
			return
		}
		b.add(ev)
		b.healed += ev.Amount
		return
	}

	b := s.open[domain.FoldName(ev.Source)]
	if b == nil || ev.Timestamp.Sub(b.last) > s.cfg.EncounterTimeout {
		return
	}
	b.add(ev)
}

func (s *EncounterState) applyDeath(ev domain.Event) []domain.Encounter {
	if ev.Target == "" {
		return nil
	}
	key := domain.FoldName(ev.Target)

	var closed []domain.Encounter
	b := s.open[key]
	if b != nil && ev.Timestamp.Sub(b.last) > s.cfg.EncounterTimeout {
		closed = append(closed, s.close(key, domain.EncounterTimeout))
		b = nil
	}
	if b == nil {
		// A death with no preceding hits still yields a zero-damage
		// encounter, so every kill is accounted for.
		b = s.openBuilder(ev.Target, ev.Timestamp)
	}
	b.add(ev)
	if domain.IsSelf(ev.Killer, s.player) {
		b.playerKill = true
	}
	closed = append(closed, s.close(key, domain.EncounterDeath))
	return closed
}

// FinalizeAll closes every open builder with the given reason, ordered
// by fight start time.
func (s *EncounterState) FinalizeAll(reason domain.EncounterEndReason) []domain.Encounter {
	keys := s.openKeys()
	out := make([]domain.Encounter, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.close(key, reason))
	}
	return out
}

// Provisional returns the open builders as in-progress encounters
// without closing them. Safe to call between Apply calls.
func (s *EncounterState) Provisional() []domain.Encounter {
	keys := s.openKeys()
	out := make([]domain.Encounter, 0, len(keys))
	for _, key := range keys {
		b := s.open[key]
		enc := b.finalize(domain.EncounterInProgress)
		enc.Events = append([]domain.Event(nil), b.events...)
		out = append(out, enc)
	}
	return out
}

// opponentOf picks the non-player participant of a combat event. Pet
// damage always belongs to the pet's victim. Events between two third
// parties are not the player's fight and resolve to "".
func (s *EncounterState) opponentOf(ev domain.Event) string {
	if ev.Kind == domain.EventPetDamage {
		return ev.Target
	}
	if domain.IsSelf(ev.Source, s.player) {
		return ev.Target
	}
	if domain.IsSelf(ev.Target, s.player) {
		return ev.Source
	}
	return ""
}

func (s *EncounterState) credit(b *builder, ev domain.Event) {
	switch {
	case ev.Kind == domain.EventPetDamage:
		b.dealt += ev.Amount
	case domain.IsSelf(ev.Source, s.player):
		b.dealt += ev.Amount
	case domain.IsSelf(ev.Target, s.player):
		b.taken += ev.Amount
	}
}

func (s *EncounterState) openBuilder(name string, at time.Time) *builder {
	key := domain.FoldName(name)
	if _, ok := s.names[key]; !ok {
		s.names[key] = name
	}
	s.counts[key]++
	b := &builder{
		instance: domain.TargetInstance{
			Name:   s.names[key],
			Number: s.counts[key],
			ID:     instanceID(key, s.counts[key], at),
		},
		started: at,
		last:    at,
	}
	s.open[key] = b
	return b
}

func (s *EncounterState) close(key string, reason domain.EncounterEndReason) domain.Encounter {
	b := s.open[key]
	delete(s.open, key)
	if s.lastHit == key {
		s.lastHit = ""
	}
	return b.finalize(reason)
}

func (s *EncounterState) mostRecent() *builder {
	var best *builder
	var bestKey string
	for key, b := range s.open {
		if best == nil || b.last.After(best.last) || (b.last.Equal(best.last) && key < bestKey) {
			best, bestKey = b, key
		}
	}
	return best
}

// openKeys returns the open builder keys ordered by start time, with
// the folded name as a deterministic tiebreak.
func (s *EncounterState) openKeys() []string {
	keys := make([]string, 0, len(s.open))
	for key := range s.open {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.open[keys[i]], s.open[keys[j]]
		if !a.started.Equal(b.started) {
			return a.started.Before(b.started)
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortEncounters(encounters []domain.Encounter) {
	sort.SliceStable(encounters, func(i, j int) bool {
		if !encounters[i].StartedAt.Equal(encounters[j].StartedAt) {
			return encounters[i].StartedAt.Before(encounters[j].StartedAt)
		}
		return domain.FoldName(encounters[i].Instance.Name) < domain.FoldName(encounters[j].Instance.Name)
	})
}

// AllEncounters resolves a complete event stream into a flat list of
// encounters ordered by start time. Builders still open at end of
// input close as session-end.
func AllEncounters(events []domain.Event, player string, cfg Config) []domain.Encounter {
	state := NewEncounterState(player, cfg)
	var out []domain.Encounter
	for _, ev := range events {
		out = append(out, state.Apply(ev)...)
	}
	out = append(out, state.FinalizeAll(domain.EncounterSessionEnd)...)
	sortEncounters(out)
	return out
}

// ResolveInstances resolves a complete event stream and groups the
// encounters by target name. Map keys use the first-seen casing of
// each name.
func ResolveInstances(events []domain.Event, player string, cfg Config) map[string]*domain.TargetGroup {
	groups := make(map[string]*domain.TargetGroup)
	for _, enc := range AllEncounters(events, player, cfg) {
		g := groups[enc.Instance.Name]
		if g == nil {
			g = &domain.TargetGroup{Name: enc.Instance.Name}
			groups[enc.Instance.Name] = g
		}
		g.Encounters = append(g.Encounters, enc)
		if enc.PlayerKill {
			g.TotalKills++
		}
	}
	return groups
}
