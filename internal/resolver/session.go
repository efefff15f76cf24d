package resolver

import (
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

// Result collects everything one event finalized. Each encounter and
// session appears in exactly one Result over the life of a state.
type Result struct {
	Encounters []domain.Encounter
	Sessions   []domain.Session
}

// sessionBuilder accumulates one in-flight session.
type sessionBuilder struct {
	number     int
	started    time.Time
	last       time.Time
	events     []domain.Event
	encounters []domain.Encounter
	combat     *EncounterState
}

// SessionState folds the event stream into play sessions. Every
// session runs its own EncounterState, so encounter instance numbering
// restarts at 1 in each session.
type SessionState struct {
	player string
	cfg    Config
	cur    *sessionBuilder
	next   int
}

func NewSessionState(player string, cfg Config) *SessionState {
	return &SessionState{player: player, cfg: cfg.WithDefaults(), next: 1}
}

// Apply folds one event. A single event can finalize encounters (a
// death, a stale fight) and up to two sessions: a stale session closed
// by the gap rule plus a one-event session closed by its own
// terminator.
func (s *SessionState) Apply(ev domain.Event) Result {
	var res Result

	if s.cur != nil && ev.Timestamp.Sub(s.cur.last) > s.cfg.SessionTimeout {
		s.finishInto(&res, timeoutReason(s.cur), domain.EncounterSessionEnd)
	}
	if s.cur == nil {
		s.cur = &sessionBuilder{
			number:  s.next,
			started: ev.Timestamp,
			last:    ev.Timestamp,
			combat:  NewEncounterState(s.player, s.cfg),
		}
		s.next++
	}

	b := s.cur
	b.events = append(b.events, ev)
	if ev.Timestamp.After(b.last) {
		b.last = ev.Timestamp
	}
	if ev.Kind.Combat() {
		closed := b.combat.Apply(ev)
		b.encounters = append(b.encounters, closed...)
		res.Encounters = append(res.Encounters, closed...)
	}

	// Terminators take effect after the event is recorded, so the
	// closing event belongs to the session it closes.
	switch {
	case ev.Kind == domain.EventRestStart && !s.cfg.DisableRestSplit:
		s.finishInto(&res, domain.SessionRest, domain.EncounterSessionEnd)
	case ev.Kind == domain.EventLogBoundary && !ev.Opened:
		s.finishInto(&res, domain.SessionLogBoundary, domain.EncounterSessionEnd)
	}
	return res
}

// Flush closes the current session with the given reason, or returns
// nil when none is open. End-of-log flushes close open encounters as
// session-end; in-progress flushes keep them in-progress.
func (s *SessionState) Flush(reason domain.SessionEndReason) *domain.Session {
	if s.cur == nil {
		return nil
	}
	encReason := domain.EncounterSessionEnd
	if reason == domain.SessionInProgress {
		encReason = domain.EncounterInProgress
	}
	sess, _ := s.finish(reason, encReason)
	return &sess
}

// Snapshot returns the current session as an in-progress copy without
// closing anything. The second return is false when no session is
// open.
func (s *SessionState) Snapshot() (domain.Session, bool) {
	if s.cur == nil {
		return domain.Session{}, false
	}
	b := s.cur
	encounters := append(append([]domain.Encounter(nil), b.encounters...), b.combat.Provisional()...)
	sortEncounters(encounters)
	return domain.Session{
		ID:         sessionID(s.player, b.number, b.started),
		Number:     b.number,
		StartedAt:  b.started,
		EndedAt:    b.last,
		EndReason:  domain.SessionInProgress,
		Events:     append([]domain.Event(nil), b.events...),
		Encounters: encounters,
	}, true
}

func (s *SessionState) finishInto(res *Result, reason domain.SessionEndReason, encReason domain.EncounterEndReason) {
	sess, closed := s.finish(reason, encReason)
	res.Encounters = append(res.Encounters, closed...)
	res.Sessions = append(res.Sessions, sess)
}

// finish closes the current session. The second return holds the
// encounters the closure itself forced shut.
func (s *SessionState) finish(reason domain.SessionEndReason, encReason domain.EncounterEndReason) (domain.Session, []domain.Encounter) {
	b := s.cur
	s.cur = nil
	closed := b.combat.FinalizeAll(encReason)
	encounters := append(b.encounters, closed...)
	sortEncounters(encounters)
	return domain.Session{
		ID:         sessionID(s.player, b.number, b.started),
		Number:     b.number,
		StartedAt:  b.started,
		EndedAt:    b.last,
		EndReason:  reason,
		Events:     b.events,
		Encounters: encounters,
	}, closed
}

// timeoutReason distinguishes a session that went quiet after the
// player left combat mode from one that simply stopped logging.
func timeoutReason(b *sessionBuilder) domain.SessionEndReason {
	if n := len(b.events); n > 0 && b.events[n-1].Kind == domain.EventCombatExit {
		return domain.SessionCombatExit
	}
	return domain.SessionTimeout
}

// ResolveSessions resolves a complete event stream into sessions in
// chronological order. The trailing session closes as end-of-log.
func ResolveSessions(events []domain.Event, player string, cfg Config) []domain.Session {
	state := NewSessionState(player, cfg)
	var out []domain.Session
	for _, ev := range events {
		out = append(out, state.Apply(ev).Sessions...)
	}
	if last := state.Flush(domain.SessionEndOfLog); last != nil {
		out = append(out, *last)
	}
	return out
}
