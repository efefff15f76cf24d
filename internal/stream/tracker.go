package stream

import (
	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/resolver"
)

// Hooks receives finalized results as the tracker observes events.
// Nil hooks are skipped.
type Hooks struct {
	Encounter func(domain.Encounter)
	Session   func(domain.Session)
}

// Tracker drives session resolution over a live event feed with no
// known end of stream. It applies the same transition rules as batch
// resolution; the difference is that finalization is delivered through
// hooks as it happens, and shutdown is an explicit Flush instead of
// end of input.
type Tracker struct {
	state *resolver.SessionState
	hooks Hooks
}

func NewTracker(player string, cfg resolver.Config, hooks Hooks) *Tracker {
	return &Tracker{
		state: resolver.NewSessionState(player, cfg),
		hooks: hooks,
	}
}

// Observe folds one event and fires hooks for anything it finalized.
// Events must arrive in non-decreasing timestamp order.
func (t *Tracker) Observe(ev domain.Event) {
	res := t.state.Apply(ev)
	if t.hooks.Encounter != nil {
		for _, enc := range res.Encounters {
			t.hooks.Encounter(enc)
		}
	}
	if t.hooks.Session != nil {
		for _, sess := range res.Sessions {
			t.hooks.Session(sess)
		}
	}
}

// Snapshot returns the open session's provisional state without
// disturbing it.
func (t *Tracker) Snapshot() (domain.Session, bool) {
	return t.state.Snapshot()
}

// Flush force-closes the open session as in-progress, firing hooks for
// it and for the encounters the flush itself closed. Encounters that
// finalized earlier were already delivered and are not repeated.
func (t *Tracker) Flush() {
	sess := t.state.Flush(domain.SessionInProgress)
	if sess == nil {
		return
	}
	if t.hooks.Encounter != nil {
		for _, enc := range sess.Encounters {
			if enc.EndReason == domain.EncounterInProgress {
				t.hooks.Encounter(enc)
			}
		}
	}
	if t.hooks.Session != nil {
		t.hooks.Session(*sess)
	}
}
