package resolver

import (
	"reflect"
	"testing"
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

var testBase = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return testBase.Add(time.Duration(sec) * time.Second)
}

func hit(sec int, target string, amount int) domain.Event {
	return domain.Event{Kind: domain.EventDamage, Timestamp: at(sec), Source: domain.SelfName, Target: target, Amount: amount}
}

func hitBy(sec int, source string, amount int) domain.Event {
	return domain.Event{Kind: domain.EventDamage, Timestamp: at(sec), Source: source, Target: domain.SelfName, Amount: amount}
}

func petHit(sec int, pet, target string, amount int) domain.Event {
	return domain.Event{Kind: domain.EventPetDamage, Timestamp: at(sec), Source: pet, Target: target, Amount: amount}
}

func crit(sec int, amount int) domain.Event {
	return domain.Event{Kind: domain.EventCriticalHit, Timestamp: at(sec), Source: domain.SelfName, Amount: amount}
}

func heal(sec int, amount int) domain.Event {
	return domain.Event{Kind: domain.EventHealing, Timestamp: at(sec), Source: domain.SelfName, Target: domain.SelfName, Amount: amount}
}

func death(sec int, target, killer string) domain.Event {
	return domain.Event{Kind: domain.EventDeath, Timestamp: at(sec), Target: target, Killer: killer}
}

func TestAllEncounters_DeathStartsNewInstance(t *testing.T) {
	events := []domain.Event{
		hit(0, "goblin", 100),
		hit(5, "goblin", 150),
		hit(10, "goblin", 120),
		death(12, "goblin", domain.SelfName),
		hit(20, "goblin", 50),
		hit(23, "goblin", 30),
	}

	encounters := AllEncounters(events, "", DefaultConfig())
	if len(encounters) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(encounters))
	}

	first := encounters[0]
	if first.Instance.Number != 1 || first.Instance.DisplayName() != "goblin" {
		t.Errorf("first instance = %q (#%d), expected goblin #1", first.Instance.DisplayName(), first.Instance.Number)
	}
	if first.EndReason != domain.EncounterDeath || !first.PlayerKill {
		t.Errorf("first encounter should end by player kill, got %s playerKill=%v", first.EndReason, first.PlayerKill)
	}
	if first.DamageDealt != 370 {
		t.Errorf("first encounter damage = %d, expected 370", first.DamageDealt)
	}
	if !first.EndedAt.Equal(at(12)) {
		t.Errorf("first encounter end = %s, expected %s", first.EndedAt, at(12))
	}

	second := encounters[1]
	if second.Instance.Number != 2 || second.Instance.DisplayName() != "goblin #2" {
		t.Errorf("second instance = %q (#%d), expected goblin #2", second.Instance.DisplayName(), second.Instance.Number)
	}
	if second.EndReason != domain.EncounterSessionEnd {
		t.Errorf("second encounter end reason = %s, expected session_end", second.EndReason)
	}
	if second.DamageDealt != 80 {
		t.Errorf("second encounter damage = %d, expected 80", second.DamageDealt)
	}
}

func TestResolveInstances_SequentialKills(t *testing.T) {
	events := []domain.Event{
		hit(0, "goblin", 20),
		death(3, "goblin", domain.SelfName),
		hit(10, "goblin", 25),
		death(13, "goblin", domain.SelfName),
		hit(20, "goblin", 30),
		death(22, "goblin", domain.SelfName),
	}

	groups := ResolveInstances(events, "", DefaultConfig())
	g := groups["goblin"]
	if g == nil {
		t.Fatal("missing goblin group")
	}
	if g.TotalKills != 3 {
		t.Errorf("TotalKills = %d, expected 3", g.TotalKills)
	}
	if len(g.Encounters) != 3 {
		t.Fatalf("expected 3 encounters, got %d", len(g.Encounters))
	}

	wantNames := []string{"goblin", "goblin #2", "goblin #3"}
	for i, enc := range g.Encounters {
		if enc.Instance.Number != i+1 {
			t.Errorf("encounter %d instance number = %d", i, enc.Instance.Number)
		}
		if got := enc.Instance.DisplayName(); got != wantNames[i] {
			t.Errorf("encounter %d display name = %q, expected %q", i, got, wantNames[i])
		}
	}
}

func TestAllEncounters_InterleavedTargets(t *testing.T) {
	events := []domain.Event{
		hit(0, "goblin", 10),
		hit(2, "water snake", 20),
		hit(4, "goblin", 30),
		hit(6, "water snake", 40),
		death(8, "water snake", domain.SelfName),
		death(10, "goblin", domain.SelfName),
	}

	encounters := AllEncounters(events, "", DefaultConfig())
	if len(encounters) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(encounters))
	}

	// Ordered by start time: goblin opened first.
	goblin, snake := encounters[0], encounters[1]
	if goblin.Instance.Name != "goblin" || snake.Instance.Name != "water snake" {
		t.Fatalf("unexpected order: %q then %q", goblin.Instance.Name, snake.Instance.Name)
	}
	if goblin.DamageDealt != 40 || snake.DamageDealt != 60 {
		t.Errorf("damage split = %d/%d, expected 40/60", goblin.DamageDealt, snake.DamageDealt)
	}

	for _, ev := range goblin.Events {
		if ev.Target != "goblin" {
			t.Errorf("goblin encounter contains event against %q", ev.Target)
		}
	}
	for _, ev := range snake.Events {
		if ev.Target != "water snake" {
			t.Errorf("snake encounter contains event against %q", ev.Target)
		}
	}
}

func TestResolveInstances_GapSplitsInstance(t *testing.T) {
	events := []domain.Event{
		hit(0, "goblin", 50),
		hit(2, "goblin", 30),
		hit(22, "goblin", 40),
		death(25, "goblin", domain.SelfName),
	}

	groups := ResolveInstances(events, "", DefaultConfig())
	g := groups["goblin"]
	if g == nil {
		t.Fatal("missing goblin group")
	}
	if len(g.Encounters) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(g.Encounters))
	}
	if g.TotalKills != 1 {
		t.Errorf("TotalKills = %d, expected 1", g.TotalKills)
	}

	if g.Encounters[0].EndReason != domain.EncounterTimeout {
		t.Errorf("stale encounter reason = %s, expected timeout", g.Encounters[0].EndReason)
	}
	if g.Encounters[0].DamageDealt != 80 {
		t.Errorf("stale encounter damage = %d, expected the pre-gap hits", g.Encounters[0].DamageDealt)
	}
	if !g.Encounters[0].EndedAt.Equal(at(2)) {
		t.Errorf("stale encounter end = %s, expected last pre-gap event", g.Encounters[0].EndedAt)
	}
	if g.Encounters[1].EndReason != domain.EncounterDeath {
		t.Errorf("fresh encounter reason = %s, expected death", g.Encounters[1].EndReason)
	}
	if g.Encounters[1].DamageDealt != 40 {
		t.Errorf("fresh encounter damage = %d, expected 40", g.Encounters[1].DamageDealt)
	}
}

func TestEncounterState_GapAtThresholdStaysOpen(t *testing.T) {
	state := NewEncounterState("", DefaultConfig())
	state.Apply(hit(0, "goblin", 10))
	state.Apply(hit(15, "goblin", 10))

	encounters := state.FinalizeAll(domain.EncounterSessionEnd)
	if len(encounters) != 1 {
		t.Fatalf("a gap equal to the timeout split the fight: %d encounters", len(encounters))
	}
	if encounters[0].DamageDealt != 20 {
		t.Errorf("damage = %d, expected 20", encounters[0].DamageDealt)
	}
}

func TestAllEncounters_SynthesizedDeath(t *testing.T) {
	events := []domain.Event{death(5, "goblin", domain.SelfName)}

	encounters := AllEncounters(events, "", DefaultConfig())
	if len(encounters) != 1 {
		t.Fatalf("expected 1 encounter, got %d", len(encounters))
	}

	enc := encounters[0]
	if enc.DamageDealt != 0 || enc.DamageTaken != 0 {
		t.Errorf("synthesized encounter has damage %d/%d, expected zero", enc.DamageDealt, enc.DamageTaken)
	}
	if !enc.WasKilled() || !enc.PlayerKill {
		t.Errorf("synthesized encounter should count as player kill")
	}
	if !enc.StartedAt.Equal(at(5)) || !enc.EndedAt.Equal(at(5)) {
		t.Errorf("synthesized encounter spans %s..%s, expected the death instant", enc.StartedAt, enc.EndedAt)
	}
}

func TestAllEncounters_KillCreditRequiresPlayer(t *testing.T) {
	events := []domain.Event{
		hit(0, "goblin", 40),
		death(3, "goblin", "Bob"),
	}

	groups := ResolveInstances(events, "", DefaultConfig())
	g := groups["goblin"]
	if g == nil {
		t.Fatal("missing goblin group")
	}
	if g.Encounters[0].EndReason != domain.EncounterDeath {
		t.Errorf("encounter should still close as death, got %s", g.Encounters[0].EndReason)
	}
	if g.TotalKills != 0 {
		t.Errorf("TotalKills = %d, expected 0 for a kill by someone else", g.TotalKills)
	}
}

func TestAllEncounters_CaseInsensitiveNames(t *testing.T) {
	events := []domain.Event{
		hit(0, "Goblin", 10),
		hit(3, "goblin", 20),
		hit(6, "GOBLIN", 30),
	}

	encounters := AllEncounters(events, "", DefaultConfig())
	if len(encounters) != 1 {
		t.Fatalf("expected a single encounter, got %d", len(encounters))
	}
	if encounters[0].Instance.Name != "Goblin" {
		t.Errorf("canonical name = %q, expected first-seen casing Goblin", encounters[0].Instance.Name)
	}
	if encounters[0].DamageDealt != 60 {
		t.Errorf("damage = %d, expected 60", encounters[0].DamageDealt)
	}
}

func TestEncounterState_HealingAttribution(t *testing.T) {
	t.Run("folds into most recent fight", func(t *testing.T) {
		state := NewEncounterState("", DefaultConfig())
		state.Apply(hit(0, "goblin", 10))
		state.Apply(hit(2, "water snake", 10))
		state.Apply(heal(3, 25))

		encounters := state.FinalizeAll(domain.EncounterSessionEnd)
		if len(encounters) != 2 {
			t.Fatalf("expected 2 encounters, got %d", len(encounters))
		}
		goblin, snake := encounters[0], encounters[1]
		if goblin.HealingDone != 0 {
			t.Errorf("goblin healing = %d, expected 0", goblin.HealingDone)
		}
		if snake.HealingDone != 25 {
			t.Errorf("snake healing = %d, expected 25", snake.HealingDone)
		}
	})

	t.Run("dropped without an open fight", func(t *testing.T) {
		state := NewEncounterState("", DefaultConfig())
		state.Apply(heal(0, 25))

		if got := state.FinalizeAll(domain.EncounterSessionEnd); len(got) != 0 {
			t.Fatalf("a lone heal opened %d encounters", len(got))
		}
	})

	t.Run("stale fight is not extended", func(t *testing.T) {
		state := NewEncounterState("", DefaultConfig())
		state.Apply(hit(0, "goblin", 10))
		state.Apply(heal(30, 25))

		encounters := state.FinalizeAll(domain.EncounterSessionEnd)
		if encounters[0].HealingDone != 0 {
			t.Errorf("late heal was folded into a stale fight")
		}
		if !encounters[0].EndedAt.Equal(at(0)) {
			t.Errorf("late heal extended a stale fight to %s", encounters[0].EndedAt)
		}
	})
}

func TestEncounterState_CritCorrelation(t *testing.T) {
	t.Run("trailing crit joins the last hit target", func(t *testing.T) {
		state := NewEncounterState("", DefaultConfig())
		state.Apply(hit(0, "goblin", 30))
		state.Apply(crit(1, 12))

		encounters := state.FinalizeAll(domain.EncounterSessionEnd)
		if encounters[0].DamageDealt != 42 {
			t.Errorf("damage = %d, expected 42", encounters[0].DamageDealt)
		}
	})

	t.Run("dangling crit never opens a fight", func(t *testing.T) {
		state := NewEncounterState("", DefaultConfig())
		state.Apply(crit(0, 12))

		if got := state.FinalizeAll(domain.EncounterSessionEnd); len(got) != 0 {
			t.Fatalf("a dangling crit opened %d encounters", len(got))
		}
	})
}

func TestEncounterState_DamageTaken(t *testing.T) {
	state := NewEncounterState("", DefaultConfig())
	state.Apply(hitBy(0, "goblin", 14))
	state.Apply(hit(1, "goblin", 40))
	state.Apply(hitBy(2, "goblin", 9))

	encounters := state.FinalizeAll(domain.EncounterSessionEnd)
	if len(encounters) != 1 {
		t.Fatalf("expected 1 encounter, got %d", len(encounters))
	}
	if encounters[0].DamageDealt != 40 || encounters[0].DamageTaken != 23 {
		t.Errorf("totals = %d dealt / %d taken, expected 40/23", encounters[0].DamageDealt, encounters[0].DamageTaken)
	}
}

func TestEncounterState_PetDamage(t *testing.T) {
	state := NewEncounterState("", DefaultConfig())
	state.Apply(petHit(0, "cave bear", "goblin", 30))

	encounters := state.FinalizeAll(domain.EncounterSessionEnd)
	if len(encounters) != 1 {
		t.Fatalf("expected 1 encounter, got %d", len(encounters))
	}
	if encounters[0].Instance.Name != "goblin" {
		t.Errorf("pet damage attributed to %q, expected goblin", encounters[0].Instance.Name)
	}
	if encounters[0].DamageDealt != 30 {
		t.Errorf("pet damage = %d, expected 30", encounters[0].DamageDealt)
	}
}

func TestEncounterState_ThirdPartyDamageIgnored(t *testing.T) {
	state := NewEncounterState("", DefaultConfig())
	state.Apply(domain.Event{Kind: domain.EventDamage, Timestamp: at(0), Source: "orc", Target: "goblin", Amount: 50})

	if got := state.FinalizeAll(domain.EncounterSessionEnd); len(got) != 0 {
		t.Fatalf("third-party damage opened %d encounters", len(got))
	}
}

func TestEncounterState_Provisional(t *testing.T) {
	state := NewEncounterState("", DefaultConfig())
	state.Apply(hit(0, "goblin", 40))

	provisional := state.Provisional()
	if len(provisional) != 1 {
		t.Fatalf("expected 1 provisional encounter, got %d", len(provisional))
	}
	if provisional[0].EndReason != domain.EncounterInProgress {
		t.Errorf("provisional reason = %s, expected in_progress", provisional[0].EndReason)
	}

	// The query must not disturb the fold.
	state.Apply(hit(2, "goblin", 10))
	final := state.FinalizeAll(domain.EncounterSessionEnd)
	if len(final) != 1 {
		t.Fatalf("expected 1 final encounter, got %d", len(final))
	}
	if final[0].DamageDealt != 50 {
		t.Errorf("damage after snapshot = %d, expected 50", final[0].DamageDealt)
	}
}

func TestAllEncounters_Idempotent(t *testing.T) {
	events := []domain.Event{
		hit(0, "goblin", 40),
		hit(2, "water snake", 20),
		heal(3, 10),
		crit(4, 5),
		death(6, "goblin", domain.SelfName),
		hit(30, "water snake", 15),
	}

	first := AllEncounters(events, "", DefaultConfig())
	second := AllEncounters(events, "", DefaultConfig())
	if !reflect.DeepEqual(first, second) {
		t.Error("resolving the same input twice produced different output")
	}
}
