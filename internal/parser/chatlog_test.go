package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

func parseOne(t *testing.T, line string) domain.Event {
	t.Helper()
	ev, ok := New().ParseLine(line)
	if !ok {
		t.Fatalf("line not recognized: %q", line)
	}
	return ev
}

func TestParseLine_DamageDealt(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		target     string
		amount     int
		damageType string
	}{
		{
			name:       "with damage type",
			line:       "[15:32:01] You hit the goblin for 32 points of crush damage!",
			target:     "goblin",
			amount:     32,
			damageType: "crush",
		},
		{
			name:       "without damage type",
			line:       "[15:32:01] You hit the goblin for 32 points of damage!",
			target:     "goblin",
			amount:     32,
			damageType: "Unknown",
		},
		{
			name:       "without article",
			line:       "[15:32:01] You hit Bandit Henchman for 5 points of damage.",
			target:     "Bandit Henchman",
			amount:     5,
			damageType: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := parseOne(t, tt.line)
			assertEqual(t, "Kind", domain.EventDamage, ev.Kind)
			assertEqual(t, "Source", domain.SelfName, ev.Source)
			assertEqual(t, "Target", tt.target, ev.Target)
			assertEqual(t, "Amount", tt.amount, ev.Amount)
			assertEqual(t, "DamageType", tt.damageType, ev.DamageType)
		})
	}
}

func TestParseLine_DamageTaken(t *testing.T) {
	t.Run("with body part and absorb", func(t *testing.T) {
		ev := parseOne(t, "[15:32:02] The water snake hits your torso for 14 (-2) damage!")
		assertEqual(t, "Kind", domain.EventDamage, ev.Kind)
		assertEqual(t, "Source", "water snake", ev.Source)
		assertEqual(t, "Target", domain.SelfName, ev.Target)
		assertEqual(t, "Amount", 14, ev.Amount)
	})

	t.Run("plain", func(t *testing.T) {
		ev := parseOne(t, "[15:32:02] The goblin hits you for 12 damage.")
		assertEqual(t, "Kind", domain.EventDamage, ev.Kind)
		assertEqual(t, "Source", "goblin", ev.Source)
		assertEqual(t, "Amount", 12, ev.Amount)
	})

	t.Run("pet takes the blow", func(t *testing.T) {
		ev := parseOne(t, "[15:32:03] The troll hits your cave bear for 30 damage!")
		assertEqual(t, "Kind", domain.EventDamage, ev.Kind)
		assertEqual(t, "Source", "troll", ev.Source)
		assertEqual(t, "Target", "cave bear", ev.Target)
		assertEqual(t, "Amount", 30, ev.Amount)
	})
}

func TestParseLine_PetDamage(t *testing.T) {
	ev := parseOne(t, "[15:32:03] Your cave bear hits the goblin for 30 points of body damage!")
	assertEqual(t, "Kind", domain.EventPetDamage, ev.Kind)
	assertEqual(t, "Source", "cave bear", ev.Source)
	assertEqual(t, "Target", "goblin", ev.Target)
	assertEqual(t, "Amount", 30, ev.Amount)
	assertEqual(t, "DamageType", "body", ev.DamageType)
}

func TestParseLine_CriticalHit(t *testing.T) {
	ev := parseOne(t, "[15:32:04] You critical hit for an additional 23 damage!")
	assertEqual(t, "Kind", domain.EventCriticalHit, ev.Kind)
	assertEqual(t, "Source", domain.SelfName, ev.Source)
	assertEqual(t, "Target", "", ev.Target)
	assertEqual(t, "Amount", 23, ev.Amount)
}

func TestParseLine_Healing(t *testing.T) {
	t.Run("heal done", func(t *testing.T) {
		ev := parseOne(t, "[15:32:05] You heal Bors for 40 hit points.")
		assertEqual(t, "Kind", domain.EventHealing, ev.Kind)
		assertEqual(t, "Source", domain.SelfName, ev.Source)
		assertEqual(t, "Target", "Bors", ev.Target)
		assertEqual(t, "Amount", 40, ev.Amount)
	})

	t.Run("heal self", func(t *testing.T) {
		ev := parseOne(t, "[15:32:05] You heal yourself for 40 hit points.")
		assertEqual(t, "Target", domain.SelfName, ev.Target)
	})

	t.Run("heal received", func(t *testing.T) {
		ev := parseOne(t, "[15:32:06] Aelfry heals you for 25 hit points!")
		assertEqual(t, "Kind", domain.EventHealing, ev.Kind)
		assertEqual(t, "Source", "Aelfry", ev.Source)
		assertEqual(t, "Target", domain.SelfName, ev.Target)
		assertEqual(t, "Amount", 25, ev.Amount)
	})
}

func TestParseLine_Deaths(t *testing.T) {
	t.Run("player kill", func(t *testing.T) {
		ev := parseOne(t, "[15:32:07] You just killed the goblin!")
		assertEqual(t, "Kind", domain.EventDeath, ev.Kind)
		assertEqual(t, "Target", "goblin", ev.Target)
		assertEqual(t, "Killer", domain.SelfName, ev.Killer)
	})

	t.Run("unattributed death", func(t *testing.T) {
		ev := parseOne(t, "[15:32:08] The goblin dies!")
		assertEqual(t, "Kind", domain.EventDeath, ev.Kind)
		assertEqual(t, "Target", "goblin", ev.Target)
		assertEqual(t, "Killer", "", ev.Killer)
	})
}

func TestParseLine_ResistAndCrowdControl(t *testing.T) {
	ev := parseOne(t, "[15:32:09] The goblin resists the effect!")
	assertEqual(t, "Kind", domain.EventResist, ev.Kind)
	assertEqual(t, "Target", "goblin", ev.Target)

	ev = parseOne(t, "[15:32:10] The goblin is stunned!")
	assertEqual(t, "Kind", domain.EventCrowdControl, ev.Kind)
	assertEqual(t, "Target", "goblin", ev.Target)
	assertEqual(t, "Effect", "stunned", ev.Effect)
}

func TestParseLine_Bookkeeping(t *testing.T) {
	tests := []struct {
		line string
		kind domain.EventKind
	}{
		{"[15:40:00] You sit down. Type '/stand' or move to stand up.", domain.EventRestStart},
		{"[15:40:30] You stand up.", domain.EventRestEnd},
		{"[15:41:00] You enter combat mode and target [the goblin]", domain.EventCombatEnter},
		{"[15:41:00] You enter combat mode", domain.EventCombatEnter},
		{"[15:42:00] You leave combat mode.", domain.EventCombatExit},
	}

	for _, tt := range tests {
		ev := parseOne(t, tt.line)
		if ev.Kind != tt.kind {
			t.Errorf("%q parsed as %s, expected %s", tt.line, ev.Kind, tt.kind)
		}
	}

	ev := parseOne(t, "[15:41:00] You enter combat mode and target [the goblin]")
	assertEqual(t, "Target", "goblin", ev.Target)
}

func TestParseLine_Boundaries(t *testing.T) {
	p := New()

	opened, ok := p.ParseLine("*** Chat Log Opened: Sat Mar 14 20:01:30 2026")
	if !ok {
		t.Fatal("opening boundary not recognized")
	}
	assertEqual(t, "Kind", domain.EventLogBoundary, opened.Kind)
	assertEqual(t, "Opened", true, opened.Opened)

	hitEv, ok := p.ParseLine("[20:01:45] You hit the goblin for 10 points of damage!")
	if !ok {
		t.Fatal("hit not recognized")
	}
	if !hitEv.Timestamp.After(opened.Timestamp) {
		t.Errorf("boundary at %s should precede hit at %s", opened.Timestamp, hitEv.Timestamp)
	}

	closed, ok := p.ParseLine("*** Chat Log Closed: Sat Mar 14 20:05:00 2026")
	if !ok {
		t.Fatal("closing boundary not recognized")
	}
	assertEqual(t, "Opened", false, closed.Opened)
	if !closed.Timestamp.After(hitEv.Timestamp) {
		t.Errorf("closing boundary at %s should follow hit at %s", closed.Timestamp, hitEv.Timestamp)
	}
}

func TestParseLine_BoundaryWithUnparsableDate(t *testing.T) {
	p := New()

	opened, ok := p.ParseLine("*** Chat Log Opened: garbage date")
	if !ok {
		t.Fatal("opening boundary not recognized")
	}
	assertEqual(t, "Kind", domain.EventLogBoundary, opened.Kind)
	assertEqual(t, "Opened", true, opened.Opened)
	if !opened.Timestamp.Equal(dayZero) {
		t.Errorf("leading boundary at %s, expected the timeline start %s", opened.Timestamp, dayZero)
	}

	hitEv, ok := p.ParseLine("[20:00:05] You hit the goblin for 32 points of damage!")
	if !ok {
		t.Fatal("hit not recognized")
	}
	if hitEv.Timestamp.Before(opened.Timestamp) {
		t.Errorf("hit at %s precedes the leading boundary at %s", hitEv.Timestamp, opened.Timestamp)
	}

	closed, ok := p.ParseLine("*** Chat Log Closed: also garbage")
	if !ok {
		t.Fatal("closing boundary not recognized")
	}
	if !closed.Timestamp.Equal(hitEv.Timestamp) {
		t.Errorf("mid-stream fallback at %s, expected the last seen timestamp %s", closed.Timestamp, hitEv.Timestamp)
	}
}

func TestParseLine_SkipsUnrecognized(t *testing.T) {
	lines := []string{
		"",
		"You hit the goblin for 32 points of damage!", // no timestamp prefix
		"[15:32:01] You say, \"hello\"",
		"[15:32:01] Welcome to the realm!",
		"[bad time] You hit the goblin for 32 points of damage!",
	}

	p := New()
	for _, line := range lines {
		if _, ok := p.ParseLine(line); ok {
			t.Errorf("line should be skipped: %q", line)
		}
	}
}

func TestParser_MidnightRollover(t *testing.T) {
	p := New()

	before, _ := p.ParseLine("[23:59:58] You hit the goblin for 10 points of damage!")
	after, _ := p.ParseLine("[00:00:03] You hit the goblin for 10 points of damage!")

	delta := after.Timestamp.Sub(before.Timestamp)
	if delta != 5*time.Second {
		t.Errorf("rollover delta = %s, expected 5s", delta)
	}
}

func TestParseFile(t *testing.T) {
	content := strings.Join([]string{
		"*** Chat Log Opened: Sat Mar 14 20:00:00 2026",
		"[20:00:05] You enter combat mode and target [the goblin]",
		"[20:00:06] You hit the goblin for 32 points of crush damage!",
		"[20:00:08] The goblin hits you for 12 damage.",
		"[20:00:09] You critical hit for an additional 8 damage!",
		"[20:00:11] You just killed the goblin!",
		"[20:00:12] You say, \"that was close\"",
		"[20:00:15] You leave combat mode.",
		"*** Chat Log Closed: Sat Mar 14 20:00:30 2026",
	}, "\n") + "\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "chat.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test log: %v", err)
	}

	events, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	// The say line is dropped; everything else parses.
	assertEqual(t, "event count", 8, len(events))
	assertEqual(t, "first kind", domain.EventLogBoundary, events[0].Kind)
	assertEqual(t, "last kind", domain.EventLogBoundary, events[len(events)-1].Kind)

	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events out of order at %d: %s before %s", i, events[i].Timestamp, events[i-1].Timestamp)
		}
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.log")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
