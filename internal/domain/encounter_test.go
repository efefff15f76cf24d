package domain

import (
	"math"
	"testing"
	"time"
)

func TestEncounter_DPS(t *testing.T) {
	base := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		encounter Encounter
		expected  float64
	}{
		{
			name: "damage over duration",
			encounter: Encounter{
				StartedAt:   base,
				EndedAt:     base.Add(10 * time.Second),
				DamageDealt: 200,
			},
			expected: 20.0,
		},
		{
			name: "zero duration is zero safe",
			encounter: Encounter{
				StartedAt:   base,
				EndedAt:     base,
				DamageDealt: 150,
			},
			expected: 0,
		},
		{
			name: "no damage",
			encounter: Encounter{
				StartedAt: base,
				EndedAt:   base.Add(5 * time.Second),
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatNear(t, "DPS", tt.expected, tt.encounter.DPS())
		})
	}
}

func TestEncounter_WasKilled(t *testing.T) {
	killed := Encounter{EndReason: EncounterDeath}
	if !killed.WasKilled() {
		t.Error("death encounter should report killed")
	}

	for _, reason := range []EncounterEndReason{EncounterTimeout, EncounterSessionEnd, EncounterInProgress} {
		e := Encounter{EndReason: reason}
		if e.WasKilled() {
			t.Errorf("%s encounter should not report killed", reason)
		}
	}
}

func assertFloatNear(t *testing.T, name string, expected, actual float64) {
	t.Helper()
	if math.Abs(expected-actual) > 0.0001 {
		t.Errorf("%s: expected %.6f, got %.6f", name, expected, actual)
	}
}
