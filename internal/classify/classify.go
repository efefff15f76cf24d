package classify

import (
	"sort"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

// Role labels how a combatant split its activity between dealing
// damage, soaking damage and healing.
type Role string

const (
	RoleHealer       Role = "healer"
	RoleTank         Role = "tank"
	RoleDamageDealer Role = "damage_dealer"
	RoleHybrid       Role = "hybrid"
	RoleUnknown      Role = "unknown"
)

// Participant is one entity's activity profile over a block of events,
// usually a single session.
type Participant struct {
	Name        string
	Role        Role
	Events      int
	DealtEvents int
	TakenEvents int
	HealEvents  int
}

// DealtRatio is the share of this entity's events where it dealt
// damage. Zero-safe.
func (p *Participant) DealtRatio() float64 {
	return ratio(p.DealtEvents, p.Events)
}

func (p *Participant) TakenRatio() float64 {
	return ratio(p.TakenEvents, p.Events)
}

func (p *Participant) HealRatio() float64 {
	return ratio(p.HealEvents, p.Events)
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// Participants profiles every entity seen as source or target and
// assigns each a role from its event ratios. Rules apply in order:
// healer when heals dominate, tank when damage dominates and a solid
// share is incoming, damage dealer when damage dominates otherwise,
// hybrid when both healing and damage carry weight.
func Participants(events []domain.Event) []Participant {
	byKey := make(map[string]*Participant)
	names := make(map[string]string)

	record := func(name string) *Participant {
		if name == "" {
			return nil
		}
		key := domain.FoldName(name)
		if _, ok := names[key]; !ok {
			names[key] = name
		}
		p := byKey[key]
		if p == nil {
			p = &Participant{Name: names[key]}
			byKey[key] = p
		}
		p.Events++
		return p
	}

	for _, ev := range events {
		src := record(ev.Source)
		tgt := src
		// A self-targeted event mentions the entity once, not twice.
		if domain.FoldName(ev.Target) != domain.FoldName(ev.Source) {
			tgt = record(ev.Target)
		}

		switch {
		case ev.Kind.DamageBearing():
			if src != nil {
				src.DealtEvents++
			}
			if tgt != nil {
				tgt.TakenEvents++
			}
		case ev.Kind == domain.EventHealing:
			if src != nil {
				src.HealEvents++
			}
		}
	}

	out := make([]Participant, 0, len(byKey))
	for _, p := range byKey {
		p.Role = classify(p)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Events != out[j].Events {
			return out[i].Events > out[j].Events
		}
		return domain.FoldName(out[i].Name) < domain.FoldName(out[j].Name)
	})
	return out
}

// SessionParticipants classifies the entities of one resolved session.
func SessionParticipants(sess *domain.Session) []Participant {
	return Participants(sess.Events)
}

func classify(p *Participant) Role {
	heal, dealt, taken := p.HealRatio(), p.DealtRatio(), p.TakenRatio()
	switch {
	case heal > 0.5:
		return RoleHealer
	case dealt > 0.5 && taken > 0.3:
		return RoleTank
	case dealt > 0.5:
		return RoleDamageDealer
	case heal > 0.2 && dealt > 0.2:
		return RoleHybrid
	}
	return RoleUnknown
}
