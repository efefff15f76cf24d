package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/camlog/internal/domain"
)

// Line patterns cover the subset of Dark Age of Camelot chat log lines
// that matter for combat segmentation. Anything else is skipped.
var (
	linePattern        = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]\s+(.*)$`)
	boundaryPattern    = regexp.MustCompile(`^\*{3} Chat Log (Opened|Closed): (.+?)\s*$`)
	damageDealtPattern = regexp.MustCompile(`^You hit (?:the )?(.+?) for (\d+) points of(?: (\w+))? damage[!.]?$`)
	petDamagePattern   = regexp.MustCompile(`^Your (.+?) hits (?:the )?(.+?) for (\d+) points of(?: (\w+))? damage[!.]?$`)
	damageTakenPattern = regexp.MustCompile(`^(?:The )?(.+?) hits (you|your .+?) for (\d+)(?: \(-\d+\))? damage[!.]?$`)
	criticalPattern    = regexp.MustCompile(`^You critical hit(?: (?:the )?(.+?))? for an additional (\d+) damage[!.]?$`)
	healDonePattern    = regexp.MustCompile(`^You heal (?:the )?(.+?) for (\d+) hit points[!.]?$`)
	healTakenPattern   = regexp.MustCompile(`^(?:The )?(.+?) heals you for (\d+) hit points[!.]?$`)
	killPattern        = regexp.MustCompile(`^You just killed (?:the )?(.+?)[!.]?$`)
	deathPattern       = regexp.MustCompile(`^(?:The )?(.+?) dies[!.]?$`)
	resistPattern      = regexp.MustCompile(`^(?:The )?(.+?) resists the effect[!.]?$`)
	ccPattern          = regexp.MustCompile(`^(?:The )?(.+?) is (stunned|mesmerized|rooted)[!.]?$`)
	restStartPattern   = regexp.MustCompile(`^You sit down[.!]?(?:\s.*)?$`)
	restEndPattern     = regexp.MustCompile(`^You stand up[.!]?$`)
	combatEnterPattern = regexp.MustCompile(`^You enter combat mode(?: and target \[(?:the )?(.+?)\])?[.!]?$`)
	combatExitPattern  = regexp.MustCompile(`^You leave combat mode[.!]?$`)
)

const boundaryTimeLayout = "Mon Jan 02 15:04:05 2006"

// dayZero is the date bare clock stamps parse onto, the start of the
// anchored timeline.
var dayZero = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)

// Parser converts raw chat log lines into typed events. Log lines
// carry time-of-day stamps with no date, so timestamps are anchored to
// a zero date and a day is added whenever the clock runs backwards
// across midnight.
type Parser struct {
	last   time.Time
	offset time.Duration
	seen   bool
}

// New returns a parser whose timeline starts at dayZero, so fallback
// timestamps issued before the first clocked line never postdate it.
func New() *Parser {
	return &Parser{last: dayZero}
}

// ParseLine converts one raw line. The second return is false for
// lines that carry no recognized event.
func (p *Parser) ParseLine(line string) (domain.Event, bool) {
	line = strings.TrimRight(line, "\r\n")

	if m := boundaryPattern.FindStringSubmatch(line); m != nil {
		return p.boundaryEvent(m, line), true
	}

	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return domain.Event{}, false
	}
	ts, err := p.clock(m[1])
	if err != nil {
		return domain.Event{}, false
	}
	return p.message(ts, m[2], line)
}

// clock anchors a time-of-day stamp into the running timeline.
func (p *Parser) clock(s string) (time.Time, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.Add(p.offset)
	if p.seen && t.Before(p.last) {
		p.offset += 24 * time.Hour
		t = t.Add(24 * time.Hour)
	}
	p.last = t
	p.seen = true
	return t, nil
}

// boundaryEvent handles the untimestamped "*** Chat Log Opened/Closed"
// lines. Their full datetime is folded into the same anchored timeline
// as the surrounding events; an unparsable date falls back to the last
// seen timestamp so the boundary still splits sessions.
func (p *Parser) boundaryEvent(m []string, raw string) domain.Event {
	ts := p.last
	if dt, err := time.Parse(boundaryTimeLayout, strings.TrimSpace(m[2])); err == nil {
		if anchored, err := p.clock(dt.Format("15:04:05")); err == nil {
			ts = anchored
		}
	}
	return domain.Event{
		Kind:      domain.EventLogBoundary,
		Timestamp: ts,
		Opened:    m[1] == "Opened",
		Raw:       raw,
	}
}

func (p *Parser) message(ts time.Time, msg, raw string) (domain.Event, bool) {
	ev := domain.Event{Timestamp: ts, Raw: raw}

	if m := damageDealtPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventDamage
		ev.Source = domain.SelfName
		ev.Target = strings.TrimSpace(m[1])
		ev.Amount = atoi(m[2])
		ev.DamageType = typeOrUnknown(m[3])
		return ev, true
	}
	if m := criticalPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventCriticalHit
		ev.Source = domain.SelfName
		ev.Target = strings.TrimSpace(m[1])
		ev.Amount = atoi(m[2])
		return ev, true
	}
	if m := petDamagePattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventPetDamage
		ev.Source = strings.TrimSpace(m[1])
		ev.Target = strings.TrimSpace(m[2])
		ev.Amount = atoi(m[3])
		ev.DamageType = typeOrUnknown(m[4])
		return ev, true
	}
	if m := damageTakenPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventDamage
		ev.Source = strings.TrimSpace(m[1])
		ev.Target = victimOf(m[2])
		ev.Amount = atoi(m[3])
		return ev, true
	}
	if m := healDonePattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventHealing
		ev.Source = domain.SelfName
		ev.Target = selfOr(strings.TrimSpace(m[1]))
		ev.Amount = atoi(m[2])
		return ev, true
	}
	if m := healTakenPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventHealing
		ev.Source = strings.TrimSpace(m[1])
		ev.Target = domain.SelfName
		ev.Amount = atoi(m[2])
		return ev, true
	}
	if m := killPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventDeath
		ev.Target = strings.TrimSpace(m[1])
		ev.Killer = domain.SelfName
		return ev, true
	}
	if m := deathPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventDeath
		ev.Target = strings.TrimSpace(m[1])
		return ev, true
	}
	if m := resistPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventResist
		ev.Source = domain.SelfName
		ev.Target = strings.TrimSpace(m[1])
		return ev, true
	}
	if m := ccPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventCrowdControl
		ev.Target = strings.TrimSpace(m[1])
		ev.Effect = m[2]
		return ev, true
	}
	if restStartPattern.MatchString(msg) {
		ev.Kind = domain.EventRestStart
		return ev, true
	}
	if restEndPattern.MatchString(msg) {
		ev.Kind = domain.EventRestEnd
		return ev, true
	}
	if m := combatEnterPattern.FindStringSubmatch(msg); m != nil {
		ev.Kind = domain.EventCombatEnter
		ev.Target = strings.TrimSpace(m[1])
		return ev, true
	}
	if combatExitPattern.MatchString(msg) {
		ev.Kind = domain.EventCombatExit
		return ev, true
	}
	return domain.Event{}, false
}

func selfOr(name string) string {
	if strings.EqualFold(name, "yourself") {
		return domain.SelfName
	}
	return name
}

// Hit locations the client names when the player is struck, as in
// "hits your torso for 14 (-2) damage!".
var hitLocations = map[string]bool{
	"head":  true,
	"torso": true,
	"arm":   true,
	"leg":   true,
	"hand":  true,
	"foot":  true,
}

// victimOf maps the "you|your X" capture of a damage-taken line to a
// target. A named hit location still means the player was struck;
// anything else after "your" is a pet taking the blow.
func victimOf(s string) string {
	part, ok := strings.CutPrefix(s, "your ")
	if !ok {
		return domain.SelfName
	}
	part = strings.TrimSpace(part)
	if hitLocations[strings.ToLower(part)] {
		return domain.SelfName
	}
	return part
}

func typeOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Parse reads chat log lines from r and returns the recognized events
// in order.
func Parse(r io.Reader) ([]domain.Event, error) {
	p := New()
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var events []domain.Event
	for scanner.Scan() {
		if ev, ok := p.ParseLine(scanner.Text()); ok {
			events = append(events, ev)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat log: %w", err)
	}
	return events, nil
}

// ParseFile reads a whole chat log from disk.
func ParseFile(path string) ([]domain.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log: %w", err)
	}
	defer file.Close()
	return Parse(file)
}
