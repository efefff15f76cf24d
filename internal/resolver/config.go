package resolver

import "time"

const (
	// DefaultEncounterTimeout is the quiet gap after which a fight
	// against a target instance is considered over.
	DefaultEncounterTimeout = 15 * time.Second

	// DefaultSessionTimeout is the quiet gap after which a play
	// session is considered over.
	DefaultSessionTimeout = 60 * time.Second
)

// Config controls segmentation thresholds. The zero value is usable:
// zero durations fall back to the defaults, and sessions split on rest
// unless DisableRestSplit is set.
type Config struct {
	EncounterTimeout time.Duration
	SessionTimeout   time.Duration
	// DisableRestSplit keeps the session open when the player sits
	// down to rest.
	DisableRestSplit bool
}

func DefaultConfig() Config {
	return Config{
		EncounterTimeout: DefaultEncounterTimeout,
		SessionTimeout:   DefaultSessionTimeout,
	}
}

// WithDefaults returns c with zero durations replaced by the default
// thresholds, so a zero Config normalizes to DefaultConfig().
func (c Config) WithDefaults() Config {
	if c.EncounterTimeout <= 0 {
		c.EncounterTimeout = DefaultEncounterTimeout
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
	return c
}
