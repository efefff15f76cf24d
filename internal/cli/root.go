package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/resolver"
)

var rootCmd = &cobra.Command{
	Use:   "camlog",
	Short: "Combat analytics for Dark Age of Camelot chat logs",
	Long: `camlog reads Dark Age of Camelot chat logs and turns the combat lines
into encounters and sessions.

Point any command at a chat.log to see who you fought, how hard you hit,
and how your evenings of grinding break down over time.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Persistent flags
var (
	flagPlayer           string
	flagEncounterTimeout time.Duration
	flagSessionTimeout   time.Duration
	flagSplitOnRest      bool
	flagNoCache          bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", domain.SelfName, "Character name for self-attribution")
	rootCmd.PersistentFlags().DurationVar(&flagEncounterTimeout, "encounter-timeout", resolver.DefaultEncounterTimeout, "Inactivity gap that ends an encounter")
	rootCmd.PersistentFlags().DurationVar(&flagSessionTimeout, "session-timeout", resolver.DefaultSessionTimeout, "Inactivity gap that ends a session")
	rootCmd.PersistentFlags().BoolVar(&flagSplitOnRest, "split-on-rest", true, "End the session when the character sits down to rest")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the local result cache")
}
