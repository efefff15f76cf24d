package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/analytics"
	"github.com/emiliopalmerini/camlog/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats <chat.log>",
	Short: "Show combat statistics",
	Long: `Show summary statistics for a chat log.

Examples:
  camlog stats chat.log              # Totals plus the top targets
  camlog stats chat.log --top 20     # More targets
  camlog stats chat.log --player Aelric`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

// Flags
var statsTop int

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 10, "Number of targets to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sessions, err := loadSessions(ctx, args[0])
	if err != nil {
		return err
	}

	stats := analytics.ComputeSessionStatistics(sessions)
	targets := analytics.ComputeTargetStatistics(allEncounters(sessions))

	printStats(stats, targets)
	return nil
}

func printStats(stats analytics.SessionStatistics, targets []analytics.TargetStatistics) {
	fmt.Println()
	fmt.Printf("  camlog Stats\n")
	fmt.Printf("  =====================\n")
	fmt.Println()

	fmt.Printf("  Sessions\n")
	fmt.Printf("  --------\n")
	fmt.Printf("  Total:             %d\n", stats.TotalSessions)
	fmt.Printf("  Time logged:       %s\n", util.FormatDuration(stats.TotalDuration))
	fmt.Printf("  Time in combat:    %s\n", util.FormatDuration(stats.TotalCombatTime))
	fmt.Printf("  Mean DPS:          %s\n", util.FormatRate(stats.MeanDPS))
	fmt.Printf("  Max DPS:           %s\n", util.FormatRate(stats.MaxDPS))
	if stats.Longest != nil {
		fmt.Printf("  Longest:           session %d (%s)\n", stats.Longest.Number, util.FormatDuration(stats.Longest.Duration()))
	}
	if stats.MostKills != nil {
		fmt.Printf("  Most kills:        session %d (%d)\n", stats.MostKills.Number, stats.MostKills.TotalKills())
	}
	fmt.Println()

	fmt.Printf("  Combat\n")
	fmt.Printf("  ------\n")
	fmt.Printf("  Kills:             %d\n", stats.TotalKills)
	fmt.Printf("  Damage dealt:      %s\n", util.FormatNumber(stats.TotalDamageDealt))
	fmt.Printf("  Damage taken:      %s\n", util.FormatNumber(stats.TotalDamageTaken))
	fmt.Printf("  Healing done:      %s\n", util.FormatNumber(stats.TotalHealingDone))
	fmt.Println()

	if len(targets) > 0 {
		if statsTop > 0 && len(targets) > statsTop {
			targets = targets[:statsTop]
		}

		fmt.Printf("  Top Targets\n")
		fmt.Printf("  -----------\n")
		for _, ts := range targets {
			line := fmt.Sprintf("  %-24s %d kill(s), %s dmg, %s avg dps",
				truncate(ts.Name, 24), ts.KillCount, util.FormatNumber(ts.TotalDamageDealt), util.FormatRate(ts.AverageDPS))
			if ts.FastestKill > 0 {
				line += fmt.Sprintf(", fastest %s", util.FormatDuration(ts.FastestKill))
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
}
