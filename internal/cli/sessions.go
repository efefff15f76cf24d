package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/util"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions <chat.log>",
	Short: "List combat sessions",
	Long: `List the combat sessions resolved from a chat log.

A session is a stretch of fighting bounded by long breaks, resting, or
the log being closed and reopened.

Examples:
  camlog sessions chat.log
  camlog sessions chat.log --session-timeout 2m
  camlog sessions chat.log --split-on-rest=false`,
	Args: cobra.ExactArgs(1),
	RunE: runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sessions, err := loadSessions(ctx, args[0])
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTART\tDUR\tCOMBAT\tFIGHTS\tKILLS\tTARGETS\tDMG OUT\tDPS\tEND")
	fmt.Fprintln(w, "-\t-----\t---\t------\t------\t-----\t-------\t-------\t---\t---")

	for _, sess := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			sess.Number,
			util.FormatClock(sess.StartedAt),
			util.FormatDuration(sess.Duration()),
			util.FormatDuration(sess.CombatTime()),
			len(sess.Encounters),
			sess.TotalKills(),
			sess.UniqueTargetCount(),
			util.FormatNumber(sess.TotalDamageDealt()),
			util.FormatRate(sess.DPS()),
			string(sess.EndReason),
		)
	}

	w.Flush()

	fmt.Printf("\nShowing %d session(s)\n", len(sessions))
	return nil
}
