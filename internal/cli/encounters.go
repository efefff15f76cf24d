package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/util"
)

var encountersCmd = &cobra.Command{
	Use:   "encounters <chat.log>",
	Short: "List combat encounters",
	Long: `List every encounter resolved from a chat log, in order.

Examples:
  camlog encounters chat.log
  camlog encounters chat.log --target goblin   # Fights against one target
  camlog encounters chat.log --kills           # Only fights you finished`,
	Args: cobra.ExactArgs(1),
	RunE: runEncounters,
}

// Flags
var (
	encountersTarget string
	encountersKills  bool
)

func init() {
	rootCmd.AddCommand(encountersCmd)

	encountersCmd.Flags().StringVarP(&encountersTarget, "target", "t", "", "Only fights against this target")
	encountersCmd.Flags().BoolVar(&encountersKills, "kills", false, "Only fights that ended in a kill you made")
}

func runEncounters(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sessions, err := loadSessions(ctx, args[0])
	if err != nil {
		return err
	}

	var rows []domain.Encounter
	for _, enc := range allEncounters(sessions) {
		if encountersTarget != "" && domain.FoldName(enc.Instance.Name) != domain.FoldName(encountersTarget) {
			continue
		}
		if encountersKills && !enc.PlayerKill {
			continue
		}
		rows = append(rows, enc)
	}

	if len(rows) == 0 {
		fmt.Println("No encounters found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTARGET\tSTART\tDUR\tDMG OUT\tDMG IN\tHEALED\tDPS\tEND")
	fmt.Fprintln(w, "-\t------\t-----\t---\t-------\t------\t------\t---\t---")

	for i, enc := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			truncate(enc.Instance.DisplayName(), 24),
			util.FormatClock(enc.StartedAt),
			util.FormatDuration(enc.Duration()),
			util.FormatNumber(enc.DamageDealt),
			util.FormatNumber(enc.DamageTaken),
			util.FormatNumber(enc.HealingDone),
			util.FormatRate(enc.DPS()),
			endLabel(enc),
		)
	}

	w.Flush()

	fmt.Printf("\nShowing %d encounter(s)\n", len(rows))
	return nil
}

// endLabel distinguishes a kill the player made from a death that just
// happened nearby.
func endLabel(enc domain.Encounter) string {
	if enc.PlayerKill {
		return "kill"
	}
	return string(enc.EndReason)
}
