package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/parser"
	"github.com/emiliopalmerini/camlog/internal/resolver"
	"github.com/emiliopalmerini/camlog/internal/stream"
	"github.com/emiliopalmerini/camlog/internal/util"
)

var burstsCmd = &cobra.Command{
	Use:   "bursts <chat.log>",
	Short: "Show bursts of combat activity",
	Long: `Cluster combat events into bursts of activity separated by quiet
stretches, without resolving targets or sessions.

Examples:
  camlog bursts chat.log
  camlog bursts chat.log --window 30s --min-events 5
  camlog bursts chat.log --merge 1m`,
	Args: cobra.ExactArgs(1),
	RunE: runBursts,
}

// Flags
var (
	burstsWindow    time.Duration
	burstsMinEvents int
	burstsMerge     time.Duration
)

func init() {
	rootCmd.AddCommand(burstsCmd)

	burstsCmd.Flags().DurationVar(&burstsWindow, "window", resolver.DefaultEncounterTimeout, "Quiet gap that splits bursts")
	burstsCmd.Flags().IntVar(&burstsMinEvents, "min-events", 1, "Discard bursts with fewer events")
	burstsCmd.Flags().DurationVar(&burstsMerge, "merge", 0, "Merge bursts closer than this (0 disables)")
}

func runBursts(cmd *cobra.Command, args []string) error {
	events, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}

	bursts := stream.Cluster(events, stream.ClusterOptions{
		InactivityTimeout: burstsWindow,
		MinEvents:         burstsMinEvents,
		MergeWindow:       burstsMerge,
	})

	if len(bursts) == 0 {
		fmt.Println("No combat activity found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTART\tEND\tDUR\tEVENTS")
	fmt.Fprintln(w, "-\t-----\t---\t---\t------")

	for i, b := range bursts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
			i+1,
			util.FormatClock(b.StartedAt),
			util.FormatClock(b.EndedAt),
			util.FormatDuration(b.Duration()),
			len(b.Events),
		)
	}

	w.Flush()

	fmt.Printf("\nShowing %d burst(s)\n", len(bursts))
	return nil
}
