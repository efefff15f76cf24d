package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/classify"
	"github.com/emiliopalmerini/camlog/internal/domain"
)

var rolesCmd = &cobra.Command{
	Use:   "roles <chat.log>",
	Short: "Classify combat participants",
	Long: `Classify everyone seen in a chat log by how they fought.

Ratios of damage dealt, damage taken, and healing sort each participant
into healer, tank, damage dealer, or hybrid.

Examples:
  camlog roles chat.log
  camlog roles chat.log --session 2      # One session only
  camlog roles chat.log --min-events 10`,
	Args: cobra.ExactArgs(1),
	RunE: runRoles,
}

// Flags
var (
	rolesMinEvents int
	rolesSession   int
)

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.Flags().IntVar(&rolesMinEvents, "min-events", 1, "Hide participants with fewer combat events")
	rolesCmd.Flags().IntVar(&rolesSession, "session", 0, "Classify a single session by number (0 = whole log)")
}

func runRoles(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sessions, err := loadSessions(ctx, args[0])
	if err != nil {
		return err
	}

	participants, err := classifyScope(sessions, rolesSession)
	if err != nil {
		return err
	}

	var rows []classify.Participant
	for _, p := range participants {
		if p.Events < rolesMinEvents {
			continue
		}
		rows = append(rows, p)
	}

	if len(rows) == 0 {
		fmt.Println("No participants found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROLE\tEVENTS\tDEALT\tTAKEN\tHEALS")
	fmt.Fprintln(w, "----\t----\t------\t-----\t-----\t-----")

	for _, p := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			truncate(p.Name, 24),
			string(p.Role),
			p.Events,
			p.DealtEvents,
			p.TakenEvents,
			p.HealEvents,
		)
	}

	w.Flush()

	fmt.Printf("\nShowing %d participant(s)\n", len(rows))
	return nil
}

// classifyScope picks the classification input: one session by number, or
// every event in the log.
func classifyScope(sessions []domain.Session, number int) ([]classify.Participant, error) {
	if number > 0 {
		for i := range sessions {
			if sessions[i].Number == number {
				return classify.SessionParticipants(&sessions[i]), nil
			}
		}
		return nil, fmt.Errorf("no session %d in this log (found %d)", number, len(sessions))
	}

	var events []domain.Event
	for _, sess := range sessions {
		events = append(events, sess.Events...)
	}
	return classify.Participants(events), nil
}
