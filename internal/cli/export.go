package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/util"
)

var exportCmd = &cobra.Command{
	Use:   "export <chat.log>",
	Short: "Export resolved sessions to JSON or CSV",
	Long: `Export the resolved sessions of a chat log for external analysis.

JSON carries the full session tree including every event. CSV flattens
to one row per encounter.

Examples:
  camlog export chat.log --format json --output sessions.json
  camlog export chat.log --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// Flags
var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sessions, err := loadSessions(ctx, args[0])
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		return writeSessionsJSON(out, sessions)
	case "csv":
		return writeEncountersCSV(out, sessions)
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", exportFormat)
	}
}

func writeSessionsJSON(w io.Writer, sessions []domain.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sessions); err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	return nil
}

func writeEncountersCSV(w io.Writer, sessions []domain.Session) error {
	cw := csv.NewWriter(w)

	header := []string{
		"session", "target", "instance", "started_at", "ended_at",
		"duration_seconds", "damage_dealt", "damage_taken", "healing_done",
		"dps", "end_reason", "player_kill",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	for _, sess := range sessions {
		for _, e := range sess.Encounters {
			rec := []string{
				strconv.Itoa(sess.Number),
				e.Instance.Name,
				strconv.Itoa(e.Instance.Number),
				util.FormatClock(e.StartedAt),
				util.FormatClock(e.EndedAt),
				strconv.FormatFloat(e.Duration().Seconds(), 'f', 1, 64),
				strconv.Itoa(e.DamageDealt),
				strconv.Itoa(e.DamageTaken),
				strconv.Itoa(e.HealingDone),
				strconv.FormatFloat(e.DPS(), 'f', 1, 64),
				string(e.EndReason),
				strconv.FormatBool(e.PlayerKill),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
