package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/camlog/internal/adapters/otel"
	"github.com/emiliopalmerini/camlog/internal/domain"
	"github.com/emiliopalmerini/camlog/internal/logging"
	"github.com/emiliopalmerini/camlog/internal/parser"
	"github.com/emiliopalmerini/camlog/internal/ports"
	"github.com/emiliopalmerini/camlog/internal/stream"
	"github.com/emiliopalmerini/camlog/internal/tail"
)

var watchCmd = &cobra.Command{
	Use:   "watch <chat.log>",
	Short: "Follow a chat log and report fights live",
	Long: `Follow a chat log as the game writes it, reporting encounters and
sessions as they finalize.

Set CAMLOG_OTEL_ENABLED=true and CAMLOG_OTEL_ENDPOINT to also export
combat metrics to an OTEL Collector.

Examples:
  camlog watch chat.log
  camlog watch chat.log --from-start
  camlog watch chat.log --interval 1s --log-level debug`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// Flags
var (
	watchFromStart bool
	watchInterval  time.Duration
	watchLogLevel  string
	watchLogJSON   bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchFromStart, "from-start", false, "Replay the existing file before following")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", tail.DefaultInterval, "Poll interval for new lines")
	watchCmd.Flags().StringVar(&watchLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	watchCmd.Flags().BoolVar(&watchLogJSON, "log-json", false, "Log as JSON instead of text")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logging.Init(watchLogJSON, logging.ParseLevel(watchLogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	exporter := newExporter(ctx, runID)
	defer func() {
		if err := exporter.Close(context.Background()); err != nil {
			slog.Warn("failed to close metrics exporter", "error", err)
		}
	}()

	hooks := stream.Hooks{
		Encounter: func(enc domain.Encounter) {
			slog.Info("encounter finalized",
				"target", enc.Instance.DisplayName(),
				"end_reason", string(enc.EndReason),
				"damage_dealt", enc.DamageDealt,
				"damage_taken", enc.DamageTaken,
				"dps", enc.DPS(),
				"kill", enc.PlayerKill,
			)
			if err := exporter.ExportEncounter(context.Background(), enc); err != nil {
				slog.Warn("failed to export encounter", "error", err)
			}
		},
		Session: func(sess domain.Session) {
			slog.Info("session finalized",
				"number", sess.Number,
				"end_reason", string(sess.EndReason),
				"duration", sess.Duration().String(),
				"fights", len(sess.Encounters),
				"kills", sess.TotalKills(),
			)
			if err := exporter.ExportSession(context.Background(), sess); err != nil {
				slog.Warn("failed to export session", "error", err)
			}
		},
	}

	tracker := stream.NewTracker(flagPlayer, resolverConfig(), hooks)
	tailer := tail.New(args[0], tail.Options{Interval: watchInterval, FromStart: watchFromStart})

	slog.Info("watching chat log", "path", args[0], "player", flagPlayer, "run_id", runID)

	lines := make(chan string, 256)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		return tailer.Run(gctx, lines)
	})
	g.Go(func() error {
		p := parser.New()
		for line := range lines {
			ev, ok := p.ParseLine(line)
			if !ok {
				continue
			}
			tracker.Observe(ev)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	// Deliver whatever was still open when the watch stopped.
	tracker.Flush()
	slog.Info("watch stopped")
	return nil
}

// newExporter builds the OTLP exporter when configured, falling back to
// a no-op so a watch works without a collector.
func newExporter(ctx context.Context, runID string) ports.MetricsExporter {
	cfg, err := otel.LoadConfig()
	if err != nil {
		slog.Warn("failed to load otel config", "error", err)
		return otel.NewNoOpExporter()
	}
	if !cfg.Enabled {
		return otel.NewNoOpExporter()
	}

	exp, err := otel.NewExporter(ctx, cfg, runID)
	if err != nil {
		slog.Warn("failed to start metrics exporter", "error", err)
		return otel.NewNoOpExporter()
	}
	slog.Info("exporting metrics", "endpoint", cfg.Endpoint, "run_id", runID)
	return exp
}
