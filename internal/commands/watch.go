package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/logger"
)

func newWatchCommand() *cobra.Command {
	var repoDir, schedule string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import statements dropped in the import directory on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), repoDir, schedule, once)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from contflow.yaml)")
	cmd.Flags().BoolVar(&once, "once", false, "run one import pass and exit")

	return cmd
}

func runWatch(ctx context.Context, repoDir, schedule string, once bool) error {
	ws, ctx, err := openWorkspace(ctx, repoDir)
	if err != nil {
		return err
	}
	if schedule == "" {
		schedule = ws.cfg.Watch.Schedule
	}

	st, err := ws.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	pass := func() error {
		imp, err := newStatementImporter(ws, st, "")
		if err != nil {
			return err
		}
		n, err := imp.importPending(ctx)
		if err != nil {
			return err
		}
		log := logger.FromContext(ctx)
		log.Debug().Int("files", n).Msg("watch: pass finished")
		return nil
	}

	if once {
		return pass()
	}

	job := func() {
		if err := pass(); err != nil {
			ws.log.Error().Err(err).Msg("watch: import failed")
		}
	}

	loc, err := time.LoadLocation(ws.cfg.Watch.Timezone)
	if err != nil {
		ws.log.Warn().Str("timezone", ws.cfg.Watch.Timezone).Err(err).Msg("invalid timezone, using UTC")
		loc = time.UTC
	}

	cl := cronLogger{ws.log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start()
	fmt.Printf("Watching %s (schedule %q, %s)\n", ws.importDir(), schedule, loc)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
