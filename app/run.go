package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lapse/camera"
	"github.com/ayoisaiah/lapse/internal/config"
	"github.com/ayoisaiah/lapse/internal/logging"
	"github.com/ayoisaiah/lapse/internal/timeutil"
	"github.com/ayoisaiah/lapse/netmon"
	"github.com/ayoisaiah/lapse/session"
	"github.com/ayoisaiah/lapse/store"
	"github.com/ayoisaiah/lapse/supervisor"
)

var errConflictingStop = errors.New(
	"--count and --until cannot be combined: pick one stop condition",
)

// runAction is the default action: it starts a capture session and runs
// it to completion in the foreground.
func runAction(ctx *cli.Context) error {
	cfg, err := config.New(
		config.WithViperConfig(config.ConfigFilePath()),
		config.WithCLIConfig(ctx),
	)
	if err != nil {
		return err
	}

	logger := logging.Init(cfg.System.LogPath, false)

	db, err := store.NewClient(cfg.System.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cam := camera.New(cfg.Camera.IP, cfg.Camera.Port, logger)

	sup := supervisor.New(db, cam, logger,
		supervisor.WithSaveCallback(saveCallback(cfg)),
	)

	reportPendingRecovery(sup)

	opts, err := sessionOptions(ctx, cfg)
	if err != nil {
		return err
	}

	sess, err := sup.StartSession(opts)
	if err != nil {
		return err
	}

	pterm.Info.Printfln(
		"Capture session %q started (interval %s). Press Ctrl+C to stop.",
		sess.Title(),
		opts.Interval,
	)

	monCtx, cancelMon := context.WithCancel(context.Background())
	defer cancelMon()

	if cfg.Network.Enabled {
		mon, merr := netmon.New(
			cfg.Network,
			cfg.Camera.IP,
			sup.IsOperationSafe,
			logger,
			netmon.WithResultCallback(recoveryCallback(cfg)),
		)
		if merr != nil {
			return merr
		}

		go mon.Run(monCtx)
	}

	go handleSignals(sup)

	sup.Wait()

	printSummary(sess.Status())

	return nil
}

// handleSignals maps process signals to supervisor commands: SIGINT and
// SIGTERM stop, SIGUSR1 pauses, SIGUSR2 resumes.
func handleSignals(sup *supervisor.Supervisor) {
	sigC := make(chan os.Signal, 1)
	signal.Notify(
		sigC,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
	)

	for sig := range sigC {
		switch sig {
		case syscall.SIGUSR1:
			err := sup.Pause()
			if err != nil {
				pterm.Warning.Println(err)
			}
		case syscall.SIGUSR2:
			err := sup.Resume()
			if err != nil {
				pterm.Warning.Println(err)
			}
		default:
			pterm.Info.Println("Stopping after the current shot...")

			_ = sup.Stop()

			return
		}
	}
}

// sessionOptions builds the session options from config defaults and
// command-line flags.
func sessionOptions(
	ctx *cli.Context,
	cfg *config.Config,
) (session.Options, error) {
	opts := session.Options{
		Title:                  ctx.String("title"),
		Interval:               cfg.Capture.Interval,
		StopCondition:          session.StopManual,
		MaxConsecutiveFailures: cfg.Capture.MaxConsecutiveFailures,
		CompletionBudget:       cfg.Capture.CompletionBudget,
		StatusPath:             cfg.System.StatusPath,
	}

	if opts.Title == "" {
		opts.Title = time.Now().Format("2006-01-02 15:04")
	}

	count := ctx.Int("count")
	until := ctx.String("until")

	if count > 0 && until != "" {
		return session.Options{}, errConflictingStop
	}

	if count > 0 {
		opts.StopCondition = session.StopAfterCount
		opts.ShotCount = count
	}

	if until != "" {
		stopTime, err := timeutil.StopTimeFromStr(until)
		if err != nil {
			return session.Options{}, err
		}

		opts.StopCondition = session.StopAtTime
		opts.StopTime = stopTime
	}

	return opts, nil
}

// reportPendingRecovery surfaces an unsaved session from a previous run
// without blocking the new session.
func reportPendingRecovery(sup *supervisor.Supervisor) {
	rec, err := sup.PendingRecovery()
	if err != nil || rec == nil {
		return
	}

	pterm.Warning.Printfln(
		"An unsaved session (%q, finished %s) is awaiting a decision. Run 'lapse resolve --save' or 'lapse resolve --discard'.",
		rec.Report.Title,
		rec.RecordedAt.Format(time.DateTime),
	)
}

// printSummary prints the final session outcome to the terminal.
func printSummary(snap session.Snapshot) {
	stats := snap.Stats

	msg := pterm.Sprintf(
		"Session %q %s: %d/%d shots succeeded (avg %s per shot)",
		snap.Title,
		snap.State,
		stats.ShotsSucceeded,
		stats.ShotsAttempted,
		stats.AvgShotDuration.Round(time.Millisecond),
	)

	switch snap.State {
	case session.StateCompleted:
		pterm.Success.Println(msg)
	case session.StateError:
		pterm.Error.Println(msg)
	default:
		pterm.Info.Println(msg)
	}

	if stats.LastFile != "" {
		pterm.Info.Printfln("Last file: %s", stats.LastFile)
	}
}
