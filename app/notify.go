package app

import (
	"log/slog"
	"os"
	"os/exec"

	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lapse/internal/config"
	"github.com/ayoisaiah/lapse/supervisor"
)

// saveCallback reacts to the terminal save of a session: a desktop
// notification, a terminal line, and the optional session command.
func saveCallback(cfg *config.Config) func(supervisor.SaveOutcome) {
	return func(outcome supervisor.SaveOutcome) {
		title := outcome.Report.Title

		switch {
		case outcome.Saved:
			notify(cfg, "Session ended", pterm.Sprintf(
				"%q finished: %d/%d shots succeeded",
				title,
				outcome.Report.Stats.ShotsSucceeded,
				outcome.Report.Stats.ShotsAttempted,
			))
		case outcome.Fallback:
			pterm.Warning.Printfln(
				"Could not save the report for %q (%v). It is parked for recovery: run 'lapse resolve'.",
				title,
				outcome.Err,
			)

			notify(cfg, "Session report not saved", pterm.Sprintf(
				"%q needs a decision: lapse resolve", title,
			))
		}

		if cfg.Capture.SessionCmd != "" {
			err := runSessionCmd(cfg.Capture.SessionCmd)
			if err != nil {
				pterm.Warning.Printfln("session command failed: %v", err)
			}
		}
	}
}

// recoveryCallback announces the outcome of a network recovery attempt.
func recoveryCallback(cfg *config.Config) func(recovered bool, err error) {
	return func(recovered bool, err error) {
		if recovered {
			notify(cfg, "Network recovered",
				"The camera network interface was reset successfully")

			return
		}

		notify(cfg, "Network recovery failed", pterm.Sprintf(
			"Could not reset the camera network interface: %v", err,
		))
	}
}

func notify(cfg *config.Config, title, msg string) {
	if !cfg.Notifications.Enabled {
		return
	}

	err := beeep.Notify(title, msg, "")
	if err != nil {
		slog.Warn("unable to deliver notification", slog.Any("error", err))
	}
}

// runSessionCmd executes the configured session command.
func runSessionCmd(sessionCmd string) error {
	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		return err
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	cmd := exec.Command(name, args...)

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
