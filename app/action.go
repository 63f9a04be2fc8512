package app

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lapse/internal/config"
	"github.com/ayoisaiah/lapse/internal/logging"
	"github.com/ayoisaiah/lapse/session"
	"github.com/ayoisaiah/lapse/store"
	"github.com/ayoisaiah/lapse/supervisor"
)

var (
	errNoSessionID = errors.New("provide at least one session id")

	errRenameArgs = errors.New(
		"rename requires a session id and a new title",
	)

	errResolveChoice = errors.New(
		"pass exactly one of --save or --discard",
	)
)

// listAction prints the saved session reports.
func listAction(ctx *cli.Context) error {
	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := db.Reports()
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		b, err := json.Marshal(reports)
		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	return listReports(reports, ctx.String("sort"))
}

// deleteAction permanently deletes the reports for the given session
// ids.
func deleteAction(ctx *cli.Context) error {
	ids := ctx.Args().Slice()
	if len(ids) == 0 {
		return errNoSessionID
	}

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}
	defer db.Close()

	for _, id := range ids {
		// confirm the report exists so a typo is reported, not ignored
		_, err = db.GetReport(id)
		if err != nil {
			return err
		}

		err = db.DeleteReport(id)
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Deleted report %s", id)
	}

	return nil
}

// renameAction changes the title of a saved report.
func renameAction(ctx *cli.Context) error {
	args := ctx.Args().Slice()
	if len(args) != 2 {
		return errRenameArgs
	}

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.UpdateReportTitle(args[0], args[1])
	if err != nil {
		return err
	}

	pterm.Success.Printfln("Renamed report %s to %q", args[0], args[1])

	return nil
}

// statusAction prints the last written status snapshot of the current
// (or most recent) capture session.
func statusAction(_ *cli.Context) error {
	status, err := session.ReadStatusFile(config.StatusFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			pterm.Info.Println("No capture session has run yet")
			return nil
		}

		return err
	}

	stats := status.Stats

	pterm.Printfln("Session:   %s", status.Title)
	pterm.Printfln("State:     %s", status.State)
	pterm.Printfln("Interval:  %s", status.Interval)
	pterm.Printfln(
		"Shots:     %d attempted, %d succeeded, %d failed",
		stats.ShotsAttempted,
		stats.ShotsSucceeded,
		stats.ShotsFailed,
	)

	if stats.LastFile != "" {
		pterm.Printfln("Last file: %s", stats.LastFile)
	}

	pterm.Printfln(
		"Updated:   %s",
		status.UpdatedAt.Format(time.DateTime),
	)

	return nil
}

// resolveAction settles the unsaved session left by a failed report
// save.
func resolveAction(ctx *cli.Context) error {
	save := ctx.Bool("save")
	discard := ctx.Bool("discard")

	if save == discard {
		return errResolveChoice
	}

	logger := logging.Init(config.LogFilePath(), false)

	db, err := store.NewClient(config.DBFilePath())
	if err != nil {
		return err
	}
	defer db.Close()

	sup := supervisor.New(db, nil, logger)

	rec, err := sup.PendingRecovery()
	if err != nil {
		return err
	}

	if rec == nil {
		pterm.Info.Println("No unsaved session is awaiting a decision")
		return nil
	}

	pterm.Printfln(
		"Unsaved session %q (%s): %d/%d shots succeeded, save failed with: %s",
		rec.Report.Title,
		rec.Report.CompletionReason,
		rec.Report.Stats.ShotsSucceeded,
		rec.Report.Stats.ShotsAttempted,
		rec.FailureReason,
	)

	report, err := sup.ResolveRecovery(save)
	if err != nil {
		return err
	}

	if save {
		pterm.Success.Printfln("Report %s saved", report.ID)
	} else {
		pterm.Success.Println("Unsaved session discarded")
	}

	return nil
}
