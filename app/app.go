// Package app wires the command-line interface to the capture engine.
package app

import (
	"log/slog"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lapse/internal/config"
)

const (
	envNoColor      = "NO_COLOR"
	envLapseNoColor = "LAPSE_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the lapse app instance.
func Get() *cli.App {
	lapseApp := &cli.App{
		Name: "lapse",
		Authors: []*cli.Author{
			{
				Name:  "Ayooluwa Isaiah",
				Email: "ayo@freshman.tech",
			},
		},
		Usage: `
		Lapse is an unattended timelapse photography engine for Canon cameras.
		It paces shots over the camera's wireless API, rides out individual
		failures, and keeps a report of every run.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the reports of previous capture sessions",
				Action: listAction,
				Flags:  []cli.Flag{listJSONFlag, listSortFlag},
			},
			{
				Name:      "delete",
				Usage:     "Permanently delete the specified session reports",
				UsageText: "lapse delete <session-id>...",
				Action:    deleteAction,
			},
			{
				Name:      "rename",
				Usage:     "Change the title of a saved session report",
				UsageText: "lapse rename <session-id> <new-title>",
				Action:    renameAction,
			},
			{
				Name:   "status",
				Usage:  "Print the status of the current capture session",
				Action: statusAction,
			},
			{
				Name:   "resolve",
				Usage:  "Settle an unsaved session left over from a failed save",
				Action: resolveAction,
				Flags:  []cli.Flag{resolveSaveFlag, resolveDiscardFlag},
			},
		},
		Flags: []cli.Flag{
			titleFlag,
			intervalFlag,
			countFlag,
			untilFlag,
			cameraIPFlag,
			sessionCmdFlag,
			disableNotificationFlag,
			noNetmonFlag,
			noColorFlag,
		},
		Action: runAction,
		Before: beforeAction,
		After:  afterAction,
	}

	return lapseApp
}

func beforeAction(ctx *cli.Context) error {
	config.InitializePaths()

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if LAPSE_NO_COLOR is set
	if _, exists := os.LookupEnv(envLapseNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting lapse")

	return nil
}
