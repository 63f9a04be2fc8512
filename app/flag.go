package app

import "github.com/urfave/cli/v2"

var (
	titleFlag = &cli.StringFlag{
		Name:    "title",
		Aliases: []string{"t"},
		Usage:   "Title for the capture session (defaults to the start time)",
	}

	intervalFlag = &cli.StringFlag{
		Name:    "interval",
		Aliases: []string{"i"},
		Usage:   "Time between shots, as a duration ('90s', '2m') or a number of seconds",
	}

	countFlag = &cli.IntFlag{
		Name:    "count",
		Aliases: []string{"n"},
		Usage:   "Stop after this many shots",
	}

	untilFlag = &cli.StringFlag{
		Name:    "until",
		Aliases: []string{"u"},
		Usage:   "Stop at this time, e.g. '18:30' or '2026-08-24 06:00' (a bare time in the past rolls to tomorrow)",
	}

	cameraIPFlag = &cli.StringFlag{
		Name:  "camera-ip",
		Usage: "IP address of the camera's wireless API",
	}

	sessionCmdFlag = &cli.StringFlag{
		Name:    "session-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after the session ends",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears after a session is completed",
	}

	noNetmonFlag = &cli.BoolFlag{
		Name:  "no-netmon",
		Usage: "Disable the network health monitor",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	listJSONFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "List session reports in JSON format",
	}

	listSortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Sort reports by 'date' (newest first) or 'title'",
		Value: "date",
	}

	resolveSaveFlag = &cli.BoolFlag{
		Name:  "save",
		Usage: "Save the unsaved session to the report store",
	}

	resolveDiscardFlag = &cli.BoolFlag{
		Name:  "discard",
		Usage: "Discard the unsaved session",
	}
)
