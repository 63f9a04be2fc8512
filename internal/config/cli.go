package config

import (
	"time"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	CameraIP      string
	Interval      string
	SessionCmd    string
	DisableNotify bool
	DisableNetmon bool
}

// WithCLIConfig returns an Option that overrides file configuration with
// CLI flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			CameraIP:      ctx.String("camera-ip"),
			Interval:      ctx.String("interval"),
			SessionCmd:    ctx.String("session-cmd"),
			DisableNotify: ctx.Bool("disable-notification"),
			DisableNetmon: ctx.Bool("no-netmon"),
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	if opts.CameraIP != "" {
		c.Camera.IP = opts.CameraIP
	}

	if opts.Interval != "" {
		dur, err := parseInterval(opts.Interval)
		if err != nil {
			return err
		}

		c.Capture.Interval = dur
	}

	if opts.SessionCmd != "" {
		c.Capture.SessionCmd = opts.SessionCmd
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	if opts.DisableNetmon {
		c.Network.Enabled = false
	}

	return nil
}

// parseInterval parses an interval given either as a duration string
// ("90s", "2m") or as a bare number of seconds ("30").
func parseInterval(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err == nil {
		return dur, nil
	}

	secs, err := time.ParseDuration(s + "s")
	if err != nil {
		return 0, errUnparseableInterval.Fmt(s)
	}

	return secs, nil
}
