package lapse

import (
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/lapse/app"
)

// GetApp retrieves the lapse app instance.
func GetApp() *cli.App {
	return app.Get()
}
