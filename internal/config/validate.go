package config

import (
	"net"
)

// Validate performs validation checks on the Config struct and its
// fields.
func (c *Config) Validate() error {
	if err := c.validateCamera(); err != nil {
		return err
	}

	if err := c.validateCapture(); err != nil {
		return err
	}

	return c.validateNetwork()
}

func (c *Config) validateCamera() error {
	if net.ParseIP(c.Camera.IP) == nil {
		return errInvalidCameraIP.Fmt(c.Camera.IP)
	}

	if c.Camera.Port < 1 || c.Camera.Port > 65535 {
		return errInvalidCameraPort.Fmt(c.Camera.Port)
	}

	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.Interval <= 0 {
		return errInvalidInterval.Fmt(c.Capture.Interval)
	}

	if c.Capture.CompletionBudget <= 0 {
		return errInvalidBudget.Fmt(c.Capture.CompletionBudget)
	}

	if c.Capture.MaxConsecutiveFailures < 1 {
		return errInvalidFailureBound.Fmt(c.Capture.MaxConsecutiveFailures)
	}

	return nil
}

func (c *Config) validateNetwork() error {
	if !c.Network.Enabled {
		return nil
	}

	if _, _, err := net.ParseCIDR(c.Network.APSubnet); err != nil {
		return errInvalidSubnet.Fmt(c.Network.APSubnet)
	}

	if c.Network.APInterface == "" {
		return errEmptyInterface.Fmt("ap")
	}

	if c.Network.ClientInterface == "" {
		return errEmptyInterface.Fmt("client")
	}

	if c.Network.CheckInterval <= 0 {
		return errInvalidNetworkPeriod.Fmt(
			"check_interval",
			c.Network.CheckInterval,
		)
	}

	if c.Network.InitialDelay <= 0 {
		return errInvalidNetworkPeriod.Fmt(
			"initial_delay",
			c.Network.InitialDelay,
		)
	}

	if c.Network.SettleDelay <= 0 {
		return errInvalidNetworkPeriod.Fmt(
			"settle_delay",
			c.Network.SettleDelay,
		)
	}

	return nil
}
