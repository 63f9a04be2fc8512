package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// viperKeys defines the mapping between config keys and their Viper
// counterparts.
const (
	keyCameraIP               = "camera.ip"
	keyCameraPort             = "camera.port"
	keyCaptureInterval        = "capture.interval"
	keyCompletionBudget       = "capture.completion_budget"
	keyMaxConsecutiveFailures = "capture.max_consecutive_failures"
	keySessionCmd             = "capture.session_cmd"
	keyNetworkEnabled         = "network.enabled"
	keyNetworkCheckInterval   = "network.check_interval"
	keyNetworkInitialDelay    = "network.initial_delay"
	keyNetworkSettleDelay     = "network.settle_delay"
	keyNetworkAPInterface     = "network.ap_interface"
	keyNetworkClientInterface = "network.client_interface"
	keyNetworkAPSubnet        = "network.ap_subnet"
	keyNotificationsEnabled   = "notifications.enabled"
)

// WithViperConfig returns an Option that loads configuration from Viper.
// A missing config file is written out with the defaults.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v)

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", errReadConfig, err)
		}

		if err := v.WriteConfig(); err != nil {
			return fmt.Errorf("%w: %w", errWriteConfig, err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults. The camera address and the
// capture pacing defaults follow the values the hardware ships with; the
// completion budget is the camera's worst-case shutter time plus margin.
func setupViper(v *viper.Viper) {
	v.SetDefault(keyCameraIP, "192.168.12.98")
	v.SetDefault(keyCameraPort, 443)
	v.SetDefault(keyCaptureInterval, "10s")
	v.SetDefault(keyCompletionBudget, "35s")
	v.SetDefault(keyMaxConsecutiveFailures, 3)
	v.SetDefault(keySessionCmd, "")
	v.SetDefault(keyNetworkEnabled, true)
	v.SetDefault(keyNetworkCheckInterval, "60s")
	v.SetDefault(keyNetworkInitialDelay, "10s")
	v.SetDefault(keyNetworkSettleDelay, "5s")
	v.SetDefault(keyNetworkAPInterface, "uap0")
	v.SetDefault(keyNetworkClientInterface, "wlan0")
	v.SetDefault(keyNetworkAPSubnet, "192.168.12.0/24")
	v.SetDefault(keyNotificationsEnabled, true)
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	return v.Unmarshal(c)
}
