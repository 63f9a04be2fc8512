// Package config is responsible for setting the program config from the
// config file and command-line arguments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
)

type (
	// Config holds all configuration settings.
	Config struct {
		Camera        CameraConfig       `mapstructure:"camera"`
		Capture       CaptureConfig      `mapstructure:"capture"`
		Network       NetworkConfig      `mapstructure:"network"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		System        SystemConfig       `mapstructure:"-"`
	}

	// CameraConfig identifies the camera on the network.
	CameraConfig struct {
		IP   string `mapstructure:"ip"`
		Port int    `mapstructure:"port"`
	}

	// CaptureConfig holds the defaults for capture sessions.
	CaptureConfig struct {
		Interval               time.Duration `mapstructure:"interval"`
		CompletionBudget       time.Duration `mapstructure:"completion_budget"`
		MaxConsecutiveFailures int           `mapstructure:"max_consecutive_failures"`
		SessionCmd             string        `mapstructure:"session_cmd"`
	}

	// NetworkConfig holds the network health monitor settings.
	NetworkConfig struct {
		Enabled         bool          `mapstructure:"enabled"`
		CheckInterval   time.Duration `mapstructure:"check_interval"`
		InitialDelay    time.Duration `mapstructure:"initial_delay"`
		SettleDelay     time.Duration `mapstructure:"settle_delay"`
		APInterface     string        `mapstructure:"ap_interface"`
		ClientInterface string        `mapstructure:"client_interface"`
		APSubnet        string        `mapstructure:"ap_subnet"`
	}

	// NotificationConfig holds desktop notification settings.
	NotificationConfig struct {
		Enabled bool `mapstructure:"enabled"`
	}

	// SystemConfig holds derived file paths.
	SystemConfig struct {
		ConfigPath string
		DBPath     string
		StatusPath string
		LogPath    string
	}

	// Option is a function that modifies Config.
	Option func(*Config) error
)

const Version = "v0.3.0"

var (
	configDir      = "lapse"
	configFileName = "config.yml"
	dbFileName     = "lapse.db"
	statusFileName = "status.json"
	logFileName    = "lapse.log"
	dbFilePath     string
	configFilePath string
	statusFilePath string
	logFilePath    string
)

func Dir() string {
	return configDir
}

func DBFilePath() string {
	return dbFilePath
}

func StatusFilePath() string {
	return statusFilePath
}

func LogFilePath() string {
	return logFilePath
}

func ConfigFilePath() string {
	return configFilePath
}

// InitializePaths resolves the config, database, status, and log file
// paths. A LAPSE_ENV value suffixes the file names so test and
// production data never mix.
func InitializePaths() {
	lapseEnv := strings.TrimSpace(os.Getenv("LAPSE_ENV"))
	if lapseEnv != "" {
		configFileName = fmt.Sprintf("config_%s.yml", lapseEnv)
		dbFileName = fmt.Sprintf("lapse_%s.db", lapseEnv)
		statusFileName = fmt.Sprintf("status_%s.json", lapseEnv)
		logFileName = fmt.Sprintf("lapse_%s.log", lapseEnv)
	}

	var err error

	relPath := filepath.Join(configDir, configFileName)

	configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dataDir, err := xdg.DataFile(configDir)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	dbFilePath = filepath.Join(dataDir, dbFileName)

	statusFilePath = filepath.Join(dataDir, statusFileName)

	logFilePath = filepath.Join(dataDir, "log", logFileName)
}

// New creates a new Config with default values and applies options.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Fmt(err)
		}
	}

	cfg.System = SystemConfig{
		ConfigPath: configFilePath,
		DBPath:     dbFilePath,
		StatusPath: statusFilePath,
		LogPath:    logFilePath,
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Fmt(err)
	}

	return cfg, nil
}
