package config

import "github.com/ayoisaiah/lapse/internal/apperr"

var (
	errConfigOption = &apperr.Error{
		Message: "config option error: %v",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error: %v",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidCameraIP = &apperr.Error{
		Message: "camera ip is not a valid IP address: %s",
	}

	errInvalidCameraPort = &apperr.Error{
		Message: "camera port must be between 1 and 65535, got %d",
	}

	errInvalidInterval = &apperr.Error{
		Message: "capture interval must be greater than zero, got %v",
	}

	errUnparseableInterval = &apperr.Error{
		Message: "invalid interval format: %s",
	}

	errInvalidBudget = &apperr.Error{
		Message: "completion budget must be greater than zero, got %v",
	}

	errInvalidFailureBound = &apperr.Error{
		Message: "max consecutive failures must be at least 1, got %d",
	}

	errInvalidSubnet = &apperr.Error{
		Message: "ap subnet must be in CIDR notation (e.g. 192.168.12.0/24), got %s",
	}

	errEmptyInterface = &apperr.Error{
		Message: "%s interface name cannot be empty",
	}

	errInvalidNetworkPeriod = &apperr.Error{
		Message: "network %s must be greater than zero, got %v",
	}
)
