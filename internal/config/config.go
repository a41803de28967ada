package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultMaxInputLLR          = 200
	DefaultNumCalibrationValues = 5001
	DefaultSmoothBandwidth      = 0.8
	DefaultMinDensity           = 5e-8
	DefaultGenericSeed          = 1
	DefaultLogLevel             = "info"
)

// Config holds the calibration hyperparameters shared by the varcal commands.
type Config struct {
	MaxInputLLR          int
	NumCalibrationValues int
	SmoothBandwidth      float64
	MinDensity           float64
	MaxIndelLen          int
	GenericSeed          int64
	LogLevel             string
}

type fileConfig struct {
	Calibration struct {
		MaxInputLLR          int     `toml:"max_input_llr"`
		NumCalibrationValues int     `toml:"num_calibration_values"`
		SmoothBandwidth      float64 `toml:"smooth_bandwidth"`
		MinDensity           float64 `toml:"min_density"`
		MaxIndelLen          int     `toml:"max_indel_len"`
		GenericSeed          int64   `toml:"generic_seed"`
	} `toml:"calibration"`
	Logging struct {
		Level string `toml:"level"`
	} `toml:"logging"`
}

// Load builds the configuration from defaults, the TOML file at path if one
// is given, then VARCAL_* environment variables. Command line flags layer on
// top of this in the callers.
func Load(path string) (*Config, error) {
	cfg := &Config{
		MaxInputLLR:          DefaultMaxInputLLR,
		NumCalibrationValues: DefaultNumCalibrationValues,
		SmoothBandwidth:      DefaultSmoothBandwidth,
		MinDensity:           DefaultMinDensity,
		MaxIndelLen:          0,
		GenericSeed:          DefaultGenericSeed,
		LogLevel:             DefaultLogLevel,
	}

	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		var parsed fileConfig
		if err := toml.Unmarshal(fileData, &parsed); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}

		if parsed.Calibration.MaxInputLLR != 0 {
			cfg.MaxInputLLR = parsed.Calibration.MaxInputLLR
		}
		if parsed.Calibration.NumCalibrationValues != 0 {
			cfg.NumCalibrationValues = parsed.Calibration.NumCalibrationValues
		}
		if parsed.Calibration.SmoothBandwidth != 0 {
			cfg.SmoothBandwidth = parsed.Calibration.SmoothBandwidth
		}
		if parsed.Calibration.MinDensity != 0 {
			cfg.MinDensity = parsed.Calibration.MinDensity
		}
		if parsed.Calibration.MaxIndelLen != 0 {
			cfg.MaxIndelLen = parsed.Calibration.MaxIndelLen
		}
		if parsed.Calibration.GenericSeed != 0 {
			cfg.GenericSeed = parsed.Calibration.GenericSeed
		}
		if parsed.Logging.Level != "" {
			cfg.LogLevel = parsed.Logging.Level
		}
	}

	// Apply environment variable overrides
	if v := os.Getenv("VARCAL_MAX_INPUT_LLR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxInputLLR = n
		}
	}
	if v := os.Getenv("VARCAL_NUM_CALIBRATION_VALUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumCalibrationValues = n
		}
	}
	if v := os.Getenv("VARCAL_SMOOTH_BANDWIDTH"); v != "" {
		if bw, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SmoothBandwidth = bw
		}
	}
	if v := os.Getenv("VARCAL_MIN_DENSITY"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinDensity = d
		}
	}
	if v := os.Getenv("VARCAL_MAX_INDEL_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIndelLen = n
		}
	}
	if v := os.Getenv("VARCAL_GENERIC_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.GenericSeed = n
		}
	}
	if v := os.Getenv("VARCAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate verifies the configuration is usable.
func (c *Config) Validate() error {
	if c.MaxInputLLR < 1 {
		return fmt.Errorf("max input llr must be at least 1, got %d", c.MaxInputLLR)
	}
	if c.NumCalibrationValues < 3 {
		return fmt.Errorf("num calibration values must be at least 3, got %d", c.NumCalibrationValues)
	}
	if c.SmoothBandwidth <= 0 {
		return fmt.Errorf("smooth bandwidth must be positive, got %g", c.SmoothBandwidth)
	}
	if c.MinDensity <= 0 {
		return fmt.Errorf("min density must be positive, got %g", c.MinDensity)
	}
	if c.MaxIndelLen < 0 {
		return fmt.Errorf("max indel len cannot be negative, got %d", c.MaxIndelLen)
	}
	return nil
}
