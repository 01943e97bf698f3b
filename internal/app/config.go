package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SpecPath string // hcl file or directory of hcl files

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.SpecPath == "" {
		return nil, errors.New("SpecPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
