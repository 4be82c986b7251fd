// Package config loads the demonstration CLI's configuration, following the
// same flag-plus-JSON-override pattern the teacher server used for its own
// Server struct.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"os"
	"time"
)

// ErrEmptyCommitmentsPath is returned when no commitment source was configured.
var ErrEmptyCommitmentsPath = errors.New("config: no commitment file path or URL specified")

// Config is the demonstration CLI's configuration. Only CommitmentsPath or
// CommitmentsURL needs to be set; the rest has sane defaults.
type Config struct {
	CommitmentsPath string        `json:"commitments_path,omitempty"`
	CommitmentsURL  string        `json:"commitments_url,omitempty"`
	CommitmentsKey  string        `json:"commitments_key"`
	Channel         string        `json:"channel"`
	RefreshTTL      time.Duration `json:"refresh_ttl"`
	BatchSize       int           `json:"batch_size"`
	MetricsAddr     string        `json:"metrics_addr,omitempty"`
}

// Default mirrors the teacher's DefaultServer package-level value: sane
// defaults a caller can override selectively via JSON or flags.
var Default = Config{
	CommitmentsKey: "PRIVACY-PASS-COMMITMENTS",
	Channel:        "1.0",
	RefreshTTL:     1 * time.Hour,
	BatchSize:      30,
}

// LoadFile reads a JSON config file, overlaying it onto Default.
func LoadFile(path string) (Config, error) {
	cfg := Default
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RegisterFlags binds cfg's overridable fields onto fs, returning the
// -config path flag separately since it's handled by the caller before
// flag.Parse's other values are read.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) (configPath *string) {
	configPath = fs.String("config", "", "path to a JSON config file (overrides defaults, overridden by other flags)")
	fs.StringVar(&cfg.CommitmentsPath, "commitments-path", cfg.CommitmentsPath, "local commitment file path")
	fs.StringVar(&cfg.CommitmentsURL, "commitments-url", cfg.CommitmentsURL, "commitment file URL")
	fs.StringVar(&cfg.CommitmentsKey, "commitments-key", cfg.CommitmentsKey, "top-level JSON key selecting the commitment bundle")
	fs.StringVar(&cfg.Channel, "channel", cfg.Channel, "commitment channel selector (e.g. 1.0 or dev)")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "number of tokens to mint per run")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve /metrics on, empty disables it")
	return configPath
}

// Validate returns ErrEmptyCommitmentsPath if neither a file path nor a URL
// was configured.
func (c Config) Validate() error {
	if c.CommitmentsPath == "" && c.CommitmentsURL == "" {
		return ErrEmptyCommitmentsPath
	}
	return nil
}
