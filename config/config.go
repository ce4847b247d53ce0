package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime tunables. Durations are plain milliseconds
// in the file. Wire-level protocol constants live in the waveplus
// package and are deliberately not configurable.
type Config struct {
	SamplePeriodMs   int    `yaml:"sample_period_ms"`
	ScanTimeoutMs    int    `yaml:"scan_timeout_ms"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms"`
	Retries          int    `yaml:"retries"`
	BackoffMs        int    `yaml:"backoff_ms"`
	ListenAddress    string `yaml:"listen_address"`
}

// Default matches the device duty cycle: the Wave Plus refreshes its
// current values every 5 minutes, reading more often returns the same
// sample.
func Default() Config {
	return Config{
		SamplePeriodMs:   int((5 * time.Minute).Milliseconds()),
		ScanTimeoutMs:    10_000,
		ConnectTimeoutMs: 10_000,
		ReadTimeoutMs:    10_000,
		Retries:          5,
		BackoffMs:        1_000,
	}
}

func (c Config) SamplePeriod() time.Duration {
	return time.Duration(c.SamplePeriodMs) * time.Millisecond
}

func (c Config) ScanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutMs) * time.Millisecond
}

func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

func (c Config) Backoff() time.Duration {
	return time.Duration(c.BackoffMs) * time.Millisecond
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing config file")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.SamplePeriodMs <= 0 {
		return errors.New("sample_period_ms must be larger than zero")
	}
	if c.ScanTimeoutMs <= 0 {
		return errors.New("scan_timeout_ms must be larger than zero")
	}
	if c.ConnectTimeoutMs <= 0 {
		return errors.New("connect_timeout_ms must be larger than zero")
	}
	if c.ReadTimeoutMs <= 0 {
		return errors.New("read_timeout_ms must be larger than zero")
	}
	if c.Retries < 1 {
		return errors.New("retries must be at least 1")
	}
	if c.BackoffMs <= 0 {
		return errors.New("backoff_ms must be larger than zero")
	}
	return nil
}
