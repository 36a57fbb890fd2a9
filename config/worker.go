package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

type WorkerConfig struct {
	Deliverer WorkerDeliverer `yaml:"deliverer" json:"deliverer"`
	Pool      WorkerPool      `yaml:"pool" json:"pool"`
	Retry     RetryConfig     `yaml:"retry" json:"retry"`
	Sweep     SweepConfig     `yaml:"sweep" json:"sweep"`
}

type WorkerDeliverer struct {
	// Timeout is the per-delivery timeout in milliseconds.
	Timeout int64 `yaml:"timeout" json:"timeout" env:"HOOKRELAY_WORKER_DELIVERER_TIMEOUT" default:"10000"`
}

type WorkerPool struct {
	Size        uint32 `yaml:"size" json:"size" env:"HOOKRELAY_WORKER_POOL_SIZE" default:"10000"`
	Concurrency uint32 `yaml:"concurrency" json:"concurrency" env:"HOOKRELAY_WORKER_POOL_CONCURRENCY" default:"100"`
}

type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts" json:"max_attempts" env:"HOOKRELAY_WORKER_RETRY_MAX_ATTEMPTS" default:"5"`
	BaseDelay    int64   `yaml:"base_delay" json:"base_delay" env:"HOOKRELAY_WORKER_RETRY_BASE_DELAY" default:"60"`
	Multiplier   float64 `yaml:"multiplier" json:"multiplier" env:"HOOKRELAY_WORKER_RETRY_MULTIPLIER" default:"2"`
	MaxDelay     int64   `yaml:"max_delay" json:"max_delay" env:"HOOKRELAY_WORKER_RETRY_MAX_DELAY" default:"3600"`
}

type SweepConfig struct {
	// Cron enables an in-process sweep schedule. Leave empty when the sweep
	// is driven externally through POST /cron/webhook-retries.
	Cron      string `yaml:"cron" json:"cron" env:"HOOKRELAY_WORKER_SWEEP_CRON" default:""`
	BatchSize int    `yaml:"batch_size" json:"batch_size" env:"HOOKRELAY_WORKER_SWEEP_BATCH_SIZE" default:"200"`
}

func (cfg WorkerConfig) Validate() error {
	if cfg.Deliverer.Timeout <= 0 {
		return errors.New("deliverer timeout must be positive")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return errors.New("retry max_attempts must be >= 1")
	}
	if cfg.Retry.BaseDelay <= 0 || cfg.Retry.MaxDelay <= 0 {
		return errors.New("retry delays must be positive")
	}
	if cfg.Retry.Multiplier < 1 {
		return errors.New("retry multiplier must be >= 1")
	}
	if cfg.Sweep.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Sweep.Cron); err != nil {
			return fmt.Errorf("invalid sweep cron: %w", err)
		}
	}
	if cfg.Sweep.BatchSize <= 0 {
		return errors.New("sweep batch_size must be positive")
	}
	return nil
}
