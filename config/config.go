package config

import (
	"encoding/json"
	"fmt"
	"slices"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config is the full process configuration.
type Config struct {
	Environment Environment    `yaml:"environment" json:"environment" env:"HOOKRELAY_ENVIRONMENT" default:"development"`
	Log         LogConfig      `yaml:"log" json:"log"`
	Database    DatabaseConfig `yaml:"database" json:"database"`
	Redis       RedisConfig    `yaml:"redis" json:"redis"`
	Admin       AdminConfig    `yaml:"admin" json:"admin"`
	Inbound     InboundConfig  `yaml:"inbound" json:"inbound"`
	Worker      WorkerConfig   `yaml:"worker" json:"worker"`
}

func (cfg Config) String() string {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (cfg Config) Validate() error {
	if !slices.Contains([]Environment{EnvDevelopment, EnvProduction}, cfg.Environment) {
		return fmt.Errorf("invalid environment: %s", cfg.Environment)
	}
	if err := cfg.Log.Validate(); err != nil {
		return err
	}
	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if err := cfg.Admin.Validate(); err != nil {
		return err
	}
	if err := cfg.Inbound.Validate(); err != nil {
		return err
	}
	if err := cfg.Worker.Validate(); err != nil {
		return err
	}
	// A missing provider signing secret is fatal in production; in
	// development the inbound handler verifies nothing and logs a warning.
	if cfg.Environment == EnvProduction && cfg.Inbound.Stripe.SigningSecret == "" {
		return fmt.Errorf("inbound stripe signing_secret is required in production")
	}
	return nil
}
