package config

import (
	"os"

	env "github.com/Netflix/go-env"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// New returns a Config populated with defaults.
func New() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load fills cfg from an optional yaml file, then applies environment
// overrides (HOOKRELAY_* variables).
func Load(filename string, cfg *Config) error {
	if filename != "" {
		content, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return err
		}
	}

	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return err
	}

	return nil
}
