package config

import (
	"errors"
	"fmt"
)

// InboundConfig configures the inbound gateway: provider webhooks and the
// sweep trigger endpoint.
type InboundConfig struct {
	Listen    string       `yaml:"listen" json:"listen" env:"HOOKRELAY_INBOUND_LISTEN" default:"0.0.0.0:9600"`
	CronToken string       `yaml:"cron_token" json:"-" env:"HOOKRELAY_INBOUND_CRON_TOKEN" default:""`
	Stripe    StripeConfig `yaml:"stripe" json:"stripe"`
	Sources   []Source     `yaml:"sources" json:"sources"`
}

type StripeConfig struct {
	SigningSecret string `yaml:"signing_secret" json:"-" env:"HOOKRELAY_INBOUND_STRIPE_SIGNING_SECRET" default:""`
}

// Source is a named inbound provider verified with the hookrelay signature
// scheme. Events accepted from a source are ingested into the organization's
// delivery pipeline.
type Source struct {
	Name         string `yaml:"name" json:"name"`
	Secret       string `yaml:"secret" json:"-"`
	Organization string `yaml:"organization" json:"organization"`
}

func (cfg InboundConfig) Validate() error {
	if cfg.CronToken == "" {
		return errors.New("cron_token is required")
	}
	names := make(map[string]bool)
	for _, source := range cfg.Sources {
		if source.Name == "" {
			return errors.New("source name is required")
		}
		if names[source.Name] {
			return fmt.Errorf("duplicate source: %s", source.Name)
		}
		names[source.Name] = true
		if source.Secret == "" {
			return fmt.Errorf("source %s: secret is required", source.Name)
		}
	}
	return nil
}
