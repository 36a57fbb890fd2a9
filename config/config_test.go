package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := New()
	cfg.Inbound.CronToken = "cron-secret"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, "127.0.0.1:9601", cfg.Admin.Listen)
	assert.Equal(t, "0.0.0.0:9600", cfg.Inbound.Listen)
	assert.Equal(t, int64(10000), cfg.Worker.Deliverer.Timeout)
	assert.Equal(t, 5, cfg.Worker.Retry.MaxAttempts)
	assert.Equal(t, int64(60), cfg.Worker.Retry.BaseDelay)
	assert.Equal(t, float64(2), cfg.Worker.Retry.Multiplier)
	assert.Equal(t, int64(3600), cfg.Worker.Retry.MaxDelay)
	assert.Equal(t, 200, cfg.Worker.Sweep.BatchSize)
	assert.False(t, cfg.Redis.Enabled())
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Environment = "staging"
	assert.ErrorContains(t, cfg.Validate(), "invalid environment")

	cfg = validConfig()
	cfg.Inbound.CronToken = ""
	assert.ErrorContains(t, cfg.Validate(), "cron_token is required")

	cfg = validConfig()
	cfg.Worker.Retry.MaxAttempts = 0
	assert.ErrorContains(t, cfg.Validate(), "max_attempts")

	cfg = validConfig()
	cfg.Worker.Sweep.Cron = "not a cron"
	assert.ErrorContains(t, cfg.Validate(), "invalid sweep cron")

	cfg = validConfig()
	cfg.Environment = EnvProduction
	assert.ErrorContains(t, cfg.Validate(), "signing_secret is required in production")

	cfg = validConfig()
	cfg.Environment = EnvProduction
	cfg.Inbound.Stripe.SigningSecret = "whsec_abc"
	assert.NoError(t, cfg.Validate())
}

func TestValidateSources(t *testing.T) {
	cfg := validConfig()
	cfg.Inbound.Sources = []Source{{Name: "partner", Secret: "s1"}}
	assert.NoError(t, cfg.Validate())

	cfg.Inbound.Sources = []Source{{Name: "partner"}}
	assert.ErrorContains(t, cfg.Validate(), "secret is required")

	cfg.Inbound.Sources = []Source{
		{Name: "partner", Secret: "s1"},
		{Name: "partner", Secret: "s2"},
	}
	assert.ErrorContains(t, cfg.Validate(), "duplicate source")
}

func TestLoadFile(t *testing.T) {
	content := `
environment: production
inbound:
  cron_token: cron-secret
  stripe:
    signing_secret: whsec_abc
  sources:
    - name: partner
      secret: partner-secret
      organization: acme
worker:
  retry:
    max_attempts: 3
`
	filename := filepath.Join(t.TempDir(), "hookrelay.yml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o600))

	cfg := New()
	require.NoError(t, Load(filename, cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, "cron-secret", cfg.Inbound.CronToken)
	assert.Equal(t, 3, cfg.Worker.Retry.MaxAttempts)
	require.Len(t, cfg.Inbound.Sources, 1)
	assert.Equal(t, "acme", cfg.Inbound.Sources[0].Organization)
	// untouched defaults survive a partial file
	assert.Equal(t, "127.0.0.1:9601", cfg.Admin.Listen)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOOKRELAY_ADMIN_LISTEN", "127.0.0.1:19601")
	t.Setenv("HOOKRELAY_WORKER_RETRY_MAX_ATTEMPTS", "7")

	cfg := New()
	require.NoError(t, Load("", cfg))

	assert.Equal(t, "127.0.0.1:19601", cfg.Admin.Listen)
	assert.Equal(t, 7, cfg.Worker.Retry.MaxAttempts)
}
