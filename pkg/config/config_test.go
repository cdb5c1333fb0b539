package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nextcommerce/storedash/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "custom")
	t.Setenv("TEST_BOOL", "1")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_LIST", " a, b ,,c ")

	assert.Equal(t, "custom", getEnv("TEST_STR", "default"))
	assert.Equal(t, "default", getEnv("TEST_STR_UNSET", "default"))
	assert.True(t, getEnvBool("TEST_BOOL", false))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_BAD_INT", 7))
	assert.Equal(t, int64(42), getEnvInt64("TEST_INT", 0))
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, getEnvList("TEST_LIST_UNSET", []string{"x"}))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STOREDASH_OIDC_ISSUER", "https://auth.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "sqlite3", cfg.Storage.DatabaseDriver)
	assert.Equal(t, "https://api.next-commerce.shop", cfg.StoreAPI.BaseURL)
	assert.Equal(t, 150, cfg.StoreAPI.FreeOrderLimit)
	assert.Equal(t, "sql", cfg.Submission.Mode)
	assert.Equal(t, "213698320894", cfg.Payment.Phone)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
}

func TestLoadConfig_YAMLOverlayThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storedash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
payment:
  ccp: "111 Clé 01"
  phone: "213500000000"
reviewer:
  schedule: "@hourly"
  recipients: ["ops@example.com"]
`), 0o600))

	t.Setenv("STOREDASH_AUTH_MODE", "header")
	t.Setenv("STOREDASH_CONFIG_FILE", path)
	t.Setenv("STOREDASH_PAYMENT_PHONE", "213599999999")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "111 Clé 01", cfg.Payment.CCP)
	assert.Equal(t, "213599999999", cfg.Payment.Phone)
	assert.Equal(t, "00799999004154512631", cfg.Payment.RIP)
	assert.Equal(t, "@hourly", cfg.Reviewer.Schedule)
	assert.Equal(t, []string{"ops@example.com"}, cfg.Reviewer.Recipients)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("payment: [unterminated"), 0o600))

	t.Setenv("STOREDASH_AUTH_MODE", "header")
	t.Setenv("STOREDASH_CONFIG_FILE", path)

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func validConfig() *Config {
	return &Config{
		Server:     ServerConfig{Port: "8080", HealthPort: "9090", MaxBodyBytes: 12 << 20},
		Storage:    loadStorageConfig(),
		Auth:       AuthConfig{Mode: "header", HeaderName: "X-Merchant-ID"},
		StoreAPI:   StoreAPIConfig{BaseURL: "https://api.example.com", FreeOrderLimit: 150},
		Submission: SubmissionConfig{Mode: "sql"},
		Upgrade:    UpgradeConfig{MaxProofBytes: 10 << 20},
		Payment:    DefaultPaymentConfig(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "same ports", mutate: func(c *Config) { c.Server.HealthPort = "8080" }, wantErr: "must be different"},
		{name: "oidc without issuer", mutate: func(c *Config) { c.Auth.Mode = "oidc" }, wantErr: "OIDC issuer"},
		{name: "unknown auth", mutate: func(c *Config) { c.Auth.Mode = "basic" }, wantErr: "invalid auth mode"},
		{name: "remote without url", mutate: func(c *Config) { c.Submission.Mode = "remote" }, wantErr: "submission URL"},
		{name: "unknown submission", mutate: func(c *Config) { c.Submission.Mode = "email" }, wantErr: "invalid submission mode"},
		{name: "no bucket", mutate: func(c *Config) { c.Storage.S3Bucket = "" }, wantErr: "S3 bucket"},
		{name: "proof larger than body", mutate: func(c *Config) { c.Upgrade.MaxProofBytes = 20 << 20 }, wantErr: "max body size"},
		{name: "no phone", mutate: func(c *Config) { c.Payment.Phone = "" }, wantErr: "payment phone"},
		{name: "otel without endpoint", mutate: func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelServiceName = "storedash"
		}, wantErr: "OpenTelemetry endpoint"},
		{name: "otel bad sample ratio", mutate: func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelEndpoint = "collector:4317"
			c.Observability.OTelServiceName = "storedash"
			c.Observability.OTelSampleRatio = 1.5
		}, wantErr: "sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
