package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := Default()
	c.CatalogPath = "catalog.yaml"
	c.SourceURL = "https://mirror.example.com"
	return c
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		setting string
	}{
		{"missing catalog", func(c *Config) { c.CatalogPath = "" }, "catalog"},
		{"missing source url", func(c *Config) { c.SourceURL = "" }, "source_url"},
		{"zero batch size", func(c *Config) { c.Batch.Size = 0 }, "batch.size"},
		{"zero attempts", func(c *Config) { c.Fetch.Attempts = 0 }, "fetch.attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.setting, ce.Setting)
		})
	}
}

func TestValidatePublish(t *testing.T) {
	c := validConfig()
	err := c.ValidatePublish()
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "s3.bucket", ce.Setting)

	c.S3.Bucket = "public-data"
	require.Error(t, c.ValidatePublish(), "credentials still missing")

	c.S3.AccessKeyID = "AKIA..."
	c.S3.SecretAccessKey = "secret"
	require.NoError(t, c.ValidatePublish())
}

func TestDurations(t *testing.T) {
	c := Default()
	assert.Equal(t, 2*time.Second, c.Fetch.Delay())
	assert.Equal(t, 60*time.Second, c.Fetch.Timeout())
	assert.Equal(t, 30*time.Second, c.Batch.Delay())
}
