// Package config provides shared configuration types for surveyforge,
// decoupled from CLI concerns.
package config

import (
	"fmt"
	"time"
)

// FetchConfig bounds the per-cycle fetch loop.
type FetchConfig struct {
	// Attempts is the total number of tries per cycle table.
	Attempts int `koanf:"attempts"`
	// DelaySeconds is the fixed delay between retries.
	DelaySeconds int `koanf:"delay_seconds"`
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// Delay returns the retry delay as a duration.
func (f FetchConfig) Delay() time.Duration {
	return time.Duration(f.DelaySeconds) * time.Second
}

// Timeout returns the request timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// BatchConfig controls how the catalog is partitioned.
type BatchConfig struct {
	// Size is the maximum datasets per batch.
	Size int `koanf:"size"`
	// DelaySeconds is slept between batches.
	DelaySeconds int `koanf:"delay_seconds"`
}

// Delay returns the inter-batch delay as a duration.
func (b BatchConfig) Delay() time.Duration {
	return time.Duration(b.DelaySeconds) * time.Second
}

// S3Config holds object-store settings. Credentials are required for
// publishing; read-back uses the same client.
type S3Config struct {
	Bucket          string `koanf:"bucket"`
	Region          string `koanf:"region"`
	Prefix          string `koanf:"prefix"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
}

// Config holds all pipeline configuration.
type Config struct {
	// CatalogPath is the YAML dataset catalog.
	CatalogPath string `koanf:"catalog"`
	// ChecksumPath is the flat fingerprint store file.
	ChecksumPath string `koanf:"checksums"`
	// SourceURL is the survey mirror base URL.
	SourceURL string `koanf:"source_url"`
	// IDColumn is the respondent identifier column.
	IDColumn string `koanf:"id_column"`

	Fetch FetchConfig `koanf:"fetch"`
	Batch BatchConfig `koanf:"batch"`
	S3    S3Config    `koanf:"s3"`

	Verbose bool `koanf:"verbose"`
}

// ConfigurationError is fatal at startup: the run cannot begin without the
// named setting.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// Validate checks settings every run needs. Publish credentials are checked
// separately because dry runs do not need them.
func (c *Config) Validate() error {
	if c.CatalogPath == "" {
		return &ConfigurationError{Setting: "catalog", Reason: "dataset catalog path is required"}
	}
	if c.SourceURL == "" {
		return &ConfigurationError{Setting: "source_url", Reason: "survey source base URL is required"}
	}
	if c.Batch.Size <= 0 {
		return &ConfigurationError{Setting: "batch.size", Reason: "must be positive"}
	}
	if c.Fetch.Attempts <= 0 {
		return &ConfigurationError{Setting: "fetch.attempts", Reason: "must be positive"}
	}
	return nil
}

// ValidatePublish checks the settings only a publishing run needs.
func (c *Config) ValidatePublish() error {
	if c.S3.Bucket == "" {
		return &ConfigurationError{Setting: "s3.bucket", Reason: "bucket is required to publish"}
	}
	if c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
		return &ConfigurationError{Setting: "s3", Reason: "scoped credentials are required to publish"}
	}
	return nil
}
