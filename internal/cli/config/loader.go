// Package config loads CLI configuration for surveyforge.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	intconfig "github.com/surveyforge/surveyforge/internal/config"
)

// Config re-exports the shared configuration type for CLI code.
type Config = intconfig.Config

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile finds the config file to use.
// Priority: explicit path > surveyforge.yaml > surveyforge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"surveyforge.yaml", "surveyforge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// GetConfigFileUsed returns the path of the config file that was loaded.
func GetConfigFileUsed() string { return configFileUsed }

// GetCurrentConfig returns the most recently loaded config, or nil.
func GetCurrentConfig() *Config { return currentConfig }

// LoadConfig loads configuration from defaults, file, environment, and
// flags. Keys nest with dots; environment variables use SURVEYFORGE_ with
// double underscores for nesting, e.g. SURVEYFORGE_S3__BUCKET -> s3.bucket.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	defaults := intconfig.Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"checksums":             defaults.ChecksumPath,
		"id_column":             defaults.IDColumn,
		"fetch.attempts":        defaults.Fetch.Attempts,
		"fetch.delay_seconds":   defaults.Fetch.DelaySeconds,
		"fetch.timeout_seconds": defaults.Fetch.TimeoutSeconds,
		"batch.size":            defaults.Batch.Size,
		"batch.delay_seconds":   defaults.Batch.DelaySeconds,
		"s3.region":             defaults.S3.Region,
		"verbose":               false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	if err := k.Load(env.Provider("SURVEYFORGE_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "SURVEYFORGE_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set.
			if !f.Changed {
				return "", nil
			}
			// Kebab-case flags map to snake_case config keys. The batch
			// size flag bridges to the nested batch.size key.
			if f.Name == "batch-size" {
				return "batch.size", posflag.FlagVal(flags, f)
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}
