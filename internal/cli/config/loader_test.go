package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/surveyforge/surveyforge/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surveyforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `catalog: catalog.yaml
source_url: https://mirror.example.com/data
`

func TestLoadConfig_FileOverDefaults(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, minimalConfig+`
fetch:
  attempts: 5
batch:
  size: 10
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, "https://mirror.example.com/data", cfg.SourceURL)
	assert.Equal(t, 5, cfg.Fetch.Attempts)
	assert.Equal(t, 10, cfg.Batch.Size)
	// Untouched settings keep their defaults.
	def := intconfig.Default()
	assert.Equal(t, def.ChecksumPath, cfg.ChecksumPath)
	assert.Equal(t, def.IDColumn, cfg.IDColumn)
	assert.Equal(t, def.Fetch.TimeoutSeconds, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, def.S3.Region, cfg.S3.Region)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_EnvOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, minimalConfig+`
s3:
  bucket: from-file
`)
	t.Setenv("SURVEYFORGE_S3__BUCKET", "from-env")
	t.Setenv("SURVEYFORGE_ID_COLUMN", "respondent")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.S3.Bucket)
	assert.Equal(t, "respondent", cfg.IDColumn)
}

func TestLoadConfig_FlagsOverEnv(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, minimalConfig)
	t.Setenv("SURVEYFORGE_SOURCE_URL", "https://env.example.com")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("source-url", "", "")
	flags.Int("batch-size", 0, "")
	require.NoError(t, flags.Set("source-url", "https://flag.example.com"))
	require.NoError(t, flags.Set("batch-size", "7"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.SourceURL)
	assert.Equal(t, 7, cfg.Batch.Size)
}

func TestLoadConfig_UnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, minimalConfig)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("id-column", "flagdefault", "")

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	// A flag left at its default must not clobber lower layers.
	assert.Equal(t, intconfig.Default().IDColumn, cfg.IDColumn)
}

func TestLoadConfig_MissingRequiredSettings(t *testing.T) {
	ResetConfig()
	path := writeConfigFile(t, "catalog: catalog.yaml\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)

	var ce *intconfig.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "source_url", ce.Setting)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestFindConfigFile_ExplicitWins(t *testing.T) {
	assert.Equal(t, "custom.yaml", findConfigFile("custom.yaml"))
}
