package config

// Defaults for settings the config file may omit.
const (
	DefaultChecksumPath = "checksums.txt"
	DefaultIDColumn     = "seqn"
	DefaultBatchSize    = 20
	DefaultBatchDelay   = 30 // seconds
	DefaultAttempts     = 3
	DefaultRetryDelay   = 2  // seconds
	DefaultHTTPTimeout  = 60 // seconds
	DefaultRegion       = "us-east-1"
)

// Default returns a Config populated with defaults. Loaders overlay file,
// environment, and flag values on top.
func Default() *Config {
	return &Config{
		ChecksumPath: DefaultChecksumPath,
		IDColumn:     DefaultIDColumn,
		Fetch: FetchConfig{
			Attempts:       DefaultAttempts,
			DelaySeconds:   DefaultRetryDelay,
			TimeoutSeconds: DefaultHTTPTimeout,
		},
		Batch: BatchConfig{
			Size:         DefaultBatchSize,
			DelaySeconds: DefaultBatchDelay,
		},
		S3: S3Config{
			Region: DefaultRegion,
		},
	}
}
