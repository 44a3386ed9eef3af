package config

const (
	defaultLearnedPath          = "~/.local/share/pairdex/learning_data.json"
	defaultCatalogPath          = "~/.local/share/pairdex/catalog.db"
	defaultLogDir               = "~/.local/share/pairdex/logs"
	defaultLogRetentionDays     = 30
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultScanWorkers          = 4
	defaultScanMaxRetries       = 3
	defaultScanRetryDelayMS     = 1000
	defaultFolderTimeoutSeconds = 300
	defaultIndexFilename        = "index.json"
	defaultAcceptanceFloor      = 0.5
	defaultPrefixScore          = 0.6
	defaultMinPrefixLength      = 3
	defaultSimilarityFloor      = 0.8
	defaultVariantCacheSize     = 4096
	defaultWatchDebounceMS      = 750
	defaultMetricsBind          = "127.0.0.1:9477"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LearnedPath: defaultLearnedPath,
			CatalogPath: defaultCatalogPath,
			LogDir:      defaultLogDir,
		},
		Scan: Scan{
			Workers:              defaultScanWorkers,
			MaxRetries:           defaultScanMaxRetries,
			RetryDelayMS:         defaultScanRetryDelayMS,
			FolderTimeoutSeconds: defaultFolderTimeoutSeconds,
			IndexFilename:        defaultIndexFilename,
		},
		Matching: Matching{
			AcceptanceFloor:   defaultAcceptanceFloor,
			PrefixScore:       defaultPrefixScore,
			MinPrefixLength:   defaultMinPrefixLength,
			SimilarityEnabled: false,
			SimilarityFloor:   defaultSimilarityFloor,
			VariantCacheSize:  defaultVariantCacheSize,
		},
		Watch: Watch{
			DebounceMS:  defaultWatchDebounceMS,
			MetricsBind: defaultMetricsBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
