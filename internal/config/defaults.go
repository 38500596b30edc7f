package config

import "time"

// Baseline sync engine settings applied when neither the environment nor
// the JSON file overrides them.
const (
	DefaultRowModificationLimit = 10_000
	DefaultRetentionLifetime    = 30 * 24 * time.Hour
	DefaultRetentionInterval    = time.Hour
	DefaultRetentionBatchSize   = 100
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			HTTPAddress:    ":8080",
			RequestTimeout: 30 * time.Second,
		},
		Sync: Sync{
			RowModificationLimit: DefaultRowModificationLimit,
			RetentionLifetime:    DefaultRetentionLifetime,
			RetentionInterval:    DefaultRetentionInterval,
			RetentionBatchSize:   DefaultRetentionBatchSize,
		},
	}
}
