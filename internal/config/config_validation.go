package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty database DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")

	// ErrInvalidServerConfigs indicates invalid server settings
	// (for example, an empty listen address).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")

	// ErrInvalidAppConfigs indicates invalid application settings
	// (for example, a missing token sign key).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")

	// ErrInvalidSyncConfigs indicates invalid sync engine settings
	// (for example, a non-positive row modification limit).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
)

func (c *StructuredConfig) validate() error {
	var err error

	if c.Storage.DB.DSN == "" {
		err = errors.Join(err, ErrInvalidStorageConfigs)
	}
	if c.Server.HTTPAddress == "" {
		err = errors.Join(err, ErrInvalidServerConfigs)
	}
	if c.App.TokenSignKey == "" || c.App.TokenIssuer == "" {
		err = errors.Join(err, ErrInvalidAppConfigs)
	}
	if c.Sync.RowModificationLimit <= 0 || c.Sync.RetentionBatchSize <= 0 {
		err = errors.Join(err, ErrInvalidSyncConfigs)
	}

	return err
}
