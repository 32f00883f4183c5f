package settings

import "errors"

var (
	// ErrNoSettingsService indicates that no settings service was provided.
	ErrNoSettingsService = errors.New("settings service not available")

	// ErrDirectoryRequired is returned when the filesystem connector has no directory.
	ErrDirectoryRequired = errors.New("directory is required")

	// ErrAPIKeyRequired is returned when a hosted provider is saved without a key.
	ErrAPIKeyRequired = errors.New("API key is required")
)
