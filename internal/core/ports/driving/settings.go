package driving

import "github.com/custodia-labs/recall/internal/core/domain"

// SettingsService manages engine settings.
type SettingsService interface {
	// Get resolves current settings, filling defaults for unset keys.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetValue parses raw according to the key's type and persists it.
	SetValue(key, raw string) error

	// Keys returns every recognised setting key, sorted.
	Keys() []string

	// Validate checks resolved settings for values the engine cannot use.
	Validate() error
}
