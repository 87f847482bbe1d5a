package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDataDir           = "storage.data_dir"
	keyChunkSize         = "chunker.size"
	keyChunkOverlap      = "chunker.overlap"
	keySearchLimit       = "search.limit"
	keySearchThreshold   = "search.threshold"
	keySearchTimeout     = "search.timeout"
	keyHighComplexity    = "search.high_complexity"
	keyComplexityLimit   = "search.complexity_limit"
	keyDefaultCollection = "collection.default"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedVocabulary   = "embedding.vocabulary_file"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyAdmissionEnabled  = "admission.enabled"
	keyAdmissionRate     = "admission.rate"
	keyAdmissionBurst    = "admission.burst"
	keyAdmissionLongWork = "admission.long_query_words"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settingKinds lists every recognised key with the type it is stored as.
var settingKinds = map[string]valueKind{
	keyDataDir:           kindString,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keySearchLimit:       kindInt,
	keySearchThreshold:   kindFloat,
	keySearchTimeout:     kindDuration,
	keyHighComplexity:    kindFloat,
	keyComplexityLimit:   kindInt,
	keyDefaultCollection: kindString,
	keyEmbedProvider:     kindString,
	keyEmbedVocabulary:   kindString,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyAdmissionEnabled:  kindBool,
	keyAdmissionRate:     kindFloat,
	keyAdmissionBurst:    kindInt,
	keyAdmissionLongWork: kindInt,
}

// SettingsService resolves engine settings from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Keys returns the recognised config keys in alphabetical order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves current settings. Unset keys take their defaults and an
// unrecognised embedding provider falls back to the default provider.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	timeout, err := s.getDuration(keySearchTimeout, d.Search.Timeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyDataDir, d.Storage.DataDir),
		},
		Chunker: domain.ChunkerSettings{
			Size:    s.getInt(keyChunkSize, d.Chunker.Size),
			Overlap: s.getInt(keyChunkOverlap, d.Chunker.Overlap),
		},
		Search: domain.SearchSettings{
			Limit:           s.getInt(keySearchLimit, d.Search.Limit),
			Threshold:       s.getFloat(keySearchThreshold, d.Search.Threshold),
			Timeout:         timeout,
			HighComplexity:  s.getFloat(keyHighComplexity, d.Search.HighComplexity),
			ComplexityLimit: s.getInt(keyComplexityLimit, d.Search.ComplexityLimit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:       s.getProvider(d.Embedding.Provider),
			VocabularyFile: s.getString(keyEmbedVocabulary, d.Embedding.VocabularyFile),
			Model:          s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:        s.getString(keyEmbedBaseURL, d.Embedding.BaseURL),
		},
		Admission: domain.AdmissionSettings{
			Enabled:        s.getBool(keyAdmissionEnabled, d.Admission.Enabled),
			Rate:           s.getFloat(keyAdmissionRate, d.Admission.Rate),
			Burst:          s.getInt(keyAdmissionBurst, d.Admission.Burst),
			LongQueryWords: s.getInt(keyAdmissionLongWork, d.Admission.LongQueryWords),
		},
		DefaultCollection: s.getString(keyDefaultCollection, d.DefaultCollection),
	}

	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.Storage.DataDir},
		{keyChunkSize, settings.Chunker.Size},
		{keyChunkOverlap, settings.Chunker.Overlap},
		{keySearchLimit, settings.Search.Limit},
		{keySearchThreshold, settings.Search.Threshold},
		{keySearchTimeout, settings.Search.Timeout.String()},
		{keyHighComplexity, settings.Search.HighComplexity},
		{keyComplexityLimit, settings.Search.ComplexityLimit},
		{keyDefaultCollection, settings.DefaultCollection},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedVocabulary, settings.Embedding.VocabularyFile},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyAdmissionEnabled, settings.Admission.Enabled},
		{keyAdmissionRate, settings.Admission.Rate},
		{keyAdmissionBurst, settings.Admission.Burst},
		{keyAdmissionLongWork, settings.Admission.LongQueryWords},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetValue parses raw according to the key's type and stores it.
func (s *SettingsService) SetValue(key, raw string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var value any
	var err error
	switch kind {
	case kindInt:
		value, err = strconv.Atoi(raw)
	case kindFloat:
		value, err = strconv.ParseFloat(raw, 64)
	case kindBool:
		value, err = strconv.ParseBool(raw)
	case kindDuration:
		_, err = time.ParseDuration(raw)
		value = raw
	default:
		value = raw
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if key == keyEmbedProvider && !domain.EmbeddingProvider(raw).IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, raw)
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks resolved settings for values the engine cannot run with.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case settings.Chunker.Size <= 0:
		return domain.ConfigurationFailure("validate", fmt.Errorf("%s must be positive", keyChunkSize))
	case settings.Chunker.Overlap < 0:
		return domain.ConfigurationFailure("validate", fmt.Errorf("%s must not be negative", keyChunkOverlap))
	case settings.Search.Limit <= 0:
		return domain.ConfigurationFailure("validate", fmt.Errorf("%s must be positive", keySearchLimit))
	case settings.Search.Threshold < -1 || settings.Search.Threshold > 1:
		return domain.ConfigurationFailure("validate", fmt.Errorf("%s must be within [-1, 1]", keySearchThreshold))
	case settings.DefaultCollection == "":
		return domain.ConfigurationFailure("validate", fmt.Errorf("%s must not be empty", keyDefaultCollection))
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, domain.ConfigurationFailure("parse "+key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(keyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
