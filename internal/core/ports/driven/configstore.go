package driven

// ConfigReader reads settings by dotted key ("search.threshold").
// Typed getters return the zero value when the key is absent or holds
// a value of another type; integers read as floats, whole floats as ints.
type ConfigReader interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string
}

// ConfigStore is a ConfigReader that can be written and persisted.
type ConfigStore interface {
	ConfigReader

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save writes all values to the backing file.
	Save() error

	// Load replaces all values with the backing file's contents.
	// A missing file yields an empty store.
	Load() error

	// Path is the backing file, or ":memory:".
	Path() string
}
