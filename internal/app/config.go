package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Layout
	DataDir   string
	ConfigDir string

	// Worker pool size for text loading, extraction and normalization.
	Workers int

	// Text cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxCount    int
	CacheClear       bool
	CacheStrictPerms bool
	DisableCache     bool

	// Result store; DBPath defaults to <DataDir>/results.db when UseStore is set.
	UseStore bool
	DBPath   string

	// Logging
	Verbose bool
	LogJSON bool
}

// Built-in defaults. ApplyFileConfig treats a field still holding its
// default as unset.
const (
	DefaultDataDir   = "data"
	DefaultConfigDir = "config"
	DefaultCacheDir  = ".policyregex-cache"
	DefaultWorkers   = 4
)

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:   DefaultDataDir,
		ConfigDir: DefaultConfigDir,
		CacheDir:  DefaultCacheDir,
		Workers:   DefaultWorkers,
	}
}
