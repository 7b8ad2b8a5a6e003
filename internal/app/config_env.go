package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvDataDir     = "POLICYREGEX_DATA_DIR"
	EnvConfigDir   = "POLICYREGEX_CONFIG_DIR"
	EnvCacheDir    = "POLICYREGEX_CACHE_DIR"
	EnvCacheMaxAge = "POLICYREGEX_CACHE_MAX_AGE"
	EnvCacheStrict = "POLICYREGEX_CACHE_STRICT_PERMS"
	EnvWorkers     = "POLICYREGEX_WORKERS"
	EnvVerbose     = "POLICYREGEX_VERBOSE"
	EnvStore       = "POLICYREGEX_STORE"
	EnvDBPath      = "POLICYREGEX_DB"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. Env takes precedence over the config file; flags are applied after.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		cfg.ConfigDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCacheDir)); v != "" {
		cfg.CacheDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBPath)); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if s := os.Getenv(EnvCacheMaxAge); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.CacheMaxAge = d
		}
	}

	setBool := func(dst *bool, key string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Verbose, EnvVerbose)
	setBool(&cfg.CacheStrictPerms, EnvCacheStrict)
	setBool(&cfg.UseStore, EnvStore)
}
