package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file runtime configuration schema.
type FileConfig struct {
	DataDir   string `yaml:"dataDir" json:"dataDir"`
	ConfigDir string `yaml:"configDir" json:"configDir"`
	Workers   int    `yaml:"workers" json:"workers"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`
	LogJSON   bool   `yaml:"logJSON" json:"logJSON"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      Duration `yaml:"maxAge" json:"maxAge"`
		MaxCount    int      `yaml:"maxCount" json:"maxCount"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
		Disable     bool     `yaml:"disable" json:"disable"`
	} `yaml:"cache" json:"cache"`

	Store struct {
		Enable bool   `yaml:"enable" json:"enable"`
		Path   string `yaml:"path" json:"path"`
	} `yaml:"store" json:"store"`
}

// Duration accepts "36h"-style strings in config files.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.parse(n.Value)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for fields that are unset
// or still hold their built-in default, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if (cfg.DataDir == "" || cfg.DataDir == DefaultDataDir) && fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if (cfg.ConfigDir == "" || cfg.ConfigDir == DefaultConfigDir) && fc.ConfigDir != "" {
		cfg.ConfigDir = fc.ConfigDir
	}
	if (cfg.Workers == 0 || cfg.Workers == DefaultWorkers) && fc.Workers > 0 {
		cfg.Workers = fc.Workers
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if !cfg.LogJSON && fc.LogJSON {
		cfg.LogJSON = true
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if cfg.CacheMaxCount == 0 && fc.Cache.MaxCount > 0 {
		cfg.CacheMaxCount = fc.Cache.MaxCount
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if !cfg.DisableCache && fc.Cache.Disable {
		cfg.DisableCache = true
	}

	if !cfg.UseStore && fc.Store.Enable {
		cfg.UseStore = true
	}
	if cfg.DBPath == "" && fc.Store.Path != "" {
		cfg.DBPath = fc.Store.Path
	}
}

// ValidateConfig checks required settings and limits.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("config: data directory is required")
	}
	if strings.TrimSpace(cfg.ConfigDir) == "" {
		return errors.New("config: config directory is required")
	}
	if cfg.Workers < 0 || cfg.CacheMaxCount < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
