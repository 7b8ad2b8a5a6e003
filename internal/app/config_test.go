package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "policyregex.yaml")
	src := "dataDir: /data\nworkers: 8\ncache:\n  maxAge: 48h\n  strictPerms: true\nstore:\n  enable: true\n"
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := DefaultConfig()
	ApplyFileConfig(&cfg, fc)
	if cfg.DataDir != "/data" || cfg.Workers != 8 || cfg.ConfigDir != DefaultConfigDir {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.CacheMaxAge != 48*time.Hour || !cfg.CacheStrictPerms || !cfg.UseStore {
		t.Fatalf("cache/store settings not applied: %+v", cfg)
	}
}

func TestApplyFileConfig_ExplicitValuesWin(t *testing.T) {
	var fc FileConfig
	fc.DataDir = "/from-file"
	fc.Workers = 2
	cfg := DefaultConfig()
	cfg.DataDir = "/from-flag"
	cfg.Workers = 16
	ApplyFileConfig(&cfg, fc)
	if cfg.DataDir != "/from-flag" || cfg.Workers != 16 {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
}

func TestLoadConfigFile_JSONDuration(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.json")
	if err := os.WriteFile(p, []byte(`{"cache": {"maxAge": "90m", "maxCount": 50}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if time.Duration(fc.Cache.MaxAge) != 90*time.Minute || fc.Cache.MaxCount != 50 {
		t.Fatalf("unexpected cache section: %+v", fc.Cache)
	}
	if err := os.WriteFile(p, []byte(`{"cache": {"maxAge": 5}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigFile(p); err == nil {
		t.Fatalf("expected error for numeric duration")
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	cfg := DefaultConfig()
	cfg.DataDir = " "
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
	cfg = DefaultConfig()
	cfg.Workers = -1
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for negative workers")
	}
}
