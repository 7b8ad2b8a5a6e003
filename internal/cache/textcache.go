package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// TextCache stores plain text extracted from source documents, keyed by a
// digest of the document bytes and the extractor version. A PDF whose bytes
// are unchanged is never parsed twice.
type TextCache struct {
	Dir string
	// StrictPerms, when true, enforces 0700 on the cache directory and 0600
	// on entries.
	StrictPerms bool
}

func (c *TextCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

// KeyFrom builds a cache key from the extractor name and document bytes.
func KeyFrom(extractor string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(extractor))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *TextCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".txt")
}

// Get returns the cached text for key. A miss is not an error.
func (c *TextCache) Get(_ context.Context, key string) (string, bool, error) {
	if err := c.ensureDir(); err != nil {
		return "", false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return "", false, nil
	}
	// mtime doubles as last-access time for EnforceLimits
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return string(b), true, nil
}

// Save writes text under key.
func (c *TextCache) Save(_ context.Context, key string, text string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	tmp := c.pathFor(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), mode); err != nil {
		return err
	}
	return os.Rename(tmp, c.pathFor(key))
}
