// Package cache provides a file-based cache for extraction results, keyed by
// content hash so stale entries are never served for changed files.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache stores opaque byte payloads under string keys.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is the on-disk envelope for a cached payload.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir. A disabled cache is a valid no-op cache.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// HashBytes computes a BLAKE3 hash of data as a hex string.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get retrieves a cached payload if present and not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		os.Remove(c.keyPath(key))
		return nil, false
	}
	return entry.Data, true
}

// Set stores a payload under key.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{Timestamp: time.Now(), Data: data}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), payload, 0o644)
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, HashBytes([]byte(key))+".json")
}
