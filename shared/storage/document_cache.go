package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"video-analytics/internal/models"
)

const metadataFile = "metadata.json"

// DocumentCache keeps a copy of the most recently uploaded document so it can
// be restored after a restart. It holds at most one cached file.
type DocumentCache struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewDocumentCache creates the cache directory if needed.
func NewDocumentCache(dir string) (*DocumentCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DocumentCache{dir: dir, now: time.Now}, nil
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CacheFileName is "{first 16 hex of hash}_{sanitized name}".
func CacheFileName(hash, name string) string {
	if len(hash) > 16 {
		hash = hash[:16]
	}
	return hash + "_" + sanitizeName(name)
}

// sanitizeName keeps letters, digits, '.', '_' and '-' of the base name.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
	if strings.Trim(clean, "._") == "" {
		return "file.json"
	}
	return clean
}

// Save writes data under its content-addressed name and points the metadata
// at it. A previously cached file with a different name is removed.
func (c *DocumentCache) Save(name string, data []byte) (*models.CacheRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := Hash(data)
	fileName := CacheFileName(hash, name)
	path := filepath.Join(c.dir, fileName)

	if err := writeFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("failed to write cache file: %w", err)
	}

	if prev, err := c.load(); err == nil && prev != nil && prev.CacheFileName != fileName {
		_ = os.Remove(filepath.Join(c.dir, prev.CacheFileName))
	}

	rec := &models.CacheRecord{
		FileName:      name,
		CacheFileName: fileName,
		FileHash:      hash,
		CachedAt:      c.now().UTC(),
		FilePath:      path,
	}
	if err := c.save(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Current returns the metadata record, or nil when nothing is cached.
func (c *DocumentCache) Current() (*models.CacheRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Read returns the cached document bytes. If the metadata points at a file
// that no longer exists the metadata is dropped and (nil, nil) is returned.
func (c *DocumentCache) Read() (*models.CacheRecord, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.load()
	if err != nil || rec == nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filepath.Join(c.dir, rec.CacheFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = os.Remove(filepath.Join(c.dir, metadataFile))
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return rec, data, nil
}

// Verify reports whether the cached file still matches its recorded hash.
// A missing or altered file clears the cache.
func (c *DocumentCache) Verify() (bool, error) {
	rec, data, err := c.Read()
	if err != nil || rec == nil {
		return false, err
	}
	if Hash(data) == rec.FileHash {
		return true, nil
	}
	return false, c.Clear()
}

// Clear removes the cached file and the metadata.
func (c *DocumentCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, _ := c.load()
	if rec != nil {
		if err := os.Remove(filepath.Join(c.dir, rec.CacheFileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove cache file: %w", err)
		}
	}
	if err := os.Remove(filepath.Join(c.dir, metadataFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache metadata: %w", err)
	}
	return nil
}

// load reads the metadata file; a missing file means an empty cache.
func (c *DocumentCache) load() (*models.CacheRecord, error) {
	file, err := os.Open(filepath.Join(c.dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open cache metadata: %w", err)
	}
	defer file.Close()

	var rec models.CacheRecord
	if err := json.NewDecoder(file).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode cache metadata: %w", err)
	}
	return &rec, nil
}

func (c *DocumentCache) save(rec *models.CacheRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache metadata: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(c.dir, metadataFile), data); err != nil {
		return fmt.Errorf("failed to write cache metadata: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
