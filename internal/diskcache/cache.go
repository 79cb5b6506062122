// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultIndexSize is the number of entries kept in memory when Options
// does not set one.
const DefaultIndexSize = 128

// Entry is one stored response.
type Entry struct {
	URL          string    `json:"url"`
	StoredAt     time.Time `json:"stored_at"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	Size         int       `json:"size"`

	Body []byte `json:"-"`
}

// Fresh reports whether the entry may be served at now without
// revalidation.
func (e *Entry) Fresh(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.Before(e.ExpiresAt)
}

// Options configures a Cache.
type Options struct {
	// IndexSize is the number of entries kept in the in-memory index.
	IndexSize int
}

// Cache is a URL-keyed response store rooted at a directory.
// It is safe for concurrent use.
type Cache struct {
	dir   string
	mu    sync.Mutex // serializes writes
	index *lru.Cache[string, *Entry]
}

// Open creates dir if needed and returns a cache rooted there.
func Open(dir string, opts Options) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("diskcache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("diskcache: create dir: %w", err)
	}
	size := opts.IndexSize
	if size <= 0 {
		size = DefaultIndexSize
	}
	index, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, fmt.Errorf("diskcache: index: %w", err)
	}
	return &Cache{dir: dir, index: index}, nil
}

// Dir returns the root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the storage key of url.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) paths(url string) (body, meta string) {
	key := Key(url)
	base := filepath.Join(c.dir, key[:2], key)
	return base + ".body", base + ".json"
}

// Get returns the entry stored for url.
func (c *Cache) Get(url string) (*Entry, bool) {
	if e, ok := c.index.Get(url); ok {
		return e, true
	}

	bodyPath, metaPath := c.paths(url)
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil || e.URL != url {
		return nil, false
	}
	body, err := os.ReadFile(bodyPath)
	if err != nil || len(body) != e.Size {
		return nil, false
	}
	e.Body = body
	c.index.Add(url, &e)
	return &e, true
}

// Put stores body as the response for url received at now. Responses
// marked no-store are skipped.
func (c *Cache) Put(url string, body []byte, h http.Header, now time.Time) error {
	if !Storable(h) {
		return nil
	}
	e := &Entry{
		URL:          url,
		StoredAt:     now,
		ExpiresAt:    Expiry(h, now),
		ETag:         h.Get("ETag"),
		LastModified: h.Get("Last-Modified"),
		ContentType:  h.Get("Content-Type"),
		Size:         len(body),
		Body:         body,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	bodyPath, metaPath := c.paths(url)
	if err := os.MkdirAll(filepath.Dir(bodyPath), 0o755); err != nil {
		return fmt.Errorf("diskcache: create dir: %w", err)
	}
	if err := writeFile(bodyPath, body); err != nil {
		return err
	}
	if err := c.writeMeta(metaPath, e); err != nil {
		return err
	}
	c.index.Add(url, e)
	return nil
}

// Revalidated records that the origin confirmed the stored entry for url
// is still current (a 304 response with header h received at now).
func (c *Cache) Revalidated(url string, h http.Header, now time.Time) error {
	old, ok := c.Get(url)
	if !ok {
		return fmt.Errorf("diskcache: no entry for %s", url)
	}
	e := *old
	e.StoredAt = now
	e.ExpiresAt = Expiry(h, now)
	if v := h.Get("ETag"); v != "" {
		e.ETag = v
	}
	if v := h.Get("Last-Modified"); v != "" {
		e.LastModified = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, metaPath := c.paths(url)
	if err := c.writeMeta(metaPath, &e); err != nil {
		return err
	}
	c.index.Add(url, &e)
	return nil
}

// Remove deletes the entry for url. Removing a missing entry is not an
// error.
func (c *Cache) Remove(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index.Remove(url)
	bodyPath, metaPath := c.paths(url)
	for _, p := range []string{metaPath, bodyPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("diskcache: remove: %w", err)
		}
	}
	return nil
}

func (c *Cache) writeMeta(path string, e *Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("diskcache: encode metadata: %w", err)
	}
	return writeFile(path, raw)
}

// writeFile writes data to a temporary file next to path and renames it
// into place.
func writeFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("diskcache: create temp: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("diskcache: write: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("diskcache: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("diskcache: rename: %w", err)
	}
	return nil
}
