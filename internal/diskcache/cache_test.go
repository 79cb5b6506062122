// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diskcache

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func header(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestOpenEmptyDir(t *testing.T) {
	_, err := Open("", Options{})
	require.Error(t, err)
}

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir(), Options{})
	require.NoError(t, err)

	const url = "https://example.com/a.png"
	h := header("Cache-Control", "max-age=60", "ETag", `"v1"`, "Content-Type", "image/png")
	require.NoError(t, c.Put(url, []byte("body"), h, t0))

	e, ok := c.Get(url)
	require.True(t, ok)
	assert.Equal(t, []byte("body"), e.Body)
	assert.Equal(t, `"v1"`, e.ETag)
	assert.Equal(t, "image/png", e.ContentType)
	assert.True(t, e.Fresh(t0.Add(59*time.Second)))
	assert.False(t, e.Fresh(t0.Add(60*time.Second)))

	_, ok = c.Get("https://example.com/other.png")
	assert.False(t, ok)
}

func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, Options{})
	require.NoError(t, err)

	const url = "https://example.com/a.png"
	require.NoError(t, c.Put(url, []byte("persisted"), header("Cache-Control", "max-age=60"), t0))

	key := Key(url)
	_, err = os.Stat(filepath.Join(dir, key[:2], key+".body"))
	require.NoError(t, err)

	reopened, err := Open(dir, Options{IndexSize: 1})
	require.NoError(t, err)
	e, ok := reopened.Get(url)
	require.True(t, ok)
	assert.Equal(t, []byte("persisted"), e.Body)
	assert.True(t, e.ExpiresAt.Equal(t0.Add(time.Minute)))
}

func TestPutNoStore(t *testing.T) {
	c, err := Open(t.TempDir(), Options{})
	require.NoError(t, err)

	const url = "https://example.com/private.png"
	require.NoError(t, c.Put(url, []byte("x"), header("Cache-Control", "private, no-store"), t0))
	_, ok := c.Get(url)
	assert.False(t, ok)
}

func TestTruncatedBodyIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, Options{})
	require.NoError(t, err)

	const url = "https://example.com/a.png"
	require.NoError(t, c.Put(url, []byte("0123456789"), header(), t0))

	bodyPath, _ := c.paths(url)
	require.NoError(t, os.WriteFile(bodyPath, []byte("0123"), 0o644))

	reopened, err := Open(dir, Options{})
	require.NoError(t, err)
	_, ok := reopened.Get(url)
	assert.False(t, ok)
}

func TestRevalidated(t *testing.T) {
	c, err := Open(t.TempDir(), Options{})
	require.NoError(t, err)

	const url = "https://example.com/a.png"
	require.NoError(t, c.Put(url, []byte("body"), header("Cache-Control", "no-cache", "ETag", `"v1"`), t0))
	e, ok := c.Get(url)
	require.True(t, ok)
	assert.False(t, e.Fresh(t0))

	later := t0.Add(time.Hour)
	require.NoError(t, c.Revalidated(url, header("Cache-Control", "max-age=30"), later))

	e, ok = c.Get(url)
	require.True(t, ok)
	assert.True(t, e.Fresh(later.Add(10*time.Second)))
	assert.Equal(t, `"v1"`, e.ETag)
	assert.Equal(t, []byte("body"), e.Body)

	assert.Error(t, c.Revalidated("https://example.com/missing.png", header(), later))
}

func TestRemove(t *testing.T) {
	c, err := Open(t.TempDir(), Options{})
	require.NoError(t, err)

	const url = "https://example.com/a.png"
	require.NoError(t, c.Put(url, []byte("body"), header(), t0))
	require.NoError(t, c.Remove(url))
	_, ok := c.Get(url)
	assert.False(t, ok)
	assert.NoError(t, c.Remove(url))
}

func TestConcurrentPut(t *testing.T) {
	c, err := Open(t.TempDir(), Options{IndexSize: 4})
	require.NoError(t, err)

	const url = "https://example.com/shared.png"
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := []byte{byte(i), byte(i), byte(i)}
			assert.NoError(t, c.Put(url, body, header("Cache-Control", "max-age=60"), t0))
			_, _ = c.Get(url)
		}()
	}
	wg.Wait()

	e, ok := c.Get(url)
	require.True(t, ok)
	assert.Len(t, e.Body, 3)
}
