package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ofekfell/mediaflow/pkg/adapters/memory"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("media"), 0o644))

	r := New()
	got, err := r.Resolve(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = r.Resolve(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolve_LocalFailures(t *testing.T) {
	dir := t.TempDir()
	r := New()

	for _, ref := range []string{"", filepath.Join(dir, "missing.mp4"), dir} {
		_, err := r.Resolve(context.Background(), ref)
		assert.ErrorIs(t, err, domain.ErrResolution, "ref %q", ref)
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.mp4"))
	assert.True(t, IsRemote("http://example.com/a"))
	assert.False(t, IsRemote("ftp://example.com/a.mp4"))
	assert.False(t, IsRemote("https://"))
	assert.False(t, IsRemote("/tmp/a.mp4"))
}

func TestExtensionForType(t *testing.T) {
	assert.Equal(t, ".mp4", extensionForType("video/mp4"))
	assert.Equal(t, ".mpeg", extensionForType("audio/mpeg; charset=binary"))
	assert.Equal(t, ".png", extensionForType("image/png"))
	assert.Equal(t, "", extensionForType("application/octet-stream"))
	assert.Equal(t, "", extensionForType(""))
}

func TestResolve_DownloadUsesContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "video/webm")
		if req.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte("remote-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := New(WithDownloadDir(dir))

	path, err := r.Resolve(context.Background(), srv.URL+"/clip")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, ".webm", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "remote-bytes", string(data))
}

func TestResolve_DownloadFallsBackToURLExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	r := New(WithDownloadDir(t.TempDir()))
	path, err := r.Resolve(context.Background(), srv.URL+"/media/clip.mov?sig=abc")
	require.NoError(t, err)
	assert.Equal(t, ".mov", filepath.Ext(path))
}

func TestResolve_NotFoundIsNotRetried(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet {
			gets.Add(1)
		}
		http.NotFound(w, req)
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := New(WithDownloadDir(dir), WithRetries(3, time.Millisecond))

	_, err := r.Resolve(context.Background(), srv.URL+"/missing.mp4")
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, int32(1), gets.Load())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial download should remain")
}

func TestResolve_ServerErrorIsRetried(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodHead {
			return
		}
		if gets.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := New(WithDownloadDir(t.TempDir()), WithRetries(3, time.Millisecond))
	_, err := r.Resolve(context.Background(), srv.URL+"/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, int32(3), gets.Load())
}

func TestResolve_CacheAvoidsSecondDownload(t *testing.T) {
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method == http.MethodGet {
			gets.Add(1)
		}
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	cache := memory.NewCache()
	r := New(WithDownloadDir(t.TempDir()), WithCache(cache), WithLocker(memory.NewLocker()))
	ref := srv.URL + "/a.mp4"

	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := r.Resolve(context.Background(), ref)
			assert.NoError(t, err)
			paths[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), gets.Load())
	for _, p := range paths {
		assert.Equal(t, paths[0], p)
	}

	// A cached file that vanished is downloaded again.
	require.NoError(t, os.Remove(paths[0]))
	p, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.NotEqual(t, paths[0], p)
	assert.Equal(t, int32(2), gets.Load())
}
