// Package resolver turns workflow references into local file paths.
//
// Local paths must already exist. http and https URLs are downloaded into a
// download directory, once per reference when an AssetCache is configured.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ofekfell/mediaflow/internal/logging"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/ports"
)

// Resolver implements ports.Resolver.
type Resolver struct {
	client     *http.Client
	dir        string
	cache      ports.AssetCache
	locker     ports.Locker
	lockTTL    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures the resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the download client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithTimeout bounds each download request.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.client = &http.Client{Timeout: d, Transport: r.client.Transport}
	}
}

// WithDownloadDir sets where remote references are stored.
func WithDownloadDir(dir string) Option {
	return func(r *Resolver) {
		r.dir = dir
	}
}

// WithCache remembers downloads across renders.
func WithCache(c ports.AssetCache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithLocker serializes concurrent downloads of the same reference.
func WithLocker(l ports.Locker) Option {
	return func(r *Resolver) {
		r.locker = l
	}
}

// WithRetries retries failed downloads. 4xx responses are never retried.
func WithRetries(n int, delay time.Duration) Option {
	return func(r *Resolver) {
		r.maxRetries = n
		r.retryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver downloading into the system temp directory.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client:     &http.Client{Timeout: 5 * time.Minute},
		dir:        filepath.Join(os.TempDir(), "mediaflow-downloads"),
		lockTTL:    10 * time.Minute,
		maxRetries: 1,
		retryDelay: time.Second,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsRemote reports whether ref is an http or https URL.
func IsRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve returns an absolute local path for ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if IsRemote(ref) {
		return r.fetch(ctx, ref)
	}
	return resolveLocal(ref)
}

func resolveLocal(ref string) (string, error) {
	path := strings.TrimPrefix(ref, "file://")
	if path == "" {
		return "", fmt.Errorf("%w: empty reference", domain.ErrResolution)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrResolution, ref, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrResolution, ref)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrResolution, ref, err)
	}
	return abs, nil
}

func (r *Resolver) fetch(ctx context.Context, ref string) (string, error) {
	if path, ok := r.cached(ctx, ref); ok {
		return path, nil
	}

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, ref, r.lockTTL)
		if err != nil {
			return "", fmt.Errorf("%w: lock %s: %v", domain.ErrResolution, ref, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("failed to release download lock", "ref", ref, "err", err)
			}
		}()
		// Another holder may have finished the download while we waited.
		if path, ok := r.cached(ctx, ref); ok {
			return path, nil
		}
	}

	path, err := r.download(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrResolution, ref, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, ref, path); err != nil {
			r.logger.Warn("failed to cache download", "ref", ref, "err", err)
		}
	}
	return path, nil
}

func (r *Resolver) cached(ctx context.Context, ref string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	path, err := r.cache.Get(ctx, ref)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			r.logger.Warn("asset cache lookup failed", "ref", ref, "err", err)
		}
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	r.logger.Debug("asset cache hit", "ref", ref, "path", path)
	return path, true
}
