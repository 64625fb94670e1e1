// Package cli wires configuration into engines for the mediaflow commands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/ofekfell/mediaflow"
	"github.com/ofekfell/mediaflow/internal/config"
	"github.com/ofekfell/mediaflow/pkg/adapters/ffmpeg"
	"github.com/ofekfell/mediaflow/pkg/adapters/memory"
	"github.com/ofekfell/mediaflow/pkg/adapters/redis"
	"github.com/ofekfell/mediaflow/pkg/adapters/resolver"
	"github.com/ofekfell/mediaflow/pkg/domain"
	"github.com/ofekfell/mediaflow/pkg/observability"
	"github.com/ofekfell/mediaflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// CloseFunc releases what an engine factory opened.
type CloseFunc func() error

// Storage holds the asset cache and download lock chosen by configuration.
type Storage struct {
	Cache  ports.AssetCache
	Locker ports.Locker
	Close  CloseFunc
}

// NewStorage picks Redis when an address is configured and memory otherwise.
func NewStorage(cfg config.RedisConfig) Storage {
	if cfg.Addr == "" {
		return Storage{
			Cache:  memory.NewCache(),
			Locker: memory.NewLocker(),
			Close:  func() error { return nil },
		}
	}

	client := backend.NewClient(&backend.Options{Addr: cfg.Addr})
	return newRedisStorage(client, cfg)
}

func newRedisStorage(client backend.UniversalClient, cfg config.RedisConfig) Storage {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = redis.DefaultPrefix
	}
	cache := redis.NewFromClient(client, redis.WithPrefix(prefix), redis.WithTTL(cfg.TTL))
	return Storage{
		Cache:  cache,
		Locker: redis.NewLocker(client, prefix+"lock:"),
		Close:  cache.Close,
	}
}

// NewEngine builds an engine from configuration. Extra hooks run after the
// logging hooks. The returned CloseFunc must be called when done.
func NewEngine(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*mediaflow.Engine, CloseFunc, error) {
	storage := NewStorage(cfg.Redis)
	engine, err := newEngine(cfg, logger, storage, hooks...)
	if err != nil {
		_ = storage.Close()
		return nil, nil, err
	}
	return engine, storage.Close, nil
}

func newEngine(cfg config.Config, logger *slog.Logger, storage Storage, hooks ...domain.LifecycleHooks) (*mediaflow.Engine, error) {
	ffOpts := []ffmpeg.Option{ffmpeg.WithLogger(logger)}
	if cfg.FFmpeg != "" {
		ffOpts = append(ffOpts, ffmpeg.WithFFmpeg(cfg.FFmpeg))
	}
	if cfg.FFprobe != "" {
		ffOpts = append(ffOpts, ffmpeg.WithFFprobe(cfg.FFprobe))
	}
	ff, err := ffmpeg.New(ffOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing ffmpeg: %w", err)
	}

	res := resolver.New(
		resolver.WithDownloadDir(cfg.DownloadDir),
		resolver.WithTimeout(cfg.DownloadTimeout),
		resolver.WithCache(storage.Cache),
		resolver.WithLocker(storage.Locker),
		resolver.WithLogger(logger),
	)

	engineOpts := []mediaflow.Option{
		mediaflow.WithLogger(logger),
		mediaflow.WithRunner(ff),
		mediaflow.WithResolver(res),
		mediaflow.WithTargets(cfg.Normalize),
		mediaflow.WithOutputDir(cfg.OutputDir),
		mediaflow.WithWorkDir(cfg.WorkDir),
		mediaflow.WithInputProbing(cfg.Probe),
		mediaflow.WithLifecycleHooks(observability.Combine(append([]domain.LifecycleHooks{observability.LogHooks(logger)}, hooks...)...)),
	}
	if ff.FFprobe() != "" {
		engineOpts = append(engineOpts, mediaflow.WithProber(ff))
	}

	engine, err := mediaflow.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
