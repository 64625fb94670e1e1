// Package config loads mediaflow settings from a file, the environment and flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ofekfell/mediaflow/internal/runtime"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "mediaflow.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MEDIAFLOW_"

// Config holds every setting of the CLI and servers.
type Config struct {
	LogLevel  string `yaml:"log_level" json:"log_level"`   // debug, info, warn, error
	LogFormat string `yaml:"log_format" json:"log_format"` // text, json

	FFmpeg  string `yaml:"ffmpeg" json:"ffmpeg"` // empty means discover
	FFprobe string `yaml:"ffprobe" json:"ffprobe"`

	OutputDir       string        `yaml:"output_dir" json:"output_dir"`
	WorkDir         string        `yaml:"work_dir" json:"work_dir"`
	DownloadDir     string        `yaml:"download_dir" json:"download_dir"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`

	// Probe inputs so that files without audio are handled as video-only.
	Probe     bool            `yaml:"probe" json:"probe"`
	Normalize runtime.Targets `yaml:"normalize" json:"normalize"`

	Redis RedisConfig `yaml:"redis" json:"redis"`
	HTTP  HTTPConfig  `yaml:"http" json:"http"`
	MCP   MCPConfig   `yaml:"mcp" json:"mcp"`
}

// RedisConfig selects the Redis asset cache. An empty Addr keeps the cache in memory.
type RedisConfig struct {
	Addr   string        `yaml:"addr" json:"addr"`
	Prefix string        `yaml:"prefix" json:"prefix"`
	TTL    time.Duration `yaml:"ttl" json:"ttl"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" json:"transport"` // stdio or sse
	Addr      string `yaml:"addr" json:"addr"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
}

// Default returns the built-in settings.
func Default() Config {
	tmp := os.TempDir()
	return Config{
		LogLevel:        "info",
		LogFormat:       "text",
		OutputDir:       tmp,
		DownloadDir:     filepath.Join(tmp, "mediaflow-downloads"),
		DownloadTimeout: 5 * time.Minute,
		Probe:           true,
		Normalize:       runtime.DefaultTargets(),
		Redis:           RedisConfig{Prefix: "mediaflow:asset:", TTL: 24 * time.Hour},
		HTTP:            HTTPConfig{Addr: ":8080"},
		MCP:             MCPConfig{Transport: "stdio", Addr: ":8081"},
	}
}

// Load builds the configuration: defaults, then the file, then MEDIAFLOW_*
// variables. An empty path reads DefaultFile if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from MEDIAFLOW_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":     &c.LogLevel,
		"LOG_FORMAT":    &c.LogFormat,
		"FFMPEG":        &c.FFmpeg,
		"FFPROBE":       &c.FFprobe,
		"OUTPUT_DIR":    &c.OutputDir,
		"WORK_DIR":      &c.WorkDir,
		"DOWNLOAD_DIR":  &c.DownloadDir,
		"REDIS_ADDR":    &c.Redis.Addr,
		"REDIS_PREFIX":  &c.Redis.Prefix,
		"HTTP_ADDR":     &c.HTTP.Addr,
		"MCP_TRANSPORT": &c.MCP.Transport,
		"MCP_ADDR":      &c.MCP.Addr,
		"MCP_BASE_URL":  &c.MCP.BaseURL,
		"PIXEL_FORMAT":  &c.Normalize.PixelFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REDIS_TTL":        &c.Redis.TTL,
		"DOWNLOAD_TIMEOUT": &c.DownloadTimeout,
	}
	for key, dst := range durations {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup(EnvPrefix + "PROBE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPROBE: %w", EnvPrefix, err)
		}
		c.Probe = b
	}
	if v, ok := lookup(EnvPrefix + "FPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sFPS: %w", EnvPrefix, err)
		}
		c.Normalize.FPS = f
	}
	if v, ok := lookup(EnvPrefix + "SAMPLE_RATE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSAMPLE_RATE: %w", EnvPrefix, err)
		}
		c.Normalize.SampleRate = n
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("mcp.transport must be stdio or sse, got %q", c.MCP.Transport)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if c.Normalize.FPS < 0 || c.Normalize.SampleRate < 0 {
		return errors.New("normalize targets must not be negative")
	}
	if c.Redis.TTL < 0 {
		return errors.New("redis.ttl must not be negative")
	}
	return nil
}
