// Package config loads filesend configuration from a YAML file, the environment and an optional .env file.
//
// Values are applied in order: defaults, then the YAML file, then FILESEND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/samthor/filesend/resolve"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FILESEND_"

type Config struct {
	// Addr to listen on. If empty, the PORT env var or 8080 is used.
	Addr     string `yaml:"addr" env:"ADDR"`
	ServeAll bool   `yaml:"serveAll" env:"SERVE_ALL"`

	Root          string   `yaml:"root" env:"ROOT"`
	Index         string   `yaml:"index" env:"INDEX"`
	ShowHidden    bool     `yaml:"showHidden" env:"SHOW_HIDDEN"`
	DisableFormat bool     `yaml:"disableFormat" env:"DISABLE_FORMAT"`
	Encodings     []string `yaml:"encodings" env:"ENCODINGS" envSeparator:","`
	Extensions    []string `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`

	// MaxAge in seconds. Fractions are truncated.
	MaxAge    float64 `yaml:"maxAge" env:"MAX_AGE"`
	Immutable bool    `yaml:"immutable" env:"IMMUTABLE"`

	// Headers are added to every served file, unless already set.
	Headers map[string]string `yaml:"headers" env:"HEADERS"`

	AllowFrame bool `yaml:"allowFrame" env:"ALLOW_FRAME"`
	Buffered   bool `yaml:"buffered" env:"BUFFERED"`
	ChunkSize  int  `yaml:"chunkSize" env:"CHUNK_SIZE"`

	// NotFoundPath is served with a 404 status for missing pages, e.g., "/404.html".
	NotFoundPath string `yaml:"notFoundPath" env:"NOT_FOUND_PATH"`

	// RateLimit is requests per second across the server. Zero disables limiting.
	RateLimit float64 `yaml:"rateLimit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rateBurst" env:"RATE_BURST"`

	// MetricsPath serves prometheus metrics when set, e.g., "/-/metrics".
	MetricsPath string `yaml:"metricsPath" env:"METRICS_PATH"`

	LogLevel string `yaml:"logLevel" env:"LOG_LEVEL"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Index:     "index.html",
		Encodings: []string{resolve.Brotli.Name, resolve.Zstd.Name, resolve.Gzip.Name},
		ChunkSize: 4 * 1024,
		LogLevel:  zerolog.InfoLevel.String(),
	}
}

// Load reads configuration. The file at filename is optional; pass "" to skip it.
// A .env file in the working directory is loaded into the environment if present.
func Load(filename string) (Config, error) {
	config := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("config: loading .env: %w", err)
	}

	if filename != "" {
		configBytes, err := os.ReadFile(filename)
		if err != nil {
			return config, err
		}
		if err := yaml.Unmarshal(configBytes, &config); err != nil {
			return config, fmt.Errorf("config: parsing %s: %w", filename, err)
		}
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return config, fmt.Errorf("config: parsing environment: %w", err)
	}
	return config, nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return level
}

// ResolveOptions converts the configuration into options for a resolve.Resolver.
func (c Config) ResolveOptions(logger *zerolog.Logger) resolve.Options {
	opts := resolve.Options{
		Root:          c.Root,
		Index:         c.Index,
		ShowHidden:    c.ShowHidden,
		DisableFormat: c.DisableFormat,
		Encodings:     c.Encodings,
		Extensions:    c.Extensions,
		MaxAge:        time.Duration(c.MaxAge * float64(time.Second)),
		Immutable:     c.Immutable,
		Logger:        logger,
	}

	if len(c.Headers) != 0 {
		headers := make(http.Header, len(c.Headers))
		for k, v := range c.Headers {
			headers.Set(k, v)
		}
		opts.SetHeaders = func(_ *resolve.Request, _ string, _ resolve.FileInfo, h http.Header) {
			for k, v := range headers {
				if _, ok := h[k]; !ok {
					h[k] = v
				}
			}
		}
	}

	return opts
}
