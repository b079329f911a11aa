// Package config loads stakeledger configuration from YAML.
//
// Values are decoded strictly (unknown keys are errors) over Default(), then
// validated against the embedded CUE schema in schema.cue.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full runtime configuration.
type Config struct {
	Database string        `yaml:"database" json:"database"`
	Listen   string        `yaml:"listen" json:"listen"`
	Log      LogConfig     `yaml:"log" json:"log"`
	Metrics  MetricsConfig `yaml:"metrics" json:"metrics"`
	NTP      NTPConfig     `yaml:"ntp" json:"ntp"`
	Issuer   IssuerConfig  `yaml:"issuer" json:"issuer"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// MetricsConfig toggles the Prometheus recorder and /metrics route.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// NTPConfig configures the startup clock drift check.
type NTPConfig struct {
	Server    string        `yaml:"server" json:"server"`
	MaxOffset time.Duration `yaml:"max_offset" json:"max_offset"`
}

// IssuerConfig selects where claimed rewards go: "outbox" or "log".
type IssuerConfig struct {
	Kind string `yaml:"kind" json:"kind"`
}

// Issuer kinds.
const (
	IssuerOutbox = "outbox"
	IssuerLog    = "log"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: "stakeledger.db",
		Listen:   "127.0.0.1:8080",
		Log:      LogConfig{Level: "info", Format: "text"},
		Metrics:  MetricsConfig{Enabled: true},
		NTP:      NTPConfig{Server: "", MaxOffset: time.Second},
		Issuer:   IssuerConfig{Kind: IssuerOutbox},
	}
}

// Load reads path over Default() and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := decode(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML data over Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Validate checks c against the CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}

	v := schema.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", firstCUEError(err))
	}
	return nil
}

// Logger builds the slog logger c.Log describes, writing to w.
// verbose forces DEBUG regardless of the configured level.
func (c Config) Logger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// firstCUEError flattens a CUE error list to its first message.
func firstCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}
