// Package config loads the engine's TOML configuration file per
// spec.md's [conversion]/[learning] tables, applying defaults before
// parse and clamping out-of-range values rather than failing startup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/karukan/engine/engine"
	"github.com/karukan/engine/learning"
	"github.com/karukan/engine/strategy"
)

const appName = "karukan"

// Error is the structured ConfigError from spec.md §7: an unparsable
// document or an out-of-range value. It implements error and wraps
// the underlying cause, if any.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type conversionTable struct {
	Strategy            string `toml:"strategy"`
	NumCandidates       int    `toml:"num_candidates"`
	NThreads            int    `toml:"n_threads"`
	Model               string `toml:"model"`
	LightModel          string `toml:"light_model"`
	UseContext          *bool  `toml:"use_context"`
	MaxContextLength    int    `toml:"max_context_length"`
	ShortInputThreshold int    `toml:"short_input_threshold"`
	BeamWidth           int    `toml:"beam_width"`
	MaxLatencyMs        int64  `toml:"max_latency_ms"`
	DictPath            string `toml:"dict_path"`
}

type learningTable struct {
	Enabled    *bool `toml:"enabled"`
	MaxEntries int   `toml:"max_entries"`
}

// fileConfig mirrors the [conversion]/[learning] tables exactly as
// they appear on disk, before defaulting and validation.
type fileConfig struct {
	Conversion conversionTable `toml:"conversion"`
	Learning   learningTable   `toml:"learning"`
}

// Load reads path, merges it over engine.DefaultConfig(), and
// validates the result. A missing file is not an error — it returns
// the defaults, matching ollama's tolerant-missing-config behavior.
// Out-of-range values are logged as a ConfigError and clamped to the
// default rather than aborting startup.
func Load(path string) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, &Error{Err: err}
	}

	var fc fileConfig
	if _, err := toml.Decode(string(data), &fc); err != nil {
		return cfg, &Error{Err: fmt.Errorf("parsing %s: %w", path, err)}
	}

	applyConversion(&cfg, fc.Conversion)
	applyLearning(&cfg, fc.Learning)
	return cfg, nil
}

func applyConversion(cfg *engine.Config, t conversionTable) {
	if t.Strategy != "" {
		if mode, ok := parseMode(t.Strategy); ok {
			cfg.Strategy = mode
		} else {
			logClamp("conversion.strategy", t.Strategy, cfg.Strategy)
		}
	}
	if t.NumCandidates != 0 {
		if t.NumCandidates >= 1 && t.NumCandidates <= 10 {
			cfg.NumCandidates = t.NumCandidates
		} else {
			logClamp("conversion.num_candidates", t.NumCandidates, cfg.NumCandidates)
		}
	}
	if t.NThreads != 0 {
		cfg.NThreads = t.NThreads
	}
	if t.Model != "" {
		cfg.Model = t.Model
	}
	if t.LightModel != "" {
		cfg.LightModel = t.LightModel
	}
	if t.UseContext != nil {
		cfg.UseContext = *t.UseContext
	}
	if t.MaxContextLength != 0 {
		cfg.MaxContextLength = t.MaxContextLength
	}
	if t.ShortInputThreshold != 0 {
		cfg.ShortInputThreshold = t.ShortInputThreshold
	}
	if t.BeamWidth != 0 {
		if t.BeamWidth >= 1 {
			cfg.BeamWidth = t.BeamWidth
		} else {
			logClamp("conversion.beam_width", t.BeamWidth, cfg.BeamWidth)
		}
	}
	if t.MaxLatencyMs != 0 {
		if t.MaxLatencyMs >= 0 {
			cfg.MaxLatencyMs = uint64(t.MaxLatencyMs)
		} else {
			logClamp("conversion.max_latency_ms", t.MaxLatencyMs, cfg.MaxLatencyMs)
		}
	}
	if t.DictPath != "" {
		cfg.DictPath = t.DictPath
	}
}

func applyLearning(cfg *engine.Config, t learningTable) {
	if t.Enabled != nil {
		cfg.LearningEnabled = *t.Enabled
	}
	if t.MaxEntries != 0 {
		if t.MaxEntries > 0 {
			cfg.LearningMaxEntries = t.MaxEntries
		} else {
			logClamp("learning.max_entries", t.MaxEntries, cfg.LearningMaxEntries)
		}
	}
}

func parseMode(s string) (strategy.Mode, bool) {
	switch s {
	case "adaptive":
		return strategy.Adaptive, true
	case "light":
		return strategy.Light, true
	case "main":
		return strategy.Main, true
	default:
		return strategy.Adaptive, false
	}
}

func logClamp(field string, got, defaultVal any) {
	slog.Warn("config value out of range, using default",
		"err", &Error{Field: field, Err: fmt.Errorf("value %v out of range", got)},
		"default", defaultVal)
}

// DefaultConfigPath returns ~/.config/<appName>/config.toml, the
// conventional TOML location this module expects the host to pass to
// Load, left unresolved (not read) if the caller wants a different
// path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LearningPath returns the persisted learning-cache TSV path from
// spec.md §6: ~/.local/share/<appName>/learning.tsv.
func LearningPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName, "learning.tsv"), nil
}

// EnsureLearningDir creates the directory LearningPath's file lives in,
// so the first SaveLearning call doesn't fail on ENOENT.
func EnsureLearningDir() error {
	path, err := LearningPath()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// NewLearningCache builds a learning.Cache sized per cfg, loading an
// existing TSV at path if present. A missing file starts empty, per
// spec.md §7's graceful-degradation policy for LearningError.
func NewLearningCache(cfg engine.Config, path string) (*learning.Cache, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return learning.New(cfg.LearningMaxEntries), nil
		}
		return learning.New(cfg.LearningMaxEntries), err
	}
	cache, err := learning.Load(path, cfg.LearningMaxEntries)
	if err != nil {
		slog.Error("loading learning cache, starting empty", "path", path, "err", err)
		return learning.New(cfg.LearningMaxEntries), nil
	}
	return cache, nil
}
