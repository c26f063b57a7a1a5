package engine

import (
	"github.com/karukan/engine/learning"
	"github.com/karukan/engine/strategy"
)

// Config is the engine's tunable surface, sourced from the host's TOML
// configuration file's [conversion] and [learning] tables.
type Config struct {
	Strategy            strategy.Mode
	NumCandidates       int
	NThreads            int
	Model               string
	LightModel          string
	UseContext          bool
	MaxContextLength    int
	ShortInputThreshold int
	BeamWidth           int
	// MaxLatencyMs is the adaptive downgrade budget; 0 disables it.
	MaxLatencyMs uint64
	DictPath     string

	LearningEnabled    bool
	LearningMaxEntries int
}

// DefaultConfig returns the engine's out-of-the-box tuning, used when no
// configuration file is present.
func DefaultConfig() Config {
	return Config{
		Strategy:            strategy.Adaptive,
		NumCandidates:       5,
		NThreads:            0,
		UseContext:          true,
		MaxContextLength:    256,
		ShortInputThreshold: 10,
		BeamWidth:           3,
		MaxLatencyMs:        0,
		LearningEnabled:     true,
		LearningMaxEntries:  learning.DefaultMaxEntries,
	}
}
