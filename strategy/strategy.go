// Package strategy implements the adaptive backend-selection policy
// (component I): which of the main or light neural backend a
// conversion call should use, and with what beam width, based on
// input length, configured mode, and recent latency history.
package strategy

import "github.com/karukan/engine/kanji"

// Mode selects the overall strategy. Adaptive is the default.
type Mode int

const (
	Adaptive Mode = iota
	Light
	Main
)

// Backend identifies which physical backend a Decision targets.
type Backend int

const (
	BackendMain Backend = iota
	BackendLight
)

func (b Backend) String() string {
	if b == BackendLight {
		return "light"
	}
	return "main"
}

// Decision is the outcome of one Decide call.
type Decision struct {
	Backend   Backend
	BeamWidth int
}

// Config holds the tunable knobs from EngineConfig relevant to
// backend selection.
type Config struct {
	Mode                Mode
	ShortInputThreshold int
	BeamWidth           int
	// MaxLatencyMs is the adaptive latency budget in milliseconds;
	// 0 disables the latency-triggered downgrade.
	MaxLatencyMs uint64
}

// AdaptiveStrategy tracks the one piece of state the strategy needs across
// calls: whether the previous main-backend call missed its latency
// budget, which forces exactly the next call to the light backend.
type AdaptiveStrategy struct {
	config          Config
	hasLightBackend bool
	downgraded      bool
}

// NewAdaptive builds a strategy for one engine instance. hasLightBackend
// reflects whether a light backend is configured at all — without one,
// adaptive and light modes degrade to always using the main backend.
func NewAdaptive(config Config, hasLightBackend bool) *AdaptiveStrategy {
	return &AdaptiveStrategy{config: config, hasLightBackend: hasLightBackend}
}

// Decide chooses a backend and beam width for a conversion call whose
// katakana input is estimated at tokenCount tokens. numCandidates
// distinguishes an explicit conversion request (>1, beam search
// wanted) from an auto-suggest probe (1, greedy is enough). Light and
// Main modes always decide on beam width 1.
func (a *AdaptiveStrategy) Decide(tokenCount, numCandidates int) Decision {
	beamWidth := 1
	if numCandidates > 1 {
		beamWidth = a.config.BeamWidth
	}

	switch a.config.Mode {
	case Light:
		return Decision{Backend: BackendLight, BeamWidth: 1}
	case Main:
		return Decision{Backend: BackendMain, BeamWidth: 1}
	default: // Adaptive
		if !a.hasLightBackend {
			return Decision{Backend: BackendMain, BeamWidth: beamWidth}
		}
		if a.downgraded {
			// The downgrade covers exactly the next call; subsequent
			// calls re-evaluate normally.
			a.downgraded = false
			return Decision{Backend: BackendLight, BeamWidth: 1}
		}
		if tokenCount <= a.config.ShortInputThreshold {
			return Decision{Backend: BackendMain, BeamWidth: beamWidth}
		}
		return Decision{Backend: BackendLight, BeamWidth: 1}
	}
}

// RecordLatency reports how long a completed call took. Only a
// main-backend call in Adaptive mode that exceeded MaxLatencyMs
// arms the one-shot downgrade; a light-backend call's latency says
// nothing about the main backend's speed and is ignored.
func (a *AdaptiveStrategy) RecordLatency(backend Backend, latencyMs uint64) {
	if a.config.Mode != Adaptive || a.config.MaxLatencyMs == 0 || !a.hasLightBackend {
		return
	}
	if backend != BackendMain {
		return
	}
	a.downgraded = latencyMs > a.config.MaxLatencyMs
}

// CountTokens estimates how many tokens katakana will occupy in a
// backend's context window, preferring the backend's own tokenizer
// and falling back to kanji.EstimateTokens when it errors or is
// unavailable.
func CountTokens(backend kanji.Backend, katakana string) int {
	if backend != nil {
		if n, err := backend.CountTokens(katakana); err == nil {
			return n
		}
	}
	return kanji.EstimateTokens(katakana)
}
