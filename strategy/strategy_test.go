package strategy

import (
	"testing"

	"github.com/karukan/engine/kanji"
)

func TestLightModeAlwaysLight(t *testing.T) {
	a := NewAdaptive(Config{Mode: Light, BeamWidth: 5}, true)
	d := a.Decide(2, 5)
	if d.Backend != BackendLight || d.BeamWidth != 1 {
		t.Errorf("Decide = %+v, want light backend, beam_width=1", d)
	}
}

func TestMainModeAlwaysMainNoBeamSearch(t *testing.T) {
	a := NewAdaptive(Config{Mode: Main, BeamWidth: 5}, true)
	d := a.Decide(2, 1)
	if d.Backend != BackendMain || d.BeamWidth != 1 {
		t.Errorf("Decide = %+v, want main backend, beam_width=1 (auto-suggest)", d)
	}
}

func TestAdaptiveShortInputUsesMainWithBeam(t *testing.T) {
	a := NewAdaptive(Config{Mode: Adaptive, ShortInputThreshold: 10, BeamWidth: 3}, true)
	d := a.Decide(5, 3)
	if d.Backend != BackendMain || d.BeamWidth != 3 {
		t.Errorf("Decide(5 tokens) = %+v, want main backend beam_width=3", d)
	}
}

func TestAdaptiveLongInputUsesLight(t *testing.T) {
	a := NewAdaptive(Config{Mode: Adaptive, ShortInputThreshold: 10, BeamWidth: 3}, true)
	d := a.Decide(20, 3)
	if d.Backend != BackendLight {
		t.Errorf("Decide(20 tokens) = %+v, want light backend", d)
	}
}

func TestAdaptiveWithoutLightBackendAlwaysMain(t *testing.T) {
	a := NewAdaptive(Config{Mode: Adaptive, ShortInputThreshold: 5, BeamWidth: 3}, false)
	d := a.Decide(50, 3)
	if d.Backend != BackendMain {
		t.Errorf("Decide with no light backend = %+v, want main", d)
	}
}

// TestAdaptiveFallback implements spec.md §8's adaptive-fallback
// property: a main-backend call that records latency above the
// budget forces the very next adaptive call to the light backend.
func TestAdaptiveFallback(t *testing.T) {
	a := NewAdaptive(Config{Mode: Adaptive, ShortInputThreshold: 10, BeamWidth: 3, MaxLatencyMs: 50}, true)

	first := a.Decide(3, 3) // short input, main
	if first.Backend != BackendMain {
		t.Fatalf("first call = %+v, want main", first)
	}
	a.RecordLatency(BackendMain, 80)

	second := a.Decide(3, 3) // still short input, but downgraded
	if second.Backend != BackendLight {
		t.Errorf("second call = %+v, want light (latency budget exceeded)", second)
	}
}

// TestAdaptiveRecoversAfterOneSuccess implements the spec's concrete
// scenario 6: main latency 80ms on call k forces light on call k+1;
// if light returns under budget, call k+2 returns to main.
func TestAdaptiveRecoversAfterOneSuccess(t *testing.T) {
	a := NewAdaptive(Config{Mode: Adaptive, ShortInputThreshold: 10, BeamWidth: 3, MaxLatencyMs: 50}, true)

	callK := a.Decide(3, 3)
	if callK.Backend != BackendMain {
		t.Fatalf("call k = %+v, want main", callK)
	}
	a.RecordLatency(BackendMain, 80)

	callK1 := a.Decide(3, 3)
	if callK1.Backend != BackendLight {
		t.Fatalf("call k+1 = %+v, want light", callK1)
	}
	// Light call under budget: latency reporting on a light call is a
	// no-op, but the one-shot downgrade has already been consumed.
	a.RecordLatency(BackendLight, 10)

	callK2 := a.Decide(3, 3)
	if callK2.Backend != BackendMain {
		t.Errorf("call k+2 = %+v, want main (recovered)", callK2)
	}
}

func TestRecordLatencyIgnoredOutsideAdaptiveMode(t *testing.T) {
	a := NewAdaptive(Config{Mode: Main, MaxLatencyMs: 10}, true)
	a.RecordLatency(BackendMain, 1000)
	d := a.Decide(3, 3)
	if d.Backend != BackendMain {
		t.Errorf("Main mode should be unaffected by RecordLatency, got %+v", d)
	}
}

func TestRecordLatencyIgnoredWhenBudgetDisabled(t *testing.T) {
	a := NewAdaptive(Config{Mode: Adaptive, ShortInputThreshold: 10, MaxLatencyMs: 0}, true)
	a.RecordLatency(BackendMain, 100000)
	d := a.Decide(3, 3)
	if d.Backend != BackendMain {
		t.Errorf("MaxLatencyMs=0 should disable downgrade, got %+v", d)
	}
}

func TestCountTokensPrefersBackendTokenizer(t *testing.T) {
	b := kanji.NewFakeBackend("fake")
	n := CountTokens(b, "アイウエオ")
	if n <= 0 {
		t.Errorf("CountTokens = %d, want > 0", n)
	}
}

func TestCountTokensFallsBackWithoutBackend(t *testing.T) {
	n := CountTokens(nil, "アイウエオ")
	if n != kanji.EstimateTokens("アイウエオ") {
		t.Errorf("CountTokens(nil, ...) = %d, want %d", n, kanji.EstimateTokens("アイウエオ"))
	}
}
