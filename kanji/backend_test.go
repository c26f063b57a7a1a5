package kanji

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBuildJinenPrompt(t *testing.T) {
	got := BuildJinenPrompt("カンジ", "コンテキスト")
	want := ctxMarker + "コンテキスト" + inMarker + "カンジ" + outMarker
	if got != want {
		t.Errorf("BuildJinenPrompt = %q, want %q", got, want)
	}
}

func TestBuildJinenPromptEmptyContext(t *testing.T) {
	got := BuildJinenPrompt("カンジ", "")
	want := ctxMarker + inMarker + "カンジ" + outMarker
	if got != want {
		t.Errorf("BuildJinenPrompt with empty context = %q, want %q", got, want)
	}
}

func TestCleanModelOutput(t *testing.T) {
	if got := CleanModelOutput("  漢字  \n"); got != "漢字" {
		t.Errorf("CleanModelOutput = %q, want 漢字", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if n := EstimateTokens(""); n != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", n)
	}
	if n := EstimateTokens("カ"); n < 1 {
		t.Errorf("EstimateTokens(カ) = %d, want >= 1", n)
	}
	if n := EstimateTokens("カンジヘンカン"); n != len("カンジヘンカン")/3 {
		t.Errorf("EstimateTokens = %d, want %d", n, len("カンジヘンカン")/3)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: ErrorDecodeTimeout, Model: "jinen-v1-small-q5", Err: errors.New("deadline exceeded")}
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned empty string")
	}
	if err.Unwrap() != err.Err {
		t.Errorf("Unwrap did not return the wrapped error")
	}
}

func TestFakeBackendDefaultFallsBackToInput(t *testing.T) {
	b := NewFakeBackend("fake-main")
	results, err := b.Convert(context.Background(), Request{Katakana: "カンジ", NumCandidates: 1})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(results) != 1 || results[0].Text != "カンジ" {
		t.Errorf("results = %+v, want fallback to input", results)
	}
}

func TestFakeBackendConfiguredCandidates(t *testing.T) {
	b := NewFakeBackend("fake-main")
	b.SetCandidates("カンジ", []Result{
		{Text: "感じ", LogProbSum: -1.0},
		{Text: "漢字", LogProbSum: -0.5},
	})
	results, err := b.Convert(context.Background(), Request{Katakana: "カンジ", NumCandidates: 2})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(results) != 2 || results[0].Text != "漢字" {
		t.Errorf("results = %+v, want 漢字 first (higher log-prob)", results)
	}
}

func TestFakeBackendError(t *testing.T) {
	b := NewFakeBackend("fake-main")
	sentinel := errors.New("boom")
	b.SetError(sentinel)
	_, err := b.Convert(context.Background(), Request{Katakana: "カンジ"})
	if !errors.Is(err, sentinel) {
		t.Errorf("Convert error = %v, want %v", err, sentinel)
	}
}

func TestFakeBackendDelayRespectsContext(t *testing.T) {
	b := NewFakeBackend("fake-main")
	b.SetDelay(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := b.Convert(ctx, Request{Katakana: "カンジ"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Convert error = %v, want context.DeadlineExceeded", err)
	}
}

func TestFakeBackendTracksCalls(t *testing.T) {
	b := NewFakeBackend("fake-main")
	b.Convert(context.Background(), Request{Katakana: "あ"})
	b.Convert(context.Background(), Request{Katakana: "い", NumCandidates: 3})
	if b.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", b.Calls())
	}
	if b.LastRequest().Katakana != "い" {
		t.Errorf("LastRequest().Katakana = %q, want い", b.LastRequest().Katakana)
	}
}
