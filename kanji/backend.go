// Package kanji defines the contract between the IME engine and a
// kana-to-kanji neural backend, plus the jinen prompt layout the
// engine builds for it. The backend itself — model loading, tokenizing,
// beam search — is out of scope here: it is a black box the engine
// calls through the Backend interface, injected by the host process.
package kanji

import (
	"context"
	"strings"
)

// The three jinen prompt markers are fixed Private-Use-Area scalars.
// They must survive NFKC normalization unchanged, since the model's
// tokenizer treats them as reserved single tokens.
const (
	ctxMarker = "" // ⟨CTX⟩
	inMarker  = "" // ⟨IN⟩
	outMarker = "" // ⟨OUT⟩
)

// BuildJinenPrompt lays out a prompt as ⟨CTX⟩context⟨IN⟩katakana⟨OUT⟩.
// katakana must already be transliterated from hiragana; context is
// the left-context slice the caller has already truncated to
// max_context_length.
func BuildJinenPrompt(katakana, context string) string {
	var b strings.Builder
	b.Grow(len(ctxMarker) + len(context) + len(inMarker) + len(katakana) + len(outMarker))
	b.WriteString(ctxMarker)
	b.WriteString(context)
	b.WriteString(inMarker)
	b.WriteString(katakana)
	b.WriteString(outMarker)
	return b.String()
}

// CleanModelOutput trims incidental whitespace a decoded string may
// carry. Special tokens are expected to already be stripped at decode
// time (skip_special_tokens), not here.
func CleanModelOutput(text string) string {
	return strings.TrimSpace(text)
}

// Result is one ranked decode from a backend call: a candidate string
// and its cumulative log-probability (higher is better; not comparable
// across backends with different tokenizers).
type Result struct {
	Text       string
	LogProbSum float64
}

// Request bundles the parameters a Backend.Convert call needs. Input
// is always katakana; the engine transliterates hiragana readings
// before calling.
type Request struct {
	Katakana      string
	Context       string
	BeamWidth     int
	NumCandidates int
	NThreads      int
}

// Backend is the contract every kana-to-kanji model implementation —
// main or light — satisfies. A Backend is a pure function of its
// Request: no hidden state affects its output beyond the loaded
// weights, and it never mutates engine state itself.
//
// Convert returns distinct decoded strings ordered best-first. A
// failed call is surfaced as an error; the caller treats that as zero
// candidates rather than aborting the merge.
type Backend interface {
	Convert(ctx context.Context, req Request) ([]Result, error)

	// Name is the backend's display name, shown to the host for
	// diagnostics (e.g. "jinen-v1-small-q5").
	Name() string

	// CountTokens estimates the token length of a katakana string
	// using the backend's own tokenizer, when available.
	CountTokens(katakana string) (int, error)
}

// EstimateTokens is the fallback token-count estimator used when a
// Backend does not expose (or fails) CountTokens: UTF-8 byte length of
// the katakana input divided by 3, a conservative lower bound for
// multi-byte kana under typical BPE tokenizers.
func EstimateTokens(katakana string) int {
	n := len(katakana) / 3
	if n < 1 && katakana != "" {
		n = 1
	}
	return n
}

// ErrorKind classifies a backend failure per the taxonomy the engine's
// merger and adaptive strategy need to distinguish: a timeout is worth
// downgrading to the light backend on; a missing model is not.
type ErrorKind int

const (
	ErrorUnknown ErrorKind = iota
	ErrorModelNotLoaded
	ErrorDecodeTimeout
	ErrorInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorModelNotLoaded:
		return "model not loaded"
	case ErrorDecodeTimeout:
		return "decode timeout"
	case ErrorInternal:
		return "internal error"
	default:
		return "unknown backend error"
	}
}

// Error is the structured error a Backend returns on failure. It
// implements error and wraps the underlying cause, if any.
type Error struct {
	Kind  ErrorKind
	Model string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "kanji: " + e.Model + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "kanji: " + e.Model + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
