// Package engine implements the IME state machine (component H): the
// Empty/Composing/Conversion states and the orthogonal Hiragana/
// Katakana/Alphanumeric mode dimension, wiring the romaji FSM, input
// buffer, dictionaries, learning cache, neural backends, candidate
// merger, and adaptive strategy behind one process_key entry point.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/karukan/engine/buffer"
	"github.com/karukan/engine/candidate"
	"github.com/karukan/engine/dict"
	"github.com/karukan/engine/kana"
	"github.com/karukan/engine/kanji"
	"github.com/karukan/engine/learning"
	"github.com/karukan/engine/logutil"
	"github.com/karukan/engine/romaji"
	"github.com/karukan/engine/strategy"
)

// State is one of the three composition states.
type State int

const (
	StateEmpty State = iota
	StateComposing
	StateConversion
)

// Mode is the input-mode dimension orthogonal to State. LiveConversion
// is tracked separately (Engine.liveConversion) since it toggles
// independently of which of these three a session is in.
type Mode int

const (
	ModeHiragana Mode = iota
	ModeKatakana
	ModeAlphanumeric
)

// Output is the snapshot of the four host-visible slots — commit,
// preedit+caret, aux, candidates — produced by one ProcessKey call. A
// Has* flag false means that slot was not touched this call; the host
// mirrors the stable C ABI's has_*/get_* accessor pairs over this.
type Output struct {
	Consumed bool

	HasCommit bool
	Commit    string

	HasPreedit bool
	Preedit    string
	Caret      int

	HasAux bool
	Aux    string

	HasCandidates        bool
	ShouldHideCandidates bool
	Candidates           []candidate.Candidate
	CandidateCursor      int
}

// Engine is the root entity: one instance per input focus context. It
// exclusively owns its composition state; dictionaries, backends, and
// the learning cache are injected read-only resources that may outlive
// or be shared across engine instances.
type Engine struct {
	// ID identifies this engine instance in log correlation; the host
	// may run several concurrently (one per input focus context).
	ID string

	state          State
	mode           Mode
	liveConversion bool

	buf    *buffer.InputBuffer
	romaji *romaji.Converter

	candList    *candidate.List
	candReading string

	config         Config
	strategyEngine *strategy.AdaptiveStrategy
	mainBackend    kanji.Backend
	lightBackend   kanji.Backend

	systemDict *dict.Dictionary
	userDict   *dict.Dictionary

	learning     *learning.Cache
	learningPath string

	surroundingText string

	lastConversionMs  uint64
	lastProcessKeyMs  uint64
}

// New builds an engine with no backends, dictionaries, or learning
// cache attached; SetBackends/SetDictionaries/SetLearning wire those in
// once the host has resolved them, keeping engine construction cheap
// and the dependencies injected rather than process globals.
func New(config Config) *Engine {
	e := &Engine{ID: uuid.NewString(), config: config}
	e.strategyEngine = strategy.NewAdaptive(strategy.Config{
		Mode:                config.Strategy,
		ShortInputThreshold: config.ShortInputThreshold,
		BeamWidth:           config.BeamWidth,
		MaxLatencyMs:        config.MaxLatencyMs,
	}, false)
	return e
}

// SetBackends attaches the main and (optionally nil) light neural
// backends and rebuilds the adaptive strategy around their presence.
func (e *Engine) SetBackends(main, light kanji.Backend) {
	e.mainBackend = main
	e.lightBackend = light
	e.strategyEngine = strategy.NewAdaptive(strategy.Config{
		Mode:                e.config.Strategy,
		ShortInputThreshold: e.config.ShortInputThreshold,
		BeamWidth:           e.config.BeamWidth,
		MaxLatencyMs:        e.config.MaxLatencyMs,
	}, light != nil)
}

// SetDictionaries attaches the system and user dictionaries. Either may
// be nil; a nil dictionary behaves as empty.
func (e *Engine) SetDictionaries(system, user *dict.Dictionary) {
	e.systemDict = system
	e.userDict = user
}

// SetLearning attaches the learning cache and the path Deactivate
// should persist it to.
func (e *Engine) SetLearning(cache *learning.Cache, path string) {
	e.learning = cache
	e.learningPath = path
}

// State/Mode/timing accessors, mirrored over the C ABI boundary.

func (e *Engine) State() State              { return e.state }
func (e *Engine) Mode() Mode                { return e.mode }
func (e *Engine) LiveConversion() bool      { return e.liveConversion }
func (e *Engine) IsEmpty() bool             { return e.state == StateEmpty }
func (e *Engine) LastConversionMs() uint64  { return e.lastConversionMs }
func (e *Engine) LastProcessKeyMs() uint64  { return e.lastProcessKeyMs }

// SetSurroundingText records the text immediately before the cursor, as
// reported by the host's text-input protocol. It is truncated to
// max_context_length and fed to the backend as left context.
func (e *Engine) SetSurroundingText(beforeCursor string) {
	e.surroundingText = beforeCursor
}

// Reset discards any in-progress composition or conversion and returns
// to Empty/Hiragana, without touching learning or dictionaries.
func (e *Engine) Reset() {
	e.state = StateEmpty
	e.mode = ModeHiragana
	e.liveConversion = false
	e.buf = nil
	e.romaji = nil
	e.candList = nil
	e.candReading = ""
}

// Deactivate commits any pending buffer or candidate, flushes the
// learning cache if dirty, and returns to Empty. The host calls this
// when the input context loses focus.
func (e *Engine) Deactivate() Output {
	var out Output
	switch e.state {
	case StateComposing:
		out = e.commitComposing()
	case StateConversion:
		out = e.commitConversion()
	default:
		out = emptyOutput(true)
	}
	if e.learning != nil && e.config.LearningEnabled {
		if err := e.SaveLearning(e.learningPath); err != nil {
			slog.Error("save learning cache on deactivate", "engine", e.ID, "path", e.learningPath, "err", err)
		}
	}
	e.state = StateEmpty
	return out
}

// SaveLearning persists the learning cache to path, a no-op if no cache
// is attached.
func (e *Engine) SaveLearning(path string) error {
	if e.learning == nil {
		return nil
	}
	return e.learning.Save(path)
}

// ProcessKey is the engine's single entry point: it dispatches global
// mode toggles first, then routes to the current state's handler, and
// captures last_process_key_ms around the whole call.
func (e *Engine) ProcessKey(key Key) Output {
	logutil.Trace("process_key", "engine", e.ID, "state", e.state, "special", key.Special, "rune", key.Rune)
	start := time.Now()
	out := e.dispatch(key)
	e.lastProcessKeyMs = uint64(time.Since(start).Milliseconds())
	return out
}

func (e *Engine) dispatch(key Key) Output {
	switch {
	case key.Mods.Control && key.Mods.Shift && !key.Mods.Alt && (key.Rune == 'l' || key.Rune == 'L'):
		e.liveConversion = !e.liveConversion
		return Output{Consumed: true}

	case key.Special == KeySuperR:
		e.mode = ModeHiragana
		return Output{Consumed: true}

	case e.state == StateEmpty && e.mode == ModeHiragana && key.Mods.Shift &&
		!key.Mods.Control && !key.Mods.Alt && isASCIILetter(key.Rune):
		e.mode = ModeAlphanumeric
		return e.startInput(unicode.ToUpper(key.Rune))
	}

	switch e.state {
	case StateEmpty:
		return e.processKeyEmpty(key)
	case StateComposing:
		return e.processKeyComposing(key)
	case StateConversion:
		return e.processKeyConversion(key)
	default:
		return Output{Consumed: false}
	}
}

// emptyOutput is the baseline for any transition that clears the
// preedit, aux text, and candidate panel, optionally also delivering a
// commit.
func emptyOutput(consumed bool) Output {
	return Output{
		Consumed:              consumed,
		HasPreedit:            true,
		Preedit:               "",
		Caret:                 0,
		HasCandidates:         true,
		ShouldHideCandidates:  true,
		HasAux:                true,
		Aux:                   "",
	}
}

func (e *Engine) recordLearning(reading, surface string) {
	if e.config.LearningEnabled && e.learning != nil && reading != "" {
		e.learning.Record(reading, surface)
	}
}

func (e *Engine) learningOrNil() *learning.Cache {
	if e.config.LearningEnabled {
		return e.learning
	}
	return nil
}

func truncateContext(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[len(r)-maxChars:])
}

// buildCandidates runs the adaptive strategy to pick a backend, calls
// it, and folds the result through the candidate merger. A nil or
// failing backend degrades to dictionary/fallback candidates only.
func (e *Engine) buildCandidates(reading string, numCandidates int) []candidate.Candidate {
	katakana := kana.ToKatakana(reading)

	var modelCandidates []string
	tokenCount := strategy.CountTokens(e.mainBackend, katakana)
	decision := e.strategyEngine.Decide(tokenCount, numCandidates)

	backend := e.mainBackend
	if decision.Backend == strategy.BackendLight {
		backend = e.lightBackend
	}

	if backend != nil {
		ctx := ""
		if e.config.UseContext {
			ctx = truncateContext(e.surroundingText, e.config.MaxContextLength)
		}
		req := kanji.Request{
			Katakana:      kana.NormalizeNFKC(katakana),
			Context:       kana.NormalizeNFKC(ctx),
			BeamWidth:     decision.BeamWidth,
			NumCandidates: numCandidates,
			NThreads:      e.config.NThreads,
		}
		start := time.Now()
		results, err := backend.Convert(context.Background(), req)
		elapsed := uint64(time.Since(start).Milliseconds())
		e.lastConversionMs = elapsed
		e.strategyEngine.RecordLatency(decision.Backend, elapsed)
		if err != nil {
			slog.Warn("backend call failed, degrading to dictionary/fallback candidates",
				"engine", e.ID, "backend", backend.Name(), "err", err)
		} else {
			for _, r := range results {
				modelCandidates = append(modelCandidates, kanji.CleanModelOutput(r.Text))
			}
		}
	}

	return candidate.Merge(candidate.MergeInput{
		Reading:         reading,
		Learning:        e.learningOrNil(),
		UserDict:        e.userDict,
		ModelCandidates: modelCandidates,
		SystemDict:      e.systemDict,
		NumCandidates:   numCandidates,
	})
}

func (e *Engine) formatAux() string {
	total := e.candList.TotalPages()
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("%s (%d/%d)", e.candReading, e.candList.CurrentPage()+1, total)
}
