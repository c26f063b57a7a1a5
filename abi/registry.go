// Package abi is the stable host boundary (component J): an opaque
// handle over one engine.Engine plus the operation families spec.md
// §6 names — lifecycle, input, query slots, timing, durable state.
// This file is the plain-Go core; cabi.go layers the cgo //export
// surface on top of it under the cgo build tag, so the core itself
// stays testable without a C toolchain.
package abi

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/karukan/engine/config"
	"github.com/karukan/engine/dict"
	"github.com/karukan/engine/engine"
)

// Handle identifies one live Engine across the boundary. The zero
// value never names a real engine.
type Handle uint64

// ErrorKind classifies an FfiError per spec.md §7.
type ErrorKind int

const (
	ErrorUnknownHandle ErrorKind = iota
	ErrorInvalidUTF8
)

func (k ErrorKind) String() string {
	if k == ErrorInvalidUTF8 {
		return "invalid utf-8"
	}
	return "unknown handle"
}

// Error is the structured FfiError the boundary reports for a bad
// handle or malformed host input. The engine itself never panics on
// these — invalid input is a no-op, not a crash.
type Error struct {
	Kind   ErrorKind
	Handle Handle
}

func (e *Error) Error() string {
	return fmt.Sprintf("abi: %s (handle %d)", e.Kind, e.Handle)
}

type entry struct {
	mu     sync.Mutex
	engine *engine.Engine
	last   engine.Output
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Handle]*entry)
	nextHandle uint64
)

// New allocates a fresh engine with default tuning and returns its
// handle. Call Init next to load configuration, dictionaries, and the
// learning cache before sending any keys.
func New() Handle {
	h := Handle(atomic.AddUint64(&nextHandle, 1))
	registryMu.Lock()
	registry[h] = &entry{engine: engine.New(engine.DefaultConfig())}
	registryMu.Unlock()
	return h
}

// Free releases h. Further calls against a freed handle return an
// *Error of kind ErrorUnknownHandle rather than panicking.
func Free(h Handle) {
	registryMu.Lock()
	delete(registry, h)
	registryMu.Unlock()
}

func lookup(h Handle) *entry {
	registryMu.RLock()
	e := registry[h]
	registryMu.RUnlock()
	return e
}

// Init loads configPath (TOML, per spec.md §6; "" uses defaults),
// attaches the system dictionary at the resolved dict_path if any,
// and wires up the learning cache at its conventional path. It never
// fails the handle outright — a bad config or missing dictionary
// degrades to defaults/empty per spec.md §7, matching Init's init()
// → non-zero-on-failure contract with a recoverable inner state.
func Init(h Handle, configPath string) error {
	ent := lookup(h)
	if ent == nil {
		return &Error{Kind: ErrorUnknownHandle, Handle: h}
	}

	cfg, _ := config.Load(configPath)

	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.engine = engine.New(cfg)

	if cfg.DictPath != "" {
		if d, err := dict.LoadAuto(cfg.DictPath); err == nil {
			ent.engine.SetDictionaries(d, nil)
		}
	}

	if learningPath, err := config.LearningPath(); err == nil {
		_ = config.EnsureLearningDir()
		if cache, err := config.NewLearningCache(cfg, learningPath); err == nil {
			ent.engine.SetLearning(cache, learningPath)
		}
	}

	return nil
}

// ProcessKey feeds one decoded key event to the engine and stores its
// Output as the snapshot the query-slot functions read until the next
// call, per spec.md §6's "valid until the next process_key" contract.
func ProcessKey(h Handle, key engine.Key) (bool, error) {
	ent := lookup(h)
	if ent == nil {
		return false, &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	out := ent.engine.ProcessKey(key)
	ent.last = out
	return out.Consumed, nil
}

// Reset discards in-progress composition and clears the query-slot
// snapshot.
func Reset(h Handle) error {
	ent := lookup(h)
	if ent == nil {
		return &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.engine.Reset()
	ent.last = engine.Output{}
	return nil
}

// SetSurroundingText records the host's left-context text for
// context-sensitive conversion. Text that is not valid UTF-8 is
// rejected with an ErrorInvalidUTF8 *Error and the previous snapshot
// is kept.
func SetSurroundingText(h Handle, beforeCursor string) error {
	ent := lookup(h)
	if ent == nil {
		return &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	if !utf8.ValidString(beforeCursor) {
		return &Error{Kind: ErrorInvalidUTF8, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.engine.SetSurroundingText(beforeCursor)
	return nil
}

// Commit flushes any pending composition or conversion, as though the
// input context had lost and regained focus, and stores the resulting
// Output as the new query-slot snapshot.
func Commit(h Handle) error {
	ent := lookup(h)
	if ent == nil {
		return &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.last = ent.engine.Deactivate()
	return nil
}

// IsEmpty reports whether the engine has no pending composition.
func IsEmpty(h Handle) (bool, error) {
	ent := lookup(h)
	if ent == nil {
		return true, &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.engine.IsEmpty(), nil
}

// LastConversionMs and LastProcessKeyMs mirror the engine's timing
// accessors for the host's diagnostics UI.

func LastConversionMs(h Handle) (uint64, error) {
	ent := lookup(h)
	if ent == nil {
		return 0, &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.engine.LastConversionMs(), nil
}

func LastProcessKeyMs(h Handle) (uint64, error) {
	ent := lookup(h)
	if ent == nil {
		return 0, &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.engine.LastProcessKeyMs(), nil
}

// SaveLearning persists the learning cache to path.
func SaveLearning(h Handle, path string) error {
	ent := lookup(h)
	if ent == nil {
		return &Error{Kind: ErrorUnknownHandle, Handle: h}
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.engine.SaveLearning(path)
}

// The query-slot family below reads the handle's stored Output
// snapshot rather than the engine directly. They hold the handle's
// mutex only to copy that snapshot, but a call made while a ProcessKey,
// Commit or Reset on the same handle is running waits for it to finish.

func snapshot(h Handle) (engine.Output, bool) {
	ent := lookup(h)
	if ent == nil {
		return engine.Output{}, false
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return ent.last, true
}

func HasPreedit(h Handle) bool {
	out, ok := snapshot(h)
	return ok && out.HasPreedit
}

func GetPreedit(h Handle) string {
	out, _ := snapshot(h)
	return out.Preedit
}

func PreeditLen(h Handle) int {
	return len([]rune(GetPreedit(h)))
}

func Caret(h Handle) int {
	out, _ := snapshot(h)
	return out.Caret
}

func HasCommit(h Handle) bool {
	out, ok := snapshot(h)
	return ok && out.HasCommit
}

func GetCommit(h Handle) string {
	out, _ := snapshot(h)
	return out.Commit
}

func CommitLen(h Handle) int {
	return len([]rune(GetCommit(h)))
}

func HasCandidates(h Handle) bool {
	out, ok := snapshot(h)
	return ok && out.HasCandidates
}

func ShouldHideCandidates(h Handle) bool {
	out, _ := snapshot(h)
	return out.ShouldHideCandidates
}

func CandidateCount(h Handle) int {
	out, _ := snapshot(h)
	return len(out.Candidates)
}

func GetCandidate(h Handle, i int) string {
	out, _ := snapshot(h)
	if i < 0 || i >= len(out.Candidates) {
		return ""
	}
	return out.Candidates[i].Surface
}

func GetAnnotation(h Handle, i int) string {
	out, _ := snapshot(h)
	if i < 0 || i >= len(out.Candidates) {
		return ""
	}
	return out.Candidates[i].Source.Annotation()
}

func CandidateCursor(h Handle) int {
	out, _ := snapshot(h)
	return out.CandidateCursor
}

func HasAux(h Handle) bool {
	out, ok := snapshot(h)
	return ok && out.HasAux
}

func GetAux(h Handle) string {
	out, _ := snapshot(h)
	return out.Aux
}

func AuxLen(h Handle) int {
	return len([]rune(GetAux(h)))
}
