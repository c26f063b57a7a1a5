package kanji

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// FakeBackend is a scriptable Backend test double: it looks up a
// fixed reading in a candidate table rather than running inference,
// and can be told to fail or to sleep before returning so callers can
// exercise timeout and latency-budget behavior deterministically.
type FakeBackend struct {
	mu sync.Mutex

	name    string
	table   map[string][]Result
	err     error
	delay   time.Duration
	calls   int
	lastReq Request
}

// NewFakeBackend returns a FakeBackend named name with an empty
// candidate table; every call falls back to the reading itself unless
// SetCandidates configures a mapping.
func NewFakeBackend(name string) *FakeBackend {
	return &FakeBackend{name: name, table: make(map[string][]Result)}
}

// SetCandidates registers the ranked results a subsequent Convert call
// with the given katakana input should return.
func (f *FakeBackend) SetCandidates(katakana string, results []Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table[katakana] = results
}

// SetError makes every subsequent Convert call fail with err.
func (f *FakeBackend) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// SetDelay makes Convert block for d before returning, honoring ctx
// cancellation in the meantime.
func (f *FakeBackend) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Calls reports how many times Convert has been invoked.
func (f *FakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the Request from the most recent Convert call.
func (f *FakeBackend) LastRequest() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func (f *FakeBackend) Convert(ctx context.Context, req Request) ([]Result, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	err := f.err
	delay := f.delay
	results, ok := f.table[req.Katakana]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return []Result{{Text: req.Katakana, LogProbSum: 0}}, nil
	}

	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LogProbSum > sorted[j].LogProbSum })

	n := req.NumCandidates
	if n <= 0 || n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n], nil
}

func (f *FakeBackend) Name() string {
	return f.name
}

func (f *FakeBackend) CountTokens(katakana string) (int, error) {
	return len(strings.Split(katakana, "")), nil
}
