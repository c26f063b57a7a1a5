package candidate

import (
	"golang.org/x/sync/errgroup"

	"github.com/karukan/engine/dict"
	"github.com/karukan/engine/kana"
	"github.com/karukan/engine/learning"
)

// MergeInput bundles everything one conversion request needs. Model
// candidates are supplied pre-computed (best first) rather than a
// Backend, since which backend to call and with what beam width is
// the adaptive strategy's decision, made before the merge — the
// merger itself never talks to a backend.
type MergeInput struct {
	Reading         string
	Learning        *learning.Cache
	UserDict        *dict.Dictionary
	ModelCandidates []string
	SystemDict      *dict.Dictionary

	// NumCandidates truncates the merged list; 0 means no truncation.
	NumCandidates int
}

// Merge produces the full, priority-ordered conversion candidate list
// for a reading: learning exact, user dictionary exact, model, system
// dictionary exact, then the hiragana/katakana fallback. Each surface
// appears at most once — the first source to produce it wins the slot.
//
// The three read-only lookups (learning, user dict, system dict) have
// no dependency on each other, so they fan out concurrently via
// errgroup; the ordering guarantee is preserved by applying their
// results to the output in the fixed priority order only after all of
// them have returned, never in whichever order they complete.
func Merge(in MergeInput) []Candidate {
	var (
		learningHits []learning.Scored
		userResult   dict.LookupResult
		userOK       bool
		systemResult dict.LookupResult
		systemOK     bool
	)

	var g errgroup.Group
	if in.Learning != nil {
		g.Go(func() error {
			learningHits = in.Learning.Lookup(in.Reading)
			return nil
		})
	}
	if in.UserDict != nil {
		g.Go(func() error {
			userResult, userOK = in.UserDict.ExactMatch(in.Reading)
			return nil
		})
	}
	if in.SystemDict != nil {
		g.Go(func() error {
			systemResult, systemOK = in.SystemDict.ExactMatch(in.Reading)
			return nil
		})
	}
	_ = g.Wait() // none of the fetches above can fail

	var out []Candidate
	seen := make(map[string]bool)
	add := func(surface string, source Source, score float64) {
		if surface == "" || seen[surface] {
			return
		}
		seen[surface] = true
		out = append(out, Candidate{Surface: surface, Reading: in.Reading, Source: source, Score: score})
	}

	for i, s := range learningHits {
		if i >= 3 {
			break
		}
		add(s.Surface, SourceLearning, s.Score)
	}

	if userOK {
		for _, c := range userResult.Candidates {
			add(c.Surface, SourceUser, float64(c.Score))
		}
	}

	for i, text := range in.ModelCandidates {
		add(text, SourceModel, -float64(i))
	}

	if systemOK {
		for _, c := range systemResult.Candidates {
			add(c.Surface, SourceSystem, float64(c.Score))
		}
	}

	add(in.Reading, SourceFallback, 0)
	add(kana.ToKatakana(in.Reading), SourceFallback, 0)

	if in.NumCandidates > 0 && len(out) > in.NumCandidates {
		out = out[:in.NumCandidates]
	}
	return out
}

// Suggest returns up to 3 learning-cache candidates whose stored
// reading has prefix as a prefix, for auto-suggest while composing.
// It never touches the user or system dictionaries or the model — the
// prediction surface is learning-only.
func Suggest(cache *learning.Cache, prefix string) []Candidate {
	if cache == nil || prefix == "" {
		return nil
	}
	results := cache.PrefixLookup(prefix)
	out := make([]Candidate, 0, 3)
	for i, r := range results {
		if i >= 3 {
			break
		}
		out = append(out, Candidate{Surface: r.Surface, Reading: r.Reading, Source: SourceLearning, Score: r.Score})
	}
	return out
}
