// Package candidate implements the conversion candidate model: a
// single Candidate, the paginated List the engine projects into its
// UI slot, and the Merger that fans a reading out across the
// learning cache, user dictionary, neural backend, and system
// dictionary and folds the results into one ordered, deduplicated
// list.
package candidate

// Source identifies which of the four heterogeneous candidate
// producers a Candidate came from. It is exposed to the host as an
// annotation glyph.
type Source int

const (
	SourceLearning Source = iota
	SourceUser
	SourceModel
	SourceSystem
	SourceFallback
)

// Annotation returns the glyph the host displays next to a candidate
// from this source.
func (s Source) Annotation() string {
	switch s {
	case SourceLearning:
		return "📝"
	case SourceUser:
		return "👤"
	case SourceModel:
		return "🤖"
	case SourceSystem:
		return "📚"
	default:
		return ""
	}
}

func (s Source) String() string {
	switch s {
	case SourceLearning:
		return "learning"
	case SourceUser:
		return "user"
	case SourceModel:
		return "model"
	case SourceSystem:
		return "system"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Candidate is a single conversion candidate: the surface form the
// host may commit, the reading it was produced from, which source
// produced it, and that source's ranking score (not comparable across
// sources — ordering across sources is by priority, not score).
type Candidate struct {
	Surface string
	Reading string
	Source  Source
	Score   float64
}
