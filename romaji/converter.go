// Package romaji implements incremental romaji-to-hiragana conversion: a
// small finite-state buffer sitting in front of the shared conversion
// trie (rules.go), handling the sokuon, moraic-n, and youon contractions
// that a single longest-prefix trie lookup cannot resolve on its own.
package romaji

import (
	"strings"
	"unicode"

	"github.com/karukan/engine/kana"
)

// EventKind classifies the outcome of a single Converter.Push call.
type EventKind int

const (
	// EventBuffered means the pushed rune extended the pending buffer
	// without producing output; a longer match may still complete.
	EventBuffered EventKind = iota
	// EventConverted means one or more hiragana morae were appended to
	// the output.
	EventConverted
	// EventPassThrough means no conversion rule could ever match the
	// buffered input, so it was emitted verbatim.
	EventPassThrough
)

// Event reports what a Push call did. Text carries everything the call
// appended to the output: the produced hiragana for EventConverted, or
// the passed-through rune for EventPassThrough, with any text converted
// or passed through from the rest of the buffer in the same call
// appended after it; it is empty for EventBuffered.
type Event struct {
	Kind EventKind
	Text string
}

// BackspaceKind classifies the outcome of a Converter.Backspace call.
type BackspaceKind int

const (
	// BackspaceEmpty means there was nothing left to remove.
	BackspaceEmpty BackspaceKind = iota
	// BackspaceRemovedBuffer means one rune was popped from the pending buffer.
	BackspaceRemovedBuffer
	// BackspaceRemovedOutput means one rune was popped from the committed output.
	BackspaceRemovedOutput
)

// BackspaceResult reports what a Backspace call removed.
type BackspaceResult struct {
	Kind BackspaceKind
	Rune rune
}

// Converter holds the incremental state of a single romaji input stream:
// a pending buffer of unconverted ASCII and the hiragana produced so far.
// It is not safe for concurrent use; the engine owns one per composition.
type Converter struct {
	trie   *trieNode
	buffer []rune
	output strings.Builder
}

// New returns a Converter ready to accept input, sharing the package's
// precompiled rule trie.
func New() *Converter {
	return &Converter{trie: sharedRules}
}

// Push appends ch (folded to lowercase) to the pending buffer and
// attempts conversion, reporting what happened.
func (c *Converter) Push(ch rune) Event {
	ch = unicode.ToLower(ch)
	c.buffer = append(c.buffer, ch)
	return c.tryConvert()
}

// convertWithRemainder appends hiragana to the output and, if the buffer
// still holds unconverted runes, recursively keeps converting, folding
// any further conversion into a single combined Event.
func (c *Converter) convertWithRemainder(hiragana string) Event {
	if len(c.buffer) > 0 {
		if next := c.tryConvert(); next.Kind == EventConverted || next.Kind == EventPassThrough {
			return Event{Kind: EventConverted, Text: hiragana + next.Text}
		}
	}
	return Event{Kind: EventConverted, Text: hiragana}
}

func (c *Converter) tryConvert() Event {
	n := len(c.buffer)

	// "nn" is always a single ん, regardless of what follows: this is the
	// deliberate IME convention for entering the moraic n without relying
	// on following-consonant context.
	if n >= 3 && c.buffer[0] == 'n' && c.buffer[1] == 'n' {
		c.buffer = c.buffer[2:]
		c.output.WriteRune('ん')
		return c.convertWithRemainder("ん")
	}

	if n >= 2 {
		last := c.buffer[n-1]
		secondLast := c.buffer[n-2]

		// 'n' before a non-vowel, non-y, non-apostrophe consonant -> ん,
		// with that consonant carried forward into the buffer. Exactly
		// "nn" (length 2) is excluded so it can wait for the "nn" rule above.
		if secondLast == 'n' && !isVowelOrYOrApostrophe(last) && !(n == 2 && last == 'n') {
			prefix := append([]rune(nil), c.buffer[:n-2]...)
			c.buffer = append(prefix, last)
			c.output.WriteRune('ん')
			return c.convertWithRemainder("ん")
		}

		// Same consonant twice (never 'n', already handled above) -> っ,
		// keeping the second consonant to start the next mora.
		if last == secondLast && !isVowel(last) && last != 'n' {
			c.buffer = []rune{last}
			c.output.WriteRune('っ')
			return Event{Kind: EventConverted, Text: "っ"}
		}
	}

	search := c.trie.searchLongest(string(c.buffer))

	switch {
	case search.found:
		if search.hasContinuation && search.matchedLen == len(c.buffer) {
			// A complete rule matched, but a longer one might still be
			// reachable: wait, unless this is one of the two sequences
			// that are always converted on sight.
			s := string(c.buffer)
			if s == "n'" || s == "nn" {
				c.output.WriteString(search.output)
				c.buffer = nil
				return Event{Kind: EventConverted, Text: search.output}
			}
			return Event{Kind: EventBuffered}
		}
		c.output.WriteString(search.output)
		c.buffer = c.buffer[search.matchedLen:]
		return c.convertWithRemainder(search.output)

	case search.matchedLen == 0:
		if len(c.buffer) == 0 {
			return Event{Kind: EventBuffered}
		}
		first := c.buffer[0]

		if c.trie.hasChild(first) && c.trie.onValidPath(string(c.buffer)) {
			return Event{Kind: EventBuffered}
		}

		firstSearch := c.trie.searchLongest(string(first))
		if firstSearch.found {
			c.output.WriteString(firstSearch.output)
			c.buffer = c.buffer[firstSearch.matchedLen:]
			return c.convertWithRemainder(firstSearch.output)
		}

		c.buffer = c.buffer[1:]
		c.output.WriteRune(first)

		if len(c.buffer) > 0 {
			if next := c.tryConvert(); next.Kind == EventConverted || next.Kind == EventPassThrough {
				return Event{Kind: next.Kind, Text: string(first) + next.Text}
			}
		}
		return Event{Kind: EventPassThrough, Text: string(first)}
	}

	return Event{Kind: EventBuffered}
}

// Flush converts whatever can still be converted from the pending
// buffer, passing through anything that cannot, and returns exactly the
// text appended to the output.
func (c *Converter) Flush() string {
	var flushed strings.Builder

	for len(c.buffer) > 0 {
		search := c.trie.searchLongest(string(c.buffer))
		if search.found {
			flushed.WriteString(search.output)
			c.output.WriteString(search.output)
			c.buffer = c.buffer[search.matchedLen:]
			continue
		}
		first := c.buffer[0]
		flushed.WriteRune(first)
		c.output.WriteRune(first)
		c.buffer = c.buffer[1:]
	}

	return flushed.String()
}

// Backspace removes one rune, preferring the pending buffer over
// committed output.
func (c *Converter) Backspace() BackspaceResult {
	if n := len(c.buffer); n > 0 {
		r := c.buffer[n-1]
		c.buffer = c.buffer[:n-1]
		return BackspaceResult{Kind: BackspaceRemovedBuffer, Rune: r}
	}
	if s := c.output.String(); s != "" {
		runes := []rune(s)
		r := runes[len(runes)-1]
		c.output.Reset()
		c.output.WriteString(string(runes[:len(runes)-1]))
		return BackspaceResult{Kind: BackspaceRemovedOutput, Rune: r}
	}
	return BackspaceResult{Kind: BackspaceEmpty}
}

// Output returns the committed hiragana produced so far.
func (c *Converter) Output() string {
	return c.output.String()
}

// OutputKatakana returns the committed output converted to katakana.
func (c *Converter) OutputKatakana() string {
	return kana.ToKatakana(c.output.String())
}

// Buffer returns the pending, not-yet-convertible input.
func (c *Converter) Buffer() string {
	return string(c.buffer)
}

// Reset clears both the output and the pending buffer.
func (c *Converter) Reset() {
	c.buffer = nil
	c.output.Reset()
}

// FullText returns the committed output followed by the pending buffer.
func (c *Converter) FullText() string {
	return c.output.String() + string(c.buffer)
}

// FullTextKatakana returns the committed output, converted to katakana,
// followed by the pending buffer unchanged.
func (c *Converter) FullTextKatakana() string {
	return kana.ToKatakana(c.output.String()) + string(c.buffer)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	}
	return false
}

func isVowelOrYOrApostrophe(r rune) bool {
	return isVowel(r) || r == 'y' || r == '\''
}
