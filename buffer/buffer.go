// Package buffer implements the character-indexed composition buffer
// that sits between the romaji converter's output and the candidate
// panel: the text a user sees and edits while composing, before any
// conversion has been requested.
package buffer

import "github.com/emirpasic/gods/lists/arraylist"

// InputBuffer holds the hiragana-mode text currently being composed and
// a character-indexed cursor. All positions are counted in runes, never
// bytes, since the buffer must never split a multi-byte UTF-8 sequence.
// Not safe for concurrent use; the engine owns one per composition and
// discards it on commit or cancel.
type InputBuffer struct {
	runes  *arraylist.List
	cursor int
}

// New returns an empty InputBuffer with the cursor at position zero.
func New() *InputBuffer {
	return &InputBuffer{runes: arraylist.New()}
}

// Insert splices s into the buffer at the cursor and advances the cursor
// past the inserted text.
func (b *InputBuffer) Insert(s string) {
	if s == "" {
		return
	}
	values := make([]interface{}, 0, len(s))
	for _, r := range s {
		values = append(values, r)
	}
	b.runes.Insert(b.cursor, values...)
	b.cursor += len(values)
}

// Backspace deletes the character to the left of the cursor. No-op when
// the cursor is already at the start.
func (b *InputBuffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	b.runes.Remove(b.cursor - 1)
	b.cursor--
}

// DeleteForward deletes the character at the cursor. No-op when the
// cursor is already at the end.
func (b *InputBuffer) DeleteForward() {
	if b.cursor >= b.runes.Size() {
		return
	}
	b.runes.Remove(b.cursor)
}

// MoveLeft moves the cursor one character left, saturating at zero.
func (b *InputBuffer) MoveLeft() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveRight moves the cursor one character right, saturating at the end.
func (b *InputBuffer) MoveRight() {
	if b.cursor < b.runes.Size() {
		b.cursor++
	}
}

// MoveHome moves the cursor to the start of the buffer.
func (b *InputBuffer) MoveHome() {
	b.cursor = 0
}

// MoveEnd moves the cursor to the end of the buffer.
func (b *InputBuffer) MoveEnd() {
	b.cursor = b.runes.Size()
}

// Cursor returns the current character-indexed cursor position.
func (b *InputBuffer) Cursor() int {
	return b.cursor
}

// Len returns the number of characters in the buffer.
func (b *InputBuffer) Len() int {
	return b.runes.Size()
}

// Text returns the full buffer contents.
func (b *InputBuffer) Text() string {
	return b.runesBetween(0, b.runes.Size())
}

// TextBeforeCursor returns the buffer contents up to the cursor.
func (b *InputBuffer) TextBeforeCursor() string {
	return b.runesBetween(0, b.cursor)
}

// TextAfterCursor returns the buffer contents from the cursor onward.
func (b *InputBuffer) TextAfterCursor() string {
	return b.runesBetween(b.cursor, b.runes.Size())
}

func (b *InputBuffer) runesBetween(from, to int) string {
	out := make([]rune, 0, to-from)
	for i := from; i < to; i++ {
		v, _ := b.runes.Get(i)
		out = append(out, v.(rune))
	}
	return string(out)
}

// Clear empties the buffer and resets the cursor to zero.
func (b *InputBuffer) Clear() {
	b.runes.Clear()
	b.cursor = 0
}
