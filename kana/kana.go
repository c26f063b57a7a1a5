// Package kana provides hiragana/katakana mapping and character
// classification shared by the romaji converter, dictionaries, and the
// candidate merger's fallback source.
package kana

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	hiraganaLo = 0x3041
	hiraganaHi = 0x3096
	katakanaLo = 0x30A1
	katakanaHi = 0x30F6
	kanaShift  = 0x60
)

// ToKatakana converts every hiragana rune in s to its katakana equivalent.
// Runes outside the hiragana block pass through unchanged.
func ToKatakana(s string) string {
	return mapRunes(s, func(r rune) rune {
		if r >= hiraganaLo && r <= hiraganaHi {
			return r + kanaShift
		}
		return r
	})
}

// ToHiragana converts every katakana rune in s to its hiragana equivalent.
// Runes outside the katakana block pass through unchanged.
func ToHiragana(s string) string {
	return mapRunes(s, func(r rune) rune {
		if r >= katakanaLo && r <= katakanaHi {
			return r - kanaShift
		}
		return r
	})
}

func mapRunes(s string, f func(rune) rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(f(r))
	}
	return b.String()
}

// NormalizeNFKC applies NFKC normalization, folding full-width ASCII
// (e.g. "（", "！") to half-width. Some backend tokenizers treat
// full-width punctuation outside their vocabulary as an end-of-sequence
// token, so this must run before any text reaches a kanji.Backend prompt.
// Hiragana, katakana, kanji, and the jinen marker runes (U+EE00-U+EE02)
// are unaffected by NFKC and pass through unchanged.
func NormalizeNFKC(s string) string {
	return norm.NFKC.String(s)
}

// IsHiragana reports whether r falls in the hiragana block.
func IsHiragana(r rune) bool {
	return r >= hiraganaLo && r <= hiraganaHi
}

// IsKatakana reports whether r falls in the (full-width) katakana block.
func IsKatakana(r rune) bool {
	return r >= katakanaLo && r <= katakanaHi
}

// IsKanji reports whether r falls in the CJK Unified Ideographs block
// (the common case; extension blocks are out of scope for this engine).
func IsKanji(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// IsRomaji reports whether r is an ASCII letter, the sole rune shape the
// romaji FSM accepts as input.
func IsRomaji(r rune) bool {
	return unicode.IsLetter(r) && r <= unicode.MaxASCII
}
