package engine

import "unicode"

// SpecialKey names a non-printable key the host may report. Printable
// keys (letters, digits, punctuation) are carried in Key.Rune instead.
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeySpace
	KeyTab
	KeyReturn
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	// KeySuperR is the right Super key, used to leave Alphanumeric mode.
	KeySuperR
)

// Modifiers mirrors the host's modifier_mask bit field (Shift=1,
// Control=4, Alt=8, Super=64, X11 convention).
type Modifiers struct {
	Shift, Control, Alt, Super bool
}

// ModifiersFromMask decodes a raw X11-style modifier_mask.
func ModifiersFromMask(mask uint32) Modifiers {
	return Modifiers{
		Shift:   mask&1 != 0,
		Control: mask&4 != 0,
		Alt:     mask&8 != 0,
		Super:   mask&64 != 0,
	}
}

// Key is one key event as the host reports it: a printable rune, or a
// named special key, plus modifiers.
type Key struct {
	Rune    rune
	Special SpecialKey
	Mods    Modifiers
}

// Printable reports whether the event is a plain character with no
// Control/Alt chord — the case every state's default handler inserts.
func (k Key) Printable() (rune, bool) {
	if k.Special != KeyNone || k.Rune == 0 {
		return 0, false
	}
	if k.Mods.Control || k.Mods.Alt {
		return 0, false
	}
	return k.Rune, true
}

// Digit reports whether the event is a bare '1'-'9', used to select a
// candidate by page-local index during Conversion.
func (k Key) Digit() (int, bool) {
	r, ok := k.Printable()
	if !ok || r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

// RuneKey is a convenience constructor for a plain printable key.
func RuneKey(r rune) Key {
	return Key{Rune: r}
}

// Shifted is a convenience constructor for a Shift-chorded printable key.
func Shifted(r rune) Key {
	return Key{Rune: r, Mods: Modifiers{Shift: true}}
}

func isASCIILetter(r rune) bool {
	return r != 0 && unicode.IsLetter(r) && r < unicode.MaxASCII
}
