package abi

import "github.com/karukan/engine/engine"

// Distinguished keysyms per spec.md §6, X11 keysymdef.h values.
const (
	keysymSpace     = 0x0020
	keysymBackSpace = 0xFF08
	keysymTab       = 0xFF09
	keysymReturn    = 0xFF0D
	keysymEscape    = 0xFF1B
	keysymHome      = 0xFF50
	keysymLeft      = 0xFF51
	keysymUp        = 0xFF52
	keysymRight     = 0xFF53
	keysymDown      = 0xFF54
	keysymPageUp    = 0xFF55
	keysymPageDown  = 0xFF56
	keysymEnd       = 0xFF57
	keysymDelete    = 0xFFFF
	keysymSuperR    = 0xFFEC
)

// KeyFromKeysym decodes one host key event per spec.md §6: keysym is
// the windowing-system symbol value, modifierMask the X11-style
// Shift=1/Control=4/Alt=8/Super=64 bit field. Printable ASCII keysyms
// equal their Latin-1 code point; an uppercase letter keysym implies
// Shift the way the host's own case already does, so it is folded to
// lowercase with Shift forced on to match engine.Shifted's convention.
func KeyFromKeysym(keysym, modifierMask uint32) engine.Key {
	mods := engine.ModifiersFromMask(modifierMask)

	switch keysym {
	case keysymSpace:
		return engine.Key{Special: engine.KeySpace, Mods: mods}
	case keysymBackSpace:
		return engine.Key{Special: engine.KeyBackspace, Mods: mods}
	case keysymTab:
		return engine.Key{Special: engine.KeyTab, Mods: mods}
	case keysymReturn:
		return engine.Key{Special: engine.KeyReturn, Mods: mods}
	case keysymEscape:
		return engine.Key{Special: engine.KeyEscape, Mods: mods}
	case keysymHome:
		return engine.Key{Special: engine.KeyHome, Mods: mods}
	case keysymLeft:
		return engine.Key{Special: engine.KeyLeft, Mods: mods}
	case keysymUp:
		return engine.Key{Special: engine.KeyUp, Mods: mods}
	case keysymRight:
		return engine.Key{Special: engine.KeyRight, Mods: mods}
	case keysymDown:
		return engine.Key{Special: engine.KeyDown, Mods: mods}
	case keysymPageUp:
		return engine.Key{Special: engine.KeyPageUp, Mods: mods}
	case keysymPageDown:
		return engine.Key{Special: engine.KeyPageDown, Mods: mods}
	case keysymEnd:
		return engine.Key{Special: engine.KeyEnd, Mods: mods}
	case keysymDelete:
		return engine.Key{Special: engine.KeyDelete, Mods: mods}
	case keysymSuperR:
		return engine.Key{Special: engine.KeySuperR, Mods: mods}
	}

	if keysym >= 'A' && keysym <= 'Z' {
		mods.Shift = true
		return engine.Key{Rune: rune(keysym) + ('a' - 'A'), Mods: mods}
	}
	if keysym >= 0x20 && keysym <= 0x7e {
		return engine.Key{Rune: rune(keysym), Mods: mods}
	}
	return engine.Key{Special: engine.KeyNone, Mods: mods}
}
