package engine

import (
	"log/slog"

	"github.com/karukan/engine/buffer"
	"github.com/karukan/engine/candidate"
	"github.com/karukan/engine/kana"
	"github.com/karukan/engine/romaji"
)

// processKeyEmpty handles the Empty state: Ctrl+K pre-selects Katakana
// mode for the next input, any other printable key starts a new
// composition.
func (e *Engine) processKeyEmpty(key Key) Output {
	if isKatakanaToggle(key) {
		e.mode = ModeKatakana
		return Output{Consumed: true}
	}
	if r, ok := key.Printable(); ok {
		return e.startInput(r)
	}
	return Output{Consumed: false}
}

func isKatakanaToggle(key Key) bool {
	return key.Mods.Control && !key.Mods.Shift && !key.Mods.Alt && (key.Rune == 'k' || key.Rune == 'K')
}

// startInput begins a new Composing session with r as the first
// character, per mode: Alphanumeric inserts it literally, Hiragana/
// Katakana push it through the romaji FSM.
func (e *Engine) startInput(r rune) Output {
	e.state = StateComposing
	e.buf = buffer.New()
	if e.mode == ModeAlphanumeric {
		e.romaji = nil
		e.buf.Insert(string(r))
	} else {
		e.romaji = romaji.New()
		e.pushRomaji(r)
	}
	return e.composingOutput(true)
}

// pushRomaji feeds one rune through the romaji FSM and, if it produced
// hiragana (or a pass-through literal), appends it to the buffer —
// transliterated to katakana first when in Katakana mode.
func (e *Engine) pushRomaji(r rune) {
	ev := e.romaji.Push(r)
	slog.Debug("romaji fsm transition", "engine", e.ID, "rune", r, "event", ev.Kind, "text", ev.Text)
	if ev.Kind == romaji.EventConverted || ev.Kind == romaji.EventPassThrough {
		text := ev.Text
		if e.mode == ModeKatakana {
			text = kana.ToKatakana(text)
		}
		e.buf.Insert(text)
	}
}

// processKeyComposing handles the Composing state per the spec's
// transition table, with two mode-specific branches handled first:
// Alphanumeric's Space (literal commit) and live conversion's Space/
// Enter (commit the previewed candidate instead of entering Conversion).
func (e *Engine) processKeyComposing(key Key) Output {
	if key.Special == KeySpace && e.mode == ModeAlphanumeric {
		return e.commitAlphanumericSpace()
	}
	if e.liveConversion && e.mode != ModeAlphanumeric {
		switch key.Special {
		case KeySpace, KeyReturn:
			return e.commitLivePreview()
		}
	}
	if isKatakanaToggle(key) {
		e.mode = ModeKatakana
		e.bakeKatakana()
		return e.composingOutput(true)
	}

	switch key.Special {
	case KeyBackspace:
		return e.backspaceComposing()
	case KeyDelete:
		e.buf.DeleteForward()
		return e.composingOutput(true)
	case KeyLeft:
		e.buf.MoveLeft()
		return e.composingOutput(true)
	case KeyRight:
		e.buf.MoveRight()
		return e.composingOutput(true)
	case KeyHome:
		e.buf.MoveHome()
		return e.composingOutput(true)
	case KeyEnd:
		e.buf.MoveEnd()
		return e.composingOutput(true)
	case KeySpace, KeyTab, KeyDown:
		return e.startConversion()
	case KeyReturn:
		return e.commitComposing()
	case KeyEscape:
		return e.cancelComposing()
	}

	if r, ok := key.Printable(); ok {
		if e.mode == ModeAlphanumeric {
			e.buf.Insert(string(r))
		} else {
			e.pushRomaji(r)
		}
		return e.composingOutput(true)
	}
	return Output{Consumed: false}
}

// backspaceComposing deletes one character left of the cursor. In
// Hiragana/Katakana mode the romaji FSM's own pending buffer is
// consulted first: only once it reports removing from its committed
// output does the visible buffer itself lose a character.
func (e *Engine) backspaceComposing() Output {
	if e.mode == ModeAlphanumeric {
		e.buf.Backspace()
	} else {
		res := e.romaji.Backspace()
		if res.Kind == romaji.BackspaceRemovedOutput {
			e.buf.Backspace()
		}
	}
	if e.buf.Len() == 0 && e.pendingEmpty() {
		e.state = StateEmpty
		e.buf = nil
		e.romaji = nil
		return emptyOutput(true)
	}
	return e.composingOutput(true)
}

func (e *Engine) pendingEmpty() bool {
	if e.mode == ModeAlphanumeric || e.romaji == nil {
		return true
	}
	return e.romaji.Buffer() == ""
}

// commitAlphanumericSpace commits the literal buffer plus a trailing
// space, per the spec's Alphanumeric mode rule.
func (e *Engine) commitAlphanumericSpace() Output {
	text := e.buf.Text() + " "
	e.state = StateEmpty
	e.buf = nil
	out := emptyOutput(true)
	out.HasCommit = true
	out.Commit = text
	return out
}

// commitLivePreview commits whichever candidate is currently previewed
// inline, used when live conversion is toggled on.
func (e *Engine) commitLivePreview() Output {
	e.flushPendingRomaji()
	reading := e.buf.Text()
	if reading == "" {
		e.state = StateEmpty
		e.buf = nil
		e.romaji = nil
		return emptyOutput(true)
	}
	cands := e.buildCandidates(reading, 1)
	surface := reading
	if len(cands) > 0 {
		surface = cands[0].Surface
	}
	e.recordLearning(reading, surface)
	e.state = StateEmpty
	e.buf = nil
	e.romaji = nil
	out := emptyOutput(true)
	out.HasCommit = true
	out.Commit = surface
	return out
}

// commitComposing flushes the FSM and commits the buffer verbatim as
// hiragana (or katakana), recording reading==surface in learning.
func (e *Engine) commitComposing() Output {
	e.flushPendingRomaji()
	text := ""
	if e.buf != nil {
		text = e.buf.Text()
	}
	if text == "" {
		e.state = StateEmpty
		e.buf = nil
		e.romaji = nil
		return emptyOutput(true)
	}
	e.recordLearning(text, text)
	e.state = StateEmpty
	e.buf = nil
	e.romaji = nil
	out := emptyOutput(true)
	out.HasCommit = true
	out.Commit = text
	return out
}

// cancelComposing discards the buffer without committing anything.
func (e *Engine) cancelComposing() Output {
	e.state = StateEmpty
	e.buf = nil
	e.romaji = nil
	return emptyOutput(true)
}

// flushPendingRomaji appends whatever the FSM can still emit from its
// pending buffer to the end of buf.
func (e *Engine) flushPendingRomaji() {
	if e.romaji == nil {
		return
	}
	flushed := e.romaji.Flush()
	if flushed == "" {
		return
	}
	if e.mode == ModeKatakana {
		flushed = kana.ToKatakana(flushed)
	}
	e.buf.MoveEnd()
	e.buf.Insert(flushed)
}

// bakeKatakana rewrites the buffer's current (hiragana) contents to
// katakana in place, preserving the cursor's character offset.
func (e *Engine) bakeKatakana() {
	text := kana.ToKatakana(e.buf.Text())
	cursor := e.buf.Cursor()
	e.buf.Clear()
	e.buf.Insert(text)
	for e.buf.Cursor() > cursor {
		e.buf.MoveLeft()
	}
}

// composedText is the Composing state's visible preedit: the buffer's
// committed text with the romaji FSM's still-pending input appended.
func (e *Engine) composedText() string {
	if e.mode == ModeAlphanumeric {
		return e.buf.Text()
	}
	pending := e.romaji.Buffer()
	if e.mode == ModeKatakana {
		pending = kana.ToKatakana(pending)
	}
	return e.buf.Text() + pending
}

// composingOutput builds the Output for the Composing state: preedit,
// an auto-suggest aux hint from the learning cache, and — when live
// conversion is on — an inline top-candidate preview.
func (e *Engine) composingOutput(consumed bool) Output {
	out := Output{
		Consumed:             consumed,
		HasPreedit:           true,
		Preedit:              e.composedText(),
		Caret:                len([]rune(e.buf.TextBeforeCursor())),
		HasCandidates:        true,
		ShouldHideCandidates: true,
		HasAux:               true,
		Aux:                  "",
	}

	if reading := e.buf.Text(); reading != "" {
		if sugg := candidate.Suggest(e.learningOrNil(), reading); len(sugg) > 0 {
			out.Aux = "→ " + sugg[0].Surface
		}
	}

	if e.liveConversion && e.mode != ModeAlphanumeric && e.buf.Len() > 0 {
		e.applyLivePreview(&out)
	}

	return out
}

// applyLivePreview overwrites the preedit with the top conversion
// candidate for the buffer's current reading, leaving aux untouched.
func (e *Engine) applyLivePreview(out *Output) {
	reading := e.buf.Text()
	cands := e.buildCandidates(reading, 1)
	if len(cands) == 0 {
		return
	}
	out.Preedit = cands[0].Surface
	out.Caret = len([]rune(cands[0].Surface))
}
