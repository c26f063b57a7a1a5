package engine

import (
	"github.com/karukan/engine/buffer"
	"github.com/karukan/engine/candidate"
	"github.com/karukan/engine/romaji"
)

// startConversion flushes the FSM, builds the full candidate list for
// the composed reading, and transitions Composing -> Conversion. An
// empty reading (nothing typed) or Alphanumeric mode (which has no
// Conversion state) is a no-op back to Empty/not-consumed respectively.
func (e *Engine) startConversion() Output {
	if e.mode == ModeAlphanumeric {
		return Output{Consumed: false}
	}

	e.flushPendingRomaji()
	reading := ""
	if e.buf != nil {
		reading = e.buf.Text()
	}
	e.romaji = nil
	e.buf = nil

	if reading == "" {
		e.state = StateEmpty
		return emptyOutput(true)
	}

	cands := e.buildCandidates(reading, e.config.NumCandidates)
	e.candList = candidate.NewList(cands)
	e.candReading = reading
	e.state = StateConversion
	return e.conversionOutput(true)
}

// conversionOutput builds the Output for the Conversion state: the
// selected candidate as a highlighted preedit, the reading/page aux
// text, and the current page of the candidate panel.
func (e *Engine) conversionOutput(consumed bool) Output {
	surface, _ := e.candList.SelectedSurface()
	return Output{
		Consumed:             consumed,
		HasPreedit:           true,
		Preedit:              surface,
		Caret:                len([]rune(surface)),
		HasCandidates:        true,
		ShouldHideCandidates: false,
		Candidates:           e.candList.PageCandidates(),
		CandidateCursor:      e.candList.PageCursor(),
		HasAux:               true,
		Aux:                  e.formatAux(),
	}
}

func (e *Engine) processKeyConversion(key Key) Output {
	switch key.Special {
	case KeyReturn:
		return e.commitConversion()
	case KeyEscape, KeyBackspace:
		return e.cancelConversion()
	case KeySpace, KeyDown, KeyTab:
		e.candList.MoveNext()
		return e.conversionOutput(true)
	case KeyUp:
		e.candList.MovePrev()
		return e.conversionOutput(true)
	case KeyPageDown:
		e.candList.NextPage()
		return e.conversionOutput(true)
	case KeyPageUp:
		e.candList.PrevPage()
		return e.conversionOutput(true)
	}

	if key.Mods.Control && !key.Mods.Alt {
		switch key.Rune {
		case 'n', 'N':
			e.candList.MoveNext()
			return e.conversionOutput(true)
		case 'p', 'P':
			e.candList.MovePrev()
			return e.conversionOutput(true)
		}
	}

	if d, ok := key.Digit(); ok {
		return e.selectCandidateByDigit(d)
	}
	if r, ok := key.Printable(); ok {
		return e.commitConversionAndContinue(r)
	}
	return Output{Consumed: false}
}

func (e *Engine) commitConversion() Output {
	surface, ok := e.candList.SelectedSurface()
	if !ok {
		return Output{Consumed: false}
	}
	if surface != "" {
		e.recordLearning(e.candReading, surface)
	}
	e.state = StateEmpty
	e.candList = nil
	out := emptyOutput(true)
	if surface != "" {
		out.HasCommit = true
		out.Commit = surface
	}
	return out
}

func (e *Engine) selectCandidateByDigit(pageIndex int) Output {
	c, ok := e.candList.SelectOnPage(pageIndex)
	if !ok {
		return Output{Consumed: true}
	}
	e.recordLearning(e.candReading, c.Surface)
	e.state = StateEmpty
	e.candList = nil
	out := emptyOutput(true)
	out.HasCommit = true
	out.Commit = c.Surface
	return out
}

// commitConversionAndContinue commits the selected candidate, then
// feeds r into a fresh Composing session as though it were typed next.
func (e *Engine) commitConversionAndContinue(r rune) Output {
	surface, ok := e.candList.SelectedSurface()
	if !ok {
		return Output{Consumed: false}
	}
	if surface != "" {
		e.recordLearning(e.candReading, surface)
	}
	e.state = StateEmpty
	e.candList = nil

	out := e.startInput(r)
	out.HasCommit = true
	out.Commit = surface
	return out
}

// cancelConversion returns to Composing with the reading that was being
// converted restored as the buffer's full text.
func (e *Engine) cancelConversion() Output {
	reading := e.candReading
	e.state = StateComposing
	e.candList = nil
	e.buf = buffer.New()
	if reading != "" {
		e.buf.Insert(reading)
	}
	e.romaji = romaji.New()
	return e.composingOutput(true)
}
