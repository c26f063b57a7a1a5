package candidate

// DefaultPageSize is the candidate panel's page size (spec: 9 per
// page, digits 1-9 select a page-local index).
const DefaultPageSize = 9

// List is an ordered, paginated candidate set with a selection
// cursor. Ported from the original's CandidateList: page-relative
// navigation wraps around at either end rather than stopping.
type List struct {
	candidates []Candidate
	cursor     int
	pageSize   int
}

// NewList builds a List over candidates with the default page size
// and the cursor at the first candidate.
func NewList(candidates []Candidate) *List {
	return &List{candidates: candidates, pageSize: DefaultPageSize}
}

func (l *List) Candidates() []Candidate {
	return l.candidates
}

func (l *List) Len() int {
	return len(l.candidates)
}

func (l *List) IsEmpty() bool {
	return len(l.candidates) == 0
}

func (l *List) Cursor() int {
	return l.cursor
}

func (l *List) PageSize() int {
	return l.pageSize
}

// CurrentPage returns the 0-indexed page the cursor is on.
func (l *List) CurrentPage() int {
	if l.pageSize == 0 {
		return 0
	}
	return l.cursor / l.pageSize
}

// TotalPages returns how many pages the candidate set spans.
func (l *List) TotalPages() int {
	if l.pageSize == 0 || len(l.candidates) == 0 {
		return 0
	}
	return (len(l.candidates) + l.pageSize - 1) / l.pageSize
}

func (l *List) PageStart() int {
	return l.CurrentPage() * l.pageSize
}

// PageCandidates returns the slice of candidates on the current page.
func (l *List) PageCandidates() []Candidate {
	start := l.PageStart()
	end := start + l.pageSize
	if end > len(l.candidates) {
		end = len(l.candidates)
	}
	if start > end {
		start = end
	}
	return l.candidates[start:end]
}

// PageCursor returns the cursor position relative to the current
// page's start.
func (l *List) PageCursor() int {
	return l.cursor - l.PageStart()
}

// Selected returns the candidate at the cursor, if any.
func (l *List) Selected() (Candidate, bool) {
	if l.cursor < 0 || l.cursor >= len(l.candidates) {
		return Candidate{}, false
	}
	return l.candidates[l.cursor], true
}

// SelectedSurface is a convenience wrapper around Selected for callers
// that only need the surface string.
func (l *List) SelectedSurface() (string, bool) {
	c, ok := l.Selected()
	if !ok {
		return "", false
	}
	return c.Surface, true
}

// MoveNext advances the cursor by one, wrapping to the first
// candidate past the end. Returns false only when the list is empty.
func (l *List) MoveNext() bool {
	if len(l.candidates) == 0 {
		return false
	}
	if l.cursor+1 < len(l.candidates) {
		l.cursor++
	} else {
		l.cursor = 0
	}
	return true
}

// MovePrev retreats the cursor by one, wrapping to the last candidate
// before the start.
func (l *List) MovePrev() bool {
	if len(l.candidates) == 0 {
		return false
	}
	if l.cursor > 0 {
		l.cursor--
	} else {
		l.cursor = len(l.candidates) - 1
	}
	return true
}

// NextPage jumps the cursor to the start of the next page, wrapping to
// the first page once past the last.
func (l *List) NextPage() bool {
	if len(l.candidates) == 0 {
		return false
	}
	next := l.PageStart() + l.pageSize
	if next < len(l.candidates) {
		l.cursor = next
	} else {
		l.cursor = 0
	}
	return true
}

// PrevPage jumps the cursor to the start of the previous page,
// wrapping to the last page from the first.
func (l *List) PrevPage() bool {
	if len(l.candidates) == 0 {
		return false
	}
	if page := l.CurrentPage(); page > 0 {
		l.cursor = (page - 1) * l.pageSize
	} else {
		lastPage := l.TotalPages() - 1
		if lastPage < 0 {
			lastPage = 0
		}
		l.cursor = lastPage * l.pageSize
	}
	return true
}

// SelectOnPage selects the candidate at 1-indexed pageIndex (1-9) on
// the current page, e.g. the digit key the host reports.
func (l *List) SelectOnPage(pageIndex int) (Candidate, bool) {
	if pageIndex < 1 || pageIndex > l.pageSize {
		return Candidate{}, false
	}
	abs := l.PageStart() + pageIndex - 1
	if abs >= len(l.candidates) {
		return Candidate{}, false
	}
	l.cursor = abs
	return l.candidates[l.cursor], true
}

// Select moves the cursor to an absolute index.
func (l *List) Select(index int) (Candidate, bool) {
	if index < 0 || index >= len(l.candidates) {
		return Candidate{}, false
	}
	l.cursor = index
	return l.candidates[l.cursor], true
}

// Reset moves the cursor back to the first candidate.
func (l *List) Reset() {
	l.cursor = 0
}

// Update replaces the candidate set and resets the cursor, used when a
// new conversion request produces a fresh list.
func (l *List) Update(candidates []Candidate) {
	l.candidates = candidates
	l.cursor = 0
}
