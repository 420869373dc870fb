// internal/app/system/paging/paging.go
package paging

// UsersPerPage is the steady-state number of rows fetched per page once
// the initial chunk is loaded.
const UsersPerPage = 50

// ProfileChunkSize is the number of profiles requested by the initial
// load of a listing. It is deliberately larger than UsersPerPage so the
// first two pages render without another round trip.
const ProfileChunkSize = 100

// TargetNext returns the page index after current.
func TargetNext(current int) int {
	if current < 0 {
		return 0
	}
	return current + 1
}

// TargetPrevious returns the page index before current, never below 0.
func TargetPrevious(current int) int {
	if current <= 0 {
		return 0
	}
	return current - 1
}

// Offset returns the zero-based index of the first row on page.
func Offset(page int) int {
	if page < 0 {
		return 0
	}
	return page * UsersPerPage
}

// Tracker holds the page the panel shows and the total number of rows the
// remote side reported for the active filter. The zero value is page 0
// with an unknown total.
type Tracker struct {
	Page  int
	Total int64 // meaningful only when TotalKnown
	known bool
}

// SetTotal records the total row count for the active filter.
func (t *Tracker) SetTotal(n int64) {
	t.Total = n
	t.known = true
}

// ForgetTotal marks the total as unknown, e.g. while a search is shown.
func (t *Tracker) ForgetTotal() {
	t.Total = 0
	t.known = false
}

// TotalKnown reports whether SetTotal has been called since the last reset.
func (t Tracker) TotalKnown() bool { return t.known }

// Reset returns to page 0. The total is kept; a filter change refreshes it
// separately.
func (t *Tracker) Reset() { t.Page = 0 }

// Commit moves the tracker to page.
func (t *Tracker) Commit(page int) {
	if page < 0 {
		page = 0
	}
	t.Page = page
}

// HasPrev reports whether a page precedes the current one.
func (t Tracker) HasPrev() bool { return t.Page > 0 }

// HasNext reports whether rows exist past the current page. With an
// unknown total it optimistically returns true.
func (t Tracker) HasNext() bool {
	if !t.known {
		return true
	}
	return int64(Offset(t.Page+1)) < t.Total
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start int // 1-based start index (0 if no results)
	End   int // 1-based end index (0 if no results)
}

// Range calculates the 1-based display range of the current page given
// the number of rows shown.
func (t Tracker) Range(shown int) Range {
	return ComputeRange(Offset(t.Page)+1, shown)
}

// ComputeRange calculates display range values given a 1-based start
// index and number of items shown.
func ComputeRange(start, shown int) Range {
	if shown <= 0 {
		return Range{}
	}
	if start < 1 {
		start = 1
	}
	return Range{Start: start, End: start + shown - 1}
}
