package board

// Page describes one window over an ordered, filtered listing collection.
// Navigation carries absolute offsets, not page indexes, so the controller
// stays stateless between requests.
type Page struct {
	Total      int64
	Offset     int64
	PerPage    int64
	Items      int64
	Current    int64
	Pages      int64
	HasPrev    bool
	HasNext    bool
	PrevOffset int64
	NextOffset int64
}

// Paginate computes the page window for the given total, offset, and page
// size. It tolerates offsets beyond the total (the count and the fetched
// page may disagree under concurrent writes) and reports an empty state for
// total == 0 instead of dividing by zero.
func Paginate(total, offset, perPage int64) Page {
	if perPage <= 0 {
		perPage = 1
	}
	if offset < 0 {
		offset = 0
	}

	p := Page{
		Total:   total,
		Offset:  offset,
		PerPage: perPage,
	}
	if total == 0 {
		return p
	}

	p.Pages = (total + perPage - 1) / perPage
	p.Current = offset/perPage + 1

	remaining := total - offset
	switch {
	case remaining <= 0:
		p.Items = 0
	case remaining < perPage:
		p.Items = remaining
	default:
		p.Items = perPage
	}

	p.HasPrev = offset > 0
	p.HasNext = offset+perPage < total
	p.PrevOffset = offset - perPage
	if p.PrevOffset < 0 {
		p.PrevOffset = 0
	}
	p.NextOffset = offset + perPage
	return p
}

// StepBack returns the offset one page earlier, clamped at zero. Used after
// deleting the last item of the last page.
func StepBack(offset, perPage int64) int64 {
	offset -= perPage
	if offset < 0 {
		return 0
	}
	return offset
}
