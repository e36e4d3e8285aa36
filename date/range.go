package date

import "iter"

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns an iterator that yields each date within the range, oldest first.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Backward returns an iterator that yields each date within the range, newest first.
func (r Range) Backward() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.To; !d.Before(r.From); d = d.Add(-1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Len returns the number of days in the range.
func (r Range) Len() int {
	return int(r.To.time().Sub(r.From.time()).Hours()/24) + 1
}
