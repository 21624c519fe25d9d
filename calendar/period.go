package calendar

// =============================================================================
// PERIOD - Inclusive date window
// =============================================================================

// Period is an inclusive [Start, End] window: a work period, an allocation
// window, or the span used to total leave applications.
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Encloses returns true if other lies entirely inside p.
func (p Period) Encloses(other Period) bool {
	return p.Contains(other.Start) && p.Contains(other.End)
}

// Days returns the inclusive day count, 0 for an inverted window.
func (p Period) Days() int {
	return InclusiveDays(p.Start, p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
