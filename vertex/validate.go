package vertex

// Issue describes one integrity problem found by Validate: a gap or
// overlap between consecutive states. A directly-constructed history can
// exhibit either; this is opt-in diagnostic tooling, never run implicitly.
type Issue struct {
	// Index of the earlier of the two states involved.
	Index int
	// Overlap is true for an overlap, false for a gap.
	Overlap bool
}

// Validate reports every gap or overlap between consecutive states in the
// current history. It never mutates the vertex.
func (v *Vertex) Validate() []Issue {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var issues []Issue
	for i := 0; i+1 < len(v.states); i++ {
		cur, next := v.states[i], v.states[i+1]
		if cur.Interval.IsOpenEnded() {
			// An open-ended non-last state is itself a symptom of
			// out-of-order editing; AddState prevents this for appends
			// made through it, but a directly-constructed history could
			// still exhibit it. Treat it as an overlap against next.
			issues = append(issues, Issue{Index: i, Overlap: true})
			continue
		}
		switch {
		case cur.Interval.End.After(next.Interval.Start):
			issues = append(issues, Issue{Index: i, Overlap: true})
		case cur.Interval.End.Before(next.Interval.Start):
			issues = append(issues, Issue{Index: i, Overlap: false})
		}
	}
	return issues
}

// Repair re-closes every non-last open-ended state and every overlapping
// closed state so that consecutive states exactly abut (cur.End ==
// next.Start), preserving flavor and payload. Gaps are left untouched —
// Repair only removes impossible overlaps, it does not invent history to
// fill a gap. It is opt-in and never called by AddState or PositionAt.
func (v *Vertex) Repair() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := 0; i+1 < len(v.states); i++ {
		cur, next := v.states[i], v.states[i+1]
		if cur.Interval.IsOpenEnded() || cur.Interval.End.After(next.Interval.Start) {
			v.states[i] = closeAt(cur, next.Interval.Start)
		}
	}
}
