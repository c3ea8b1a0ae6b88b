package vm

// Search is the sink Exec reports results into: which sub-patterns matched,
// their capture positions, and the control knob that lets a caller that only
// needs a boolean answer stop as soon as anything matches.
type Search struct {
	// Captures receives each matched sub-pattern's capture row. May be nil
	// if the caller only needs Matches.
	Captures CaptureSlots

	// Matches[i] is set to true the first time sub-pattern i matches. Must
	// be sized to the program's NumSubPatterns before calling Exec.
	Matches []bool

	// QuitAfterFirstMatch makes Exec return true as soon as any sub-pattern
	// matches, without determining which one won leftmost-first priority
	// among threads still live at that position. Used for a plain
	// is-there-a-match query where identity and captures don't matter.
	QuitAfterFirstMatch bool
}

// NewSearch allocates a Search sized for a program with numSubPatterns
// sub-patterns and the given per-sub-pattern capture slot counts.
func NewSearch(numSubPatterns int, slotCounts []int) *Search {
	return &Search{
		Captures: NewSliceCaptures(slotCounts),
		Matches:  make([]bool, numSubPatterns),
	}
}

// Reset clears Matches and Captures for reuse across searches.
func (s *Search) Reset() {
	for i := range s.Matches {
		s.Matches[i] = false
	}
	if sc, ok := s.Captures.(*SliceCaptures); ok {
		sc.Reset()
	}
}
