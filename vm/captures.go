// Package vm runs a compiled prog.Program as a Pike VM: a single pass over
// the input that advances every live thread one position at a time,
// exploring each thread's epsilon closure (Save/Split/Jump/EmptyLook chains)
// with an explicit stack rather than recursion.
package vm

// CaptureSlots holds the capture positions produced by a search, one row per
// sub-pattern. Slot 0/1 of a row are always the overall match's start/end;
// slots 2 and up belong to capturing groups in source order. An unset slot
// holds -1.
type CaptureSlots interface {
	// NumMatches returns the number of sub-pattern rows this CaptureSlots
	// was sized for.
	NumMatches() int

	// Captures returns the full capture row for sub-pattern m.
	Captures(m int) []int

	// Capture returns capture slot c of sub-pattern m.
	Capture(m, c int) int

	// SetCapture sets capture slot c of sub-pattern m to v.
	SetCapture(m, c, v int)

	// CopyFromMatch overwrites sub-pattern m's row with row, which must be
	// at least as wide as m's slot count.
	CopyFromMatch(m int, row []int)
}

// SliceCaptures is the straightforward owned CaptureSlots implementation: a
// dense [][]int, one row per sub-pattern, each sized by slotCounts[m].
type SliceCaptures struct {
	rows [][]int
}

// NewSliceCaptures allocates a SliceCaptures with one row per entry in
// slotCounts, every slot initialized to -1 (unset).
func NewSliceCaptures(slotCounts []int) *SliceCaptures {
	rows := make([][]int, len(slotCounts))
	for i, n := range slotCounts {
		row := make([]int, n)
		for j := range row {
			row[j] = -1
		}
		rows[i] = row
	}
	return &SliceCaptures{rows: rows}
}

func (s *SliceCaptures) NumMatches() int { return len(s.rows) }

func (s *SliceCaptures) Captures(m int) []int { return s.rows[m] }

func (s *SliceCaptures) Capture(m, c int) int { return s.rows[m][c] }

func (s *SliceCaptures) SetCapture(m, c, v int) { s.rows[m][c] = v }

func (s *SliceCaptures) CopyFromMatch(m int, row []int) {
	copy(s.rows[m], row[:len(s.rows[m])])
}

// Reset marks every slot of every row unset again, for reuse across searches.
func (s *SliceCaptures) Reset() {
	for _, row := range s.rows {
		for i := range row {
			row[i] = -1
		}
	}
}
