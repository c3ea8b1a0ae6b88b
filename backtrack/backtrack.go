// Package backtrack implements a brute-force recursive backtracking matcher
// over a compiled prog.Program. It exists purely as a cross-check oracle for
// tests: unlike vm.Exec, it never reports leftmost-first priority reliably
// among competing threads and its recursion depth is unbounded, so it is
// never a production matching path. Its only claim is "the same boolean
// match/no-match answer vm.Exec produces, computed a structurally different
// way."
package backtrack

import (
	"github.com/coregx/rxcore/prog"
	"github.com/coregx/rxcore/rinput"
)

// maxVisitedBits bounds the (instruction, position) visited set so a
// pathological program/input pair fails fast instead of exhausting memory.
const maxVisitedBits = 1 << 24

// Matcher runs p via recursive backtracking. Not safe for concurrent use;
// each call to IsMatch resets internal state.
type Matcher struct {
	prog    *prog.Program
	visited []uint64
	width   int // positions per instruction row, i.e. len(haystack)+1
}

// New returns a Matcher for p.
func New(p *prog.Program) *Matcher {
	return &Matcher{prog: p}
}

func (m *Matcher) reset(haystackLen int) {
	m.width = haystackLen + 1
	bits := len(m.prog.Insts) * m.width
	if bits > maxVisitedBits {
		panic("backtrack: haystack too large for the cross-check oracle")
	}
	words := (bits + 63) / 64
	if cap(m.visited) >= words {
		m.visited = m.visited[:words]
		for i := range m.visited {
			m.visited[i] = 0
		}
		return
	}
	m.visited = make([]uint64, words)
}

func (m *Matcher) shouldVisit(ip uint32, pos int) bool {
	idx := int(ip)*m.width + pos
	word, bit := idx/64, uint64(1)<<(idx%64)
	if m.visited[word]&bit != 0 {
		return false
	}
	m.visited[word] |= bit
	return true
}

// IsMatch reports whether p matches anywhere in the haystack input carries,
// trying every start position in turn (unanchored) or only position 0
// (anchored).
func (m *Matcher) IsMatch(input rinput.Input) bool {
	m.reset(input.Len())
	last := input.Len()
	if m.prog.AnchoredBegin {
		last = 0
	}
	for start := 0; start <= last; start++ {
		for i := range m.visited {
			m.visited[i] = 0
		}
		if m.run(input, input.At(start), 0) {
			return true
		}
	}
	return false
}

// run recursively explores the program from ip at position at, returning
// true the first time it reaches a Match instruction along any path.
func (m *Matcher) run(input rinput.Input, at rinput.At, ip uint32) bool {
	if !m.shouldVisit(ip, at.Pos()) {
		return false
	}
	inst := &m.prog.Insts[ip]
	switch inst.Kind {
	case prog.KindMatch:
		return true
	case prog.KindSave:
		return m.run(input, at, inst.Goto)
	case prog.KindJump:
		return m.run(input, at, inst.Goto)
	case prog.KindSplit:
		// Greedy first, per the engine's priority convention.
		return m.run(input, at, inst.Goto1) || m.run(input, at, inst.Goto2)
	case prog.KindEmptyLook:
		if evalLook(inst.Look, input, at) {
			return m.run(input, at, inst.Goto)
		}
		return false
	case prog.KindChar:
		ch, ok := input.Char(at)
		if ok && ch == inst.Char {
			return m.run(input, input.At(input.NextPos(at)), inst.Goto)
		}
		return false
	case prog.KindRanges:
		ch, ok := input.Char(at)
		if ok && inRanges(ch, inst.Ranges) {
			return m.run(input, input.At(input.NextPos(at)), inst.Goto)
		}
		return false
	case prog.KindBytes:
		ch, ok := input.Char(at)
		if ok {
			b := byte(ch)
			if b >= inst.ByteLo && b <= inst.ByteHi {
				return m.run(input, input.At(input.NextPos(at)), inst.Goto)
			}
		}
		return false
	default:
		panic("backtrack: unknown instruction kind")
	}
}

func inRanges(ch rune, ranges []prog.RuneRange) bool {
	for _, r := range ranges {
		if ch >= r.Lo && ch <= r.Hi {
			return true
		}
	}
	return false
}

func evalLook(look prog.Look, input rinput.Input, at rinput.At) bool {
	switch look {
	case prog.LookStartText:
		return input.IsBeginning(at)
	case prog.LookEndText:
		return input.IsEnd(at)
	case prog.LookStartLine:
		prev, ok := input.PrevChar(at)
		return !ok || prev == '\n'
	case prog.LookEndLine:
		next, ok := input.Char(at)
		return !ok || next == '\n'
	case prog.LookWordBoundary, prog.LookNotWordBoundary:
		prev, okPrev := input.PrevChar(at)
		next, okNext := input.Char(at)
		prevIsWord := okPrev && rinput.IsWordChar(prev)
		nextIsWord := okNext && rinput.IsWordChar(next)
		boundary := prevIsWord != nextIsWord
		if look == prog.LookNotWordBoundary {
			return !boundary
		}
		return boundary
	default:
		panic("backtrack: unknown look assertion")
	}
}
