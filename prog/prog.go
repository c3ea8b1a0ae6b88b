// Package prog defines the compiled program representation a Thompson NFA
// executes: a flat instruction slice addressed by program counter, plus the
// metadata (sub-pattern count, capture slot layout, anchoring, orientation,
// prefix literals) the engine and its input adapter need to run it.
package prog

import (
	"strconv"

	"github.com/coregx/rxcore/literal"
)

// InvalidAddr marks a goto field that hasn't been patched yet. Build panics
// if any instruction still carries it — that's a compiler bug, not a user
// error.
const InvalidAddr = ^uint32(0)

// Kind identifies the variant an Inst holds.
type Kind uint8

const (
	// KindMatch records that sub-pattern Pattern has matched; terminal.
	KindMatch Kind = iota
	// KindSave copies the current input position into capture slot CaptureSlot,
	// then falls through to Goto.
	KindSave
	// KindSplit forks the current thread into Goto1 (higher priority) and
	// Goto2 (lower priority).
	KindSplit
	// KindJump transfers control unconditionally to Goto.
	KindJump
	// KindChar consumes one codepoint equal to Char, then continues at Goto.
	KindChar
	// KindRanges consumes one codepoint falling in any of Ranges, then
	// continues at Goto.
	KindRanges
	// KindBytes consumes one byte in [ByteLo, ByteHi], then continues at
	// Goto. Only present in byte-oriented programs.
	KindBytes
	// KindEmptyLook asserts a zero-width condition (Look) holds at the
	// current position without consuming input, then continues at Goto.
	KindEmptyLook
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "Match"
	case KindSave:
		return "Save"
	case KindSplit:
		return "Split"
	case KindJump:
		return "Jump"
	case KindChar:
		return "Char"
	case KindRanges:
		return "Ranges"
	case KindBytes:
		return "Bytes"
	case KindEmptyLook:
		return "EmptyLook"
	default:
		return "Unknown"
	}
}

// Look identifies a zero-width assertion.
type Look uint8

const (
	LookStartText Look = iota
	LookEndText
	LookStartLine
	LookEndLine
	LookWordBoundary
	LookNotWordBoundary
)

func (l Look) String() string {
	switch l {
	case LookStartText:
		return "StartText"
	case LookEndText:
		return "EndText"
	case LookStartLine:
		return "StartLine"
	case LookEndLine:
		return "EndLine"
	case LookWordBoundary:
		return "WordBoundary"
	case LookNotWordBoundary:
		return "NotWordBoundary"
	default:
		return "Unknown"
	}
}

// RuneRange is an inclusive codepoint range used by KindRanges.
type RuneRange struct {
	Lo, Hi rune
}

// Inst is one instruction in a Program. Only the fields relevant to Kind are
// meaningful.
type Inst struct {
	Kind Kind

	// KindMatch
	Pattern uint32

	// KindSave: records the current input position into capture slot
	// CaptureSlot of sub-pattern MatchSlot's capture vector. MatchSlot is a
	// compile-time constant, always 0 for a single compiled pattern; it
	// must agree with the sub-pattern a thread executing this Save
	// currently belongs to.
	MatchSlot   uint32
	CaptureSlot uint32
	Goto        uint32 // also used by KindJump, KindChar, KindRanges, KindBytes, KindEmptyLook

	// KindSplit
	Goto1, Goto2 uint32

	// KindChar
	Char rune

	// KindRanges
	Ranges []RuneRange

	// KindBytes
	ByteLo, ByteHi byte

	// KindEmptyLook
	Look Look
}

// Program is a compiled, immutable, shareable Thompson NFA program.
//
// Instruction 0 is always the entry point. For a single pattern, execution
// begins at Save(0) (slot 0 = overall match start) and a successful run ends
// at Match(0) after Save(1) (slot 1 = overall match end). For a regex set
// compiled with CompileMany, the entry point is a priority-ordered Split
// chain that forks into each sub-pattern's own Save(0)/.../Save(1)/Match(i)
// sequence.
type Program struct {
	Insts []Inst

	// InstMatchSlot[addr] is the sub-pattern index the instruction at addr
	// belongs to. Every address is confined to exactly one sub-pattern by
	// construction, except the Splits of a regex set's entry-point chain
	// (address 0, plus one Split after each further non-final arm), which
	// fork across several and carry the tag of the arm emitted before them
	// (0 for address 0). None of them is ever a mid-pattern target, so this
	// is a pure function of the compiled layout rather than something
	// threaded through execution.
	InstMatchSlot []uint32

	// NumSubPatterns is 1 for a single compiled pattern, or the number of
	// alternatives for a program built by CompileMany.
	NumSubPatterns int

	// CaptureSlotCounts[i] is the number of capture slots sub-pattern i
	// needs: 2*(number of capturing groups in pattern i) + 2. Always even.
	CaptureSlotCounts []int

	// AnchoredBegin is true when every sub-pattern requires the match to
	// start at the beginning of the input (an explicit ^ with no leading
	// .*? inserted by the compiler).
	AnchoredBegin bool

	// ByteOriented is true when Insts was compiled to consume raw bytes
	// (KindBytes) rather than codepoints (KindChar/KindRanges) — the
	// program a DFA would consume, per §4.5 of the spec this program
	// implements.
	ByteOriented bool

	// PrefixLiterals is the literal sequence extracted from the compiled
	// expression(s), used by the input adapter's prefix-search contract.
	// Nil when no useful literal prefix exists.
	PrefixLiterals *literal.Seq
}

// MaxCaptureSlots returns the widest CaptureSlotCounts entry, i.e. the
// number of columns needed by a capture storage row wide enough for any
// sub-pattern in this program.
func (p *Program) MaxCaptureSlots() int {
	max := 0
	for _, n := range p.CaptureSlotCounts {
		if n > max {
			max = n
		}
	}
	return max
}

// SizeError is the one recoverable compilation error: the program built so
// far exceeds LimitBytes. Every other compile-time failure is a programmer
// error (a malformed Expr) and panics instead.
type SizeError struct {
	LimitBytes  int
	ActualInsts int
}

func (e *SizeError) Error() string {
	return "prog: compiled program exceeds size limit of " + strconv.Itoa(e.LimitBytes) + " bytes (" +
		strconv.Itoa(e.ActualInsts) + " instructions emitted)"
}
