package prog

import (
	"strconv"

	"github.com/coregx/rxcore/internal/conv"
	"github.com/coregx/rxcore/literal"
)

// Builder constructs a Program incrementally in a single forward pass,
// emitting instructions with placeholder gotos that are back-patched once
// their target address is known — the same hole/fill technique the
// compiler needs for forward references (Split branches, Jump past a
// not-yet-emitted continuation).
//
// A Builder is not safe for concurrent use.
type Builder struct {
	insts      []Inst
	matchSlots []uint32

	// curMatchSlot tags every instruction Push emits from here on, until
	// the next SetMatchSlot call. The compiler sets this once per
	// top-level arm (single pattern, or each arm of a regex set) before
	// emitting that arm's body, so every address except the entry-point
	// Split chain of a set program carries the sub-pattern it belongs to.
	curMatchSlot uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{insts: make([]Inst, 0, 16), matchSlots: make([]uint32, 0, 16)}
}

// Len returns the number of instructions emitted so far. It doubles as "the
// address the next Push will receive", used to patch a hole to "whatever
// comes next".
func (b *Builder) Len() uint32 {
	return conv.IntToUint32(len(b.insts))
}

// SetMatchSlot changes the sub-pattern tag Push attaches to subsequently
// emitted instructions.
func (b *Builder) SetMatchSlot(ms uint32) {
	b.curMatchSlot = ms
}

// Push appends inst and returns its address.
func (b *Builder) Push(inst Inst) uint32 {
	addr := b.Len()
	b.insts = append(b.insts, inst)
	b.matchSlots = append(b.matchSlots, b.curMatchSlot)
	return addr
}

// PushMatch emits a terminal Match instruction for the given sub-pattern.
func (b *Builder) PushMatch(pattern uint32) uint32 {
	return b.Push(Inst{Kind: KindMatch, Pattern: pattern})
}

// PushSave emits a Save instruction with an unpatched Goto hole.
func (b *Builder) PushSave(matchSlot, captureSlot uint32) uint32 {
	return b.Push(Inst{Kind: KindSave, MatchSlot: matchSlot, CaptureSlot: captureSlot, Goto: InvalidAddr})
}

// PushSplitHole emits a Split instruction with both branches unpatched.
func (b *Builder) PushSplitHole() uint32 {
	return b.Push(Inst{Kind: KindSplit, Goto1: InvalidAddr, Goto2: InvalidAddr})
}

// PushJumpHole emits a Jump instruction with an unpatched Goto hole.
func (b *Builder) PushJumpHole() uint32 {
	return b.Push(Inst{Kind: KindJump, Goto: InvalidAddr})
}

// PushChar emits a Char instruction with an unpatched Goto hole.
func (b *Builder) PushChar(c rune) uint32 {
	return b.Push(Inst{Kind: KindChar, Char: c, Goto: InvalidAddr})
}

// PushRanges emits a Ranges instruction with an unpatched Goto hole. ranges
// must already be sorted and non-overlapping; the caller (the compiler) owns
// that invariant.
func (b *Builder) PushRanges(ranges []RuneRange) uint32 {
	cp := make([]RuneRange, len(ranges))
	copy(cp, ranges)
	return b.Push(Inst{Kind: KindRanges, Ranges: cp, Goto: InvalidAddr})
}

// PushBytes emits a Bytes instruction with an unpatched Goto hole.
func (b *Builder) PushBytes(lo, hi byte) uint32 {
	return b.Push(Inst{Kind: KindBytes, ByteLo: lo, ByteHi: hi, Goto: InvalidAddr})
}

// PushEmptyLook emits an EmptyLook instruction with an unpatched Goto hole.
func (b *Builder) PushEmptyLook(look Look) uint32 {
	return b.Push(Inst{Kind: KindEmptyLook, Look: look, Goto: InvalidAddr})
}

// PatchGoto fills the Goto hole at addr. Valid for Save, Jump, Char, Ranges,
// Bytes and EmptyLook instructions.
func (b *Builder) PatchGoto(addr, target uint32) {
	b.insts[addr].Goto = target
}

// PatchGotoToNext fills the Goto hole at addr with "whatever instruction
// comes next" — the common case when a hole simply falls through to the
// following emission.
func (b *Builder) PatchGotoToNext(addr uint32) {
	b.insts[addr].Goto = b.Len()
}

// PatchSplit fills both branches of the Split at addr.
func (b *Builder) PatchSplit(addr, goto1, goto2 uint32) {
	b.insts[addr].Goto1 = goto1
	b.insts[addr].Goto2 = goto2
}

// Insts returns the instructions emitted so far. The caller must not hold
// onto this slice across further Push calls; Build takes ownership.
func (b *Builder) Insts() []Inst {
	return b.insts
}

// Options configures Build.
type Options struct {
	// SizeLimit bounds the compiled program's instruction count (measured
	// in bytes of the encoded program, approximated here as
	// len(Insts)*estimatedInstBytes). Zero means no limit.
	SizeLimit int
}

// estimatedInstBytes approximates one Inst's footprint for size-limit
// accounting. It need not be exact — only proportionate, since the limit
// exists to bound memory, not to match any wire format.
const estimatedInstBytes = 32

// BuildMeta is the program-level metadata Build copies into the Program.
type BuildMeta struct {
	NumSubPatterns    int
	CaptureSlotCounts []int
	AnchoredBegin     bool
	ByteOriented      bool
	PrefixLiterals    *literal.Seq
}

// Build finalizes the instructions pushed so far into a Program, enforcing
// opts.SizeLimit. Every Goto/Goto1/Goto2 hole must already be patched; an
// unpatched hole is a compiler bug and panics rather than returning an
// error, per the fatal-by-default error model: only CompiledTooBig
// (returned here as *SizeError) is a recoverable outcome.
func Build(b *Builder, opts Options, meta BuildMeta) (*Program, error) {
	if opts.SizeLimit > 0 {
		if used := len(b.insts) * estimatedInstBytes; used > opts.SizeLimit {
			return nil, &SizeError{LimitBytes: opts.SizeLimit, ActualInsts: len(b.insts)}
		}
	}
	for i, inst := range b.insts {
		switch inst.Kind {
		case KindSplit:
			if inst.Goto1 == InvalidAddr || inst.Goto2 == InvalidAddr {
				panic("prog: unpatched split at instruction " + strconv.Itoa(i))
			}
		case KindMatch:
			// no goto to check
		default:
			if inst.Goto == InvalidAddr {
				panic("prog: unpatched goto at instruction " + strconv.Itoa(i))
			}
		}
	}
	return &Program{
		Insts:             b.insts,
		InstMatchSlot:     b.matchSlots,
		NumSubPatterns:    meta.NumSubPatterns,
		CaptureSlotCounts: meta.CaptureSlotCounts,
		AnchoredBegin:     meta.AnchoredBegin,
		ByteOriented:      meta.ByteOriented,
		PrefixLiterals:    meta.PrefixLiterals,
	}, nil
}
