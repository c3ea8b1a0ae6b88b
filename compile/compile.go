// Package compile turns a parsed expression into a prog.Program: a
// Thompson-construction compiler that emits instructions in a single forward
// pass, patching Split and Jump targets once the address they point to is
// known.
package compile

import (
	"regexp/syntax"

	"github.com/coregx/rxcore/ast"
	"github.com/coregx/rxcore/internal/conv"
	"github.com/coregx/rxcore/literal"
	"github.com/coregx/rxcore/prog"
)

// Options configures a single compilation.
type Options struct {
	// SizeLimit bounds the compiled program, in the same units as
	// prog.Options.SizeLimit. Zero means no limit.
	SizeLimit int

	// Reverse compiles a program that matches the reverse of the input:
	// Concat children and Literal codepoints are emitted back to front, and
	// every quantifier's greedy/non-greedy branch order collapses to the
	// greedy ordering. A reverse program never reports capture positions a
	// caller should trust — it exists only to locate an anchored match
	// start given a known end.
	Reverse bool

	// DFA compiles a byte-oriented program (KindBytes instead of
	// KindChar/KindRanges) — the representation a lazy DFA would consume.
	DFA bool
}

// Compile compiles a single parsed pattern.
func Compile(syn *syntax.Regexp, opts Options) (*prog.Program, error) {
	p, err := CompileMany([]*syntax.Regexp{syn}, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CompileMany compiles N patterns as a single program: a regex set when
// len(syns) > 1, or an ordinary single-pattern program when len(syns) == 1.
// Each pattern gets its own match slot, its own capture vector layout, and
// its own terminal Match instruction; priority across patterns follows
// their order in syns.
func CompileMany(syns []*syntax.Regexp, opts Options) (*prog.Program, error) {
	exprs, err := ast.FromSyntaxMany(syns)
	if err != nil {
		return nil, err
	}

	b := prog.NewBuilder()
	c := &compiler{b: b, reverse: opts.Reverse, byteMode: opts.DFA}

	captureSlotCounts := make([]int, len(exprs))
	for i, e := range exprs {
		captureSlotCounts[i] = 2*ast.NumCaptureGroups(e) + 2
	}

	if len(exprs) == 1 {
		if err := c.compileSinglePattern(exprs[0]); err != nil {
			return nil, err
		}
	} else {
		if err := c.compileSet(exprs); err != nil {
			return nil, err
		}
	}

	anchored := true
	for _, e := range exprs {
		if !startsAnchored(e) {
			anchored = false
			break
		}
	}

	prefixes := extractPrefixLiterals(syns)

	return prog.Build(b, prog.Options{SizeLimit: opts.SizeLimit}, prog.BuildMeta{
		NumSubPatterns:    len(exprs),
		CaptureSlotCounts: captureSlotCounts,
		AnchoredBegin:     anchored,
		ByteOriented:      opts.DFA,
		PrefixLiterals:    prefixes,
	})
}

// compiler holds the state threaded through one recursive emission pass.
type compiler struct {
	b         *prog.Builder
	reverse   bool
	byteMode  bool
	matchSlot uint32 // which sub-pattern's Save/Match instructions belong to
}

func (c *compiler) compileSinglePattern(e *ast.Expr) error {
	c.matchSlot = 0
	c.b.SetMatchSlot(0)
	s0 := c.b.PushSave(0, 0)
	c.b.PatchGotoToNext(s0)
	if err := c.emit(e); err != nil {
		return err
	}
	s1 := c.b.PushSave(0, 1)
	c.b.PatchGotoToNext(s1)
	c.b.PushMatch(0)
	return nil
}

// compileSet emits the top-level priority chain for a regex set. Unlike an
// ordinary Alternate node, each arm here is terminal (it ends in its own
// Match instruction, never falling through to shared continuation code), so
// no join Jump is needed after any arm — only the Split that forks into it.
func (c *compiler) compileSet(exprs []*ast.Expr) error {
	for i, e := range exprs {
		isLast := i == len(exprs)-1

		var sp uint32
		if !isLast {
			sp = c.b.PushSplitHole()
		}
		start := c.b.Len()

		c.matchSlot = conv.IntToUint32(i)
		c.b.SetMatchSlot(c.matchSlot)
		s0 := c.b.PushSave(c.matchSlot, 0)
		c.b.PatchGotoToNext(s0)
		if err := c.emit(e); err != nil {
			return err
		}
		s1 := c.b.PushSave(c.matchSlot, 1)
		c.b.PatchGotoToNext(s1)
		c.b.PushMatch(c.matchSlot)

		if !isLast {
			next := c.b.Len()
			c.b.PatchSplit(sp, start, next)
		}
	}
	return nil
}

// startsAnchored reports whether e always requires the match to begin at
// the absolute start of the text. Only a leading StartText counts: a
// leading StartLine assertion is satisfied after any '\n', so it does not
// guarantee the engine can skip scanning ahead.
func startsAnchored(e *ast.Expr) bool {
	switch e.Op {
	case ast.OpStartText:
		return true
	case ast.OpConcat:
		if len(e.Sub) == 0 {
			return false
		}
		return startsAnchored(e.Sub[0])
	case ast.OpGroup:
		if len(e.Sub) == 0 {
			return false
		}
		return startsAnchored(e.Sub[0])
	case ast.OpAlternate:
		if len(e.Sub) == 0 {
			return false
		}
		for _, s := range e.Sub {
			if !startsAnchored(s) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// extractPrefixLiterals builds the prefix-literal sequence consulted by the
// input adapter's black-box prefix_at contract. For a set, the literals are
// extracted from a synthetic alternation of every sub-pattern so one Seq
// covers the whole set, matching the "literals found from a Unicode-based
// program" wiring in the set-compilation path this core generalizes.
func extractPrefixLiterals(syns []*syntax.Regexp) *literal.Seq {
	ext := literal.New(literal.DefaultConfig())
	if len(syns) == 1 {
		seq := ext.ExtractPrefixes(syns[0])
		if seq == nil || seq.IsEmpty() {
			return nil
		}
		return seq
	}
	combined := &syntax.Regexp{Op: syntax.OpAlternate, Sub: syns}
	seq := ext.ExtractPrefixes(combined)
	if seq == nil || seq.IsEmpty() {
		return nil
	}
	return seq
}
