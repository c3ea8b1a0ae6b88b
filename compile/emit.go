package compile

import (
	"github.com/coregx/rxcore/ast"
	"github.com/coregx/rxcore/prog"
)

// emit appends the instructions for e starting at the builder's current
// position. It implements the emission rules: structural nodes (Concat,
// Alternate, Group, Repeat) recurse; leaf nodes push consuming or
// zero-width instructions.
func (c *compiler) emit(e *ast.Expr) error {
	switch e.Op {
	case ast.OpEmpty:
		return nil

	case ast.OpLiteral:
		return c.emitLiteral(e)

	case ast.OpAnyChar:
		return c.emitAnyChar(false)

	case ast.OpAnyCharNoNL:
		return c.emitAnyChar(true)

	case ast.OpClass:
		return c.emitClass(e.Class)

	case ast.OpStartLine:
		return c.emitLook(prog.LookStartLine)
	case ast.OpEndLine:
		return c.emitLook(prog.LookEndLine)
	case ast.OpStartText:
		return c.emitLook(prog.LookStartText)
	case ast.OpEndText:
		return c.emitLook(prog.LookEndText)
	case ast.OpWordBoundary:
		return c.emitLook(prog.LookWordBoundary)
	case ast.OpNotWordBoundary:
		return c.emitLook(prog.LookNotWordBoundary)

	case ast.OpGroup:
		return c.emitGroup(e)

	case ast.OpConcat:
		return c.emitConcat(e.Sub)

	case ast.OpAlternate:
		return c.emitAlternate(e.Sub)

	case ast.OpRepeat:
		return c.emitRepeat(e)

	default:
		panic("compile: unknown ast op")
	}
}

func (c *compiler) emitLook(look prog.Look) error {
	id := c.b.PushEmptyLook(look)
	c.b.PatchGotoToNext(id)
	return nil
}

func (c *compiler) emitGroup(e *ast.Expr) error {
	if !e.HasIndex {
		return c.emit(e.Sub[0])
	}
	slot := uint32(2 * (e.Index + 1))
	s0 := c.b.PushSave(c.matchSlot, slot)
	c.b.PatchGotoToNext(s0)
	if err := c.emit(e.Sub[0]); err != nil {
		return err
	}
	s1 := c.b.PushSave(c.matchSlot, slot+1)
	c.b.PatchGotoToNext(s1)
	return nil
}

func (c *compiler) emitConcat(subs []*ast.Expr) error {
	if c.reverse {
		for i := len(subs) - 1; i >= 0; i-- {
			if err := c.emit(subs[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for _, s := range subs {
		if err := c.emit(s); err != nil {
			return err
		}
	}
	return nil
}

// emitAlternate implements the right-leaning Split/Jump chain: every arm
// but the last gets a Split guarding it and a trailing Jump to the shared
// post-alternation address; the last arm just falls through to it.
func (c *compiler) emitAlternate(subs []*ast.Expr) error {
	return c.emitAlternateArms(len(subs), func(i int) error { return c.emit(subs[i]) })
}

// emitAlternateArms builds the generic right-leaning Split/Jump chain over
// n arms, each emitted by calling emitArm(i). Shared by ast-level Alternate
// nodes and the byte-mode compiler's synthetic alternations (case-fold
// orbits, multi-range character classes) that have no ast.Expr of their
// own to recurse into.
func (c *compiler) emitAlternateArms(n int, emitArm func(i int) error) error {
	if n == 0 {
		return nil
	}
	var jumps []uint32
	for i := 0; i < n; i++ {
		if i == n-1 {
			if err := emitArm(i); err != nil {
				return err
			}
			break
		}
		sp := c.b.PushSplitHole()
		start := c.b.Len()
		if err := emitArm(i); err != nil {
			return err
		}
		j := c.b.PushJumpHole()
		post := c.b.Len()
		c.b.PatchSplit(sp, start, post)
		jumps = append(jumps, j)
	}
	end := c.b.Len()
	for _, j := range jumps {
		c.b.PatchGoto(j, end)
	}
	return nil
}

func (c *compiler) emitRepeat(e *ast.Expr) error {
	body := e.Sub[0]
	switch e.Repeater {
	case ast.ZeroOrOne:
		return c.emitZeroOrOne(body, e.Greedy)
	case ast.ZeroOrMore:
		return c.emitZeroOrMore(body, e.Greedy)
	case ast.OneOrMore:
		return c.emitOneOrMore(body, e.Greedy)
	case ast.RepeatRange:
		if e.Max < 0 {
			for i := 0; i < e.Min; i++ {
				if err := c.emit(body); err != nil {
					return err
				}
			}
			return c.emitZeroOrMore(body, e.Greedy)
		}
		return c.emitBoundedRange(body, e.Min, e.Max, e.Greedy)
	default:
		panic("compile: unknown repeater")
	}
}

func (c *compiler) emitZeroOrOne(body *ast.Expr, greedy bool) error {
	sp := c.b.PushSplitHole()
	estart := c.b.Len()
	if err := c.emit(body); err != nil {
		return err
	}
	post := c.b.Len()
	c.patchGreedySplit(sp, estart, post, greedy)
	return nil
}

func (c *compiler) emitZeroOrMore(body *ast.Expr, greedy bool) error {
	sp := c.b.PushSplitHole()
	estart := c.b.Len()
	if err := c.emit(body); err != nil {
		return err
	}
	j := c.b.PushJumpHole()
	c.b.PatchGoto(j, sp)
	post := c.b.Len()
	c.patchGreedySplit(sp, estart, post, greedy)
	return nil
}

func (c *compiler) emitOneOrMore(body *ast.Expr, greedy bool) error {
	start := c.b.Len()
	if err := c.emit(body); err != nil {
		return err
	}
	sp := c.b.PushSplitHole()
	post := c.b.Len()
	c.patchGreedySplit(sp, start, post, greedy)
	return nil
}

// emitBoundedRange unrolls min required copies, then a flat fan-out of
// max-min optional copies that all share a single post-tail join address —
// avoiding the deeply nested Split chain a naive chain-of-'?' would build.
func (c *compiler) emitBoundedRange(body *ast.Expr, min, max int, greedy bool) error {
	for i := 0; i < min; i++ {
		if err := c.emit(body); err != nil {
			return err
		}
	}
	splits := make([]uint32, 0, max-min)
	starts := make([]uint32, 0, max-min)
	for i := 0; i < max-min; i++ {
		sp := c.b.PushSplitHole()
		estart := c.b.Len()
		if err := c.emit(body); err != nil {
			return err
		}
		splits = append(splits, sp)
		starts = append(starts, estart)
	}
	post := c.b.Len()
	for i, sp := range splits {
		c.patchGreedySplit(sp, starts[i], post, greedy)
	}
	return nil
}

// patchGreedySplit patches split so its higher-priority branch (Goto1)
// prefers repeating (continue) when greedy — or reverse mode forces the
// greedy ordering unconditionally, since a reverse program's only job is to
// locate a match boundary, not to honor a user's laziness preference.
func (c *compiler) patchGreedySplit(split, continueAddr, exitAddr uint32, greedy bool) {
	if greedy || c.reverse {
		c.b.PatchSplit(split, continueAddr, exitAddr)
	} else {
		c.b.PatchSplit(split, exitAddr, continueAddr)
	}
}
