package compile

import (
	"sort"
	"unicode"

	"github.com/coregx/rxcore/ast"
	"github.com/coregx/rxcore/prog"
)

// maxRune is the highest valid Unicode codepoint.
const maxRune = 0x10FFFF

// surrogateLo/surrogateHi bound the UTF-16 surrogate range, which never
// appears as a standalone Unicode scalar value.
const surrogateLo, surrogateHi = 0xD800, 0xDFFF

func (c *compiler) emitLiteral(e *ast.Expr) error {
	order := e.Chars
	if c.reverse {
		order = make([]rune, len(e.Chars))
		for i, j := 0, len(e.Chars)-1; j >= 0; i, j = i+1, j-1 {
			order[i] = e.Chars[j]
		}
	}
	for _, ch := range order {
		if err := c.emitLiteralChar(ch, e.CaseInsensitive); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) emitLiteralChar(ch rune, caseInsensitive bool) error {
	if c.byteMode {
		return c.emitByteLiteralChar(ch, caseInsensitive)
	}
	if !caseInsensitive {
		id := c.b.PushChar(ch)
		c.b.PatchGotoToNext(id)
		return nil
	}
	ranges := foldRanges(ch)
	if len(ranges) == 1 && ranges[0].Lo == ranges[0].Hi {
		id := c.b.PushChar(ranges[0].Lo)
		c.b.PatchGotoToNext(id)
		return nil
	}
	id := c.b.PushRanges(ranges)
	c.b.PatchGotoToNext(id)
	return nil
}

// foldRanges returns the case-fold orbit of ch (every codepoint that's
// case-equivalent to it, including ch itself) as sorted, merged ranges.
func foldRanges(ch rune) []prog.RuneRange {
	runes := []rune{ch}
	for f := unicode.SimpleFold(ch); f != ch; f = unicode.SimpleFold(f) {
		runes = append(runes, f)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	ranges := make([]prog.RuneRange, 0, len(runes))
	for _, r := range runes {
		if n := len(ranges); n > 0 && ranges[n-1].Hi+1 == r {
			ranges[n-1].Hi = r
		} else {
			ranges = append(ranges, prog.RuneRange{Lo: r, Hi: r})
		}
	}
	return ranges
}

func (c *compiler) emitAnyChar(noNL bool) error {
	if c.byteMode {
		return c.emitByteAnyChar(noNL)
	}
	var ranges []prog.RuneRange
	if noNL {
		ranges = []prog.RuneRange{
			{Lo: 0, Hi: '\n' - 1},
			{Lo: '\n' + 1, Hi: surrogateLo - 1},
			{Lo: surrogateHi + 1, Hi: maxRune},
		}
	} else {
		ranges = []prog.RuneRange{
			{Lo: 0, Hi: surrogateLo - 1},
			{Lo: surrogateHi + 1, Hi: maxRune},
		}
	}
	id := c.b.PushRanges(ranges)
	c.b.PatchGotoToNext(id)
	return nil
}

func (c *compiler) emitClass(class []ast.RuneRange) error {
	if c.byteMode {
		return c.emitByteClass(class)
	}
	if len(class) == 1 && class[0].Lo == class[0].Hi {
		id := c.b.PushChar(class[0].Lo)
		c.b.PatchGotoToNext(id)
		return nil
	}
	ranges := make([]prog.RuneRange, len(class))
	for i, r := range class {
		ranges[i] = prog.RuneRange{Lo: r.Lo, Hi: r.Hi}
	}
	id := c.b.PushRanges(ranges)
	c.b.PatchGotoToNext(id)
	return nil
}
