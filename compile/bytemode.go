package compile

import (
	"errors"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/rxcore/ast"
)

// ErrClassTooLargeForByteMode is returned when a byte-oriented (DFA) compile
// meets a non-ASCII character class wide enough that expanding it
// codepoint-by-codepoint would be wasteful. Splitting an arbitrary rune
// range into minimal UTF-8 byte-range sequences needs the same Unicode
// class expansion tables spec.md places outside this core's scope; the
// byte-oriented path here instead only promises exact results for ASCII
// ranges and small non-ASCII classes, where per-codepoint expansion is
// cheap.
var ErrClassTooLargeForByteMode = errors.New("compile: character class too large to expand in byte-oriented mode")

// maxByteModeClassExpansion bounds how many non-ASCII codepoints a class
// may expand to before emitByteClass gives up.
const maxByteModeClassExpansion = 64

// emitByteChain encodes ch as UTF-8 and chains one Bytes instruction per
// encoded byte.
func (c *compiler) emitByteChain(ch rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], ch)
	for _, bt := range buf[:n] {
		id := c.b.PushBytes(bt, bt)
		c.b.PatchGotoToNext(id)
	}
}

func (c *compiler) emitByteLiteralChar(ch rune, caseInsensitive bool) error {
	if !caseInsensitive {
		c.emitByteChain(ch)
		return nil
	}
	runes := []rune{ch}
	for f := unicode.SimpleFold(ch); f != ch; f = unicode.SimpleFold(f) {
		runes = append(runes, f)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return c.emitAlternateArms(len(runes), func(i int) error {
		c.emitByteChain(runes[i])
		return nil
	})
}

// emitByteAnyChar restricts '.' in byte-oriented mode to ASCII: a
// full-Unicode '.' needs the same UTF-8 range-splitting tables as
// emitByteClass, which this core deliberately doesn't implement.
func (c *compiler) emitByteAnyChar(noNL bool) error {
	if noNL {
		return c.emitAlternateArms(2, func(i int) error {
			if i == 0 {
				id := c.b.PushBytes(0x00, '\n'-1)
				c.b.PatchGotoToNext(id)
			} else {
				id := c.b.PushBytes('\n'+1, 0x7F)
				c.b.PatchGotoToNext(id)
			}
			return nil
		})
	}
	id := c.b.PushBytes(0x00, 0x7F)
	c.b.PatchGotoToNext(id)
	return nil
}

func (c *compiler) emitByteClass(class []ast.RuneRange) error {
	var asciiRanges []ast.RuneRange
	var wideRunes []rune

	for _, r := range class {
		switch {
		case r.Hi <= 0x7F:
			asciiRanges = append(asciiRanges, r)
		case r.Lo > 0x7F:
			for r2 := r.Lo; r2 <= r.Hi; r2++ {
				wideRunes = append(wideRunes, r2)
				if len(wideRunes) > maxByteModeClassExpansion {
					return ErrClassTooLargeForByteMode
				}
			}
		default:
			// Straddles the ASCII boundary: split at 0x7F.
			asciiRanges = append(asciiRanges, ast.RuneRange{Lo: r.Lo, Hi: 0x7F})
			for r2 := rune(0x80); r2 <= r.Hi; r2++ {
				wideRunes = append(wideRunes, r2)
				if len(wideRunes) > maxByteModeClassExpansion {
					return ErrClassTooLargeForByteMode
				}
			}
		}
	}

	n := len(asciiRanges) + len(wideRunes)
	if n == 0 {
		return nil
	}
	return c.emitAlternateArms(n, func(i int) error {
		if i < len(asciiRanges) {
			r := asciiRanges[i]
			id := c.b.PushBytes(byte(r.Lo), byte(r.Hi))
			c.b.PatchGotoToNext(id)
			return nil
		}
		c.emitByteChain(wideRunes[i-len(asciiRanges)])
		return nil
	})
}
