// Package rinput implements the input adapter the NFA engine steps through:
// a position in the haystack plus the neighbor-character queries look-around
// assertions need, in either codepoint or raw-byte orientation.
package rinput

import (
	"unicode"
	"unicode/utf8"

	"github.com/coregx/rxcore/literal"
	"github.com/coregx/rxcore/prefilter"
)

// At is an opaque cursor into an Input's haystack. Two At values from
// different Inputs must never be compared or mixed.
type At struct {
	pos int
}

// Pos returns the byte offset this cursor sits at.
func (a At) Pos() int { return a.pos }

// Input presents the haystack either as Unicode codepoints (CharInput) or
// as raw bytes (ByteInput), exposing exactly what EmptyLook evaluation and
// the main loop need: the position, the codepoint beginning there, the
// codepoint immediately before it, and prefix-literal skip-ahead.
//
// "next codepoint" in the look-around sense (used to decide if a boundary
// at pos is between a word and non-word character) is simply Char(at) — the
// codepoint starting at this position looking forward; PrevChar(at) is the
// codepoint ending at this position looking backward. The two together are
// everything WordBoundary/NotWordBoundary need.
type Input interface {
	// At returns the cursor for byte offset pos. pos must be a valid
	// position in the haystack (0 <= pos <= Len()).
	At(pos int) At

	// Char returns the codepoint beginning at at's position, or (0, false)
	// at the end of input.
	Char(at At) (rune, bool)

	// PrevChar returns the codepoint immediately before at's position, or
	// (0, false) at the beginning of input.
	PrevChar(at At) (rune, bool)

	// NextPos returns the position immediately after the codepoint at at.
	// If at is already at the end, it returns at.Pos() unchanged.
	NextPos(at At) int

	// IsBeginning reports whether at sits at offset 0.
	IsBeginning(at At) bool

	// IsEnd reports whether at sits at the end of the haystack.
	IsEnd(at At) bool

	// PrefixAt scans forward from at for the next occurrence of any
	// literal in prefixes, returning the position it begins at. ok is
	// false when no occurrence exists at or after at.
	PrefixAt(pf prefilter.Prefilter, at At) (next At, ok bool)

	// Len returns the haystack length in bytes.
	Len() int

	// Bytes returns the raw haystack bytes backing this Input, for
	// prefilter scanning.
	Bytes() []byte
}

// CharInput walks the haystack as a sequence of UTF-8 codepoints.
type CharInput struct {
	b []byte
}

// NewCharInput wraps b for codepoint-oriented iteration.
func NewCharInput(b []byte) *CharInput { return &CharInput{b: b} }

func (c *CharInput) At(pos int) At { return At{pos: pos} }

func (c *CharInput) Char(at At) (rune, bool) {
	if at.pos >= len(c.b) {
		return 0, false
	}
	r, size := utf8.DecodeRune(c.b[at.pos:])
	if r == utf8.RuneError && size <= 1 {
		return utf8.RuneError, true
	}
	return r, true
}

func (c *CharInput) PrevChar(at At) (rune, bool) {
	if at.pos <= 0 {
		return 0, false
	}
	r, _ := utf8.DecodeLastRune(c.b[:at.pos])
	return r, true
}

func (c *CharInput) NextPos(at At) int {
	if at.pos >= len(c.b) {
		return at.pos
	}
	_, size := utf8.DecodeRune(c.b[at.pos:])
	if size == 0 {
		size = 1
	}
	return at.pos + size
}

func (c *CharInput) IsBeginning(at At) bool { return at.pos == 0 }
func (c *CharInput) IsEnd(at At) bool       { return at.pos >= len(c.b) }
func (c *CharInput) Len() int               { return len(c.b) }
func (c *CharInput) Bytes() []byte          { return c.b }

func (c *CharInput) PrefixAt(pf prefilter.Prefilter, at At) (At, bool) {
	return prefixAt(pf, c.b, at)
}

// ByteInput walks the haystack one raw byte at a time, for byte-oriented
// (DFA) programs.
type ByteInput struct {
	b []byte
}

// NewByteInput wraps b for byte-oriented iteration.
func NewByteInput(b []byte) *ByteInput { return &ByteInput{b: b} }

func (b *ByteInput) At(pos int) At { return At{pos: pos} }

func (b *ByteInput) Char(at At) (rune, bool) {
	if at.pos >= len(b.b) {
		return 0, false
	}
	return rune(b.b[at.pos]), true
}

func (b *ByteInput) PrevChar(at At) (rune, bool) {
	if at.pos <= 0 {
		return 0, false
	}
	return rune(b.b[at.pos-1]), true
}

func (b *ByteInput) NextPos(at At) int {
	if at.pos >= len(b.b) {
		return at.pos
	}
	return at.pos + 1
}

func (b *ByteInput) IsBeginning(at At) bool { return at.pos == 0 }
func (b *ByteInput) IsEnd(at At) bool       { return at.pos >= len(b.b) }
func (b *ByteInput) Len() int               { return len(b.b) }
func (b *ByteInput) Bytes() []byte          { return b.b }

func (b *ByteInput) PrefixAt(pf prefilter.Prefilter, at At) (At, bool) {
	return prefixAt(pf, b.b, at)
}

// prefixAt implements the prefix_at(prefixes, pos) contract shared by both
// input orientations: delegate to the black-box prefilter accelerator and
// translate its answer back into an At.
func prefixAt(pf prefilter.Prefilter, b []byte, at At) (At, bool) {
	if pf == nil {
		return at, true
	}
	pos := pf.Find(b, at.pos)
	if pos < 0 {
		return At{}, false
	}
	return At{pos: pos}, true
}

// BuildPrefilter turns a Program's extracted prefix literals into the
// black-box accelerator PrefixAt calls into. Returns nil when prefixes is
// nil or empty, in which case PrefixAt is a no-op that always succeeds at
// the cursor it was given.
func BuildPrefilter(prefixes *literal.Seq) prefilter.Prefilter {
	if prefixes == nil || prefixes.IsEmpty() {
		return nil
	}
	return prefilter.NewBuilder(prefixes, nil).Build()
}

// IsWordChar reports whether r counts as a "word" character for \b / \B
// evaluation: a Unicode letter, a decimal digit, or underscore.
func IsWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
