package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/rxcore/literal"
)

// ahoCorasickPrefilter wraps an Aho-Corasick automaton as a Prefilter.
//
// This is the strategy for literal sequences too large or too short for
// Teddy's SIMD lanes (more than 8 literals, or literals shorter than 3
// bytes): a single automaton pass finds the first occurrence of any
// literal in one O(n) scan, independent of how many literals there are.
//
// Performance: roughly constant per-byte cost regardless of pattern count,
// which is what makes it the right fallback once Teddy's lane budget is
// exhausted.
type ahoCorasickPrefilter struct {
	automaton *ahocorasick.Automaton
	complete  bool
	litLen    int // valid only when complete && all literals share a length
}

// newAhoCorasickPrefilter builds an Aho-Corasick automaton over seq's
// literals. Returns nil if the automaton fails to build (e.g. seq is
// empty) so callers can fall back to no prefilter.
func newAhoCorasickPrefilter(seq *literal.Seq) Prefilter {
	if seq == nil || seq.IsEmpty() {
		return nil
	}

	builder := ahocorasick.NewBuilder()
	complete := true
	litLen := -1
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		builder.AddPattern(lit.Bytes)
		if !lit.Complete {
			complete = false
		}
		if litLen == -1 {
			litLen = len(lit.Bytes)
		} else if litLen != len(lit.Bytes) {
			litLen = -1
			complete = false
		}
	}

	auto, err := builder.Build()
	if err != nil {
		return nil
	}

	return &ahoCorasickPrefilter{
		automaton: auto,
		complete:  complete,
		litLen:    litLen,
	}
}

// Find implements Prefilter.Find using the Aho-Corasick automaton.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	m := p.automaton.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// IsComplete implements Prefilter.IsComplete.
func (p *ahoCorasickPrefilter) IsComplete() bool {
	return p.complete
}

// LiteralLen implements Prefilter.LiteralLen.
//
// Only meaningful when every literal in the sequence shares the same
// length; otherwise the caller must verify the match length itself.
func (p *ahoCorasickPrefilter) LiteralLen() int {
	if p.complete && p.litLen > 0 {
		return p.litLen
	}
	return 0
}

// HeapBytes implements Prefilter.HeapBytes.
func (p *ahoCorasickPrefilter) HeapBytes() int {
	// The automaton's internal tables dominate memory use; we don't have
	// visibility into them, so report 0 rather than guess.
	return 0
}
