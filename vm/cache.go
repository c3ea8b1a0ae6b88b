package vm

import (
	"github.com/coregx/rxcore/internal/sparse"
	"github.com/coregx/rxcore/prog"
)

// threadSet is one generation of live threads: a sparse set of instruction
// addresses (always consuming or terminal instructions — Char, Ranges,
// Bytes, Match — never Save/Split/Jump/EmptyLook, which are resolved away
// during epsilon closure) plus, for each address, the capture row the
// thread that reached it was carrying at the moment it was inserted.
type threadSet struct {
	set  *sparse.SparseSet
	caps [][]int // caps[addr] valid only while set.Contains(addr)
}

func newThreadSet(numInsts, maxSlots int) *threadSet {
	caps := make([][]int, numInsts)
	for i := range caps {
		caps[i] = make([]int, maxSlots)
	}
	return &threadSet{
		set:  sparse.NewSparseSet(uint32(numInsts)),
		caps: caps,
	}
}

// frameKind distinguishes the two stack frame shapes addEpsilon pushes.
type frameKind uint8

const (
	frameIP frameKind = iota
	frameRestore
)

// frame is one entry on the explicit epsilon-closure stack. A frameIP asks
// to process the instruction at ip; a frameRestore undoes a single capture
// cell mutation a Save made on the way down, once that Save's subtree has
// been fully explored.
type frame struct {
	kind frameKind

	// frameIP
	ip uint32

	// frameRestore
	pattern int
	slot    int
	oldVal  int
}

// Cache holds every scratch buffer Exec needs across one search, sized to a
// particular Program and reused across calls to amortize allocation. Pass
// the same Cache to repeated Exec calls against the same Program (or
// programs of matching shape) to avoid reallocating on every search.
type Cache struct {
	clist, nlist *threadSet

	// seenMatches tracks, within one position's thread loop, which
	// sub-patterns have already reported a match this position — lower
	// priority threads of an already-matched sub-pattern are skipped
	// rather than stepped.
	seenMatches *sparse.SparseSet

	// scratch[pattern] is the in-progress capture row epsilon closure
	// mutates via Save, one row per sub-pattern, shared across the whole
	// stack-based traversal of a single add() call.
	scratch [][]int

	stack []frame

	numInsts       int
	numSubPatterns int
}

// NewCache allocates a Cache sized for p.
func NewCache(p *prog.Program) *Cache {
	maxSlots := p.MaxCaptureSlots()
	c := &Cache{
		clist:          newThreadSet(len(p.Insts), maxSlots),
		nlist:          newThreadSet(len(p.Insts), maxSlots),
		seenMatches:    sparse.NewSparseSet(uint32(p.NumSubPatterns)),
		numInsts:       len(p.Insts),
		numSubPatterns: p.NumSubPatterns,
	}
	c.scratch = make([][]int, p.NumSubPatterns)
	for i, n := range p.CaptureSlotCounts {
		c.scratch[i] = make([]int, n)
	}
	return c
}

// resizeIfNeeded reallocates every buffer when p's shape no longer matches
// what this Cache was built for (a different program reusing the same
// Cache value).
func (c *Cache) resizeIfNeeded(p *prog.Program) {
	if c.numInsts == len(p.Insts) && c.numSubPatterns == p.NumSubPatterns {
		return
	}
	*c = *NewCache(p)
}
