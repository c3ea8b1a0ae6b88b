// Package rxcore is a minimal regular expression core: compile a pattern (or
// a set of patterns) into a Thompson NFA program and run it with a Pike VM,
// reporting match boundaries and capture groups.
//
// Basic usage:
//
//	re, err := rxcore.Compile(`(\w+)@(\w+)\.(\w+)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if re.MatchString("user@example.com") {
//	    loc := re.FindStringSubmatchIndex("user@example.com")
//	    fmt.Println(loc)
//	}
//
// rxcore deliberately stays small: one NFA engine, no lazy DFA, no
// backreferences, no Replace. See SPEC_FULL.md for the full scope this core
// implements.
package rxcore

import (
	"regexp/syntax"
	"sync"

	"github.com/coregx/rxcore/compile"
	"github.com/coregx/rxcore/prog"
	"github.com/coregx/rxcore/rinput"
	"github.com/coregx/rxcore/vm"
)

// Regex is a single compiled pattern.
//
// A Regex is safe to use concurrently from multiple goroutines: every
// search borrows its own vm.Cache from an internal pool rather than
// mutating shared state, since a vm.Cache itself is never safe for
// concurrent reuse.
type Regex struct {
	prog    *prog.Program
	pattern string
	pool    sync.Pool
}

// Compile compiles a single pattern, using Perl-compatible syntax (the same
// dialect Go's stdlib regexp package accepts).
func Compile(pattern string) (*Regex, error) {
	syn, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, err
	}
	p, err := compile.Compile(syn.Simplify(), compile.Options{})
	if err != nil {
		return nil, err
	}
	r := &Regex{prog: p, pattern: pattern}
	r.pool.New = func() any { return vm.NewCache(p) }
	return r, nil
}

// MustCompile is like Compile but panics if pattern fails to compile.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("rxcore: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// String returns the source pattern text.
func (r *Regex) String() string { return r.pattern }

// NumSubexp returns the number of capturing groups (not counting the whole
// match).
func (r *Regex) NumSubexp() int {
	return r.prog.CaptureSlotCounts[0]/2 - 1
}

func (r *Regex) getCache() *vm.Cache {
	return r.pool.Get().(*vm.Cache)
}

func (r *Regex) putCache(c *vm.Cache) {
	r.pool.Put(c)
}

func (r *Regex) search(b []byte, quitAfterFirst bool) (*vm.Search, bool) {
	input := rinput.NewCharInput(b)
	search := vm.NewSearch(r.prog.NumSubPatterns, r.prog.CaptureSlotCounts)
	search.QuitAfterFirstMatch = quitAfterFirst
	cache := r.getCache()
	matched := vm.Exec(r.prog, input, 0, search, cache)
	r.putCache(cache)
	return search, matched
}

// Match reports whether b contains a match of the pattern.
func (r *Regex) Match(b []byte) bool {
	_, matched := r.search(b, true)
	return matched
}

// MatchString reports whether s contains a match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns the leftmost match in b, or nil if there is none.
func (r *Regex) Find(b []byte) []byte {
	loc := r.FindIndex(b)
	if loc == nil {
		return nil
	}
	return b[loc[0]:loc[1]]
}

// FindString is like Find but operates on and returns a string.
func (r *Regex) FindString(s string) string {
	loc := r.FindIndex([]byte(s))
	if loc == nil {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// FindIndex returns a two-element slice [start, end) describing the
// leftmost match in b, or nil if there is none.
func (r *Regex) FindIndex(b []byte) []int {
	search, matched := r.search(b, false)
	if !matched {
		return nil
	}
	caps := search.Captures.Captures(0)
	return []int{caps[0], caps[1]}
}

// FindStringIndex is like FindIndex but operates on a string.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindSubmatchIndex returns index pairs for the leftmost match and every
// capture group: result[2*i:2*i+2] is group i's [start, end), with group 0
// the whole match. An unmatched group reports [-1, -1]. Returns nil if
// there is no match.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	search, matched := r.search(b, false)
	if !matched {
		return nil
	}
	return append([]int(nil), search.Captures.Captures(0)...)
}

// FindStringSubmatchIndex is like FindSubmatchIndex but operates on a
// string.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// FindSubmatch returns the leftmost match and its capture groups as byte
// slices; group 0 is the whole match. An unmatched group is nil. Returns
// nil if there is no match.
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	loc := r.FindSubmatchIndex(b)
	if loc == nil {
		return nil
	}
	groups := make([][]byte, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 || end < 0 {
			continue
		}
		groups[i] = b[start:end]
	}
	return groups
}

// FindStringSubmatch is like FindSubmatch but operates on and returns
// strings.
func (r *Regex) FindStringSubmatch(s string) []string {
	groups := r.FindSubmatch([]byte(s))
	if groups == nil {
		return nil
	}
	result := make([]string, len(groups))
	for i, g := range groups {
		if g != nil {
			result[i] = string(g)
		}
	}
	return result
}

// RegexSet is a compiled set of patterns tested together in a single pass:
// every pattern that matches the same input is reported, not just the
// first.
type RegexSet struct {
	prog     *prog.Program
	patterns []string
	pool     sync.Pool
}

// CompileSet compiles patterns as a regex set.
func CompileSet(patterns []string) (*RegexSet, error) {
	syns := make([]*syntax.Regexp, len(patterns))
	for i, pat := range patterns {
		syn, err := syntax.Parse(pat, syntax.Perl)
		if err != nil {
			return nil, err
		}
		syns[i] = syn.Simplify()
	}
	p, err := compile.CompileMany(syns, compile.Options{})
	if err != nil {
		return nil, err
	}
	rs := &RegexSet{prog: p, patterns: append([]string(nil), patterns...)}
	rs.pool.New = func() any { return vm.NewCache(p) }
	return rs, nil
}

// Matches runs every pattern in the set against b, returning which ones
// matched. result[i] is true iff patterns[i] (in CompileSet's order)
// matched somewhere in b.
func (rs *RegexSet) Matches(b []byte) []bool {
	input := rinput.NewCharInput(b)
	search := vm.NewSearch(rs.prog.NumSubPatterns, rs.prog.CaptureSlotCounts)
	cache := rs.pool.Get().(*vm.Cache)
	vm.Exec(rs.prog, input, 0, search, cache)
	rs.pool.Put(cache)
	return search.Matches
}

// MatchesString is like Matches but operates on a string.
func (rs *RegexSet) MatchesString(s string) []bool {
	return rs.Matches([]byte(s))
}
