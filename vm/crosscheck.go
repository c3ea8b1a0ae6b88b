package vm

import (
	"github.com/coregx/rxcore/backtrack"
	"github.com/coregx/rxcore/prog"
	"github.com/coregx/rxcore/rinput"
)

// CrossCheck runs p against input through both Exec and the backtracking
// oracle, returning true iff their boolean match results agree. Intended
// for tests that want to sample many pattern/input pairs without hand
// wiring the oracle each time; see spec's round-trip testable property that
// an NFA's boolean result must equal a brute-force backtracker's.
func CrossCheck(p *prog.Program, input rinput.Input, start int) (agree bool, execResult bool) {
	search := NewSearch(p.NumSubPatterns, p.CaptureSlotCounts)
	cache := NewCache(p)
	execResult = Exec(p, input, start, search, cache)

	oracleResult := backtrack.New(p).IsMatch(input)
	return execResult == oracleResult, execResult
}
