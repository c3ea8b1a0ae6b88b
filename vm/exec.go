package vm

import (
	"github.com/coregx/rxcore/prog"
	"github.com/coregx/rxcore/rinput"
)

// Exec runs p over input starting at byte offset start, reporting results
// into search. It returns true iff at least one sub-pattern matched.
//
// The main loop processes the haystack one position at a time. At each
// position it: (1) decides whether to exit or skip ahead via the prefilter
// when no threads are live; (2) seeds a fresh unanchored start thread unless
// a match has already been found or the program is anchored; (3) steps
// every live thread's consuming instruction against the character at the
// current position, building the next generation via epsilon closure; (4)
// advances to the next position, swapping generations.
func Exec(p *prog.Program, input rinput.Input, start int, search *Search, cache *Cache) bool {
	cache.resizeIfNeeded(p)
	cache.clist.set.Clear()
	cache.nlist.set.Clear()

	pf := rinput.BuildPrefilter(p.PrefixLiterals)

	at := input.At(start)
	matchedAny := false

	for {
		if cache.clist.set.IsEmpty() {
			if matchedAny {
				break
			}
			if p.AnchoredBegin {
				if at.Pos() > start {
					break
				}
			} else if pf != nil {
				next, ok := input.PrefixAt(pf, at)
				if !ok {
					break
				}
				at = next
			}
		}

		if !matchedAny && (!p.AnchoredBegin || at.Pos() == start) {
			seedFreshThread(cache, p, input, at)
		}

		atNext := input.At(input.NextPos(at))
		cache.seenMatches.Clear()

		for _, ip := range cache.clist.set.Values() {
			pattern := int(p.InstMatchSlot[ip])
			if cache.seenMatches.Contains(uint32(pattern)) {
				continue
			}
			if step(cache, p, input, ip, at, atNext, search) {
				cache.seenMatches.Insert(uint32(pattern))
				if search.QuitAfterFirstMatch {
					return true
				}
				matchedAny = true
				if p.NumSubPatterns == 1 {
					break
				}
			}
		}

		if input.IsEnd(at) {
			break
		}
		cache.clist, cache.nlist = cache.nlist, cache.clist
		cache.nlist.set.Clear()
		at = atNext
	}

	return matchedAny
}

// seedFreshThread injects the implicit unanchored .*? start thread at
// instruction 0 into clist, resetting the capture scratch for every
// sub-pattern first since a multi-pattern entry point's Split chain spans
// all of them.
func seedFreshThread(cache *Cache, p *prog.Program, input rinput.Input, at rinput.At) {
	for _, row := range cache.scratch {
		for i := range row {
			row[i] = -1
		}
	}
	addEpsilon(cache, cache.clist, p, input, at, 0)
}

// step processes one consuming/terminal instruction already present in
// clist against the character at the current position, reporting whether it
// is a Match and, if it consumes a character successfully, adding its
// continuation's epsilon closure to nlist.
func step(cache *Cache, p *prog.Program, input rinput.Input, ip uint32, at, atNext rinput.At, search *Search) bool {
	inst := &p.Insts[ip]
	pattern := int(p.InstMatchSlot[ip])

	switch inst.Kind {
	case prog.KindMatch:
		if search.Captures != nil {
			n := len(cache.clist.caps[ip])
			if m := p.CaptureSlotCounts[pattern]; m < n {
				n = m
			}
			search.Captures.CopyFromMatch(pattern, cache.clist.caps[ip][:n])
		}
		search.Matches[pattern] = true
		return true

	case prog.KindChar:
		ch, ok := input.Char(at)
		if ok && ch == inst.Char {
			seedScratchFrom(cache, pattern, cache.clist.caps[ip])
			addEpsilon(cache, cache.nlist, p, input, atNext, inst.Goto)
		}
		return false

	case prog.KindRanges:
		ch, ok := input.Char(at)
		if ok && inRanges(ch, inst.Ranges) {
			seedScratchFrom(cache, pattern, cache.clist.caps[ip])
			addEpsilon(cache, cache.nlist, p, input, atNext, inst.Goto)
		}
		return false

	case prog.KindBytes:
		ch, ok := input.Char(at)
		if ok {
			b := byte(ch)
			if b >= inst.ByteLo && b <= inst.ByteHi {
				seedScratchFrom(cache, pattern, cache.clist.caps[ip])
				addEpsilon(cache, cache.nlist, p, input, atNext, inst.Goto)
			}
		}
		return false

	case prog.KindSave, prog.KindSplit, prog.KindJump, prog.KindEmptyLook:
		// Never a real thread: addEpsilon inserts every instruction it
		// passes through into the target set before dispatching on kind, so
		// these show up here purely as visited-set artifacts. Harmless no-op.
		return false

	default:
		panic("vm: unknown instruction kind in step")
	}
}

func seedScratchFrom(cache *Cache, pattern int, row []int) {
	n := len(cache.scratch[pattern])
	copy(cache.scratch[pattern], row[:n])
}

func inRanges(ch rune, ranges []prog.RuneRange) bool {
	for _, r := range ranges {
		if ch >= r.Lo && ch <= r.Hi {
			return true
		}
	}
	return false
}

// addEpsilon explores the epsilon closure reachable from startIP without
// recursion, using an explicit stack of frames. It dedups against target's
// sparse set (so a lower-priority path reaching an already-visited
// instruction this position is simply dropped) and, on reaching a
// consuming/terminal instruction, snapshots the in-progress capture row for
// that instruction's sub-pattern into target.
func addEpsilon(cache *Cache, target *threadSet, p *prog.Program, input rinput.Input, at rinput.At, startIP uint32) {
	cache.stack = cache.stack[:0]
	cache.stack = append(cache.stack, frame{kind: frameIP, ip: startIP})

	for len(cache.stack) > 0 {
		f := cache.stack[len(cache.stack)-1]
		cache.stack = cache.stack[:len(cache.stack)-1]

		if f.kind == frameRestore {
			cache.scratch[f.pattern][f.slot] = f.oldVal
			continue
		}

		ip := f.ip
		if target.set.Contains(ip) {
			continue
		}
		target.set.Insert(ip)

		inst := &p.Insts[ip]
		switch inst.Kind {
		case prog.KindEmptyLook:
			if evalLook(inst.Look, input, at) {
				cache.stack = append(cache.stack, frame{kind: frameIP, ip: inst.Goto})
			}

		case prog.KindSave:
			pattern := int(inst.MatchSlot)
			slot := int(inst.CaptureSlot)
			old := cache.scratch[pattern][slot]
			cache.stack = append(cache.stack, frame{kind: frameRestore, pattern: pattern, slot: slot, oldVal: old})
			cache.scratch[pattern][slot] = at.Pos()
			cache.stack = append(cache.stack, frame{kind: frameIP, ip: inst.Goto})

		case prog.KindSplit:
			// Goto2 is pushed first so Goto1 pops (and is explored) first:
			// higher priority branch wins ties in the dense insertion order.
			cache.stack = append(cache.stack, frame{kind: frameIP, ip: inst.Goto2})
			cache.stack = append(cache.stack, frame{kind: frameIP, ip: inst.Goto1})

		case prog.KindJump:
			cache.stack = append(cache.stack, frame{kind: frameIP, ip: inst.Goto})

		case prog.KindChar, prog.KindRanges, prog.KindBytes, prog.KindMatch:
			pattern := int(p.InstMatchSlot[ip])
			n := p.CaptureSlotCounts[pattern]
			copy(target.caps[ip][:n], cache.scratch[pattern][:n])

		default:
			panic("vm: unknown instruction kind in epsilon closure")
		}
	}
}

// evalLook decides whether look holds at at without consuming input.
func evalLook(look prog.Look, input rinput.Input, at rinput.At) bool {
	switch look {
	case prog.LookStartText:
		return input.IsBeginning(at)
	case prog.LookEndText:
		return input.IsEnd(at)
	case prog.LookStartLine:
		prev, ok := input.PrevChar(at)
		return !ok || prev == '\n'
	case prog.LookEndLine:
		next, ok := input.Char(at)
		return !ok || next == '\n'
	case prog.LookWordBoundary, prog.LookNotWordBoundary:
		prev, okPrev := input.PrevChar(at)
		next, okNext := input.Char(at)
		prevIsWord := okPrev && rinput.IsWordChar(prev)
		nextIsWord := okNext && rinput.IsWordChar(next)
		boundary := prevIsWord != nextIsWord
		if look == prog.LookNotWordBoundary {
			return !boundary
		}
		return boundary
	default:
		panic("vm: unknown look assertion")
	}
}
