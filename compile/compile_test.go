package compile

import (
	"regexp/syntax"
	"testing"

	"github.com/coregx/rxcore/prog"
)

func mustParse(t *testing.T, pattern string) *syntax.Regexp {
	t.Helper()
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		t.Fatalf("syntax.Parse(%q): %v", pattern, err)
	}
	return re.Simplify()
}

func TestCompileLiteral(t *testing.T) {
	p, err := Compile(mustParse(t, "abc"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.NumSubPatterns != 1 {
		t.Fatalf("NumSubPatterns = %d, want 1", p.NumSubPatterns)
	}
	if p.CaptureSlotCounts[0] != 2 {
		t.Fatalf("CaptureSlotCounts[0] = %d, want 2", p.CaptureSlotCounts[0])
	}
	// Save(0) Char(a) Char(b) Char(c) Save(1) Match(0)
	wantKinds := []prog.Kind{prog.KindSave, prog.KindChar, prog.KindChar, prog.KindChar, prog.KindSave, prog.KindMatch}
	if len(p.Insts) != len(wantKinds) {
		t.Fatalf("len(Insts) = %d, want %d: %+v", len(p.Insts), len(wantKinds), p.Insts)
	}
	for i, k := range wantKinds {
		if p.Insts[i].Kind != k {
			t.Errorf("inst %d kind = %v, want %v", i, p.Insts[i].Kind, k)
		}
	}
}

func TestCompileAnchoredBegin(t *testing.T) {
	p, err := Compile(mustParse(t, "^foo"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !p.AnchoredBegin {
		t.Fatal("want AnchoredBegin = true for \\Afoo-equivalent pattern")
	}

	p2, err := Compile(mustParse(t, "foo"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p2.AnchoredBegin {
		t.Fatal("want AnchoredBegin = false for unanchored pattern")
	}
}

func TestCompileGroupEmitsSavePair(t *testing.T) {
	p, err := Compile(mustParse(t, "a(b+)c"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.CaptureSlotCounts[0] != 4 {
		t.Fatalf("CaptureSlotCounts[0] = %d, want 4", p.CaptureSlotCounts[0])
	}
	var saveSlots []uint32
	for _, inst := range p.Insts {
		if inst.Kind == prog.KindSave {
			saveSlots = append(saveSlots, inst.CaptureSlot)
		}
	}
	want := []uint32{0, 2, 3, 1}
	if len(saveSlots) != len(want) {
		t.Fatalf("save slots = %v, want %v", saveSlots, want)
	}
	for i := range want {
		if saveSlots[i] != want[i] {
			t.Fatalf("save slots = %v, want %v", saveSlots, want)
		}
	}
}

func TestCompileBoundedRepeatFanOut(t *testing.T) {
	p, err := Compile(mustParse(t, "a{2,4}"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	splits := 0
	chars := 0
	for _, inst := range p.Insts {
		switch inst.Kind {
		case prog.KindSplit:
			splits++
		case prog.KindChar:
			chars++
		}
	}
	if splits != 2 {
		t.Fatalf("splits = %d, want 2 (one per optional copy)", splits)
	}
	if chars != 4 {
		t.Fatalf("chars = %d, want 4 (2 required + 2 optional)", chars)
	}
}

func TestCompilePatchesEverySplitAndJump(t *testing.T) {
	p, err := Compile(mustParse(t, "(a|b|c)*d{1,3}"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i, inst := range p.Insts {
		switch inst.Kind {
		case prog.KindSplit:
			if inst.Goto1 == prog.InvalidAddr || inst.Goto2 == prog.InvalidAddr {
				t.Fatalf("inst %d: unpatched split", i)
			}
		case prog.KindMatch:
		default:
			if inst.Goto == prog.InvalidAddr {
				t.Fatalf("inst %d (%v): unpatched goto", i, inst.Kind)
			}
		}
	}
}

func TestCompileCaseInsensitiveLiteralUsesRanges(t *testing.T) {
	p, err := Compile(mustParse(t, "(?i)a"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	foundRanges := false
	for _, inst := range p.Insts {
		if inst.Kind == prog.KindRanges {
			foundRanges = true
			hasUpper, hasLower := false, false
			for _, r := range inst.Ranges {
				if r.Lo <= 'A' && 'A' <= r.Hi {
					hasUpper = true
				}
				if r.Lo <= 'a' && 'a' <= r.Hi {
					hasLower = true
				}
			}
			if !hasUpper || !hasLower {
				t.Fatalf("fold ranges = %+v, want both 'a' and 'A'", inst.Ranges)
			}
		}
	}
	if !foundRanges {
		t.Fatal("expected a Ranges instruction for the case-folded literal")
	}
}

func TestCompileManySetAssignsDistinctMatchSlots(t *testing.T) {
	p, err := CompileMany([]*syntax.Regexp{mustParse(t, "[a-z]+?"), mustParse(t, "abc")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.NumSubPatterns != 2 {
		t.Fatalf("NumSubPatterns = %d, want 2", p.NumSubPatterns)
	}
	var matchedPatterns []uint32
	for _, inst := range p.Insts {
		if inst.Kind == prog.KindMatch {
			matchedPatterns = append(matchedPatterns, inst.Pattern)
		}
	}
	want := []uint32{0, 1}
	if len(matchedPatterns) != 2 || matchedPatterns[0] != want[0] || matchedPatterns[1] != want[1] {
		t.Fatalf("match patterns = %v, want %v", matchedPatterns, want)
	}
}

func TestCompileReverseReversesLiteral(t *testing.T) {
	p, err := Compile(mustParse(t, "abc"), Options{Reverse: true})
	if err != nil {
		t.Fatal(err)
	}
	var chars []rune
	for _, inst := range p.Insts {
		if inst.Kind == prog.KindChar {
			chars = append(chars, inst.Char)
		}
	}
	want := []rune{'c', 'b', 'a'}
	if len(chars) != 3 || chars[0] != want[0] || chars[1] != want[1] || chars[2] != want[2] {
		t.Fatalf("chars = %v, want %v", string(chars), string(want))
	}
}

func TestCompileByteModeASCIILiteral(t *testing.T) {
	p, err := Compile(mustParse(t, "abc"), Options{DFA: true})
	if err != nil {
		t.Fatal(err)
	}
	if !p.ByteOriented {
		t.Fatal("want ByteOriented = true")
	}
	count := 0
	for _, inst := range p.Insts {
		if inst.Kind == prog.KindBytes {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("bytes instructions = %d, want 3", count)
	}
}

func TestCompileByteModeWideClassFails(t *testing.T) {
	_, err := Compile(mustParse(t, `[\x{4e00}-\x{9fff}]`), Options{DFA: true})
	if err == nil {
		t.Fatal("expected ErrClassTooLargeForByteMode")
	}
}

func TestCompileSizeLimit(t *testing.T) {
	_, err := Compile(mustParse(t, "a{1,1000}"), Options{SizeLimit: 64})
	if err == nil {
		t.Fatal("expected a size error")
	}
	if _, ok := err.(*prog.SizeError); !ok {
		t.Fatalf("err type = %T, want *prog.SizeError", err)
	}
}
