package ast

import (
	"fmt"
	"regexp/syntax"
)

// FromSyntax converts a parsed regexp/syntax.Regexp into an Expr tree.
// Group indices are 0-based: a Group node's Index is re.Cap - 1, so the first
// explicit group has Index 0. The implicit whole-match group never appears as
// a Group node here — the compiler adds the whole-match Save(0)/Save(1) pair
// itself and places group Index i at slots 2*(i+1) and 2*(i+1)+1.
func FromSyntax(re *syntax.Regexp) (*Expr, error) {
	return fromSyntax(re)
}

// FromSyntaxMany converts a slice of parsed patterns for use as a regex set.
// Each pattern keeps its own group numbering; the compiler is responsible
// for keeping per-pattern capture slot counts separate.
func FromSyntaxMany(res []*syntax.Regexp) ([]*Expr, error) {
	out := make([]*Expr, len(res))
	for i, re := range res {
		e, err := fromSyntax(re)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

func fromSyntax(re *syntax.Regexp) (*Expr, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		// An expression that matches nothing. Represented as an empty
		// alternation: zero branches, none of which can ever succeed.
		return &Expr{Op: OpAlternate, Sub: nil}, nil

	case syntax.OpEmptyMatch:
		return &Expr{Op: OpEmpty}, nil

	case syntax.OpLiteral:
		chars := make([]rune, len(re.Rune))
		copy(chars, re.Rune)
		return &Expr{
			Op:              OpLiteral,
			Chars:           chars,
			CaseInsensitive: re.Flags&syntax.FoldCase != 0,
		}, nil

	case syntax.OpCharClass:
		ranges := make([]RuneRange, 0, len(re.Rune)/2)
		for i := 0; i+1 < len(re.Rune); i += 2 {
			ranges = append(ranges, RuneRange{Lo: re.Rune[i], Hi: re.Rune[i+1]})
		}
		return &Expr{Op: OpClass, Class: ranges}, nil

	case syntax.OpAnyCharNotNL:
		return &Expr{Op: OpAnyCharNoNL}, nil

	case syntax.OpAnyChar:
		return &Expr{Op: OpAnyChar}, nil

	case syntax.OpBeginLine:
		return &Expr{Op: OpStartLine}, nil

	case syntax.OpEndLine:
		return &Expr{Op: OpEndLine}, nil

	case syntax.OpBeginText:
		return &Expr{Op: OpStartText}, nil

	case syntax.OpEndText:
		return &Expr{Op: OpEndText}, nil

	case syntax.OpWordBoundary:
		return &Expr{Op: OpWordBoundary}, nil

	case syntax.OpNoWordBoundary:
		return &Expr{Op: OpNotWordBoundary}, nil

	case syntax.OpCapture:
		sub, err := fromSyntax(re.Sub[0])
		if err != nil {
			return nil, err
		}
		g := &Expr{Op: OpGroup, Sub: []*Expr{sub}}
		if re.Cap > 0 {
			g.HasIndex = true
			g.Index = re.Cap - 1
			g.Name = re.Name
		}
		return g, nil

	case syntax.OpStar:
		return repeatFrom(re, ZeroOrMore, 0, -1)

	case syntax.OpPlus:
		return repeatFrom(re, OneOrMore, 0, -1)

	case syntax.OpQuest:
		return repeatFrom(re, ZeroOrOne, 0, -1)

	case syntax.OpRepeat:
		return repeatFrom(re, RepeatRange, re.Min, re.Max)

	case syntax.OpConcat:
		subs, err := fromSyntaxSlice(re.Sub)
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpConcat, Sub: subs}, nil

	case syntax.OpAlternate:
		subs, err := fromSyntaxSlice(re.Sub)
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpAlternate, Sub: subs}, nil

	default:
		return nil, fmt.Errorf("ast: unsupported syntax op %v", re.Op)
	}
}

func repeatFrom(re *syntax.Regexp, kind Repeater, min, max int) (*Expr, error) {
	sub, err := fromSyntax(re.Sub[0])
	if err != nil {
		return nil, err
	}
	return &Expr{
		Op:       OpRepeat,
		Sub:      []*Expr{sub},
		Repeater: kind,
		Greedy:   re.Flags&syntax.NonGreedy == 0,
		Min:      min,
		Max:      max,
	}, nil
}

func fromSyntaxSlice(res []*syntax.Regexp) ([]*Expr, error) {
	out := make([]*Expr, len(res))
	for i, r := range res {
		e, err := fromSyntax(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
