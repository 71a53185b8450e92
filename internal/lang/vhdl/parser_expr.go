package vhdl

import (
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

// parseExpr is the entry point for VHDL's expression grammar, implementing
// the layered precedence of spec.md §4.2: logical < relational < adding <
// sign < multiplying < power/unary (highest). There is no shift level:
// sll/srl and the other shift operators are not parsed.
func (p *Parser) parseExpr() *Expr {
	return p.parseLogical()
}

func logicalOp(k TokenKind) (BinOp, bool) {
	switch k {
	case KwAnd:
		return BAnd, true
	case KwOr:
		return BOr, true
	case KwXor:
		return BXor, true
	case KwXnor:
		return BXnor, true
	case KwNand:
		return BNand, true
	case KwNor:
		return BNor, true
	}
	return 0, false
}

func (p *Parser) parseLogical() *Expr {
	left := p.parseRelational()
	for {
		op, ok := logicalOp(p.current().Kind)
		if !ok {
			return left
		}
		p.advance()
		right := p.parseRelational()
		left = &Expr{Tag: ExBinary, BOp: op, L: left, R: right,
			Sp: ident.Span{File: p.file, Start: left.Sp.Start, End: p.prevSpan().End}}
	}
}

func relationalOp(k TokenKind) (BinOp, bool) {
	switch k {
	case Eq:
		return BEq, true
	case Neq:
		return BNeq, true
	case Lt:
		return BLt, true
	case Le:
		return BLe, true
	case Gt:
		return BGt, true
	case Ge:
		return BGe, true
	case MatchEq:
		return BEq, true
	case MatchNeq:
		return BNeq, true
	case MatchLt:
		return BLt, true
	case MatchLe:
		return BLe, true
	case MatchGt:
		return BGt, true
	case MatchGe:
		return BGe, true
	}
	return 0, false
}

func (p *Parser) parseRelational() *Expr {
	left := p.parseAdding()
	op, ok := relationalOp(p.current().Kind)
	if !ok {
		return left
	}
	p.advance()
	right := p.parseAdding()
	return &Expr{Tag: ExBinary, BOp: op, L: left, R: right,
		Sp: ident.Span{File: p.file, Start: left.Sp.Start, End: p.prevSpan().End}}
}

func addingOp(k TokenKind) (BinOp, bool) {
	switch k {
	case Plus:
		return BAdd, true
	case Minus:
		return BSub, true
	case Amp:
		return BConcat, true
	}
	return 0, false
}

func (p *Parser) parseAdding() *Expr {
	start := p.currentSpan()
	var left *Expr
	if p.at(Plus) || p.at(Minus) {
		uop := UPlus
		if p.current().Kind == Minus {
			uop = UMinus
		}
		p.advance()
		x := p.parseTerm()
		left = &Expr{Tag: ExUnary, UOp: uop, X: x, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	} else {
		left = p.parseTerm()
	}
	for {
		op, ok := addingOp(p.current().Kind)
		if !ok {
			return left
		}
		p.advance()
		right := p.parseTerm()
		left = &Expr{Tag: ExBinary, BOp: op, L: left, R: right,
			Sp: ident.Span{File: p.file, Start: left.Sp.Start, End: p.prevSpan().End}}
	}
}

func termOp(k TokenKind) (BinOp, bool) {
	switch k {
	case Star:
		return BMul, true
	case Slash:
		return BDiv, true
	case KwMod:
		return BMod, true
	case KwRem:
		return BRem, true
	}
	return 0, false
}

func (p *Parser) parseTerm() *Expr {
	left := p.parseFactor()
	for {
		op, ok := termOp(p.current().Kind)
		if !ok {
			return left
		}
		p.advance()
		right := p.parseFactor()
		left = &Expr{Tag: ExBinary, BOp: op, L: left, R: right,
			Sp: ident.Span{File: p.file, Start: left.Sp.Start, End: p.prevSpan().End}}
	}
}

func (p *Parser) parseFactor() *Expr {
	start := p.currentSpan()
	switch p.current().Kind {
	case KwAbs:
		p.advance()
		x := p.parsePrimary()
		return &Expr{Tag: ExUnary, UOp: UAbs, X: x, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case KwNot:
		p.advance()
		x := p.parsePrimary()
		return &Expr{Tag: ExUnary, UOp: UNot, X: x, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
	left := p.parsePrimary()
	if p.eat(DoubleStar) {
		right := p.parsePrimary()
		return &Expr{Tag: ExBinary, BOp: BPow, L: left, R: right,
			Sp: ident.Span{File: p.file, Start: left.Sp.Start, End: p.prevSpan().End}}
	}
	return left
}

func (p *Parser) parsePrimary() *Expr {
	start := p.currentSpan()
	switch p.current().Kind {
	case IntLiteral, RealLiteral:
		t := p.advance()
		return &Expr{Tag: ExNumber, NumberText: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case StringLiteral:
		t := p.advance()
		return &Expr{Tag: ExString, StringVal: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case BitStringLiteral:
		t := p.advance()
		return &Expr{Tag: ExBitString, StringVal: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case CharLiteral:
		t := p.advance()
		return &Expr{Tag: ExString, StringVal: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case Ident, ExtendedIdent:
		name := p.advance().Text
		e := &Expr{Tag: ExIdent, Name: name, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
		for {
			switch {
			case p.at(LParen):
				e = p.parseParenSuffix(e, start)
			case p.at(Apostrophe):
				p.advance()
				attr := p.expectIdent()
				e = &Expr{Tag: ExCall, Name: "'" + attr, Args: []Expr{*e},
					Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
			default:
				return e
			}
		}
	case LParen:
		p.advance()
		if p.at(KwOthers) {
			p.advance()
			p.expect(Arrow)
			v := p.parseExpr()
			p.expect(RParen)
			return &Expr{Tag: ExAggregateOthers, Others: v, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
		}
		e := p.parseExpr()
		p.expect(RParen)
		return e
	default:
		p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
			"expected expression, found %s %q", p.current().Kind, p.current().Text)
		p.advance()
		return &Expr{Tag: ExNumber, NumberText: "0", Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
}

// parseParenSuffix disambiguates `name(index)`, `name(msb downto lsb)`,
// and `name(args...)` function calls by the same first-sub-expression
// lookahead strategy the Verilog/SV parser uses for part-selects.
func (p *Parser) parseParenSuffix(base *Expr, start ident.Span) *Expr {
	p.expect(LParen)
	first := p.parseExpr()
	switch {
	case p.eat(KwDownto):
		lsb := p.parseExpr()
		p.expect(RParen)
		return &Expr{Tag: ExSlice, Base: base, Msb: first, Lsb: lsb, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case p.eat(KwTo):
		lsb := p.parseExpr()
		p.expect(RParen)
		return &Expr{Tag: ExSlice, Base: base, Msb: lsb, Lsb: first, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case p.eat(Comma):
		args := []Expr{*first}
		for {
			args = append(args, *p.parseExpr())
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(RParen)
		name := base.Name
		return &Expr{Tag: ExCall, Name: name, Args: args, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	default:
		p.expect(RParen)
		return &Expr{Tag: ExIndex, Base: base, Index: first, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
}
