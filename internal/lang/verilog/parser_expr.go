package verilog

import (
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

// infixBinding returns the (left, right) binding powers of kind as a
// binary operator, per spec.md §4.2's precedence table (higher binds
// tighter; `**` is right-associative, everything else left-associative).
// ok is false for tokens that are not binary operators.
func (p *Parser) infixBinding(kind TokenKind) (lbp, rbp int, op BinOp, ok bool) {
	switch kind {
	case PipePipe:
		return 1, 2, BinLogOr, true
	case AmpAmp:
		return 3, 4, BinLogAnd, true
	case Pipe:
		return 5, 6, BinBitOr, true
	case Caret:
		return 7, 8, BinBitXor, true
	case TildeCaret:
		return 7, 8, BinBitXnor, true
	case Amp:
		return 9, 10, BinBitAnd, true
	case Eq:
		return 11, 12, BinEq, true
	case Neq:
		return 11, 12, BinNeq, true
	case CaseEq:
		return 11, 12, BinCaseEq, true
	case CaseNeq:
		return 11, 12, BinCaseNeq, true
	case WildEq:
		return 11, 12, BinWildEq, true
	case WildNeq:
		return 11, 12, BinWildNeq, true
	case Lt:
		return 13, 14, BinLt, true
	case NonBlocking: // `<=` in expression context is less-or-equal
		return 13, 14, BinLe, true
	case Gt:
		return 13, 14, BinGt, true
	case Ge:
		return 13, 14, BinGe, true
	case Shl:
		return 15, 16, BinShl, true
	case Shr:
		return 15, 16, BinShr, true
	case AShl:
		return 15, 16, BinAShl, true
	case AShr:
		return 15, 16, BinAShr, true
	case Plus:
		return 17, 18, BinAdd, true
	case Minus:
		return 17, 18, BinSub, true
	case Star:
		return 19, 20, BinMul, true
	case Slash:
		return 19, 20, BinDiv, true
	case Percent:
		return 19, 20, BinMod, true
	case Pow:
		return 22, 21, BinPow, true
	}
	return 0, 0, 0, false
}

const prefixBP = 23

// parseExpr parses an expression, climbing operators whose left binding
// power is at least minBP (Pratt's precedence-climbing formulation).
func (p *Parser) parseExpr(minBP int) *Expr {
	left := p.parsePrefix()
	for {
		if p.at(Question) && minBP <= 0 {
			left = p.parseTernary(left)
			continue
		}
		lbp, rbp, op, ok := p.infixBinding(p.current().Kind)
		if !ok || lbp < minBP {
			return left
		}
		start := left.Sp
		p.advance()
		right := p.parseExpr(rbp)
		left = &Expr{
			Tag: ExBinary, BinOp: op, L: left, R: right,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	}
}

func (p *Parser) parseTernary(cond *Expr) *Expr {
	p.expect(Question)
	then := p.parseExpr(0)
	p.expect(Colon)
	els := p.parseExpr(0) // right-associative: chained ternaries nest on the else side
	return &Expr{
		Tag: ExTernary, Cond: cond, Then: then, Else: els,
		Sp: ident.Span{File: p.file, Start: cond.Sp.Start, End: p.prevSpan().End},
	}
}

var prefixOps = map[TokenKind]UnaryOp{
	Plus:       UnPlus,
	Minus:      UnMinus,
	Bang:       UnLogNot,
	Tilde:      UnBitNot,
	Amp:        UnAndReduce,
	TildeAmp:   UnNandReduce,
	Pipe:       UnOrReduce,
	TildePipe:  UnNorReduce,
	Caret:      UnXorReduce,
	TildeCaret: UnXnorReduce,
}

func (p *Parser) parsePrefix() *Expr {
	start := p.currentSpan()
	if uop, ok := prefixOps[p.current().Kind]; ok {
		p.advance()
		x := p.parseExpr(prefixBP)
		return &Expr{Tag: ExUnary, UnOp: uop, X: x, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// index/part-select/call suffixes.
func (p *Parser) parsePostfix() *Expr {
	e := p.parsePrimary()
	for {
		switch p.current().Kind {
		case LBracket:
			e = p.parseIndexOrSelect(e)
		default:
			return e
		}
	}
}

// parseIndexOrSelect implements spec.md §4.2's part-select disambiguation:
// parse the first sub-expression at minimum binding power 18 (stopping
// before binary +/-), then decide between indexed part-select, a plain
// range, or a simple index based on what follows.
func (p *Parser) parseIndexOrSelect(base *Expr) *Expr {
	start := base.Sp
	p.expect(LBracket)
	first := p.parseExpr(18)

	switch p.current().Kind {
	case PlusColon:
		p.advance()
		width := p.parseExpr(0)
		p.expect(RBracket)
		return &Expr{
			Tag: ExIndexedPartSelect, Base: base, Index: first, PlusColonWidth: width, IndexedDown: false,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	case MinusColon:
		p.advance()
		width := p.parseExpr(0)
		p.expect(RBracket)
		return &Expr{
			Tag: ExIndexedPartSelect, Base: base, Index: first, PlusColonWidth: width, IndexedDown: true,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	case Colon:
		p.advance()
		lsb := p.parseExpr(0)
		p.expect(RBracket)
		return &Expr{
			Tag: ExPartSelect, Base: base, Msb: first, Lsb: lsb,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	case Plus, Minus:
		// Resume Pratt at bp 0 to finish the arithmetic expression that
		// happened to start a bracketed index (e.g. a[i+1]).
		for {
			_, rbp, op, ok := p.infixBinding(p.current().Kind)
			if !ok {
				break
			}
			p.advance()
			rhs := p.parseExpr(rbp)
			first = &Expr{Tag: ExBinary, BinOp: op, L: first, R: rhs,
				Sp: ident.Span{File: p.file, Start: first.Sp.Start, End: p.prevSpan().End}}
		}
		p.expect(RBracket)
		return &Expr{Tag: ExIndex, Base: base, Index: first,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	default:
		p.expect(RBracket)
		return &Expr{Tag: ExIndex, Base: base, Index: first,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
}

func (p *Parser) parsePrimary() *Expr {
	start := p.currentSpan()
	switch p.current().Kind {
	case IntLiteral:
		t := p.advance()
		return &Expr{Tag: ExNumber, NumberText: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case RealLiteral:
		t := p.advance()
		return &Expr{Tag: ExNumber, NumberText: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case StringLiteral:
		t := p.advance()
		return &Expr{Tag: ExString, StringVal: t.Text, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case Ident, EscapedIdent:
		name := p.advance().Text
		if p.at(LParen) {
			return p.parseCall(name, start)
		}
		return &Expr{Tag: ExIdent, Name: name, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case SystemIdent, KwDisplay, KwWrite, KwFinish:
		name := p.advance().Text
		return p.parseCall(name, start)
	case LParen:
		p.advance()
		e := p.parseExpr(0)
		p.expect(RParen)
		return e
	case LBrace:
		return p.parseBraceExpr(start)
	default:
		p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
			"expected expression, found %s %q", p.current().Kind, p.current().Text)
		p.advance()
		return &Expr{Tag: ExNumber, NumberText: "0", Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
}

func (p *Parser) parseCall(name string, start ident.Span) *Expr {
	c := &Expr{Tag: ExCall, Name: name}
	if p.eat(LParen) {
		for !p.at(RParen) && !p.atEOF() {
			c.Args = append(c.Args, *p.parseExpr(0))
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(RParen)
	}
	c.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return c
}

// parseBraceExpr parses `{expr, expr, ...}` (concatenation) or
// `{count{expr, ...}}` (replication).
func (p *Parser) parseBraceExpr(start ident.Span) *Expr {
	p.expect(LBrace)
	first := p.parseExpr(0)
	if p.at(LBrace) {
		// Replication: {count{...}}
		inner := p.parseBraceExpr(p.currentSpan())
		p.expect(RBrace)
		return &Expr{
			Tag: ExReplicate, Count: first, Elems: inner.Elems,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	}
	elems := []Expr{*first}
	for p.eat(Comma) {
		elems = append(elems, *p.parseExpr(0))
	}
	p.expect(RBrace)
	return &Expr{Tag: ExConcat, Elems: elems, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
}
