package vhdl

import (
	"strings"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

// Parser is a recursive-descent parser over VHDL's distinct precedence
// levels (logical < relational < adding < sign < multiplying <
// power/unary; the shift operators are not recognized), carrying the same
// primitive operations as the Verilog/SV
// parser (spec.md §4.2 applies uniformly across languages).
type Parser struct {
	toks []Token
	pos  int
	file ident.FileID
	sink *diag.Sink
}

func NewParser(toks []Token, file ident.FileID, sink *diag.Sink) *Parser {
	return &Parser{toks: toks, file: file, sink: sink}
}

func (p *Parser) current() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) currentSpan() ident.Span {
	t := p.current()
	return ident.Span{File: p.file, Start: t.Start, End: t.End}
}

func (p *Parser) prevSpan() ident.Span {
	if p.pos == 0 {
		return p.currentSpan()
	}
	t := p.toks[p.pos-1]
	return ident.Span{File: p.file, Start: t.Start, End: t.End}
}

func (p *Parser) at(k TokenKind) bool { return p.current().Kind == k }
func (p *Parser) atEOF() bool         { return p.current().Kind == EOF }

func (p *Parser) advance() Token {
	t := p.current()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) eat(k TokenKind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k TokenKind) Token {
	if p.at(k) {
		return p.advance()
	}
	p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
		"expected %s, found %s %q", k, p.current().Kind, p.current().Text)
	return p.current()
}

func (p *Parser) expectIdent() string {
	if p.at(Ident) || p.at(ExtendedIdent) {
		return p.advance().Text
	}
	p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
		"expected identifier, found %s %q", p.current().Kind, p.current().Text)
	return ""
}

func (p *Parser) recoverToSemicolon() {
	for !p.atEOF() && !p.at(Semi) {
		p.advance()
	}
	p.eat(Semi)
}

// ParseDesignFile parses a whole file's worth of library units: entities
// and architectures (library/use clauses, packages, and configurations
// are skipped to their terminating semicolon/end, matching the documented
// elaboration scope of lowering entities+architectures only).
func (p *Parser) ParseDesignFile() *DesignFile {
	start := p.currentSpan()
	f := &DesignFile{}
	for !p.atEOF() {
		switch p.current().Kind {
		case KwEntity:
			f.Entities = append(f.Entities, p.parseEntity())
		case KwArchitecture:
			f.Architectures = append(f.Architectures, p.parseArchitecture())
		case KwLibrary, KwUse:
			p.recoverToSemicolon()
		case KwPackage, KwConfiguration:
			p.skipToMatchingEnd()
		default:
			p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
				"expected a library unit, found %s %q", p.current().Kind, p.current().Text)
			p.advance()
		}
	}
	f.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return f
}

// skipToMatchingEnd recovers past an unhandled library unit by scanning to
// its closing `end ... ;`.
func (p *Parser) skipToMatchingEnd() {
	for !p.atEOF() {
		if p.at(KwEnd) {
			p.advance()
			p.recoverToSemicolon()
			return
		}
		p.advance()
	}
}

func (p *Parser) parseEntity() *Entity {
	start := p.currentSpan()
	p.expect(KwEntity)
	name := p.expectIdent()
	p.expect(KwIs)
	e := &Entity{Name: name}
	if p.eat(KwGeneric) {
		p.expect(LParen)
		for {
			e.Generics = append(e.Generics, p.parseGenericDecl())
			if !p.eat(Semi) {
				break
			}
		}
		p.expect(RParen)
		p.expect(Semi)
	}
	if p.eat(KwPort) {
		p.expect(LParen)
		for {
			e.Ports = append(e.Ports, p.parsePortDecl())
			if !p.eat(Semi) {
				break
			}
		}
		p.expect(RParen)
		p.expect(Semi)
	}
	p.expect(KwEnd)
	p.eat(KwEntity)
	if p.at(Ident) {
		p.advance()
	}
	p.expect(Semi)
	e.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return e
}

func (p *Parser) parseGenericDecl() *GenericDecl {
	start := p.currentSpan()
	var names []string
	for {
		names = append(names, p.expectIdent())
		if !p.eat(Colon) {
			if !p.eat(Comma) {
				break
			}
			continue
		}
		break
	}
	typ := p.parseTypeMark()
	g := &GenericDecl{Names: names, Type: typ}
	if p.eat(ColonEq) {
		v := p.parseExpr()
		g.Default = v
	}
	g.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return g
}

func (p *Parser) parsePortDecl() *PortDecl {
	start := p.currentSpan()
	var names []string
	for {
		names = append(names, p.expectIdent())
		if !p.eat(Comma) {
			break
		}
	}
	p.expect(Colon)
	mode := ModeIn
	switch p.current().Kind {
	case KwIn:
		p.advance()
		mode = ModeIn
	case KwOut:
		p.advance()
		mode = ModeOut
	case KwInout:
		p.advance()
		mode = ModeInout
	case KwBuffer:
		p.advance()
		mode = ModeBuffer
	}
	typ := p.parseTypeMark()
	return &PortDecl{Names: names, Mode: mode, Type: typ, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
}

// parseTypeMark parses a subtype indication: a name, optionally
// constrained with `(msb downto lsb)` or `(lsb to msb)`.
func (p *Parser) parseTypeMark() TypeMark {
	name := p.expectIdent()
	tm := TypeMark{Name: strings.ToLower(name)}
	if p.eat(LParen) {
		first := p.parseExpr()
		if p.eat(KwDownto) {
			second := p.parseExpr()
			tm.Ranged = true
			tm.Msb = *first
			tm.Lsb = *second
		} else if p.eat(KwTo) {
			second := p.parseExpr()
			tm.Ranged = true
			tm.Msb = *second
			tm.Lsb = *first
		}
		p.expect(RParen)
	}
	return tm
}

func (p *Parser) parseArchitecture() *Architecture {
	start := p.currentSpan()
	p.expect(KwArchitecture)
	name := p.expectIdent()
	p.expect(KwOf)
	entityName := p.expectIdent()
	p.expect(KwIs)

	a := &Architecture{Name: name, EntityName: entityName}
	for !p.at(KwBegin) && !p.atEOF() {
		if p.at(KwSignal) {
			a.Items = append(a.Items, ArchItem{Tag: ArchSignalDecl, Signal: p.parseSignalDecl()})
		} else {
			// Component declarations, type/constant/attribute decls: skip
			// to the next semicolon (not part of the lowered scope).
			p.recoverToSemicolon()
		}
	}
	p.expect(KwBegin)
	for !p.at(KwEnd) && !p.atEOF() {
		a.Items = append(a.Items, p.parseArchItem())
	}
	p.expect(KwEnd)
	p.eat(KwArchitecture)
	if p.at(Ident) {
		p.advance()
	}
	p.expect(Semi)
	a.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return a
}

func (p *Parser) parseSignalDecl() *SignalDecl {
	start := p.currentSpan()
	p.expect(KwSignal)
	var names []string
	for {
		names = append(names, p.expectIdent())
		if !p.eat(Comma) {
			break
		}
	}
	p.expect(Colon)
	typ := p.parseTypeMark()
	sd := &SignalDecl{Names: names, Type: typ}
	if p.eat(ColonEq) {
		v := p.parseExpr()
		sd.Default = v
	}
	p.expect(Semi)
	sd.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return sd
}

// parseArchItem parses one concurrent statement: a process, a component
// instantiation (`label : name [generic map] port map (...);`), or a
// concurrent signal assignment (`target <= expr;`).
func (p *Parser) parseArchItem() ArchItem {
	start := p.currentSpan()
	if p.at(KwProcess) {
		return ArchItem{Tag: ArchProcess, Process: p.parseProcess("")}
	}
	// Both `label : process(...)` and `label : entity_name port map (...)`
	// start with an identifier followed by `:`.
	if p.at(Ident) && p.toks[p.pos+1].Kind == Colon {
		label := p.advance().Text
		p.expect(Colon)
		if p.at(KwProcess) {
			return ArchItem{Tag: ArchProcess, Process: p.parseProcess(label)}
		}
		return ArchItem{Tag: ArchInstance, Instance: p.parseInstanceBody(label, start)}
	}
	assign := p.parseConcurrentAssign(start)
	return ArchItem{Tag: ArchConcurrentAssign, Assign: assign}
}

func (p *Parser) parseConcurrentAssign(start ident.Span) *ConcurrentAssign {
	target := p.parsePrimary() // a name, so `<=` is left for the assignment
	p.expect(Le)
	value := p.parseExpr()
	p.expect(Semi)
	return &ConcurrentAssign{Target: *target, Value: *value, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
}

func (p *Parser) parseInstanceBody(label string, start ident.Span) *Instance {
	entityName := p.expectIdent()
	inst := &Instance{Label: label, EntityName: entityName}
	if p.eat(KwGeneric) {
		p.expect(KwMap)
		p.expect(LParen)
		inst.GenericMap = p.parseAssocList()
		p.expect(RParen)
	}
	p.expect(KwPort)
	p.expect(KwMap)
	p.expect(LParen)
	inst.PortMap = p.parseAssocList()
	p.expect(RParen)
	p.expect(Semi)
	inst.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return inst
}

func (p *Parser) parseAssocList() []AssocItem {
	var items []AssocItem
	for !p.at(RParen) && !p.atEOF() {
		if p.at(Ident) && p.toks[p.pos+1].Kind == Arrow {
			formal := p.advance().Text
			p.expect(Arrow)
			actual := p.parseExpr()
			items = append(items, AssocItem{Formal: formal, Actual: *actual})
		} else {
			actual := p.parseExpr()
			items = append(items, AssocItem{Actual: *actual})
		}
		if !p.eat(Comma) {
			break
		}
	}
	return items
}

func (p *Parser) parseProcess(label string) *Process {
	start := p.currentSpan()
	p.expect(KwProcess)
	proc := &Process{Label: label}
	if p.eat(LParen) {
		for {
			proc.Sensitivity = append(proc.Sensitivity, p.expectIdent())
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(RParen)
	}
	for !p.at(KwBegin) && !p.atEOF() {
		// Variable declarations inside the process header; skipped.
		p.recoverToSemicolon()
	}
	p.expect(KwBegin)
	for !p.at(KwEnd) && !p.atEOF() {
		proc.Body = append(proc.Body, *p.parseStmt())
	}
	p.expect(KwEnd)
	p.expect(KwProcess)
	if p.at(Ident) {
		p.advance()
	}
	p.expect(Semi)
	proc.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return proc
}

func (p *Parser) parseStmt() *Stmt {
	start := p.currentSpan()
	switch p.current().Kind {
	case KwIf:
		return p.parseIfStmt(start)
	case KwCase:
		return p.parseCaseStmt(start)
	case KwWait:
		p.advance()
		var until *Expr
		if p.eat(KwUntil) {
			until = p.parseExpr()
		}
		p.expect(Semi)
		return &Stmt{Tag: StWait, WaitUntil: until, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case KwReport:
		p.advance()
		msg := ""
		if p.at(StringLiteral) {
			msg = p.advance().Text
		}
		if p.eat(KwSeverity) {
			p.expectIdent()
		}
		p.expect(Semi)
		return &Stmt{Tag: StReport, ReportMsg: msg, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	case KwNull:
		p.advance()
		p.expect(Semi)
		return &Stmt{Tag: StNull, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	default:
		return p.parseAssignStmt(start)
	}
}

func (p *Parser) parseAssignStmt(start ident.Span) *Stmt {
	lhs := p.parsePrimary() // a name, so `<=` is left for the assignment
	tag := StSignalAssign
	if p.at(Le) {
		p.advance()
	} else if p.at(ColonEq) {
		p.advance()
		tag = StVariableAssign
	} else {
		p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
			"expected '<=' or ':=' in assignment, found %s %q", p.current().Kind, p.current().Text)
		p.recoverToSemicolon()
		return &Stmt{Tag: StNull, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
	rhs := p.parseExpr()
	p.expect(Semi)
	return &Stmt{Tag: tag, LHS: *lhs, RHS: *rhs, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
}

func (p *Parser) parseIfStmt(start ident.Span) *Stmt {
	p.expect(KwIf)
	cond := p.parseExpr()
	p.expect(KwThen)
	var then []Stmt
	for !p.at(KwElsif) && !p.at(KwElse) && !p.at(KwEndIf) && !(p.at(KwEnd)) {
		then = append(then, *p.parseStmt())
	}
	st := &Stmt{Tag: StIf, Cond: *cond, Then: then}
	for p.eat(KwElsif) {
		c := p.parseExpr()
		p.expect(KwThen)
		var body []Stmt
		for !p.at(KwElsif) && !p.at(KwElse) && !p.at(KwEnd) {
			body = append(body, *p.parseStmt())
		}
		st.Elifs = append(st.Elifs, ElsifArm{Cond: *c, Body: body})
	}
	if p.eat(KwElse) {
		for !p.at(KwEnd) {
			st.Else = append(st.Else, *p.parseStmt())
		}
	}
	p.expect(KwEnd)
	p.eat(KwIf)
	p.expect(Semi)
	st.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return st
}

func (p *Parser) parseCaseStmt(start ident.Span) *Stmt {
	p.expect(KwCase)
	subj := p.parseExpr()
	p.expect(KwIs)
	st := &Stmt{Tag: StCase, Subject: *subj}
	for p.eat(KwWhen) {
		var alt CaseAlt
		if p.eat(KwOthers) {
			// empty Values marks the default arm
		} else {
			for {
				alt.Values = append(alt.Values, *p.parseExpr())
				if !p.eat(Bar) {
					break
				}
			}
		}
		p.expect(Arrow)
		for !p.at(KwWhen) && !p.at(KwEnd) {
			alt.Body = append(alt.Body, *p.parseStmt())
		}
		st.Alts = append(st.Alts, alt)
	}
	p.expect(KwEnd)
	p.eat(KwCase)
	p.expect(Semi)
	st.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return st
}
