package verilog

import (
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

// parseModule parses `module name [#(params)] (port_list); items endmodule`.
func (p *Parser) parseModule() *ModuleDecl {
	start := p.currentSpan()
	p.expect(KwModule)
	name := p.expectIdent()
	m := &ModuleDecl{Name: name}

	if p.eat(Hash) {
		p.expect(LParen)
		for !p.at(RParen) && !p.atEOF() {
			m.Params = append(m.Params, p.parseParamDeclItem())
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(RParen)
	}

	if p.eat(LParen) {
		if !p.at(RParen) {
			m.Ports = p.parsePortList()
		}
		p.expect(RParen)
	}
	p.expect(Semi)

	for !p.at(KwEndmodule) && !p.atEOF() {
		item, ok := p.parseModuleItem()
		if ok {
			m.Items = append(m.Items, item)
		}
	}
	p.expect(KwEndmodule)
	m.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return m
}

// parseParamDeclItem parses one `NAME [= default]` inside a `#(...)` list,
// or `parameter TYPE NAME = default` in the rarer fully-typed form.
func (p *Parser) parseParamDeclItem() *ParamDecl {
	start := p.currentSpan()
	p.eat(KwParameter)
	// Optional signed/range before the name is accepted but not retained
	// distinctly from the default's inferred width at this layer.
	p.eat(KwSigned)
	if p.at(LBracket) {
		p.parseRange()
	}
	name := p.expectIdent()
	pd := &ParamDecl{Name: name}
	if p.eat(Assign) {
		pd.Default = *p.parseExpr(0)
	}
	pd.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return pd
}

// parseRange parses `[msb:lsb]` and returns it; callers needing no range
// simply don't call this.
func (p *Parser) parseRange() *RangeExpr {
	p.expect(LBracket)
	msb := p.parseExpr(0)
	p.expect(Colon)
	lsb := p.parseExpr(0)
	p.expect(RBracket)
	return &RangeExpr{Msb: *msb, Lsb: *lsb}
}

func netKindFor(k TokenKind) (NetKind, bool) {
	switch k {
	case KwWire:
		return NetWire, true
	case KwReg:
		return NetReg, true
	case KwLogic:
		return NetLogic, true
	case KwInteger:
		return NetInteger, true
	case KwReal:
		return NetReal, true
	}
	return 0, false
}

// parsePortList parses an ANSI-style port list: each entry optionally
// carries a direction/type, inherited from the previous entry when
// omitted, per spec.md §4.2.
func (p *Parser) parsePortList() []*PortDecl {
	var ports []*PortDecl
	dir := DirInput
	kind := NetWire
	signed := false
	var rng *RangeExpr
	haveDir := false

	for {
		start := p.currentSpan()
		sawDir := false
		switch p.current().Kind {
		case KwInput:
			p.advance()
			dir = DirInput
			sawDir = true
		case KwOutput:
			p.advance()
			dir = DirOutput
			sawDir = true
		case KwInout:
			p.advance()
			dir = DirInout
			sawDir = true
		}
		if sawDir {
			haveDir = true
			kind = NetWire
			rng = nil
			if nk, ok := netKindFor(p.current().Kind); ok {
				kind = nk
				p.advance()
			}
		}
		if !haveDir {
			// Non-ANSI bare name; direction is declared in the module body.
			dir = DirInput
		}
		signed = false
		if p.eat(KwSigned) {
			signed = true
		}
		if p.at(LBracket) {
			rng = p.parseRange()
		}
		name := p.expectIdent()
		ports = append(ports, &PortDecl{
			Name: name, Dir: dir, Kind: kind, Signed: signed, Range: rng,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		})
		if !p.eat(Comma) {
			break
		}
	}
	return ports
}

// parseModuleItem parses one module-body item. Returns ok=false when a
// construct could not be recognized and recovery already ran.
func (p *Parser) parseModuleItem() (ModuleItem, bool) {
	start := p.currentSpan()
	switch p.current().Kind {
	case KwWire, KwReg, KwLogic, KwInteger, KwReal:
		return p.parseNetDecl(), true
	case KwInput, KwOutput, KwInout:
		// Non-ANSI direction restatement inside the body; re-declares an
		// existing port's net kind. Parsed as a NetDecl and merged by the
		// elaborator via matching port name.
		p.advance()
		kind := NetWire
		if nk, ok := netKindFor(p.current().Kind); ok {
			kind = nk
			p.advance()
		}
		signed := p.eat(KwSigned)
		var rng *RangeExpr
		if p.at(LBracket) {
			rng = p.parseRange()
		}
		var names []string
		for {
			names = append(names, p.expectIdent())
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(Semi)
		return ModuleItem{Tag: ItemNetDecl, Net: &NetDecl{
			Kind: kind, Signed: signed, Range: rng, Names: names,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}}, true
	case KwParameter, KwLocalparam:
		local := p.current().Kind == KwLocalparam
		p.advance()
		pd := &ParamDecl{Local: local}
		p.eat(KwSigned)
		if p.at(LBracket) {
			p.parseRange()
		}
		pd.Name = p.expectIdent()
		if p.eat(Assign) {
			pd.Default = *p.parseExpr(0)
		}
		pd.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
		p.expect(Semi)
		return ModuleItem{Tag: ItemParamDecl, Param: pd}, true
	case KwAssign:
		p.advance()
		lhs := p.parseExpr(0)
		p.expect(Assign)
		rhs := p.parseExpr(0)
		p.expect(Semi)
		return ModuleItem{Tag: ItemContinuousAssign, Assign: &ContinuousAssign{
			LHS: *lhs, RHS: *rhs,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}}, true
	case KwAlways, KwAlwaysComb, KwAlwaysFF, KwAlwaysLatch, KwInitial:
		return ModuleItem{Tag: ItemAlwaysBlock, Always: p.parseAlwaysBlock()}, true
	case KwGenerate:
		return p.parseGenerate(), true
	case KwFunction:
		p.recoverToBlockEnd(KwEndfunction)
		p.eat(KwEndfunction)
		return ModuleItem{}, false
	case KwTask:
		p.recoverToBlockEnd(KwEndtask)
		p.eat(KwEndtask)
		return ModuleItem{}, false
	case Ident, EscapedIdent:
		return ModuleItem{Tag: ItemInstance, Instance: p.parseInstance()}, true
	default:
		p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
			"unrecognized module item starting with %s %q", p.current().Kind, p.current().Text)
		p.recoverToSemicolon()
		return ModuleItem{}, false
	}
}

func (p *Parser) parseNetDecl() ModuleItem {
	start := p.currentSpan()
	kind, _ := netKindFor(p.current().Kind)
	p.advance()
	signed := p.eat(KwSigned)
	var rng *RangeExpr
	if p.at(LBracket) {
		rng = p.parseRange()
	}
	var names []string
	for {
		names = append(names, p.expectIdent())
		if p.at(Assign) {
			// Net initializer, e.g. `wire x = 1'b0;`. Rewritten as a
			// continuous assign so later passes see a uniform shape.
			p.advance()
			_ = p.parseExpr(0)
		}
		if !p.eat(Comma) {
			break
		}
	}
	p.expect(Semi)
	return ModuleItem{Tag: ItemNetDecl, Net: &NetDecl{
		Kind: kind, Signed: signed, Range: rng, Names: names,
		Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
	}}
}

// parseAlwaysBlock parses `always[_comb|_ff|_latch] [@(...)] stmt` and
// `initial stmt`.
func (p *Parser) parseAlwaysBlock() *AlwaysBlock {
	start := p.currentSpan()
	kind := AlwaysPlain
	switch p.advance().Kind {
	case KwAlwaysComb:
		kind = AlwaysComb
	case KwAlwaysFF:
		kind = AlwaysFF
	case KwAlwaysLatch:
		kind = AlwaysLatch
	case KwInitial:
		kind = Initial
	}
	ab := &AlwaysBlock{Kind: kind}
	if p.eat(At) {
		if p.eat(Star) {
			ab.Star = true
		} else if p.eat(LParen) {
			if p.eat(Star) {
				ab.Star = true
			} else {
				for {
					ab.Events = append(ab.Events, p.parseEventExpr())
					if !p.eat(Comma) && !p.eat(KwOr) {
						break
					}
				}
			}
			p.expect(RParen)
		}
	}
	ab.Body = *p.parseStmt()
	ab.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return ab
}

func (p *Parser) parseEventExpr() EventExpr {
	edge := EdgeNone
	switch p.current().Kind {
	case KwPosedge:
		p.advance()
		edge = EdgePosedge
	case KwNegedge:
		p.advance()
		edge = EdgeNegedge
	}
	sig := p.parseExpr(18)
	return EventExpr{Edge: edge, Signal: *sig}
}

// parseInstance parses `mod_name [#(.P(v), ...)] inst_name (.port(conn), ...) ;`
func (p *Parser) parseInstance() *Instance {
	start := p.currentSpan()
	modName := p.expectIdent()
	inst := &Instance{ModuleName: modName}
	if p.eat(Hash) {
		p.expect(LParen)
		for !p.at(RParen) && !p.atEOF() {
			inst.Params = append(inst.Params, p.parseConnItem(true))
			if !p.eat(Comma) {
				break
			}
		}
		p.expect(RParen)
	}
	inst.InstName = p.expectIdent()
	p.expect(LParen)
	for !p.at(RParen) && !p.atEOF() {
		c := p.parseConnItem(false)
		inst.Conns = append(inst.Conns, PortConn{Kind: c.Kind, Formal: c.Formal, Actual: c.Value})
		if !p.eat(Comma) {
			break
		}
	}
	p.expect(RParen)
	p.expect(Semi)
	inst.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return inst
}

// parseConnItem parses one `.name(expr)` or positional expr inside a
// parameter-override or port-connection list.
func (p *Parser) parseConnItem(isParam bool) ParamOverride {
	if p.eat(Dot) {
		name := p.expectIdent()
		p.expect(LParen)
		var val *Expr
		if !p.at(RParen) {
			val = p.parseExpr(0)
		}
		p.expect(RParen)
		if val == nil {
			val = &Expr{Tag: ExIdent, Name: name}
		}
		return ParamOverride{Kind: ConnNamed, Formal: name, Value: *val}
	}
	val := p.parseExpr(0)
	return ParamOverride{Kind: ConnPositional, Value: *val}
}

// parseGenerate parses a restricted generate-for/if construct: the body is
// a flat list of module items, matching the documented elaboration scope.
func (p *Parser) parseGenerate() ModuleItem {
	start := p.currentSpan()
	p.expect(KwGenerate)
	gb := p.parseGenerateBody()
	p.expect(KwEndgenerate)
	gb.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return ModuleItem{Tag: ItemGenerate, Generate: gb}
}

func (p *Parser) parseGenerateBody() *GenerateBlock {
	start := p.currentSpan()
	switch p.current().Kind {
	case KwFor:
		p.advance()
		p.expect(LParen)
		genvar := p.expectIdent()
		p.expect(Assign)
		initExpr := p.parseExpr(0)
		p.expect(Semi)
		cond := p.parseExpr(0)
		p.expect(Semi)
		p.expectIdent() // step LHS, same genvar; loop variable re-assignment
		p.expect(Assign)
		step := p.parseExpr(0)
		p.expect(RParen)
		body := p.parseGenerateItemsBlock()
		return &GenerateBlock{
			Kind: GenFor, GenVar: genvar, Init: *initExpr, Cond: *cond, Step: *step, Body: body,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	case KwIf:
		p.advance()
		p.expect(LParen)
		cond := p.parseExpr(0)
		p.expect(RParen)
		body := p.parseGenerateItemsBlock()
		var elseBody []ModuleItem
		if p.eat(KwElse) {
			elseBody = p.parseGenerateItemsBlock()
		}
		return &GenerateBlock{
			Kind: GenIf, Cond: *cond, Body: body, ElseBody: elseBody,
			Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End},
		}
	default:
		body := p.parseGenerateItemsBlock()
		return &GenerateBlock{Kind: GenFor, Body: body, Sp: ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}}
	}
}

func (p *Parser) parseGenerateItemsBlock() []ModuleItem {
	if p.eat(KwBegin) {
		if p.eat(Colon) {
			p.expectIdent()
		}
		var items []ModuleItem
		for !p.at(KwEnd) && !p.atEOF() {
			item, ok := p.parseModuleItem()
			if ok {
				items = append(items, item)
			}
		}
		p.expect(KwEnd)
		return items
	}
	item, ok := p.parseModuleItem()
	if !ok {
		return nil
	}
	return []ModuleItem{item}
}
