package verilog

import (
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

// Parser is a recursive-descent parser with a Pratt expression layer,
// carrying the primitive operations of spec.md §4.2 uniformly: a token
// vector, a cursor, the source file id, and a diagnostic sink.
type Parser struct {
	toks    []Token
	pos     int
	file    ident.FileID
	sink    *diag.Sink
	dialect Dialect
}

// NewParser constructs a Parser over toks (as produced by TokenizeAll).
func NewParser(toks []Token, file ident.FileID, dialect Dialect, sink *diag.Sink) *Parser {
	return &Parser{toks: toks, file: file, dialect: dialect, sink: sink}
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

func (p *Parser) atEOF() bool { return p.current().Kind == EOF }

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
	if p.at(Ident) || p.at(EscapedIdent) {
		return p.advance().Text
	}
	p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
		"expected identifier, found %s %q", p.current().Kind, p.current().Text)
	return ""
}

func (p *Parser) peekKind(offset int) TokenKind {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return EOF
	}
	return p.toks[idx].Kind
}

// recoverToSemicolon skips tokens until past the next Semi or EOF, used to
// resynchronize after a statement-level parse error.
func (p *Parser) recoverToSemicolon() {
	for !p.atEOF() && !p.at(Semi) {
		p.advance()
	}
	p.eat(Semi)
}

// recoverToBlockEnd skips until one of the given terminator kinds (not
// consumed), used after a module-item-level parse error.
func (p *Parser) recoverToBlockEnd(terminators ...TokenKind) {
	for !p.atEOF() {
		for _, t := range terminators {
			if p.at(t) {
				return
			}
		}
		p.advance()
	}
}

// ParseSourceFile parses a whole file's worth of top-level modules.
func (p *Parser) ParseSourceFile() *SourceFile {
	start := p.currentSpan()
	f := &SourceFile{}
	for !p.atEOF() {
		switch p.current().Kind {
		case KwModule:
			f.Modules = append(f.Modules, p.parseModule())
		default:
			p.sink.Errorf(diag.Syntax, diag.PAR001, p.currentSpan(),
				"expected module declaration, found %s %q", p.current().Kind, p.current().Text)
			p.recoverToBlockEnd(KwModule)
		}
	}
	f.Sp = ident.Span{File: p.file, Start: start.Start, End: p.prevSpan().End}
	return f
}
