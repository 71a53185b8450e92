package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/elaborate"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/lang/vhdl"
	"github.com/aion-hdl/aion/internal/lang/verilog"
)

// loadDesign reads every source file in paths, classifies it by extension,
// registers it, and elaborates topName into a Design. in/db/sink are
// shared across every file so spans and diagnostics line up.
func loadDesign(paths []string, topName string, in *ident.Interner, db *ident.SourceDb, sink *diag.Sink) (*ir.Design, error) {
	reg := elaborate.NewRegistry()

	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		file := db.AddFile(path, string(text))

		switch classifyLanguage(path) {
		case langVerilog:
			lex := verilog.NewLexer(string(text), verilog.DialectVerilog2005, file, sink)
			toks := verilog.TokenizeAll(lex)
			p := verilog.NewParser(toks, file, verilog.DialectVerilog2005, sink)
			reg.AddVerilogFile(p.ParseSourceFile(), file, sink)
		case langSystemVerilog:
			lex := verilog.NewLexer(string(text), verilog.DialectSystemVerilog2017, file, sink)
			toks := verilog.TokenizeAll(lex)
			p := verilog.NewParser(toks, file, verilog.DialectSystemVerilog2017, sink)
			reg.AddVerilogFile(p.ParseSourceFile(), file, sink)
		case langVHDL:
			lex := vhdl.NewLexer(string(text), file, sink)
			toks := vhdl.TokenizeAll(lex)
			p := vhdl.NewParser(toks, file, sink)
			reg.AddVHDLFile(p.ParseDesignFile(), file, sink)
		default:
			return nil, fmt.Errorf("%s: unrecognized source extension", path)
		}
	}

	design := elaborate.New(reg, in, db, sink).Elaborate(topName)
	return design, nil
}

type sourceLang int

const (
	langUnknown sourceLang = iota
	langVerilog
	langSystemVerilog
	langVHDL
)

func classifyLanguage(path string) sourceLang {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".v":
		return langVerilog
	case ".sv":
		return langSystemVerilog
	case ".vhd", ".vhdl":
		return langVHDL
	default:
		return langUnknown
	}
}
