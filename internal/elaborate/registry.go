// Package elaborate implements spec.md §4.3: turning the parsed files of
// every supported language into one unified ir.Design rooted at a
// configured top module, resolving instantiation hierarchy across
// language boundaries by module/entity name.
package elaborate

import (
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/lang/vhdl"
	"github.com/aion-hdl/aion/internal/lang/verilog"
)

// ModuleDefKind discriminates which language a registry entry came from.
type ModuleDefKind int

const (
	DefVerilog ModuleDefKind = iota
	DefVHDL
)

// ModuleDef is one registered module/entity, indexed by name across every
// parsed file regardless of source language.
type ModuleDef struct {
	Kind ModuleDefKind
	Name string

	VerilogModule *verilog.ModuleDecl

	VHDLEntity *vhdl.Entity
	VHDLArch   *vhdl.Architecture // nil => black box (no matching architecture)
}

// Registry indexes every parsed module/entity by name, per spec.md §4.3's
// "Module registry" contract.
type Registry struct {
	byName map[string]ModuleDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]ModuleDef)}
}

// AddVerilogFile indexes every module declared in f. On a name collision
// across files, the first registration wins and a warning is emitted
// (spec.md §4.3).
func (r *Registry) AddVerilogFile(f *verilog.SourceFile, file ident.FileID, sink *diag.Sink) {
	for _, m := range f.Modules {
		if _, exists := r.byName[m.Name]; exists {
			sink.Warnf(diag.Elaboration, diag.E205, ident.Span{File: file, Start: m.Sp.Start, End: m.Sp.End},
				"module %q redeclared; first declaration wins", m.Name)
			continue
		}
		r.byName[m.Name] = ModuleDef{Kind: DefVerilog, Name: m.Name, VerilogModule: m}
	}
}

// AddVHDLFile indexes every entity declared in f, pairing each with the
// first architecture found for it (per spec.md §4.3: "first one wins if
// multiple architectures exist"). Call this after all files in a project
// have been parsed so architectures anywhere in the project can pair with
// entities declared earlier.
func (r *Registry) AddVHDLFile(f *vhdl.DesignFile, file ident.FileID, sink *diag.Sink) {
	for _, e := range f.Entities {
		if _, exists := r.byName[e.Name]; exists {
			sink.Warnf(diag.Elaboration, diag.E205, ident.Span{File: file, Start: e.Sp.Start, End: e.Sp.End},
				"entity %q redeclared; first declaration wins", e.Name)
			continue
		}
		r.byName[e.Name] = ModuleDef{Kind: DefVHDL, Name: e.Name, VHDLEntity: e}
	}
	for _, a := range f.Architectures {
		def, ok := r.byName[a.EntityName]
		if !ok || def.Kind != DefVHDL || def.VHDLArch != nil {
			continue
		}
		def.VHDLArch = a
		r.byName[a.EntityName] = def
	}
}

// Lookup finds a registered module/entity by name.
func (r *Registry) Lookup(name string) (ModuleDef, bool) {
	d, ok := r.byName[name]
	return d, ok
}
