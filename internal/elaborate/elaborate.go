package elaborate

import (
	"fmt"
	"sort"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// Elaborator carries the context of spec.md §4.3: the registry, the
// interner, the source DB, the diagnostic sink, the in-progress Design,
// an elaboration stack for cycle detection, and a memoization cache keyed
// by (module_name, canonical_parameter_binding).
type Elaborator struct {
	reg      *Registry
	interner *ident.Interner
	sourceDb *ident.SourceDb
	sink     *diag.Sink
	design   *ir.Design

	stack []string
	memo  map[string]ir.ModuleID
}

// New constructs an Elaborator over a populated Registry.
func New(reg *Registry, in *ident.Interner, db *ident.SourceDb, sink *diag.Sink) *Elaborator {
	return &Elaborator{
		reg: reg, interner: in, sourceDb: db, sink: sink,
		memo: make(map[string]ir.ModuleID),
	}
}

// Elaborate builds a Design rooted at topName. It always returns a fully
// formed Design, even when errors are emitted — an empty design (HasTop
// false) when the top module is not found, per spec.md §4.3.
func (e *Elaborator) Elaborate(topName string) *ir.Design {
	e.design = ir.NewDesign()
	if _, ok := e.reg.Lookup(topName); !ok {
		e.sink.Errorf(diag.Elaboration, diag.E206, ident.DUMMY, "top module %q not found", topName)
		return e.design
	}
	id, ok := e.elaborateModule(topName, nil)
	if !ok {
		return e.design
	}
	e.design.Top = id
	e.design.HasTop = true
	return e.design
}

// canonicalParamKey renders name plus overrides, sorted by formal name, as
// the deterministic memoization cache key. It is not the string that
// ComputeContentHash hashes.
func canonicalParamKey(name string, overrides map[string]ir.ParamValue) string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := name
	for _, k := range keys {
		s += fmt.Sprintf(":%s=%s", k, overrides[k].String())
	}
	return s
}

// elaborateModule builds (or retrieves from cache) the Module for name
// under the given parameter overrides, implementing instantiation's
// cache-hit/cache-miss/cycle-detection algorithm.
func (e *Elaborator) elaborateModule(name string, overrides map[string]ir.ParamValue) (ir.ModuleID, bool) {
	canon := canonicalParamKey(name, overrides)
	if id, ok := e.memo[canon]; ok {
		return id, true
	}
	for _, s := range e.stack {
		if s == name {
			e.sink.Errorf(diag.Elaboration, diag.E202, ident.DUMMY,
				"recursive instantiation cycle involving module %q", name)
			return 0, false
		}
	}
	def, ok := e.reg.Lookup(name)
	if !ok {
		e.sink.Errorf(diag.Elaboration, diag.E201, ident.DUMMY, "unknown module/entity %q", name)
		return 0, false
	}

	e.stack = append(e.stack, name)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	m := ir.NewModule(e.interner.Intern(name))

	switch def.Kind {
	case DefVerilog:
		e.lowerVerilogModule(def.VerilogModule, overrides, m)
	case DefVHDL:
		if def.VHDLArch == nil {
			e.lowerVHDLBlackBox(def.VHDLEntity, overrides, m)
		} else {
			e.lowerVHDLEntity(def.VHDLEntity, def.VHDLArch, overrides, m)
		}
	}

	m.ComputeContentHash(e.interner)
	id := e.design.AddModule(m)
	e.memo[canon] = id
	return id, true
}
