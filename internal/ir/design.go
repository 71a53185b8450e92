package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/aion-hdl/aion/internal/ident"
)

// Direction is a port's data direction.
type Direction int

const (
	Input Direction = iota
	Output
	InOut
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case InOut:
		return "inout"
	default:
		return "?"
	}
}

// Design is the IR root, built once by the elaborator and read immutably by
// every downstream consumer.
type Design struct {
	Modules []*Module // arena, indexed by ModuleID
	Top     ModuleID
	Types   *TypeDb
	HasTop  bool // false when the configured top was not found (spec.md §4.3)
}

// NewDesign creates an empty Design backed by a fresh TypeDb.
func NewDesign() *Design {
	return &Design{Types: NewTypeDb()}
}

// AddModule appends m to the arena and returns its freshly assigned
// ModuleID, also stamping m.ID.
func (d *Design) AddModule(m *Module) ModuleID {
	id := ModuleID(len(d.Modules))
	m.ID = id
	d.Modules = append(d.Modules, m)
	return id
}

// Module looks up a module by ID. Panics on an out-of-range ID, which is a
// programmer error (IDs are only ever arena indices of this Design).
func (d *Design) Module(id ModuleID) *Module {
	return d.Modules[id]
}

// TopModule returns the design's top module, or nil if HasTop is false.
func (d *Design) TopModule() *Module {
	if !d.HasTop {
		return nil
	}
	return d.Modules[d.Top]
}

// ParamValue is an evaluated constant parameter value: either an integer,
// a real, or a logic vector, exactly one of which is meaningful per Kind.
type ParamValue struct {
	Kind  Kind
	Int   int64
	Real  float64
	Logic LogicVec
}

// IntParam builds an Integer-kind ParamValue.
func IntParam(v int64) ParamValue { return ParamValue{Kind: KindInteger, Int: v} }

// String renders the value in the canonical form the content hash uses.
func (p ParamValue) String() string {
	switch p.Kind {
	case KindInteger:
		return fmt.Sprintf("%d", p.Int)
	case KindReal:
		return fmt.Sprintf("%g", p.Real)
	case KindBitVec, KindBit:
		return p.Logic.String()
	default:
		return "?"
	}
}

// Port describes one formal port of a Module.
type Port struct {
	Name      ident.ID
	Direction Direction
	Type      TypeID
	Signal    SignalID
	Span      ident.Span
}

// Module is one elaborated hardware module/entity: its evaluated
// parameters, ports, signals, cells, processes, concurrent assignments,
// clock-domain annotations, and content hash.
type Module struct {
	ID         ModuleID
	Name       ident.ID
	Params     map[string]ParamValue // evaluated, keyed by formal name
	ParamOrder []string              // declaration order, for canonical hashing
	Ports      []Port
	Signals    []Signal
	Cells      []Cell
	Processes  []Process
	Assigns    []ConcurrentAssign
	ClockDoms  map[SignalID]ident.ID // signal -> clock-domain name, if tagged
	ContentHash string
	Span       ident.Span

	// Generate marks which cells originated from generate/for-generate
	// expansion, for diagnostics only (supplemented from original_source's
	// aion_elaborate/src/verilog.rs). No consumer's correctness depends on
	// this set.
	Generate map[CellID]bool
}

// NewModule creates an empty module named name.
func NewModule(name ident.ID) *Module {
	return &Module{
		Name:      name,
		Params:    make(map[string]ParamValue),
		ClockDoms: make(map[SignalID]ident.ID),
		Generate:  make(map[CellID]bool),
	}
}

// ConcurrentAssign is a continuous assignment (`assign lhs = rhs;`).
type ConcurrentAssign struct {
	Target SignalRef
	Value  Expr
	Span   ident.Span
}

// AddSignal appends a signal to the module's arena and returns its ID.
func (m *Module) AddSignal(s Signal) SignalID {
	id := SignalID(len(m.Signals))
	s.ID = id
	m.Signals = append(m.Signals, s)
	return id
}

// AddCell appends a cell to the module's arena and returns its ID.
func (m *Module) AddCell(c Cell) CellID {
	id := CellID(len(m.Cells))
	c.ID = id
	m.Cells = append(m.Cells, c)
	return id
}

// AddProcess appends a process to the module's arena and returns its ID.
func (m *Module) AddProcess(p Process) ProcessID {
	id := ProcessID(len(m.Processes))
	m.Processes = append(m.Processes, p)
	return id
}

// Signal looks up a signal by ID.
func (m *Module) Signal(id SignalID) *Signal { return &m.Signals[id] }

// Cell looks up a cell by ID.
func (m *Module) Cell(id CellID) *Cell { return &m.Cells[id] }

// PortByName finds a port by its interned name, resolving direction for
// consumers that need it lazily per spec.md §3 Invariant 5.
func (m *Module) PortByName(name ident.ID) (Port, bool) {
	for _, p := range m.Ports {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// ComputeContentHash computes and stores m.ContentHash following spec.md
// §3 Invariant 2 / §4.3: H("name:k1=v1,k2=v2,..."), the parameters in
// declaration order (ParamOrder), where H is sha256 truncated to 16 hex
// chars, grounded on the teacher's internal/sid stable-ID formula
// (canonical-string -> sha256 -> truncated hex) rather than a hand-rolled
// hash.
func (m *Module) ComputeContentHash(in *ident.Interner) string {
	pairs := make([]string, len(m.ParamOrder))
	for i, k := range m.ParamOrder {
		pairs[i] = fmt.Sprintf("%s=%s", k, m.Params[k].String())
	}
	canon := in.Lookup(m.Name) + ":" + strings.Join(pairs, ",")
	sum := sha256.Sum256([]byte(canon))
	m.ContentHash = hex.EncodeToString(sum[:])[:16]
	return m.ContentHash
}
