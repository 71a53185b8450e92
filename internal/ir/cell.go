package ir

import "github.com/aion-hdl/aion/internal/ident"

// Op is a generic combinational cell operation (width-parameterized).
type Op int

const (
	OpNot Op = iota
	OpAnd
	OpOr
	OpXor
	OpAdd
	OpSub
	OpMul
	OpEq
	OpLt
	OpShl
	OpShr
	OpMux
	OpConcat
	OpBuf // single-input feedthrough; folds away in constant propagation/CSE like any other generic cell
)

func (o Op) String() string {
	names := [...]string{"not", "and", "or", "xor", "add", "sub", "mul", "eq", "lt", "shl", "shr", "mux", "concat", "buf"}
	if int(o) < len(names) {
		return names[o]
	}
	return "?op"
}

// LutMapping describes one LUT produced by technology mapping: its input
// count and truth-table init bits (2^input_count long).
type LutMapping struct {
	InputCount int
	Init       LogicVec
}

// MemPort describes one read or write port of a Memory cell.
type MemPort struct {
	AddrWidth int
	Signal    SignalRef // address / data-in or data-out, per port role
}

// CellKindTag discriminates the CellKind union.
type CellKindTag int

const (
	TagGeneric CellKindTag = iota
	TagDff
	TagLatch
	TagMemory
	TagLut
	TagCarry
	TagBram
	TagDsp
	TagPll
	TagIobuf
	TagConst
	TagInstance
	TagBlackBox
)

// CellKind is the discriminated union of every cell variant named in
// spec.md §3: generic combinational ops, sequential (Dff/Latch), memory,
// mapped primitives (Lut/Carry/Bram/Dsp/Pll/Iobuf), and structural
// (Const/Instance/BlackBox).
type CellKind struct {
	Tag CellKindTag

	// TagGeneric
	GenericOp Op
	Width     int // result width for Generic ops

	// TagDff / TagLatch
	HasReset  bool
	HasEnable bool

	// TagMemory
	Depth        int
	ReadPorts    int
	WritePorts   int

	// TagLut
	LutWidth int
	LutInit  LogicVec

	// TagCarry: opaque vendor config, kept as a string tag (the specific
	// carry-chain shape is architecture-defined and out of this core's
	// scope beyond "a Carry cell exists").
	CarryConfig string

	// TagBram / TagDsp / TagPll: opaque architecture-provided config blob.
	// The core only threads these through; it never interprets them.
	Config map[string]string

	// TagIobuf
	IobufDirection Direction
	IOStandard     string

	// TagConst
	ConstValue LogicVec

	// TagInstance
	InstanceModule ModuleID
	InstanceParams map[string]ParamValue

	// TagBlackBox
	BlackBoxPorts []ident.ID
}

// Connection is one cell-to-signal wiring: a formal port name, its
// direction (resolved lazily against the target's port table per spec.md
// §3 Invariant 5), and the signal-level reference it carries.
type Connection struct {
	PortName  ident.ID
	Direction Direction
	Ref       SignalRef
}

// Cell is one instantiated netlist element.
type Cell struct {
	ID          CellID
	Name        ident.ID
	Kind        CellKind
	Connections []Connection
	Span        ident.Span
}

// ConnByName finds a cell's connection to the given formal port name.
func (c *Cell) ConnByName(in *ident.Interner, name string) (Connection, bool) {
	id := in.Intern(name)
	for _, conn := range c.Connections {
		if conn.PortName == id {
			return conn, true
		}
	}
	return Connection{}, false
}

// SignalRefTag discriminates the SignalRef union.
type SignalRefTag int

const (
	RefSignal SignalRefTag = iota
	RefSlice
	RefConcat
	RefConst
)

// SignalRef is a reference appearing on the LHS/RHS of assignments and on
// cell connections.
type SignalRef struct {
	Tag    SignalRefTag
	Signal SignalID    // RefSignal
	Base   *SignalRef  // RefSlice
	High   int         // RefSlice
	Low    int         // RefSlice
	Parts  []SignalRef // RefConcat, MSB-first
	Const  LogicVec    // RefConst
}

// SigRef builds a plain signal reference.
func SigRef(id SignalID) SignalRef { return SignalRef{Tag: RefSignal, Signal: id} }

// SliceRef builds a bit-slice reference [high:low] of base.
func SliceRef(base SignalRef, high, low int) SignalRef {
	b := base
	return SignalRef{Tag: RefSlice, Base: &b, High: high, Low: low}
}

// ConcatRef builds a concatenation reference, MSB-first.
func ConcatRef(parts ...SignalRef) SignalRef {
	return SignalRef{Tag: RefConcat, Parts: parts}
}

// ConstRef builds a constant reference.
func ConstRef(v LogicVec) SignalRef { return SignalRef{Tag: RefConst, Const: v} }
