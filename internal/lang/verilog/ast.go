package verilog

import "github.com/aion-hdl/aion/internal/ident"

// Node is implemented by every AST node so the elaborator can report
// diagnostics against source spans uniformly.
type Node interface {
	Span() ident.Span
}

// SourceFile is the root of one parsed file: zero or more module/
// interface/package declarations.
type SourceFile struct {
	Modules []*ModuleDecl
	Sp      ident.Span
}

func (f *SourceFile) Span() ident.Span { return f.Sp }

// PortDir mirrors ir.Direction at the syntax level, before elaboration.
type PortDir int

const (
	DirInput PortDir = iota
	DirOutput
	DirInout
)

// NetKind distinguishes declared net/variable kinds.
type NetKind int

const (
	NetWire NetKind = iota
	NetReg
	NetLogic
	NetInteger
	NetReal
)

// RangeExpr is an optional `[msb:lsb]` range; nil Msb/Lsb means unranged
// (scalar, 1 bit).
type RangeExpr struct {
	Msb, Lsb Expr
}

// PortDecl is one port in a module's port list.
type PortDecl struct {
	Name    string
	Dir     PortDir
	Kind    NetKind
	Signed  bool
	Range   *RangeExpr
	Sp      ident.Span
}

func (p *PortDecl) Span() ident.Span { return p.Sp }

// ParamDecl is one parameter or localparam declaration.
type ParamDecl struct {
	Name    string
	Local   bool
	Default Expr
	Sp      ident.Span
}

func (p *ParamDecl) Span() ident.Span { return p.Sp }

// NetDecl declares one or more signals of a given kind/range.
type NetDecl struct {
	Kind   NetKind
	Signed bool
	Range  *RangeExpr
	Names  []string
	Sp     ident.Span
}

func (d *NetDecl) Span() ident.Span { return d.Sp }

// ContinuousAssign is a top-level `assign lhs = rhs;`.
type ContinuousAssign struct {
	LHS Expr
	RHS Expr
	Sp  ident.Span
}

func (a *ContinuousAssign) Span() ident.Span { return a.Sp }

// AlwaysKind classifies which always-family construct produced a block.
type AlwaysKind int

const (
	AlwaysPlain AlwaysKind = iota
	AlwaysComb
	AlwaysFF
	AlwaysLatch
	Initial
)

// EventExpr is one element of an `@(...)` sensitivity list.
type EventExpr struct {
	Edge   Edge2 // none/posedge/negedge
	Signal Expr
}

// Edge2 avoids colliding with the ir package's Edge type name at the AST
// layer; the elaborator maps this to ir.Edge.
type Edge2 int

const (
	EdgeNone Edge2 = iota
	EdgePosedge
	EdgeNegedge
)

// AlwaysBlock is one `always`/`always_comb`/`always_ff`/`always_latch`/
// `initial` construct.
type AlwaysBlock struct {
	Kind       AlwaysKind
	Star       bool // @(*) or @* — full sensitivity inferred at elaboration
	Events     []EventExpr
	Body       Stmt
	Sp         ident.Span
}

func (a *AlwaysBlock) Span() ident.Span { return a.Sp }

// PortConnKind distinguishes named vs. positional instance connections.
type PortConnKind int

const (
	ConnPositional PortConnKind = iota
	ConnNamed
)

// PortConn is one actual-to-formal connection in an instantiation.
type PortConn struct {
	Kind    PortConnKind
	Formal  string // only meaningful when Kind == ConnNamed
	Actual  Expr
}

// ParamOverride is one `#(.NAME(value))` or positional parameter override.
type ParamOverride struct {
	Kind   PortConnKind
	Formal string
	Value  Expr
}

// Instance is one module instantiation statement at module-item scope.
type Instance struct {
	ModuleName string
	InstName   string
	Params     []ParamOverride
	Conns      []PortConn
	Sp         ident.Span
}

func (i *Instance) Span() ident.Span { return i.Sp }

// GenerateKind distinguishes generate-for/if/case constructs.
type GenerateKind int

const (
	GenFor GenerateKind = iota
	GenIf
	GenCase
)

// GenerateBlock is a generate construct; only GenFor/GenIf with a single
// taken branch are elaborated (spec.md's documented scope).
type GenerateBlock struct {
	Kind     GenerateKind
	Label    string
	GenVar   string
	Init     Expr
	Cond     Expr
	Step     Expr
	Body     []ModuleItem
	ElseBody []ModuleItem
	Sp       ident.Span
}

func (g *GenerateBlock) Span() ident.Span { return g.Sp }

// ModuleItem is a tagged union over everything that can appear directly
// inside a module body, mirrored as a flat struct in the same style as
// ir.CellKind to keep the two IR layers visually consistent.
type ModuleItemTag int

const (
	ItemNetDecl ModuleItemTag = iota
	ItemParamDecl
	ItemContinuousAssign
	ItemAlwaysBlock
	ItemInstance
	ItemGenerate
)

type ModuleItem struct {
	Tag      ModuleItemTag
	Net      *NetDecl
	Param    *ParamDecl
	Assign   *ContinuousAssign
	Always   *AlwaysBlock
	Instance *Instance
	Generate *GenerateBlock
}

func (m ModuleItem) Span() ident.Span {
	switch m.Tag {
	case ItemNetDecl:
		return m.Net.Sp
	case ItemParamDecl:
		return m.Param.Sp
	case ItemContinuousAssign:
		return m.Assign.Sp
	case ItemAlwaysBlock:
		return m.Always.Sp
	case ItemInstance:
		return m.Instance.Sp
	case ItemGenerate:
		return m.Generate.Sp
	}
	return ident.DUMMY
}

// ModuleDecl is one `module ... endmodule` declaration.
type ModuleDecl struct {
	Name   string
	Params []*ParamDecl
	Ports  []*PortDecl
	Items  []ModuleItem
	Sp     ident.Span
}

func (m *ModuleDecl) Span() ident.Span { return m.Sp }

// --- Expressions -----------------------------------------------------

// ExprTag discriminates the Expr union, mirroring ir.ExprTag's flat-union
// shape at the syntax level.
type ExprTag int

const (
	ExNumber ExprTag = iota
	ExString
	ExIdent
	ExUnary
	ExBinary
	ExTernary
	ExConcat
	ExReplicate
	ExIndex      // a[i]
	ExPartSelect // a[msb:lsb]
	ExIndexedPartSelect // a[base +: width] / a[base -: width]
	ExCall       // function call or system call like $signed(x)
)

type Expr struct {
	Tag ExprTag
	Sp  ident.Span

	// ExNumber
	NumberText string

	// ExString
	StringVal string

	// ExIdent / ExCall callee name
	Name string

	// ExUnary
	UnOp UnaryOp
	X    *Expr

	// ExBinary
	BinOp BinOp
	L, R  *Expr

	// ExTernary
	Cond, Then, Else *Expr

	// ExConcat
	Elems []Expr

	// ExReplicate: {Count{Elems...}}
	Count *Expr

	// ExIndex/ExPartSelect/ExIndexedPartSelect
	Base           *Expr
	Index          *Expr // ExIndex, or base for +:/-:
	Msb, Lsb       *Expr // ExPartSelect
	PlusColonWidth *Expr // ExIndexedPartSelect; sign carried by IndexedDown
	IndexedDown    bool  // true for -:, false for +:

	// ExCall
	Args []Expr
}

func (e *Expr) Span() ident.Span { return e.Sp }

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	UnPlus UnaryOp = iota
	UnMinus
	UnLogNot
	UnBitNot
	UnAndReduce
	UnNandReduce
	UnOrReduce
	UnNorReduce
	UnXorReduce
	UnXnorReduce
)

// BinOp enumerates binary operators in spec.md §4.2's precedence table.
type BinOp int

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinPow
	BinShl
	BinShr
	BinAShl
	BinAShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNeq
	BinCaseEq
	BinCaseNeq
	BinWildEq
	BinWildNeq
	BinLogAnd
	BinLogOr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinBitXnor
)

// Stmt mirrors ir.Statement's tag shape at the syntax level, before
// lowering assigns signal names instead of resolved SignalRefs.
type StmtTag int

const (
	StBlock StmtTag = iota
	StBlockingAssign
	StNonBlockingAssign
	StIf
	StCase
	StFor
	StWait
	StSystemCall // $display/$write/$finish
	StNull
)

type Stmt struct {
	Tag StmtTag
	Sp  ident.Span

	// StBlock
	Stmts []Stmt

	// St*Assign
	LHS Expr
	RHS Expr

	// StIf
	Cond Expr
	Then *Stmt
	Else *Stmt

	// StCase
	CaseKind  CaseKind
	Subject   Expr
	Arms      []StmtCaseArm
	Default   *Stmt

	// StFor
	InitLHS  string
	InitRHS  Expr
	ForCond  Expr
	StepLHS  string
	StepOp   BinOp
	StepRHS  Expr
	Body     *Stmt

	// StWait
	DelayFS *uint64

	// StSystemCall
	CallName string
	CallArgs []Expr
}

func (s *Stmt) Span() ident.Span { return s.Sp }

// CaseKind distinguishes case/casex/casez.
type CaseKind int

const (
	CaseNormal CaseKind = iota
	CaseX
	CaseZ
)

// StmtCaseArm is one `value(s): statement` arm.
type StmtCaseArm struct {
	Values []Expr // empty means default
	Body   Stmt
}
