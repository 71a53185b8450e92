package ir

import "github.com/aion-hdl/aion/internal/ident"

// SignalKind classifies a Signal's origin.
type SignalKind int

const (
	KindPort SignalKind = iota
	KindWire
	KindReg
)

// Signal is one named, typed value-carrying entity within a Module.
type Signal struct {
	ID      SignalID
	Name    ident.ID
	Type    TypeID
	Kind    SignalKind
	Initial *LogicVec  // optional initial value
	Clock   *ident.ID  // optional clock-domain tag
	Span    ident.Span

	// Comment is an optional trailing same-line source comment, carried
	// purely for diagnostic round-tripping (supplemented from
	// original_source's aion_elaborate). Never consulted for correctness.
	Comment string
}
