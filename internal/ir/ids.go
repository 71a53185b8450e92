package ir

// ModuleID, SignalID, CellID, and ProcessID are stable arena indices.
// Cross-module references use ModuleID only through CellKind's Instance
// variant; everything else is local to one Module's arenas (spec.md §3
// Invariant 1).
type (
	ModuleID  uint32
	SignalID  uint32
	CellID    uint32
	ProcessID uint32
)
