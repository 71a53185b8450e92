package sim

import "github.com/aion-hdl/aion/internal/ir"

// SimSignalId is a flat index into the kernel's signal arena, assigned
// once at construction time by flattening the design's instance hierarchy.
// Unlike ir.SignalID (scoped to one Module), a SimSignalId is globally
// unique across the whole elaborated design.
type SimSignalId int

// DriveStrength orders the kernel's multi-driver resolution lattice: a
// stronger driver wins per-bit over a weaker one. Continuous assigns and
// DFF/latch outputs drive at Strong; nothing in this toolchain currently
// produces a Weak or Supply drive, but the lattice is kept general because
// spec.md §4.7 describes driver resolution as strength-based rather than
// last-writer-wins.
type DriveStrength int

const (
	StrengthHighZ DriveStrength = iota
	StrengthWeak
	StrengthStrong
	StrengthSupply
)

// driver is one source asserting a value onto a signal. owner identifies
// which procState this slot belongs to, so repeated commits from the same
// process update the same slot instead of appending duplicates.
type driver struct {
	owner    *procState
	strength DriveStrength
	value    ir.LogicVec
}

// simSignal is one flattened signal's live simulation state.
type simSignal struct {
	id      SimSignalId
	name    string // fully dotted hierarchical name, e.g. "top.child.out"
	width   int
	value   ir.LogicVec
	drivers []driver

	// sensitized holds every process sensitive to this signal's transitions,
	// derived once at kernel-build time from each Process's Sensitivity.
	sensitized []*procState
}

// resolveDrivers folds drivers down to a single LogicVec per spec.md §4.7's
// drive-strength rule: the strongest driver(s) win; a tie among drivers of
// equal (and maximal) strength resolves bit-by-bit, with a per-bit value
// conflict among them resolving to X.
func resolveDrivers(width int, drivers []driver) ir.LogicVec {
	if len(drivers) == 0 {
		return ir.Repeat(width, ir.BitZ)
	}
	best := StrengthHighZ
	for _, d := range drivers {
		if d.strength > best {
			best = d.strength
		}
	}
	out := ir.Repeat(width, ir.BitZ)
	set := make([]bool, width)
	for _, d := range drivers {
		if d.strength != best {
			continue
		}
		v := d.value
		for i := 0; i < width; i++ {
			var bit ir.Bit
			if i < v.Width() {
				bit = v.Bits[i]
			} else {
				bit = ir.Bit0
			}
			if !set[i] {
				out.Bits[i] = bit
				set[i] = true
			} else if out.Bits[i] != bit {
				out.Bits[i] = ir.BitX
			}
		}
	}
	return out
}
