// Package ident provides the process-global string interner shared by every
// compilation stage, plus the source database that maps byte spans back to
// files and line/column positions.
package ident

import "sync"

// ID is an opaque small integer standing for a unique interned string.
// Equality between two IDs is equality of their source strings.
type ID uint32

// Interner interns identifier strings into small integers. It supports
// concurrent get-or-intern after construction; the zero value is not usable,
// use New.
type Interner struct {
	mu      sync.RWMutex
	strings []string
	ids     map[string]ID
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{
		ids: make(map[string]ID),
	}
}

// Intern returns the ID for s, allocating a new one if s was never seen.
// Two calls with byte-equal strings always return the same ID.
func (in *Interner) Intern(s string) ID {
	in.mu.RLock()
	if id, ok := in.ids[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	// re-check: another goroutine may have interned s while we waited for
	// the write lock.
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := ID(len(in.strings))
	in.strings = append(in.strings, s)
	in.ids[s] = id
	return id
}

// Lookup returns the string an ID stands for. Panics on an unknown ID, which
// indicates a programmer error (an ID from a different Interner, or a
// corrupted arena).
func (in *Interner) Lookup(id ID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) >= len(in.strings) {
		panic("ident: Lookup of unknown ID")
	}
	return in.strings[id]
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.strings)
}
