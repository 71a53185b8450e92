package ir

import (
	"fmt"
	"sync"
)

// TypeID is an opaque handle into a TypeDb. Equal types share one TypeID.
type TypeID uint32

// Kind discriminates the structural type variants of spec.md §3.
type Kind int

const (
	KindBit Kind = iota
	KindBitVec
	KindInteger
	KindReal
)

// Type is a structural type: Bit, BitVec{width, signed}, Integer, or Real.
type Type struct {
	Kind   Kind
	Width  int // meaningful for KindBitVec
	Signed bool
}

func (t Type) key() string {
	switch t.Kind {
	case KindBit:
		return "bit"
	case KindBitVec:
		return fmt.Sprintf("bitvec:%d:%v", t.Width, t.Signed)
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	default:
		return fmt.Sprintf("unknown:%d", t.Kind)
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindBit:
		return "bit"
	case KindBitVec:
		if t.Signed {
			return fmt.Sprintf("signed [%d:0]", t.Width-1)
		}
		return fmt.Sprintf("[%d:0]", t.Width-1)
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	default:
		return "<invalid type>"
	}
}

// BitVecWidth returns the bit width of t: 1 for Bit, t.Width for BitVec, 32
// for Integer (the toolchain's constant-evaluation width), 0 for Real.
func (t Type) BitVecWidth() int {
	switch t.Kind {
	case KindBit:
		return 1
	case KindBitVec:
		return t.Width
	case KindInteger:
		return 32
	default:
		return 0
	}
}

// TypeDb is a grow-only hash-consed table of structural types: equal types
// (by t.key()) always resolve to the same TypeID. Safe for concurrent
// get-or-intern.
type TypeDb struct {
	mu    sync.RWMutex
	types []Type
	ids   map[string]TypeID
}

// NewTypeDb creates an empty TypeDb pre-seeded with the Bit, Integer, and
// Real singletons.
func NewTypeDb() *TypeDb {
	db := &TypeDb{ids: make(map[string]TypeID)}
	db.Intern(Type{Kind: KindBit})
	db.Intern(Type{Kind: KindInteger})
	db.Intern(Type{Kind: KindReal})
	return db
}

// Intern returns t's TypeID, allocating a new entry if t was not seen
// before under its structural key.
func (db *TypeDb) Intern(t Type) TypeID {
	key := t.key()
	db.mu.RLock()
	if id, ok := db.ids[key]; ok {
		db.mu.RUnlock()
		return id
	}
	db.mu.RUnlock()

	db.mu.Lock()
	defer db.mu.Unlock()
	if id, ok := db.ids[key]; ok {
		return id
	}
	id := TypeID(len(db.types))
	db.types = append(db.types, t)
	db.ids[key] = id
	return id
}

// Lookup returns the Type an id stands for.
func (db *TypeDb) Lookup(id TypeID) Type {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.types[id]
}

// BitType, IntegerType, RealType return the singleton TypeIDs for the
// corresponding non-parameterized kinds.
func (db *TypeDb) BitType() TypeID     { return db.Intern(Type{Kind: KindBit}) }
func (db *TypeDb) IntegerType() TypeID { return db.Intern(Type{Kind: KindInteger}) }
func (db *TypeDb) RealType() TypeID    { return db.Intern(Type{Kind: KindReal}) }

// BitVecType interns a BitVec{width, signed} type.
func (db *TypeDb) BitVecType(width int, signed bool) TypeID {
	return db.Intern(Type{Kind: KindBitVec, Width: width, Signed: signed})
}
