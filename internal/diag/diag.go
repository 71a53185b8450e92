// Package diag implements the thread-safe diagnostic sink threaded through
// every pipeline stage, plus the category+code error taxonomy of the
// toolchain (lexical, syntax, elaboration, type, synthesis, timing,
// simulation, internal).
package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aion-hdl/aion/internal/ident"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Category groups diagnostic codes per spec.md §7's taxonomy table.
type Category string

const (
	Lexical     Category = "lexical"
	Syntax      Category = "syntax"
	Elaboration Category = "elaboration"
	TypeCat     Category = "type"
	Synthesis   Category = "synthesis"
	Timing      Category = "timing"
	Simulation  Category = "simulation"
	Internal    Category = "internal"
)

// Diagnostic is one reported error/warning/info, carrying a code, a primary
// source label, and an optional suggested fix.
type Diagnostic struct {
	Severity Severity
	Category Category
	Code     string // e.g. "E206", "TIMING-10", "PAR002"
	Message  string
	Span     ident.Span
	Fix      string // optional suggested fix, empty if none
}

// Schema is the stable JSON schema identifier for the wire form of a
// Diagnostic, mirroring the teacher's "ailang.error/v1" versioned schema.
const Schema = "aion.diagnostic/v1"

// Sink is a thread-safe, append-only accumulator of diagnostics. Consumers
// take a Sorted() snapshot, or TakeAll() to reset it, at well-defined points
// between pipeline stages.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewSink creates an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends d to the sink. Safe for concurrent use.
func (s *Sink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, d)
}

// Errorf reports an Error-severity diagnostic.
func (s *Sink) Errorf(cat Category, code string, span ident.Span, format string, args ...any) {
	s.Report(Diagnostic{Severity: Error, Category: cat, Code: code, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Warnf reports a Warning-severity diagnostic.
func (s *Sink) Warnf(cat Category, code string, span ident.Span, format string, args ...any) {
	s.Report(Diagnostic{Severity: Warning, Category: cat, Code: code, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns a snapshot of everything reported so far, in report
// order (unsorted).
func (s *Sink) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Sorted returns a snapshot sorted by ascending span (file, then start byte),
// satisfying the ordering guarantee of spec.md §5: "preserve deterministic
// iteration order when reporting diagnostics (sort by span)".
func (s *Sink) Sorted() []Diagnostic {
	out := s.Diagnostics()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span, out[j].Span
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Start < b.Start
	})
	return out
}

// TakeAll returns a snapshot and clears the sink.
func (s *Sink) TakeAll() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items
	s.items = nil
	return out
}

// HasErrors reports whether any Error-severity diagnostic was reported.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Len returns the number of diagnostics reported so far.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
