package ident

import (
	"sort"
)

// FileID identifies a source file registered with a SourceDb.
type FileID uint32

// Span is a (file, start-byte, end-byte) triple attached to every AST and IR
// node. DUMMY is the reserved sentinel for synthesized nodes with no origin.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// DUMMY is the sentinel span for nodes synthesized by a pass rather than
// parsed from source (e.g. cells inserted by the elaborator or optimizer).
var DUMMY = Span{File: ^FileID(0), Start: 0, End: 0}

// IsDummy reports whether s is the DUMMY sentinel.
func (s Span) IsDummy() bool { return s == DUMMY }

// Position is a human-readable file:line:col location.
type Position struct {
	File   string
	Line   int // 1-based
	Column int // 1-based, in runes
}

// SourceDb owns the text of every registered file and maps byte offsets back
// to line/column positions. Safe for concurrent read-only lookup once all
// files have been added; AddFile itself is not safe to call concurrently
// with lookups.
type SourceDb struct {
	files     []fileEntry
	byName    map[string]FileID
}

type fileEntry struct {
	name      string
	text      string
	lineStart []int // byte offset of the start of each line
}

// NewSourceDb creates an empty source database.
func NewSourceDb() *SourceDb {
	return &SourceDb{byName: make(map[string]FileID)}
}

// AddFile registers a file's full text and returns its FileID. Calling
// AddFile twice with the same name returns the same FileID without
// re-registering the text.
func (db *SourceDb) AddFile(name, text string) FileID {
	if id, ok := db.byName[name]; ok {
		return id
	}
	id := FileID(len(db.files))
	db.files = append(db.files, fileEntry{
		name:      name,
		text:      text,
		lineStart: computeLineStarts(text),
	})
	db.byName[name] = id
	return id
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i, b := range []byte(text) {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// FileName returns the registered name for id.
func (db *SourceDb) FileName(id FileID) string {
	if int(id) >= len(db.files) {
		return "<unknown>"
	}
	return db.files[id].name
}

// Text returns the full source text of the file id was registered with.
func (db *SourceDb) Text(id FileID) string {
	if int(id) >= len(db.files) {
		return ""
	}
	return db.files[id].text
}

// Snippet returns the source text covered by span.
func (db *SourceDb) Snippet(span Span) string {
	if span.IsDummy() || int(span.File) >= len(db.files) {
		return ""
	}
	text := db.files[span.File].text
	start, end := int(span.Start), int(span.End)
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	if end < start {
		end = start
	}
	return text[start:end]
}

// PositionOf converts a byte offset within file into a Position.
func (db *SourceDb) PositionOf(file FileID, offset uint32) Position {
	if int(file) >= len(db.files) {
		return Position{File: "<unknown>", Line: 1, Column: 1}
	}
	f := db.files[file]
	off := int(offset)
	// binary search for the last lineStart <= off
	idx := sort.Search(len(f.lineStart), func(i int) bool {
		return f.lineStart[i] > off
	}) - 1
	if idx < 0 {
		idx = 0
	}
	lineStart := f.lineStart[idx]
	col := 1 + len([]rune(f.text[lineStart:min(off, len(f.text))]))
	return Position{File: f.name, Line: idx + 1, Column: col}
}

// StartPosition returns the human-readable position of a span's start byte.
func (db *SourceDb) StartPosition(span Span) Position {
	if span.IsDummy() {
		return Position{File: "<synthesized>", Line: 0, Column: 0}
	}
	return db.PositionOf(span.File, span.Start)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
