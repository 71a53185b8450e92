package diag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/aion-hdl/aion/internal/ident"
)

// wireDiagnostic is the stable JSON shape for a Diagnostic, versioned by
// Schema. Field order and names must not change across a schema version.
type wireDiagnostic struct {
	Schema   string `json:"schema"`
	Severity string `json:"severity"`
	Category string `json:"category"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Fix      string `json:"fix,omitempty"`
}

// JSONRenderer emits diagnostics as the stable schema described in spec.md
// §7 ("a JSON renderer emits a stable schema").
type JSONRenderer struct {
	db *ident.SourceDb
}

// NewJSONRenderer creates a renderer that resolves spans via db.
func NewJSONRenderer(db *ident.SourceDb) *JSONRenderer {
	return &JSONRenderer{db: db}
}

// Render encodes diagnostics as a JSON array, one object per diagnostic.
func (r *JSONRenderer) Render(diags []Diagnostic) (string, error) {
	wire := make([]wireDiagnostic, 0, len(diags))
	for _, d := range diags {
		w := wireDiagnostic{
			Schema:   Schema,
			Severity: d.Severity.String(),
			Category: string(d.Category),
			Code:     d.Code,
			Message:  d.Message,
			Fix:      d.Fix,
		}
		if !d.Span.IsDummy() && r.db != nil {
			pos := r.db.StartPosition(d.Span)
			w.File, w.Line, w.Column = pos.File, pos.Line, pos.Column
		}
		wire = append(wire, w)
	}
	b, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TerminalRenderer renders diagnostics for a human-readable terminal,
// wrapping the message at a configurable width and coloring by severity
// (grounded on the teacher's cmd/ailang use of fatih/color for terminal
// highlighting).
type TerminalRenderer struct {
	db    *ident.SourceDb
	Width int // message wrap width; 0 disables wrapping
}

// NewTerminalRenderer creates a renderer that resolves spans via db.
func NewTerminalRenderer(db *ident.SourceDb) *TerminalRenderer {
	return &TerminalRenderer{db: db, Width: 100}
}

// Render formats one diagnostic as severity, category+code, a primary
// source label ("file:line:col"), and the message, followed by a caret span
// when source text is available.
func (r *TerminalRenderer) Render(d Diagnostic) string {
	sevColor := color.New(color.FgYellow)
	if d.Severity == Error {
		sevColor = color.New(color.FgRed, color.Bold)
	} else if d.Severity == Info {
		sevColor = color.New(color.FgCyan)
	}

	var loc string
	if !d.Span.IsDummy() && r.db != nil {
		pos := r.db.StartPosition(d.Span)
		loc = fmt.Sprintf("%s:%d:%d: ", pos.File, pos.Line, pos.Column)
	}

	header := fmt.Sprintf("%s%s[%s/%s] %s", loc, sevColor.Sprint(d.Severity.String()), d.Category, d.Code, wrap(d.Message, r.Width))

	var lines []string
	lines = append(lines, header)
	if caret := r.caretLine(d.Span); caret != "" {
		lines = append(lines, caret)
	}
	if d.Fix != "" {
		lines = append(lines, "  fix: "+d.Fix)
	}
	return strings.Join(lines, "\n")
}

// RenderAll renders every diagnostic, separated by blank lines.
func (r *TerminalRenderer) RenderAll(diags []Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = r.Render(d)
	}
	return strings.Join(parts, "\n\n")
}

func (r *TerminalRenderer) caretLine(span ident.Span) string {
	if span.IsDummy() || r.db == nil {
		return ""
	}
	snippet := r.db.Snippet(span)
	if snippet == "" {
		return ""
	}
	width := len([]rune(snippet))
	if width == 0 {
		width = 1
	}
	return "  " + strings.Repeat("^", width)
}

func wrap(msg string, width int) string {
	if width <= 0 || len(msg) <= width {
		return msg
	}
	words := strings.Fields(msg)
	var lines []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len()+len(w)+1 > width && cur.Len() > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n    ")
}
