package waveform

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/sim"
)

// Timescale records the conversion factor from a VCD file's own time unit
// to femtoseconds, taken from its $timescale header.
type Timescale struct {
	FsPerUnit uint64
}

// SignalDef is one signal declared by a loaded VCD's $var block.
type SignalDef struct {
	IDCode  string
	Name    string // dotted hierarchical name, scope path joined with "."
	Width   int
	VarType string
}

// ValueChange is one entry in a loaded signal's history.
type ValueChange struct {
	TimeFs uint64
	Value  ir.LogicVec
}

// LoadedWaveform is a VCD file's header and value-change histories, parsed
// back into memory for inspection or replay.
type LoadedWaveform struct {
	Timescale Timescale
	Signals   []SignalDef
	Histories [][]ValueChange // parallel to Signals
}

// LoadVcdFile opens path and parses it as a VCD file.
func LoadVcdFile(path string) (*LoadedWaveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("waveform: open vcd file: %w", err)
	}
	defer f.Close()
	return LoadVcd(f)
}

// vcdParser holds the state threaded through a single LoadVcd call.
type vcdParser struct {
	timescale   Timescale
	signals     []SignalDef
	idToIdx     map[string]int
	histories   [][]ValueChange
	scopeStack  []string
	inDefs      bool
	sawEndDefs  bool
	currentTime uint64
	lineNum     int

	pendingKeyword string
	pendingBody    strings.Builder
	havePending    bool
}

// LoadVcd parses a VCD file (IEEE 1364 §18), the format VcdRecorder writes.
// It tolerates $scope/$var/$timescale blocks split across multiple lines,
// a $dumpvars section, multi-character id codes, and left-extension of
// short binary values per the fill rule (0, unless the MSB digit is x/z).
func LoadVcd(r io.Reader) (*LoadedWaveform, error) {
	p := &vcdParser{
		idToIdx:   make(map[string]int),
		inDefs:    true,
		timescale: Timescale{FsPerUnit: 1},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := p.feed(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("waveform: read vcd: %w", err)
	}
	if !p.sawEndDefs && len(p.signals) > 0 {
		return nil, fmt.Errorf("waveform: vcd missing $enddefinitions")
	}

	return &LoadedWaveform{
		Timescale: p.timescale,
		Signals:   p.signals,
		Histories: p.histories,
	}, nil
}

func (p *vcdParser) feed(line string) error {
	if p.havePending {
		if idx := strings.Index(line, "$end"); idx >= 0 {
			p.pendingBody.WriteByte(' ')
			p.pendingBody.WriteString(strings.TrimSpace(line[:idx]))
			if err := p.processKeyword(p.pendingKeyword, strings.TrimSpace(p.pendingBody.String())); err != nil {
				return err
			}
			p.havePending = false
			p.pendingBody.Reset()
		} else {
			p.pendingBody.WriteByte(' ')
			p.pendingBody.WriteString(line)
		}
		return nil
	}

	if p.inDefs {
		if strings.HasPrefix(line, "$enddefinitions") {
			p.sawEndDefs = true
			p.inDefs = false
			return nil
		}
		kw, ok := extractKeyword(line)
		if !ok {
			return nil
		}
		if strings.Contains(line, "$end") && kw != "enddefinitions" {
			return p.processKeyword(kw, extractKeywordBody(line))
		}
		// Multi-line block: start collecting until a later $end.
		p.pendingKeyword = kw
		p.pendingBody.Reset()
		if kw == "scope" || kw == "upscope" || kw == "var" || kw == "timescale" {
			p.pendingBody.WriteString(extractKeywordBody(line))
		}
		p.havePending = true
		return nil
	}

	// Value-change phase.
	if strings.HasPrefix(line, "$dumpvars") || strings.HasPrefix(line, "$end") {
		return nil
	}
	if rest, ok := strings.CutPrefix(line, "#"); ok {
		t, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return fmt.Errorf("waveform: line %d: invalid timestamp %q", p.lineNum, line)
		}
		p.currentTime = t * p.timescale.FsPerUnit
		return nil
	}
	return p.parseValueChange(line)
}

func (p *vcdParser) processKeyword(keyword, body string) error {
	switch keyword {
	case "timescale":
		fsPerUnit, err := parseTimescale(body)
		if err != nil {
			return fmt.Errorf("waveform: line %d: %w", p.lineNum, err)
		}
		p.timescale.FsPerUnit = fsPerUnit
	case "scope":
		parts := strings.Fields(body)
		if len(parts) >= 2 {
			p.scopeStack = append(p.scopeStack, parts[1])
		} else if len(parts) == 1 {
			p.scopeStack = append(p.scopeStack, parts[0])
		}
	case "upscope":
		if len(p.scopeStack) > 0 {
			p.scopeStack = p.scopeStack[:len(p.scopeStack)-1]
		}
	case "var":
		parts := strings.Fields(body)
		if len(parts) < 4 {
			return fmt.Errorf("waveform: line %d: invalid $var: %q", p.lineNum, body)
		}
		width, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("waveform: line %d: invalid $var width: %q", p.lineNum, parts[1])
		}
		name := parts[3]
		if len(p.scopeStack) > 0 {
			name = strings.Join(p.scopeStack, ".") + "." + name
		}
		idx := len(p.signals)
		p.signals = append(p.signals, SignalDef{
			IDCode:  parts[2],
			Name:    name,
			Width:   width,
			VarType: parts[0],
		})
		p.idToIdx[parts[2]] = idx
		p.histories = append(p.histories, nil)
	default:
		// $comment, $date, $version and similar carry no parser state.
	}
	return nil
}

func (p *vcdParser) parseValueChange(line string) error {
	if line == "" {
		return nil
	}
	switch line[0] {
	case 'b', 'B':
		fields := strings.Fields(line[1:])
		if len(fields) < 2 {
			return fmt.Errorf("waveform: line %d: invalid binary value change: %q", p.lineNum, line)
		}
		idx, ok := p.idToIdx[fields[1]]
		if !ok {
			return nil
		}
		value := parseBinaryValue(fields[0], p.signals[idx].Width)
		p.histories[idx] = append(p.histories[idx], ValueChange{TimeFs: p.currentTime, Value: value})
	case '0', '1', 'x', 'X', 'z', 'Z':
		code := line[1:]
		idx, ok := p.idToIdx[code]
		if !ok {
			return nil
		}
		v := ir.NewLogicVec(1, 0)
		v.Bits[0] = charToBit(line[0])
		p.histories[idx] = append(p.histories[idx], ValueChange{TimeFs: p.currentTime, Value: v})
	}
	// Anything else ($dumpoff, $dumpon, real-number changes) is skipped.
	return nil
}

func extractKeyword(line string) (string, bool) {
	if !strings.HasPrefix(line, "$") {
		return "", false
	}
	rest := line[1:]
	end := strings.IndexFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' || r == '$' })
	if end < 0 {
		end = len(rest)
	}
	kw := rest[:end]
	if kw == "" {
		return "", false
	}
	return strings.ToLower(kw), true
}

func extractKeywordBody(line string) string {
	idx := strings.IndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return ""
	}
	after := line[idx:]
	if end := strings.Index(after, "$end"); end >= 0 {
		after = after[:end]
	}
	return strings.TrimSpace(after)
}

func parseTimescale(body string) (uint64, error) {
	s := strings.TrimSpace(body)
	if s == "" {
		return 1, nil
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	numStr, unitStr := s[:i], strings.ToLower(strings.TrimSpace(s[i:]))
	num := uint64(1)
	if numStr != "" {
		n, err := strconv.ParseUint(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timescale number: %q", numStr)
		}
		num = n
	}
	var fsPer uint64
	switch unitStr {
	case "fs", "":
		fsPer = sim.FsPerFs
	case "ps":
		fsPer = sim.FsPerPs
	case "ns":
		fsPer = sim.FsPerNs
	case "us":
		fsPer = sim.FsPerUs
	case "ms":
		fsPer = sim.FsPerMs
	case "s":
		fsPer = sim.FsPerS
	default:
		return 0, fmt.Errorf("unknown timescale unit: %q", unitStr)
	}
	return num * fsPer, nil
}

func charToBit(c byte) ir.Bit {
	switch c {
	case '0':
		return ir.Bit0
	case '1':
		return ir.Bit1
	case 'z', 'Z':
		return ir.BitZ
	default:
		return ir.BitX
	}
}

// parseBinaryValue decodes a VCD "b<bits>" payload (MSB-first) into a
// LogicVec of the declared width, left-extending a short string per the
// fill rule: 0 unless the string's own MSB digit is x or z, in which case
// that digit fills the remaining bits too.
func parseBinaryValue(bits string, width int) ir.LogicVec {
	v := ir.Repeat(width, ir.Bit0)
	n := len(bits)
	if n == 0 {
		return v
	}
	fill := charToBit(bits[0])
	if fill != ir.BitX && fill != ir.BitZ {
		fill = ir.Bit0
	}
	for i := n; i < width; i++ {
		v.Bits[i] = fill
	}
	for i, c := range []byte(bits) {
		bitIdx := n - 1 - i
		if bitIdx < width {
			v.Bits[bitIdx] = charToBit(c)
		}
	}
	return v
}
