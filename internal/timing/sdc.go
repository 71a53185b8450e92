package timing

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseSDC parses a textual SDC/XDC constraints file per spec.md §4.6.
// Unrecognized commands and commands missing a required flag are logged as
// warnings and dropped rather than failing the parse.
func ParseSDC(r io.Reader) (TimingConstraints, error) {
	var tc TimingConstraints
	log := logrus.WithField("stage", "timing.sdc")

	lines, err := joinContinuations(r)
	if err != nil {
		return tc, err
	}

	for _, line := range lines {
		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "create_clock":
			if c, ok := parseCreateClock(tokens[1:], log); ok {
				tc.Clocks = append(tc.Clocks, c)
			}
		case "set_input_delay":
			if d, ok := parseIODelay(tokens[1:], log); ok {
				tc.InputDelays = append(tc.InputDelays, d)
			}
		case "set_output_delay":
			if d, ok := parseIODelay(tokens[1:], log); ok {
				tc.OutputDelays = append(tc.OutputDelays, d)
			}
		case "set_false_path":
			from, to := parseFromTo(tokens[1:])
			tc.FalsePaths = append(tc.FalsePaths, PathConstraint{From: from, To: to})
		case "set_multicycle_path":
			tc.MulticyclePaths = append(tc.MulticyclePaths, parseMulticycle(tokens[1:]))
		case "set_max_delay":
			if d, ok := parseMaxDelay(tokens[1:], log); ok {
				tc.MaxDelayPaths = append(tc.MaxDelayPaths, d)
			}
		default:
			log.Warnf("unrecognized constraint command %q, skipping", tokens[0])
		}
	}
	return tc, nil
}

func joinContinuations(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	var cur strings.Builder
	for sc.Scan() {
		raw := sc.Text()
		trimmed := strings.TrimRight(raw, " \t\r")
		if strings.HasSuffix(trimmed, "\\") {
			cur.WriteString(strings.TrimSuffix(trimmed, "\\"))
			cur.WriteByte(' ')
			continue
		}
		cur.WriteString(trimmed)
		lines = append(lines, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func stripComment(line string) string {
	inBrace, inQuote := false, false
	for i, r := range line {
		switch r {
		case '{':
			inBrace = true
		case '}':
			inBrace = false
		case '"':
			inQuote = !inQuote
		case '#':
			if !inBrace && !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

// tokenize splits on whitespace, honoring {...} and "..." as single tokens
// and extracting name from [get_ports name] (or get_clocks/get_pins, which
// appear identically in practice).
func tokenize(line string) []string {
	var tokens []string
	i, n := 0, len(line)
	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}
		switch line[i] {
		case '{':
			j := strings.IndexByte(line[i+1:], '}')
			if j < 0 {
				tokens = append(tokens, line[i+1:])
				i = n
				continue
			}
			tokens = append(tokens, line[i+1:i+1+j])
			i = i + 1 + j + 1
		case '"':
			j := strings.IndexByte(line[i+1:], '"')
			if j < 0 {
				tokens = append(tokens, line[i+1:])
				i = n
				continue
			}
			tokens = append(tokens, line[i+1:i+1+j])
			i = i + 1 + j + 1
		case '[':
			j := strings.IndexByte(line[i:], ']')
			if j < 0 {
				i = n
				continue
			}
			inner := line[i+1 : i+j]
			tokens = append(tokens, extractGetName(inner))
			i = i + j + 1
		default:
			j := i
			for j < n && !isSpace(line[j]) && line[j] != '[' && line[j] != '{' && line[j] != '"' {
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
		}
	}
	return tokens
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// extractGetName pulls the bare name out of "get_ports name", "get_clocks
// name", or similar single-argument SDC query forms.
func extractGetName(inner string) string {
	fields := strings.Fields(inner)
	if len(fields) >= 2 {
		return strings.Trim(fields[len(fields)-1], `"{}`)
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return inner
}

func parseCreateClock(args []string, log *logrus.Entry) (ClockConstraint, bool) {
	var c ClockConstraint
	havePeriod := false
	var port string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-period":
			i++
			if i >= len(args) {
				break
			}
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				continue
			}
			c.PeriodNs = v
			havePeriod = true
		case "-name":
			i++
			if i < len(args) {
				c.Name = args[i]
			}
		case "-waveform":
			i++
			if i < len(args) {
				fields := strings.Fields(args[i])
				if len(fields) == 2 {
					rise, rerr := strconv.ParseFloat(fields[0], 64)
					fall, ferr := strconv.ParseFloat(fields[1], 64)
					if rerr == nil && ferr == nil {
						c.RiseNs, c.FallNs, c.HasWaveform = rise, fall, true
					}
				}
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				port = args[i]
			}
		}
	}
	if !havePeriod {
		log.Warnf("create_clock missing required -period, dropping")
		return ClockConstraint{}, false
	}
	c.Port = port
	if c.Name == "" {
		c.Name = port
	}
	return c, true
}

func parseIODelay(args []string, log *logrus.Entry) (PortDelay, bool) {
	var d PortDelay
	haveDelay, haveClock := false, false
	var port string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-clock":
			i++
			if i < len(args) {
				d.Clock = args[i]
				haveClock = true
			}
		default:
			if strings.HasPrefix(args[i], "-") {
				continue
			}
			if !haveDelay {
				if v, err := strconv.ParseFloat(args[i], 64); err == nil {
					d.DelayNs = v
					haveDelay = true
					continue
				}
			}
			port = args[i]
		}
	}
	if !haveDelay || !haveClock {
		log.Warnf("set_*_delay missing required -clock or delay value, dropping")
		return PortDelay{}, false
	}
	d.Port = port
	return d, true
}

func parseFromTo(args []string) (from, to []string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-from":
			i++
			if i < len(args) {
				from = append(from, args[i])
			}
		case "-to":
			i++
			if i < len(args) {
				to = append(to, args[i])
			}
		}
	}
	return from, to
}

func parseMulticycle(args []string) MulticyclePathConstraint {
	mc := MulticyclePathConstraint{Setup: 2}
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] == "-setup" {
			i++
			if i < len(args) {
				if v, err := strconv.Atoi(args[i]); err == nil {
					mc.Setup = v
				}
			}
			continue
		}
		rest = append(rest, args[i])
	}
	mc.From, mc.To = parseFromTo(rest)
	return mc
}

func parseMaxDelay(args []string, log *logrus.Entry) (MaxDelayPathConstraint, bool) {
	if len(args) == 0 {
		log.Warnf("set_max_delay missing required delay value, dropping")
		return MaxDelayPathConstraint{}, false
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		log.Warnf("set_max_delay delay value %q not numeric, dropping", args[0])
		return MaxDelayPathConstraint{}, false
	}
	md := MaxDelayPathConstraint{DelayNs: v}
	md.From, md.To = parseFromTo(args[1:])
	return md, true
}
