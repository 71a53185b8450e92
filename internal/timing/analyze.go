package timing

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// PathElement is one hop of a reconstructed critical path, with the
// cumulative delay from the path's source up to and including this node.
type PathElement struct {
	Node         string
	CumulativeNs float64
}

// CriticalPath is one backtracked worst-case timing path (spec.md §4.5).
type CriticalPath struct {
	From     string
	To       string
	DelayNs  float64
	SlackNs  float64
	Elements []PathElement
}

// ClockSummary aggregates the critical paths attributed to one clock.
type ClockSummary struct {
	Clock        string
	WorstSlackNs float64
	Count        int
}

// Report is the full result of a static timing analysis run.
type Report struct {
	Arrival  []float64
	Required []float64
	Slack    []float64

	WorstSlackNs float64
	Met          bool

	CriticalPaths  []CriticalPath
	ClockSummaries []ClockSummary

	TargetMHz   float64
	AchievedMHz float64
}

// Analyze runs forward/backward propagation, slack computation, critical
// path extraction, per-clock summarization, and frequency computation over
// g under tc, per spec.md §4.5.
func Analyze(g *Graph, tc TimingConstraints) *Report {
	if len(g.Nodes) == 0 {
		return &Report{Met: true}
	}

	defaultPeriod := math.Inf(1)
	if clk, ok := tc.PrimaryClock(); ok {
		defaultPeriod = clk.PeriodNs
	}

	arrival := forwardPropagate(g)
	required := backwardPropagate(g, tc, defaultPeriod)

	slack := make([]float64, len(g.Nodes))
	for i := range g.Nodes {
		slack[i] = required[i] - arrival[i]
	}

	worst := worstSinkSlack(g, slack)
	met := worst >= 0

	paths := extractCriticalPaths(g, arrival, slack)
	paths = applyPathExceptions(paths, tc, defaultPeriod)

	summaries := summarizeByClock(tc, paths)

	target, achieved := computeFrequency(tc, defaultPeriod, worst)

	log := logrus.WithField("stage", "timing.analyze")
	if !met {
		log.Warnf("timing not met: worst slack %.3fns", worst)
	} else {
		log.Debugf("timing met: worst slack %.3fns, %d critical paths", worst, len(paths))
	}

	return &Report{
		Arrival:        arrival,
		Required:       required,
		Slack:          slack,
		WorstSlackNs:   worst,
		Met:            met,
		CriticalPaths:  paths,
		ClockSummaries: summaries,
		TargetMHz:      target,
		AchievedMHz:    achieved,
	}
}

func forwardPropagate(g *Graph) []float64 {
	arrival := make([]float64, len(g.Nodes))
	for i, n := range g.Nodes {
		if g.isSource(n.ID) {
			arrival[i] = 0
		} else {
			arrival[i] = math.Inf(-1)
		}
	}
	for pass := 0; pass < len(g.Nodes); pass++ {
		changed := false
		for _, e := range g.Edges {
			if !g.isDataEdge(e.Kind) {
				continue
			}
			cand := arrival[e.From] + e.Delay.MaxNs
			if cand > arrival[e.To] {
				arrival[e.To] = cand
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for i := range arrival {
		if math.IsInf(arrival[i], -1) {
			arrival[i] = 0
		}
	}
	return arrival
}

func backwardPropagate(g *Graph, tc TimingConstraints, defaultPeriod float64) []float64 {
	required := make([]float64, len(g.Nodes))
	for i := range required {
		required[i] = math.Inf(1)
	}
	outputDelay := map[string]float64{}
	for _, od := range tc.OutputDelays {
		outputDelay[od.Port] = od.DelayNs
	}

	for _, n := range g.Nodes {
		if n.Kind != PrimaryOutput && n.Kind != CellPin {
			continue
		}
		if !g.isSink(n.ID) {
			continue
		}
		setupMax := 0.0
		for _, idx := range g.in[n.ID] {
			e := g.Edges[idx]
			if e.Kind == SetupCheckEdge && e.Delay.MaxNs > setupMax {
				setupMax = e.Delay.MaxNs
			}
		}
		od := outputDelay[n.Name]
		required[n.ID] = defaultPeriod - od - setupMax
	}

	for pass := 0; pass < len(g.Nodes); pass++ {
		changed := false
		for _, e := range g.Edges {
			if !g.isDataEdge(e.Kind) {
				continue
			}
			cand := required[e.To] - e.Delay.MaxNs
			if cand < required[e.From] {
				required[e.From] = cand
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return required
}

func worstSinkSlack(g *Graph, slack []float64) float64 {
	worst := math.Inf(1)
	found := false
	for _, n := range g.Nodes {
		if (n.Kind != PrimaryOutput && n.Kind != CellPin) || !g.isSink(n.ID) {
			continue
		}
		found = true
		if slack[n.ID] < worst {
			worst = slack[n.ID]
		}
	}
	if !found {
		return 0
	}
	return worst
}

func extractCriticalPaths(g *Graph, arrival, slack []float64) []CriticalPath {
	type sinkSlack struct {
		node  NodeID
		slack float64
	}
	var sinks []sinkSlack
	for _, n := range g.Nodes {
		if (n.Kind != PrimaryOutput && n.Kind != CellPin) || !g.isSink(n.ID) {
			continue
		}
		sinks = append(sinks, sinkSlack{n.ID, slack[n.ID]})
	}
	sort.Slice(sinks, func(i, j int) bool { return sinks[i].slack < sinks[j].slack })

	limit := len(sinks)
	if limit > 10 {
		limit = 10
	}

	var out []CriticalPath
	for _, s := range sinks[:limit] {
		var nodes []NodeID
		cur := s.node
		for {
			nodes = append(nodes, cur)
			if g.isSource(cur) {
				break
			}
			var best int = -1
			bestArrival := math.Inf(-1)
			for _, idx := range g.in[cur] {
				e := g.Edges[idx]
				if !g.isDataEdge(e.Kind) {
					continue
				}
				cand := arrival[e.From] + e.Delay.MaxNs
				if cand > bestArrival {
					bestArrival = cand
					best = idx
				}
			}
			if best == -1 {
				break
			}
			cur = g.Edges[best].From
		}
		// nodes is sink-to-source; reverse to source-to-sink.
		for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
			nodes[i], nodes[j] = nodes[j], nodes[i]
		}

		elements := make([]PathElement, len(nodes))
		cum := 0.0
		elements[0] = PathElement{Node: g.Nodes[nodes[0]].Name, CumulativeNs: 0}
		for i := 1; i < len(nodes); i++ {
			cum += hopDelay(g, nodes[i-1], nodes[i])
			elements[i] = PathElement{Node: g.Nodes[nodes[i]].Name, CumulativeNs: cum}
		}

		out = append(out, CriticalPath{
			From:     g.Nodes[nodes[0]].Name,
			To:       g.Nodes[nodes[len(nodes)-1]].Name,
			DelayNs:  cum,
			SlackNs:  s.slack,
			Elements: elements,
		})
	}
	return out
}

func hopDelay(g *Graph, from, to NodeID) float64 {
	best := 0.0
	found := false
	for _, idx := range g.out[from] {
		e := g.Edges[idx]
		if e.To == to && g.isDataEdge(e.Kind) {
			if !found || e.Delay.MaxNs > best {
				best = e.Delay.MaxNs
				found = true
			}
		}
	}
	return best
}

func nameListMatches(list []string, name string) bool {
	if len(list) == 0 {
		return true
	}
	for _, n := range list {
		if strings.Contains(name, n) {
			return true
		}
	}
	return false
}

// applyPathExceptions adjusts the raw critical path list for false,
// multicycle, and max-delay path constraints. The base algorithm in §4.5
// never revisits these once the graph is built, so this reporting-level
// pass is this toolchain's chosen way to surface them: false-path matches
// are dropped entirely, multicycle matches get their slack recomputed
// against a period stretched by the cycle count, and max-delay matches get
// their slack recomputed against the absolute budget instead of the
// clock period.
func applyPathExceptions(paths []CriticalPath, tc TimingConstraints, defaultPeriod float64) []CriticalPath {
	var kept []CriticalPath
	for _, p := range paths {
		excluded := false
		for _, fp := range tc.FalsePaths {
			if nameListMatches(fp.From, p.From) && nameListMatches(fp.To, p.To) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		for _, mc := range tc.MulticyclePaths {
			if nameListMatches(mc.From, p.From) && nameListMatches(mc.To, p.To) {
				cycles := mc.Setup
				if cycles <= 0 {
					cycles = 2
				}
				p.SlackNs = defaultPeriod*float64(cycles) - p.DelayNs
				break
			}
		}
		for _, md := range tc.MaxDelayPaths {
			if nameListMatches(md.From, p.From) && nameListMatches(md.To, p.To) {
				p.SlackNs = md.DelayNs - p.DelayNs
				break
			}
		}
		kept = append(kept, p)
	}
	return kept
}

func summarizeByClock(tc TimingConstraints, paths []CriticalPath) []ClockSummary {
	var summaries []ClockSummary
	for _, c := range tc.Clocks {
		worst := math.Inf(1)
		count := 0
		for _, p := range paths {
			if strings.Contains(p.From, c.Name) || strings.Contains(p.To, c.Name) {
				count++
				if p.SlackNs < worst {
					worst = p.SlackNs
				}
			}
		}
		if count == 0 {
			worst = 0
		}
		summaries = append(summaries, ClockSummary{Clock: c.Name, WorstSlackNs: worst, Count: count})
	}
	return summaries
}

func computeFrequency(tc TimingConstraints, defaultPeriod, worstSlack float64) (target, achieved float64) {
	clk, ok := tc.PrimaryClock()
	if !ok {
		return 0, 0
	}
	target = 1000 / clk.PeriodNs
	achieved = 1000 / (defaultPeriod - worstSlack)
	if math.IsInf(achieved, 0) || math.IsNaN(achieved) || achieved < 0 {
		achieved = 0
	}
	if achieved > 10000 {
		achieved = 10000
	}
	return target, achieved
}
