package sim

import (
	"context"
	"fmt"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/sirupsen/logrus"
)

// Recorder receives signal transitions as the kernel commits them, for
// waveform capture (internal/waveform's VcdRecorder/FstRecorder satisfy
// this structurally, with no import back into internal/sim).
type Recorder interface {
	RegisterSignal(id SimSignalId, name string, width int)
	RecordChange(timeFs uint64, id SimSignalId, value ir.LogicVec)
}

// procState is either a behavioral process (proc != nil) flattened from one
// ir.Process, or a synthetic continuous driver created to model a
// ConcurrentAssign or a non-trivial (slice/concat) instance port
// connection; kernel.runProcess dispatches on which fields are set.
type procState struct {
	name   string
	sigMap map[ir.SignalID]SimSignalId

	// behavioral process
	proc    *ir.Process
	kind    ir.ProcessKind
	edgeReq map[SimSignalId]ir.Edge // only set for SensEdgeList sensitivity

	// synthetic continuous driver: either (contTarget, contExpr) for a
	// ConcurrentAssign, or (contDirect, contRef) for an instance port
	// connection whose target never got its own module-scoped SignalID.
	contTarget ir.SignalRef
	contExpr   *ir.Expr
	contRef    *ir.SignalRef
	contDirect *SimSignalId

	// cooperative-coroutine plumbing, used only for ProcInitial bodies
	// that may contain StmtWait; everything else runs synchronously
	// inline with the kernel's own stepping call, since synthesizable
	// Combinational/Sequential/Latched bodies never suspend.
	resumeCh chan struct{}
	doneCh   chan procDone
	started  bool
	finished bool
}

type procDone struct {
	waiting  bool
	duration *uint64 // nil means "resume at the next delta"
}

// Kernel is one running (or paused) simulation of an elaborated Design.
type Kernel struct {
	design   *ir.Design
	in       *ident.Interner
	types    *ir.TypeDb

	signals []simSignal
	byName  map[string]SimSignalId

	processes []*procState
	queue     *eventQueue
	queuedWake map[*procState]bool

	now   SimTime
	delta uint64

	recorder    Recorder
	result      RunResult
	finished    bool
	userFinished bool

	topSigMap        map[ir.SignalID]SimSignalId
	childSigMapCache map[childKey]map[ir.SignalID]SimSignalId

	ctx    context.Context
	cancel context.CancelFunc

	log *logrus.Entry
}

// NewKernel builds a Kernel by flattening design's instance hierarchy
// starting at its top module, aliasing child instance ports onto the same
// flat signal identity as whatever drives them on the parent side.
func NewKernel(design *ir.Design, in *ident.Interner) (*Kernel, error) {
	if !design.HasTop {
		return nil, fmt.Errorf("sim: design has no resolved top module")
	}
	ctx, cancel := context.WithCancel(context.Background())
	k := &Kernel{
		design:     design,
		in:         in,
		types:      design.Types,
		byName:     make(map[string]SimSignalId),
		queue:      newEventQueue(),
		queuedWake:       make(map[*procState]bool),
		childSigMapCache: make(map[childKey]map[ir.SignalID]SimSignalId),
		ctx:        ctx,
		cancel:     cancel,
		log:        logrus.WithField("stage", "sim.kernel"),
	}

	top := design.TopModule()
	k.topSigMap = k.flattenModule(top, in.Lookup(top.Name), nil)

	// Every process except an edge-sensitized one gets one free execution
	// at (time 0, delta 0) to settle its initial value before any external
	// stimulus or declared Signal.Initial value lands. A SensEdgeList
	// (clocked) process only ever wakes via wake()/edgeFires once its clock
	// actually toggles, the same way a real clocked always_ff block never
	// fires at time 0 without a clock edge.
	for _, ps := range k.processes {
		if ps.edgeReq != nil {
			continue
		}
		k.queue.push(event{time: Zero, delta: 0, kind: eventProcessWake, proc: ps})
		k.queuedWake[ps] = true
	}
	k.seedInitialValues(top, k.topSigMap)

	return k, nil
}

// seedInitialValues schedules each declared Signal.Initial value as a
// ValueChange one delta after time-0 process execution, per spec.md §4.7's
// ordering: initial processes run at (0,0) before any initial-value
// ValueChange lands.
func (k *Kernel) seedInitialValues(m *ir.Module, sigMap map[ir.SignalID]SimSignalId) {
	for i := range m.Signals {
		s := &m.Signals[i]
		if s.Initial == nil {
			continue
		}
		id, ok := sigMap[s.ID]
		if !ok {
			continue
		}
		k.queue.push(event{time: Zero, delta: 1, kind: eventValueChange, signal: id, value: *s.Initial, owner: nil})
	}
	for i := range m.Cells {
		c := &m.Cells[i]
		if c.Kind.Tag != ir.TagInstance {
			continue
		}
		child := k.design.Module(c.Kind.InstanceModule)
		childSigMap := k.childSigMapCache[childKey{parent: m.ID, cell: c.ID}]
		k.seedInitialValues(child, childSigMap)
	}
}

type childKey struct {
	parent ir.ModuleID
	cell   ir.CellID
}

// allocSignal appends a new flat signal and returns its id.
func (k *Kernel) allocSignal(name string, width int) SimSignalId {
	id := SimSignalId(len(k.signals))
	k.signals = append(k.signals, simSignal{
		id:    id,
		name:  name,
		width: width,
		value: ir.Repeat(width, ir.BitX),
	})
	k.byName[name] = id
	if k.recorder != nil {
		k.recorder.RegisterSignal(id, name, width)
	}
	return id
}

// FindSignal resolves a dotted hierarchical name (e.g. "top.clk") to its
// flat id.
func (k *Kernel) FindSignal(dotted string) (SimSignalId, bool) {
	id, ok := k.byName[dotted]
	return id, ok
}

// SignalValue returns id's current committed value.
func (k *Kernel) SignalValue(id SimSignalId) ir.LogicVec {
	if int(id) < 0 || int(id) >= len(k.signals) {
		return ir.LogicVec{}
	}
	return k.signals[id].value
}

// SetRecorder attaches a waveform recorder; it receives every signal
// registered so far plus every future commit.
func (k *Kernel) SetRecorder(r Recorder) {
	k.recorder = r
	for i := range k.signals {
		r.RegisterSignal(k.signals[i].id, k.signals[i].name, k.signals[i].width)
	}
}

// ScheduleEvent forces id to value at time t, bypassing driver resolution.
// Used by callers to drive external stimulus (e.g. a testbench clock)
// onto primary input signals.
func (k *Kernel) ScheduleEvent(t SimTime, id SimSignalId, value ir.LogicVec) {
	k.queue.push(event{time: t, delta: 0, kind: eventValueChange, signal: id, value: value, owner: nil})
}

// Close cancels any still-suspended Initial-process goroutines. Call once
// the kernel is no longer going to be stepped further.
func (k *Kernel) Close() { k.cancel() }

// Now returns the kernel's current simulated time.
func (k *Kernel) Now() SimTime { return k.now }

// Result returns the run's accumulated transcript/assertion/finish state.
func (k *Kernel) Result() RunResult {
	r := k.result
	r.FinalTime = k.now
	return r
}
