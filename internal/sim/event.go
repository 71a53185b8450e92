package sim

import (
	"container/heap"

	"github.com/aion-hdl/aion/internal/ir"
)

// eventKind discriminates the two event shapes the kernel schedules.
type eventKind int

const (
	eventValueChange eventKind = iota
	eventProcessWake
)

// event is one (time, delta, payload) entry in the kernel's event queue.
// Delta orders events scheduled for the same absolute time: a ValueChange
// committed at (t, d) wakes its sensitized processes at (t, d+1), which in
// turn may schedule further ValueChanges at (t, d+1) (blocking) or
// (t, d+2) (non-blocking), the delta-cycle loop.
type event struct {
	time  SimTime
	delta uint64
	kind  eventKind

	signal SimSignalId // eventValueChange
	value  ir.LogicVec // eventValueChange
	owner  *procState  // eventValueChange: nil means an external direct force

	proc *procState // eventProcessWake
}

// eventQueue is a container/heap min-heap ordered by (time, delta).
type eventQueue []event

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].time.Fs != q[j].time.Fs {
		return q[i].time.Fs < q[j].time.Fs
	}
	return q[i].delta < q[j].delta
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x any)    { *q = append(*q, x.(event)) }
func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	heap.Init(q)
	return q
}

func (q *eventQueue) push(e event) { heap.Push(q, e) }

// popCohort removes and returns every event sharing the queue's current
// minimum (time, delta), or nil if the queue is empty.
func (q *eventQueue) popCohort() []event {
	if q.Len() == 0 {
		return nil
	}
	first := heap.Pop(q).(event)
	batch := []event{first}
	for q.Len() > 0 {
		next := (*q)[0]
		if next.time.Fs != first.time.Fs || next.delta != first.delta {
			break
		}
		batch = append(batch, heap.Pop(q).(event))
	}
	return batch
}

// peekTime reports the absolute time of the queue's next event, if any.
func (q *eventQueue) peekTime() (SimTime, bool) {
	if q.Len() == 0 {
		return SimTime{}, false
	}
	return (*q)[0].time, true
}
