package sim

import (
	"runtime"

	"github.com/aion-hdl/aion/internal/ir"
)

// runProcess executes one process's single activation: a synthetic
// continuous driver re-evaluates its expression, a synthesizable
// behavioral process (Combinational/Sequential/Latched) runs its body
// synchronously inline, and an Initial process resumes its dedicated
// goroutine up to its next suspension point.
func (k *Kernel) runProcess(ps *procState) {
	if ps.proc == nil {
		k.runContinuous(ps)
		return
	}
	if ps.kind == ir.ProcInitial {
		k.runInitialProcess(ps)
		return
	}
	ctx := &execCtx{k: k, sigMap: ps.sigMap, proc: ps, wait: k.syncWait}
	ctx.execStmt(&ps.proc.Body)
}

func (k *Kernel) runContinuous(ps *procState) {
	if ps.contExpr != nil {
		v := (&evalCtx{k: k, sigMap: ps.sigMap}).evalExpr(ps.contExpr)
		k.assign(ps, ps.sigMap, ps.contTarget, v, true)
		return
	}
	if ps.contRef != nil && ps.contDirect != nil {
		v := k.evalRef(ps.sigMap, *ps.contRef)
		k.commitDriverValue(*ps.contDirect, ps, v)
	}
}

// syncWait is the suspension hook for non-Initial processes: synthesizable
// RTL bodies never contain a real delay/event-control, so this only logs
// and continues rather than blocking the kernel's own call stack.
func (k *Kernel) syncWait(duration *uint64) {
	k.log.Warn("wait/delay statement has no effect outside an Initial process")
}

func (k *Kernel) runInitialProcess(ps *procState) {
	if ps.finished {
		return
	}
	if !ps.started {
		ps.started = true
		ps.resumeCh = make(chan struct{})
		ps.doneCh = make(chan procDone)
		go k.initialGoroutine(ps)
	}
	select {
	case ps.resumeCh <- struct{}{}:
	case <-k.ctx.Done():
		return
	}
	select {
	case d := <-ps.doneCh:
		if d.waiting {
			if d.duration != nil {
				k.queue.push(event{time: k.now.Add(*d.duration), delta: 0, kind: eventProcessWake, proc: ps})
			} else {
				k.queue.push(event{time: k.now, delta: k.delta + 1, kind: eventProcessWake, proc: ps})
			}
		} else {
			ps.finished = true
		}
	case <-k.ctx.Done():
	}
}

func (k *Kernel) initialGoroutine(ps *procState) {
	select {
	case <-ps.resumeCh:
	case <-k.ctx.Done():
		return
	}
	ctx := &execCtx{k: k, sigMap: ps.sigMap, proc: ps, wait: func(d *uint64) {
		select {
		case ps.doneCh <- procDone{waiting: true, duration: d}:
		case <-k.ctx.Done():
			runtime.Goexit()
		}
		select {
		case <-ps.resumeCh:
		case <-k.ctx.Done():
			runtime.Goexit()
		}
	}}
	ctx.execStmt(&ps.proc.Body)
	select {
	case ps.doneCh <- procDone{waiting: false}:
	case <-k.ctx.Done():
	}
}

// Step consumes exactly one (time, delta) event cohort: every ValueChange
// and ProcessWake sharing the queue's current minimum timestamp and delta.
func (k *Kernel) Step() StepResult {
	if k.finished {
		return Done
	}
	batch := k.queue.popCohort()
	if len(batch) == 0 {
		k.finished = true
		return Done
	}
	k.now = batch[0].time
	k.delta = batch[0].delta
	for i := range batch {
		e := &batch[i]
		switch e.kind {
		case eventValueChange:
			if e.owner == nil {
				k.applyResolved(e.signal, e.value)
			} else {
				k.commitDriverValue(e.signal, e.owner, e.value)
			}
		case eventProcessWake:
			delete(k.queuedWake, e.proc)
			k.runProcess(e.proc)
		}
	}
	if k.userFinished {
		k.finished = true
		return Done
	}
	if k.queue.Len() == 0 {
		return Done
	}
	return Continued
}

// RunUntil steps the kernel until its event queue is exhausted, $finish
// fires, or the next scheduled event would land after limit (in which case
// the kernel's clock advances to limit without executing it).
func (k *Kernel) RunUntil(limit SimTime) StepResult {
	for {
		if k.finished {
			return Done
		}
		t, ok := k.queue.peekTime()
		if !ok {
			k.finished = true
			return Done
		}
		if t.Fs > limit.Fs {
			k.now = limit
			return Continued
		}
		if k.Step() == Done {
			return Done
		}
	}
}

// Run steps the kernel up to the given femtosecond time limit.
func (k *Kernel) Run(limitFs uint64) StepResult { return k.RunUntil(SimTime{Fs: limitFs}) }

// RunToCompletion steps until the event queue is exhausted or $finish fires.
func (k *Kernel) RunToCompletion() StepResult {
	for {
		if k.Step() == Done {
			return Done
		}
	}
}
