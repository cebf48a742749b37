// Package executor advances running processes through simulated time.
//
// Every running process progresses at the same rate, one unit of CPU time per
// unit of system time, regardless of how many processes run.
package executor

import (
	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// An ArrivalPeeker tells when the next arrival of the batch starts.
type ArrivalPeeker interface {
	NextArrival() (sim.VTime, bool)
}

// Executor implements core.Executor.
type Executor struct {
	arrivals ArrivalPeeker
}

// New creates an Executor. Arrivals may be nil, in which case only
// completions are events.
func New(arrivals ArrivalPeeker) *Executor {
	return &Executor{arrivals: arrivals}
}

// AdvanceToNextEvent returns the time until the earliest completion of a
// running process or the next arrival, whichever comes first. A completion
// wins a tie. Among processes completing together, the lowest PID goes first.
func (e *Executor) AdvanceToNextEvent(
	table *process.Table,
	now sim.VTime,
) (sim.VTime, core.EventKind, process.PID) {
	var (
		nextPID       = process.NoPID
		nextRemaining sim.VTime
	)

	table.Each(func(pcb *process.PCB) {
		if pcb.Status != process.Running {
			return
		}

		remaining := pcb.Remaining()
		if nextPID == process.NoPID || remaining < nextRemaining {
			nextPID = pcb.PID
			nextRemaining = remaining
		}
	})

	gap, hasArrival := e.arrivalGap(now)

	switch {
	case nextPID != process.NoPID && (!hasArrival || nextRemaining <= gap):
		return nextRemaining, core.EventCompleted, nextPID
	case hasArrival:
		return gap, core.EventNone, process.NoPID
	default:
		return 0, core.EventNone, process.NoPID
	}
}

func (e *Executor) arrivalGap(now sim.VTime) (sim.VTime, bool) {
	if e.arrivals == nil {
		return 0, false
	}

	start, ok := e.arrivals.NextArrival()
	if !ok || start <= now {
		return 0, false
	}

	return start - now, true
}

// ApplyElapsed charges delta to the used CPU time of every running process.
func (e *Executor) ApplyElapsed(table *process.Table, delta sim.VTime) {
	if delta == 0 {
		return
	}

	table.Each(func(pcb *process.PCB) {
		if pcb.Status != process.Running {
			return
		}

		pcb.UsedCPU += delta
		if pcb.UsedCPU > pcb.Duration {
			pcb.UsedCPU = pcb.Duration
		}
	})
}
