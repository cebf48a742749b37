package core

import (
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// A BatchSource supplies arrival records to the admission controller.
type BatchSource interface {
	// HasPendingArrival tells if a candidate arrival exists.
	HasPendingArrival() bool

	// FetchCandidate returns the current candidate. The record stays owned by
	// the source until it is reserved into the process table.
	FetchCandidate() *process.PCB

	// IsReady tells if the candidate may start at the given time.
	IsReady(candidate *process.PCB, now sim.VTime) bool

	// ConsumeCandidate marks the current candidate as taken.
	ConsumeCandidate()
}

// EventKind tells what happens at the end of an execution step.
type EventKind int

// Kinds of execution events.
const (
	EventNone EventKind = iota
	EventCompleted
)

func (k EventKind) String() string {
	if k == EventCompleted {
		return "completed"
	}

	return "none"
}

// An Executor runs the running processes forward in simulated time.
type Executor interface {
	// AdvanceToNextEvent returns the time until the next significant event and,
	// if the event is a completion, the PID of the completed process.
	AdvanceToNextEvent(
		table *process.Table,
		now sim.VTime,
	) (delta sim.VTime, kind EventKind, pid process.PID)

	// ApplyElapsed charges the elapsed time to every running process.
	ApplyElapsed(table *process.Table, delta sim.VTime)
}

// A Logger receives diagnostic messages. Nothing it returns is consumed.
type Logger interface {
	LogPidMem(pid process.PID, msg string)
	LogGeneric(msg string)
}

type nopLogger struct{}

func (nopLogger) LogPidMem(process.PID, string) {}
func (nopLogger) LogGeneric(string)             {}
