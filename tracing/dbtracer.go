package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/datarecording"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// Names of the tables written by the DBTracer.
const (
	EventTable    = "process_events"
	LifetimeTable = "process_lifetimes"
	SummaryTable  = "run_summary"
)

// EventEntry is a row of the process_events table.
type EventEntry struct {
	ID           string
	Time         uint64
	Kind         string
	PID          uint32
	Size         uint64
	UsedMemory   uint64
	RunningCount int
}

// LifetimeEntry is a row of the process_lifetimes table.
type LifetimeEntry struct {
	PID        uint32
	Arrival    uint64
	Admitted   uint64
	Completed  uint64
	Size       uint64
	Duration   uint64
	Turnaround uint64
}

// SummaryEntry is a row of the run_summary table.
type SummaryEntry struct {
	RunID     string
	EndTime   uint64
	Admitted  int
	Blocked   int
	Completed int
}

var eventKinds = map[*sim.HookPos]string{
	core.HookPosProcessAdmitted:   "admitted",
	core.HookPosProcessBlocked:    "blocked",
	core.HookPosProcessTerminated: "terminated",
	core.HookPosAdmissionDeferred: "deferred",
}

type stateOwner interface {
	State() *core.State
}

// DBTracer is a hook that stores the lifecycle of every process into a
// database.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	ids     sim.IDGenerator
	runID   string

	admittedAt map[process.PID]sim.VTime

	admitted, blocked, completed int
}

// NewDBTracer creates a new DBTracer and the tables it writes.
func NewDBTracer(
	runID string,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(EventTable, EventEntry{})
	dataRecorder.CreateTable(LifetimeTable, LifetimeEntry{})
	dataRecorder.CreateTable(SummaryTable, SummaryEntry{})

	t := &DBTracer{
		backend:    dataRecorder,
		ids:        sim.NewSequentialIDGenerator(),
		runID:      runID,
		admittedAt: make(map[process.PID]sim.VTime),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// Func records the hook firing.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	kind, ok := eventKinds[ctx.Pos]
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := EventEntry{
		ID:   t.ids.Generate(),
		Time: uint64(ctx.Now),
		Kind: kind,
	}

	pcb, hasPCB := ctx.Item.(process.PCB)
	if hasPCB {
		entry.PID = uint32(pcb.PID)
		entry.Size = pcb.Size
	}

	if owner, ok := ctx.Domain.(stateOwner); ok {
		state := owner.State()
		entry.UsedMemory = state.UsedMemory
		entry.RunningCount = state.RunningCount
	}

	t.backend.InsertData(EventTable, entry)

	if !hasPCB {
		return
	}

	switch ctx.Pos {
	case core.HookPosProcessAdmitted:
		t.admitted++
		t.admittedAt[pcb.PID] = ctx.Now
	case core.HookPosProcessBlocked:
		t.blocked++
	case core.HookPosProcessTerminated:
		t.completed++
		t.recordLifetime(pcb, ctx.Now)
	}
}

func (t *DBTracer) recordLifetime(pcb process.PCB, now sim.VTime) {
	admitted, ok := t.admittedAt[pcb.PID]
	if !ok {
		admitted = pcb.Start
	}

	delete(t.admittedAt, pcb.PID)

	t.backend.InsertData(LifetimeTable, LifetimeEntry{
		PID:        uint32(pcb.PID),
		Arrival:    uint64(pcb.Start),
		Admitted:   uint64(admitted),
		Completed:  uint64(now),
		Size:       pcb.Size,
		Duration:   uint64(pcb.Duration),
		Turnaround: uint64(now - pcb.Start),
	})
}

// Handle writes the run summary once the simulation drains.
func (t *DBTracer) Handle(now sim.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(SummaryTable, SummaryEntry{
		RunID:     t.runID,
		EndTime:   uint64(now),
		Admitted:  t.admitted,
		Blocked:   t.blocked,
		Completed: t.completed,
	})
	t.backend.Flush()
}

// Counts returns the process counts seen so far.
func (t *DBTracer) Counts() (admitted, blocked, completed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.admitted, t.blocked, t.completed
}

// Terminate flushes the buffered records.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
