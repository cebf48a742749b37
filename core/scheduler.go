package core

import (
	"fmt"
	"sync"

	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// Hook positions of the Scheduler. Hooks run inside a loop iteration and
// must not call the locking accessors of the Scheduler (Snapshot, Process,
// CurrentTime). Use Scheduler.State instead.
var (
	// HookPosProcessAdmitted triggers after a process starts running. The
	// item is a copy of its PCB.
	HookPosProcessAdmitted = &sim.HookPos{Name: "ProcessAdmitted"}

	// HookPosProcessBlocked triggers after a candidate is rejected for lack
	// of memory. The item is a copy of its PCB.
	HookPosProcessBlocked = &sim.HookPos{Name: "ProcessBlocked"}

	// HookPosProcessTerminated triggers after a completed process is reaped.
	// The item is a copy of its PCB taken before the slot was wiped.
	HookPosProcessTerminated = &sim.HookPos{Name: "ProcessTerminated"}

	// HookPosAdmissionDeferred triggers when a ready candidate cannot be
	// admitted in this round. The detail is the reason.
	HookPosAdmissionDeferred = &sim.HookPos{Name: "AdmissionDeferred"}

	// HookPosTimeAdvanced triggers after the system time moves forward. The
	// detail is the elapsed time.
	HookPosTimeAdvanced = &sim.HookPos{Name: "TimeAdvanced"}
)

// Snapshot is a consistent copy of the simulation state.
type Snapshot struct {
	SystemTime    sim.VTime     `json:"system_time"`
	UsedMemory    uint64        `json:"used_memory"`
	MemorySize    uint64        `json:"memory_size"`
	RunningCount  int           `json:"running_count"`
	BatchComplete bool          `json:"batch_complete"`
	Processes     []process.PCB `json:"processes"`
}

// A Scheduler runs the admission and scheduling loop of a simulated OS.
type Scheduler struct {
	*sim.HookableBase

	cfg      Config
	state    *State
	source   BatchSource
	executor Executor
	logger   Logger

	stateLock sync.RWMutex

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []sim.SimulationEndHandler
}

// NewScheduler creates a Scheduler over a freshly initialized OS state. It
// panics if the configuration is invalid.
func NewScheduler(
	cfg Config,
	source BatchSource,
	executor Executor,
) *Scheduler {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	return &Scheduler{
		HookableBase: sim.NewHookableBase(),
		cfg:          cfg,
		state:        NewState(cfg),
		source:       source,
		executor:     executor,
		logger:       nopLogger{},
	}
}

// WithLogger sets the logger that receives the diagnostic messages.
func (s *Scheduler) WithLogger(logger Logger) *Scheduler {
	s.logger = logger
	return s
}

// Config returns the configuration of the scheduler.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// State returns the live state. It is only safe to use from hooks or when
// the scheduler is not running.
func (s *Scheduler) State() *State {
	return s.state
}

// Run executes the loop until no process runs and the batch is drained.
func (s *Scheduler) Run() error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	for {
		s.pauseLock.Lock()
		done, err := s.iterate()
		s.pauseLock.Unlock()

		if err != nil {
			return err
		}

		if done {
			break
		}
	}

	s.finished()

	return nil
}

func (s *Scheduler) iterate() (done bool, err error) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	s.admitReady()
	s.state.BatchComplete = !s.source.HasPendingArrival()

	delta, kind, pid := s.executor.AdvanceToNextEvent(
		s.state.Table, s.state.SystemTime)
	s.executor.ApplyElapsed(s.state.Table, delta)
	s.state.SystemTime += delta

	if delta > 0 {
		s.invokeHook(HookPosTimeAdvanced, nil, delta)
	}

	if kind == EventCompleted {
		s.reap(pid)
	} else if delta == 0 &&
		s.state.RunningCount == 0 &&
		!s.state.BatchComplete {
		return false, fmt.Errorf("%w at time %d",
			ErrAdmissionStalled, s.state.SystemTime)
	}

	return s.state.RunningCount == 0 && s.state.BatchComplete, nil
}

func (s *Scheduler) reap(pid process.PID) {
	pcb, ok := s.state.Table.Lookup(pid)
	if !ok || pcb.Status != process.Running {
		s.logger.LogGeneric(fmt.Sprintf(
			"Completion reported for pid %d, which is not running", pid))
		return
	}

	terminated := *pcb

	if err := process.DeleteProcess(pcb); err != nil {
		s.logger.LogGeneric(fmt.Sprintf(
			"Failed to terminate pid %d: %v", pid, err))
		return
	}

	s.state.UsedMemory -= terminated.Size
	s.state.RunningCount--

	s.logger.LogPidMem(pid, "Process terminated, memory freed")
	s.invokeHook(HookPosProcessTerminated, terminated, nil)
}

func (s *Scheduler) invokeHook(pos *sim.HookPos, item, detail any) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Now:    s.state.SystemTime,
		Item:   item,
		Detail: detail,
	})
}

// Pause prevents the Scheduler from starting more loop iterations.
func (s *Scheduler) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows the Scheduler to run loop iterations again.
func (s *Scheduler) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}

// CurrentTime returns the system time.
func (s *Scheduler) CurrentTime() sim.VTime {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state.SystemTime
}

// Snapshot returns a consistent copy of the state.
func (s *Scheduler) Snapshot() Snapshot {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return Snapshot{
		SystemTime:    s.state.SystemTime,
		UsedMemory:    s.state.UsedMemory,
		MemorySize:    s.cfg.MemorySize,
		RunningCount:  s.state.RunningCount,
		BatchComplete: s.state.BatchComplete,
		Processes:     s.state.Table.Valid(),
	}
}

// Process returns a copy of the PCB of pid.
func (s *Scheduler) Process(pid process.PID) (process.PCB, bool) {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	pcb, ok := s.state.Table.Lookup(pid)
	if !ok {
		return process.PCB{}, false
	}

	return *pcb, true
}

// RegisterSimulationEndHandler registers a handler that is invoked once the
// simulation drains.
func (s *Scheduler) RegisterSimulationEndHandler(
	handler sim.SimulationEndHandler,
) {
	s.simulationEndHandlers = append(s.simulationEndHandlers, handler)
}

func (s *Scheduler) finished() {
	now := s.CurrentTime()
	for _, h := range s.simulationEndHandlers {
		h.Handle(now)
	}
}
