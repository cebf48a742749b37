package core

import (
	"fmt"

	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// State is the mutable state of one simulation.
type State struct {
	SystemTime    sim.VTime
	UsedMemory    uint64
	RunningCount  int
	BatchComplete bool

	Table *process.Table
	PIDs  *process.PIDAllocator

	memorySize uint64
}

// NewState creates the state of a freshly started OS. All slots are free.
func NewState(cfg Config) *State {
	table := process.NewTable(cfg.MaxProcesses)

	return &State{
		Table:      table,
		PIDs:       process.NewPIDAllocator(table, cfg.MaxPID),
		memorySize: cfg.MemorySize,
	}
}

// CurrentTime returns the system time.
func (s *State) CurrentTime() sim.VTime {
	return s.SystemTime
}

// MemoryUsage returns the used and the total memory.
func (s *State) MemoryUsage() (used, total uint64) {
	return s.UsedMemory, s.memorySize
}

// CheckInvariants verifies the accounting of the state against the table.
func (s *State) CheckInvariants() error {
	var (
		runningSize  uint64
		runningCount int
	)

	if err := s.Table.CheckConsistency(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvariantViolated, err)
	}

	s.Table.Each(func(pcb *process.PCB) {
		if pcb.Status == process.Running {
			runningSize += pcb.Size
			runningCount++
		}
	})

	if runningSize != s.UsedMemory {
		return fmt.Errorf("%w: used memory %d, running processes hold %d",
			ErrInvariantViolated, s.UsedMemory, runningSize)
	}

	if runningCount != s.RunningCount {
		return fmt.Errorf("%w: running count %d, %d processes running",
			ErrInvariantViolated, s.RunningCount, runningCount)
	}

	if s.UsedMemory > s.memorySize {
		return fmt.Errorf("%w: used memory %d exceeds memory size %d",
			ErrInvariantViolated, s.UsedMemory, s.memorySize)
	}

	return nil
}
