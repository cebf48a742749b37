package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/admitsim/sim"
)

// Config holds the policy knobs of a simulation.
type Config struct {
	// MemorySize is the amount of memory that running processes may hold in
	// total.
	MemorySize uint64

	// LoadingDuration is charged to the system time for every admitted
	// process.
	LoadingDuration sim.VTime

	// MaxProcesses is the number of slots of the process table.
	MaxProcesses int

	// MaxPID bounds the PIDs handed out, which lie in [1, MaxPID).
	MaxPID int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MemorySize:      1024,
		LoadingDuration: 1,
		MaxProcesses:    128,
		MaxPID:          128,
	}
}

// Validate checks that the configuration can build a simulation.
func (c Config) Validate() error {
	if c.MemorySize == 0 {
		return errors.New("memory size must be positive")
	}

	if c.MaxPID < 2 {
		return fmt.Errorf("max pid must be at least 2, got %d", c.MaxPID)
	}

	if c.MaxPID > c.MaxProcesses {
		return fmt.Errorf("max pid %d exceeds max processes %d",
			c.MaxPID, c.MaxProcesses)
	}

	return nil
}
