// Package process defines the process control block and the registry that
// owns every PCB of a simulation.
package process

import (
	"fmt"

	"github.com/sarchlab/admitsim/sim"
)

// PID identifies a process. PID 0 is never handed out.
type PID uint32

// NoPID is the reserved invalid PID. The allocator returns it when no slot is
// free.
const NoPID PID = 0

// Type tells operating-system processes apart from user processes.
type Type int

// Process types.
const (
	OS Type = iota
	User
)

func (t Type) String() string {
	switch t {
	case OS:
		return "os"
	case User:
		return "user"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType converts "os" or "user" into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "os", "OS":
		return OS, nil
	case "user", "USER", "":
		return User, nil
	default:
		return OS, fmt.Errorf("unknown process type %q", s)
	}
}

// Status is the lifecycle state of a PCB.
//
// Init -> Running -> {Blocked, Ended}. Blocked is terminal.
type Status int

// Lifecycle states.
const (
	Init Status = iota
	Running
	Blocked
	Ended
)

func (s Status) String() string {
	switch s {
	case Init:
		return "init"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// A PCB is the process control block of one simulated process.
type PCB struct {
	PID      PID       `json:"pid"`
	PPID     PID       `json:"ppid"`
	OwnerID  uint32    `json:"owner_id"`
	Start    sim.VTime `json:"start"`
	Duration sim.VTime `json:"duration"`
	Size     uint64    `json:"size"`
	UsedCPU  sim.VTime `json:"used_cpu"`
	Type     Type      `json:"type"`
	Status   Status    `json:"status"`
	Valid    bool      `json:"valid"`
}

// Remaining returns how much CPU time the process still needs.
func (p *PCB) Remaining() sim.VTime {
	if p.UsedCPU >= p.Duration {
		return 0
	}

	return p.Duration - p.UsedCPU
}

func (p *PCB) wipe() {
	*p = PCB{
		Type:   OS,
		Status: Ended,
		Valid:  false,
	}
}
