// Package tracing records what happens to the processes of a simulation.
package tracing

import (
	"fmt"
	"log"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// A MemoryTeller reports the used and the total memory of the system.
type MemoryTeller interface {
	MemoryUsage() (used, total uint64)
}

// ProcessLogger prints the diagnostic messages of the scheduler, tagged with
// the system time and the memory usage.
type ProcessLogger struct {
	sim.LogHookBase

	timeTeller sim.TimeTeller
	memory     MemoryTeller
}

// NewProcessLogger creates a ProcessLogger writing into logger.
func NewProcessLogger(
	logger *log.Logger,
	timeTeller sim.TimeTeller,
	memory MemoryTeller,
) *ProcessLogger {
	l := &ProcessLogger{
		timeTeller: timeTeller,
		memory:     memory,
	}
	l.Logger = logger

	return l
}

// LogPidMem prints a message about a process.
func (l *ProcessLogger) LogPidMem(pid process.PID, msg string) {
	used, total := l.memory.MemoryUsage()
	l.Printf("%d, pid %d, mem %d/%d: %s",
		l.timeTeller.CurrentTime(), pid, used, total, msg)
}

// LogGeneric prints a message that is not about one process.
func (l *ProcessLogger) LogGeneric(msg string) {
	l.Printf("%d: %s", l.timeTeller.CurrentTime(), msg)
}

// HookLogger is a hook that prints every hook firing of the scheduler.
type HookLogger struct {
	sim.LogHookBase
}

// NewHookLogger returns a HookLogger that writes into logger.
func NewHookLogger(logger *log.Logger) *HookLogger {
	h := new(HookLogger)
	h.Logger = logger
	return h
}

// Func writes the hook information into the logger.
func (h *HookLogger) Func(ctx sim.HookCtx) {
	switch item := ctx.Item.(type) {
	case process.PCB:
		h.Printf("%d, %s, pid %d, size %d, %s",
			ctx.Now, ctx.Pos.Name, item.PID, item.Size, describe(ctx))
	default:
		h.Printf("%d, %s, %s", ctx.Now, ctx.Pos.Name, describe(ctx))
	}
}

func describe(ctx sim.HookCtx) string {
	if ctx.Detail == nil {
		return "-"
	}

	if ctx.Pos == core.HookPosTimeAdvanced {
		return fmt.Sprintf("+%v", ctx.Detail)
	}

	return fmt.Sprint(ctx.Detail)
}
