package core

import (
	"github.com/sarchlab/admitsim/process"
)

// admitReady admits every arrival that is ready now, before any time passes.
func (s *Scheduler) admitReady() {
	for s.admitNext() {
	}
}

// admitNext handles one candidate. It returns false when nothing more can be
// launched in this round.
func (s *Scheduler) admitNext() bool {
	if !s.source.HasPendingArrival() {
		return false
	}

	candidate := s.source.FetchCandidate()
	if candidate == nil {
		s.logger.LogGeneric("Sim: Pending arrival without a record")
		s.invokeHook(HookPosAdmissionDeferred, nil, process.ErrNoSourceRecord)
		return false
	}

	if !s.source.IsReady(candidate, s.state.SystemTime) {
		s.logger.LogGeneric("Sim: Process read but it is not yet ready to run")
		return false
	}

	pid := s.state.PIDs.NextID()
	if pid == process.NoPID {
		s.logger.LogGeneric("No free process id, admission deferred")
		s.invokeHook(HookPosAdmissionDeferred, *candidate, "pid exhausted")
		return false
	}

	if err := process.InitNewProcess(s.state.Table, pid, candidate); err != nil {
		s.logger.LogGeneric("Failed to initialize process: " + err.Error())
		s.invokeHook(HookPosAdmissionDeferred, *candidate, err)
		return false
	}

	pcb, _ := s.state.Table.Lookup(pid)

	if s.fits(pcb.Size) {
		s.start(pcb)
		return true
	}

	pcb.Status = process.Blocked
	s.logger.LogPidMem(pid, "Process too large, not started")
	s.invokeHook(HookPosProcessBlocked, *pcb, nil)

	return true
}

// fits reports whether a process of the given size still fits in memory. The
// sum is never formed, so huge sizes cannot wrap around.
func (s *Scheduler) fits(size uint64) bool {
	return size <= s.cfg.MemorySize &&
		s.state.UsedMemory <= s.cfg.MemorySize-size
}

func (s *Scheduler) start(pcb *process.PCB) {
	pcb.Status = process.Running
	s.state.RunningCount++
	s.state.UsedMemory += pcb.Size
	s.state.SystemTime += s.cfg.LoadingDuration

	s.logger.LogPidMem(pcb.PID, "Process started and memory allocated")
	s.source.ConsumeCandidate()
	s.invokeHook(HookPosProcessAdmitted, *pcb, nil)
}
