package batch

import (
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

type arrivalEvent struct {
	*sim.EventBase
	record *process.PCB
}

// A Source hands out arrival records in order of their start time. Records
// with the same start time keep their order in the batch file.
type Source struct {
	queue sim.EventQueue
	ids   sim.IDGenerator

	total     int
	consumed  int
	discarded int
}

// NewSource creates a Source from the records of a batch file.
func NewSource(records []Record) (*Source, error) {
	s := &Source{
		queue: sim.NewEventQueue(),
		ids:   sim.NewSequentialIDGenerator(),
	}

	for _, r := range records {
		pcb, err := r.PCB()
		if err != nil {
			return nil, err
		}

		s.Add(pcb)
	}

	return s, nil
}

// Add appends an arrival record. The record must be valid to be handed out.
func (s *Source) Add(record *process.PCB) {
	s.queue.Push(arrivalEvent{
		EventBase: sim.NewEventBase(s.ids.Generate(), record.Start),
		record:    record,
	})
	s.total++
}

// HasPendingArrival tells if an arrival is left. Records that were reserved
// into the process table without being consumed, such as processes blocked
// for lack of memory, are dropped here.
func (s *Source) HasPendingArrival() bool {
	for s.queue.Len() > 0 {
		head := s.queue.Peek().(arrivalEvent)
		if head.record.Valid {
			return true
		}

		s.queue.Pop()
		s.discarded++
	}

	return false
}

// FetchCandidate returns the earliest arrival, or nil if there is none.
func (s *Source) FetchCandidate() *process.PCB {
	if !s.HasPendingArrival() {
		return nil
	}

	return s.queue.Peek().(arrivalEvent).record
}

// IsReady tells if the candidate has arrived by now.
func (s *Source) IsReady(candidate *process.PCB, now sim.VTime) bool {
	return candidate != nil && candidate.Start <= now
}

// ConsumeCandidate removes the current candidate.
func (s *Source) ConsumeCandidate() {
	if s.queue.Len() == 0 {
		return
	}

	s.queue.Pop()
	s.consumed++
}

// NextArrival returns the start time of the earliest pending arrival.
func (s *Source) NextArrival() (sim.VTime, bool) {
	if !s.HasPendingArrival() {
		return 0, false
	}

	return s.queue.Peek().Time(), true
}

// Total returns the number of records added.
func (s *Source) Total() int {
	return s.total
}

// Consumed returns the number of records taken by admitted processes.
func (s *Source) Consumed() int {
	return s.consumed
}

// Discarded returns the number of records dropped without being consumed.
func (s *Source) Discarded() int {
	return s.discarded
}
