package process

import "fmt"

// A PIDAllocator finds free PIDs by circular probing over the table. The
// cursor is kept between calls so PIDs are reused round-robin rather than
// lowest-first.
type PIDAllocator struct {
	table  *Table
	maxPID PID
	cursor PID
}

// NewPIDAllocator creates an allocator handing out PIDs in [1, maxPID).
func NewPIDAllocator(table *Table, maxPID int) *PIDAllocator {
	if maxPID < 2 {
		panic(fmt.Sprintf("max pid must be at least 2, got %d", maxPID))
	}

	if maxPID > table.Capacity() {
		panic(fmt.Sprintf("max pid %d exceeds table capacity %d",
			maxPID, table.Capacity()))
	}

	return &PIDAllocator{
		table:  table,
		maxPID: PID(maxPID),
		cursor: 1,
	}
}

// NextID returns a PID whose slot is free, or NoPID once maxPID probes found
// nothing.
func (a *PIDAllocator) NextID() PID {
	probes := PID(0)

	for a.table.IsValid(a.cursor) && probes < a.maxPID {
		a.cursor = (a.cursor + 1) % a.maxPID
		if a.cursor == NoPID {
			a.cursor++
		}
		probes++
	}

	if probes == a.maxPID {
		return NoPID
	}

	return a.cursor
}
