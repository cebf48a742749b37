package process

import "fmt"

// A Table is the process registry. It is a fixed-capacity arena of PCB slots
// indexed directly by PID. A slot is in use when its Valid flag is set.
type Table struct {
	slots []PCB
}

// NewTable creates a table with the given number of slots. Slot 0 exists but
// is never reserved.
func NewTable(capacity int) *Table {
	if capacity < 2 {
		panic(fmt.Sprintf("process table capacity must be at least 2, got %d",
			capacity))
	}

	return &Table{
		slots: make([]PCB, capacity),
	}
}

// Capacity returns the number of slots.
func (t *Table) Capacity() int {
	return len(t.slots)
}

func (t *Table) inRange(pid PID) bool {
	return pid != NoPID && int(pid) < len(t.slots)
}

// IsValid tells if the slot of pid is in use.
func (t *Table) IsValid(pid PID) bool {
	return t.inRange(pid) && t.slots[pid].Valid
}

// Lookup returns the PCB stored under pid. The pointer is borrowed; it stays
// owned by the table.
func (t *Table) Lookup(pid PID) (*PCB, bool) {
	if !t.IsValid(pid) {
		return nil, false
	}

	return &t.slots[pid], true
}

// Reserve copies template into the slot of pid and marks the slot valid with
// status Init. The template is invalidated so that the same record cannot be
// admitted twice.
func (t *Table) Reserve(pid PID, template *PCB) error {
	if template == nil {
		return ErrNoTemplate
	}

	if !t.inRange(pid) {
		return fmt.Errorf("reserving pid %d: %w", pid, ErrPIDOutOfRange)
	}

	slot := &t.slots[pid]
	if slot.Valid {
		return fmt.Errorf("reserving pid %d: %w", pid, ErrSlotInUse)
	}

	slot.PID = pid
	slot.PPID = template.PPID
	slot.OwnerID = template.OwnerID
	slot.Start = template.Start
	slot.Duration = template.Duration
	slot.Size = template.Size
	slot.UsedCPU = template.UsedCPU
	slot.Type = template.Type
	slot.Status = Init
	slot.Valid = true

	template.Valid = false

	return nil
}

// Release wipes the slot of pid and marks it free.
func (t *Table) Release(pid PID) error {
	if !t.inRange(pid) {
		return fmt.Errorf("releasing pid %d: %w", pid, ErrPIDOutOfRange)
	}

	slot := &t.slots[pid]
	if !slot.Valid {
		return fmt.Errorf("releasing pid %d: %w", pid, ErrSlotFree)
	}

	slot.wipe()

	return nil
}

// Each calls f on every valid slot in PID order.
func (t *Table) Each(f func(pcb *PCB)) {
	for i := range t.slots {
		if t.slots[i].Valid {
			f(&t.slots[i])
		}
	}
}

// Valid returns a copy of every valid PCB in PID order.
func (t *Table) Valid() []PCB {
	pcbs := make([]PCB, 0)
	t.Each(func(pcb *PCB) {
		pcbs = append(pcbs, *pcb)
	})

	return pcbs
}

// Slot returns a copy of the slot of pid, valid or not. It is meant for
// inspection of freed slots.
func (t *Table) Slot(pid PID) (PCB, bool) {
	if int(pid) >= len(t.slots) {
		return PCB{}, false
	}

	return t.slots[pid], true
}

// CheckConsistency verifies that every valid slot carries its own PID.
func (t *Table) CheckConsistency() error {
	for i := range t.slots {
		slot := &t.slots[i]
		if slot.Valid && int(slot.PID) != i {
			return fmt.Errorf("slot %d holds pid %d", i, slot.PID)
		}
	}

	if t.slots[NoPID].Valid {
		return fmt.Errorf("slot of pid %d is in use", NoPID)
	}

	return nil
}
