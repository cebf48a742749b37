package process

// InitNewProcess stores the arrival record src in the table under pid. The
// record is invalidated on success.
func InitNewProcess(table *Table, pid PID, src *PCB) error {
	if src == nil {
		return ErrNoSourceRecord
	}

	return table.Reserve(pid, src)
}

// DeleteProcess wipes the PCB and frees its slot. Deleting an already
// released PCB is reported, so callers never account for it twice.
func DeleteProcess(pcb *PCB) error {
	if pcb == nil {
		return ErrNilPCB
	}

	if !pcb.Valid {
		return ErrAlreadyReleased
	}

	pcb.wipe()

	return nil
}
