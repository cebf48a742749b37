package process

import "errors"

var (
	// ErrNoTemplate is returned when reserving a slot without a template.
	ErrNoTemplate = errors.New("process: no template record")

	// ErrNoSourceRecord is returned when initializing a process from an
	// absent arrival record.
	ErrNoSourceRecord = errors.New("process: no source record")

	// ErrNilPCB is returned when deleting through an absent reference.
	ErrNilPCB = errors.New("process: nil pcb")

	// ErrAlreadyReleased is returned when deleting a PCB that is not valid.
	ErrAlreadyReleased = errors.New("process: pcb already released")

	// ErrSlotFree is returned when releasing a slot that is not in use.
	ErrSlotFree = errors.New("process: slot is free")

	// ErrSlotInUse is returned when reserving a slot that is still valid.
	ErrSlotInUse = errors.New("process: slot in use")

	// ErrPIDOutOfRange is returned for PID 0 or PIDs beyond the table.
	ErrPIDOutOfRange = errors.New("process: pid out of range")
)
