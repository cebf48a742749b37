package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

func (b *ProgressBar) snapshot() progressBarRsp {
	b.Lock()
	defer b.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// ProgressHook moves a progress bar as processes are admitted and finish. A
// blocked process counts as finished since it never runs.
type ProgressHook struct {
	bar *ProgressBar
}

// NewProgressHook creates a bar of the given total on the monitor and returns
// the hook that drives it.
func (m *Monitor) NewProgressHook(name string, total uint64) *ProgressHook {
	return &ProgressHook{bar: m.CreateProgressBar(name, total)}
}

// Bar returns the bar driven by the hook.
func (h *ProgressHook) Bar() *ProgressBar {
	return h.bar
}

// Func updates the bar.
func (h *ProgressHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case core.HookPosProcessAdmitted:
		h.bar.IncrementInProgress(1)
	case core.HookPosProcessTerminated:
		h.bar.MoveInProgressToFinished(1)
	case core.HookPosProcessBlocked:
		h.bar.IncrementFinished(1)
	}
}
