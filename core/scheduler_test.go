package core

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

type endRecorder struct {
	calls []sim.VTime
}

func (r *endRecorder) Handle(now sim.VTime) {
	r.calls = append(r.calls, now)
}

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl  *gomock.Controller
		source    *MockBatchSource
		executor  *MockExecutor
		logger    *MockLogger
		scheduler *Scheduler
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		source = NewMockBatchSource(mockCtrl)
		executor = NewMockExecutor(mockCtrl)
		logger = NewMockLogger(mockCtrl)

		cfg := Config{
			MemorySize:      100,
			LoadingDuration: 1,
			MaxProcesses:    4,
			MaxPID:          4,
		}
		scheduler = NewScheduler(cfg, source, executor).WithLogger(logger)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	startRunning := func(pid process.PID, size uint64) {
		state := scheduler.State()
		err := state.Table.Reserve(pid,
			&process.PCB{Duration: 5, Size: size, Valid: true})
		Expect(err).NotTo(HaveOccurred())

		pcb, _ := state.Table.Lookup(pid)
		pcb.Status = process.Running
		state.RunningCount++
		state.UsedMemory += size
	}

	It("should panic on an invalid configuration", func() {
		Expect(func() {
			NewScheduler(Config{}, source, executor)
		}).To(Panic())
	})

	It("should finish at once when nothing is left", func() {
		source.EXPECT().HasPendingArrival().Return(false).AnyTimes()
		executor.EXPECT().
			AdvanceToNextEvent(gomock.Any(), sim.VTime(0)).
			Return(sim.VTime(0), EventNone, process.NoPID)
		executor.EXPECT().ApplyElapsed(gomock.Any(), sim.VTime(0))

		recorder := &endRecorder{}
		scheduler.RegisterSimulationEndHandler(recorder)

		Expect(scheduler.Run()).To(Succeed())
		Expect(scheduler.State().BatchComplete).To(BeTrue())
		Expect(recorder.calls).To(Equal([]sim.VTime{0}))
	})

	It("should reap a completed process", func() {
		startRunning(1, 30)

		source.EXPECT().HasPendingArrival().Return(false).AnyTimes()
		executor.EXPECT().
			AdvanceToNextEvent(scheduler.State().Table, sim.VTime(0)).
			Return(sim.VTime(5), EventCompleted, process.PID(1))
		executor.EXPECT().ApplyElapsed(scheduler.State().Table, sim.VTime(5))
		logger.EXPECT().LogPidMem(process.PID(1), "Process terminated, memory freed")

		var terminated []process.PCB
		scheduler.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosProcessTerminated {
				terminated = append(terminated, ctx.Item.(process.PCB))
			}
		}))

		recorder := &endRecorder{}
		scheduler.RegisterSimulationEndHandler(recorder)

		Expect(scheduler.Run()).To(Succeed())

		state := scheduler.State()
		Expect(state.SystemTime).To(Equal(sim.VTime(5)))
		Expect(state.UsedMemory).To(BeZero())
		Expect(state.RunningCount).To(BeZero())
		Expect(state.Table.IsValid(1)).To(BeFalse())
		Expect(terminated).To(HaveLen(1))
		Expect(terminated[0].Size).To(Equal(uint64(30)))
		Expect(recorder.calls).To(Equal([]sim.VTime{5}))
	})

	It("should ignore a completion of a process that is not running", func() {
		source.EXPECT().HasPendingArrival().Return(false).AnyTimes()
		executor.EXPECT().
			AdvanceToNextEvent(gomock.Any(), gomock.Any()).
			Return(sim.VTime(0), EventCompleted, process.PID(3))
		executor.EXPECT().ApplyElapsed(gomock.Any(), gomock.Any())
		logger.EXPECT().LogGeneric(gomock.Any())

		Expect(scheduler.Run()).To(Succeed())
		Expect(scheduler.State().RunningCount).To(BeZero())
		Expect(scheduler.State().UsedMemory).To(BeZero())
	})

	It("should report a stalled admission", func() {
		candidate := &process.PCB{Start: 5, Size: 10, Valid: true}

		source.EXPECT().HasPendingArrival().Return(true).AnyTimes()
		source.EXPECT().FetchCandidate().Return(candidate)
		source.EXPECT().IsReady(candidate, sim.VTime(0)).Return(false)
		logger.EXPECT().LogGeneric(gomock.Any())
		executor.EXPECT().
			AdvanceToNextEvent(gomock.Any(), gomock.Any()).
			Return(sim.VTime(0), EventNone, process.NoPID)
		executor.EXPECT().ApplyElapsed(gomock.Any(), gomock.Any())

		recorder := &endRecorder{}
		scheduler.RegisterSimulationEndHandler(recorder)

		err := scheduler.Run()
		Expect(errors.Is(err, ErrAdmissionStalled)).To(BeTrue())
		Expect(recorder.calls).To(BeEmpty())
	})

	It("should report time advances to hooks", func() {
		startRunning(2, 10)

		source.EXPECT().HasPendingArrival().Return(false).AnyTimes()
		executor.EXPECT().
			AdvanceToNextEvent(gomock.Any(), gomock.Any()).
			Return(sim.VTime(7), EventCompleted, process.PID(2))
		executor.EXPECT().ApplyElapsed(gomock.Any(), sim.VTime(7))
		logger.EXPECT().LogPidMem(process.PID(2), gomock.Any())

		var deltas []any
		scheduler.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosTimeAdvanced {
				deltas = append(deltas, ctx.Detail)
			}
		}))

		Expect(scheduler.Run()).To(Succeed())
		Expect(deltas).To(Equal([]any{sim.VTime(7)}))
	})

	It("should give a snapshot of the state", func() {
		startRunning(1, 30)
		startRunning(3, 20)

		snapshot := scheduler.Snapshot()
		Expect(snapshot.UsedMemory).To(Equal(uint64(50)))
		Expect(snapshot.MemorySize).To(Equal(uint64(100)))
		Expect(snapshot.RunningCount).To(Equal(2))
		Expect(snapshot.Processes).To(HaveLen(2))
		Expect(snapshot.Processes[0].PID).To(Equal(process.PID(1)))
		Expect(snapshot.Processes[1].PID).To(Equal(process.PID(3)))

		pcb, ok := scheduler.Process(3)
		Expect(ok).To(BeTrue())
		Expect(pcb.Size).To(Equal(uint64(20)))

		_, ok = scheduler.Process(2)
		Expect(ok).To(BeFalse())
	})

	It("should hold the loop while paused", func() {
		source.EXPECT().HasPendingArrival().Return(false).AnyTimes()
		executor.EXPECT().
			AdvanceToNextEvent(gomock.Any(), gomock.Any()).
			Return(sim.VTime(0), EventNone, process.NoPID)
		executor.EXPECT().ApplyElapsed(gomock.Any(), gomock.Any())

		scheduler.Pause()
		scheduler.Pause()

		done := make(chan error)
		go func() {
			done <- scheduler.Run()
		}()

		Consistently(done, "50ms").ShouldNot(Receive())

		scheduler.Continue()
		scheduler.Continue()

		Eventually(done).Should(Receive(BeNil()))
	})
})
