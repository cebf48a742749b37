package tracing

import (
	"bytes"
	"errors"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

var _ = Describe("ProcessLogger", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		memory     *MockMemoryTeller
		buf        *bytes.Buffer
		logger     *ProcessLogger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		memory = NewMockMemoryTeller(mockCtrl)
		buf = new(bytes.Buffer)
		logger = NewProcessLogger(log.New(buf, "", 0), timeTeller, memory)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should tag process messages with time and memory", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTime(12))
		memory.EXPECT().MemoryUsage().Return(uint64(60), uint64(100))

		logger.LogPidMem(3, "Process started and memory allocated")

		Expect(buf.String()).To(Equal(
			"12, pid 3, mem 60/100: Process started and memory allocated\n"))
	})

	It("should tag generic messages with time", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTime(4))

		logger.LogGeneric("No free process id, admission deferred")

		Expect(buf.String()).To(Equal(
			"4: No free process id, admission deferred\n"))
	})
})

var _ = Describe("HookLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *HookLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewHookLogger(log.New(buf, "", 0))
	})

	It("should print process hooks", func() {
		logger.Func(sim.HookCtx{
			Pos:  core.HookPosProcessAdmitted,
			Now:  3,
			Item: process.PCB{PID: 2, Size: 40},
		})

		Expect(buf.String()).To(Equal("3, ProcessAdmitted, pid 2, size 40, -\n"))
	})

	It("should print time advances", func() {
		logger.Func(sim.HookCtx{
			Pos:    core.HookPosTimeAdvanced,
			Now:    9,
			Detail: sim.VTime(5),
		})

		Expect(buf.String()).To(Equal("9, TimeAdvanced, +5\n"))
	})

	It("should print deferral reasons", func() {
		logger.Func(sim.HookCtx{
			Pos:    core.HookPosAdmissionDeferred,
			Now:    1,
			Detail: errors.New("no record"),
		})

		Expect(buf.String()).To(Equal("1, AdmissionDeferred, no record\n"))
	})
})
