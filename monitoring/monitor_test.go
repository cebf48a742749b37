package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

var _ = Describe("Monitor", func() {
	var (
		mockCtrl   *gomock.Controller
		controller *MockController
		m          *Monitor
		handler    http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		controller = NewMockController(mockCtrl)

		m = NewMonitor()
		m.RegisterController(controller)
		handler = m.Handler()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should ignore reserved port numbers", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should listen on every port it accepts", func() {
		Expect(m.WithPortNumber(999).listenAddr()).To(Equal(":0"))
		Expect(m.WithPortNumber(1000).listenAddr()).To(Equal(":1000"))
		Expect(m.WithPortNumber(8080).listenAddr()).To(Equal(":8080"))
		Expect(m.WithPortNumber(0).listenAddr()).To(Equal(":0"))
	})

	It("should pause and continue the scheduler", func() {
		gomock.InOrder(
			controller.EXPECT().Pause(),
			controller.EXPECT().Continue(),
		)

		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
	})

	It("should report the current time", func() {
		controller.EXPECT().CurrentTime().Return(sim.VTime(42))

		rec := get("/api/now")

		Expect(rec.Body.String()).To(Equal(`{"now":42}`))
	})

	It("should report the state", func() {
		controller.EXPECT().Snapshot().Return(core.Snapshot{
			SystemTime:   7,
			UsedMemory:   60,
			MemorySize:   100,
			RunningCount: 1,
			Processes: []process.PCB{
				{PID: 1, Size: 60, Status: process.Running, Valid: true},
			},
		})

		rec := get("/api/state")
		Expect(rec.Code).To(Equal(http.StatusOK))

		snapshot := core.Snapshot{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &snapshot)).To(Succeed())
		Expect(snapshot.UsedMemory).To(Equal(uint64(60)))
		Expect(snapshot.Processes).To(HaveLen(1))
		Expect(snapshot.Processes[0].PID).To(Equal(process.PID(1)))
	})

	It("should serialize a process", func() {
		controller.EXPECT().Process(process.PID(3)).
			Return(process.PCB{PID: 3, Size: 20, Valid: true}, true)

		rec := get("/api/process/3")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).NotTo(BeZero())
	})

	It("should report a missing process", func() {
		controller.EXPECT().Process(process.PID(9)).
			Return(process.PCB{}, false)

		Expect(get("/api/process/9").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a malformed pid", func() {
		Expect(get("/api/process/abc").Code).To(Equal(http.StatusBadRequest))
	})

	It("should refuse requests without a scheduler", func() {
		m = NewMonitor()
		handler = m.Handler()

		Expect(get("/api/now").Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Processes", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(1)
		m.CreateProgressBar("Other", 1)

		rec := get("/api/progress")

		bars := []progressBarRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(2))
		Expect(bars[0].Name).To(Equal("Processes"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].InProgress).To(Equal(uint64(2)))
		Expect(bars[0].Finished).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)

		rec = get("/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Other"))
	})

	It("should serve the dashboard", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should start and stop the server", func() {
		url, err := m.StartServer()

		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(HavePrefix("http://localhost:"))
		Expect(m.StopServer()).To(Succeed())
	})
})

var _ = Describe("ProgressHook", func() {
	It("should move the bar with the process lifecycle", func() {
		m := NewMonitor()
		hook := m.NewProgressHook("Processes", 3)

		hook.Func(sim.HookCtx{Pos: core.HookPosProcessAdmitted})
		hook.Func(sim.HookCtx{Pos: core.HookPosProcessAdmitted})
		hook.Func(sim.HookCtx{Pos: core.HookPosProcessBlocked})
		hook.Func(sim.HookCtx{Pos: core.HookPosProcessTerminated})
		hook.Func(sim.HookCtx{Pos: core.HookPosTimeAdvanced})

		bar := hook.Bar()
		Expect(bar.InProgress).To(Equal(uint64(1)))
		Expect(bar.Finished).To(Equal(uint64(2)))
		Expect(bar.Total).To(Equal(uint64(3)))
	})
})
