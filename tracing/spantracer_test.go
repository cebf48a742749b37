package tracing

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

func spanAttr(span tracetest.SpanStub, key string) attribute.Value {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value
		}
	}

	return attribute.Value{}
}

var _ = Describe("SpanTracer", func() {
	var (
		exporter *tracetest.InMemoryExporter
		tracer   *SpanTracer
	)

	BeforeEach(func() {
		var err error

		exporter = tracetest.NewInMemoryExporter()
		tracer, err = NewSpanTracer("run1", exporter)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(tracer.Shutdown(context.Background())).To(Succeed())
	})

	It("should span a process from admission to termination", func() {
		pcb := process.PCB{PID: 3, Start: 1, Duration: 10, Size: 40}

		tracer.Func(sim.HookCtx{
			Pos: core.HookPosProcessAdmitted, Now: 2, Item: pcb,
		})
		Expect(exporter.GetSpans()).To(BeEmpty())

		tracer.Func(sim.HookCtx{
			Pos: core.HookPosProcessTerminated, Now: 12, Item: pcb,
		})

		spans := exporter.GetSpans()
		Expect(spans).To(HaveLen(1))

		span := spans[0]
		Expect(span.Name).To(Equal("process"))
		Expect(span.StartTime).To(BeTemporally("==", tracer.Timestamp(2)))
		Expect(span.EndTime).To(BeTemporally("==", tracer.Timestamp(12)))
		Expect(span.EndTime.Sub(span.StartTime)).To(Equal(10 * TickDuration))
		Expect(span.Status.Code).To(Equal(codes.Ok))
		Expect(spanAttr(span, "process.pid").AsInt64()).To(Equal(int64(3)))
		Expect(spanAttr(span, "process.size").AsInt64()).To(Equal(int64(40)))
	})

	It("should close a blocked process right away", func() {
		tracer.Func(sim.HookCtx{
			Pos:  core.HookPosProcessBlocked,
			Now:  4,
			Item: process.PCB{PID: 1, Size: 500},
		})

		spans := exporter.GetSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].Status.Code).To(Equal(codes.Error))
		Expect(spans[0].StartTime).To(BeTemporally("==", spans[0].EndTime))
	})

	It("should ignore hooks without a process", func() {
		tracer.Func(sim.HookCtx{
			Pos:    core.HookPosTimeAdvanced,
			Now:    3,
			Detail: sim.VTime(3),
		})
		tracer.Func(sim.HookCtx{
			Pos:  core.HookPosProcessTerminated,
			Now:  3,
			Item: process.PCB{PID: 9},
		})

		Expect(exporter.GetSpans()).To(BeEmpty())
	})

	It("should parent every process under the run span", func() {
		pcb := process.PCB{PID: 1, Duration: 5, Size: 10}

		tracer.Func(sim.HookCtx{
			Pos: core.HookPosProcessAdmitted, Now: 0, Item: pcb,
		})
		tracer.Func(sim.HookCtx{
			Pos: core.HookPosProcessTerminated, Now: 5, Item: pcb,
		})
		tracer.Handle(5)

		spans := exporter.GetSpans()
		Expect(spans).To(HaveLen(2))

		run := spans[1]
		Expect(run.Name).To(Equal("run run1"))
		Expect(run.EndTime).To(BeTemporally("==", tracer.Timestamp(5)))
		Expect(spans[0].Parent.SpanID()).To(Equal(run.SpanContext.SpanID()))
		Expect(spans[0].SpanContext.TraceID()).
			To(Equal(run.SpanContext.TraceID()))
	})

	It("should end open spans when the run drains", func() {
		tracer.Func(sim.HookCtx{
			Pos:  core.HookPosProcessAdmitted,
			Now:  1,
			Item: process.PCB{PID: 2, Duration: 50, Size: 10},
		})
		tracer.Handle(7)

		spans := exporter.GetSpans()
		Expect(spans).To(HaveLen(2))
		Expect(spans[0].EndTime).To(BeTemporally("==", tracer.Timestamp(7)))

		tracer.Func(sim.HookCtx{
			Pos:  core.HookPosProcessAdmitted,
			Now:  8,
			Item: process.PCB{PID: 3, Duration: 1, Size: 1},
		})
		Expect(exporter.GetSpans()).To(HaveLen(2))
	})

	It("should write the spans as JSON", func() {
		buf := new(bytes.Buffer)
		stdout, err := NewStdoutSpanTracer("run2", buf)
		Expect(err).NotTo(HaveOccurred())

		stdout.Func(sim.HookCtx{
			Pos:  core.HookPosProcessBlocked,
			Now:  0,
			Item: process.PCB{PID: 1, Size: 500},
		})
		stdout.Handle(0)
		Expect(stdout.Shutdown(context.Background())).To(Succeed())

		Expect(buf.String()).To(ContainSubstring(`"Name":"process"`))
		Expect(buf.String()).To(ContainSubstring(`"Name":"run run2"`))
	})
})
