package tracing

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/process"
	"github.com/sarchlab/admitsim/sim"
)

// TickDuration is the wall-clock length given to one tick of simulated time
// when it is written into a span.
const TickDuration = time.Millisecond

const instrumentationName = "github.com/sarchlab/admitsim"

// SpanTracer is a hook that turns every process lifetime into an
// OpenTelemetry span. All the process spans are children of one run span
// that ends when the simulation drains.
type SpanTracer struct {
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	epoch    time.Time

	runCtx  context.Context
	runSpan trace.Span
	spans   map[process.PID]trace.Span
	ended   bool
}

// NewStdoutSpanTracer creates a SpanTracer that writes the spans as JSON to
// w.
func NewStdoutSpanTracer(runID string, w io.Writer) (*SpanTracer, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	return NewSpanTracer(runID, exporter)
}

// NewSpanTracer creates a SpanTracer that hands the finished spans to the
// given exporter.
func NewSpanTracer(
	runID string,
	exporter sdktrace.SpanExporter,
) (*SpanTracer, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "admitsim"),
			attribute.String("admitsim.run_id", runID),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	t := &SpanTracer{
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
		epoch:    time.Now(),
		spans:    make(map[process.PID]trace.Span),
	}

	t.runCtx, t.runSpan = t.tracer.Start(context.Background(), "run "+runID,
		trace.WithTimestamp(t.epoch),
		trace.WithAttributes(attribute.String("admitsim.run_id", runID)),
	)

	return t, nil
}

// Timestamp converts a simulated time into the wall-clock time of the spans.
func (t *SpanTracer) Timestamp(now sim.VTime) time.Time {
	return t.epoch.Add(time.Duration(now) * TickDuration)
}

// Func opens a span on admission and closes it on termination. A blocked
// process gets a zero-length span with an error status.
func (t *SpanTracer) Func(ctx sim.HookCtx) {
	pcb, ok := ctx.Item.(process.PCB)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ended {
		return
	}

	switch ctx.Pos {
	case core.HookPosProcessAdmitted:
		t.spans[pcb.PID] = t.startProcessSpan(pcb, ctx.Now)
	case core.HookPosProcessBlocked:
		span := t.startProcessSpan(pcb, ctx.Now)
		span.SetStatus(codes.Error, "insufficient memory")
		span.End(trace.WithTimestamp(t.Timestamp(ctx.Now)))
	case core.HookPosProcessTerminated:
		span, found := t.spans[pcb.PID]
		if !found {
			return
		}

		delete(t.spans, pcb.PID)
		span.SetStatus(codes.Ok, "")
		span.End(trace.WithTimestamp(t.Timestamp(ctx.Now)))
	}
}

func (t *SpanTracer) startProcessSpan(
	pcb process.PCB,
	now sim.VTime,
) trace.Span {
	_, span := t.tracer.Start(t.runCtx, "process",
		trace.WithTimestamp(t.Timestamp(now)),
		trace.WithAttributes(
			attribute.Int64("process.pid", int64(pcb.PID)),
			attribute.Int64("process.size", int64(pcb.Size)),
			attribute.Int64("process.arrival", int64(pcb.Start)),
			attribute.Int64("process.duration", int64(pcb.Duration)),
		),
	)

	return span
}

// Handle ends the run span and flushes the spans once the simulation drains.
func (t *SpanTracer) Handle(now sim.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.end(t.Timestamp(now))
}

// Shutdown ends whatever is still open and releases the exporter.
func (t *SpanTracer) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.end(time.Now())
	t.mu.Unlock()

	return t.provider.Shutdown(ctx)
}

func (t *SpanTracer) end(at time.Time) {
	if t.ended {
		return
	}

	t.ended = true

	for pid, span := range t.spans {
		span.End(trace.WithTimestamp(at))
		delete(t.spans, pid)
	}

	t.runSpan.End(trace.WithTimestamp(at))
}
