// Package simulation wires a scheduler with its batch, recording, logging,
// and monitoring into a runnable simulation.
package simulation

import (
	"context"
	"os"

	"github.com/sarchlab/admitsim/batch"
	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/datarecording"
	"github.com/sarchlab/admitsim/monitoring"
	"github.com/sarchlab/admitsim/tracing"
)

// A Simulation holds everything that takes part in one run.
type Simulation struct {
	id string

	scheduler *core.Scheduler
	source    *batch.Source

	dataRecorder datarecording.DataRecorder
	tracer       *tracing.DBTracer
	spanTracer   *tracing.SpanTracer
	monitor      *monitoring.Monitor
	monitorURL   string

	spanTraceFile *os.File
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Scheduler returns the scheduler of the simulated OS.
func (s *Simulation) Scheduler() *core.Scheduler {
	return s.scheduler
}

// Source returns the batch that feeds the scheduler.
func (s *Simulation) Source() *batch.Source {
	return s.source
}

// DataRecorder returns the data recorder used in the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Tracer returns the tracer that records the process lifecycles.
func (s *Simulation) Tracer() *tracing.DBTracer {
	return s.tracer
}

// SpanTracer returns the OpenTelemetry tracer, or nil if span tracing is
// disabled.
func (s *Simulation) SpanTracer() *tracing.SpanTracer {
	return s.spanTracer
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run runs the batch to the end.
func (s *Simulation) Run() error {
	return s.scheduler.Run()
}

// Terminate stops the monitor and closes the database and the span trace.
func (s *Simulation) Terminate() {
	if s.monitor != nil {
		s.monitor.StopServer()
	}

	if s.spanTracer != nil {
		_ = s.spanTracer.Shutdown(context.Background())
	}

	if s.spanTraceFile != nil {
		s.spanTraceFile.Close()
	}

	s.dataRecorder.Close()
}
