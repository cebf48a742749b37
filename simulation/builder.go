package simulation

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/admitsim/batch"
	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/datarecording"
	"github.com/sarchlab/admitsim/executor"
	"github.com/sarchlab/admitsim/monitoring"
	"github.com/sarchlab/admitsim/sim"
	"github.com/sarchlab/admitsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg            core.Config
	records        []batch.Record
	monitorOn      bool
	monitorPort    int
	outputFileName string
	logWriter      io.Writer
	verbose        bool
	spanTraceFile  string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		cfg:       core.DefaultConfig(),
		monitorOn: true,
		logWriter: os.Stderr,
	}
}

// WithConfig sets the policy knobs of the simulated OS.
func (b Builder) WithConfig(cfg core.Config) Builder {
	b.cfg = cfg
	return b
}

// WithRecords sets the batch of processes to run.
func (b Builder) WithRecords(records []batch.Record) Builder {
	b.records = records
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithLogWriter sets where the diagnostic messages go. A nil writer silences
// them.
func (b Builder) WithLogWriter(w io.Writer) Builder {
	b.logWriter = w
	return b
}

// WithVerboseHooks makes the simulation print every hook firing.
func (b Builder) WithVerboseHooks() Builder {
	b.verbose = true
	return b
}

// WithSpanTraceFile makes the simulation write an OpenTelemetry span for
// every process into the given file.
func (b Builder) WithSpanTraceFile(path string) Builder {
	b.spanTraceFile = path
	return b
}

func (b Builder) parametersMustBeValid() error {
	if !b.monitorOn && b.monitorPort != 0 {
		return errors.New(
			"monitor port cannot be set when monitoring is disabled")
	}

	return b.cfg.Validate()
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	source, err := batch.NewSource(b.records)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     sim.NewParallelIDGenerator().Generate(),
		source: source,
	}

	s.scheduler = core.NewScheduler(b.cfg, source, executor.New(source))

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "admitsim_" + s.id
	}

	if _, err := os.Stat(outputPath + ".sqlite3"); err == nil {
		return nil, fmt.Errorf("output file %s.sqlite3 already exists",
			outputPath)
	}

	s.dataRecorder = datarecording.New(outputPath)
	s.tracer = tracing.NewDBTracer(s.id, s.dataRecorder)
	s.scheduler.AcceptHook(s.tracer)
	s.scheduler.RegisterSimulationEndHandler(s.tracer)

	b.buildLogging(s)

	if b.spanTraceFile != "" {
		err := b.buildSpanTracer(s)
		if err != nil {
			s.Terminate()
			return nil, err
		}
	}

	if b.monitorOn {
		err := b.buildMonitor(s)
		if err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func (b Builder) buildLogging(s *Simulation) {
	w := b.logWriter
	if w == nil {
		w = io.Discard
	}

	logger := log.New(w, "", 0)
	state := s.scheduler.State()
	s.scheduler.WithLogger(tracing.NewProcessLogger(logger, state, state))

	if b.verbose {
		s.scheduler.AcceptHook(tracing.NewHookLogger(logger))
	}
}

func (b Builder) buildSpanTracer(s *Simulation) error {
	f, err := os.Create(b.spanTraceFile)
	if err != nil {
		return err
	}

	s.spanTraceFile = f

	s.spanTracer, err = tracing.NewStdoutSpanTracer(s.id, f)
	if err != nil {
		return err
	}

	s.scheduler.AcceptHook(s.spanTracer)
	s.scheduler.RegisterSimulationEndHandler(s.spanTracer)

	return nil
}

func (b Builder) buildMonitor(s *Simulation) error {
	s.monitor = monitoring.NewMonitor()
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	s.monitor.RegisterController(s.scheduler)
	s.scheduler.AcceptHook(
		s.monitor.NewProgressHook("Processes", uint64(s.source.Total())))

	url, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	s.monitorURL = url

	return nil
}
