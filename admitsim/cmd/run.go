package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/admitsim/batch"
	"github.com/sarchlab/admitsim/core"
	"github.com/sarchlab/admitsim/sim"
	"github.com/sarchlab/admitsim/simulation"
)

// Environment variables that provide defaults for the configuration flags.
const (
	EnvMemorySize      = "ADMITSIM_MEMORY_SIZE"
	EnvLoadingDuration = "ADMITSIM_LOADING_DURATION"
	EnvMaxProcesses    = "ADMITSIM_MAX_PROCESSES"
	EnvMaxPID          = "ADMITSIM_MAX_PID"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch of processes.",
	Long: "`run --batch FILE` admits the processes of a YAML or CSV batch " +
		"file and runs them to completion.",
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	defaults := core.DefaultConfig()

	f := runCmd.Flags()
	f.String("batch", "", "batch file to run (.yaml, .yml, or CSV)")
	f.Uint64("memory", defaults.MemorySize,
		"memory available to processes, also "+EnvMemorySize)
	f.Uint64("loading", uint64(defaults.LoadingDuration),
		"time charged for loading each process, also "+EnvLoadingDuration)
	f.Int("max-processes", defaults.MaxProcesses,
		"slots of the process table, also "+EnvMaxProcesses)
	f.Int("max-pid", defaults.MaxPID,
		"upper bound of the PIDs handed out, also "+EnvMaxPID)
	f.String("output", "", "name of the database file, without extension")
	f.Bool("monitor", false, "serve a monitoring dashboard during the run")
	f.Int("monitor-port", 0, "port of the monitoring dashboard")
	f.Bool("open-browser", false, "open the monitoring dashboard")
	f.Bool("verbose", false, "print every scheduler hook")
	f.String("span-trace", "",
		"file to write an OpenTelemetry span per process into")

	_ = runCmd.MarkFlagRequired("batch")

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("batch")

	records, err := batch.Load(path)
	if err != nil {
		return err
	}

	builder, err := builderFromFlags(cmd, cfg, records)
	if err != nil {
		return err
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}
	defer s.Terminate()

	openBrowser, _ := cmd.Flags().GetBool("open-browser")
	if openBrowser && s.MonitorURL() != "" {
		if err := browser.OpenURL(s.MonitorURL()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %v\n", err)
		}
	}

	runErr := s.Run()

	admitted, blocked, completed := s.Tracer().Counts()
	fmt.Fprintf(cmd.OutOrStdout(),
		"run %s: time %d, admitted %d, blocked %d, completed %d, "+
			"recorded in %s\n",
		s.ID(), s.Scheduler().CurrentTime(),
		admitted, blocked, completed, s.DataRecorder().Path())

	return runErr
}

func builderFromFlags(
	cmd *cobra.Command,
	cfg core.Config,
	records []batch.Record,
) (simulation.Builder, error) {
	f := cmd.Flags()

	output, _ := f.GetString("output")
	monitor, _ := f.GetBool("monitor")
	port, _ := f.GetInt("monitor-port")
	verbose, _ := f.GetBool("verbose")
	spanTrace, _ := f.GetString("span-trace")

	b := simulation.MakeBuilder().
		WithConfig(cfg).
		WithRecords(records).
		WithOutputFileName(output).
		WithLogWriter(cmd.ErrOrStderr())

	if !monitor {
		if port != 0 {
			return b, errors.New("--monitor-port requires --monitor")
		}

		b = b.WithoutMonitoring()
	} else if port != 0 {
		b = b.WithMonitorPort(port)
	}

	if verbose {
		b = b.WithVerboseHooks()
	}

	if spanTrace != "" {
		b = b.WithSpanTraceFile(spanTrace)
	}

	return b, nil
}

func configFromFlags(cmd *cobra.Command) (core.Config, error) {
	f := cmd.Flags()
	cfg := core.Config{}

	memory, err := uintSetting(cmd, "memory", EnvMemorySize)
	if err != nil {
		return cfg, err
	}

	loading, err := uintSetting(cmd, "loading", EnvLoadingDuration)
	if err != nil {
		return cfg, err
	}

	maxProcesses, err := intSetting(cmd, "max-processes", EnvMaxProcesses)
	if err != nil {
		return cfg, err
	}

	maxPID, err := intSetting(cmd, "max-pid", EnvMaxPID)
	if err != nil {
		return cfg, err
	}

	cfg.MemorySize = memory
	cfg.LoadingDuration = sim.VTime(loading)
	cfg.MaxProcesses = maxProcesses
	cfg.MaxPID = maxPID

	if !f.Changed("max-processes") && maxPID > maxProcesses {
		cfg.MaxProcesses = maxPID
	}

	return cfg, cfg.Validate()
}

// uintSetting returns the flag value if it was given, the environment value if
// it is set, and the flag default otherwise.
func uintSetting(cmd *cobra.Command, flag, env string) (uint64, error) {
	v, _ := cmd.Flags().GetUint64(flag)
	if cmd.Flags().Changed(flag) {
		return v, nil
	}

	s, ok := os.LookupEnv(env)
	if !ok {
		return v, nil
	}

	parsed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", env, err)
	}

	return parsed, nil
}

func intSetting(cmd *cobra.Command, flag, env string) (int, error) {
	v, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return v, nil
	}

	s, ok := os.LookupEnv(env)
	if !ok {
		return v, nil
	}

	parsed, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", env, err)
	}

	return parsed, nil
}
