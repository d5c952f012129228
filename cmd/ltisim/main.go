package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/ltisim/internal/automation"
	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	noColor  bool

	dt        float64
	steps     int
	precision string
	inputKind string
	value     []float64
	kp        float64
	ki        float64
	kd        float64
	target    float64
	validate  bool
	noSave    bool
	trace     bool
	verbose   bool

	kpGrid []float64
	kiGrid []float64
	kdGrid []float64

	runName string
	limit   int
	channel int
	tol     float64
	xAxis   int
	yAxis   int
	format  string
	outPath string
	plotAll bool
	rebuild bool

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepNum   int
	mcPerturb  float64
	mcTrials   int
	mcSeed     int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ltisim",
		Short:         "discrete-time LTI state-space simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			picker := viz.NewPicker(config.ListPresets(), openLive)
			_, err := tea.NewProgram(picker, tea.WithAltScreen()).Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ltisim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")

	runCmd := &cobra.Command{
		Use:   "run [file|preset]",
		Short: "run a system and save the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the run")
	runCmd.Flags().BoolVar(&trace, "trace", false, "print t, u, x and y at every step")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the system matrices")

	describeCmd := &cobra.Command{
		Use:   "describe [file|preset]",
		Short: "print the matrices of a system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  describeSystem,
	}
	addSystemFlags(describeCmd)

	liveCmd := &cobra.Command{
		Use:   "live [file|preset]",
		Short: "step a system in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [file|preset]",
		Short: "grid-search PID gains for the lowest tracking error",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tunePID,
	}
	addSystemFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&kpGrid, "kp-grid", []float64{0.5, 1, 2, 4}, "candidate kp values")
	tuneCmd.Flags().Float64SliceVar(&kiGrid, "ki-grid", []float64{0, 0.5, 1, 2}, "candidate ki values")
	tuneCmd.Flags().Float64SliceVar(&kdGrid, "kd-grid", []float64{0}, "candidate kd values")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&runName, "name", "", "only runs of this system")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs (0 for all)")
	listCmd.Flags().BoolVar(&rebuild, "rebuild", false, "rebuild the catalog from the run directories")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the outputs of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotAll, "states", false, "plot states instead of outputs")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as csv, json or an svg chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "csv, json or svg")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and frequency content of an output",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&channel, "channel", 0, "output channel")
	analyzeCmd.Flags().Float64Var(&tol, "tol", 0.02, "settling band as a fraction of the step")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two state components",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of systems",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [file|preset]",
		Short: "vary one parameter across concurrent runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSystemFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter ("+strings.Join(automation.SweepParams, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.01, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.1, "last value")
	sweepCmd.Flags().IntVar(&sweepNum, "num", 10, "number of points")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [file|preset]",
		Short: "perturb the initial state and count stable trials",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSystemFlags(mcCmd)
	mcCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.1, "uniform perturbation of each x0 component")
	mcCmd.Flags().IntVar(&mcTrials, "trials", 100, "number of trials")
	mcCmd.Flags().Int64Var(&mcSeed, "seed", 1, "random seed")
	mcCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every trial")

	rootCmd.AddCommand(runCmd, describeCmd, liveCmd, tuneCmd, listCmd, plotCmd, exportCmd, analyzeCmd, phaseCmd, presetsCmd,
		scenarioCmd, sweepCmd, mcCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().StringVar(&precision, "precision", config.DefaultPrecision, "float64 or float32")
	cmd.Flags().StringVar(&inputKind, "input", "", "input source (none, step, sine, pid, lqr)")
	cmd.Flags().Float64SliceVar(&value, "value", nil, "step input value per channel")
	cmd.Flags().Float64Var(&kp, "kp", 1, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", 0, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", 0, "pid kd")
	cmd.Flags().Float64Var(&target, "target", 0, "pid target")
	cmd.Flags().BoolVar(&validate, "validate", false, "stop at the first NaN or Inf state")
}

func setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
			NoColor:    noColor,
		}),
	))
	return nil
}
