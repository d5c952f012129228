package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/ltisim/internal/analysis"
	"github.com/san-kum/ltisim/internal/automation"
	"github.com/san-kum/ltisim/internal/config"
	"github.com/san-kum/ltisim/internal/experiment"
	"github.com/san-kum/ltisim/internal/export"
	"github.com/san-kum/ltisim/internal/optim"
	"github.com/san-kum/ltisim/internal/plant"
	"github.com/san-kum/ltisim/internal/sim"
	"github.com/san-kum/ltisim/internal/storage"
	"github.com/san-kum/ltisim/internal/viz"
)

// loadSystem resolves a file path or preset name, then applies the flags
// that were set explicitly on the command line.
func loadSystem(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) == 1 {
		name := args[0]
		if _, err := os.Stat(name); err == nil {
			cfg, err = config.Load(name)
			if err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Name == "" {
				cfg.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
			}
		} else if p := config.GetPreset(name); p != nil {
			cfg = p
		} else {
			return nil, fmt.Errorf("%q is neither a file nor a preset (available: %s)",
				name, strings.Join(config.ListPresets(), ", "))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("precision") {
		cfg.Precision = precision
	}
	if flags.Changed("input") {
		cfg.Input.Kind = inputKind
	}
	if flags.Changed("value") {
		cfg.Input.Value = value
	}
	if flags.Changed("kp") {
		cfg.Input.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Input.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Input.Kd = kd
	}
	if flags.Changed("target") {
		cfg.Input.Target = target
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveSystem is loadSystem without flag overrides.
func resolveSystem(ref string) (*config.Config, error) {
	if _, err := os.Stat(ref); err == nil {
		return config.Load(ref)
	}
	if p := config.GetPreset(ref); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%q is neither a file nor a preset", ref)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(slog.Default()); err != nil {
		return err
	}

	if verbose {
		if d, ok := exp.Plant().(plant.Describer); ok {
			fmt.Println(d.Describe())
		}
	}

	if trace {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "T\tU\tX\tY")
		exp.Simulator().AddObserver(&traceObserver{w: tw})
		defer tw.Flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("running", "system", cfg.Name, "steps", cfg.Steps, "dt", cfg.Dt, "precision", cfg.Precision)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		slog.Warn("run stopped early", "err", e)
	}

	slog.Info("completed", "elapsed", time.Since(start), "steps", result.StepsTaken)

	if !trace {
		if chart := viz.PlotOutputs(toRows(result.Outputs), "y", viz.DefaultPlotWidth, viz.DefaultPlotHeight); chart != "" {
			fmt.Println(chart)
			fmt.Println()
		}
	}
	fmt.Println(viz.Summary(cfg.Name, viz.MetricsTable(result.Metrics)))

	if noSave {
		return nil
	}

	runID, err := saveRun(ctx, exp, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func saveRun(ctx context.Context, exp *experiment.Experiment, result *sim.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	cfg := exp.Config()
	runID, err := st.Save(storage.RunMetadata{
		Name:       cfg.Name,
		Precision:  cfg.Precision,
		Dt:         cfg.Dt,
		Shape:      exp.Plant().Shape(),
		Controller: exp.ControllerName(),
	}, result)
	if err != nil {
		return "", err
	}

	meta, err := st.Load(runID)
	if err != nil {
		return "", err
	}

	idx := storage.NewIndex(dataDir)
	if err := idx.Init(ctx); err != nil {
		return "", err
	}
	defer idx.Close()

	if err := idx.Add(ctx, *meta); err != nil {
		// The run directory is already written; list --rebuild recovers it.
		slog.Warn("run not catalogued", "run", runID, "err", err)
	}
	return runID, nil
}

type traceObserver struct {
	w io.Writer
}

func (o *traceObserver) OnStep(x sim.State, u sim.Control, y sim.State, t float64) {
	fmt.Fprintf(o.w, "%.4f\t%s\t%s\t%s\n", t, formatVec(u), formatVec(x), formatVec(y))
}

func formatVec(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func toRows[S ~[]float64](in []S) [][]float64 {
	out := make([][]float64, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func describeSystem(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	p, err := plant.Build(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", cfg.Name)
	if d, ok := p.(plant.Describer); ok {
		fmt.Print(d.Describe())
	}
	fmt.Printf("input: %s\n", cfg.Input.Kind)
	return nil
}

func newLive(cfg *config.Config) (viz.Live, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(slog.Default()); err != nil {
		return viz.Live{}, err
	}
	return viz.NewLive(cfg.Name, exp.Plant(), exp.Controller()), nil
}

func openLive(name string) (viz.Live, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return viz.Live{}, fmt.Errorf("unknown preset: %s", name)
	}
	return newLive(cfg)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	live, err := newLive(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(live, tea.WithAltScreen()).Run()
	return err
}

func tunePID(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := len(kpGrid) * len(kiGrid) * len(kdGrid)
	slog.Info("tuning", "system", cfg.Name, "candidates", n, "target", cfg.Input.Target)

	params, best, err := optim.TunePID(ctx, cfg, kpGrid, kiGrid, kdGrid)
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary("best gains", viz.MetricsTable(map[string]float64{
		"kp":             params["kp"],
		"ki":             params["ki"],
		"kd":             params["kd"],
		"tracking_error": best,
	})))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	idx := storage.NewIndex(dataDir)
	if err := idx.Init(ctx); err != nil {
		return err
	}
	defer idx.Close()

	if rebuild {
		n, err := idx.Rebuild(ctx, st)
		if err != nil {
			return err
		}
		slog.Info("catalog rebuilt", "runs", n)
	}

	runs, err := idx.List(ctx, runName, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tSTEPS\tDT\tSHAPE\tPREC\tINPUT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%d/%d/%d\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Shape.NU, run.Shape.NX, run.Shape.NY,
			run.Precision,
			run.Controller,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	rows, caption := traj.Outputs, "y"
	if plotAll {
		rows, caption = traj.States, "x"
	}
	chart := viz.PlotOutputs(rows, fmt.Sprintf("%s %s (dt=%g)", meta.Name, caption, meta.Dt), viz.DefaultPlotWidth, viz.DefaultPlotHeight)
	if chart == "" {
		fmt.Println("nothing to plot")
		return nil
	}
	fmt.Println(chart)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	data, err := st.Export(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		return storage.WriteJSON(out, data)
	case "csv":
		result := &sim.Result{
			Times:   data.Times,
			States:  toStates(data.States),
			Inputs:  toControls(data.Inputs),
			Outputs: toStates(data.Outputs),
		}
		return storage.WriteTrajectoryCSV(out, data.Shape, result)
	case "svg":
		// outputs lag the times by one sample
		svg := export.SeriesToSVG(data.Times[:len(data.Outputs)], viz.Columns(data.Outputs), 800, 400)
		if svg == "" {
			return fmt.Errorf("run %s has no finite outputs", runID)
		}
		_, err := io.WriteString(out, svg)
		return err
	}
	return fmt.Errorf("unknown format %q (csv, json or svg)", format)
}

func toStates(rows [][]float64) []sim.State {
	out := make([]sim.State, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func toControls(rows [][]float64) []sim.Control {
	out := make([]sim.Control, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if channel < 0 || channel >= meta.Shape.NY {
		return fmt.Errorf("channel %d out of range (run has %d outputs)", channel, meta.Shape.NY)
	}
	y := traj.OutputSeries(channel)
	times := traj.Times[:len(y)]

	info, err := analysis.StepResponse(times, y, tol)
	if err != nil {
		return err
	}

	results := map[string]float64{
		"initial":       info.Initial,
		"final":         info.Final,
		"peak":          info.Peak,
		"overshoot_pct": info.Overshoot,
		"rise_time":     info.RiseTime,
		"settling_time": info.SettlingTime,
	}

	if ps, err := analysis.PowerSpectrum(y, meta.Dt); err == nil {
		freq, power := ps.Peak()
		results["dominant_hz"] = freq
		results["dominant_power"] = power
		fmt.Println(viz.PlotSeries(ps.Power, "power spectrum (Hz bins)", viz.DefaultPlotWidth, 8))
		fmt.Println()
	} else {
		slog.Warn("spectrum skipped", "err", err)
	}

	fmt.Println(viz.Summary(fmt.Sprintf("%s y%d", meta.Name, channel), viz.MetricsTable(results)))
	fmt.Printf("y%d %s\n", channel, viz.Sparkline(y, viz.DefaultPlotWidth))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(traj.States, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("state indices %d and %d out of range", xAxis, yAxis)
	}

	fmt.Printf("phase portrait: x%d vs x%d\n", yAxis, xAxis)
	fmt.Print(portrait.ASCII(60, 20))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHAPE\tPREC\tDT\tSTEPS\tINPUT")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		nu, nx, ny := cfg.Dims()
		fmt.Fprintf(w, "%s\t%d/%d/%d\t%s\t%g\t%d\t%s\n", name, nu, nx, ny, cfg.Precision, cfg.Dt, cfg.Steps, cfg.Input.Kind)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("running scenario", "name", scenario.Name, "steps", len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, resolveSystem, slog.Default())
	if err != nil {
		return err
	}

	for i, r := range results {
		fmt.Println(viz.Summary(r.Config.Name, viz.MetricsTable(r.Result.Metrics)))
		if scenario.Steps[i].SaveAs == "" {
			continue
		}
		runID, err := saveRun(ctx, r.Experiment, r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := automation.Sweep{Param: sweepParam, Min: sweepMin, Max: sweepMax, Num: sweepNum}
	slog.Info("sweeping", "system", cfg.Name, "param", sweep.Param, "min", sweep.Min, "max", sweep.Max, "points", sweep.Num)

	results, err := automation.RunSweep(ctx, cfg, sweep)
	if err != nil {
		return err
	}

	names := make([]string, 0)
	if len(results) > 0 {
		for name := range results[0].Metrics {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tY_FINAL", strings.ToUpper(sweep.Param))
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(name))
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%.6g\t%s", r.ParamValue, formatVec(r.FinalOutput))
		for _, name := range names {
			fmt.Fprintf(w, "\t%.6g", r.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := automation.MonteCarloConfig{Perturbation: mcPerturb, NumTrials: mcTrials, Seed: mcSeed}
	slog.Info("monte carlo", "system", cfg.Name, "trials", mc.NumTrials, "perturbation", mc.Perturbation, "seed", mc.Seed)

	results, err := automation.RunMonteCarlo(ctx, cfg, mc)
	if err != nil {
		return err
	}

	if verbose {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TRIAL\tX0\tX_FINAL\tSTABLE")
		for _, r := range results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", r.TrialID, formatVec(r.InitState), formatVec(r.FinalState), r.Stable)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Println(viz.Summary("monte carlo", viz.MetricsTable(map[string]float64{
		"trials":   float64(len(results)),
		"stable":   float64(stable),
		"unstable": float64(unstable),
	})))
	return nil
}
