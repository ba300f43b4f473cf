package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/galaxysim/internal/analysis"
	"github.com/san-kum/galaxysim/internal/automation"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/dynamo"
	"github.com/san-kum/galaxysim/internal/experiment"
	"github.com/san-kum/galaxysim/internal/export"
	"github.com/san-kum/galaxysim/internal/gui"
	"github.com/san-kum/galaxysim/internal/integrators"
	"github.com/san-kum/galaxysim/internal/logging"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/optim"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/storage"
	"github.com/san-kum/galaxysim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	seed       int64
	particles  int
	integrator string
	workers    int
	// headless run
	dt          float64
	steps       int
	sampleEvery int
	validate    bool
	runs        int
	// output
	outFile   string
	format    string
	imageSize int
	extent    float64
	// sweeps
	paramName  string
	paramMin   float64
	paramMax   float64
	paramSteps int
	gridSpecs  []string
	metricName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "galaxysim",
		Short:        "disk galaxy particle simulator",
		SilenceUsage: true,
		RunE:         runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".galaxysim", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed, 0 picks one from the clock")
	pf.IntVar(&particles, "particles", config.DefaultParticles, "number of particles")
	pf.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	pf.IntVar(&workers, "workers", config.DefaultWorkers, "goroutines per integration step")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the OpenGL window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "record the series every n steps")
	runCmd.Flags().BoolVar(&validate, "validate", true, "stop on NaN or Inf")
	runCmd.Flags().IntVar(&runs, "runs", 1, "run an ensemble over consecutive seeds")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep per frame")
	liveCmd.Flags().Float64Var(&extent, "extent", config.DefaultRadius*1.25, "world half-width shown")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot mean radius and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json, svg or png",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json, svg, png or series")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (stdout for json and svg when empty)")
	exportCmd.Flags().IntVar(&imageSize, "size", 1024, "image edge in pixels")
	exportCmd.Flags().Float64Var(&extent, "extent", config.DefaultRadius*1.25, "world half-width shown")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render a generated disk to png or svg without a window",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	snapshotCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	snapshotCmd.Flags().IntVar(&steps, "steps", 0, "steps to take before rendering")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "galaxy.png", "output file, .png or .svg")
	snapshotCmd.Flags().IntVar(&imageSize, "size", 1024, "image edge in pixels")
	snapshotCmd.Flags().Float64Var(&extent, "extent", config.DefaultRadius*1.25, "world half-width shown")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure steps per second across particle counts and workers",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 200, "steps per measurement")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same disk",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	compareCmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the mean radius",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter over a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "eps2", "parameter ("+strings.Join(config.Params(), ", ")+")")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0.01, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 0.2, "last value")
	sweepCmd.Flags().IntVar(&paramSteps, "n", 5, "number of values")
	sweepCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	sweepCmd.Flags().IntVar(&steps, "steps", 500, "steps per run")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search parameters minimizing a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")
	tuneCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	tuneCmd.Flags().IntVar(&steps, "steps", 500, "steps per run")

	rootCmd.AddCommand(guiCmd, runCmd, liveCmd, listCmd, plotCmd, exportCmd, snapshotCmd, presetsCmd, benchCmd, compareCmd, analyzeCmd, scenarioCmd, sweepCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*log.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return logging.New("galaxysim", level), nil
}

// loadConfig layers the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runGUI(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := gui.Run(cfg, logger); err != nil {
		logger.Error("window closed with error", "err", err)
		return err
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	simCfg := sim.Config{Dt: dt, Steps: steps, SampleEvery: sampleEvery, ValidateState: validate}

	ctx, cancel := signalContext()
	defer cancel()

	if runs > 1 {
		return runEnsemble(ctx, exp, simCfg, logger)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %d particles with %s...\n", cfg.Particles, cfg.Integrator)
	start := time.Now()

	result, runErr := exp.Run(ctx, simCfg)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)
	if runErr != nil {
		logger.Warn("run stopped early", "err", runErr, "steps", result.StepsTaken)
	}

	runID, err := st.Save(storage.RunMetadata{
		Seed:       exp.Seed(),
		Integrator: cfg.Integrator,
		Dt:         dt,
		Config:     cfg,
	}, result, exp.Simulator().Particles())
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", runID, "dir", st.Dir(runID))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("seed: %d\n", exp.Seed())
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printMetrics(result.Metrics)

	return runErr
}

func runEnsemble(ctx context.Context, exp *experiment.Experiment, simCfg sim.Config, logger *log.Logger) error {
	logger.Info("running ensemble", "runs", runs, "first_seed", exp.Seed())
	start := time.Now()

	results, err := exp.Ensemble(ctx, runs, simCfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tMEAN_R\tENERGY\tDRIFT\tLZ")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.2e\t%.4f\n",
			exp.Seed()+int64(i),
			r.StepsTaken,
			r.Metrics["mean_radius"],
			r.Metrics["energy"],
			r.Metrics["energy_drift"],
			r.Metrics["angular_momentum"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted %d runs in %v\n", len(results), time.Since(start))
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range []string{"mean_radius", "radius_spread", "energy", "energy_drift", "angular_momentum"} {
		if v, ok := m[name]; ok {
			fmt.Printf("  %s: %.6f\n", name, v)
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, logging.Nop())
	if err != nil {
		return err
	}
	particles, err := exp.Generate()
	if err != nil {
		return err
	}
	integ, err := cfg.BuildIntegrator()
	if err != nil {
		return err
	}

	s := sim.New(particles, integ)
	s.SetMaxDt(cfg.MaxDt)

	title := fmt.Sprintf("galaxy %d particles, %s, seed %d", cfg.Particles, cfg.Integrator, exp.Seed())
	m := viz.NewModel(s, exp.Generate, exp.Field(), dt, extent, title)

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPARTICLES\tSTEPS\tDT\tINTEG\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Seed,
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

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d, integrator: %s\n", meta.Particles, meta.Integrator)
	fmt.Printf("samples: %d (t=%.2f..%.2f)\n\n", len(series.Times), series.Times[0], series.Times[len(series.Times)-1])

	for _, s := range []struct {
		caption string
		data    []float64
	}{
		{"mean planar radius", series.MeanRadius},
		{"total energy", series.Energy},
	} {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		out, closeOut, err := openOut(outFile)
		if err != nil {
			return err
		}
		defer closeOut()
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*storage.RunMetadata
			Times      []float64 `json:"times"`
			MeanRadius []float64 `json:"mean_radius"`
			Energy     []float64 `json:"energy"`
		}{meta, series.Times, series.MeanRadius, series.Energy})

	case "series":
		series, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		return writeText(outFile, export.SeriesToSVG(series.Times, series.MeanRadius, 800, 300, "#ffcc33"))

	case "svg", "png":
		p, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		bg := config.DefaultConfig().BackgroundColor()
		if meta.Config != nil {
			bg = meta.Config.BackgroundColor()
		}
		if format == "svg" {
			return writeText(outFile, export.ParticlesToSVG(p, imageSize, extent, bg))
		}
		if outFile == "" {
			outFile = runID + ".png"
		}
		return writeImage(outFile, p, bg)

	default:
		return fmt.Errorf("unknown format: %s (json, svg, png or series)", format)
	}
}

func snapshot(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := exp.Setup(); err != nil {
		return err
	}

	if steps > 0 {
		ctx, cancel := signalContext()
		defer cancel()
		if _, err := exp.Run(ctx, sim.Config{Dt: dt, Steps: steps, SampleEvery: steps, ValidateState: true}); err != nil {
			return err
		}
	}

	p := exp.Simulator().Particles()
	bg := cfg.BackgroundColor()
	switch strings.ToLower(filepath.Ext(outFile)) {
	case ".svg":
		err = writeText(outFile, export.ParticlesToSVG(p, imageSize, extent, bg))
	case ".png":
		err = writeImage(outFile, p, bg)
	default:
		return fmt.Errorf("unsupported output extension: %s", outFile)
	}
	if err != nil {
		return err
	}
	logger.Info("snapshot written", "path", outFile, "particles", len(p), "seed", exp.Seed(), "t", exp.Simulator().Time())
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	counts := []int{1000, 10000, 50000}
	workerCounts := []int{1, 2, 4, 8}

	fmt.Printf("benchmarking %s, %d steps\n\n", cfg.Integrator, steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tWORKERS\tTIME\tSTEPS/SEC\tPARTICLE-STEPS/SEC")

	for _, n := range counts {
		for _, wk := range workerCounts {
			bc := cfg.Clone()
			bc.Particles = n
			bc.Workers = wk
			bc.Seed = 42

			exp, err := experiment.New(bc, logging.Nop())
			if err != nil {
				return err
			}
			particles, err := exp.Generate()
			if err != nil {
				return err
			}
			integ, err := bc.BuildIntegrator()
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < steps; i++ {
				if err := integ.Step(particles, float32(bc.MaxDt)); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n",
				n, wk, elapsed.Round(time.Microsecond), stepsPerSec, stepsPerSec*float64(n))
		}
	}

	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = cfg.ResolveSeed()
	}

	fmt.Printf("comparing integrators (dt=%.4f, steps=%d, particles=%d, seed=%d)\n\n", dt, steps, cfg.Particles, cfg.Seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tMEAN_R\tENERGY_DRIFT\tLZ\tTIME_MS")

	for _, name := range args {
		cc := cfg.Clone()
		cc.Integrator = name

		exp, err := experiment.New(cc, logging.Nop())
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		if err := exp.Setup(); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background(), sim.Config{Dt: dt, Steps: steps, SampleEvery: steps})
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		fmt.Fprintf(w, "%s\t%.6f\t%.2e\t%.4f\t%.2f\n",
			name,
			result.Metrics["mean_radius"],
			result.Metrics["energy_drift"],
			metrics.AngularMomentumZ(exp.Simulator().Particles()),
			float64(elapsed.Microseconds())/1000,
		)
	}

	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	peaks, err := analysis.Spectrum(series.Times, series.MeanRadius)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("particles: %d, integrator: %s\n\n", meta.Particles, meta.Integrator)

	plotData := make([]float64, 0, len(peaks))
	for _, p := range peaks[1:] {
		plotData = append(plotData, p.Power)
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (mean radius)"),
	)
	fmt.Println(graph)
	fmt.Println()

	peak, err := analysis.Dominant(series.Times, series.MeanRadius)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.4f\n", peak.Frequency)
	if peak.Frequency > 0 {
		fmt.Printf("period: %.4f\n", peak.Period())
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	fmt.Println()

	results, runErr := automation.RunScenario(ctx, sc, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSEED\tSTEPS\tMEAN_R\tDRIFT\tRUN")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%.2e\t%s\n",
			r.Name, r.Seed, r.Result.StepsTaken,
			r.Result.Metrics["mean_radius"], r.Result.Metrics["energy_drift"], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  paramSteps,
		Dt:        dt,
		Steps:     steps,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN_R\tSPREAD\tDRIFT\tLZ\n", strings.ToUpper(paramName))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.2e\t%.4f\n",
			r.ParamValue, r.MeanRadius, r.RadiusSpread, r.EnergyDrift, r.AngularMomentum)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return fmt.Errorf("at least one --grid name=v1,v2 is required")
	}
	if cfg.Seed == 0 {
		cfg.Seed = cfg.ResolveSeed()
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	for _, spec := range gridSpecs {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, cancel := signalContext()
	defer cancel()

	g := optim.NewGridSearch(names, ranges)
	fmt.Printf("searching %d combinations for the lowest %s...\n", g.Combinations(), metricName)

	best, val, err := g.Search(ctx, optim.ConfigBuilder(cfg), sim.Config{Dt: dt, Steps: steps, SampleEvery: steps}, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6g\n", metricName, val)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func parseGrid(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad grid %q, want name=v1,v2", spec)
	}
	parts := strings.Split(list, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("grid %s: %w", name, err)
		}
		values[i] = v
	}
	return name, values, nil
}

func openOut(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeText(path, s string) error {
	out, closeOut, err := openOut(path)
	if err != nil {
		return err
	}
	defer closeOut()
	_, err = fmt.Fprint(out, s)
	return err
}

func writeImage(path string, p dynamo.Particles, bg colorful.Color) error {
	opts := export.DefaultImageOptions()
	opts.Size = imageSize
	opts.Extent = extent
	opts.Background = bg
	img, err := export.ParticlesToImage(p, opts)
	if err != nil {
		return err
	}
	return export.WritePNG(path, img)
}
