package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/deltasim/internal/analysis"
	"github.com/san-kum/deltasim/internal/automation"
	"github.com/san-kum/deltasim/internal/config"
	"github.com/san-kum/deltasim/internal/experiment"
	"github.com/san-kum/deltasim/internal/export"
	"github.com/san-kum/deltasim/internal/network"
	"github.com/san-kum/deltasim/internal/optim"
	"github.com/san-kum/deltasim/internal/storage"
	"github.com/san-kum/deltasim/internal/viz"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	dataDir string
	verbose bool

	preset      string
	configFile  string
	seed        int64
	ticks       int
	workers     int
	branchModel string
	width       float64
	seaX        float64
	maxChannels int

	metricNames string
	noSave      bool
	jsonOut     string

	svgOut    string
	svgWidth  int
	svgHeight int

	trials      int
	trialTicks  int
	trialSeed   int64
	trialJobs   int
	trialModel  string
	probability float64

	showPreset bool

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	searchGrid []string
	searchFor  string
	maximize   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deltasim",
		Short: "meandering river and delta growth simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.Name() == "live")
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".deltasim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save a summary",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&metricNames, "metrics", "all", "comma separated metrics to record")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write final channel geometry to this file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with the live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "simulate and write the final planform as SVG",
		Args:  cobra.NoArgs,
		RunE:  runSVG,
	}
	addSimFlags(svgCmd)
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "delta.svg", "output file")
	svgCmd.Flags().IntVar(&svgWidth, "px-width", 1200, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "px-height", 600, "image height")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}
	presetsCmd.Flags().BoolVar(&showPreset, "show", false, "print the named preset as yaml")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "measure branching frequency over many seeded trials",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&trials, "trials", 500, "number of trials")
	ensembleCmd.Flags().IntVar(&trialTicks, "ticks", 5, "ticks per trial")
	ensembleCmd.Flags().Int64Var(&trialSeed, "seed", 1, "first trial seed")
	ensembleCmd.Flags().IntVar(&trialJobs, "workers", 0, "concurrent trials (0 = all cores)")
	ensembleCmd.Flags().StringVar(&trialModel, "model", config.ModelWeighted, "branch model: weighted or fixed")
	ensembleCmd.Flags().Float64Var(&probability, "probability", 0.01, "probability for the fixed model")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of several runs and save each",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and tabulate final metrics",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "channel.migration_coefficient", "parameter path")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.5, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters for the best final metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addSimFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchGrid, "grid", nil, "param=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&searchFor, "metric", "mean_sinuosity", "metric to optimise")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "maximise instead of minimise")

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list tunable parameter paths",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ParamNames() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, svgCmd, listCmd, plotCmd, exportCmd, presetsCmd, ensembleCmd,
		scenarioCmd, sweepCmd, searchCmd, paramsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(quiet bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if quiet && !verbose {
		h = slog.NewTextHandler(io.Discard, nil)
	}
	slog.SetDefault(slog.New(h))
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&preset, "preset", "p", "delta", "preset name")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "yaml config file (overrides preset)")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().IntVar(&workers, "workers", 1, "goroutines advancing channels")
	cmd.Flags().StringVar(&branchModel, "model", config.ModelWeighted, "branch model: weighted or fixed")
	cmd.Flags().Float64Var(&width, "width", 0, "root channel width")
	cmd.Flags().Float64Var(&seaX, "sea-x", 0, "sea boundary x")
	cmd.Flags().IntVar(&maxChannels, "max-channels", 0, "channel cap")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("workers") {
		cfg.Run.Workers = workers
	}
	if flags.Changed("model") {
		cfg.Branching.Model = branchModel
	}
	if flags.Changed("width") {
		cfg.Channel.Width = width
	}
	if flags.Changed("sea-x") {
		cfg.Run.SeaX = seaX
	}
	if flags.Changed("max-channels") {
		cfg.Run.MaxChannels = maxChannels
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func selectMetrics(names string) ([]experiment.Metric, error) {
	registry := experiment.NewRegistry()
	if names == "" || names == "all" {
		return registry.Metrics(), nil
	}
	var out []experiment.Metric
	for _, name := range strings.Split(names, ",") {
		m, err := registry.GetMetric(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, registry.ListMetrics())
		}
		out = append(out, m)
	}
	return out, nil
}

func simulate(cmd *cobra.Command, cfg *config.Config, metrics []experiment.Metric) (*experiment.Result, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics {
		exp.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	slog.Debug("starting run", "name", cfg.Name, "seed", cfg.Seed, "ticks", cfg.Ticks, "model", cfg.Branching.Model)
	result, err := exp.Run(ctx, cfg.Ticks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}
	if err != nil {
		slog.Warn("interrupted", "ticks", len(result.Reports))
	}
	return result, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	metrics, err := selectMetrics(metricNames)
	if err != nil {
		return err
	}

	result, err := simulate(cmd, cfg, metrics)
	if err != nil {
		return err
	}

	fmt.Printf("ticks: %d\n", len(result.Reports))
	fmt.Printf("channels: %d live / %d total\n", result.Final.Live(), len(result.Final.Channels))
	fmt.Printf("oxbow lakes: %d\n", result.Final.OxbowCount())
	if result.Exhausted {
		fmt.Println("stopped early: no live channels")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMETRIC\tVALUE")
	for _, m := range metrics {
		fmt.Fprintf(w, "%s\t%.4f\n", m.Name(), result.Metrics[m.Name()])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if jsonOut != "" {
		data := export.NewExportData(cfg.Name, cfg.Seed, len(result.Reports), result.Final, result.Metrics)
		if err := export.ExportJSON(jsonOut, data); err != nil {
			return err
		}
		fmt.Printf("\ngeometry: %s\n", jsonOut)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	return viz.Run(exp)
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	result, err := simulate(cmd, cfg, nil)
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.Width, opts.Height = svgWidth, svgHeight
	opts.SeaX, opts.ShowSea = cfg.Run.SeaX, true

	if err := os.WriteFile(svgOut, []byte(export.NetworkToSVG(result.Final, opts)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d channels, %d oxbows)\n", svgOut, len(result.Final.Channels), result.Final.OxbowCount())
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSEED\tTICKS\tMODEL\tLIVE\tTOTAL\tOXBOWS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Ticks,
			run.Model,
			run.Live,
			run.Channels,
			run.Oxbows,
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
	if len(series) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s  seed: %d\n", meta.Name, meta.Seed)
	fmt.Printf("samples: %d\n\n", len(series))

	column := func(get func(experiment.Sample) float64) []float64 {
		data := make([]float64, len(series))
		for i, s := range series {
			data[i] = get(s)
		}
		return data
	}
	plot := func(caption string, data []float64) {
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption(caption)))
		fmt.Println()
	}

	plot("live channels", column(func(s experiment.Sample) float64 { return float64(s.Live) }))
	plot("oxbow lakes", column(func(s experiment.Sample) float64 { return float64(s.Oxbows) }))

	for _, name := range []string{"mean_sinuosity", "mean_width", "delta_front"} {
		if _, ok := series[0].Metrics[name]; !ok {
			continue
		}
		plot(strings.ReplaceAll(name, "_", " "), column(func(s experiment.Sample) float64 { return s.Metrics[name] }))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, meta)
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		if showPreset {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		fmt.Printf("%s: %d ticks, seed %d, %s branching, onset x=%.0f, cap %d\n",
			cfg.Name, cfg.Ticks, cfg.Seed, cfg.Branching.Model, cfg.Run.DeltaOnsetX, cfg.Run.MaxChannels)
		return nil
	}

	fmt.Println("available presets:")
	for _, name := range config.ListPresets() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg := analysis.DefaultFrequencyConfig()
	cfg.Trials = trials
	cfg.Ticks = trialTicks
	cfg.SeedStart = trialSeed
	cfg.Workers = trialJobs

	switch trialModel {
	case config.ModelWeighted:
		cfg.Model = network.DefaultWeightedBranching()
	case config.ModelFixed:
		cfg.Model = network.FixedBranching{P: probability}
	default:
		return fmt.Errorf("unknown branch model: %s", trialModel)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := analysis.BranchFrequency(ctx, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model.Name())
	fmt.Fprintf(w, "trials\t%d\n", res.Trials)
	fmt.Fprintf(w, "draws\t%d\n", res.Evaluations)
	fmt.Fprintf(w, "branches\t%d\n", res.Branches)
	fmt.Fprintf(w, "observed\t%.5f\n", res.Observed)
	fmt.Fprintf(w, "expected\t%.5f\n", res.Expected)
	fmt.Fprintf(w, "std err\t%.5f\n", res.StdErr)
	fmt.Fprintf(w, "z\t%.2f\n", res.ZScore())
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSEED\tTICKS\tLIVE\tTOTAL\tOXBOWS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
			r.RunID, r.Config.Seed, len(r.Result.Reports),
			r.Result.Final.Live(), len(r.Result.Final.Channels), r.Result.Final.OxbowCount())
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, registry)
	if err != nil {
		return err
	}

	names := registry.ListMetrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, strings.ToUpper(sweepParam))
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g", r.ParamValue)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func parseGrid(grids []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(grids))
	ranges := make([][]float64, 0, len(grids))
	for _, entry := range grids {
		name, list, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, nil, fmt.Errorf("grid %q: expected param=v1,v2", entry)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", entry, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(searchGrid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	names, ranges, err := parseGrid(searchGrid)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	if _, err := registry.GetMetric(searchFor); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	best, all, err := g.Search(ctx, cfg, func() experiment.Metric {
		m, _ := registry.GetMetric(searchFor)
		return m
	})
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d grid points\n", len(all))
	fmt.Printf("best %s: %.4f\n", searchFor, best.Value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	return nil
}
