package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/config"
	"github.com/san-kum/trajgen/internal/export"
	"github.com/san-kum/trajgen/internal/fitter"
	"github.com/san-kum/trajgen/internal/generator"
	"github.com/san-kum/trajgen/internal/metrics"
	"github.com/san-kum/trajgen/internal/sim"
	"github.com/san-kum/trajgen/internal/storage"
	"github.com/san-kum/trajgen/internal/tui"
	"github.com/san-kum/trajgen/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	nTraj      int
	trajNoise  float64
	stateNoise float64
	radius     float64
	margin     float64
	seed       int64
	workers    int
	onFailure  string
	configFile string
	preset     string
	live       bool
	outFile    string
	ascii      bool
	trajIndex  int
	maxSteps   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trajgen",
		Short: "synthetic 2D expert trajectory generator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trajgen", "data directory")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "generate an expert trajectory batch",
		RunE:  runGenerate,
	}
	generateCmd.Flags().Float64Var(&dt, "dt", config.DefaultTimeStep, "timestep")
	generateCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	generateCmd.Flags().IntVar(&nTraj, "trajectories", config.DefaultTrajectories, "number of trajectories")
	generateCmd.Flags().Float64Var(&trajNoise, "traj-noise", config.DefaultTrajNoise, "waypoint noise scale")
	generateCmd.Flags().Float64Var(&stateNoise, "state-noise", config.DefaultStateNoise, "measurement noise scale")
	generateCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "loop template radius")
	generateCmd.Flags().Float64Var(&margin, "margin", config.DefaultMargin, "obstacle margin")
	generateCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	generateCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel fit workers")
	generateCmd.Flags().StringVar(&onFailure, "on-failure", config.OnFailureAbort, "failed fit policy (abort|skip)")
	generateCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	generateCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	generateCmd.Flags().BoolVar(&live, "live", false, "live progress view")

	rolloutCmd := &cobra.Command{
		Use:   "rollout [run_id]",
		Short: "replay stored inputs through the noisy simulator",
		Args:  cobra.ExactArgs(1),
		RunE:  runRollout,
	}
	rolloutCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rolloutCmd.Flags().IntVar(&maxSteps, "steps", 0, "limit rollout steps (0 = all)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot trajectories and obstacles",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVar(&outFile, "out", "", "output image (default <run_id>.png)")
	plotCmd.Flags().BoolVar(&ascii, "ascii", false, "terminal plot instead of image")
	plotCmd.Flags().IntVar(&trajIndex, "index", 0, "trajectory index for --ascii")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list generation runs",
		RunE:  runList,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDT\tDURATION\tTRAJ\tNOISE\tWORKERS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.3f\t%.1f\t%d\t%.2f\t%d\n",
					name, p.TimeStep, p.Duration, p.NTrajectories, p.TrajectoryNoise, p.Workers)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(generateCmd, rolloutCmd, plotCmd, listCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig resolves precedence: flags > config file > preset > defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.TimeStep = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("trajectories") {
		cfg.NTrajectories = nTraj
	}
	if flags.Changed("traj-noise") {
		cfg.TrajectoryNoise = trajNoise
	}
	if flags.Changed("state-noise") {
		cfg.StateNoise = stateNoise
	}
	if flags.Changed("radius") {
		cfg.TrajectoryRadius = radius
	}
	if flags.Changed("margin") {
		cfg.TrajectoryMargin = margin
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("on-failure") {
		cfg.OnFailure = onFailure
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	gen := generator.New(cfg, fitter.NewDefault(), cfg.Seed)

	if live {
		return generateLive(cfg, gen, st)
	}

	start := time.Now()
	batch, err := gen.Generate(context.Background())
	if err != nil {
		return err
	}

	mets := metrics.BatchMeans(batch,
		metrics.NewControlEffort(), metrics.NewPathLength(), metrics.NewLoopClosure())

	runID, err := st.Save(cfg, batch, mets)
	if err != nil {
		return err
	}

	fmt.Printf("saved %s (%v)\n\n", runID, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "trajectories\t%d\n", batch.Len())
	fmt.Fprintf(w, "steps\t%d\n", batch.Steps())
	fmt.Fprintf(w, "failed\t%d\n", len(batch.Errors))
	for name, v := range mets {
		fmt.Fprintf(w, "%s\t%.4f\n", name, v)
	}
	return w.Flush()
}

func generateLive(cfg *config.Config, gen *generator.Generator, st *storage.Store) error {
	model := tui.NewModel(cfg.NTrajectories)
	p := tea.NewProgram(model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen.SetProgress(func(done, total int, effort float64, err error) {
		p.Send(tui.TrajectoryMsg{Done: done, Total: total, Effort: effort, Err: err})
	})

	type outcome struct {
		runID string
		err   error
	}
	result := make(chan outcome, 1)

	go func() {
		batch, err := gen.Generate(ctx)
		if err != nil {
			result <- outcome{err: err}
			p.Send(tui.DoneMsg{Err: err})
			return
		}
		mets := metrics.BatchMeans(batch,
			metrics.NewControlEffort(), metrics.NewPathLength(), metrics.NewLoopClosure())
		runID, err := st.Save(cfg, batch, mets)
		result <- outcome{runID: runID, err: err}
		p.Send(tui.DoneMsg{RunID: runID, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	if model.Aborted() {
		cancel()
		<-result
		return fmt.Errorf("generation aborted")
	}

	out := <-result
	if out.err != nil {
		return out.err
	}
	fmt.Printf("saved %s\n", out.runID)
	return nil
}

func runRollout(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	inputs, err := st.LoadInputs(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("run %s has no trajectories", runID)
	}

	n := len(states)
	steps := meta.Steps - 1
	if maxSteps > 0 && maxSteps < steps {
		steps = maxSteps
	}

	// batch initial states and per-step input batches
	x0 := mat.NewDense(n, 4, nil)
	for i, s := range states {
		x0.SetRow(i, mat.Row(nil, 0, s))
	}
	us := make([]*mat.Dense, steps)
	for k := 0; k < steps; k++ {
		u := mat.NewDense(n, 2, nil)
		for i, in := range inputs {
			u.SetRow(i, mat.Row(nil, k, in))
		}
		us[k] = u
	}

	simulator := sim.New(&meta.Config, seed)
	rolled, err := simulator.Rollout(context.Background(), x0, us)
	if err != nil {
		return err
	}

	final := rolled[len(rolled)-1]
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRAJ\tFINAL DEVIATION")
	total := 0.0
	for i := 0; i < n; i++ {
		dev := 0.0
		for j := 0; j < 4; j++ {
			d := final.At(i, j) - states[i].At(steps, j)
			dev += d * d
		}
		dev = math.Sqrt(dev)
		total += dev
		fmt.Fprintf(w, "%d\t%.4f\n", i, dev)
	}
	fmt.Fprintf(w, "mean\t%.4f\n", total/float64(n))
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if ascii {
		if trajIndex < 0 || trajIndex >= len(states) {
			return fmt.Errorf("trajectory index %d out of range [0, %d)", trajIndex, len(states))
		}
		s := states[trajIndex]
		rows, _ := s.Dims()
		labels := []string{"x position", "y position", "x velocity", "y velocity"}
		for j, label := range labels {
			data := make([]float64, rows)
			for k := 0; k < rows; k++ {
				data[k] = s.At(k, j)
			}
			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(label),
			)
			fmt.Println(graph)
			fmt.Println()
		}
		return nil
	}

	out := outFile
	if out == "" {
		out = runID + ".png"
	}
	if err := viz.Scene(out, states, meta.Config.TrajectoryRadius, meta.Config.TrajectoryMargin); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
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
	fmt.Fprintln(w, "ID\tTIME\tTRAJ\tSTEPS\tFAILED\tDT\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.3fs\t%.1fs\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NTrajectories,
			run.Steps,
			run.Failed,
			run.Config.TimeStep,
			run.Config.Duration,
		)
	}
	return w.Flush()
}

func runExportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	inputs, err := st.LoadInputs(runID)
	if err != nil {
		return err
	}
	waypoints, err := st.LoadWaypoints(runID)
	if err != nil {
		return err
	}

	times := make([]float64, meta.Steps)
	for i := range times {
		times[i] = float64(i) * meta.Config.TimeStep
	}

	if outFile != "" {
		return export.WriteJSONFile(outFile, meta, times, states, inputs, waypoints)
	}
	return export.WriteJSON(os.Stdout, meta, times, states, inputs, waypoints)
}
