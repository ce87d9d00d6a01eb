package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/integrators"
	"github.com/san-kum/netdyn/internal/metrics"
	"github.com/san-kum/netdyn/internal/models"
	"github.com/san-kum/netdyn/internal/network"
	"github.com/san-kum/netdyn/internal/operator"
	"github.com/san-kum/netdyn/internal/sim"
	"github.com/san-kum/netdyn/internal/store"
	"github.com/san-kum/netdyn/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	modelName  string
	topoName   string
	vertices   int
	integName  string
	dt         float64
	duration   float64
	coupling   float64
	workers    int
	seed       int64
	csvPath    string
	saveDir    string
	component  int
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:   "netdyn",
		Short: "dynamical systems on networks",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and plot a component trajectory",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&csvPath, "csv", "", "export trajectory to CSV file")
	runCmd.Flags().StringVar(&saveDir, "save", "", "save run metadata and trajectory under this directory")
	runCmd.Flags().IntVar(&component, "component", 0, "state component to plot")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a simulation in the terminal",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&component, "component", 0, "state component to plot")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print the structure of the configured network",
		RunE:  runInfo,
	}
	addRunFlags(infoCmd)

	rootCmd.AddCommand(runCmd, liveCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&modelName, "model", "diffusion", "model (diffusion, kuramoto)")
	cmd.Flags().StringVar(&topoName, "topology", "ring", "topology (ring, path, star)")
	cmd.Flags().IntVar(&vertices, "vertices", config.DefaultVertices, "number of vertices")
	cmd.Flags().StringVar(&integName, "integrator", "rk4", "integrator (rk4, implicit-euler)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "coupling strength")
	cmd.Flags().IntVar(&workers, "workers", 1, "worker goroutines for the network loops")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for initial conditions")
}

// resolveConfig merges the config file (if any) with CLI flags; flags
// set explicitly on the command line win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("model") || configFile == "" {
		cfg.Model = modelName
	}
	if cmd.Flags().Changed("topology") || configFile == "" {
		cfg.Topology = topoName
	}
	if cmd.Flags().Changed("vertices") || configFile == "" {
		cfg.Vertices = vertices
	}
	if cmd.Flags().Changed("integrator") || configFile == "" {
		cfg.Integrator = integName
	}
	if cmd.Flags().Changed("dt") || configFile == "" {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") || configFile == "" {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("coupling") || configFile == "" {
		cfg.Coupling = coupling
	}
	if cmd.Flags().Changed("workers") || configFile == "" {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildTopology(cfg *config.Config) network.Topology {
	switch cfg.Topology {
	case "path":
		return network.Path(cfg.Vertices)
	case "star":
		return network.Star(cfg.Vertices)
	default:
		return network.Ring(cfg.Vertices)
	}
}

func buildModel(cfg *config.Config) (*models.Model, error) {
	top := buildTopology(cfg)
	rng := rand.New(rand.NewSource(cfg.Seed))

	switch cfg.Model {
	case "kuramoto":
		omega := make([]float64, cfg.Vertices)
		theta := make([]float64, cfg.Vertices)
		for i := range omega {
			omega[i] = 1 + 0.2*rng.NormFloat64()
			theta[i] = rng.Float64() * 6.28318
		}
		return models.Kuramoto(top, cfg.Coupling, omega, theta)
	default:
		init := make([]float64, cfg.Vertices)
		for i := range init {
			init[i] = rng.NormFloat64()
		}
		return models.Diffusion(top, cfg.Coupling, init)
	}
}

func buildStepper(cfg *config.Config, m *models.Model, op *operator.Operator) sim.Stepper {
	if cfg.Integrator == "implicit-euler" {
		return integrators.NewImplicitEuler(op, operator.Identity(m.Structure.VertexDim()), m.Params)
	}
	return integrators.NewRK4()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	nw, op, err := m.Build(cfg.Workers)
	if err != nil {
		return err
	}
	stepper := buildStepper(cfg, m, op)

	log.Info().
		Str("model", cfg.Model).
		Str("topology", cfg.Topology).
		Int("vertices", cfg.Vertices).
		Str("integrator", cfg.Integrator).
		Float64("dt", cfg.Dt).
		Float64("duration", cfg.Duration).
		Msg("starting run")

	simulator := sim.New(nw, stepper)
	tracked := buildMetrics(cfg)
	for _, met := range tracked {
		simulator.AddObserver(met)
	}

	start := time.Now()
	res, err := simulator.Run(context.Background(), m.InitState, sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	if err != nil {
		return err
	}
	log.Info().
		Int("steps", res.StepsTaken).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")

	values := make(map[string]float64, len(tracked))
	for _, met := range tracked {
		values[met.Name()] = met.Value()
		log.Info().Str("metric", met.Name()).Float64("value", met.Value()).Msg("metric")
	}

	if component < 0 || component >= nw.Dim() {
		return fmt.Errorf("component %d out of range [0, %d)", component, nw.Dim())
	}
	graph := asciigraph.Plot(res.Component(component),
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s: component %d", cfg.Model, component)),
	)
	fmt.Println(graph)

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		if err := store.WriteCSV(f, res); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info().Str("path", csvPath).Msg("trajectory exported")
	}

	if saveDir != "" {
		st := store.New(saveDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, values, res)
		if err != nil {
			return err
		}
		log.Info().Str("run", runID).Str("dir", saveDir).Msg("run saved")
	}
	return nil
}

// buildMetrics picks the diagnostics that make sense for the model:
// diffusive dynamics conserve the state sum, phase models have a
// synchrony order parameter.
func buildMetrics(cfg *config.Config) []metrics.Metric {
	switch cfg.Model {
	case "diffusion":
		return []metrics.Metric{metrics.NewDrift()}
	case "kuramoto":
		return []metrics.Metric{metrics.NewOrderParameter()}
	default:
		return nil
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	nw, op, err := m.Build(cfg.Workers)
	if err != nil {
		return err
	}
	stepper := buildStepper(cfg, m, op)
	return viz.Run(nw, stepper, m.InitState, cfg.Dt, cfg.Model)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	m, err := buildModel(cfg)
	if err != nil {
		return err
	}
	st := m.Structure

	fmt.Printf("model:       %s\n", cfg.Model)
	fmt.Printf("topology:    %s\n", cfg.Topology)
	fmt.Printf("vertices:    %d (total dimension %d)\n", st.NumV, st.VertexDim())
	fmt.Printf("edges:       %d (total dimension %d)\n", st.NumE, st.EdgeDim())
	for i := 0; i < st.NumV; i++ {
		fmt.Printf("  vertex %-3d window [%d,%d)  in %d  out %d\n",
			i, st.VRanges[i].Start, st.VRanges[i].End, len(st.InEdges[i]), len(st.OutEdges[i]))
	}
	return nil
}
