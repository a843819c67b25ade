package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/san-kum/cylheat/internal/analysis"
	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/export"
	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/metrics"
	"github.com/san-kum/cylheat/internal/storage"
	"github.com/san-kum/cylheat/internal/viz"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	// run flags
	configFile  string
	preset      string
	dt          float64
	steps       int
	nr          int
	nz          int
	tol         float64
	label       string
	noSave      bool
	noReport    bool
	svgPath     string
	surfacePath string
	pngPath     string
	interactive bool
	theme       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cylheat",
		Short: "explicit 4th-order heat conduction on a hollow cylinder",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cylheat", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve and render the temperature field",
		Args:  cobra.NoArgs,
		RunE:  runSolver,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step (s)")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "step budget")
	runCmd.Flags().IntVar(&nr, "nr", config.DefaultPoints, "radial points")
	runCmd.Flags().IntVar(&nz, "nz", config.DefaultPoints, "axial points")
	runCmd.Flags().Float64Var(&tol, "tol", config.DefaultTolerance, "convergence tolerance")
	runCmd.Flags().StringVar(&label, "label", "run", "run label used in the run id")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&noReport, "quiet", false, "print only the outcome line")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final field heatmap as SVG")
	runCmd.Flags().StringVar(&surfacePath, "surface-svg", "", "write the final 3D surface as SVG")
	runCmd.Flags().StringVar(&pngPath, "png", "", "write the convergence history chart as PNG")
	runCmd.Flags().BoolVar(&interactive, "interactive", false, "open the snapshot viewer")
	runCmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, "color theme")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-10s %dx%d  dt=%g  steps=%d\n",
					name, cfg.Geometry.Nr, cfg.Geometry.Nz, cfg.Time.Dt, cfg.Time.Steps)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, presetsCmd)
	rootCmd.AddCommand(runCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
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
		cfg.Time.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Time.Steps = steps
	}
	if flags.Changed("nr") {
		cfg.Geometry.Nr = nr
	}
	if flags.Changed("nz") {
		cfg.Geometry.Nz = nz
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tol
	}
	return cfg, nil
}

func runSolver(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	params := cfg.Params()
	solver, err := heat.New(params)
	if err != nil {
		return err
	}
	for _, m := range metrics.Default(params.Boundary) {
		solver.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := solver.Run(ctx)
	if runErr != nil {
		if result == nil {
			return runErr
		}
		log.WithError(runErr).Warn("run stopped early")
	}

	fmt.Println(viz.Summary(result))
	printConvergence(result, params)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(label, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if err := writeArtifacts(result); err != nil {
		return err
	}

	if interactive {
		return viz.RunViewer(result)
	}
	if !noReport {
		fmt.Println(viz.Report(result, viz.DefaultReportOptions()))
		if len(result.Metrics) > 0 {
			fmt.Println("metrics:")
			for _, name := range sortedKeys(result.Metrics) {
				fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
			}
		}
	}
	return runErr
}

func writeArtifacts(result *heat.Result) error {
	if svgPath != "" {
		svg := export.FieldSVG(result.Final, result.Mesh, 16, viz.Summary(result))
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if surfacePath != "" {
		canvas := viz.SurfaceCanvas(result.Final, result.Mesh, nil, 80, 30)
		if err := os.WriteFile(surfacePath, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", surfacePath)
	}
	if pngPath != "" {
		f, err := os.Create(pngPath)
		if err != nil {
			return err
		}
		if err := export.HistoryPNG(f, result.History, 800, 480); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pngPath)
	}
	return nil
}

// printConvergence reports the fitted decay rate of an unconverged run and
// where it would cross the tolerance.
func printConvergence(result *heat.Result, p heat.Params) {
	dr, dz := analysis.DiffusionNumbers(p)
	log.WithFields(log.Fields{"radial": dr, "axial": dz}).Info("diffusion numbers")
	if result.Converged {
		return
	}
	fit, err := analysis.FitConvergence(result.History, 100)
	if err != nil {
		log.WithError(err).Debug("no convergence fit")
		return
	}
	fmt.Printf("decay: x%.6f per step (R² %.3f)", fit.Ratio(), fit.RSquared)
	if step, ok := fit.StepsToTolerance(p.Tolerance); ok {
		fmt.Printf(", tolerance reached near step %d", step)
	}
	fmt.Println()
}
