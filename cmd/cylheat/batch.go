package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/san-kum/cylheat/internal/automation"
	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/optim"
	"github.com/san-kum/cylheat/internal/server"
	"github.com/san-kum/cylheat/internal/storage"
	"github.com/san-kum/cylheat/internal/viz"
	"github.com/spf13/cobra"
)

var (
	sweepPreset string
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepN      int

	mcPreset  string
	mcPerturb float64
	mcTrials  int
	mcSeed    int64

	searchPreset    string
	searchParams    []string
	searchObjective string
	searchWorkers   int

	serveAddr string
)

// batchCommands run more than one solve or serve sessions.
func batchCommands() []*cobra.Command {
	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter over a linear range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepPreset, "preset", "default", "base preset")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.01, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.1, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the boundary temperatures and check the envelope",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().StringVar(&mcPreset, "preset", "coarse", "base preset")
	mcCmd.Flags().Float64Var(&mcPerturb, "perturb", 5, "max perturbation per boundary value (°C)")
	mcCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	mcCmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 = time based)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters against an objective",
		Long: `Grid search solves every combination of the given parameter values.
Each --param takes name=v1,v2,... and the objective is last_change,
converged_step or a metric name; lower is better.`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}
	searchCmd.Flags().StringVar(&searchPreset, "preset", "coarse", "base preset")
	searchCmd.Flags().StringArrayVar(&searchParams, "param", nil, "name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&searchObjective, "objective", "last_change", "objective to minimize")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve solver sessions over websocket at /ws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if err := st.Init(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.NewServer(serveAddr, server.DefaultUpgrader(), st).Serve(ctx)
		},
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9000", "listen address")

	return []*cobra.Command{scenarioCmd, sweepCmd, mcCmd, searchCmd, serveCmd}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("scenario %s: %s\n", scenario.Name, scenario.Description)
	outcomes, err := automation.RunScenario(ctx, scenario, st)
	for _, o := range outcomes {
		line := fmt.Sprintf("  [%d] %s", o.Step, viz.Summary(o.Result))
		if o.RunID != "" {
			line += " -> " + o.RunID
		}
		fmt.Println(line)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.ParameterSweep{
		Preset:    sweepPreset,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunSweep(ctx, sweep)
	if err != nil && len(results) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCONVERGED\tSTEPS\tLAST CHANGE\tMEAN T\tMAX T\n", sweepParam)
	for _, r := range results {
		converged := "no"
		if r.Converged {
			converged = fmt.Sprintf("step %d", r.ConvergedStep)
		}
		fmt.Fprintf(w, "%g\t%s\t%d\t%.3g\t%.3f\t%.3f\n",
			r.ParamValue, converged, r.StepsTaken, r.LastChange, r.MeanTemp, r.MaxTemp)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Preset:       mcPreset,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
	})
	if err != nil {
		return err
	}

	bounded, unbounded := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  bounded: %d  left envelope: %d\n", len(results), bounded, unbounded)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(searchParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, arg := range searchParams {
		name, values, err := parseParamRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	base := config.GetPreset(searchPreset)
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", searchPreset, config.ListPresets())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	best, evals, err := optim.NewGridSearch(names, ranges).
		Search(ctx, base, optim.NamedObjective(searchObjective), searchWorkers)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), searchObjective)
	for _, e := range evals {
		cells := make([]string, 0, len(names)+1)
		for _, n := range names {
			cells = append(cells, strconv.FormatFloat(e.Params[n], 'g', -1, 64))
		}
		if e.Err != nil {
			cells = append(cells, "error: "+e.Err.Error())
		} else {
			cells = append(cells, strconv.FormatFloat(e.Value, 'g', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	fmt.Printf("best: %v -> %g\n", best.Params, best.Value)
	return nil
}

// parseParamRange splits "name=v1,v2,..." into its parts.
func parseParamRange(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --param %q: want name=v1,v2,...", arg)
	}
	parts := strings.Split(list, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --param %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
