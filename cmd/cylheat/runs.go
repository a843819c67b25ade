package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/san-kum/cylheat/internal/export"
	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/storage"
	"github.com/san-kum/cylheat/internal/viz"
	"github.com/spf13/cobra"
)

var (
	showInteractive bool
	plotSVGPath     string
)

// runCommands operate on stored runs.
func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "render the snapshots of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&showInteractive, "interactive", false, "open the snapshot viewer")

	tableCmd := &cobra.Command{
		Use:   "table [run_id]",
		Short: "print the error table of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := storage.New(dataDir).LoadHistory(args[0])
			if err != nil {
				return err
			}
			fmt.Println(viz.ErrorTable(history))
			return nil
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the convergence history of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := storage.New(dataDir).LoadHistory(args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return fmt.Errorf("no history to plot")
			}
			fmt.Println(viz.HistoryPlot(history, 70, 15))
			if plotSVGPath != "" {
				if err := writeHistorySVG(plotSVGPath, history); err != nil {
					return err
				}
				fmt.Printf("wrote %s\n", plotSVGPath)
			}
			return nil
		},
	}
	plotCmd.Flags().StringVar(&plotSVGPath, "svg", "", "also write the history as an SVG line plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the final field as r,z,T rows",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).Export(os.Stdout, args[0])
		},
	}

	return []*cobra.Command{listCmd, showCmd, tableCmd, plotCmd, exportCSVCmd, exportJSONCmd}
}

func writeHistorySVG(path string, history []heat.HistoryEntry) error {
	svg := export.HistorySVG(history, 800, 400, "#1f77b4")
	if svg == "" {
		return fmt.Errorf("need at least two history entries for an svg plot, have %d", len(history))
	}
	return os.WriteFile(path, []byte(svg), 0644)
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
	fmt.Fprintln(w, "ID\tTIME\tGRID\tDT\tSTEPS\tCONVERGED\tLAST CHANGE")

	for _, run := range runs {
		converged := "no"
		if run.Converged {
			converged = "step " + strconv.Itoa(run.ConvergedStep)
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%gs\t%d/%d\t%s\t%.3g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nr, run.Nz,
			run.Dt,
			run.StepsTaken, run.Steps,
			converged,
			run.LastChange,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, mesh, err := st.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	summary := viz.Summary(&heat.Result{
		History:       history,
		Converged:     meta.Converged,
		ConvergedStep: meta.ConvergedStep,
		StepsTaken:    meta.StepsTaken,
	})
	if showInteractive {
		return viz.RunViewerFrom(snaps, mesh, history, summary)
	}

	fmt.Println(summary)
	opts := viz.DefaultReportOptions()
	for _, s := range snaps {
		fmt.Println(viz.SnapshotPanels(s, mesh, opts))
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	final, mesh, err := storage.New(dataDir).LoadField(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"r", "z", "temperature"}); err != nil {
		return err
	}
	nr, nz := final.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nz; j++ {
			r, z := mesh.Node(i, j)
			row := []string{
				strconv.FormatFloat(r, 'f', 6, 64),
				strconv.FormatFloat(z, 'f', 6, 64),
				strconv.FormatFloat(final.At(i, j), 'f', 6, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
