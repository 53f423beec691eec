package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/EkenoSamson/MsPacman/metrics"
)

var (
	plotData   string
	plotOut    string
	plotWindow int
	plotDB     string
	plotRun    string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render training charts as html",
	Long: `Plot writes training_performance.html (moving average reward against
epsilon) and score_distribution.html. Data comes from the training data file,
or from the metrics database when --run is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("data") {
			settings.DataFile = plotData
		}
		if cmd.Flags().Changed("out") {
			settings.ChartDir = plotOut
		}
		if cmd.Flags().Changed("db") {
			settings.MetricsDB = plotDB
		}

		data, err := loadTrainingData()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Data loaded. Total episodes: %d\n", data.Episodes())

		charts, err := metrics.Plot(data, settings.ChartDir, plotWindow)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Plot 1 saved to %s\n", au.Green(charts.Performance))
		fmt.Fprintf(out, "Plot 2 saved to %s\n", au.Green(charts.Distribution))
		return nil
	},
}

func loadTrainingData() (*metrics.TrainingData, error) {
	if plotRun == "" {
		return metrics.LoadJSON(settings.DataFile)
	}
	id, err := uuid.Parse(plotRun)
	if err != nil {
		return nil, fmt.Errorf("run id %q: %w", plotRun, err)
	}
	if settings.MetricsDB == "" {
		return nil, fmt.Errorf("--run needs --db or MSPACMAN_METRICS_DB")
	}
	store, err := metrics.OpenStore(settings.MetricsDB)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadRun(id)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List training runs stored in the metrics database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("db") {
			settings.MetricsDB = plotDB
		}
		if settings.MetricsDB == "" {
			return fmt.Errorf("no metrics database, set --db or MSPACMAN_METRICS_DB")
		}
		store, err := metrics.OpenStore(settings.MetricsDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSEED\tSTARTED\tEPISODES")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", r.ID, r.Seed, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Episodes)
		}
		return w.Flush()
	},
}

func init() {
	f := plotCmd.Flags()
	f.StringVar(&plotData, "data", "", "training data file (overrides MSPACMAN_DATA_FILE)")
	f.StringVar(&plotOut, "out", "", "chart directory (overrides MSPACMAN_CHART_DIR)")
	f.IntVar(&plotWindow, "window", 100, "moving average window")
	f.StringVar(&plotDB, "db", "", "sqlite metrics database (overrides MSPACMAN_METRICS_DB)")
	f.StringVar(&plotRun, "run", "", "plot this run from the metrics database")

	runsCmd.Flags().StringVar(&plotDB, "db", "", "sqlite metrics database (overrides MSPACMAN_METRICS_DB)")
}
