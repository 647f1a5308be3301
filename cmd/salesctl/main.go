// Command salesctl computes the dashboard's aggregations from the command
// line without starting the web server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"supermarket-dashboard/internal/config"
	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/services"
)

type options struct {
	csvFile  string
	cacheDir string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Defaults()
	opts := &options{}

	root := &cobra.Command{
		Use:          "salesctl",
		Short:        "Query the supermarket sales dataset",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.csvFile, "csv", envOr("CSV_FILE", defaults.Dataset.CSVFile), "path to the sales CSV")
	root.PersistentFlags().StringVar(&opts.cacheDir, "cache-dir", "", "parsed dataset cache directory (empty disables)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newCitiesCmd(opts),
		newStatsCmd(opts),
		newFiguresCmd(opts),
	)
	return root
}

func newCitiesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the cities in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := opts.load(cmd)
			if err != nil {
				return err
			}
			for _, c := range dataset.Cities() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dataset statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dataset.Stats())
		},
	}
}

func newFiguresCmd(opts *options) *cobra.Command {
	var (
		cities     []string
		metricName string
		specs      bool
	)

	cmd := &cobra.Command{
		Use:   "figures",
		Short: "Compute the five aggregations for a filter",
		Example: `  salesctl figures --city Yangon --city Mandalay --metric "Gross income"
  salesctl figures --metric Rating --specs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := models.ParseMetric(metricName)
			if err != nil {
				return err
			}

			dataset, err := opts.load(cmd)
			if err != nil {
				return err
			}

			filter := models.Filter{Cities: cities, Metric: metric}
			if !cmd.Flags().Changed("city") {
				filter.Cities = dataset.Cities()
			}

			dashboard := services.NewDashboard(dataset, opts.logger(cmd.ErrOrStderr()))
			figures, err := dashboard.Update(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if specs {
				return writeJSON(cmd.OutOrStdout(), figures)
			}
			return writeJSON(cmd.OutOrStdout(), figures.Aggregates)
		},
	}

	cmd.Flags().StringSliceVar(&cities, "city", nil, "city to include (repeatable; default all)")
	cmd.Flags().StringVar(&metricName, "metric", models.GrossIncome.Label(), `metric: "Gross income" or "Rating"`)
	cmd.Flags().BoolVar(&specs, "specs", false, "print chart specs instead of bare aggregations")
	return cmd
}

func (o *options) logger(w io.Writer) *slog.Logger {
	return observability.NewLoggerTo(w, config.LoggerConfig{Level: o.logLevel, Format: "text"})
}

func (o *options) load(cmd *cobra.Command) (*services.Dataset, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.NewLoader(o.logger(cmd.ErrOrStderr()), o.cacheDir).Load(ctx, o.csvFile)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
