package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/sweep"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var (
		person      personFlags
		humidity    []float64
		temperature []float64
		workers     int
		metric      string
		progress    bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Exposure response over a humidity x temperature grid",
		Long: `sweep evaluates the exposure protocol for every humidity/temperature pair.
The default grid is 0-100 %RH in steps of 10 by 23-45 °C in steps of 2.
Cells past the vapour pressure cutoff are shown as "--".`,
		Example: `  thermo sweep --age 30 --height 175 --mass 75
  thermo sweep --age 30 --height 175 --mass 75 --humidity 20,50,80 --metric skin --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if metric != "rectal" && metric != "skin" {
				return fmt.Errorf("--metric must be rectal or skin, got %q", metric)
			}
			p, err := person.features()
			if err != nil {
				return err
			}
			svc, err := newService(cmd)
			if err != nil {
				return err
			}

			opts := sweep.Options{Workers: workers}
			if progress {
				stderr := cmd.ErrOrStderr()
				opts.Progress = func(done, total int) {
					if done%sweep.DefaultYieldEvery == 0 || done == total {
						fmt.Fprintf(stderr, "\r%d/%d cells", done, total)
					}
					if done == total {
						fmt.Fprintln(stderr)
					}
				}
			}
			sweeper := sweep.New(opts, newLogger(cmd), observability.NewMetricsWith(nil))

			result, err := sweep.NewService(svc, sweeper).Sweep(cmd.Context(), domain.SweepRequest{
				Person:      p,
				Humidity:    humidity,
				Temperature: temperature,
			})
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeGrid(cmd.OutOrStdout(), result, metric)
		},
	}
	person.register(cmd)
	cmd.Flags().Float64SliceVar(&humidity, "humidity", nil, "Relative humidity rows in % (default 0,10,...,100)")
	cmd.Flags().Float64SliceVar(&temperature, "temperature", nil, "Ambient temperature columns in °C (default 23,25,...,45)")
	cmd.Flags().IntVar(&workers, "workers", 1, "Rows evaluated concurrently")
	cmd.Flags().StringVar(&metric, "metric", "rectal", "Delta to tabulate: rectal or skin")
	cmd.Flags().BoolVar(&progress, "progress", false, "Report progress on stderr")
	return cmd
}

// writeGrid renders one delta of the grid as an aligned table followed by the
// summary.
func writeGrid(w io.Writer, result domain.SweepResult, metric string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "RH \\ °C\t")
	for _, temp := range result.Grid.Temperature {
		fmt.Fprintf(tw, "%g\t", temp)
	}
	fmt.Fprintln(tw)

	for i, h := range result.Grid.Humidity {
		fmt.Fprintf(tw, "%g\t", h)
		for _, cell := range result.Grid.Cells[i] {
			rectal, skin, ok := cell.Deltas()
			switch {
			case !ok:
				fmt.Fprint(tw, "--\t")
			case metric == "skin":
				fmt.Fprintf(tw, "%+.2f\t", skin)
			default:
				fmt.Fprintf(tw, "%+.2f\t", rectal)
			}
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := result.Summary
	_, err := fmt.Fprintf(w, "\n%d computed, %d out of range; rectal delta min %+.2f max %+.2f mean %+.2f; skin delta max %+.2f\n",
		s.Computed, s.OutOfRange, s.MinRectalDelta, s.MaxRectalDelta, s.MeanRectalDelta, s.MaxSkinDelta)
	return err
}
