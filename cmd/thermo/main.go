// Command thermo runs thermoregulation predictions from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/couchcryptid/heat-response/internal/observability"
	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thermo",
		Short: "Predict core and skin temperature response to heat",
		Long: `thermo predicts rectal and skin temperature for a person exposed to an
ambient temperature and humidity, using the trained linear recurrence.

Parameters default to the shipped model; point --params (or
MODEL_PARAMS_PATH) at a YAML file to override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("params", os.Getenv("MODEL_PARAMS_PATH"), "Model parameter file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level for diagnostics on stderr")

	rootCmd.AddCommand(
		newPredictCmd(),
		newExposureCmd(),
		newSweepCmd(),
		newParamsCmd(),
	)
	return rootCmd
}

// loadParams resolves the --params flag.
func loadParams(cmd *cobra.Command) (model.Params, error) {
	path, _ := cmd.Flags().GetString("params")
	return model.ResolveParams(path)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return observability.NewLoggerTo(cmd.ErrOrStderr(), level, "text")
}

// newService builds a prediction service with unregistered metrics.
func newService(cmd *cobra.Command) (*thermo.Service, error) {
	params, err := loadParams(cmd)
	if err != nil {
		return nil, err
	}
	return thermo.NewService(params, newLogger(cmd), observability.NewMetricsWith(nil))
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
