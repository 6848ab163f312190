package main

import (
	"fmt"

	"github.com/couchcryptid/heat-response/internal/thermo"
	"github.com/spf13/cobra"
)

func newPredictCmd() *cobra.Command {
	var (
		person personFlags
		env    envFlags
		steps  int
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Absolute temperatures after a number of one-minute steps",
		Example: `  thermo predict --age 30 --height 175 --mass 75 --temp 23 --humidity 50
  thermo predict --sex female --age 45 --height 160 --mass 60 --temp 30 --humidity 40 --steps 120 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := person.features()
			if err != nil {
				return err
			}
			e, err := env.features()
			if err != nil {
				return err
			}
			svc, err := newService(cmd)
			if err != nil {
				return err
			}

			out, err := svc.Predict(cmd.Context(), p, e, steps)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rectal %.3f °C\nskin   %.3f °C\n", out.Rectal, out.Skin)
			return nil
		},
	}
	person.register(cmd)
	env.register(cmd)
	cmd.Flags().IntVar(&steps, "steps", thermo.ExposureSteps, "Number of simulation steps")
	return cmd
}

func newExposureCmd() *cobra.Command {
	var (
		person personFlags
		env    envFlags
	)
	cmd := &cobra.Command{
		Use:     "exposure",
		Short:   "Temperature change from a rested baseline after a 9 hour exposure",
		Example: `  thermo exposure --age 30 --height 175 --mass 75 --temp 40 --humidity 50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := person.features()
			if err != nil {
				return err
			}
			e, err := env.features()
			if err != nil {
				return err
			}
			svc, err := newService(cmd)
			if err != nil {
				return err
			}

			result, err := svc.PredictExposure(cmd.Context(), p, e)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			rectal, skin, ok := result.Deltas()
			if !ok {
				fmt.Fprintf(w, "outside operating range: vapour pressure %.2f kPa >= %.2f kPa\n",
					result.VapourPressureKPa, svc.Params().MaxVapourPressureKPa)
				return nil
			}
			fmt.Fprintf(w, "rectal %+.3f °C\nskin   %+.3f °C\nvapour pressure %.2f kPa\n",
				rectal, skin, result.VapourPressureKPa)
			return nil
		},
	}
	person.register(cmd)
	env.register(cmd)
	return cmd
}
