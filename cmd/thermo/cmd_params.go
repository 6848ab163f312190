package main

import (
	"fmt"

	"github.com/couchcryptid/heat-response/internal/model"
	"github.com/spf13/cobra"
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Inspect and check model parameter files",
	}
	cmd.AddCommand(newParamsShowCmd(), newParamsValidateCmd())
	return cmd
}

func newParamsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective parameters as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), params)
			}
			data, err := params.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newParamsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that parameter files load and validate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				if _, err := model.LoadParams(path); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d parameter files invalid", failed, len(args))
			}
			return nil
		},
	}
}
