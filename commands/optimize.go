package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func optimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <model>",
		Short: "Detect the settings of a model and save them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, settings, err := svc.Optimize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings for index %s saved to %s.\n", index, cfg.StoreDir)
			return writeSettings(cmd.OutOrStdout(), "yaml", settings)
		},
	}
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <index>",
		Short: "Push the saved settings of an index to the search backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Apply(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings for index %s applied.\n", args[0])
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare saved settings with the ones applied to the search backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved settings.")
				return nil
			}
			for _, status := range statuses {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s\n", status.Index, status.State)
			}
			return nil
		},
	}
}
