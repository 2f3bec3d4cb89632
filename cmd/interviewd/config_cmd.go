package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/interviewd/internal/config"
)

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or validate configuration",
	}
	cmd.AddCommand(buildConfigCheckCmd())
	return cmd
}

func buildConfigCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Check(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config ok: %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "interviewd.yaml", "Path to YAML configuration file")
	return cmd
}
