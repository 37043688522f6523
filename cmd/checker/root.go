package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "checker",
		Short:         "Gas sufficiency and refuel checks for cross-chain routes",
		SilenceUsage:  true,
		SilenceErrors: false,
		Run:           func(cmd *cobra.Command, args []string) { _ = cmd.Help() },
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or config/config.yml)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newCheckCmd(&configPath))
	rootCmd.AddCommand(newRefuelCmd(&configPath))
	return rootCmd
}
