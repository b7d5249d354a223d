package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MJE43/pf-casino-engine/internal/api"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "casinod",
		Short:         "Provably-fair casino engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newVerifyCmd(),
		newSeedCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := api.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "casinod %s", v.EngineVersion)
			if v.GitCommit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (commit %s)", v.GitCommit)
			}
			if v.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", v.BuildTime)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}
