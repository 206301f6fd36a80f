package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lifelog/lifelog/cmd/lifelogctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifelogctl",
		Short: "Admin tools for the LifeLog service",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.SweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
