package main

import (
	"os"

	"switchboard/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	logger.Init()
	rootCmd := &cobra.Command{
		Use:   "switchboard",
		Short: "Switchboard routes requests to specialist reasoning agents",
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agentsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
