package main

import (
	"fmt"
	"sort"

	"switchboard/internal/config"

	"github.com/spf13/cobra"
)

var agentsConfig string

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List configured agent profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(agentsConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		names := make([]string, 0, len(cfg.Agents))
		for name := range cfg.Agents {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			a := cfg.Agents[name]
			marker := " "
			if name == cfg.DefaultAgent {
				marker = "*"
			}
			fmt.Printf("%s %-10s %s\n", marker, name, a.Description)
			fmt.Printf("  tools: %v  max_iterations: %d  max_execution_time: %s\n",
				a.Tools, a.MaxIterations, a.MaxExecutionTime.Duration)
		}
		return nil
	},
}

func init() {
	agentsCmd.Flags().StringVarP(&agentsConfig, "config", "c", "", "path to config file")
}
