package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadplan/config"
)

var scenarioFormat string

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Print the effective scenario",
	RunE:  runScenario,
}

func init() {
	scenarioCmd.Flags().StringVarP(&scenarioFormat, "format", "f", "yaml", "yaml or json")
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	out := cmd.OutOrStdout()
	switch scenarioFormat {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg.Scenario); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.Scenario)
	default:
		return fmt.Errorf("unsupported format %q", scenarioFormat)
	}
}
