package cmd

import (
	"fmt"
	"os"

	"github.com/glwbgo/annuity-pricer/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Write a complete example pricing input file",
	RunE:  runExample,
}

var exampleOutputPath string

func init() {
	rootCmd.AddCommand(exampleCmd)
	exampleCmd.Flags().StringVarP(&exampleOutputPath, "output", "o", "policy.yaml", "output file path")
}

func runExample(cmd *cobra.Command, args []string) error {
	cfg := config.NewInputParser().CreateExampleConfiguration()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal example configuration: %w", err)
	}
	if err := os.WriteFile(exampleOutputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exampleOutputPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote example pricing input to %s\n", exampleOutputPath)
	return nil
}
