package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glwb",
	Short: "Monte Carlo pricer for GLWB annuity riders",
	Long: `glwb prices Guaranteed Lifetime Withdrawal Benefit riders under
stochastic asset returns, mortality, and policyholder behavior.

It provides commands for:
  - Pricing a rider from a YAML policy input file
  - Generating a complete example input file`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
