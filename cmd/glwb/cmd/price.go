package cmd

import (
	"fmt"
	"os"

	"github.com/glwbgo/annuity-pricer/internal/calculation"
	"github.com/glwbgo/annuity-pricer/internal/config"
	"github.com/glwbgo/annuity-pricer/pkg/moneyfmt"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a GLWB rider from a YAML input file",
	Long: `Price runs the Monte Carlo guarantee simulation for the policy,
rider terms, behavioral models, and simulation settings described in the
input file.

Example:
  glwb price -i policy.yaml
  glwb price -i policy.yaml --paths 50000 --seed 7`,
	RunE: runPrice,
}

var (
	priceInputPath string
	pricePaths     int
	priceSeed      int64
	priceVerbose   bool
)

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVarP(&priceInputPath, "input", "i", "", "path to YAML pricing input (required)")
	priceCmd.Flags().IntVar(&pricePaths, "paths", 0, "override the number of simulated paths")
	priceCmd.Flags().Int64Var(&priceSeed, "seed", 0, "override the random seed")
	priceCmd.Flags().BoolVarP(&priceVerbose, "verbose", "v", false, "log simulation diagnostics to stderr")
	_ = priceCmd.MarkFlagRequired("input")
}

func runPrice(cmd *cobra.Command, args []string) error {
	parser := config.NewInputParser()
	cfg, err := parser.LoadFromFile(priceInputPath)
	if err != nil {
		return err
	}
	if pricePaths > 0 {
		cfg.Simulation.NumPaths = pricePaths
	}
	if priceSeed != 0 {
		cfg.Simulation.Seed = priceSeed
	}

	simCfg := calculation.GLWBSimConfig{
		NumPaths:     cfg.Simulation.NumPaths,
		Seed:         cfg.Simulation.Seed,
		StepsPerYear: cfg.Simulation.StepsPerYear,
		RiskFreeRate: cfg.Simulation.RiskFreeRate,
		Volatility:   cfg.Simulation.Volatility,
	}
	mortality := calculation.NewAnnuitantMortality(cfg.Policy.Gender)

	simulator, err := calculation.NewGLWBSimulator(cfg.Rider, simCfg, mortality)
	if err != nil {
		return err
	}
	if priceVerbose {
		simulator.SetLogger(stderrLogger{})
	}

	if cfg.Lapse != nil {
		model, err := calculation.NewDynamicLapseModel(*cfg.Lapse)
		if err != nil {
			return err
		}
		simulator.SetLapseModel(model)
	}
	if cfg.Withdrawal != nil {
		model, err := calculation.NewTenureUtilizationModel(*cfg.Withdrawal)
		if err != nil {
			return err
		}
		simulator.SetWithdrawalModel(model)
	}
	if cfg.Expense != nil {
		model, err := calculation.NewPolicyExpenseModel(*cfg.Expense)
		if err != nil {
			return err
		}
		simulator.SetExpenseModel(model)
	}

	result, err := simulator.Price(cfg.Policy.Premium, cfg.Policy.IssueAge, cfg.Policy.DeferralYears)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "GLWB guarantee cost:   %s per unit premium (%s)\n",
		moneyfmt.PerUnit(result.Price), moneyfmt.Amount(result.Price.Mul(cfg.Policy.Premium)))
	fmt.Fprintf(out, "Standard error:        %s\n", moneyfmt.PerUnit(result.StdError))
	fmt.Fprintf(out, "Ruin probability:      %s\n", moneyfmt.Percent(result.ProbRuin))
	fmt.Fprintf(out, "Lapse probability:     %s\n", moneyfmt.Percent(result.ProbLapse))
	fmt.Fprintf(out, "Paths:                 %d\n", result.NumPaths)
	if result.AvgUtilization != nil {
		fmt.Fprintf(out, "Avg utilization:       %s\n", moneyfmt.Percent(*result.AvgUtilization))
	}
	if result.ExpensesPV != nil {
		fmt.Fprintf(out, "PV of expenses:        %s\n", moneyfmt.Amount(*result.ExpensesPV))
	}
	return nil
}

// stderrLogger writes simulator diagnostics to stderr.
type stderrLogger struct{}

func (stderrLogger) Debugf(format string, args ...any) { fmt.Fprintf(os.Stderr, format+"\n", args...) }
func (stderrLogger) Infof(format string, args ...any)  { fmt.Fprintf(os.Stderr, format+"\n", args...) }
func (stderrLogger) Warnf(format string, args ...any)  { fmt.Fprintf(os.Stderr, format+"\n", args...) }
func (stderrLogger) Errorf(format string, args ...any) { fmt.Fprintf(os.Stderr, format+"\n", args...) }
