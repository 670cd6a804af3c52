package config

import (
	"fmt"
	"os"

	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of pricing input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a pricing configuration from a YAML file and
// validates it before anything runs.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration. Every failure
// is reported before any simulation runs; nothing is silently clamped.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if err := ip.validatePolicy(&config.Policy); err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}
	if err := config.Rider.Validate(); err != nil {
		return fmt.Errorf("rider validation failed: %w", err)
	}
	if config.Lapse != nil {
		if err := config.Lapse.Validate(); err != nil {
			return fmt.Errorf("lapse model validation failed: %w", err)
		}
	}
	if config.Withdrawal != nil {
		if err := config.Withdrawal.Validate(); err != nil {
			return fmt.Errorf("withdrawal model validation failed: %w", err)
		}
	}
	if config.Expense != nil {
		if err := config.Expense.Validate(); err != nil {
			return fmt.Errorf("expense model validation failed: %w", err)
		}
	}
	if err := ip.validateSimulation(&config.Simulation); err != nil {
		return fmt.Errorf("simulation settings validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validatePolicy(policy *domain.PolicyInput) error {
	if policy.Premium.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("premium must be positive")
	}
	if policy.IssueAge <= 0 {
		return fmt.Errorf("issue age must be positive")
	}
	if policy.IssueAge > 110 {
		return fmt.Errorf("issue age must be at most 110")
	}
	switch policy.Gender {
	case domain.GenderMale, domain.GenderFemale:
	default:
		return fmt.Errorf("gender must be %q or %q", domain.GenderMale, domain.GenderFemale)
	}
	if policy.DeferralYears < 0 {
		return fmt.Errorf("deferral years cannot be negative")
	}
	return nil
}

func (ip *InputParser) validateSimulation(sim *domain.SimulationInput) error {
	if sim.NumPaths <= 0 {
		return fmt.Errorf("number of paths must be positive")
	}
	if sim.StepsPerYear <= 0 {
		return fmt.Errorf("steps per year must be positive")
	}
	if sim.Volatility.IsNegative() {
		return fmt.Errorf("volatility cannot be negative")
	}
	if sim.RiskFreeRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("risk-free rate must exceed -100%%")
	}
	return nil
}

// CreateExampleConfiguration returns a complete, runnable pricing input:
// a 65-year-old with a compound-rollup ratcheting rider and all three
// behavioral models configured.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		Policy: domain.PolicyInput{
			Premium:       decimal.NewFromInt(100000),
			IssueAge:      65,
			Gender:        domain.GenderMale,
			DeferralYears: 5,
		},
		Rider: domain.GWBConfig{
			RollupKind:     domain.RollupCompound,
			RollupRate:     decimal.NewFromFloat(0.06),
			RollupCapYears: decimal.NewFromInt(10),
			WithdrawalRate: decimal.NewFromFloat(0.05),
			FeeRate:        decimal.NewFromFloat(0.01),
			RatchetEnabled: true,
			FeeBasis:       domain.FeeBasisGWB,
		},
		Lapse: &domain.LapseConfig{
			BaseRate:             decimal.NewFromFloat(0.04),
			MinRate:              decimal.NewFromFloat(0.005),
			MaxRate:              decimal.NewFromFloat(0.25),
			MoneynessSensitivity: decimal.NewFromFloat(1.5),
			SurrenderChargeYears: 7,
			SurrenderFactor:      decimal.NewFromFloat(0.4),
			PostSurrenderCliff:   decimal.NewFromFloat(2.0),
		},
		Withdrawal: &domain.WithdrawalConfig{
			BaseUtilization: decimal.NewFromFloat(0.55),
			DurationSlope:   decimal.NewFromFloat(0.01),
			DurationCap:     20,
			AgeSlope:        decimal.NewFromFloat(0.005),
			AgePivot:        70,
			ITMSensitivity:  decimal.NewFromFloat(0.5),
			MinUtilization:  decimal.NewFromFloat(0.1),
			MaxUtilization:  decimal.NewFromInt(1),
		},
		Expense: &domain.ExpenseConfig{
			AnnualPerPolicy:   decimal.NewFromInt(75),
			InflationRate:     decimal.NewFromFloat(0.025),
			PctOfAccountValue: decimal.NewFromFloat(0.0015),
			AcquisitionCharge: decimal.NewFromInt(250),
		},
		Simulation: domain.SimulationInput{
			NumPaths:     2000,
			Seed:         42,
			StepsPerYear: 12,
			RiskFreeRate: decimal.NewFromFloat(0.03),
			Volatility:   decimal.NewFromFloat(0.16),
		},
	}
}
