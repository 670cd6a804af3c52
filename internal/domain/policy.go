package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RollupKind selects how the guaranteed withdrawal base grows before withdrawals begin.
type RollupKind string

const (
	RollupSimple   RollupKind = "simple"
	RollupCompound RollupKind = "compound"
)

// FeeBasis selects the balance the rider fee is assessed against.
type FeeBasis string

const (
	FeeBasisGWB          FeeBasis = "gwb"
	FeeBasisAccountValue FeeBasis = "account_value"
)

// Gender differentiates the default mortality curve.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// GWBConfig holds the contractual terms of a GLWB rider. It is immutable
// after validation; every pricing run reads it, none mutate it.
type GWBConfig struct {
	RollupKind     RollupKind      `yaml:"rollup_kind" json:"rollup_kind"`
	RollupRate     decimal.Decimal `yaml:"rollup_rate" json:"rollup_rate"`
	RollupCapYears decimal.Decimal `yaml:"rollup_cap_years" json:"rollup_cap_years"`
	WithdrawalRate decimal.Decimal `yaml:"withdrawal_rate" json:"withdrawal_rate"` // fraction of GWB per year
	FeeRate        decimal.Decimal `yaml:"fee_rate" json:"fee_rate"`
	RatchetEnabled bool            `yaml:"ratchet_enabled" json:"ratchet_enabled"`
	FeeBasis       FeeBasis        `yaml:"fee_basis" json:"fee_basis"`
}

// maxWithdrawalRate caps the contractual withdrawal rate at 20% per year.
var maxWithdrawalRate = decimal.NewFromFloat(0.20)

// Validate checks the rider terms. Invalid terms fail here, before any
// simulation runs; nothing is silently clamped.
func (c *GWBConfig) Validate() error {
	switch c.RollupKind {
	case RollupSimple, RollupCompound:
	default:
		return fmt.Errorf("rollup kind must be %q or %q, got %q", RollupSimple, RollupCompound, c.RollupKind)
	}
	if c.RollupRate.IsNegative() {
		return fmt.Errorf("rollup rate cannot be negative")
	}
	if c.RollupCapYears.IsNegative() {
		return fmt.Errorf("rollup cap years cannot be negative")
	}
	if c.WithdrawalRate.LessThanOrEqual(decimal.Zero) || c.WithdrawalRate.GreaterThan(maxWithdrawalRate) {
		return fmt.Errorf("withdrawal rate must be in (0, 0.20], got %s", c.WithdrawalRate)
	}
	if c.FeeRate.IsNegative() {
		return fmt.Errorf("fee rate cannot be negative")
	}
	switch c.FeeBasis {
	case FeeBasisGWB, FeeBasisAccountValue:
	default:
		return fmt.Errorf("fee basis must be %q or %q, got %q", FeeBasisGWB, FeeBasisAccountValue, c.FeeBasis)
	}
	return nil
}

// GWBState is the mutable per-path rider state. One instance is created
// per simulated path, mutated step by step, and discarded once the path's
// terminal contribution is recorded. It is never shared across paths.
type GWBState struct {
	GuaranteedBase        decimal.Decimal // GWB, never negative
	AccountValue          decimal.Decimal // AV, floored at zero (AV == 0 is the ruin condition)
	RollupBase            decimal.Decimal // reference principal for rollup growth
	HighWaterMark         decimal.Decimal // peak AV observed, for ratchet bookkeeping
	YearsSinceIssue       float64
	WithdrawalPhaseBegan  bool
	CumulativeWithdrawals decimal.Decimal
}

// NewGWBState initializes rider state from a single premium. GWB, AV,
// rollup base and high-water-mark all start at the premium.
func NewGWBState(premium decimal.Decimal) (*GWBState, error) {
	if premium.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("premium must be positive, got %s", premium)
	}
	return &GWBState{
		GuaranteedBase:        premium,
		AccountValue:          premium,
		RollupBase:            premium,
		HighWaterMark:         premium,
		CumulativeWithdrawals: decimal.Zero,
	}, nil
}

// LapseConfig parameterizes the dynamic lapse model.
type LapseConfig struct {
	BaseRate             decimal.Decimal `yaml:"base_rate" json:"base_rate"`
	MinRate              decimal.Decimal `yaml:"min_rate" json:"min_rate"`
	MaxRate              decimal.Decimal `yaml:"max_rate" json:"max_rate"`
	MoneynessSensitivity decimal.Decimal `yaml:"moneyness_sensitivity" json:"moneyness_sensitivity"`
	SurrenderChargeYears int             `yaml:"surrender_charge_years" json:"surrender_charge_years"`
	SurrenderFactor      decimal.Decimal `yaml:"surrender_factor" json:"surrender_factor"` // multiplier while a surrender charge applies
	PostSurrenderCliff   decimal.Decimal `yaml:"post_surrender_cliff" json:"post_surrender_cliff"`
}

func (c *LapseConfig) Validate() error {
	if err := validateUnitRange("lapse base rate", c.BaseRate); err != nil {
		return err
	}
	if err := validateUnitRange("lapse min rate", c.MinRate); err != nil {
		return err
	}
	if err := validateUnitRange("lapse max rate", c.MaxRate); err != nil {
		return err
	}
	if c.MinRate.GreaterThan(c.MaxRate) {
		return fmt.Errorf("lapse min rate %s exceeds max rate %s", c.MinRate, c.MaxRate)
	}
	if c.MoneynessSensitivity.IsNegative() {
		return fmt.Errorf("moneyness sensitivity cannot be negative")
	}
	if c.SurrenderChargeYears < 0 {
		return fmt.Errorf("surrender charge years cannot be negative")
	}
	if c.SurrenderFactor.IsNegative() || c.SurrenderFactor.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("surrender factor must be between 0 and 1")
	}
	if c.PostSurrenderCliff.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("post-surrender cliff multiplier must be at least 1")
	}
	return nil
}

// WithdrawalConfig parameterizes the utilization model.
type WithdrawalConfig struct {
	BaseUtilization decimal.Decimal `yaml:"base_utilization" json:"base_utilization"`
	DurationSlope   decimal.Decimal `yaml:"duration_slope" json:"duration_slope"` // utilization added per policy year of tenure
	DurationCap     int             `yaml:"duration_cap" json:"duration_cap"`
	AgeSlope        decimal.Decimal `yaml:"age_slope" json:"age_slope"` // utilization added per attained year past the pivot
	AgePivot        int             `yaml:"age_pivot" json:"age_pivot"`
	ITMSensitivity  decimal.Decimal `yaml:"itm_sensitivity" json:"itm_sensitivity"`
	MinUtilization  decimal.Decimal `yaml:"min_utilization" json:"min_utilization"`
	MaxUtilization  decimal.Decimal `yaml:"max_utilization" json:"max_utilization"`
}

func (c *WithdrawalConfig) Validate() error {
	if err := validateUnitRange("base utilization", c.BaseUtilization); err != nil {
		return err
	}
	if err := validateUnitRange("min utilization", c.MinUtilization); err != nil {
		return err
	}
	if err := validateUnitRange("max utilization", c.MaxUtilization); err != nil {
		return err
	}
	if c.MinUtilization.GreaterThan(c.MaxUtilization) {
		return fmt.Errorf("min utilization %s exceeds max utilization %s", c.MinUtilization, c.MaxUtilization)
	}
	if c.DurationSlope.IsNegative() {
		return fmt.Errorf("duration slope cannot be negative")
	}
	if c.DurationCap < 0 {
		return fmt.Errorf("duration cap cannot be negative")
	}
	if c.AgeSlope.IsNegative() {
		return fmt.Errorf("age slope cannot be negative")
	}
	if c.AgePivot <= 0 {
		return fmt.Errorf("age pivot must be positive")
	}
	if c.ITMSensitivity.IsNegative() {
		return fmt.Errorf("in-the-money sensitivity cannot be negative")
	}
	return nil
}

// ExpenseConfig parameterizes the policy expense model.
type ExpenseConfig struct {
	AnnualPerPolicy   decimal.Decimal `yaml:"annual_per_policy" json:"annual_per_policy"`
	InflationRate     decimal.Decimal `yaml:"inflation_rate" json:"inflation_rate"`
	PctOfAccountValue decimal.Decimal `yaml:"pct_of_account_value" json:"pct_of_account_value"`
	AcquisitionCharge decimal.Decimal `yaml:"acquisition_charge" json:"acquisition_charge"` // one-time, policy year zero
}

func (c *ExpenseConfig) Validate() error {
	if c.AnnualPerPolicy.IsNegative() {
		return fmt.Errorf("annual per-policy expense cannot be negative")
	}
	if c.InflationRate.IsNegative() {
		return fmt.Errorf("expense inflation rate cannot be negative")
	}
	if c.PctOfAccountValue.IsNegative() || c.PctOfAccountValue.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("percentage-of-AV expense must be between 0 and 1")
	}
	if c.AcquisitionCharge.IsNegative() {
		return fmt.Errorf("acquisition charge cannot be negative")
	}
	return nil
}

func validateUnitRange(name string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1, got %s", name, v)
	}
	return nil
}
