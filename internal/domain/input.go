package domain

import (
	"github.com/shopspring/decimal"
)

// PolicyInput identifies the policy being priced.
type PolicyInput struct {
	Premium       decimal.Decimal `yaml:"premium" json:"premium"`
	IssueAge      int             `yaml:"issue_age" json:"issue_age"`
	Gender        Gender          `yaml:"gender" json:"gender"`
	DeferralYears int             `yaml:"deferral_years" json:"deferral_years"`
}

// SimulationInput holds Monte Carlo and market settings as read from an
// input file.
type SimulationInput struct {
	NumPaths     int             `yaml:"num_paths" json:"num_paths"`
	Seed         int64           `yaml:"seed" json:"seed"`
	StepsPerYear int             `yaml:"steps_per_year" json:"steps_per_year"`
	RiskFreeRate decimal.Decimal `yaml:"risk_free_rate" json:"risk_free_rate"`
	Volatility   decimal.Decimal `yaml:"volatility" json:"volatility"`
}

// Configuration is a complete pricing request: one policy, its rider
// terms, optional behavioral model blocks, and simulation settings.
type Configuration struct {
	Policy     PolicyInput       `yaml:"policy" json:"policy"`
	Rider      GWBConfig         `yaml:"rider" json:"rider"`
	Lapse      *LapseConfig      `yaml:"lapse,omitempty" json:"lapse,omitempty"`
	Withdrawal *WithdrawalConfig `yaml:"withdrawal,omitempty" json:"withdrawal,omitempty"`
	Expense    *ExpenseConfig    `yaml:"expense,omitempty" json:"expense,omitempty"`
	Simulation SimulationInput   `yaml:"simulation" json:"simulation"`
}
