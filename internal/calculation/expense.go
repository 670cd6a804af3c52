package calculation

import (
	"math"

	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
)

// ExpenseModel returns the annual policy expense charge for a policy year.
// Implementations must never return a negative amount.
type ExpenseModel interface {
	AnnualExpense(accountValue decimal.Decimal, policyYear int) decimal.Decimal
}

// PolicyExpenseModel charges an inflation-indexed flat per-policy amount
// plus a percentage of account value, with an optional one-time
// acquisition charge in policy year zero.
type PolicyExpenseModel struct {
	cfg domain.ExpenseConfig
}

// NewPolicyExpenseModel validates the config and builds the model.
func NewPolicyExpenseModel(cfg domain.ExpenseConfig) (*PolicyExpenseModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PolicyExpenseModel{cfg: cfg}, nil
}

// AnnualExpense implements ExpenseModel.
func (m *PolicyExpenseModel) AnnualExpense(accountValue decimal.Decimal, policyYear int) decimal.Decimal {
	if policyYear < 0 {
		policyYear = 0
	}
	inflator := math.Pow(1+m.cfg.InflationRate.InexactFloat64(), float64(policyYear))
	expense := m.cfg.AnnualPerPolicy.Mul(decimal.NewFromFloat(inflator))
	if accountValue.GreaterThan(decimal.Zero) {
		expense = expense.Add(m.cfg.PctOfAccountValue.Mul(accountValue))
	}
	if policyYear == 0 {
		expense = expense.Add(m.cfg.AcquisitionCharge)
	}
	if expense.IsNegative() {
		return decimal.Zero
	}
	return expense
}
