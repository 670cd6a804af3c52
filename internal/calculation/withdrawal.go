package calculation

import (
	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalModel returns the fraction of the maximum contractual
// withdrawal the policyholder actually takes, in [0, 1].
type WithdrawalModel interface {
	Utilization(guaranteedBase, accountValue decimal.Decimal, policyYear, attainedAge int) float64
}

// TenureUtilizationModel grows utilization with policy tenure and attained
// age, and scales it up when the guarantee is in the money.
type TenureUtilizationModel struct {
	cfg domain.WithdrawalConfig
}

// NewTenureUtilizationModel validates the config and builds the model.
func NewTenureUtilizationModel(cfg domain.WithdrawalConfig) (*TenureUtilizationModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TenureUtilizationModel{cfg: cfg}, nil
}

// Utilization implements WithdrawalModel, clamped to [min, max].
func (m *TenureUtilizationModel) Utilization(guaranteedBase, accountValue decimal.Decimal, policyYear, attainedAge int) float64 {
	u := m.cfg.BaseUtilization.InexactFloat64()

	tenure := policyYear
	if m.cfg.DurationCap > 0 && tenure > m.cfg.DurationCap {
		tenure = m.cfg.DurationCap
	}
	u += m.cfg.DurationSlope.InexactFloat64() * float64(tenure)

	if attainedAge > m.cfg.AgePivot {
		u += m.cfg.AgeSlope.InexactFloat64() * float64(attainedAge-m.cfg.AgePivot)
	}

	// Deeper in-the-money guarantees induce heavier use.
	if guaranteedBase.GreaterThan(decimal.Zero) {
		moneyness := accountValue.Div(guaranteedBase).InexactFloat64()
		if moneyness < 1 {
			u *= 1 + m.cfg.ITMSensitivity.InexactFloat64()*(1-moneyness)
		}
	}

	return clamp(u, m.cfg.MinUtilization.InexactFloat64(), m.cfg.MaxUtilization.InexactFloat64())
}
