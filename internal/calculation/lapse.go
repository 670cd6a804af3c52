package calculation

import (
	"math"

	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
)

// LapseModel returns an annual policy-termination rate in [0, 1] given the
// current rider state and policy duration.
type LapseModel interface {
	AnnualRate(guaranteedBase, accountValue decimal.Decimal, policyYear int) float64
}

// DynamicLapseModel adjusts a base lapse rate for guarantee moneyness and
// surrender-charge status. Out-of-the-money guarantees (high AV/GWB) lapse
// more, in-the-money guarantees lapse less; lapse is suppressed while a
// surrender charge applies and spikes in the first year after it ends.
type DynamicLapseModel struct {
	cfg domain.LapseConfig
}

// NewDynamicLapseModel validates the config and builds the model.
func NewDynamicLapseModel(cfg domain.LapseConfig) (*DynamicLapseModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &DynamicLapseModel{cfg: cfg}, nil
}

// AnnualRate implements LapseModel. The result is always clamped to the
// configured [min, max] range, itself within [0, 1].
func (m *DynamicLapseModel) AnnualRate(guaranteedBase, accountValue decimal.Decimal, policyYear int) float64 {
	maxRate := m.cfg.MaxRate.InexactFloat64()
	minRate := m.cfg.MinRate.InexactFloat64()

	// A worthless guarantee gives no reason to stay.
	if guaranteedBase.LessThanOrEqual(decimal.Zero) {
		return maxRate
	}

	rate := m.cfg.BaseRate.InexactFloat64()

	// Moneyness is never negative (AV >= 0, GWB > 0 here); a depleted
	// account gives moneyness 0 and the clamp floors the rate at MinRate.
	moneyness := accountValue.Div(guaranteedBase).InexactFloat64()
	sens := m.cfg.MoneynessSensitivity.InexactFloat64()
	if sens > 0 {
		rate *= math.Pow(moneyness, sens)
	}

	if policyYear < m.cfg.SurrenderChargeYears {
		rate *= m.cfg.SurrenderFactor.InexactFloat64()
	} else if policyYear == m.cfg.SurrenderChargeYears {
		rate *= m.cfg.PostSurrenderCliff.InexactFloat64()
	}

	return clamp(rate, minRate, maxRate)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
