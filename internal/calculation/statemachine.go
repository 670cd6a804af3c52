package calculation

import (
	"math"

	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
)

// StepResult records what a single state-machine transition actually did,
// for statistics accumulation by the simulator.
type StepResult struct {
	FeeCharged      decimal.Decimal // rider fee collected from AV
	WithdrawalTaken decimal.Decimal // portion of the withdrawal funded from AV
	Shortfall       decimal.Decimal // guaranteed amount the insurer had to fund directly
	RatchetApplied  bool
}

// SimpleRollup grows the base linearly: base * (1 + rate*min(years, capYears)).
func SimpleRollup(base, rate decimal.Decimal, years, capYears float64) decimal.Decimal {
	credited := math.Min(years, capYears)
	return base.Mul(decimal.NewFromInt(1).Add(rate.Mul(decimal.NewFromFloat(credited))))
}

// CompoundRollup grows the base geometrically: base * (1+rate)^min(years, capYears).
// Exponentiation happens in float64; money stays decimal.
func CompoundRollup(base, rate decimal.Decimal, years, capYears float64) decimal.Decimal {
	credited := math.Min(years, capYears)
	factor := math.Pow(1+rate.InexactFloat64(), credited)
	return base.Mul(decimal.NewFromFloat(factor))
}

// ApplyRatchet steps the guaranteed base up to the account value if higher.
// It never reduces the base; applying it twice with the same AV is a no-op.
func ApplyRatchet(gwb, av decimal.Decimal) decimal.Decimal {
	return decimal.Max(gwb, av)
}

// CrossesAnniversary reports whether advancing time by dt crosses a policy
// anniversary, i.e. an integer year boundary.
func CrossesAnniversary(yearsSinceIssue, dt float64) bool {
	return math.Floor(yearsSinceIssue+dt) > math.Floor(yearsSinceIssue)
}

// rollupValue evaluates the configured rollup at the given policy duration.
func rollupValue(cfg domain.GWBConfig, base decimal.Decimal, years float64) decimal.Decimal {
	capYears := cfg.RollupCapYears.InexactFloat64()
	if cfg.RollupKind == domain.RollupCompound {
		return CompoundRollup(base, cfg.RollupRate, years, capYears)
	}
	return SimpleRollup(base, cfg.RollupRate, years, capYears)
}

// BaseAfterRollup returns the guaranteed base as it will stand after the
// current step's rollup, without mutating state. Callers sizing a
// withdrawal against the contractual maximum must use this base, not the
// stale one, or the first withdrawal step underdraws by one rollup credit.
func BaseAfterRollup(state *domain.GWBState, cfg domain.GWBConfig) decimal.Decimal {
	if state.WithdrawalPhaseBegan {
		return state.GuaranteedBase
	}
	rolled := rollupValue(cfg, state.RollupBase, state.YearsSinceIssue)
	return decimal.Max(state.GuaranteedBase, rolled)
}

// Step advances rider state by one period of length dt (in years), applying
// rollup, market growth, the rider fee, withdrawal mechanics and, on policy
// anniversaries, the ratchet. marketReturn is the periodic account return
// over dt. The transition is pure arithmetic: AV is floored at zero rather
// than allowed negative (AV == 0 is ruin, not a fault).
func Step(state *domain.GWBState, cfg domain.GWBConfig, marketReturn, requestedWithdrawal decimal.Decimal, dt float64) StepResult {
	var res StepResult

	// 1. Rollup, evaluated at the duration observed before this step's time
	// advance, so the first step credits year zero. Rollup stops once the
	// withdrawal phase begins and never lowers a ratcheted base.
	state.GuaranteedBase = BaseAfterRollup(state, cfg)

	// 2. Market growth.
	state.AccountValue = state.AccountValue.Mul(decimal.NewFromInt(1).Add(marketReturn))
	if state.AccountValue.IsNegative() {
		state.AccountValue = decimal.Zero
	}

	// 3. Rider fee, prorated by dt, reduces AV only.
	basis := state.GuaranteedBase
	if cfg.FeeBasis == domain.FeeBasisAccountValue {
		basis = state.AccountValue
	}
	fee := cfg.FeeRate.Mul(basis).Mul(decimal.NewFromFloat(dt))
	if fee.GreaterThan(state.AccountValue) {
		fee = state.AccountValue
	}
	state.AccountValue = state.AccountValue.Sub(fee)
	res.FeeCharged = fee

	// 4. Withdrawal mechanics.
	if requestedWithdrawal.GreaterThan(decimal.Zero) {
		maxContractual := cfg.WithdrawalRate.Mul(state.GuaranteedBase).Mul(decimal.NewFromFloat(dt))
		guaranteed := decimal.Min(requestedWithdrawal, maxContractual)
		avBefore := state.AccountValue

		funded := decimal.Min(requestedWithdrawal, avBefore)
		state.AccountValue = avBefore.Sub(funded)

		// The insurer funds the guaranteed portion the account cannot cover.
		if guaranteed.GreaterThan(avBefore) {
			res.Shortfall = guaranteed.Sub(avBefore)
		}
		res.WithdrawalTaken = funded

		// Excess withdrawals haircut the base pro rata against the
		// pre-withdrawal account value.
		if requestedWithdrawal.GreaterThan(maxContractual) && avBefore.GreaterThan(decimal.Zero) {
			excess := requestedWithdrawal.Sub(maxContractual)
			ratio := decimal.Min(excess.Div(avBefore), decimal.NewFromInt(1))
			state.GuaranteedBase = state.GuaranteedBase.Mul(decimal.NewFromInt(1).Sub(ratio))
		}

		state.WithdrawalPhaseBegan = true
		state.CumulativeWithdrawals = state.CumulativeWithdrawals.Add(funded).Add(res.Shortfall)
	}

	// 5. Advance time; ratchet and high-water-mark on anniversaries only.
	crossed := CrossesAnniversary(state.YearsSinceIssue, dt)
	state.YearsSinceIssue += dt
	if crossed {
		if cfg.RatchetEnabled && state.AccountValue.GreaterThan(state.GuaranteedBase) {
			state.GuaranteedBase = ApplyRatchet(state.GuaranteedBase, state.AccountValue)
			res.RatchetApplied = true
		}
		state.HighWaterMark = decimal.Max(state.HighWaterMark, state.AccountValue)
	}

	return res
}
