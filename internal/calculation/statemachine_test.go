package calculation

import (
	"testing"

	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
)

func testRider() domain.GWBConfig {
	return domain.GWBConfig{
		RollupKind:     domain.RollupCompound,
		RollupRate:     decimal.NewFromFloat(0.06),
		RollupCapYears: decimal.NewFromInt(10),
		WithdrawalRate: decimal.NewFromFloat(0.05),
		FeeRate:        decimal.Zero,
		RatchetEnabled: false,
		FeeBasis:       domain.FeeBasisGWB,
	}
}

func mustState(t *testing.T, premium int64) *domain.GWBState {
	t.Helper()
	state, err := domain.NewGWBState(decimal.NewFromInt(premium))
	if err != nil {
		t.Fatalf("failed to create state: %v", err)
	}
	return state
}

func TestCompoundRollupDominatesSimple(t *testing.T) {
	base := decimal.NewFromInt(100000)
	rate := decimal.NewFromFloat(0.05)

	for years := 0.5; years <= 15; years += 0.5 {
		simple := SimpleRollup(base, rate, years, 10)
		compound := CompoundRollup(base, rate, years, 10)
		if compound.LessThan(simple) {
			t.Errorf("compound rollup %s below simple %s at %.1f years", compound, simple, years)
		}
	}
}

func TestRollupCapStopsAccrual(t *testing.T) {
	base := decimal.NewFromInt(100000)
	rate := decimal.NewFromFloat(0.06)

	atCap := CompoundRollup(base, rate, 10, 10)
	pastCap := CompoundRollup(base, rate, 25, 10)
	if !atCap.Equal(pastCap) {
		t.Errorf("rollup should stop at the cap: %s at cap vs %s past cap", atCap, pastCap)
	}

	atCapSimple := SimpleRollup(base, rate, 10, 10)
	pastCapSimple := SimpleRollup(base, rate, 25, 10)
	if !atCapSimple.Equal(pastCapSimple) {
		t.Errorf("simple rollup should stop at the cap: %s vs %s", atCapSimple, pastCapSimple)
	}
}

func TestApplyRatchet(t *testing.T) {
	gwb := decimal.NewFromInt(100000)
	avHigh := decimal.NewFromInt(130000)
	avLow := decimal.NewFromInt(80000)

	up := ApplyRatchet(gwb, avHigh)
	if !up.Equal(avHigh) {
		t.Errorf("ratchet should step up to AV, got %s", up)
	}
	// Idempotent: applying twice with the same AV is a no-op.
	if !ApplyRatchet(up, avHigh).Equal(up) {
		t.Errorf("ratchet should be idempotent")
	}
	if !ApplyRatchet(gwb, avLow).Equal(gwb) {
		t.Errorf("ratchet must never reduce the base")
	}
}

func TestCrossesAnniversary(t *testing.T) {
	tests := []struct {
		years, dt float64
		want      bool
	}{
		{0, 1.0, true},
		{0, 1.0 / 12, false},
		{11.0 / 12, 1.0 / 12, true},
		{1.5, 0.25, false},
		{1.75, 0.25, true},
		{3.0, 1.0, true},
	}
	for _, tt := range tests {
		if got := CrossesAnniversary(tt.years, tt.dt); got != tt.want {
			t.Errorf("CrossesAnniversary(%v, %v) = %v, want %v", tt.years, tt.dt, got, tt.want)
		}
	}
}

func TestRollupObservedBeforeTimeAdvance(t *testing.T) {
	// Premium 100,000, compound 6% capped at 10 years, no withdrawal, no
	// fee: step 1 credits year 0 (no growth), step 2 credits year 1.
	cfg := testRider()
	state := mustState(t, 100000)

	Step(state, cfg, decimal.Zero, decimal.Zero, 1.0)
	if !state.GuaranteedBase.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("after step 1 GWB should be 100000, got %s", state.GuaranteedBase)
	}

	Step(state, cfg, decimal.Zero, decimal.Zero, 1.0)
	gwb := state.GuaranteedBase.InexactFloat64()
	if gwb < 105999 || gwb > 106001 {
		t.Fatalf("after step 2 GWB should be about 106000, got %s", state.GuaranteedBase)
	}
}

func TestBaseAfterRollupSizesFirstWithdrawal(t *testing.T) {
	// After one annual step the base stands at 100,000 but the next step
	// will credit year 1. A full-utilization withdrawal sized against the
	// rolled base draws 5% of 106,000, not 5% of the stale 100,000.
	cfg := testRider()
	state := mustState(t, 100000)

	Step(state, cfg, decimal.Zero, decimal.Zero, 1.0)

	rolled := BaseAfterRollup(state, cfg)
	if v := rolled.InexactFloat64(); v < 105999 || v > 106001 {
		t.Fatalf("rolled base should be about 106000, got %s", rolled)
	}

	requested := cfg.WithdrawalRate.Mul(rolled)
	res := Step(state, cfg, decimal.Zero, requested, 1.0)

	if !res.WithdrawalTaken.Equal(requested) {
		t.Errorf("full contractual withdrawal should be %s, got %s", requested, res.WithdrawalTaken)
	}
	if !state.GuaranteedBase.Equal(rolled) {
		t.Errorf("withdrawing the contractual max must not haircut the base, got %s", state.GuaranteedBase)
	}

	// Once the withdrawal phase has begun the base no longer rolls.
	if !BaseAfterRollup(state, cfg).Equal(state.GuaranteedBase) {
		t.Errorf("rolled base should equal the frozen base after the first withdrawal")
	}
}

func TestContractualWithdrawalLeavesBaseIntact(t *testing.T) {
	// GWB 100,000 at 5% with an annual step and no fee: withdrawing
	// exactly 5,000 reduces AV by 5,000 and leaves GWB untouched.
	cfg := testRider()
	state := mustState(t, 100000)

	res := Step(state, cfg, decimal.Zero, decimal.NewFromInt(5000), 1.0)

	if !state.AccountValue.Equal(decimal.NewFromInt(95000)) {
		t.Errorf("AV should drop to 95000, got %s", state.AccountValue)
	}
	if !state.GuaranteedBase.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("GWB should be unchanged, got %s", state.GuaranteedBase)
	}
	if !state.WithdrawalPhaseBegan {
		t.Error("withdrawal phase should have begun")
	}
	if !res.WithdrawalTaken.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("withdrawal taken should be 5000, got %s", res.WithdrawalTaken)
	}
	if !res.Shortfall.IsZero() {
		t.Errorf("no shortfall expected, got %s", res.Shortfall)
	}
}

func TestExcessWithdrawalHaircutsBase(t *testing.T) {
	cfg := testRider()
	state := mustState(t, 100000)

	// Twice the contractual maximum triggers the excess penalty.
	Step(state, cfg, decimal.Zero, decimal.NewFromInt(10000), 1.0)

	if !state.GuaranteedBase.LessThan(decimal.NewFromInt(100000)) {
		t.Fatalf("excess withdrawal should reduce GWB, got %s", state.GuaranteedBase)
	}
	if state.GuaranteedBase.IsNegative() {
		t.Fatalf("GWB must stay non-negative, got %s", state.GuaranteedBase)
	}
	if !state.AccountValue.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("AV should drop by the full request, got %s", state.AccountValue)
	}
}

func TestLargerExcessNeverRaisesBase(t *testing.T) {
	prev := decimal.NewFromInt(100001)
	for _, request := range []int64{5000, 6000, 10000, 25000, 60000, 100000, 200000} {
		cfg := testRider()
		state := mustState(t, 100000)
		Step(state, cfg, decimal.Zero, decimal.NewFromInt(request), 1.0)

		if state.GuaranteedBase.GreaterThan(prev) {
			t.Errorf("GWB after withdrawing %d (%s) exceeds GWB after smaller request (%s)",
				request, state.GuaranteedBase, prev)
		}
		if state.GuaranteedBase.IsNegative() {
			t.Errorf("GWB went negative after withdrawing %d", request)
		}
		prev = state.GuaranteedBase
	}
}

func TestRiderFeeReducesOnlyAccountValue(t *testing.T) {
	cfg := testRider()
	cfg.FeeRate = decimal.NewFromFloat(0.01)
	state := mustState(t, 100000)

	res := Step(state, cfg, decimal.Zero, decimal.Zero, 1.0)

	if !res.FeeCharged.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("fee should be 1%% of GWB = 1000, got %s", res.FeeCharged)
	}
	if !state.AccountValue.Equal(decimal.NewFromInt(99000)) {
		t.Errorf("AV should be 99000 after fee, got %s", state.AccountValue)
	}
	if !state.GuaranteedBase.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("fee must never reduce GWB, got %s", state.GuaranteedBase)
	}
}

func TestRiderFeeOnAccountValueBasis(t *testing.T) {
	cfg := testRider()
	cfg.FeeRate = decimal.NewFromFloat(0.01)
	cfg.FeeBasis = domain.FeeBasisAccountValue
	cfg.RollupRate = decimal.Zero
	state := mustState(t, 100000)

	res := Step(state, cfg, decimal.NewFromFloat(0.10), decimal.Zero, 1.0)

	// The fee is charged against the grown account value, not the base:
	// 1% of 110,000, where the GWB basis would have charged 1,000.
	if !res.FeeCharged.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("fee should be 1%% of AV = 1100, got %s", res.FeeCharged)
	}
	if !state.AccountValue.Equal(decimal.NewFromInt(108900)) {
		t.Errorf("AV should be 108900 after fee, got %s", state.AccountValue)
	}
	if !state.GuaranteedBase.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("fee must never reduce GWB, got %s", state.GuaranteedBase)
	}
}

func TestFeeCannotPushAccountValueNegative(t *testing.T) {
	cfg := testRider()
	cfg.FeeRate = decimal.NewFromFloat(0.01)
	state := mustState(t, 100000)
	state.AccountValue = decimal.NewFromInt(500) // deep in the money

	Step(state, cfg, decimal.Zero, decimal.Zero, 1.0)

	if state.AccountValue.IsNegative() {
		t.Fatalf("AV must be floored at zero, got %s", state.AccountValue)
	}
}

func TestShortfallWhenAccountDepleted(t *testing.T) {
	cfg := testRider()
	state := mustState(t, 100000)
	state.AccountValue = decimal.Zero

	res := Step(state, cfg, decimal.Zero, decimal.NewFromInt(5000), 1.0)

	if !res.Shortfall.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("insurer should fund the full guaranteed withdrawal, got shortfall %s", res.Shortfall)
	}
	if !res.WithdrawalTaken.IsZero() {
		t.Errorf("nothing should come from an empty account, got %s", res.WithdrawalTaken)
	}
	if state.AccountValue.IsNegative() {
		t.Errorf("AV must remain zero, got %s", state.AccountValue)
	}
}

func TestRatchetAppliesAtAnniversaryOnly(t *testing.T) {
	cfg := testRider()
	cfg.RatchetEnabled = true
	cfg.RollupRate = decimal.Zero
	state := mustState(t, 100000)

	// Half-year step with strong growth: no anniversary, no ratchet.
	res := Step(state, cfg, decimal.NewFromFloat(0.30), decimal.Zero, 0.5)
	if res.RatchetApplied {
		t.Fatal("ratchet must not apply mid-year")
	}
	if !state.GuaranteedBase.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("GWB should be unchanged mid-year, got %s", state.GuaranteedBase)
	}

	// Second half-year crosses the anniversary; GWB steps up to AV.
	res = Step(state, cfg, decimal.NewFromFloat(0.10), decimal.Zero, 0.5)
	if !res.RatchetApplied {
		t.Fatal("ratchet should apply at the anniversary")
	}
	if !state.GuaranteedBase.Equal(state.AccountValue) {
		t.Fatalf("GWB %s should equal AV %s after ratchet", state.GuaranteedBase, state.AccountValue)
	}
	if !state.HighWaterMark.Equal(state.AccountValue) {
		t.Fatalf("high-water-mark should track peak AV, got %s", state.HighWaterMark)
	}
}

func TestYearsSinceIssueAdvancesByStep(t *testing.T) {
	cfg := testRider()
	state := mustState(t, 100000)

	dt := 1.0 / 12
	for i := 0; i < 24; i++ {
		before := state.YearsSinceIssue
		Step(state, cfg, decimal.Zero, decimal.Zero, dt)
		if state.YearsSinceIssue <= before {
			t.Fatalf("years since issue must strictly increase, %v -> %v", before, state.YearsSinceIssue)
		}
	}
}

func TestCumulativeWithdrawalsMonotonic(t *testing.T) {
	cfg := testRider()
	state := mustState(t, 100000)

	prev := decimal.Zero
	for i := 0; i < 30; i++ {
		Step(state, cfg, decimal.Zero, decimal.NewFromInt(5000), 1.0)
		if state.CumulativeWithdrawals.LessThan(prev) {
			t.Fatalf("cumulative withdrawals must be non-decreasing")
		}
		prev = state.CumulativeWithdrawals
	}
}
