package calculation

import (
	"fmt"
	"math"
	"sync"

	"github.com/glwbgo/annuity-pricer/internal/domain"
	"github.com/shopspring/decimal"
)

// GLWBSimConfig holds Monte Carlo and market settings for a pricing run.
type GLWBSimConfig struct {
	NumPaths     int
	Seed         int64
	StepsPerYear int
	RiskFreeRate decimal.Decimal
	Volatility   decimal.Decimal
}

// Validate checks the simulation settings eagerly.
func (c *GLWBSimConfig) Validate() error {
	if c.NumPaths < 1 {
		return fmt.Errorf("number of paths must be at least 1, got %d", c.NumPaths)
	}
	if c.StepsPerYear < 1 {
		return fmt.Errorf("steps per year must be at least 1, got %d", c.StepsPerYear)
	}
	if c.Volatility.IsNegative() {
		return fmt.Errorf("volatility cannot be negative")
	}
	if c.RiskFreeRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("risk-free rate must exceed -100%%")
	}
	return nil
}

// GLWBSimulator prices a GLWB rider by Monte Carlo: it drives the
// guarantee state machine through N independent account-value paths,
// weighting guarantee shortfalls by survival and persistency. Behavioral
// models are optional; the engine falls back to contractual defaults.
type GLWBSimulator struct {
	config    GLWBSimConfig
	rider     domain.GWBConfig
	mortality MortalityModel
	paths     PathGenerator

	lapse      LapseModel
	withdrawal WithdrawalModel
	expense    ExpenseModel

	logger Logger
}

// maxConcurrentPaths bounds the worker pool for path simulation.
const maxConcurrentPaths = 10

// NewGLWBSimulator validates the rider terms and simulation settings and
// builds a simulator with the default GBM path generator.
func NewGLWBSimulator(rider domain.GWBConfig, config GLWBSimConfig, mortality MortalityModel) (*GLWBSimulator, error) {
	if err := rider.Validate(); err != nil {
		return nil, fmt.Errorf("rider config validation failed: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("simulation config validation failed: %w", err)
	}
	if mortality == nil {
		return nil, fmt.Errorf("mortality model is required")
	}
	return &GLWBSimulator{
		config:    config,
		rider:     rider,
		mortality: mortality,
		paths:     NewGBMPathGenerator(),
		logger:    NopLogger{},
	}, nil
}

// SetLapseModel wires an optional dynamic lapse model.
func (s *GLWBSimulator) SetLapseModel(m LapseModel) { s.lapse = m }

// SetWithdrawalModel wires an optional utilization model. Without one the
// engine assumes full contractual utilization after the deferral period.
func (s *GLWBSimulator) SetWithdrawalModel(m WithdrawalModel) { s.withdrawal = m }

// SetExpenseModel wires an optional policy expense model.
func (s *GLWBSimulator) SetExpenseModel(m ExpenseModel) { s.expense = m }

// SetPathGenerator replaces the default GBM market path generator.
func (s *GLWBSimulator) SetPathGenerator(g PathGenerator) {
	if g != nil {
		s.paths = g
	}
}

// SetLogger replaces the default no-op logger.
func (s *GLWBSimulator) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// pathOutcome is one path's accumulated statistics. Outcomes are written
// into a slice indexed by path, so parallel execution aggregates in the
// same order as sequential execution.
type pathOutcome struct {
	contribution     decimal.Decimal // discounted shortfall per unit premium
	ruined           bool
	lapseMass        float64
	lapseMassByYear  map[int]float64
	utilizationSum   float64
	utilizationSteps int
	expensesPV       decimal.Decimal
}

// Price runs the Monte Carlo pricing for a single policy. deferralYears
// delays withdrawals; during deferral the rider only rolls up. The same
// seed and configuration always reproduce the identical result: each path
// draws from its own sub-stream at seed+pathIndex.
func (s *GLWBSimulator) Price(premium decimal.Decimal, issueAge, deferralYears int) (*domain.GLWBPriceResult, error) {
	if premium.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("premium must be positive, got %s", premium)
	}
	if issueAge <= 0 {
		return nil, fmt.Errorf("issue age must be positive, got %d", issueAge)
	}
	if issueAge >= s.mortality.TerminalAge() {
		return nil, fmt.Errorf("issue age %d must be below the terminal age %d", issueAge, s.mortality.TerminalAge())
	}
	if deferralYears < 0 {
		return nil, fmt.Errorf("deferral years cannot be negative, got %d", deferralYears)
	}

	seed := s.config.Seed
	if seed == 0 {
		seed = seedFunc()
	}

	horizonYears := s.mortality.TerminalAge() - issueAge
	nSteps := horizonYears * s.config.StepsPerYear
	dt := 1.0 / float64(s.config.StepsPerYear)

	s.logger.Debugf("pricing GLWB: %d paths, %d steps, issue age %d, deferral %d",
		s.config.NumPaths, nSteps, issueAge, deferralYears)

	outcomes := make([]pathOutcome, s.config.NumPaths)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentPaths)

	for i := 0; i < s.config.NumPaths; i++ {
		wg.Add(1)
		go func(pathIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcomes[pathIndex] = s.runPath(premium, issueAge, deferralYears, nSteps, dt, seed+int64(pathIndex))
		}(i)
	}
	wg.Wait()

	return s.aggregate(outcomes), nil
}

// runPath simulates one policy lifetime. The GWBState is exclusively owned
// by this call for its whole lifetime.
func (s *GLWBSimulator) runPath(premium decimal.Decimal, issueAge, deferralYears, nSteps int, dt float64, seed int64) pathOutcome {
	out := pathOutcome{
		contribution: decimal.Zero,
		expensesPV:   decimal.Zero,
	}
	if s.lapse != nil {
		out.lapseMassByYear = make(map[int]float64)
	}

	returns := s.paths.Generate(s.config.RiskFreeRate.InexactFloat64(), s.config.Volatility.InexactFloat64(), dt, nSteps, seed)

	state, err := domain.NewGWBState(premium)
	if err != nil {
		// Premium was validated in Price; this cannot happen.
		s.logger.Errorf("path state init failed: %v", err)
		return out
	}

	rate := s.config.RiskFreeRate.InexactFloat64()
	dtDec := decimal.NewFromFloat(dt)
	survival := 1.0
	persistency := 1.0

	for step := 0; step < nSteps; step++ {
		policyYear := int(math.Floor(state.YearsSinceIssue))
		attainedAge := issueAge + policyYear
		if attainedAge >= s.mortality.TerminalAge() {
			break
		}

		inForce := survival * persistency
		if inForce < 1e-12 {
			break
		}
		if state.AccountValue.IsZero() && state.GuaranteedBase.IsZero() {
			break
		}

		// Requested withdrawal: utilization times the contractual maximum,
		// gated by the deferral period. The maximum is sized against the
		// base as it stands after this step's rollup credit.
		requested := decimal.Zero
		base := BaseAfterRollup(state, s.rider)
		if state.YearsSinceIssue >= float64(deferralYears) && base.GreaterThan(decimal.Zero) {
			maxContractual := s.rider.WithdrawalRate.Mul(base).Mul(dtDec)
			utilization := 1.0
			if s.withdrawal != nil {
				utilization = s.withdrawal.Utilization(base, state.AccountValue, policyYear, attainedAge)
				out.utilizationSum += utilization
				out.utilizationSteps++
			}
			requested = maxContractual.Mul(decimal.NewFromFloat(utilization))
		}

		res := Step(state, s.rider, returns[step], requested, dt)

		// Discount shortfalls at the end-of-step time, weighted by the
		// probability the policy was still in force going into the step.
		discount := math.Exp(-rate * state.YearsSinceIssue)
		if res.Shortfall.IsPositive() {
			out.contribution = out.contribution.Add(res.Shortfall.Mul(decimal.NewFromFloat(discount * inForce)))
		}
		if state.AccountValue.IsZero() && state.GuaranteedBase.GreaterThan(decimal.Zero) {
			out.ruined = true
		}

		if s.expense != nil {
			charge := s.expense.AnnualExpense(state.AccountValue, policyYear).Mul(dtDec)
			if charge.GreaterThan(state.AccountValue) {
				charge = state.AccountValue
			}
			state.AccountValue = state.AccountValue.Sub(charge)
			out.expensesPV = out.expensesPV.Add(charge.Mul(decimal.NewFromFloat(discount * inForce)))
		}

		// Decrement persistency and survival for the next step.
		if s.lapse != nil {
			annual := s.lapse.AnnualRate(state.GuaranteedBase, state.AccountValue, policyYear)
			stepLapse := StepQx(annual, dt)
			mass := survival * persistency * stepLapse
			out.lapseMassByYear[policyYear] += mass
			out.lapseMass += mass
			persistency *= 1 - stepLapse
		}
		survival *= 1 - StepQx(s.mortality.Qx(attainedAge), dt)
	}

	out.contribution = out.contribution.Div(premium)
	return out
}

// aggregate reduces per-path outcomes into the final result. All sums are
// associative and commutative over the path-indexed slice, so the result
// does not depend on worker scheduling.
func (s *GLWBSimulator) aggregate(outcomes []pathOutcome) *domain.GLWBPriceResult {
	n := len(outcomes)
	contributions := make([]decimal.Decimal, n)
	ruinCount := 0
	for i, o := range outcomes {
		contributions[i] = o.contribution
		if o.ruined {
			ruinCount++
		}
	}

	nDec := decimal.NewFromInt(int64(n))
	result := &domain.GLWBPriceResult{
		Price:             meanDecimal(contributions),
		StdError:          sampleStdDev(contributions).Div(decimal.NewFromFloat(math.Sqrt(float64(n)))),
		ProbRuin:          decimal.NewFromInt(int64(ruinCount)).Div(nDec),
		ProbLapse:         decimal.Zero,
		NumPaths:          n,
		PathContributions: contributions,
	}

	if s.lapse != nil {
		totalMass := 0.0
		histogram := make(map[int]decimal.Decimal)
		yearMass := make(map[int]float64)
		for _, o := range outcomes {
			totalMass += o.lapseMass
			for year, mass := range o.lapseMassByYear {
				yearMass[year] += mass
			}
		}
		for year, mass := range yearMass {
			histogram[year] = decimal.NewFromFloat(mass / float64(n))
		}
		result.ProbLapse = decimal.NewFromFloat(totalMass / float64(n))
		result.LapseYearHistogram = histogram
	}

	if s.withdrawal != nil {
		sum := 0.0
		steps := 0
		for _, o := range outcomes {
			sum += o.utilizationSum
			steps += o.utilizationSteps
		}
		avg := decimal.Zero
		if steps > 0 {
			avg = decimal.NewFromFloat(sum / float64(steps))
		}
		result.AvgUtilization = &avg
	}

	if s.expense != nil {
		expenses := make([]decimal.Decimal, n)
		for i, o := range outcomes {
			expenses[i] = o.expensesPV
		}
		pv := meanDecimal(expenses)
		result.ExpensesPV = &pv
	}

	s.logger.Infof("GLWB price %s (stderr %s), ruin probability %s over %d paths",
		result.Price, result.StdError, result.ProbRuin, n)
	return result
}
