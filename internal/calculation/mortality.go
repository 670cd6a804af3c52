package calculation

import (
	"math"

	"github.com/glwbgo/annuity-pricer/internal/domain"
)

// MortalityModel exposes an annual mortality probability by attained age.
// Implementations must return values in [0, 1], reaching 1 at TerminalAge.
type MortalityModel interface {
	Qx(age int) float64
	TerminalAge() int
}

// annuitantTerminalAge is the age past which survival probability is zero.
const annuitantTerminalAge = 120

// AnnuitantMortality is the default mortality model: a Gompertz-Makeham
// curve with gender-differentiated senescence parameters.
type AnnuitantMortality struct {
	makeham float64
	level   float64
	growth  float64
}

// NewAnnuitantMortality builds the default curve for the given gender.
func NewAnnuitantMortality(gender domain.Gender) *AnnuitantMortality {
	if gender == domain.GenderFemale {
		return &AnnuitantMortality{makeham: 0.0002, level: 1.4e-5, growth: 1.101}
	}
	return &AnnuitantMortality{makeham: 0.0002, level: 2.7e-5, growth: 1.098}
}

// Qx returns the annual mortality probability at the given attained age,
// monotonically increasing in age and capped at 1.
func (m *AnnuitantMortality) Qx(age int) float64 {
	if age < 0 {
		age = 0
	}
	if age >= annuitantTerminalAge {
		return 1.0
	}
	q := m.makeham + m.level*math.Pow(m.growth, float64(age))
	if q > 1.0 {
		return 1.0
	}
	return q
}

// TerminalAge returns the age at which survival reaches zero.
func (m *AnnuitantMortality) TerminalAge() int {
	return annuitantTerminalAge
}

// StepQx converts an annual mortality probability to a sub-annual step of
// length dt years: 1 - (1-qx)^dt.
func StepQx(qxAnnual, dt float64) float64 {
	if qxAnnual >= 1.0 {
		return 1.0
	}
	if qxAnnual <= 0 {
		return 0
	}
	return 1 - math.Pow(1-qxAnnual, dt)
}

// SurvivalProbability returns the probability of surviving nYears whole
// years from the given age, strictly non-increasing in nYears.
func SurvivalProbability(age, nYears int, m MortalityModel) float64 {
	p := 1.0
	for k := 0; k < nYears; k++ {
		p *= 1 - m.Qx(age+k)
		if p == 0 {
			break
		}
	}
	return p
}

// LifeExpectancy returns the curtate life expectancy at the given age,
// summing survival probabilities out to the model's terminal age.
func LifeExpectancy(age int, m MortalityModel) float64 {
	e := 0.0
	for k := 1; age+k <= m.TerminalAge(); k++ {
		p := SurvivalProbability(age, k, m)
		if p == 0 {
			break
		}
		e += p
	}
	return e
}

// SurvivalFromLapses converts a sequence of per-period lapse rates into the
// cumulative in-force probability after each period: the running product of
// (1 - rate), monotonically non-increasing.
func SurvivalFromLapses(rates []float64) []float64 {
	out := make([]float64, len(rates))
	p := 1.0
	for i, r := range rates {
		p *= 1 - r
		out[i] = p
	}
	return out
}
