package calculation

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
)

// PathGenerator produces a sequence of periodic account returns for one
// simulated path. Identical arguments must yield identical sequences.
type PathGenerator interface {
	Generate(rate, volatility, dt float64, nSteps int, seed int64) []decimal.Decimal
}

// GBMPathGenerator draws risk-neutral geometric Brownian motion returns:
// each periodic return is exp((r - sigma^2/2)dt + sigma*sqrt(dt)*Z) - 1.
type GBMPathGenerator struct{}

// NewGBMPathGenerator returns the default market path generator.
func NewGBMPathGenerator() *GBMPathGenerator {
	return &GBMPathGenerator{}
}

// Generate implements PathGenerator using a locally seeded source, so each
// path draws from its own deterministic sub-stream.
func (g *GBMPathGenerator) Generate(rate, volatility, dt float64, nSteps int, seed int64) []decimal.Decimal {
	rng := rand.New(rand.NewSource(seed))
	drift := (rate - 0.5*volatility*volatility) * dt
	diffusion := volatility * math.Sqrt(dt)

	returns := make([]decimal.Decimal, nSteps)
	for i := 0; i < nSteps; i++ {
		z := rng.NormFloat64()
		returns[i] = decimal.NewFromFloat(math.Exp(drift+diffusion*z) - 1)
	}
	return returns
}
