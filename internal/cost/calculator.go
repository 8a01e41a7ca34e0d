// Package cost estimates API spend from token usage.
package cost

import (
	"math"

	"github.com/cageside/picks-cli/internal/model"
)

// Rates holds per-million-token pricing in USD.
type Rates struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// DefaultRates returns Claude Sonnet pricing.
func DefaultRates() Rates {
	return Rates{InputPerMTok: 3.00, OutputPerMTok: 15.00}
}

// Calculator converts token counts into dollar estimates.
type Calculator struct {
	rates Rates
}

// NewCalculator returns a Calculator using the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Estimate prices a single request. Cost is rounded to five decimal places;
// token counts pass through untouched.
func (c *Calculator) Estimate(inputTokens, outputTokens int64) model.CostEstimate {
	inputCost := float64(inputTokens) / 1_000_000 * c.rates.InputPerMTok
	outputCost := float64(outputTokens) / 1_000_000 * c.rates.OutputPerMTok
	return model.CostEstimate{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      math.Round((inputCost+outputCost)*1e5) / 1e5,
	}
}
