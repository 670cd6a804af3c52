package domain

import (
	"github.com/shopspring/decimal"
)

// GLWBPriceResult is the aggregated output of a pricing run. Price is the
// guarantee cost per unit of premium. The behavioral summaries are nil
// unless the corresponding model was supplied to the simulator, so
// "not configured" is observably different from "configured but zero".
type GLWBPriceResult struct {
	Price     decimal.Decimal `json:"price"`
	StdError  decimal.Decimal `json:"std_error"`
	ProbRuin  decimal.Decimal `json:"prob_ruin"`
	ProbLapse decimal.Decimal `json:"prob_lapse"`
	NumPaths  int             `json:"num_paths"`

	// PathContributions holds each path's discounted shortfall per unit
	// premium, in path order.
	PathContributions []decimal.Decimal `json:"path_contributions,omitempty"`

	// Present only when the matching behavioral model was configured.
	AvgUtilization     *decimal.Decimal        `json:"avg_utilization,omitempty"`
	ExpensesPV         *decimal.Decimal        `json:"expenses_pv,omitempty"`
	LapseYearHistogram map[int]decimal.Decimal `json:"lapse_year_histogram,omitempty"`
}
