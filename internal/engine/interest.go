// Package engine implements the pure financial calculations for revolving
// credit accounts: interest accrual, repayment impact projection, repayment
// option pricing and APR reward progression. Everything in this package is a
// deterministic function of its inputs; persistence and orchestration live in
// the service layer.
package engine

import "math"

// ProjectionDays is the horizon, in days, for balance projections and for the
// interest figures attached to repayment options.
const ProjectionDays = 30

// DailyInterest returns one day of interest on the given balance at the given
// APR (a percentage, e.g. 22.5 for 22.5%).
func DailyInterest(balance, apr float64) float64 {
	return balance * apr / 36500
}

// EstimateMonthlyInterest returns a flat 30-day interest estimate. It ignores
// daily compounding, so it is suitable for informational summaries only and
// must never be posted to the ledger.
func EstimateMonthlyInterest(balance, apr float64) float64 {
	return DailyInterest(balance, apr) * 30
}

// Round2 rounds a monetary amount to 2 decimal places, half away from zero.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
