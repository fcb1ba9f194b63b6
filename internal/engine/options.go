package engine

import "github.com/lumafin/credit-service/internal/models"

// OptionTiers are the repayment percentages offered to every account, in
// ascending order.
var OptionTiers = []float64{5, 10, 25, 50, 100}

// BuildRepaymentOptions prices one repayment option per tier for the given
// account state. Pure query, no side effects.
func BuildRepaymentOptions(balance, apr float64) models.RepaymentOptions {
	options := make([]models.RepaymentOption, 0, len(OptionTiers))
	for _, pct := range OptionTiers {
		amount := Round2(pct / 100 * balance)
		impact := ProjectImpact(balance, apr, amount)
		options = append(options, models.RepaymentOption{
			Percentage:    pct,
			Amount:        amount,
			InterestToPay: Round2(impact.InterestToPay),
			InterestSaved: Round2(impact.InterestSaved),
		})
	}
	return models.RepaymentOptions{
		CurrentBalance: balance,
		CurrentAPR:     apr,
		Options:        options,
	}
}
