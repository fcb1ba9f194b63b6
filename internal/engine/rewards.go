package engine

import "github.com/lumafin/credit-service/internal/models"

// IsGoodRepayment reports whether a repayment is large enough to count toward
// the next APR reward: at least 10% of the balance immediately before the
// payment is applied. A zero balance cannot have a good repayment against it.
func IsGoodRepayment(amount, balanceBefore float64) bool {
	if balanceBefore <= 0 {
		return false
	}
	return amount >= models.GoodRepaymentThreshold*balanceBefore
}

// NextAPR returns the APR one reward step below the current one, clamped at
// the floor.
func NextAPR(apr float64) float64 {
	next := apr - models.APRStep
	if next < models.MinAPR {
		next = models.MinAPR
	}
	return next
}

// RewardOutcome describes the effect of one good repayment on the account's
// reward state.
type RewardOutcome struct {
	GoodRepaymentCount int
	NewAPR             float64
	Adjusted           bool
}

// AdvanceReward applies one good repayment to the reward state machine. Every
// third good repayment lowers the APR by one step and resets the count. At the
// APR floor the count keeps growing for display purposes but no adjustment is
// produced.
func AdvanceReward(apr float64, goodRepaymentCount int) RewardOutcome {
	count := goodRepaymentCount + 1
	if count < models.RequiredGoodRepayments {
		return RewardOutcome{GoodRepaymentCount: count, NewAPR: apr}
	}
	if apr <= models.MinAPR {
		return RewardOutcome{GoodRepaymentCount: count, NewAPR: apr}
	}
	return RewardOutcome{
		GoodRepaymentCount: 0,
		NewAPR:             NextAPR(apr),
		Adjusted:           true,
	}
}
