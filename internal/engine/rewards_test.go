package engine

import (
	"testing"

	"github.com/lumafin/credit-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestIsGoodRepayment(t *testing.T) {
	assert.True(t, IsGoodRepayment(100, 1000))  // exactly 10%
	assert.True(t, IsGoodRepayment(500, 1000))  // well above
	assert.False(t, IsGoodRepayment(99.99, 1000))
	assert.False(t, IsGoodRepayment(50, 0)) // nothing owed, nothing to reward
}

func TestNextAPR(t *testing.T) {
	assert.Equal(t, 23.0, NextAPR(25))
	assert.Equal(t, 15.0, NextAPR(17))
	// last step shrinks to respect the floor
	assert.Equal(t, 10.0, NextAPR(11))
	assert.Equal(t, 10.0, NextAPR(10))
}

func TestAdvanceReward(t *testing.T) {
	// first two good repayments only move the counter
	out := AdvanceReward(25, 0)
	assert.Equal(t, RewardOutcome{GoodRepaymentCount: 1, NewAPR: 25}, out)
	out = AdvanceReward(25, 1)
	assert.Equal(t, RewardOutcome{GoodRepaymentCount: 2, NewAPR: 25}, out)

	// the third grants a step down and resets the counter
	out = AdvanceReward(25, 2)
	assert.Equal(t, RewardOutcome{GoodRepaymentCount: 0, NewAPR: 23, Adjusted: true}, out)
}

func TestAdvanceRewardAtFloor(t *testing.T) {
	// at the floor the counter keeps going but no adjustment is produced
	out := AdvanceReward(models.MinAPR, 2)
	assert.False(t, out.Adjusted)
	assert.Equal(t, models.MinAPR, out.NewAPR)
	assert.Equal(t, 3, out.GoodRepaymentCount)
}

func TestRewardLadderMonotonic(t *testing.T) {
	apr := models.MaxAPR
	count := 0
	var steps []float64
	for i := 0; i < 30; i++ {
		out := AdvanceReward(apr, count)
		assert.LessOrEqual(t, out.NewAPR, apr, "APR must never increase")
		assert.GreaterOrEqual(t, out.NewAPR, models.MinAPR)
		if out.Adjusted {
			steps = append(steps, out.NewAPR)
		}
		apr = out.NewAPR
		count = out.GoodRepaymentCount
	}
	// 25 → 23 → ... → 11 → 10, then it stays put
	assert.Equal(t, []float64{23, 21, 19, 17, 15, 13, 11, 10}, steps)
	assert.Equal(t, models.MinAPR, apr)
}
