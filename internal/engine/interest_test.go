package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDailyInterest(t *testing.T) {
	// balance=2500 at 22.5% APR accrues 1.5411 per day (to 4dp)
	got := DailyInterest(2500, 22.5)
	assert.InDelta(t, 1.5411, got, 0.0001)
}

func TestDailyInterestFormula(t *testing.T) {
	cases := []struct {
		balance float64
		apr     float64
	}{
		{0, 10},
		{1000, 10},
		{1000, 25},
		{2500, 22.5},
		{99999.99, 17},
	}
	for _, c := range cases {
		assert.Equal(t, c.balance*c.apr/36500, DailyInterest(c.balance, c.apr),
			"balance=%.2f apr=%.1f", c.balance, c.apr)
	}
}

func TestEstimateMonthlyInterest(t *testing.T) {
	got := EstimateMonthlyInterest(2500, 22.5)
	assert.InDelta(t, 46.2329, got, 0.0001)

	// the estimate is flat, not compounded
	assert.Equal(t, DailyInterest(2500, 22.5)*30, got)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 250.00, Round2(250.0))
	assert.Equal(t, 1.54, Round2(1.54109))
	assert.Equal(t, 1.55, Round2(1.546))
	assert.Equal(t, 0.0, Round2(0))
}
