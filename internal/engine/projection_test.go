package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectImpact(t *testing.T) {
	p := ProjectImpact(1000, 25, 250)

	require.Len(t, p.Days, ProjectionDays+1)
	assert.Equal(t, 750.0, p.NewBalance)

	// day 0 holds the starting balances, before any accrual
	assert.Equal(t, 0, p.Days[0].Day)
	assert.Equal(t, 1000.0, p.Days[0].NoPaymentBalance)
	assert.Equal(t, 750.0, p.Days[0].WithPaymentBalance)

	// each day compounds both trajectories independently
	dailyRate := 25.0 / 100 / 365
	assert.Equal(t, 1000+1000*dailyRate, p.Days[1].NoPaymentBalance)
	assert.Equal(t, 750+750*dailyRate, p.Days[1].WithPaymentBalance)

	// interest saved strips the principal reduction from the 30-day gap
	last := p.Days[ProjectionDays]
	assert.Equal(t, last.NoPaymentBalance-last.WithPaymentBalance-250, p.InterestSaved)
	assert.Equal(t, last.WithPaymentBalance-750, p.InterestToPay)
	assert.Greater(t, p.InterestSaved, 0.0)
}

func TestProjectImpactDeterministic(t *testing.T) {
	a := ProjectImpact(1234.56, 19, 100)
	b := ProjectImpact(1234.56, 19, 100)
	assert.Equal(t, a, b)
}

func TestProjectImpactFullPayment(t *testing.T) {
	p := ProjectImpact(500, 25, 500)
	assert.Equal(t, 0.0, p.NewBalance)
	for _, d := range p.Days {
		assert.Equal(t, 0.0, d.WithPaymentBalance, "day %d", d.Day)
	}
	// paying everything costs no further interest
	assert.Equal(t, 0.0, p.InterestToPay)
}

func TestProjectImpactNoPayment(t *testing.T) {
	p := ProjectImpact(500, 25, 0)
	for _, d := range p.Days {
		assert.Equal(t, d.NoPaymentBalance, d.WithPaymentBalance, "day %d", d.Day)
	}
	assert.Equal(t, 0.0, p.InterestSaved)
}

func TestProjectImpactZeroBalance(t *testing.T) {
	p := ProjectImpact(0, 25, 0)
	assert.Equal(t, 0.0, p.NewBalance)
	assert.Equal(t, 0.0, p.InterestSaved)
	assert.Equal(t, 0.0, p.InterestToPay)
}
