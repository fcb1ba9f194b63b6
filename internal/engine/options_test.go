package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRepaymentOptions(t *testing.T) {
	resp := BuildRepaymentOptions(1000, 22.5)

	assert.Equal(t, 1000.0, resp.CurrentBalance)
	assert.Equal(t, 22.5, resp.CurrentAPR)
	require.Len(t, resp.Options, 5)

	assert.Equal(t, []float64{5, 10, 25, 50, 100},
		[]float64{resp.Options[0].Percentage, resp.Options[1].Percentage,
			resp.Options[2].Percentage, resp.Options[3].Percentage, resp.Options[4].Percentage})

	// tier amounts are straight percentages of the balance
	assert.Equal(t, 50.00, resp.Options[0].Amount)
	assert.Equal(t, 100.00, resp.Options[1].Amount)
	assert.Equal(t, 250.00, resp.Options[2].Amount)
	assert.Equal(t, 500.00, resp.Options[3].Amount)
	assert.Equal(t, 1000.00, resp.Options[4].Amount)

	// bigger payments always save more interest and leave less to pay
	for i := 1; i < len(resp.Options); i++ {
		assert.GreaterOrEqual(t, resp.Options[i].InterestSaved, resp.Options[i-1].InterestSaved)
		assert.LessOrEqual(t, resp.Options[i].InterestToPay, resp.Options[i-1].InterestToPay)
	}

	// the 100% tier leaves nothing to accrue on
	assert.Equal(t, 0.0, resp.Options[4].InterestToPay)
}

func TestBuildRepaymentOptionsMatchesProjector(t *testing.T) {
	resp := BuildRepaymentOptions(2500, 25)
	for _, opt := range resp.Options {
		impact := ProjectImpact(2500, 25, opt.Amount)
		assert.Equal(t, Round2(impact.InterestSaved), opt.InterestSaved, "tier %.0f", opt.Percentage)
		assert.Equal(t, Round2(impact.InterestToPay), opt.InterestToPay, "tier %.0f", opt.Percentage)
	}
}

func TestBuildRepaymentOptionsZeroBalance(t *testing.T) {
	resp := BuildRepaymentOptions(0, 25)
	require.Len(t, resp.Options, 5)
	for _, opt := range resp.Options {
		assert.Equal(t, 0.0, opt.Amount)
		assert.Equal(t, 0.0, opt.InterestSaved)
		assert.Equal(t, 0.0, opt.InterestToPay)
	}
}
