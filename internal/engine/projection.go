package engine

import (
	"math"

	"github.com/lumafin/credit-service/internal/models"
)

// ProjectImpact simulates two 30-day balance trajectories under daily
// compounding: one with no further payment, one assuming an immediate payment
// of paymentAmount. Day 0 holds the starting balances before any accrual.
//
// The interest saved by the payment is the 30-day balance gap minus the
// principal reduction itself, which isolates the interest component. The
// interest to pay is what accrues on the remaining balance over the horizon.
func ProjectImpact(balance, apr, paymentAmount float64) models.ImpactProjection {
	newBalance := math.Max(0, balance-paymentAmount)
	dailyRate := apr / 100 / 365

	days := make([]models.ProjectionPoint, 0, ProjectionDays+1)
	noPayment := balance
	withPayment := newBalance
	for day := 0; day <= ProjectionDays; day++ {
		if day > 0 {
			noPayment += noPayment * dailyRate
			withPayment += withPayment * dailyRate
		}
		days = append(days, models.ProjectionPoint{
			Day:                day,
			NoPaymentBalance:   noPayment,
			WithPaymentBalance: withPayment,
		})
	}

	return models.ImpactProjection{
		PaymentAmount: paymentAmount,
		NewBalance:    newBalance,
		InterestSaved: noPayment - withPayment - paymentAmount,
		InterestToPay: withPayment - newBalance,
		Days:          days,
	}
}
