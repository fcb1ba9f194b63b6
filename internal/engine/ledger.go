package engine

import (
	"time"

	"github.com/lumafin/credit-service/internal/models"
)

// BalanceFromLedger folds a list of transactions into a balance: repayments
// subtract, everything else adds. The input must already be ordered oldest
// first with insertion order breaking date ties, which is how the store
// returns it.
func BalanceFromLedger(transactions []models.Transaction) float64 {
	var balance float64
	for i := range transactions {
		balance += transactions[i].SignedAmount()
	}
	return balance
}

// BalanceAsOf folds only the transactions dated at or before ts.
func BalanceAsOf(transactions []models.Transaction, ts time.Time) float64 {
	var balance float64
	for i := range transactions {
		if !transactions[i].Date.After(ts) {
			balance += transactions[i].SignedAmount()
		}
	}
	return balance
}
