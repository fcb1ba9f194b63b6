package models

import "time"

// Transaction types recorded in the ledger.
const (
	TransactionTypeInterest  = "interest"
	TransactionTypeFee       = "fee"
	TransactionTypeRepayment = "repayment"
	TransactionTypePurchase  = "purchase"
)

// Transaction represents an immutable ledger entry. Repayments decrease the
// account balance; interest, fees and purchases increase it.
type Transaction struct {
	ID            int64     `json:"id"`
	LoanAccountID int64     `json:"loan_account_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	Description   string    `json:"description"`
	IsLateFee     bool      `json:"is_late_fee"`
	CreatedAt     time.Time `json:"created_at"`
}

// SignedAmount returns the amount with the sign it contributes to the balance.
func (t *Transaction) SignedAmount() float64 {
	if t.Type == TransactionTypeRepayment {
		return -t.Amount
	}
	return t.Amount
}
