package models

import "time"

// Repayment represents a completed repayment against a loan account
type Repayment struct {
	ID                  int64     `json:"id"`
	LoanAccountID       int64     `json:"loan_account_id"`
	Amount              float64   `json:"amount"`
	RepaymentDate       time.Time `json:"repayment_date"`
	Method              string    `json:"method"`
	PercentageOfBalance float64   `json:"percentage_of_balance"`
	InterestSaved       float64   `json:"interest_saved"`
	IdempotencyKey      string    `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
}
