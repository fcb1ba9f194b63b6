package models

import "time"

// APR bounds and reward progression constants for every loan account.
const (
	MinAPR  = 10.0
	MaxAPR  = 25.0
	APRStep = 2.0

	// RequiredGoodRepayments is how many good repayments earn one APR reduction.
	RequiredGoodRepayments = 3

	// GoodRepaymentThreshold is the fraction of the pre-payment balance a
	// repayment must cover to count as "good".
	GoodRepaymentThreshold = 0.10
)

// LoanAccount represents a revolving credit account
type LoanAccount struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"user_id"`
	Balance            float64    `json:"current_balance"`
	CreditLimit        float64    `json:"credit_limit"`
	APR                float64    `json:"apr"`
	OpenedDate         time.Time  `json:"opened_date"`
	IsActive           bool       `json:"is_active"`
	LastAccrualDate    *time.Time `json:"last_accrual_date,omitempty"`
	GoodRepaymentCount int        `json:"good_repayment_count"`
	Version            int64      `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// AvailableCredit returns the remaining spending headroom on the account.
func (a *LoanAccount) AvailableCredit() float64 {
	return a.CreditLimit - a.Balance
}
