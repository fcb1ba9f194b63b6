package models

import "time"

// Statement summarizes account activity for a period
type Statement struct {
	LoanAccountID      int64     `json:"loan_account_id"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
	OpeningBalance     float64   `json:"opening_balance"`
	ClosingBalance     float64   `json:"closing_balance"`
	InterestCharged    float64   `json:"interest_charged"`
	FeesCharged        float64   `json:"fees_charged"`
	Purchases          float64   `json:"purchases"`
	Repayments         float64   `json:"repayments"`
	CurrentAPR         float64   `json:"current_apr"`
	DailyInterest      float64   `json:"daily_interest"`
	EstMonthlyInterest float64   `json:"estimated_monthly_interest"`
}
