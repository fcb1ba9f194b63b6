package models

// RepaymentOption is a priced repayment choice, derived on demand and never persisted
type RepaymentOption struct {
	Percentage    float64 `json:"percentage"`
	Amount        float64 `json:"amount"`
	InterestToPay float64 `json:"interest_to_pay"`
	InterestSaved float64 `json:"interest_saved"`
}

// RepaymentOptions is the response for the repayment options query
type RepaymentOptions struct {
	CurrentBalance float64           `json:"current_balance"`
	CurrentAPR     float64           `json:"current_apr"`
	Options        []RepaymentOption `json:"options"`
}

// ProjectionPoint is one day of the 30-day balance projection
type ProjectionPoint struct {
	Day                int     `json:"day"`
	NoPaymentBalance   float64 `json:"no_payment_balance"`
	WithPaymentBalance float64 `json:"with_payment_balance"`
}

// ImpactProjection represents the effect of a candidate payment over the
// projection horizon
type ImpactProjection struct {
	PaymentAmount float64           `json:"payment_amount"`
	NewBalance    float64           `json:"new_balance"`
	InterestSaved float64           `json:"interest_saved"`
	InterestToPay float64           `json:"interest_to_pay"`
	Days          []ProjectionPoint `json:"days"`
}
