package service

import "errors"

// Domain errors surfaced to callers. Validation failures are detected before
// any ledger write; storage failures are wrapped and keep their cause.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidAPR             = errors.New("apr out of range")
	ErrAccountNotFound        = errors.New("loan account not found")
	ErrAccountInactive        = errors.New("loan account is inactive")
	ErrAlreadyAccrued         = errors.New("interest already accrued for this date")
	ErrCreditLimitExceeded    = errors.New("credit limit exceeded")
	ErrConcurrentModification = errors.New("concurrent modification, retry")
)
