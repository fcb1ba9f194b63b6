package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lumafin/credit-service/internal/config"
	"github.com/lumafin/credit-service/internal/engine"
	"github.com/lumafin/credit-service/internal/models"
	"github.com/lumafin/credit-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// Notifier delivers out-of-band notifications about account events. Delivery
// is best-effort and never part of the ledger transaction.
type Notifier interface {
	NotifyRewardGranted(userID int64, oldAPR, newAPR float64) error
	NotifyStatement(userID int64, st *models.Statement) error
}

// Service handles business logic for loan accounts
type Service struct {
	store    repository.Store
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
	now      func() time.Time
}

// NewService initializes a new service. The notifier may be nil.
func NewService(store repository.Store, log *logrus.Logger, cfg *config.Config, notifier Notifier) *Service {
	return &Service{store: store, log: log, config: cfg, notifier: notifier, now: time.Now}
}

// CreateLoanAccount opens a new revolving credit account. New accounts start
// at the maximum APR unless a valid one is supplied.
func (s *Service) CreateLoanAccount(ctx context.Context, userID int64, creditLimit float64, apr *float64) (*models.LoanAccount, error) {
	if creditLimit <= 0 {
		return nil, fmt.Errorf("%w: credit limit must be positive", ErrInvalidAmount)
	}
	accountAPR := models.MaxAPR
	if apr != nil {
		if *apr < models.MinAPR || *apr > models.MaxAPR {
			return nil, fmt.Errorf("%w: must be between %.1f and %.1f", ErrInvalidAPR, models.MinAPR, models.MaxAPR)
		}
		accountAPR = *apr
	}

	acct := &models.LoanAccount{
		UserID:      userID,
		Balance:     0,
		CreditLimit: creditLimit,
		APR:         accountAPR,
		OpenedDate:  s.now().UTC(),
		IsActive:    true,
	}
	if err := s.store.CreateLoanAccount(ctx, acct); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"account_id": acct.ID, "user_id": userID}).
		Info("Loan account created")
	return acct, nil
}

// GetLoanAccount retrieves an account by ID
func (s *Service) GetLoanAccount(ctx context.Context, id int64) (*models.LoanAccount, error) {
	acct, err := s.store.GetLoanAccount(ctx, id)
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return acct, nil
}

// UpdateCreditLimit changes the credit limit of an account. The new limit
// must still cover the outstanding balance, checked under the account lock so
// a purchase committing concurrently cannot make the check stale.
func (s *Service) UpdateCreditLimit(ctx context.Context, id int64, limit float64) (*models.LoanAccount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: credit limit must be positive", ErrInvalidAmount)
	}
	var updated *models.LoanAccount
	err := s.store.Mutate(ctx, id, func(tx repository.MutationTx, acct *models.LoanAccount) error {
		if limit < acct.Balance {
			return fmt.Errorf("%w: credit limit %.2f is below the current balance %.2f", ErrInvalidAmount, limit, acct.Balance)
		}
		acct.CreditLimit = limit
		updated = acct
		return tx.UpdateAccount(acct)
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return updated, nil
}

// ListLoanAccounts returns all loan accounts belonging to a user
func (s *Service) ListLoanAccounts(ctx context.Context, userID int64) ([]models.LoanAccount, error) {
	return s.store.ListLoanAccountsByUser(ctx, userID)
}

// ApplyDailyAccrual computes and posts one day of interest for the account.
// Calling it again on the same date is a no-op: the caller gets
// ErrAlreadyAccrued together with the unchanged account state.
func (s *Service) ApplyDailyAccrual(ctx context.Context, accountID int64) (*models.Transaction, *models.LoanAccount, error) {
	var (
		posted *models.Transaction
		state  *models.LoanAccount
	)
	today := dateOnly(s.now())

	err := s.store.Mutate(ctx, accountID, func(tx repository.MutationTx, acct *models.LoanAccount) error {
		state = acct
		if !acct.IsActive {
			return ErrAccountInactive
		}
		if acct.LastAccrualDate != nil && dateOnly(*acct.LastAccrualDate).Equal(today) {
			return ErrAlreadyAccrued
		}

		interest := engine.Round2(engine.DailyInterest(acct.Balance, acct.APR))
		if interest > 0 {
			posted = &models.Transaction{
				LoanAccountID: acct.ID,
				Type:          models.TransactionTypeInterest,
				Amount:        interest,
				Date:          s.now().UTC(),
				Description:   fmt.Sprintf("Daily interest at %.2f%% APR", acct.APR),
			}
			if err := tx.AppendTransaction(posted); err != nil {
				return err
			}
			acct.Balance = engine.Round2(acct.Balance + interest)
		}
		acct.LastAccrualDate = &today
		return tx.UpdateAccount(acct)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyAccrued) {
			return nil, state, err
		}
		return nil, nil, s.mapStoreErr(err)
	}

	s.log.WithFields(logrus.Fields{"account_id": accountID, "date": today.Format("2006-01-02")}).
		Debug("Daily interest applied")
	return posted, state, nil
}

// RunDailyAccrual applies daily interest to every active account. Accounts
// are independent, so one failure only skips that account.
func (s *Service) RunDailyAccrual(ctx context.Context) (int, error) {
	ids, err := s.store.ListActiveAccountIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load accrual batch: %w", err)
	}

	applied := 0
	for _, id := range ids {
		if _, _, err := s.ApplyDailyAccrual(ctx, id); err != nil {
			if errors.Is(err, ErrAlreadyAccrued) {
				continue
			}
			s.log.WithField("account_id", id).WithError(err).Error("Accrual failed")
			continue
		}
		applied++
	}
	s.log.WithFields(logrus.Fields{"accounts": len(ids), "applied": applied}).
		Info("Daily accrual batch finished")
	return applied, nil
}

// RepaymentRequest carries the input for MakeRepayment. IdempotencyKey is
// caller-supplied; retries with the same key return the original repayment.
type RepaymentRequest struct {
	LoanAccountID  int64   `json:"loan_account_id"`
	Amount         float64 `json:"amount"`
	Method         string  `json:"method"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// MakeRepayment posts a repayment to the ledger and advances the reward state
// machine in the same transaction, so the APR seen by the next accrual is
// always current.
func (s *Service) MakeRepayment(ctx context.Context, req RepaymentRequest) (*models.Repayment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if req.Method == "" {
		req.Method = "bank_transfer"
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	} else {
		existing, err := s.store.FindRepaymentByKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	var (
		rep     *models.Repayment
		granted *models.RewardAdjustment
		userID  int64
	)
	err := s.store.Mutate(ctx, req.LoanAccountID, func(tx repository.MutationTx, acct *models.LoanAccount) error {
		if !acct.IsActive {
			return ErrAccountInactive
		}
		if req.Amount > acct.Balance {
			return fmt.Errorf("%w: amount must be between 0.01 and %.2f", ErrInvalidAmount, acct.Balance)
		}
		userID = acct.UserID
		balanceBefore := acct.Balance
		now := s.now().UTC()

		impact := engine.ProjectImpact(balanceBefore, acct.APR, req.Amount)
		if err := tx.AppendTransaction(&models.Transaction{
			LoanAccountID: acct.ID,
			Type:          models.TransactionTypeRepayment,
			Amount:        req.Amount,
			Date:          now,
			Description:   fmt.Sprintf("Repayment via %s", req.Method),
		}); err != nil {
			return err
		}
		acct.Balance = engine.Round2(balanceBefore - req.Amount)

		rep = &models.Repayment{
			LoanAccountID:       acct.ID,
			Amount:              req.Amount,
			RepaymentDate:       now,
			Method:              req.Method,
			PercentageOfBalance: engine.Round2(req.Amount / balanceBefore * 100),
			InterestSaved:       engine.Round2(impact.InterestSaved),
			IdempotencyKey:      req.IdempotencyKey,
		}
		if err := tx.SaveRepayment(rep); err != nil {
			return err
		}

		if engine.IsGoodRepayment(req.Amount, balanceBefore) {
			outcome := engine.AdvanceReward(acct.APR, acct.GoodRepaymentCount)
			if outcome.Adjusted {
				granted = &models.RewardAdjustment{
					UserID:     acct.UserID,
					OldAPR:     acct.APR,
					NewAPR:     outcome.NewAPR,
					AdjustedOn: now,
					Reason:     fmt.Sprintf("%d good repayments", models.RequiredGoodRepayments),
				}
				if err := tx.SaveRewardAdjustment(granted); err != nil {
					return err
				}
			}
			acct.APR = outcome.NewAPR
			acct.GoodRepaymentCount = outcome.GoodRepaymentCount
		}

		return tx.UpdateAccount(acct)
	})
	if err != nil {
		// A concurrent retry with the same key can slip past the lookup above
		// and fail on the unique key instead. Return the original repayment.
		if errors.Is(err, repository.ErrDuplicateKey) {
			existing, findErr := s.store.FindRepaymentByKey(ctx, req.IdempotencyKey)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, s.mapStoreErr(err)
	}

	s.log.WithFields(logrus.Fields{
		"account_id": req.LoanAccountID,
		"amount":     req.Amount,
		"rewarded":   granted != nil,
	}).Info("Repayment processed")

	if granted != nil && s.notifier != nil {
		if err := s.notifier.NotifyRewardGranted(userID, granted.OldAPR, granted.NewAPR); err != nil {
			s.log.WithError(err).Warn("Failed to send reward notification")
		}
	}
	return rep, nil
}

// ApplyLateFee posts the configured late payment fee to the account
func (s *Service) ApplyLateFee(ctx context.Context, accountID int64) (*models.Transaction, error) {
	var posted *models.Transaction
	err := s.store.Mutate(ctx, accountID, func(tx repository.MutationTx, acct *models.LoanAccount) error {
		if !acct.IsActive {
			return ErrAccountInactive
		}
		posted = &models.Transaction{
			LoanAccountID: acct.ID,
			Type:          models.TransactionTypeFee,
			Amount:        s.config.LateFeeAmount,
			Date:          s.now().UTC(),
			Description:   "Late payment fee",
			IsLateFee:     true,
		}
		if err := tx.AppendTransaction(posted); err != nil {
			return err
		}
		acct.Balance = engine.Round2(acct.Balance + posted.Amount)
		return tx.UpdateAccount(acct)
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}

	s.log.WithField("account_id", accountID).Info("Late fee applied")
	return posted, nil
}

// PostPurchase records a purchase against the account's credit line
func (s *Service) PostPurchase(ctx context.Context, accountID int64, amount float64, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	var posted *models.Transaction
	err := s.store.Mutate(ctx, accountID, func(tx repository.MutationTx, acct *models.LoanAccount) error {
		if !acct.IsActive {
			return ErrAccountInactive
		}
		if acct.Balance+amount > acct.CreditLimit {
			return fmt.Errorf("%w: available credit is %.2f", ErrCreditLimitExceeded, acct.AvailableCredit())
		}
		posted = &models.Transaction{
			LoanAccountID: acct.ID,
			Type:          models.TransactionTypePurchase,
			Amount:        amount,
			Date:          s.now().UTC(),
			Description:   description,
		}
		if err := tx.AppendTransaction(posted); err != nil {
			return err
		}
		acct.Balance = engine.Round2(acct.Balance + amount)
		return tx.UpdateAccount(acct)
	})
	if err != nil {
		return nil, s.mapStoreErr(err)
	}
	return posted, nil
}

// GetRepaymentOptions prices the standard repayment tiers for the account.
// Pure query, no ledger writes.
func (s *Service) GetRepaymentOptions(ctx context.Context, accountID int64) (*models.RepaymentOptions, error) {
	acct, err := s.GetLoanAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := engine.BuildRepaymentOptions(acct.Balance, acct.APR)
	return &resp, nil
}

// ProjectRepaymentImpact returns the 30-day projection for a candidate
// payment amount, for the visualization layer.
func (s *Service) ProjectRepaymentImpact(ctx context.Context, accountID int64, amount float64) (*models.ImpactProjection, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidAmount)
	}
	acct, err := s.GetLoanAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if amount > acct.Balance {
		return nil, fmt.Errorf("%w: amount must be between 0 and %.2f", ErrInvalidAmount, acct.Balance)
	}
	impact := engine.ProjectImpact(acct.Balance, acct.APR, amount)
	return &impact, nil
}

// ListTransactions returns the account ledger, newest first
func (s *Service) ListTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	if _, err := s.GetLoanAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, accountID, true)
}

// ListRepayments returns the repayment history for an account, newest first
func (s *Service) ListRepayments(ctx context.Context, accountID int64) ([]models.Repayment, error) {
	if _, err := s.GetLoanAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.ListRepayments(ctx, accountID)
}

// GetRewardHistory returns the APR adjustment history for a user
func (s *Service) GetRewardHistory(ctx context.Context, userID int64) ([]models.RewardAdjustment, error) {
	return s.store.ListRewardAdjustments(ctx, userID)
}

// GetStatement summarizes the last 30 days of account activity
func (s *Service) GetStatement(ctx context.Context, accountID int64) (*models.Statement, error) {
	acct, err := s.GetLoanAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	periodEnd := s.now().UTC()
	periodStart := periodEnd.AddDate(0, 0, -30)

	opening, err := s.store.BalanceAsOf(ctx, accountID, periodStart)
	if err != nil {
		return nil, err
	}

	txns, err := s.store.ListTransactions(ctx, accountID, false)
	if err != nil {
		return nil, err
	}

	st := &models.Statement{
		LoanAccountID:      accountID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		OpeningBalance:     engine.Round2(opening),
		ClosingBalance:     acct.Balance,
		CurrentAPR:         acct.APR,
		DailyInterest:      engine.Round2(engine.DailyInterest(acct.Balance, acct.APR)),
		EstMonthlyInterest: engine.Round2(engine.EstimateMonthlyInterest(acct.Balance, acct.APR)),
	}
	for _, t := range txns {
		if t.Date.Before(periodStart) || t.Date.After(periodEnd) {
			continue
		}
		switch t.Type {
		case models.TransactionTypeInterest:
			st.InterestCharged += t.Amount
		case models.TransactionTypeFee:
			st.FeesCharged += t.Amount
		case models.TransactionTypePurchase:
			st.Purchases += t.Amount
		case models.TransactionTypeRepayment:
			st.Repayments += t.Amount
		}
	}
	st.InterestCharged = engine.Round2(st.InterestCharged)
	st.FeesCharged = engine.Round2(st.FeesCharged)
	st.Purchases = engine.Round2(st.Purchases)
	st.Repayments = engine.Round2(st.Repayments)

	if s.notifier != nil {
		if err := s.notifier.NotifyStatement(acct.UserID, st); err != nil {
			s.log.WithError(err).Warn("Failed to send statement notification")
		}
	}
	return st, nil
}

// ReconcileBalance recomputes the account balance from the full ledger and
// compares it with the stored one. The ledger is the source of truth.
func (s *Service) ReconcileBalance(ctx context.Context, accountID int64) (ledgerBalance float64, consistent bool, err error) {
	acct, err := s.GetLoanAccount(ctx, accountID)
	if err != nil {
		return 0, false, err
	}
	txns, err := s.store.ListTransactions(ctx, accountID, false)
	if err != nil {
		return 0, false, err
	}
	ledgerBalance = engine.Round2(engine.BalanceFromLedger(txns))
	return ledgerBalance, ledgerBalance == acct.Balance, nil
}

func (s *Service) mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrConcurrentModification
	default:
		return err
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
