package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/lumafin/credit-service/internal/models"
)

// Store is the persistence surface consumed by the service layer.
type Store interface {
	CreateLoanAccount(ctx context.Context, acct *models.LoanAccount) error
	GetLoanAccount(ctx context.Context, id int64) (*models.LoanAccount, error)
	ListLoanAccountsByUser(ctx context.Context, userID int64) ([]models.LoanAccount, error)
	ListActiveAccountIDs(ctx context.Context) ([]int64, error)
	ListTransactions(ctx context.Context, accountID int64, newestFirst bool) ([]models.Transaction, error)
	BalanceAsOf(ctx context.Context, accountID int64, ts time.Time) (float64, error)
	ListRepayments(ctx context.Context, accountID int64) ([]models.Repayment, error)
	FindRepaymentByKey(ctx context.Context, key string) (*models.Repayment, error)
	ListRewardAdjustments(ctx context.Context, userID int64) ([]models.RewardAdjustment, error)
	Mutate(ctx context.Context, accountID int64, fn MutateFunc) error
}

// MutationTx stages writes for one account mutation. Everything staged through
// it commits together or not at all.
type MutationTx interface {
	AppendTransaction(t *models.Transaction) error
	SaveRepayment(rep *models.Repayment) error
	SaveRewardAdjustment(adj *models.RewardAdjustment) error
	UpdateAccount(acct *models.LoanAccount) error
}

// MutateFunc runs with the account row locked for the duration of the
// transaction.
type MutateFunc func(tx MutationTx, acct *models.LoanAccount) error

var _ Store = (*Repository)(nil)

// Mutate loads the account under an exclusive row lock, runs fn, and commits
// its staged writes atomically. Any error rolls the whole transaction back,
// leaving the ledger untouched.
func (r *Repository) Mutate(ctx context.Context, accountID int64, fn MutateFunc) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT` + loanAccountColumns + `
		FROM credit.loan_accounts WHERE id = $1 FOR UPDATE`
	acct, err := scanLoanAccount(dbTx.QueryRowContext(ctx, query, accountID))
	if err != nil {
		return err
	}

	if err := fn(&mutationTx{ctx: ctx, tx: dbTx}, acct); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type mutationTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (m *mutationTx) AppendTransaction(t *models.Transaction) error {
	query := `
		INSERT INTO credit.transactions (loan_account_id, type, amount, date, description, is_late_fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := m.tx.QueryRowContext(m.ctx, query,
		t.LoanAccountID, t.Type, t.Amount, t.Date, t.Description, t.IsLateFee).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (m *mutationTx) SaveRepayment(rep *models.Repayment) error {
	query := `
		INSERT INTO credit.repayments
			(loan_account_id, amount, repayment_date, method, percentage_of_balance, interest_saved, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := m.tx.QueryRowContext(m.ctx, query,
		rep.LoanAccountID, rep.Amount, rep.RepaymentDate, rep.Method,
		rep.PercentageOfBalance, rep.InterestSaved, rep.IdempotencyKey).
		Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to save repayment: %w", err)
	}
	return nil
}

func (m *mutationTx) SaveRewardAdjustment(adj *models.RewardAdjustment) error {
	query := `
		INSERT INTO credit.reward_adjustments (user_id, old_apr, new_apr, adjusted_on, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := m.tx.QueryRowContext(m.ctx, query,
		adj.UserID, adj.OldAPR, adj.NewAPR, adj.AdjustedOn, adj.Reason).
		Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save reward adjustment: %w", err)
	}
	return nil
}

// UpdateAccount writes the mutated account state back, guarded by the version
// column. The row lock makes a conflict unlikely, the version check turns a
// missed one into an explicit error instead of a lost update.
func (m *mutationTx) UpdateAccount(acct *models.LoanAccount) error {
	query := `
		UPDATE credit.loan_accounts
		SET balance = $2, apr = $3, last_accrual_date = $4, good_repayment_count = $5,
			is_active = $6, credit_limit = $7, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND version = $8`
	res, err := m.tx.ExecContext(m.ctx, query,
		acct.ID, acct.Balance, acct.APR, acct.LastAccrualDate,
		acct.GoodRepaymentCount, acct.IsActive, acct.CreditLimit, acct.Version)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	acct.Version++
	return nil
}
