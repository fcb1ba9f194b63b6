package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lumafin/credit-service/internal/models"
)

// Storage-level sentinel errors. The service layer maps these onto its own
// error taxonomy.
var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("account version conflict")
	ErrDuplicateKey    = errors.New("idempotency key already used")
)

// Repository provides database operations against the credit schema
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateLoanAccount creates a new loan account in the database
func (r *Repository) CreateLoanAccount(ctx context.Context, acct *models.LoanAccount) error {
	query := `
		INSERT INTO credit.loan_accounts
			(user_id, balance, credit_limit, apr, opened_date, is_active, good_repayment_count, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, version, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		acct.UserID, acct.Balance, acct.CreditLimit, acct.APR, acct.OpenedDate, acct.IsActive).
		Scan(&acct.ID, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan account: %w", err)
	}
	return nil
}

const loanAccountColumns = `
	id, user_id, balance, credit_limit, apr, opened_date, is_active,
	last_accrual_date, good_repayment_count, version, created_at, updated_at`

func scanLoanAccount(row *sql.Row) (*models.LoanAccount, error) {
	acct := &models.LoanAccount{}
	err := row.Scan(
		&acct.ID, &acct.UserID, &acct.Balance, &acct.CreditLimit, &acct.APR,
		&acct.OpenedDate, &acct.IsActive, &acct.LastAccrualDate,
		&acct.GoodRepaymentCount, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan account: %w", err)
	}
	return acct, nil
}

// GetLoanAccount retrieves a loan account by ID
func (r *Repository) GetLoanAccount(ctx context.Context, id int64) (*models.LoanAccount, error) {
	query := `SELECT` + loanAccountColumns + `
		FROM credit.loan_accounts WHERE id = $1`
	return scanLoanAccount(r.db.QueryRowContext(ctx, query, id))
}

// ListLoanAccountsByUser returns every loan account owned by a user
func (r *Repository) ListLoanAccountsByUser(ctx context.Context, userID int64) ([]models.LoanAccount, error) {
	query := `SELECT` + loanAccountColumns + `
		FROM credit.loan_accounts WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan accounts: %w", err)
	}
	defer rows.Close()

	var accts []models.LoanAccount
	for rows.Next() {
		var acct models.LoanAccount
		if err := rows.Scan(
			&acct.ID, &acct.UserID, &acct.Balance, &acct.CreditLimit, &acct.APR,
			&acct.OpenedDate, &acct.IsActive, &acct.LastAccrualDate,
			&acct.GoodRepaymentCount, &acct.Version, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan account: %w", err)
		}
		accts = append(accts, acct)
	}
	return accts, rows.Err()
}

// ListActiveAccountIDs returns the IDs of all active loan accounts
func (r *Repository) ListActiveAccountIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM credit.loan_accounts WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListTransactions returns the ledger for an account. Ordering is by date
// with insertion order breaking ties, newest or oldest first per the caller.
func (r *Repository) ListTransactions(ctx context.Context, accountID int64, newestFirst bool) ([]models.Transaction, error) {
	order := "date ASC, id ASC"
	if newestFirst {
		order = "date DESC, id DESC"
	}
	query := `
		SELECT id, loan_account_id, type, amount, date, description, is_late_fee, created_at
		FROM credit.transactions
		WHERE loan_account_id = $1
		ORDER BY ` + order
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.LoanAccountID, &t.Type, &t.Amount, &t.Date,
			&t.Description, &t.IsLateFee, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// BalanceAsOf folds the signed ledger up to and including the given timestamp
func (r *Repository) BalanceAsOf(ctx context.Context, accountID int64, ts time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'repayment' THEN -amount ELSE amount END), 0)
		FROM credit.transactions
		WHERE loan_account_id = $1 AND date <= $2`
	var balance float64
	if err := r.db.QueryRowContext(ctx, query, accountID, ts).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// ListRepayments returns the repayments for an account, newest first
func (r *Repository) ListRepayments(ctx context.Context, accountID int64) ([]models.Repayment, error) {
	query := `
		SELECT id, loan_account_id, amount, repayment_date, method, percentage_of_balance, interest_saved, idempotency_key, created_at
		FROM credit.repayments
		WHERE loan_account_id = $1
		ORDER BY repayment_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list repayments: %w", err)
	}
	defer rows.Close()

	var reps []models.Repayment
	for rows.Next() {
		var rep models.Repayment
		if err := rows.Scan(&rep.ID, &rep.LoanAccountID, &rep.Amount, &rep.RepaymentDate,
			&rep.Method, &rep.PercentageOfBalance, &rep.InterestSaved, &rep.IdempotencyKey,
			&rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repayment: %w", err)
		}
		reps = append(reps, rep)
	}
	return reps, rows.Err()
}

// FindRepaymentByKey looks up a repayment by its idempotency key. Returns
// (nil, nil) when no repayment used the key.
func (r *Repository) FindRepaymentByKey(ctx context.Context, key string) (*models.Repayment, error) {
	query := `
		SELECT id, loan_account_id, amount, repayment_date, method, percentage_of_balance, interest_saved, idempotency_key, created_at
		FROM credit.repayments
		WHERE idempotency_key = $1`
	rep := &models.Repayment{}
	err := r.db.QueryRowContext(ctx, query, key).
		Scan(&rep.ID, &rep.LoanAccountID, &rep.Amount, &rep.RepaymentDate,
			&rep.Method, &rep.PercentageOfBalance, &rep.InterestSaved, &rep.IdempotencyKey,
			&rep.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find repayment: %w", err)
	}
	return rep, nil
}

// ListRewardAdjustments returns the APR adjustment history for a user, most
// recent first
func (r *Repository) ListRewardAdjustments(ctx context.Context, userID int64) ([]models.RewardAdjustment, error) {
	query := `
		SELECT id, user_id, old_apr, new_apr, adjusted_on, reason, created_at
		FROM credit.reward_adjustments
		WHERE user_id = $1
		ORDER BY adjusted_on DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward adjustments: %w", err)
	}
	defer rows.Close()

	var adjs []models.RewardAdjustment
	for rows.Next() {
		var adj models.RewardAdjustment
		if err := rows.Scan(&adj.ID, &adj.UserID, &adj.OldAPR, &adj.NewAPR,
			&adj.AdjustedOn, &adj.Reason, &adj.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reward adjustment: %w", err)
		}
		adjs = append(adjs, adj)
	}
	return adjs, rows.Err()
}
