package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lumafin/credit-service/internal/models"
)

// MemoryStore is an in-memory Store used for tests and local development
// (DB_CONN=memory). Mutations run against a staged copy of the account and
// commit only when the callback succeeds, matching the transaction semantics
// of the postgres store.
type MemoryStore struct {
	mu          sync.Mutex
	Accounts    map[int64]*models.LoanAccount
	Txns        []models.Transaction
	Repayments  []models.Repayment
	Adjustments []models.RewardAdjustment
	nextID      int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore initializes an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Accounts: map[int64]*models.LoanAccount{}}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateLoanAccount(_ context.Context, acct *models.LoanAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct.ID = m.id()
	acct.Version = 1
	acct.CreatedAt = time.Now()
	acct.UpdatedAt = acct.CreatedAt
	cp := *acct
	m.Accounts[acct.ID] = &cp
	return nil
}

func (m *MemoryStore) GetLoanAccount(_ context.Context, id int64) (*models.LoanAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.Accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

func (m *MemoryStore) ListLoanAccountsByUser(_ context.Context, userID int64) ([]models.LoanAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LoanAccount
	for _, acct := range m.Accounts {
		if acct.UserID == userID {
			out = append(out, *acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListActiveAccountIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, acct := range m.Accounts {
		if acct.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, accountID int64, newestFirst bool) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.Txns {
		if t.LoanAccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			if newestFirst {
				return out[i].Date.After(out[j].Date)
			}
			return out[i].Date.Before(out[j].Date)
		}
		if newestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) BalanceAsOf(_ context.Context, accountID int64, ts time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var balance float64
	for _, t := range m.Txns {
		if t.LoanAccountID == accountID && !t.Date.After(ts) {
			balance += t.SignedAmount()
		}
	}
	return balance, nil
}

func (m *MemoryStore) ListRepayments(_ context.Context, accountID int64) ([]models.Repayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Repayment
	for _, r := range m.Repayments {
		if r.LoanAccountID == accountID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) FindRepaymentByKey(_ context.Context, key string) (*models.Repayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.Repayments {
		if r.IdempotencyKey == key {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListRewardAdjustments(_ context.Context, userID int64) ([]models.RewardAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RewardAdjustment
	for _, a := range m.Adjustments {
		if a.UserID == userID {
			cp := a
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Mutate serializes all mutations behind one lock, which gives the same
// per-account isolation the postgres store gets from row locks.
func (m *MemoryStore) Mutate(_ context.Context, accountID int64, fn MutateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.Accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	staged := *acct
	tx := &memoryTx{store: m}
	if err := fn(tx, &staged); err != nil {
		return err
	}
	m.Txns = append(m.Txns, tx.txns...)
	m.Repayments = append(m.Repayments, tx.reps...)
	m.Adjustments = append(m.Adjustments, tx.adjs...)
	staged.UpdatedAt = time.Now()
	*acct = staged
	return nil
}

type memoryTx struct {
	store *MemoryStore
	txns  []models.Transaction
	reps  []models.Repayment
	adjs  []models.RewardAdjustment
}

func (tx *memoryTx) AppendTransaction(t *models.Transaction) error {
	t.ID = tx.store.id()
	t.CreatedAt = time.Now()
	tx.txns = append(tx.txns, *t)
	return nil
}

// SaveRepayment enforces idempotency key uniqueness like the UNIQUE
// constraint on credit.repayments does.
func (tx *memoryTx) SaveRepayment(rep *models.Repayment) error {
	for _, r := range tx.store.Repayments {
		if r.IdempotencyKey == rep.IdempotencyKey {
			return ErrDuplicateKey
		}
	}
	for _, r := range tx.reps {
		if r.IdempotencyKey == rep.IdempotencyKey {
			return ErrDuplicateKey
		}
	}
	rep.ID = tx.store.id()
	rep.CreatedAt = time.Now()
	tx.reps = append(tx.reps, *rep)
	return nil
}

func (tx *memoryTx) SaveRewardAdjustment(adj *models.RewardAdjustment) error {
	adj.ID = tx.store.id()
	adj.CreatedAt = time.Now()
	tx.adjs = append(tx.adjs, *adj)
	return nil
}

func (tx *memoryTx) UpdateAccount(acct *models.LoanAccount) error {
	acct.Version++
	return nil
}
