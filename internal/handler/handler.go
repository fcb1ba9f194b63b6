package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lumafin/credit-service/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes attaches all engine endpoints to the router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/loan-accounts", h.CreateLoanAccount).Methods("POST")
	r.HandleFunc("/loan-accounts/{id}", h.GetLoanAccount).Methods("GET")
	r.HandleFunc("/loan-accounts/{id}", h.UpdateLoanAccount).Methods("PATCH")
	r.HandleFunc("/loan-accounts/{id}/repayment-options", h.GetRepaymentOptions).Methods("GET")
	r.HandleFunc("/loan-accounts/{id}/apply-interest", h.ApplyDailyInterest).Methods("POST")
	r.HandleFunc("/loan-accounts/{id}/apply-late-fee", h.ApplyLateFee).Methods("POST")
	r.HandleFunc("/loan-accounts/{id}/purchases", h.PostPurchase).Methods("POST")
	r.HandleFunc("/loan-accounts/{id}/transactions", h.ListTransactions).Methods("GET")
	r.HandleFunc("/loan-accounts/{id}/repayments", h.ListRepayments).Methods("GET")
	r.HandleFunc("/loan-accounts/{id}/projection", h.GetProjection).Methods("GET")
	r.HandleFunc("/loan-accounts/{id}/statement", h.GetStatement).Methods("GET")
	r.HandleFunc("/loan-accounts/{id}/reconciliation", h.GetReconciliation).Methods("GET")
	r.HandleFunc("/repayments", h.MakeRepayment).Methods("POST")
	r.HandleFunc("/users/{id}/loan-accounts", h.ListUserLoanAccounts).Methods("GET")
	r.HandleFunc("/users/{id}/rewards", h.GetRewardHistory).Methods("GET")
}

// CreateLoanAccount handles account creation
func (h *Handler) CreateLoanAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64    `json:"user_id"`
		CreditLimit float64  `json:"credit_limit"`
		APR         *float64 `json:"apr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	acct, err := h.svc.CreateLoanAccount(r.Context(), req.UserID, req.CreditLimit, req.APR)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, acct)
}

// GetLoanAccount handles account retrieval
func (h *Handler) GetLoanAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	acct, err := h.svc.GetLoanAccount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// UpdateLoanAccount handles credit limit changes
func (h *Handler) UpdateLoanAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		CreditLimit float64 `json:"credit_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	acct, err := h.svc.UpdateCreditLimit(r.Context(), id, req.CreditLimit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acct)
}

// GetRepaymentOptions returns the priced repayment tiers for an account
func (h *Handler) GetRepaymentOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	opts, err := h.svc.GetRepaymentOptions(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, opts)
}

// ApplyDailyInterest posts one day of interest. A duplicate call for the same
// date is reported as a no-op success with the unchanged account state.
func (h *Handler) ApplyDailyInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	txn, acct, err := h.svc.ApplyDailyAccrual(r.Context(), id)
	if errors.Is(err, service.ErrAlreadyAccrued) {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"already_accrued": true,
			"account":         acct,
		})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": txn,
		"account":     acct,
	})
}

// ApplyLateFee posts the late payment fee to an account
func (h *Handler) ApplyLateFee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	txn, err := h.svc.ApplyLateFee(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, txn)
}

// PostPurchase records a purchase against the credit line
func (h *Handler) PostPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	txn, err := h.svc.PostPurchase(r.Context(), id, req.Amount, req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, txn)
}

// MakeRepayment handles repayment creation
func (h *Handler) MakeRepayment(w http.ResponseWriter, r *http.Request) {
	var req service.RepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	rep, err := h.svc.MakeRepayment(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rep)
}

// ListTransactions returns the account ledger, newest first
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	txns, err := h.svc.ListTransactions(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txns)
}

// ListRepayments returns the repayment history for an account
func (h *Handler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	reps, err := h.svc.ListRepayments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reps)
}

// GetProjection returns the 30-day impact projection for ?amount=
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	amount := 0.0
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}
		amount = parsed
	}
	impact, err := h.svc.ProjectRepaymentImpact(r.Context(), id, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, impact)
}

// GetStatement returns the 30-day account statement
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	st, err := h.svc.GetStatement(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}

// GetReconciliation recomputes the balance from the ledger and reports
// whether it matches the account record
func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ledgerBalance, consistent, err := h.svc.ReconcileBalance(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ledger_balance": ledgerBalance,
		"consistent":     consistent,
	})
}

// ListUserLoanAccounts returns all loan accounts owned by a user
func (h *Handler) ListUserLoanAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	accts, err := h.svc.ListLoanAccounts(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accts)
}

// GetRewardHistory returns the APR adjustment history for a user
func (h *Handler) GetRewardHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	adjs, err := h.svc.GetRewardHistory(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, adjs)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidAPR):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAccountInactive), errors.Is(err, service.ErrCreditLimitExceeded):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrConcurrentModification):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
