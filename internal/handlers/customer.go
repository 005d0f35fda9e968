package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/httputil"
	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/middleware"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
	"github.com/SagarCoder007/modern-banking-system/internal/store"
)

type CustomerHandler struct {
	accounts *accounts.Service
	engine   *ledger.Engine
	reports  *store.ReportStore
}

func NewCustomerHandler(accountsSvc *accounts.Service, engine *ledger.Engine, reports *store.ReportStore) *CustomerHandler {
	return &CustomerHandler{accounts: accountsSvc, engine: engine, reports: reports}
}

// ownAccount resolves the calling customer's account.
func (h *CustomerHandler) ownAccount(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return nil, false
	}
	account, err := h.accounts.ByUser(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return account, true
}

func (h *CustomerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownAccount(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account_number": account.AccountNumber,
		"balance":        account.Balance,
		"status":         account.Status,
	})
}

type moneyRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (h *CustomerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyMoney(w, r, models.TypeDeposit)
}

func (h *CustomerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyMoney(w, r, models.TypeWithdrawal)
}

func (h *CustomerHandler) applyMoney(w http.ResponseWriter, r *http.Request, typ models.TransactionType) {
	account, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	var req moneyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var result *ledger.Result
	if typ == models.TypeDeposit {
		result, err = h.engine.Deposit(r.Context(), account.ID, amount, req.Description)
	} else {
		result, err = h.engine.Withdraw(r.Context(), account.ID, amount, req.Description)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account":     viewAccount(result.Account),
		"transaction": viewEntry(result.Entry),
	})
}

func (h *CustomerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	q := store.StatementQuery{
		AccountID: account.ID,
		Page:      queryInt(r, "page", 1),
		PageSize:  queryInt(r, "limit", 50),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		switch models.TransactionType(t) {
		case models.TypeDeposit, models.TypeWithdrawal:
			q.Type = models.TransactionType(t)
		default:
			httputil.WriteError(w, http.StatusBadRequest, "type must be deposit or withdrawal")
			return
		}
	}

	entries, total, err := h.reports.Statement(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"transactions": viewEntries(entries),
		"pagination":   pagination{Page: q.Page, Limit: q.PageSize, Total: total},
	})
}

func (h *CustomerHandler) TransactionByReference(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	ref := chi.URLParam(r, "reference")
	entry, err := h.engine.EntryByReference(r.Context(), ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// A customer may only read their own ledger.
	if entry.AccountID != account.ID {
		httputil.WriteError(w, http.StatusNotFound, ledger.ErrEntryNotFound.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, viewEntry(entry))
}

// Summary is the small dashboard block a customer sees after login.
func (h *CustomerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownAccount(w, r)
	if !ok {
		return
	}

	stats, err := h.reports.Statistics(r.Context(), account.ID, queryInt(r, "days", 30))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	recent, _, err := h.reports.Statement(r.Context(), store.StatementQuery{
		AccountID: account.ID,
		Page:      1,
		PageSize:  5,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account":             viewAccount(account),
		"statistics":          stats,
		"recent_transactions": viewEntries(recent),
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
