package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/httputil"
	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
	"github.com/SagarCoder007/modern-banking-system/internal/store"
)

type BankerHandler struct {
	accounts *accounts.Service
	engine   *ledger.Engine
	reports  *store.ReportStore
}

func NewBankerHandler(accountsSvc *accounts.Service, engine *ledger.Engine, reports *store.ReportStore) *BankerHandler {
	return &BankerHandler{accounts: accountsSvc, engine: engine, reports: reports}
}

func (h *BankerHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	q := accounts.ListQuery{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "limit", 50),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := models.ParseAccountStatus(s)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		q.Status = status
	}
	if t := r.URL.Query().Get("type"); t != "" {
		accountType, err := models.ParseAccountType(t)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		q.Type = accountType
	}

	list, total, err := h.accounts.List(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]accountView, len(list))
	for i := range list {
		views[i] = viewAccount(&list[i])
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"accounts":   views,
		"pagination": pagination{Page: q.Page, Limit: q.PageSize, Total: total},
	})
}

func (h *BankerHandler) Customers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 50)

	users, total, err := h.reports.ListCustomers(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]userView, len(users))
	for i := range users {
		views[i] = viewUser(&users[i])
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"customers":  views,
		"pagination": pagination{Page: page, Limit: limit, Total: total},
	})
}

func (h *BankerHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		httputil.WriteError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	users, err := h.reports.SearchCustomers(r.Context(), term, queryInt(r, "limit", 20))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]userView, len(users))
	for i := range users {
		views[i] = viewUser(&users[i])
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"customers": views})
}

func (h *BankerHandler) CustomerTransactions(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseUint(chi.URLParam(r, "customerID"), 10, 32)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	account, err := h.accounts.ByUser(r.Context(), uint(customerID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	q := store.StatementQuery{
		AccountID: account.ID,
		Page:      queryInt(r, "page", 1),
		PageSize:  queryInt(r, "limit", 50),
	}
	entries, total, err := h.reports.Statement(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account":      viewAccount(account),
		"transactions": viewEntries(entries),
		"pagination":   pagination{Page: q.Page, Limit: q.PageSize, Total: total},
	})
}

func (h *BankerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reports.Overview(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats, err := h.reports.Statistics(r.Context(), 0, queryInt(r, "days", 30))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	recent, err := h.reports.RecentEntries(r.Context(), 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"overview":            overview,
		"statistics":          stats,
		"recent_transactions": viewEntries(recent),
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *BankerHandler) UpdateAccountStatus(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseUint(chi.URLParam(r, "accountID"), 10, 32)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req statusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := models.ParseAccountStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.ChangeStatus(r.Context(), uint(accountID), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, viewAccount(account))
}

type amendRequest struct {
	Description string `json:"description"`
}

// AmendDescription rewrites a ledger entry's description, the only
// field the ledger allows to change.
func (h *BankerHandler) AmendDescription(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	var req amendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.AmendDescription(r.Context(), ref, req.Description); err != nil {
		writeDomainError(w, err)
		return
	}
	entry, err := h.engine.EntryByReference(r.Context(), ref)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, viewEntry(entry))
}
