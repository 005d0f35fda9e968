package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/auth"
	"github.com/SagarCoder007/modern-banking-system/internal/httputil"
	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// writeDomainError maps the typed errors raised by the core packages
// onto HTTP status codes. Anything unrecognized is a generic 500; the
// detail goes to the log, not the client.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteError(w, http.StatusBadRequest, verr.Message)
		return
	}

	var iferr *ledger.InsufficientFundsError
	if errors.As(err, &iferr) {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     "insufficient funds",
			"balance":   iferr.Balance,
			"requested": iferr.Requested,
			"shortfall": iferr.Shortfall(),
		})
		return
	}

	var iaerr *ledger.InactiveAccountError
	if errors.As(err, &iaerr) {
		httputil.WriteError(w, http.StatusForbidden, iaerr.Error())
		return
	}

	switch {
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrEntryNotFound),
		errors.Is(err, accounts.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUserExists):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		logger.Log.Error("request failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseAmount turns the request's amount string into a decimal without
// ever passing through a binary float.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, &ledger.ValidationError{Message: "amount is required"}
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ledger.ValidationError{Message: "amount must be a decimal number"}
	}
	return amount, nil
}

type userView struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

func viewUser(u *models.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

type accountView struct {
	ID            uint                 `json:"id"`
	AccountNumber string               `json:"account_number"`
	Balance       decimal.Decimal      `json:"balance"`
	AccountType   models.AccountType   `json:"account_type"`
	Status        models.AccountStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

func viewAccount(a *models.Account) accountView {
	return accountView{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		AccountType:   a.AccountType,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}

type entryView struct {
	ID              uint                   `json:"id"`
	Type            models.TransactionType `json:"type"`
	Amount          decimal.Decimal        `json:"amount"`
	BalanceBefore   decimal.Decimal        `json:"balance_before"`
	BalanceAfter    decimal.Decimal        `json:"balance_after"`
	Description     string                 `json:"description"`
	ReferenceNumber string                 `json:"reference_number"`
	CreatedAt       time.Time              `json:"created_at"`
}

func viewEntry(t *models.Transaction) entryView {
	return entryView{
		ID:              t.ID,
		Type:            t.Type,
		Amount:          t.Amount,
		BalanceBefore:   t.BalanceBefore,
		BalanceAfter:    t.BalanceAfter,
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		CreatedAt:       t.CreatedAt,
	}
}

func viewEntries(list []models.Transaction) []entryView {
	views := make([]entryView, len(list))
	for i := range list {
		views[i] = viewEntry(&list[i])
	}
	return views
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
