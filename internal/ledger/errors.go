package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEntryNotFound   = errors.New("ledger entry not found")
)

// ValidationError rejects a request before any mutation starts.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// InsufficientFundsError rejects a withdrawal that would drive the
// balance negative. It carries enough detail for the caller to show
// the shortfall.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s", e.Balance, e.Requested)
}

func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Balance)
}

// InactiveAccountError rejects ledger operations on accounts outside
// the active state.
type InactiveAccountError struct {
	Status models.AccountStatus
}

func (e *InactiveAccountError) Error() string {
	return fmt.Sprintf("account is %s", e.Status)
}
