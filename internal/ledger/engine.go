// Package ledger implements the transaction engine: every balance
// mutation runs as one atomic unit that updates the account row under a
// row-level lock and appends an immutable ledger entry. An outside
// reader never sees one effect without the other.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// Store is the persistence surface the engine needs. Methods taking
// part in a mutation are called on the Store passed to the Atomically
// callback, which must provide transactional semantics: either every
// write inside the callback commits, or none do. AccountForUpdate must
// hold a row-level lock on the account until the surrounding
// transaction ends.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Store) error) error
	AccountByID(ctx context.Context, id uint) (*models.Account, error)
	AccountForUpdate(ctx context.Context, id uint) (*models.Account, error)
	SaveBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error
	CreateEntry(ctx context.Context, entry *models.Transaction) error
	ReferenceExists(ctx context.Context, ref string) (bool, error)
	EntryByReference(ctx context.Context, ref string) (*models.Transaction, error)
	AmendDescription(ctx context.Context, ref string, description string) error
}

// Policy bounds single-operation amounts. The same bounds apply to
// deposits and withdrawals.
type Policy struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		MinAmount: decimal.RequireFromString("1.00"),
		MaxAmount: decimal.RequireFromString("50000.00"),
	}
}

func (p Policy) validate(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Message: "amount must be positive"}
	}
	if amount.LessThan(p.MinAmount) {
		return &ValidationError{Message: fmt.Sprintf("minimum amount is $%s", p.MinAmount)}
	}
	if amount.GreaterThan(p.MaxAmount) {
		return &ValidationError{Message: fmt.Sprintf("maximum amount is $%s", p.MaxAmount)}
	}
	return nil
}

// Result is the outcome of a committed ledger operation.
type Result struct {
	Account *models.Account
	Entry   *models.Transaction
}

type Engine struct {
	store  Store
	policy Policy
	now    func() time.Time
}

func NewEngine(store Store, policy Policy) *Engine {
	return &Engine{store: store, policy: policy, now: time.Now}
}

// ValidateAmount checks an amount against the engine's policy without
// touching any account. Callers that create state before depositing
// use it to reject the amount first.
func (e *Engine) ValidateAmount(amount decimal.Decimal) error {
	return e.policy.validate(amount)
}

// Deposit credits amount to the account and appends the matching
// ledger entry.
func (e *Engine) Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*Result, error) {
	return e.apply(ctx, accountID, models.TypeDeposit, amount, description)
}

// Withdraw debits amount from the account. A withdrawal that would
// drive the balance negative fails with InsufficientFundsError and
// leaves no trace: balance unchanged, no entry written.
func (e *Engine) Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*Result, error) {
	return e.apply(ctx, accountID, models.TypeWithdrawal, amount, description)
}

func (e *Engine) apply(ctx context.Context, accountID uint, typ models.TransactionType, amount decimal.Decimal, description string) (*Result, error) {
	if err := e.policy.validate(amount); err != nil {
		return nil, err
	}

	// Status gate runs before the transaction: nothing has mutated yet,
	// so a rejection here needs no rollback.
	account, err := e.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, &InactiveAccountError{Status: account.Status}
	}

	var result *Result
	err = e.store.Atomically(ctx, func(tx Store) error {
		locked, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		before := locked.Balance
		after := before.Add(amount.Mul(typ.Sign()))
		if after.IsNegative() {
			return &InsufficientFundsError{Balance: before, Requested: amount}
		}

		ref, err := e.referenceFor(ctx, tx, accountID)
		if err != nil {
			return err
		}

		if err := tx.SaveBalance(ctx, accountID, after); err != nil {
			return fmt.Errorf("saving balance: %w", err)
		}

		entry := &models.Transaction{
			AccountID:       accountID,
			Type:            typ,
			Amount:          amount,
			BalanceBefore:   before,
			BalanceAfter:    after,
			Description:     description,
			ReferenceNumber: ref,
		}
		if err := tx.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("creating ledger entry: %w", err)
		}

		locked.Balance = after
		result = &Result{Account: locked, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("ledger entry committed",
		zap.Uint("account_id", accountID),
		zap.String("type", string(typ)),
		zap.String("amount", amount.String()),
		zap.String("reference", result.Entry.ReferenceNumber),
	)
	return result, nil
}

// Balance reads the current balance without locking.
func (e *Engine) Balance(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	account, err := e.store.AccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// EntryByReference looks up a single ledger entry.
func (e *Engine) EntryByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	return e.store.EntryByReference(ctx, ref)
}

// AmendDescription rewrites an entry's free-text description. This is
// the only mutation ledger entries allow.
func (e *Engine) AmendDescription(ctx context.Context, ref string, description string) error {
	return e.store.AmendDescription(ctx, ref, description)
}
