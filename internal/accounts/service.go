// Package accounts manages account lifecycle: opening, lookup and the
// explicit status transitions bankers perform. Balance changes never
// happen here, they go through the ledger engine.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

var ErrNotFound = errors.New("account not found")

// ListQuery filters the banker's account listing.
type ListQuery struct {
	Status   models.AccountStatus // empty = all
	Type     models.AccountType   // empty = all
	Page     int
	PageSize int
}

type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	AccountByID(ctx context.Context, id uint) (*models.Account, error)
	AccountByUser(ctx context.Context, userID uint) (*models.Account, error)
	AccountByNumber(ctx context.Context, number string) (*models.Account, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	SaveStatus(ctx context.Context, accountID uint, status models.AccountStatus) error
	ListAccounts(ctx context.Context, q ListQuery) ([]models.Account, int64, error)
}

type Service struct {
	store  Store
	engine *ledger.Engine
}

func NewService(store Store, engine *ledger.Engine) *Service {
	return &Service{store: store, engine: engine}
}

// Open creates an active account for the user. A positive opening
// deposit is routed through the ledger engine so the ledger starts
// consistent with the balance.
func (s *Service) Open(ctx context.Context, userID uint, accountType models.AccountType, openingDeposit decimal.Decimal) (*models.Account, error) {
	// Reject a bad deposit before the account row exists, so a failed
	// Open leaves nothing behind.
	if openingDeposit.IsPositive() {
		if err := s.engine.ValidateAmount(openingDeposit); err != nil {
			return nil, err
		}
	}

	number, err := s.nextAccountNumber(ctx, userID)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:        userID,
		AccountNumber: number,
		Balance:       decimal.Zero,
		AccountType:   accountType,
		Status:        models.StatusActive,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	if openingDeposit.IsPositive() {
		result, err := s.engine.Deposit(ctx, account.ID, openingDeposit, "Opening deposit")
		if err != nil {
			return nil, err
		}
		account = result.Account
	}

	logger.Log.Info("account opened",
		zap.Uint("user_id", userID),
		zap.String("account_number", account.AccountNumber),
		zap.String("type", string(accountType)),
	)
	return account, nil
}

// nextAccountNumber derives the account number from the owner id and a
// per-user sequence: ACC + user id (3 digits) + sequence (6 digits).
func (s *Service) nextAccountNumber(ctx context.Context, userID uint) (string, error) {
	count, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("counting accounts: %w", err)
	}
	return fmt.Sprintf("ACC%03d%06d", userID, count+1), nil
}

// ChangeStatus performs the explicit lifecycle transition. Any of the
// three states may be set directly; there is nothing automatic.
func (s *Service) ChangeStatus(ctx context.Context, accountID uint, status models.AccountStatus) (*models.Account, error) {
	account, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveStatus(ctx, accountID, status); err != nil {
		return nil, fmt.Errorf("saving status: %w", err)
	}
	account.Status = status
	logger.Log.Info("account status changed",
		zap.Uint("account_id", accountID),
		zap.String("status", string(status)),
	)
	return account, nil
}

// Deactivate is the soft delete: the row stays, referenced forever by
// its ledger history.
func (s *Service) Deactivate(ctx context.Context, accountID uint) (*models.Account, error) {
	return s.ChangeStatus(ctx, accountID, models.StatusInactive)
}

func (s *Service) ByID(ctx context.Context, id uint) (*models.Account, error) {
	return s.store.AccountByID(ctx, id)
}

func (s *Service) ByUser(ctx context.Context, userID uint) (*models.Account, error) {
	return s.store.AccountByUser(ctx, userID)
}

func (s *Service) ByNumber(ctx context.Context, number string) (*models.Account, error) {
	return s.store.AccountByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Account, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 50
	}
	return s.store.ListAccounts(ctx, q)
}
