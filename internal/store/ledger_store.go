package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// LedgerStore is the gorm-backed ledger.Store. Atomically opens a
// database transaction and hands the callback a store bound to it, so
// the row lock taken by AccountForUpdate lives until commit or
// rollback.
type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Atomically(ctx context.Context, fn func(tx ledger.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerStore{db: tx})
	})
}

func (s *LedgerStore) AccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *LedgerStore) AccountForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *LedgerStore) SaveBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	return s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", balance).Error
}

func (s *LedgerStore) CreateEntry(ctx context.Context, entry *models.Transaction) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *LedgerStore) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("reference_number = ?", ref).
		Count(&count).Error
	return count > 0, err
}

func (s *LedgerStore) EntryByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	var entry models.Transaction
	err := s.db.WithContext(ctx).Where("reference_number = ?", ref).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *LedgerStore) AmendDescription(ctx context.Context, ref string, description string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("reference_number = ?", ref).
		Update("description", description)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}
