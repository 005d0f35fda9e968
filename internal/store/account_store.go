package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// AccountStore is the gorm-backed accounts.Store.
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.db.WithContext(ctx).Create(account).Error
}

func (s *AccountStore) AccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).First(&account, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountStore) AccountByUser(ctx context.Context, userID uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountStore) AccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("account_number = ?", number).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountStore) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Unscoped().
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *AccountStore) SaveStatus(ctx context.Context, accountID uint, status models.AccountStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return accounts.ErrNotFound
	}
	return nil
}

func (s *AccountStore) ListAccounts(ctx context.Context, q accounts.ListQuery) ([]models.Account, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Account{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Type != "" {
		query = query.Where("account_type = ?", q.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Account
	err := query.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&list).Error
	return list, total, err
}
