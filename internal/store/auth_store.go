package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// AuthStore is the gorm-backed auth.Store. Lookups that miss return
// (nil, nil); the auth service folds that into its uniform
// unauthenticated outcome.
type AuthStore struct {
	db *gorm.DB
}

func NewAuthStore(db *gorm.DB) *AuthStore {
	return &AuthStore{db: db}
}

func (s *AuthStore) CreateToken(ctx context.Context, token *models.AccessToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *AuthStore) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("token = ?", token).
		Count(&count).Error
	return count > 0, err
}

func (s *AuthStore) TokenByString(ctx context.Context, token string) (*models.AccessToken, error) {
	var record models.AccessToken
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *AuthStore) SaveTokenExpiry(ctx context.Context, id uint, expiresAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt).Error
}

func (s *AuthStore) DeleteToken(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.AccessToken{}).Error
}

func (s *AuthStore) DeleteUserTokens(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AccessToken{}).Error
}

func (s *AuthStore) DeleteExpiredUserTokens(ctx context.Context, userID uint, now time.Time) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at <= ?", userID, now).
		Delete(&models.AccessToken{}).Error
}

func (s *AuthStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.AccessToken{})
	return result.RowsAffected, result.Error
}

func (s *AuthStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *AuthStore) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}
