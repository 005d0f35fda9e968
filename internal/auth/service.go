// Package auth mints, validates, refreshes and revokes the opaque
// bearer tokens that gate every protected operation, and owns the
// password-credential flows around them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// ErrUnauthenticated is the single outcome for every bad token:
// malformed, unknown, revoked or expired. Callers must not be able to
// tell those apart.
var ErrUnauthenticated = errors.New("unauthenticated")

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already in use")
)

// Store is the persistence surface for tokens and users.
type Store interface {
	CreateToken(ctx context.Context, token *models.AccessToken) error
	TokenExists(ctx context.Context, token string) (bool, error)
	TokenByString(ctx context.Context, token string) (*models.AccessToken, error)
	SaveTokenExpiry(ctx context.Context, id uint, expiresAt time.Time) error
	DeleteToken(ctx context.Context, token string) error
	DeleteUserTokens(ctx context.Context, userID uint) error
	DeleteExpiredUserTokens(ctx context.Context, userID uint, now time.Time) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)

	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SaveUser(ctx context.Context, user *models.User) error
}

type Service struct {
	store    Store
	tokenTTL time.Duration
	now      func() time.Time
}

func NewService(store Store, tokenTTL time.Duration) *Service {
	return &Service{store: store, tokenTTL: tokenTTL, now: time.Now}
}

// Issue mints a fresh token for the user, retrying generation until the
// string is unused. Expired tokens of the same user are swept
// opportunistically first.
func (s *Service) Issue(ctx context.Context, userID uint) (*models.AccessToken, error) {
	if err := s.store.DeleteExpiredUserTokens(ctx, userID, s.now()); err != nil {
		return nil, fmt.Errorf("sweeping expired tokens: %w", err)
	}

	var value string
	for {
		v, err := generateToken()
		if err != nil {
			return nil, err
		}
		exists, err := s.store.TokenExists(ctx, v)
		if err != nil {
			return nil, err
		}
		if !exists {
			value = v
			break
		}
	}

	token := &models.AccessToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}
	return token, nil
}

// Verify resolves a presented token string to its user. Every failure
// mode collapses into ErrUnauthenticated.
func (s *Service) Verify(ctx context.Context, tokenString string) (*models.User, *models.AccessToken, error) {
	if len(tokenString) != TokenLength {
		return nil, nil, ErrUnauthenticated
	}

	token, err := s.store.TokenByString(ctx, tokenString)
	if err != nil || token == nil {
		return nil, nil, ErrUnauthenticated
	}
	if token.Expired(s.now()) {
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.store.UserByID(ctx, token.UserID)
	if err != nil || user == nil {
		return nil, nil, ErrUnauthenticated
	}
	return user, token, nil
}

// Refresh extends the token's expiry without rotating the string.
func (s *Service) Refresh(ctx context.Context, token *models.AccessToken) error {
	token.ExpiresAt = s.now().Add(s.tokenTTL)
	return s.store.SaveTokenExpiry(ctx, token.ID, token.ExpiresAt)
}

// Revoke deletes one token (logout).
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	return s.store.DeleteToken(ctx, tokenString)
}

// RevokeAll deletes every token of a user (global logout, password
// change).
func (s *Service) RevokeAll(ctx context.Context, userID uint) error {
	return s.store.DeleteUserTokens(ctx, userID)
}

// SweepExpired deletes all expired tokens and reports how many went.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredTokens(ctx, s.now())
}

// Login checks the password and issues a token. Unknown user and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, *models.AccessToken, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info("user logged in", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, token, nil
}

// RegisterParams holds customer signup input.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a customer user with a hashed password.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if params.Username == "" || params.Email == "" || len(params.Password) < 8 {
		return nil, fmt.Errorf("username, email and a password of at least 8 characters are required")
	}

	if existing, err := s.store.UserByUsername(ctx, params.Username); err == nil && existing != nil {
		return nil, ErrUserExists
	}
	if existing, err := s.store.UserByEmail(ctx, params.Email); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:  params.Username,
		Email:     params.Email,
		Password:  string(hash),
		Role:      models.RoleCustomer,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Phone:     params.Phone,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding token of the user.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return fmt.Errorf("new password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hash)
	if err := s.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return s.RevokeAll(ctx, user.ID)
}

// UpdateProfileParams are the mutable profile fields; empty strings
// leave the current value alone.
type UpdateProfileParams struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

func (s *Service) UpdateProfile(ctx context.Context, user *models.User, params UpdateProfileParams) error {
	if params.FirstName != "" {
		user.FirstName = params.FirstName
	}
	if params.LastName != "" {
		user.LastName = params.LastName
	}
	if params.Phone != "" {
		user.Phone = params.Phone
	}
	if params.Email != "" && params.Email != user.Email {
		if existing, err := s.store.UserByEmail(ctx, params.Email); err == nil && existing != nil {
			return ErrUserExists
		}
		user.Email = params.Email
	}
	return s.store.SaveUser(ctx, user)
}
