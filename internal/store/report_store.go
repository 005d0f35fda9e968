package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

// ReportStore is the read-only side of the ledger: statements,
// aggregates and the banker views. Reads run without locks; they
// tolerate being a hair behind concurrent writers.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// StatementQuery selects a page of an account's ledger history.
type StatementQuery struct {
	AccountID uint
	Type      models.TransactionType // empty = all
	Page      int
	PageSize  int
}

// Statement returns ledger entries newest first, plus the total count
// so callers can paginate.
func (s *ReportStore) Statement(ctx context.Context, q StatementQuery) ([]models.Transaction, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 50
	}

	query := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("account_id = ?", q.AccountID)
	if q.Type != "" {
		query = query.Where("type = ?", q.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.Transaction
	err := query.
		Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&entries).Error
	return entries, total, err
}

// Statistics aggregates ledger activity for the trailing window.
// AccountID 0 means the whole ledger.
type Statistics struct {
	TotalTransactions     int64           `json:"total_transactions"`
	TotalDeposits         int64           `json:"total_deposits"`
	TotalWithdrawals      int64           `json:"total_withdrawals"`
	TotalDepositAmount    decimal.Decimal `json:"total_deposit_amount"`
	TotalWithdrawalAmount decimal.Decimal `json:"total_withdrawal_amount"`
	AverageAmount         decimal.Decimal `json:"average_amount"`
	LargestAmount         decimal.Decimal `json:"largest_amount"`
}

func (s *ReportStore) Statistics(ctx context.Context, accountID uint, days int) (*Statistics, error) {
	if days < 1 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	query := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(`COUNT(*) AS total_transactions,
			COUNT(*) FILTER (WHERE type = 'deposit') AS total_deposits,
			COUNT(*) FILTER (WHERE type = 'withdrawal') AS total_withdrawals,
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0) AS total_deposit_amount,
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0) AS total_withdrawal_amount,
			COALESCE(AVG(amount), 0) AS average_amount,
			COALESCE(MAX(amount), 0) AS largest_amount`).
		Where("created_at >= ?", since)
	if accountID != 0 {
		query = query.Where("account_id = ?", accountID)
	}

	var stats Statistics
	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentEntries returns the newest ledger entries across all accounts
// (banker dashboard).
func (s *ReportStore) RecentEntries(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var entries []models.Transaction
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Overview is the banker dashboard headline block.
type Overview struct {
	Customers      int64           `json:"customers"`
	Accounts       int64           `json:"accounts"`
	ActiveAccounts int64           `json:"active_accounts"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
}

func (s *ReportStore) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleCustomer).
		Count(&o.Customers).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Count(&o.Accounts).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("status = ?", models.StatusActive).
		Count(&o.ActiveAccounts).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&o.TotalBalance).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListCustomers pages through customer users for the banker views.
func (s *ReportStore) ListCustomers(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleCustomer)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	return users, total, err
}

// SearchCustomers matches username, email or name, case-insensitively.
func (s *ReportStore) SearchCustomers(ctx context.Context, term string, limit int) ([]models.User, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	pattern := "%" + term + "%"
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", models.RoleCustomer).
		Where("username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
			pattern, pattern, pattern, pattern).
		Limit(limit).
		Find(&users).Error
	return users, err
}
