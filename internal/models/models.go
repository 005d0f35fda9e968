package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role is the closed set of user roles. Dispatch on the typed value,
// never on raw strings from the request.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBanker   Role = "banker"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleBanker:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	gorm.Model
	Username  string `gorm:"uniqueIndex;size:50;not null"`
	Email     string `gorm:"uniqueIndex;size:255;not null"`
	Password  string `gorm:"size:255;not null"` // bcrypt hash
	Role      Role   `gorm:"size:20;not null;default:customer"`
	FirstName string `gorm:"size:50"`
	LastName  string `gorm:"size:50"`
	Phone     string `gorm:"size:20"`
}

func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }
func (u *User) IsBanker() bool   { return u.Role == RoleBanker }

// AccountStatus is the account lifecycle state. Transitions happen only
// through an explicit banker-initiated status change; there are no
// automatic transitions.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusSuspended AccountStatus = "suspended"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	switch AccountStatus(s) {
	case StatusActive, StatusInactive, StatusSuspended:
		return AccountStatus(s), nil
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

type AccountType string

const (
	TypeSavings  AccountType = "savings"
	TypeChecking AccountType = "checking"
)

func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case TypeSavings, TypeChecking:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Account holds a customer's balance. The balance column is only ever
// written inside a ledger transaction; status is only written by an
// explicit status change. Accounts are never hard-deleted, an unwanted
// account is soft-retired via its status.
type Account struct {
	gorm.Model
	UserID        uint            `gorm:"uniqueIndex;not null"`
	AccountNumber string          `gorm:"uniqueIndex;size:20;not null"`
	Balance       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	AccountType   AccountType     `gorm:"size:20;not null;default:savings"`
	Status        AccountStatus   `gorm:"size:20;index;not null;default:active"`
}

func (a *Account) IsActive() bool { return a.Status == StatusActive }

type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// Sign is the entry type's effect on the balance: deposits positive,
// withdrawals negative.
func (t TransactionType) Sign() decimal.Decimal {
	if t == TypeWithdrawal {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Transaction is one immutable ledger entry. Rows are append-only:
// amount and the before/after balances are fixed forever, only the
// description may be amended, and entries are never deleted.
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	AccountID       uint            `gorm:"index;not null"`
	Type            TransactionType `gorm:"size:20;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	BalanceBefore   decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	Description     string          `gorm:"size:255"`
	ReferenceNumber string          `gorm:"uniqueIndex;size:32;not null"`
	CreatedAt       time.Time
}

// SignedAmount applies the type's sign to the amount.
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Amount.Mul(t.Type.Sign())
}

// AccessToken is an opaque bearer credential: a fixed-length
// alphanumeric string bound to one user with an absolute expiry.
type AccessToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Token     string `gorm:"uniqueIndex;size:36;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
