package accounts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SagarCoder007/modern-banking-system/internal/ledger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memStore backs both the accounts service and the ledger engine in
// these tests, so opening deposits flow through the real engine.
type memStore struct {
	accounts map[uint]models.Account
	entries  []models.Transaction
	nextID   uint
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[uint]models.Account)}
}

func (s *memStore) CreateAccount(ctx context.Context, account *models.Account) error {
	s.nextID++
	account.ID = s.nextID
	s.accounts[account.ID] = *account
	return nil
}

func (s *memStore) AccountByID(ctx context.Context, id uint) (*models.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := a
	return &copy, nil
}

func (s *memStore) AccountByUser(ctx context.Context, userID uint) (*models.Account, error) {
	for _, a := range s.accounts {
		if a.UserID == userID {
			copy := a
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) AccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	for _, a := range s.accounts {
		if a.AccountNumber == number {
			copy := a
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	for _, a := range s.accounts {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) SaveStatus(ctx context.Context, accountID uint, status models.AccountStatus) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	s.accounts[accountID] = a
	return nil
}

func (s *memStore) ListAccounts(ctx context.Context, q ListQuery) ([]models.Account, int64, error) {
	var list []models.Account
	for _, a := range s.accounts {
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if q.Type != "" && a.AccountType != q.Type {
			continue
		}
		list = append(list, a)
	}
	return list, int64(len(list)), nil
}

// ledger.Store side. Sequential tests, so Atomically can just run the
// callback against the same store.
func (s *memStore) Atomically(ctx context.Context, fn func(tx ledger.Store) error) error {
	return fn(s)
}

func (s *memStore) AccountForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	a, err := s.AccountByID(ctx, id)
	if err != nil {
		return nil, ledger.ErrAccountNotFound
	}
	return a, nil
}

func (s *memStore) SaveBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	a := s.accounts[accountID]
	a.Balance = balance
	s.accounts[accountID] = a
	return nil
}

func (s *memStore) CreateEntry(ctx context.Context, entry *models.Transaction) error {
	entry.ID = uint(len(s.entries) + 1)
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memStore) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	for i := range s.entries {
		if s.entries[i].ReferenceNumber == ref {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) EntryByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	for i := range s.entries {
		if s.entries[i].ReferenceNumber == ref {
			copy := s.entries[i]
			return &copy, nil
		}
	}
	return nil, ledger.ErrEntryNotFound
}

func (s *memStore) AmendDescription(ctx context.Context, ref string, description string) error {
	for i := range s.entries {
		if s.entries[i].ReferenceNumber == ref {
			s.entries[i].Description = description
			return nil
		}
	}
	return ledger.ErrEntryNotFound
}

func newTestService(store *memStore) *Service {
	engine := ledger.NewEngine(store, ledger.DefaultPolicy())
	return NewService(store, engine)
}

func TestOpen(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	account, err := svc.Open(ctx, 7, models.TypeSavings, dec("1000.00"))
	require.NoError(t, err)

	assert.Equal(t, "ACC007000001", account.AccountNumber)
	assert.Equal(t, models.StatusActive, account.Status)
	assert.True(t, account.Balance.Equal(dec("1000.00")))

	// The opening deposit went through the ledger: balance and history
	// agree from the first moment.
	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, models.TypeDeposit, entry.Type)
	assert.Equal(t, "Opening deposit", entry.Description)
	assert.True(t, entry.BalanceBefore.IsZero())
	assert.True(t, entry.BalanceAfter.Equal(dec("1000.00")))
}

func TestOpenWithoutDeposit(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	account, err := svc.Open(context.Background(), 7, models.TypeChecking, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
	assert.Empty(t, store.entries, "no deposit, no ledger entry")
}

func TestOpenRejectedDepositLeavesNothing(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	for _, amount := range []string{"0.50", "50000.01"} {
		_, err := svc.Open(ctx, 7, models.TypeSavings, dec(amount))
		var verr *ledger.ValidationError
		require.ErrorAs(t, err, &verr, "amount %s", amount)
	}

	// The rejection happened before anything was written: no orphaned
	// zero-balance account, no ledger entry.
	assert.Empty(t, store.accounts)
	assert.Empty(t, store.entries)
}

func TestAccountNumberSequence(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	number, err := svc.nextAccountNumber(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "ACC003000001", number)

	// Rows from earlier accounts keep counting, so a number is never
	// reissued even after its account is gone.
	store.accounts[99] = models.Account{UserID: 3, AccountNumber: "ACC003000001"}
	number, err = svc.nextAccountNumber(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "ACC003000002", number)
}

func TestChangeStatus(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	account, err := svc.Open(ctx, 1, models.TypeSavings, decimal.Zero)
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, account.ID, models.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, updated.Status)

	stored, err := store.AccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, stored.Status)

	// Back to active works too; transitions are unrestricted, just
	// explicit.
	updated, err = svc.ChangeStatus(ctx, account.ID, models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)

	_, err = svc.ChangeStatus(ctx, 999, models.StatusActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivateIsSoft(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	account, err := svc.Open(ctx, 1, models.TypeSavings, dec("50.00"))
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, account.ID)
	require.NoError(t, err)

	// The row survives with its history intact.
	stored, err := store.AccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, stored.Status)
	assert.True(t, stored.Balance.Equal(dec("50.00")))
	require.Len(t, store.entries, 1)
}

func TestListFilters(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	a1, err := svc.Open(ctx, 1, models.TypeSavings, decimal.Zero)
	require.NoError(t, err)
	_, err = svc.Open(ctx, 2, models.TypeChecking, decimal.Zero)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, a1.ID, models.StatusSuspended)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.EqualValues(t, 2, total)

	suspended, _, err := svc.List(ctx, ListQuery{Status: models.StatusSuspended})
	require.NoError(t, err)
	require.Len(t, suspended, 1)
	assert.Equal(t, a1.ID, suspended[0].ID)

	checking, _, err := svc.List(ctx, ListQuery{Type: models.TypeChecking})
	require.NoError(t, err)
	require.Len(t, checking, 1)
	assert.Equal(t, models.TypeChecking, checking[0].AccountType)
}
