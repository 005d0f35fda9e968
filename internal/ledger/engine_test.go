package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeStore mimics the database contract the engine relies on: the
// Atomically callback runs under a lock covering the whole
// read-validate-write sequence, and its writes are staged so a failing
// callback commits nothing.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[uint]models.Account
	entries  []models.Transaction

	collisions      int // remaining ReferenceExists hits to fake
	failCreateEntry bool
}

func newFakeStore(accounts ...models.Account) *fakeStore {
	s := &fakeStore{accounts: make(map[uint]models.Account)}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

type fakeTx struct {
	parent   *fakeStore
	balances map[uint]decimal.Decimal
	staged   []models.Transaction
}

func (s *fakeStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fakeTx{parent: s, balances: make(map[uint]decimal.Decimal)}
	if err := fn(tx); err != nil {
		return err
	}

	for id, balance := range tx.balances {
		a := s.accounts[id]
		a.Balance = balance
		s.accounts[id] = a
	}
	for _, entry := range tx.staged {
		entry.ID = uint(len(s.entries) + 1)
		s.entries = append(s.entries, entry)
	}
	return nil
}

func (s *fakeStore) AccountByID(ctx context.Context, id uint) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copy := a
	return &copy, nil
}

func (s *fakeStore) AccountForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	panic("AccountForUpdate outside a transaction")
}

func (s *fakeStore) SaveBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	panic("SaveBalance outside a transaction")
}

func (s *fakeStore) CreateEntry(ctx context.Context, entry *models.Transaction) error {
	panic("CreateEntry outside a transaction")
}

func (s *fakeStore) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	panic("ReferenceExists outside a transaction")
}

func (s *fakeStore) EntryByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ReferenceNumber == ref {
			copy := s.entries[i]
			return &copy, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (s *fakeStore) AmendDescription(ctx context.Context, ref string, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ReferenceNumber == ref {
			s.entries[i].Description = description
			return nil
		}
	}
	return ErrEntryNotFound
}

func (t *fakeTx) Atomically(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *fakeTx) AccountByID(ctx context.Context, id uint) (*models.Account, error) {
	return t.AccountForUpdate(ctx, id)
}

func (t *fakeTx) AccountForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	a, ok := t.parent.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copy := a
	if staged, ok := t.balances[id]; ok {
		copy.Balance = staged
	}
	return &copy, nil
}

func (t *fakeTx) SaveBalance(ctx context.Context, accountID uint, balance decimal.Decimal) error {
	t.balances[accountID] = balance
	return nil
}

func (t *fakeTx) CreateEntry(ctx context.Context, entry *models.Transaction) error {
	if t.parent.failCreateEntry {
		return errors.New("simulated persistence failure")
	}
	t.staged = append(t.staged, *entry)
	return nil
}

func (t *fakeTx) ReferenceExists(ctx context.Context, ref string) (bool, error) {
	if t.parent.collisions > 0 {
		t.parent.collisions--
		return true, nil
	}
	for i := range t.parent.entries {
		if t.parent.entries[i].ReferenceNumber == ref {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) EntryByReference(ctx context.Context, ref string) (*models.Transaction, error) {
	panic("not used inside a transaction")
}

func (t *fakeTx) AmendDescription(ctx context.Context, ref string, description string) error {
	panic("not used inside a transaction")
}

func activeAccount(id uint, balance string) models.Account {
	a := models.Account{
		UserID:        id,
		AccountNumber: fmt.Sprintf("ACC%03d000001", id),
		Balance:       dec(balance),
		AccountType:   models.TypeSavings,
		Status:        models.StatusActive,
	}
	a.ID = id
	return a
}

func TestDeposit(t *testing.T) {
	store := newFakeStore(activeAccount(1, "100.00"))
	engine := NewEngine(store, DefaultPolicy())

	result, err := engine.Deposit(context.Background(), 1, dec("50.25"), "payroll")
	require.NoError(t, err)

	assert.True(t, result.Account.Balance.Equal(dec("150.25")), "balance = %s", result.Account.Balance)
	assert.Equal(t, models.TypeDeposit, result.Entry.Type)
	assert.True(t, result.Entry.Amount.Equal(dec("50.25")))
	assert.True(t, result.Entry.BalanceBefore.Equal(dec("100.00")))
	assert.True(t, result.Entry.BalanceAfter.Equal(dec("150.25")))
	assert.Equal(t, "payroll", result.Entry.Description)
	assert.NotEmpty(t, result.Entry.ReferenceNumber)

	// The committed state matches what the result reported.
	account, err := store.AccountByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("150.25")))
	require.Len(t, store.entries, 1)
}

func TestWithdrawToZero(t *testing.T) {
	store := newFakeStore(activeAccount(1, "30.00"))
	engine := NewEngine(store, DefaultPolicy())

	result, err := engine.Withdraw(context.Background(), 1, dec("30.00"), "")
	require.NoError(t, err)
	assert.True(t, result.Account.Balance.IsZero())
	assert.True(t, result.Entry.BalanceAfter.IsZero())
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	store := newFakeStore(activeAccount(1, "30.00"))
	engine := NewEngine(store, DefaultPolicy())

	_, err := engine.Withdraw(context.Background(), 1, dec("30.01"), "")

	var ifErr *InsufficientFundsError
	require.ErrorAs(t, err, &ifErr)
	assert.True(t, ifErr.Balance.Equal(dec("30.00")))
	assert.True(t, ifErr.Requested.Equal(dec("30.01")))
	assert.True(t, ifErr.Shortfall().Equal(dec("0.01")))

	// No mutation: balance untouched, no entry written.
	account, err := store.AccountByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("30.00")))
	assert.Empty(t, store.entries)
}

func TestInactiveAccountRejected(t *testing.T) {
	for _, status := range []models.AccountStatus{models.StatusInactive, models.StatusSuspended} {
		t.Run(string(status), func(t *testing.T) {
			account := activeAccount(1, "100.00")
			account.Status = status
			store := newFakeStore(account)
			engine := NewEngine(store, DefaultPolicy())

			_, err := engine.Deposit(context.Background(), 1, dec("10.00"), "")
			var iaErr *InactiveAccountError
			require.ErrorAs(t, err, &iaErr)
			assert.Equal(t, status, iaErr.Status)
			assert.Empty(t, store.entries)

			_, err = engine.Withdraw(context.Background(), 1, dec("10.00"), "")
			require.ErrorAs(t, err, &iaErr)
		})
	}
}

func TestAmountPolicy(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-5.00"},
		{"below minimum", "0.50"},
		{"above maximum", "50000.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(activeAccount(1, "100000.00"))
			engine := NewEngine(store, DefaultPolicy())

			_, err := engine.Deposit(context.Background(), 1, dec(tt.amount), "")
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr, "deposit of %s must be rejected", tt.amount)

			_, err = engine.Withdraw(context.Background(), 1, dec(tt.amount), "")
			require.ErrorAs(t, err, &vErr, "withdrawal of %s must be rejected", tt.amount)

			assert.Empty(t, store.entries)
		})
	}
}

func TestPolicyBoundsInclusive(t *testing.T) {
	store := newFakeStore(activeAccount(1, "0.00"))
	engine := NewEngine(store, DefaultPolicy())

	_, err := engine.Deposit(context.Background(), 1, dec("1.00"), "min")
	require.NoError(t, err)
	_, err = engine.Deposit(context.Background(), 1, dec("50000.00"), "max")
	require.NoError(t, err)
}

func TestAccountNotFound(t *testing.T) {
	engine := NewEngine(newFakeStore(), DefaultPolicy())
	_, err := engine.Deposit(context.Background(), 42, dec("10.00"), "")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPersistenceFailureRollsBack(t *testing.T) {
	store := newFakeStore(activeAccount(1, "100.00"))
	store.failCreateEntry = true
	engine := NewEngine(store, DefaultPolicy())

	_, err := engine.Deposit(context.Background(), 1, dec("10.00"), "")
	require.Error(t, err)

	account, err := store.AccountByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(dec("100.00")), "rollback must leave the balance untouched")
	assert.Empty(t, store.entries)
}

func TestReferenceNumbersUnique(t *testing.T) {
	store := newFakeStore(activeAccount(1, "0.00"))
	engine := NewEngine(store, DefaultPolicy())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		result, err := engine.Deposit(context.Background(), 1, dec("1.00"), "")
		require.NoError(t, err)
		ref := result.Entry.ReferenceNumber
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestBalanceMatchesLedger(t *testing.T) {
	store := newFakeStore(activeAccount(1, "500.00"))
	engine := NewEngine(store, DefaultPolicy())
	ctx := context.Background()

	amounts := []struct {
		withdraw bool
		amount   string
	}{
		{false, "120.50"}, {true, "75.25"}, {false, "3.99"},
		{true, "400.00"}, {false, "1.00"}, {true, "2.26"},
	}
	for _, op := range amounts {
		var err error
		if op.withdraw {
			_, err = engine.Withdraw(ctx, 1, dec(op.amount), "")
		} else {
			_, err = engine.Deposit(ctx, 1, dec(op.amount), "")
		}
		require.NoError(t, err)
	}

	// Replaying the signed entry amounts from the opening balance must
	// land exactly on the stored balance.
	replayed := dec("500.00")
	for i := range store.entries {
		entry := store.entries[i]
		assert.True(t, entry.BalanceBefore.Equal(replayed), "entry %d chains from the previous balance", i)
		replayed = replayed.Add(entry.SignedAmount())
		assert.True(t, entry.BalanceAfter.Equal(replayed))
	}

	account, err := store.AccountByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(replayed))
	assert.False(t, account.Balance.IsNegative())
}

func TestConcurrentWithdrawals(t *testing.T) {
	const workers = 8

	store := newFakeStore(activeAccount(1, "60.00"))
	engine := NewEngine(store, DefaultPolicy())

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.Withdraw(context.Background(), 1, dec("60.00"), "race")
		}(i)
	}
	wg.Wait()

	successes, insufficient := 0, 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		var ifErr *InsufficientFundsError
		require.ErrorAs(t, err, &ifErr)
		insufficient++
	}

	assert.Equal(t, 1, successes, "exactly one withdrawal may win")
	assert.Equal(t, workers-1, insufficient)

	account, err := store.AccountByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero(), "final balance = %s", account.Balance)
	require.Len(t, store.entries, 1)
}

func TestAmendDescription(t *testing.T) {
	store := newFakeStore(activeAccount(1, "100.00"))
	engine := NewEngine(store, DefaultPolicy())
	ctx := context.Background()

	result, err := engine.Deposit(ctx, 1, dec("10.00"), "old")
	require.NoError(t, err)
	ref := result.Entry.ReferenceNumber

	require.NoError(t, engine.AmendDescription(ctx, ref, "new"))

	entry, err := engine.EntryByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "new", entry.Description)
	// Everything besides the description stays fixed.
	assert.True(t, entry.Amount.Equal(dec("10.00")))
	assert.True(t, entry.BalanceAfter.Equal(dec("110.00")))

	err = engine.AmendDescription(ctx, "TXN000000000000", "nope")
	require.ErrorIs(t, err, ErrEntryNotFound)
}
