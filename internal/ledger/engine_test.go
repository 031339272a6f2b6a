package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finbook/internal/domain"
)

const owner uint = 1

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func incomeIntent(walletID, categoryID uint, amt string) Intent {
	return Intent{
		Type:       domain.TransactionIncome,
		WalletID:   walletID,
		CategoryID: categoryID,
		Amount:     amount(amt),
		Date:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func expenseIntent(walletID, categoryID uint, amt string) Intent {
	i := incomeIntent(walletID, categoryID, amt)
	i.Type = domain.TransactionExpense
	return i
}

func transferIntent(fromID, toID uint, amt string) Intent {
	return Intent{
		Type:         domain.TransactionTransfer,
		FromWalletID: fromID,
		ToWalletID:   toID,
		Amount:       amount(amt),
		Date:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

// requireBalanceInvariant checks the load-bearing ledger property: current
// balance equals opening balance plus the signed sum of the wallet's entries
func requireBalanceInvariant(t *testing.T, store *memStore, w *domain.Wallet) {
	t.Helper()
	sum := w.OpeningBalance
	for _, e := range store.entriesFor(w.ID) {
		sum = sum.Add(e.SignedAmount())
	}
	got := store.walletBalance(w.ID)
	require.True(t, got.Equal(sum), "balance %s diverged from entry history sum %s", got, sum)
}

func TestPostIncome(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "1000")
	salary := store.seedCategory(owner, domain.CategoryIncome, "Salary")

	res, err := engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, salary.ID, "500"))
	require.NoError(t, err)

	require.Equal(t, "1500", store.walletBalance(wallet.ID).String())
	require.Len(t, res.Entries, 1)
	require.Equal(t, domain.DirectionIn, res.Entries[0].Direction)
	require.Equal(t, "500", res.Entries[0].Amount.String())
	require.Equal(t, []uint{wallet.ID}, res.AffectedWallets)
	require.NotZero(t, res.Transaction.ID)
	require.Equal(t, salary.ID, *res.Transaction.CategoryID)
	requireBalanceInvariant(t, store, wallet)
}

func TestPostExpense(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "1500")
	food := store.seedCategory(owner, domain.CategoryExpense, "Food")

	res, err := engine.PostTransaction(context.Background(), owner, expenseIntent(wallet.ID, food.ID, "100"))
	require.NoError(t, err)

	require.Equal(t, "1400", store.walletBalance(wallet.ID).String())
	require.Len(t, res.Entries, 1)
	require.Equal(t, domain.DirectionOut, res.Entries[0].Direction)
	requireBalanceInvariant(t, store, wallet)
}

func TestPostTransfer(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	from := store.seedWallet(owner, "1400")
	to := store.seedWallet(owner, "0")

	res, err := engine.PostTransaction(context.Background(), owner, transferIntent(from.ID, to.ID, "200"))
	require.NoError(t, err)

	require.Equal(t, "1200", store.walletBalance(from.ID).String())
	require.Equal(t, "200", store.walletBalance(to.ID).String())
	require.Len(t, res.Entries, 2)
	require.Equal(t, domain.DirectionOut, res.Entries[0].Direction)
	require.Equal(t, from.ID, res.Entries[0].WalletID)
	require.Equal(t, domain.DirectionIn, res.Entries[1].Direction)
	require.Equal(t, to.ID, res.Entries[1].WalletID)
	require.Equal(t, []uint{from.ID, to.ID}, res.AffectedWallets)
	requireBalanceInvariant(t, store, from)
	requireBalanceInvariant(t, store, to)
}

func TestTransferIsZeroSum(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	from := store.seedWallet(owner, "730.25")
	to := store.seedWallet(owner, "19.75")
	before := store.walletBalance(from.ID).Add(store.walletBalance(to.ID))

	_, err := engine.PostTransaction(context.Background(), owner, transferIntent(from.ID, to.ID, "55.50"))
	require.NoError(t, err)

	after := store.walletBalance(from.ID).Add(store.walletBalance(to.ID))
	require.True(t, before.Equal(after), "system-wide sum moved from %s to %s", before, after)
	require.Equal(t, "674.75", store.walletBalance(from.ID).String())
	require.Equal(t, "75.25", store.walletBalance(to.ID).String())
}

func TestSameWalletTransferRejected(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "100")

	_, err := engine.PostTransaction(context.Background(), owner, transferIntent(wallet.ID, wallet.ID, "100"))
	require.ErrorIs(t, err, ErrSameWalletTransfer)
	require.Equal(t, "100", store.walletBalance(wallet.ID).String())
	require.Zero(t, store.transactionCount())
}

func TestCategoryTypeMismatchRejected(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "1000")
	food := store.seedCategory(owner, domain.CategoryExpense, "Food")
	salary := store.seedCategory(owner, domain.CategoryIncome, "Salary")

	_, err := engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, food.ID, "50"))
	require.ErrorIs(t, err, ErrInvalidIncomeCategory)

	_, err = engine.PostTransaction(context.Background(), owner, expenseIntent(wallet.ID, salary.ID, "50"))
	require.ErrorIs(t, err, ErrInvalidExpenseCategory)

	require.Equal(t, "1000", store.walletBalance(wallet.ID).String())
	require.Zero(t, store.transactionCount())
}

func TestWalletOwnershipGatesPosting(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	salary := store.seedCategory(owner, domain.CategoryIncome, "Salary")

	// unknown wallet
	_, err := engine.PostTransaction(context.Background(), owner, incomeIntent(99, salary.ID, "50"))
	require.ErrorIs(t, err, ErrWalletNotFound)

	// wallet owned by someone else
	foreign := store.seedWallet(2, "500")
	_, err = engine.PostTransaction(context.Background(), owner, incomeIntent(foreign.ID, salary.ID, "50"))
	require.ErrorIs(t, err, ErrWalletNotFound)

	// archived wallet
	archived := store.seedWallet(owner, "0")
	_, aerr := engine.ArchiveWallet(context.Background(), owner, archived.ID)
	require.NoError(t, aerr)
	_, err = engine.PostTransaction(context.Background(), owner, incomeIntent(archived.ID, salary.ID, "50"))
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestUnknownCategoryRejected(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "1000")

	_, err := engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, 42, "50"))
	require.ErrorIs(t, err, ErrCategoryNotFound)

	// a category of another user is invisible
	foreign := store.seedCategory(2, domain.CategoryIncome, "Salary")
	_, err = engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, foreign.ID, "50"))
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestAmountValidation(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "1000")
	salary := store.seedCategory(owner, domain.CategoryIncome, "Salary")

	for _, bad := range []string{"0", "-5", "0.001", "12.345"} {
		_, err := engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, salary.ID, bad))
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %s should be rejected", bad)
	}
	require.Zero(t, store.transactionCount())

	// two fractional digits are the allowed maximum
	_, err := engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, salary.ID, "12.34"))
	require.NoError(t, err)
}

func TestUnsupportedTypeRejected(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "1000")

	_, err := engine.PostTransaction(context.Background(), owner, Intent{
		Type:     domain.TransactionType("loan"),
		WalletID: wallet.ID,
		Amount:   amount("10"),
		Date:     time.Now(),
	})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

// faultyStore injects a failure into the Nth balance delta of a unit of work
// to prove the whole unit rolls back
type faultyStore struct {
	Store
	failOnCall int
	calls      int
}

func (f *faultyStore) WithAtomicWork(ctx context.Context, fn func(tx Store) error) error {
	return f.Store.WithAtomicWork(ctx, func(tx Store) error {
		return fn(&faultyTx{Store: tx, f: f})
	})
}

type faultyTx struct {
	Store
	f *faultyStore
}

func (t *faultyTx) AddToBalance(ctx context.Context, walletID uint, delta decimal.Decimal) error {
	t.f.calls++
	if t.f.calls == t.f.failOnCall {
		return transientErr(errors.New("connection lost"))
	}
	return t.Store.AddToBalance(ctx, walletID, delta)
}

func TestCommitFailureLeavesNoTrace(t *testing.T) {
	store := newMemStore()
	from := store.seedWallet(owner, "300")
	to := store.seedWallet(owner, "40")
	// fail on the second delta, after the header and the first delta applied
	engine := NewEngine(&faultyStore{Store: store, failOnCall: 2})

	_, err := engine.PostTransaction(context.Background(), owner, transferIntent(from.ID, to.ID, "100"))
	require.ErrorIs(t, err, ErrTransient)
	require.Equal(t, KindTransient, KindOf(err))

	// nothing of the attempt survives: header, entries, or balance movement
	require.Zero(t, store.transactionCount())
	require.Empty(t, store.entriesFor(from.ID))
	require.Equal(t, "300", store.walletBalance(from.ID).String())
	require.Equal(t, "40", store.walletBalance(to.ID).String())
}

func TestConcurrentExpensesDoNotLoseUpdates(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "100")
	food := store.seedCategory(owner, domain.CategoryExpense, "Food")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.PostTransaction(context.Background(), owner, expenseIntent(wallet.ID, food.ID, "50"))
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, "0", store.walletBalance(wallet.ID).String())
	requireBalanceInvariant(t, store, wallet)
}

func TestArchiveWallet(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "0")

	archived, err := engine.ArchiveWallet(context.Background(), owner, wallet.ID)
	require.NoError(t, err)
	require.True(t, archived.Archived)

	// archiving twice reads as not found, same as a foreign or missing wallet
	_, err = engine.ArchiveWallet(context.Background(), owner, wallet.ID)
	require.ErrorIs(t, err, ErrWalletNotFound)
	_, err = engine.ArchiveWallet(context.Background(), 2, wallet.ID)
	require.ErrorIs(t, err, ErrWalletNotFound)
}

func TestArchiveWalletBlockedByEntries(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	wallet := store.seedWallet(owner, "0")
	salary := store.seedCategory(owner, domain.CategoryIncome, "Salary")

	_, err := engine.PostTransaction(context.Background(), owner, incomeIntent(wallet.ID, salary.ID, "10"))
	require.NoError(t, err)

	_, err = engine.ArchiveWallet(context.Background(), owner, wallet.ID)
	require.ErrorIs(t, err, ErrWalletHasEntries)

	// the refusal changed nothing
	w, err := store.ActiveWallet(context.Background(), owner, wallet.ID)
	require.NoError(t, err)
	require.False(t, w.Archived)
}

func TestBalanceInvariantOverMixedHistory(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store)
	a := store.seedWallet(owner, "250.50")
	b := store.seedWallet(owner, "0")
	salary := store.seedCategory(owner, domain.CategoryIncome, "Salary")
	food := store.seedCategory(owner, domain.CategoryExpense, "Food")

	steps := []Intent{
		incomeIntent(a.ID, salary.ID, "1200"),
		expenseIntent(a.ID, food.ID, "34.99"),
		transferIntent(a.ID, b.ID, "400"),
		expenseIntent(b.ID, food.ID, "12.01"),
		transferIntent(b.ID, a.ID, "100.25"),
	}
	for _, intent := range steps {
		_, err := engine.PostTransaction(context.Background(), owner, intent)
		require.NoError(t, err)
	}

	requireBalanceInvariant(t, store, a)
	requireBalanceInvariant(t, store, b)
	require.Equal(t, "1115.76", store.walletBalance(a.ID).String())
	require.Equal(t, "287.74", store.walletBalance(b.ID).String())
}
