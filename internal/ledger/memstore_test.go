package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"finbook/internal/domain"
)

var errNoActiveRow = errors.New("wallet row no longer active")

// memState holds the fake's tables. All logic lives here; memStore and memTx
// are thin locking/non-locking views over it, mirroring how the gorm store
// hands out a transaction-scoped handle.
type memState struct {
	nextID       uint
	wallets      map[uint]*domain.Wallet
	categories   map[uint]*domain.Category
	transactions map[uint]*domain.Transaction
	goals        map[uint]*domain.Goal
	milestones   map[uint]*domain.Milestone
}

func newMemState() *memState {
	return &memState{
		wallets:      make(map[uint]*domain.Wallet),
		categories:   make(map[uint]*domain.Category),
		transactions: make(map[uint]*domain.Transaction),
		goals:        make(map[uint]*domain.Goal),
		milestones:   make(map[uint]*domain.Milestone),
	}
}

func (st *memState) id() uint {
	st.nextID++
	return st.nextID
}

// clone deep-copies the state so a failed unit of work can be rolled back
func (st *memState) clone() *memState {
	c := newMemState()
	c.nextID = st.nextID
	for id, w := range st.wallets {
		cp := *w
		c.wallets[id] = &cp
	}
	for id, cat := range st.categories {
		cp := *cat
		c.categories[id] = &cp
	}
	for id, txn := range st.transactions {
		cp := *txn
		cp.Entries = append([]domain.Entry(nil), txn.Entries...)
		c.transactions[id] = &cp
	}
	for id, g := range st.goals {
		cp := *g
		c.goals[id] = &cp
	}
	for id, m := range st.milestones {
		cp := *m
		c.milestones[id] = &cp
	}
	return c
}

func (st *memState) activeWallet(ownerID, walletID uint) (*domain.Wallet, error) {
	w, ok := st.wallets[walletID]
	if !ok || w.Archived || w.UserID != ownerID {
		return nil, ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (st *memState) categoryByID(ownerID, categoryID uint) (*domain.Category, error) {
	cat, ok := st.categories[categoryID]
	if !ok || cat.UserID != ownerID {
		return nil, ErrCategoryNotFound
	}
	cp := *cat
	return &cp, nil
}

func (st *memState) countWalletEntries(walletID uint) int64 {
	var n int64
	for _, txn := range st.transactions {
		for _, e := range txn.Entries {
			if e.WalletID == walletID {
				n++
			}
		}
	}
	return n
}

func (st *memState) createTransaction(txn *domain.Transaction) {
	txn.ID = st.id()
	for i := range txn.Entries {
		txn.Entries[i].ID = st.id()
		txn.Entries[i].TransactionID = txn.ID
	}
	cp := *txn
	cp.Entries = append([]domain.Entry(nil), txn.Entries...)
	st.transactions[txn.ID] = &cp
}

func (st *memState) addToBalance(walletID uint, delta decimal.Decimal) error {
	w, ok := st.wallets[walletID]
	if !ok || w.Archived {
		return transientErr(errNoActiveRow)
	}
	w.Balance = w.Balance.Add(delta)
	return nil
}

func (st *memState) saveWallet(w *domain.Wallet) {
	cp := *w
	st.wallets[w.ID] = &cp
}

func (st *memState) goalByID(goalID uint) (*domain.Goal, error) {
	g, ok := st.goals[goalID]
	if !ok {
		return nil, ErrGoalNotFound
	}
	cp := *g
	return &cp, nil
}

func (st *memState) childGoals(parentID uint) []domain.Goal {
	var children []domain.Goal
	for _, g := range st.goals {
		if g.ParentID != nil && *g.ParentID == parentID {
			children = append(children, *g)
		}
	}
	return children
}

func (st *memState) countGoalMilestones(goalID uint) (int64, int64) {
	var total, completed int64
	for _, m := range st.milestones {
		if m.GoalID == goalID {
			total++
			if m.Completed {
				completed++
			}
		}
	}
	return total, completed
}

func (st *memState) saveGoal(g *domain.Goal) {
	cp := *g
	st.goals[g.ID] = &cp
}

// memStore is the in-memory Store used by the tests. A single mutex serializes
// units of work, giving the fake the same no-lost-update guarantee the real
// database provides through row-level serialization.
type memStore struct {
	mu sync.Mutex
	st *memState
}

func newMemStore() *memStore {
	return &memStore{st: newMemState()}
}

func (m *memStore) WithAtomicWork(_ context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.st.clone()
	if err := fn(&memTx{st: m.st}); err != nil {
		m.st = snapshot
		return err
	}
	return nil
}

func (m *memStore) ActiveWallet(_ context.Context, ownerID, walletID uint) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.activeWallet(ownerID, walletID)
}

func (m *memStore) CategoryByID(_ context.Context, ownerID, categoryID uint) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.categoryByID(ownerID, categoryID)
}

func (m *memStore) CountWalletEntries(_ context.Context, walletID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.countWalletEntries(walletID), nil
}

func (m *memStore) CreateTransaction(_ context.Context, txn *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.createTransaction(txn)
	return nil
}

func (m *memStore) AddToBalance(_ context.Context, walletID uint, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.addToBalance(walletID, delta)
}

func (m *memStore) SaveWallet(_ context.Context, w *domain.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.saveWallet(w)
	return nil
}

func (m *memStore) GoalByID(_ context.Context, goalID uint) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.goalByID(goalID)
}

func (m *memStore) ChildGoals(_ context.Context, parentID uint) ([]domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.childGoals(parentID), nil
}

func (m *memStore) CountGoalMilestones(_ context.Context, goalID uint) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, completed := m.st.countGoalMilestones(goalID)
	return total, completed, nil
}

func (m *memStore) SaveGoal(_ context.Context, g *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.saveGoal(g)
	return nil
}

// memTx is the view handed to a unit of work; the surrounding WithAtomicWork
// already holds the lock, so its methods touch the state directly
type memTx struct {
	st *memState
}

func (t *memTx) WithAtomicWork(_ context.Context, fn func(tx Store) error) error {
	// already inside a unit of work
	return fn(t)
}

func (t *memTx) ActiveWallet(_ context.Context, ownerID, walletID uint) (*domain.Wallet, error) {
	return t.st.activeWallet(ownerID, walletID)
}

func (t *memTx) CategoryByID(_ context.Context, ownerID, categoryID uint) (*domain.Category, error) {
	return t.st.categoryByID(ownerID, categoryID)
}

func (t *memTx) CountWalletEntries(_ context.Context, walletID uint) (int64, error) {
	return t.st.countWalletEntries(walletID), nil
}

func (t *memTx) CreateTransaction(_ context.Context, txn *domain.Transaction) error {
	t.st.createTransaction(txn)
	return nil
}

func (t *memTx) AddToBalance(_ context.Context, walletID uint, delta decimal.Decimal) error {
	return t.st.addToBalance(walletID, delta)
}

func (t *memTx) SaveWallet(_ context.Context, w *domain.Wallet) error {
	t.st.saveWallet(w)
	return nil
}

func (t *memTx) GoalByID(_ context.Context, goalID uint) (*domain.Goal, error) {
	return t.st.goalByID(goalID)
}

func (t *memTx) ChildGoals(_ context.Context, parentID uint) ([]domain.Goal, error) {
	return t.st.childGoals(parentID), nil
}

func (t *memTx) CountGoalMilestones(_ context.Context, goalID uint) (int64, int64, error) {
	total, completed := t.st.countGoalMilestones(goalID)
	return total, completed, nil
}

func (t *memTx) SaveGoal(_ context.Context, g *domain.Goal) error {
	t.st.saveGoal(g)
	return nil
}

// seeding helpers

func (m *memStore) seedWallet(ownerID uint, balance string) *domain.Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := decimal.RequireFromString(balance)
	w := &domain.Wallet{
		ID:             m.st.id(),
		UserID:         ownerID,
		Name:           "wallet",
		Kind:           domain.WalletBank,
		OpeningBalance: bal,
		Balance:        bal,
	}
	m.st.wallets[w.ID] = w
	cp := *w
	return &cp
}

func (m *memStore) seedCategory(ownerID uint, typ domain.CategoryType, name string) *domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	cat := &domain.Category{ID: m.st.id(), UserID: ownerID, Type: typ, Name: name}
	m.st.categories[cat.ID] = cat
	cp := *cat
	return &cp
}

func (m *memStore) seedGoal(g domain.Goal) *domain.Goal {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.ID = m.st.id()
	m.st.goals[g.ID] = &g
	cp := g
	return &cp
}

func (m *memStore) seedMilestone(goalID uint, completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms := &domain.Milestone{ID: m.st.id(), GoalID: goalID, Name: "milestone", Completed: completed}
	m.st.milestones[ms.ID] = ms
}

func (m *memStore) walletBalance(walletID uint) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.wallets[walletID].Balance
}

func (m *memStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.st.transactions)
}

// entriesFor collects every stored entry touching the wallet
func (m *memStore) entriesFor(walletID uint) []domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []domain.Entry
	for _, txn := range m.st.transactions {
		for _, e := range txn.Entries {
			if e.WalletID == walletID {
				entries = append(entries, e)
			}
		}
	}
	return entries
}
