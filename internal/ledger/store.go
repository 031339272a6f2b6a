package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"finbook/internal/domain"
)

// Store is the persistence contract the ledger core runs against. The gorm
// implementation backs production; tests use an in-memory fake. Every method
// reports missing or foreign-owned rows as the matching ledger sentinel and
// any other storage failure as a transient error.
type Store interface {
	// WithAtomicWork runs fn inside one atomic unit of work: every write fn
	// makes through the passed Store becomes visible together on success and
	// leaves no trace when fn returns an error or the commit fails.
	WithAtomicWork(ctx context.Context, fn func(tx Store) error) error

	// ActiveWallet loads a wallet that exists, is not archived, and belongs to
	// ownerID; anything else is ErrWalletNotFound. This is the ownership gate
	// for every ledger mutation.
	ActiveWallet(ctx context.Context, ownerID, walletID uint) (*domain.Wallet, error)

	// CategoryByID loads a category owned by ownerID, else ErrCategoryNotFound.
	CategoryByID(ctx context.Context, ownerID, categoryID uint) (*domain.Category, error)

	// CountWalletEntries counts entries referencing the wallet, including
	// entries of soft-deleted transactions.
	CountWalletEntries(ctx context.Context, walletID uint) (int64, error)

	// CreateTransaction inserts the header together with its entries.
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error

	// AddToBalance moves the wallet balance by delta as a storage-level
	// relative update, never a read-then-write, so concurrent postings to the
	// same wallet serialize at the storage layer. The wallet must still be
	// active; a wallet archived since validation aborts the unit as transient.
	AddToBalance(ctx context.Context, walletID uint, delta decimal.Decimal) error

	// SaveWallet persists administrative wallet edits (name, kind, archived
	// flag). The transaction path never calls it.
	SaveWallet(ctx context.Context, w *domain.Wallet) error

	// GoalByID loads a goal by primary key, else ErrGoalNotFound.
	GoalByID(ctx context.Context, goalID uint) (*domain.Goal, error)

	// ChildGoals lists the direct children of a goal.
	ChildGoals(ctx context.Context, parentID uint) ([]domain.Goal, error)

	// CountGoalMilestones returns how many milestones the goal has and how
	// many of them are completed.
	CountGoalMilestones(ctx context.Context, goalID uint) (total, completed int64, err error)

	// SaveGoal persists a recalculated goal.
	SaveGoal(ctx context.Context, g *domain.Goal) error
}
