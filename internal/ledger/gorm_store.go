package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finbook/internal/domain"
)

// gormStore implements Store on a *gorm.DB handle. WithAtomicWork hands out a
// store bound to the transaction handle, mirroring how gorm scopes its own
// db.Transaction callback.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm handle in the ledger Store contract
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// WithAtomicWork runs fn inside one database transaction; gorm rolls the whole
// unit back when fn returns an error
func (s *gormStore) WithAtomicWork(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	// Keep typed ledger failures as-is; anything else is a commit-level
	// failure the caller may retry
	if err != nil && KindOf(err) == KindUnknown {
		return transientErr(err)
	}
	return err
}

// ActiveWallet gates every ledger mutation: absent, archived, and
// foreign-owned wallets all read as not found
func (s *gormStore) ActiveWallet(ctx context.Context, ownerID, walletID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND archived = ?", walletID, ownerID, false).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, transientErr(err)
	}
	return &w, nil
}

// CategoryByID loads a category scoped to its owner
func (s *gormStore) CategoryByID(ctx context.Context, ownerID, categoryID uint) (*domain.Category, error) {
	var cat domain.Category
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, ownerID).
		First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, transientErr(err)
	}
	return &cat, nil
}

// CountWalletEntries counts every entry referencing the wallet; soft-deleted
// transactions keep their entries, so those count too
func (s *gormStore) CountWalletEntries(ctx context.Context, walletID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&domain.Entry{}).
		Where("wallet_id = ?", walletID).
		Count(&n).Error
	if err != nil {
		return 0, transientErr(err)
	}
	return n, nil
}

// CreateTransaction inserts the header and its entries in one Create; gorm
// cascades the association insert
func (s *gormStore) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		return transientErr(err)
	}
	return nil
}

// AddToBalance applies a relative delta at the database
// (UPDATE wallets SET balance = balance + ?) so concurrent postings serialize
// on the wallet row instead of racing in application memory. Zero rows
// affected means the wallet vanished or was archived after validation; the
// unit is abandoned as transient for the caller to retry.
func (s *gormStore) AddToBalance(ctx context.Context, walletID uint, delta decimal.Decimal) error {
	res := s.db.WithContext(ctx).
		Model(&domain.Wallet{}).
		Where("id = ? AND archived = ?", walletID, false).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return transientErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return transientErr(errors.New("wallet row no longer active"))
	}
	return nil
}

// SaveWallet persists administrative wallet edits
func (s *gormStore) SaveWallet(ctx context.Context, w *domain.Wallet) error {
	if err := s.db.WithContext(ctx).Save(w).Error; err != nil {
		return transientErr(err)
	}
	return nil
}

// GoalByID loads a goal by primary key
func (s *gormStore) GoalByID(ctx context.Context, goalID uint) (*domain.Goal, error) {
	var g domain.Goal
	err := s.db.WithContext(ctx).First(&g, goalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, transientErr(err)
	}
	return &g, nil
}

// ChildGoals lists the direct children of a goal
func (s *gormStore) ChildGoals(ctx context.Context, parentID uint) ([]domain.Goal, error) {
	var children []domain.Goal
	err := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Find(&children).Error
	if err != nil {
		return nil, transientErr(err)
	}
	return children, nil
}

// CountGoalMilestones counts a goal's milestones and how many are completed
func (s *gormStore) CountGoalMilestones(ctx context.Context, goalID uint) (int64, int64, error) {
	var total, completed int64
	err := s.db.WithContext(ctx).
		Model(&domain.Milestone{}).
		Where("goal_id = ?", goalID).
		Count(&total).Error
	if err != nil {
		return 0, 0, transientErr(err)
	}
	err = s.db.WithContext(ctx).
		Model(&domain.Milestone{}).
		Where("goal_id = ? AND completed = ?", goalID, true).
		Count(&completed).Error
	if err != nil {
		return 0, 0, transientErr(err)
	}
	return total, completed, nil
}

// SaveGoal persists a recalculated goal
func (s *gormStore) SaveGoal(ctx context.Context, g *domain.Goal) error {
	if err := s.db.WithContext(ctx).Save(g).Error; err != nil {
		return transientErr(err)
	}
	return nil
}
