package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"finbook/internal/domain"
)

// Intent is a validated transaction request handed in by the HTTP layer. Which
// fields matter depends on Type: income/expense use WalletID+CategoryID,
// transfer uses FromWalletID+ToWalletID and carries no category.
type Intent struct {
	Type         domain.TransactionType // income / expense / transfer
	WalletID     uint                   // Target wallet (income/expense)
	CategoryID   uint                   // Category (income/expense)
	FromWalletID uint                   // Source wallet (transfer)
	ToWalletID   uint                   // Destination wallet (transfer)
	Amount       decimal.Decimal        // Positive, at most 2 fractional digits
	Date         time.Time              // When the event happened
	Note         string                 // Optional note
}

// PostResult reports a committed transaction back to the caller
type PostResult struct {
	Transaction     *domain.Transaction // Persisted header with its entries
	Entries         []domain.Entry      // The entries that were posted
	AffectedWallets []uint              // Wallet IDs whose balance moved
}

// Engine validates transaction intents, computes the posting set, and drives
// the entry poster inside a single atomic unit of work. All foreseeable
// problems are rejected before anything is written; a commit that fails after
// validation passed surfaces as a transient error and leaves no trace.
type Engine struct {
	store Store
}

// NewEngine wires the engine to a store handle
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// PostTransaction validates the intent by type, resolves the posting set, and
// commits header, entries, and balance deltas as one indivisible operation
func (e *Engine) PostTransaction(ctx context.Context, ownerID uint, intent Intent) (*PostResult, error) {
	if err := validateAmount(intent.Amount); err != nil {
		return nil, err
	}

	// Per-type validation happens up front with read-only queries; nothing is
	// written until the whole posting set is known to be valid
	var (
		postings   []Posting
		categoryID *uint
	)
	switch intent.Type {
	case domain.TransactionIncome, domain.TransactionExpense:
		wallet, err := e.store.ActiveWallet(ctx, ownerID, intent.WalletID)
		if err != nil {
			return nil, err
		}
		cat, err := e.store.CategoryByID(ctx, ownerID, intent.CategoryID)
		if err != nil {
			return nil, err
		}
		if intent.Type == domain.TransactionIncome {
			if cat.Type != domain.CategoryIncome {
				return nil, ErrInvalidIncomeCategory
			}
			postings = []Posting{{WalletID: wallet.ID, Direction: domain.DirectionIn, Amount: intent.Amount}}
		} else {
			if cat.Type != domain.CategoryExpense {
				return nil, ErrInvalidExpenseCategory
			}
			postings = []Posting{{WalletID: wallet.ID, Direction: domain.DirectionOut, Amount: intent.Amount}}
		}
		categoryID = &cat.ID

	case domain.TransactionTransfer:
		if intent.FromWalletID == intent.ToWalletID {
			return nil, ErrSameWalletTransfer
		}
		from, err := e.store.ActiveWallet(ctx, ownerID, intent.FromWalletID)
		if err != nil {
			return nil, err
		}
		to, err := e.store.ActiveWallet(ctx, ownerID, intent.ToWalletID)
		if err != nil {
			return nil, err
		}
		// Same amount out and in; a transfer is zero-sum across the system
		postings = []Posting{
			{WalletID: from.ID, Direction: domain.DirectionOut, Amount: intent.Amount},
			{WalletID: to.ID, Direction: domain.DirectionIn, Amount: intent.Amount},
		}

	default:
		// Unreachable when the HTTP layer validates the type, kept as a guard
		return nil, ErrUnsupportedType
	}

	txn := &domain.Transaction{
		UserID:     ownerID,
		Type:       intent.Type,
		CategoryID: categoryID,
		Amount:     intent.Amount,
		Date:       intent.Date,
		Note:       intent.Note,
	}

	// Header insert, entry inserts, and balance deltas commit together or not
	// at all
	err := e.store.WithAtomicWork(ctx, func(tx Store) error {
		return postEntries(ctx, tx, txn, postings)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": ownerID,
			"type":    intent.Type,
			"amount":  intent.Amount.String(),
			"error":   err.Error(),
		}).Error("Transaction post failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        ownerID,
		"transaction_id": txn.ID,
		"type":           intent.Type,
		"amount":         intent.Amount.String(),
	}).Info("Transaction posted")

	return &PostResult{
		Transaction:     txn,
		Entries:         txn.Entries,
		AffectedWallets: affectedWallets(postings),
	}, nil
}

// ArchiveWallet marks a wallet archived. A wallet referenced by any entry,
// including entries of soft-deleted transactions, is refused: its balance
// history keeps it alive, and only an administrative edit can retire it.
func (e *Engine) ArchiveWallet(ctx context.Context, ownerID, walletID uint) (*domain.Wallet, error) {
	var archived *domain.Wallet
	err := e.store.WithAtomicWork(ctx, func(tx Store) error {
		w, err := tx.ActiveWallet(ctx, ownerID, walletID)
		if err != nil {
			return err
		}
		n, err := tx.CountWalletEntries(ctx, w.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrWalletHasEntries
		}
		w.Archived = true
		if err := tx.SaveWallet(ctx, w); err != nil {
			return err
		}
		archived = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":   ownerID,
		"wallet_id": walletID,
	}).Info("Wallet archived")
	return archived, nil
}

// validateAmount enforces a positive amount with at most 2 fractional digits
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Truncate(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// affectedWallets lists the distinct wallet IDs touched by a posting set,
// in posting order
func affectedWallets(postings []Posting) []uint {
	seen := make(map[uint]bool, len(postings))
	ids := make([]uint, 0, len(postings))
	for _, p := range postings {
		if !seen[p.WalletID] {
			seen[p.WalletID] = true
			ids = append(ids, p.WalletID)
		}
	}
	return ids
}
