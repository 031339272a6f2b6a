package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"finbook/internal/domain"
)

// Posting is one computed (wallet, direction, amount) movement the engine
// hands to the entry poster
type Posting struct {
	WalletID  uint
	Direction domain.Direction
	Amount    decimal.Decimal
}

// postEntries is the entry poster: it materializes the posting set as entries
// on the transaction header, inserts header and entries together, then applies
// every balance delta. It must run inside WithAtomicWork; any failure aborts
// the entire unit so no partial transaction is ever observable.
func postEntries(ctx context.Context, tx Store, txn *domain.Transaction, postings []Posting) error {
	txn.Entries = make([]domain.Entry, len(postings))
	for i, p := range postings {
		txn.Entries[i] = domain.Entry{
			WalletID:  p.WalletID,
			Direction: p.Direction,
			Amount:    p.Amount,
		}
	}
	if err := tx.CreateTransaction(ctx, txn); err != nil {
		return err
	}
	for _, p := range postings {
		delta := p.Amount
		if p.Direction == domain.DirectionOut {
			delta = delta.Neg()
		}
		if err := tx.AddToBalance(ctx, p.WalletID, delta); err != nil {
			return err
		}
	}
	return nil
}
