package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the kind of money movement a transaction records
type TransactionType string

// Supported transaction types
const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// Direction tells whether an entry moves money into or out of its wallet
type Direction string

// Entry directions
const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Transaction Model. A transaction is a user-facing financial event; its money
// movement is carried entirely by its entries, which are created together with
// the header and never edited afterwards.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                 // Primary key
	UserID     uint            `gorm:"index;not null" json:"user_id"`        // Foreign key to the owning User
	Type       TransactionType `gorm:"size:16;not null" json:"type"`         // income / expense / transfer
	CategoryID *uint           `gorm:"index" json:"category_id,omitempty"`   // Optional category (income/expense only)
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Positive, at most 2 fractional digits
	Date       time.Time       `gorm:"index;not null" json:"date"`           // When the event happened
	Note       string          `gorm:"size:255" json:"note"`                 // Optional free-form note
	CreatedAt  time.Time       `json:"created_at"`                           // Timestamp of creation
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`                       // Soft-delete marker; entries keep their ledger effect

	Entries []Entry `gorm:"foreignKey:TransactionID" json:"entries"` // Owned entries, written atomically with the header
}

// Entry Model. One signed movement of money against exactly one wallet.
// Entries are immutable: there is no update operation anywhere in the code,
// corrections are made by posting a new transaction.
type Entry struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	TransactionID uint            `gorm:"index;not null" json:"transaction_id"`      // Foreign key to the parent Transaction
	WalletID      uint            `gorm:"index;not null" json:"wallet_id"`           // Foreign key to the affected Wallet
	Direction     Direction       `gorm:"size:8;not null" json:"direction"`          // in / out
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Always positive; sign comes from Direction
}

// SignedAmount returns the amount with the sign implied by the direction,
// positive for in and negative for out
func (e Entry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Amount.Neg()
	}
	return e.Amount
}
