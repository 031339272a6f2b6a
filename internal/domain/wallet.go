package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletKind classifies a wallet by where the money lives
type WalletKind string

// Supported wallet kinds
const (
	WalletCash    WalletKind = "cash"
	WalletBank    WalletKind = "bank"
	WalletEWallet WalletKind = "ewallet"
	WalletCredit  WalletKind = "credit"
)

// IsValid reports whether k is one of the supported wallet kinds
func (k WalletKind) IsValid() bool {
	return k == WalletCash || k == WalletBank || k == WalletEWallet || k == WalletCredit
}

// Wallet Model
type Wallet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                               // Primary key
	UserID         uint            `gorm:"index;not null" json:"user_id"`                      // Foreign key to the owning User
	Name           string          `gorm:"size:64;not null" json:"name"`                       // Display name
	Kind           WalletKind      `gorm:"size:16;not null" json:"kind"`                       // cash / bank / ewallet / credit
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"opening_balance"` // Balance the wallet started with
	Balance        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance"`         // Current balance, moved only by posted entries
	Archived       bool            `gorm:"not null;default:false" json:"archived"`             // Archived wallets reject all postings
	CreatedAt      time.Time       `json:"created_at"`                                         // Timestamp of creation
	UpdatedAt      time.Time       `json:"updated_at"`                                         // Timestamp of last update
}
