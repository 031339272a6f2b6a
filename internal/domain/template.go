package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Template Model. A reusable transaction intent: applying a template posts a
// real transaction through the ledger with the stored shape.
type Template struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	UserID       uint            `gorm:"index;not null" json:"user_id"`             // Foreign key to the owning User
	Name         string          `gorm:"size:64;not null" json:"name"`              // Display name
	Type         TransactionType `gorm:"size:16;not null" json:"type"`              // income / expense / transfer
	WalletID     *uint           `json:"wallet_id,omitempty"`                       // Target wallet (income/expense)
	CategoryID   *uint           `json:"category_id,omitempty"`                     // Category (income/expense)
	FromWalletID *uint           `json:"from_wallet_id,omitempty"`                  // Source wallet (transfer)
	ToWalletID   *uint           `json:"to_wallet_id,omitempty"`                    // Destination wallet (transfer)
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Default amount
	Note         string          `gorm:"size:255" json:"note"`                      // Default note
	CreatedAt    time.Time       `json:"created_at"`                                // Timestamp of creation
	UpdatedAt    time.Time       `json:"updated_at"`                                // Timestamp of last update
}
