package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanDirection tells whether the user lent the money or borrowed it
type LoanDirection string

// Loan directions
const (
	LoanLent     LoanDirection = "lent"
	LoanBorrowed LoanDirection = "borrowed"
)

// Loan Model. Loans track simple running totals only, no interest or
// amortization math.
type Loan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	UserID       uint            `gorm:"index;not null" json:"user_id"`                // Foreign key to the owning User
	Counterparty string          `gorm:"size:64;not null" json:"counterparty"`         // Who the loan is with
	Direction    LoanDirection   `gorm:"size:16;not null" json:"direction"`            // lent / borrowed
	Principal    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"principal"` // Original loan amount
	Paid         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"paid"`      // Running total of payments recorded
	Note         string          `gorm:"size:255" json:"note"`                         // Optional free-form note
	CreatedAt    time.Time       `json:"created_at"`                                   // Timestamp of creation
	UpdatedAt    time.Time       `json:"updated_at"`                                   // Timestamp of last update

	Payments []LoanPayment `gorm:"foreignKey:LoanID" json:"payments,omitempty"` // Recorded payments
}

// LoanPayment Model
type LoanPayment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	LoanID    uint            `gorm:"index;not null" json:"loan_id"`             // Foreign key to the parent Loan
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Payment amount, positive
	Date      time.Time       `gorm:"not null" json:"date"`                      // When the payment was made
	CreatedAt time.Time       `json:"created_at"`                                // Timestamp of creation
}
