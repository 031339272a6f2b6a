package api

import (
	"net/http" // HTTP status codes
	"time"     // Date parsing

	"finbook/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Decimal money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// LoanRequest represents a loan create request
type LoanRequest struct {
	Counterparty string          `json:"counterparty" binding:"required"`                 // Who the loan is with
	Direction    string          `json:"direction" binding:"required,oneof=lent borrowed"` // lent / borrowed
	Principal    decimal.Decimal `json:"principal" binding:"required"`                    // Original amount
	Note         string          `json:"note"`                                            // Optional note
}

// LoanPaymentRequest represents a payment against a loan
type LoanPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"` // Payment amount
	Date   string          `json:"date" binding:"required"`   // Date in YYYY-MM-DD form
}

// CreateLoanHandler creates a loan with a zero running total
func CreateLoanHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req LoanRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Principal must be positive
		if !req.Principal.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Principal must be positive"})
			return
		}
		// Create the loan
		loan := domain.Loan{
			UserID:       userID,                             // Owner
			Counterparty: req.Counterparty,                   // Counterparty
			Direction:    domain.LoanDirection(req.Direction), // lent / borrowed
			Principal:    req.Principal,                      // Original amount
			Paid:         decimal.Zero,                       // Running total starts at 0
			Note:         req.Note,                           // Optional note
		}
		if err := db.Create(&loan).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create loan"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"loan": loan}) // Return the loan
	}
}

// ListLoansHandler returns the authenticated user's loans with payments
func ListLoansHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var loans []domain.Loan // Slice to hold loans
		if err := db.Where("user_id = ?", userID).Preload("Payments").Order("id").Find(&loans).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch loans"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"loans": loans}) // Return loan list
	}
}

// AddLoanPaymentHandler records a payment and moves the running total with a
// relative update
func AddLoanPaymentHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req LoanPaymentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Parse the payment date
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		var loan domain.Loan // Fetch the loan scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&loan).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		// Record payment and bump the running total atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			payment := domain.LoanPayment{
				LoanID: loan.ID,    // Parent loan
				Amount: req.Amount, // Payment amount
				Date:   date,       // Payment date
			}
			// Save the payment
			if err := tx.Create(&payment).Error; err != nil {
				return err // Return error to rollback
			}
			// Move the running total with a relative update
			if err := tx.Model(&loan).Update("paid", gorm.Expr("paid + ?", req.Amount)).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"loan_id": loan.ID,     // Loan ID
				"amount":  req.Amount,  // Payment amount
				"error":   err.Error(), // Error message
			}).Error("Loan payment failed") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment failed"})
			return
		}
		// Reload to return the fresh running total
		if err := db.Preload("Payments").First(&loan, loan.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch loan"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"loan": loan}) // Return loan with payments
	}
}

// DeleteLoanHandler removes a loan together with its payments
func DeleteLoanHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var loan domain.Loan // Fetch the loan scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&loan).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
			return
		}
		// Delete payments and loan atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("loan_id = ?", loan.ID).Delete(&domain.LoanPayment{}).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&loan).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete loan"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Loan deleted"})
	}
}
