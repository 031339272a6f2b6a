package api

import (
	"net/http" // HTTP status codes
	"time"     // Date parsing and defaults

	"finbook/internal/domain" // Importing domain models
	"finbook/internal/ledger" // Ledger core

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Decimal money amounts
	"gorm.io/gorm"                  // GORM ORM library
)

// TemplateRequest represents a template create/update request; it stores the
// same shape a transaction intent takes
type TemplateRequest struct {
	Name         string          `json:"name" binding:"required"`                               // Display name
	Type         string          `json:"type" binding:"required,oneof=income expense transfer"` // Transaction type
	WalletID     *uint           `json:"wallet_id"`                                             // Target wallet (income/expense)
	CategoryID   *uint           `json:"category_id"`                                           // Category (income/expense)
	FromWalletID *uint           `json:"from_wallet_id"`                                        // Source wallet (transfer)
	ToWalletID   *uint           `json:"to_wallet_id"`                                          // Destination wallet (transfer)
	Amount       decimal.Decimal `json:"amount" binding:"required"`                             // Default amount
	Note         string          `json:"note"`                                                  // Default note
}

// ApplyTemplateRequest represents an apply request; amount and date override
// the template defaults when given
type ApplyTemplateRequest struct {
	Amount *decimal.Decimal `json:"amount"` // Optional amount override
	Date   string           `json:"date"`   // Optional date, defaults to today
}

// CreateTemplateHandler stores a reusable transaction shape
func CreateTemplateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req TemplateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The stored IDs must match the type's shape
		typ := domain.TransactionType(req.Type)
		if typ == domain.TransactionTransfer {
			if req.FromWalletID == nil || req.ToWalletID == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Transfer template requires from_wallet_id and to_wallet_id"})
				return
			}
		} else if req.WalletID == nil || req.CategoryID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Template requires wallet_id and category_id"})
			return
		}
		// Create the template
		template := domain.Template{
			UserID:       userID,           // Owner
			Name:         req.Name,         // Display name
			Type:         typ,              // Transaction type
			WalletID:     req.WalletID,     // Target wallet
			CategoryID:   req.CategoryID,   // Category
			FromWalletID: req.FromWalletID, // Source wallet
			ToWalletID:   req.ToWalletID,   // Destination wallet
			Amount:       req.Amount,       // Default amount
			Note:         req.Note,         // Default note
		}
		if err := db.Create(&template).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"template": template}) // Return the template
	}
}

// ListTemplatesHandler returns the authenticated user's templates
func ListTemplatesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var templates []domain.Template // Slice to hold templates
		if err := db.Where("user_id = ?", userID).Order("name").Find(&templates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"templates": templates}) // Return template list
	}
}

// DeleteTemplateHandler removes a template
func DeleteTemplateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		// Delete scoped to the owner
		res := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).Delete(&domain.Template{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
	}
}

// ApplyTemplateHandler posts a real transaction through the ledger using the
// template's stored shape
func ApplyTemplateHandler(db *gorm.DB, engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req ApplyTemplateRequest // Bind JSON request to struct (all fields optional)
		_ = c.ShouldBindJSON(&req)
		var template domain.Template // Fetch the template scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&template).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		// Overrides fall back to the template defaults
		amount := template.Amount
		if req.Amount != nil {
			amount = *req.Amount
		}
		date := time.Now().UTC().Truncate(24 * time.Hour) // Default to today
		if req.Date != "" {
			parsed, err := time.Parse(time.DateOnly, req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
				return
			}
			date = parsed
		}
		// Build the intent from the stored shape
		intent := ledger.Intent{
			Type:   template.Type, // Transaction type
			Amount: amount,        // Amount
			Date:   date,          // Date
			Note:   template.Note, // Note
		}
		if template.WalletID != nil {
			intent.WalletID = *template.WalletID
		}
		if template.CategoryID != nil {
			intent.CategoryID = *template.CategoryID
		}
		if template.FromWalletID != nil {
			intent.FromWalletID = *template.FromWalletID
		}
		if template.ToWalletID != nil {
			intent.ToWalletID = *template.ToWalletID
		}
		// Post through the ledger core
		res, err := engine.PostTransaction(c.Request.Context(), userID, intent)
		if err != nil {
			respondLedgerError(c, err) // Map ledger failure to HTTP status
			return
		}
		invalidateWalletCaches(c, userID) // Invalidate cached views
		// Return the committed transaction
		c.JSON(http.StatusCreated, gin.H{
			"transaction":      res.Transaction,     // Persisted header with entries
			"affected_wallets": res.AffectedWallets, // Wallets whose balance moved
		})
	}
}
