package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time parsing and durations

	"finbook/internal/domain" // Importing domain models
	"finbook/internal/ledger" // Ledger core
	"finbook/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateTransactionRequest represents a transaction intent as submitted over
// HTTP. Which IDs are required depends on the type: income/expense take
// wallet_id and category_id, transfer takes from_wallet_id and to_wallet_id
// with no category.
type CreateTransactionRequest struct {
	Type         string          `json:"type" binding:"required,oneof=income expense transfer"` // Transaction type
	WalletID     uint            `json:"wallet_id"`                                             // Target wallet (income/expense)
	CategoryID   uint            `json:"category_id"`                                           // Category (income/expense)
	FromWalletID uint            `json:"from_wallet_id"`                                        // Source wallet (transfer)
	ToWalletID   uint            `json:"to_wallet_id"`                                          // Destination wallet (transfer)
	Amount       decimal.Decimal `json:"amount" binding:"required"`                             // Positive, max 2 fractional digits
	Date         string          `json:"date" binding:"required"`                               // Date in YYYY-MM-DD form
	Note         string          `json:"note"`                                                  // Optional note
}

// CreateTransactionHandler validates the request shape, hands the intent to
// the transaction engine, and invalidates the cached views the posting made
// stale
func CreateTransactionHandler(engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Parse the transaction date
		date, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		// Build the intent; per-type ledger rules are enforced by the engine
		intent := ledger.Intent{
			Type:         domain.TransactionType(req.Type), // Transaction type
			WalletID:     req.WalletID,                     // Target wallet
			CategoryID:   req.CategoryID,                   // Category
			FromWalletID: req.FromWalletID,                 // Source wallet
			ToWalletID:   req.ToWalletID,                   // Destination wallet
			Amount:       req.Amount,                       // Amount
			Date:         date,                             // Date
			Note:         req.Note,                         // Note
		}
		// Post through the ledger core; commits atomically or not at all
		res, err := engine.PostTransaction(c.Request.Context(), userID, intent)
		if err != nil {
			respondLedgerError(c, err) // Map ledger failure to HTTP status
			return
		}
		invalidateWalletCaches(c, userID) // Invalidate cached wallet and list views
		// Return the committed transaction with its entries
		c.JSON(http.StatusCreated, gin.H{
			"transaction":      res.Transaction,     // Persisted header with entries
			"entries":          res.Entries,         // Posted entries
			"affected_wallets": res.AffectedWallets, // Wallets whose balance moved
		})
	}
}

// ListTransactionsHandler returns the authenticated user's transactions with
// pagination and optional type/wallet filters
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		offset := (page - 1) * pageSize // Calculate offset
		typeFilter := c.Query("type")   // Optional type filter
		walletFilter := c.Query("wallet_id") // Optional wallet filter

		// Only unfiltered first pages share the cache; filtered views go to the DB
		useCache := typeFilter == "" && walletFilter == ""
		cacheKey := "txlist:user:" + strconv.Itoa(int(userID)) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		if useCache {
			// Try to get from cache
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{
					"transactions": cached.Transactions, // Cached transactions
					"page":         cached.Page,         // Current page
					"page_size":    cached.PageSize,     // Page size
					"total":        cached.Total,        // Total transactions
					"total_pages":  cached.TotalPages,   // Total pages
					"cached":       true,
				})
				return
			}
		}
		// Build the filtered query; soft-deleted transactions are excluded by gorm
		query := db.Model(&domain.Transaction{}).Where("user_id = ?", userID)
		if typeFilter != "" {
			query = query.Where("type = ?", typeFilter)
		}
		if walletFilter != "" {
			// Filter by wallet through the entries table
			query = query.Where("id IN (?)", db.Model(&domain.Entry{}).Select("transaction_id").Where("wallet_id = ?", walletFilter))
		}
		var total int64 // Total count of transactions
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.Transaction // Slice to hold transactions
		// Fetch paginated transactions with their entries
		if err := query.Preload("Entries").
			Order("date desc, id desc").
			Offset(offset).
			Limit(pageSize).
			Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": transactions, // List of transactions
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total transactions
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Not from cache
		}
		if useCache {
			// Cache the result for 60 seconds
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		}
		c.JSON(http.StatusOK, resp) // Return transaction list
	}
}

// DeleteTransactionHandler soft-deletes a transaction. The deletion marker
// hides the transaction from listings but its entries keep their ledger
// effect: balances are not reversed.
func DeleteTransactionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var txn domain.Transaction // Fetch the transaction scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&txn).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		// Set the soft-delete marker only; entries and balances stay untouched
		if err := db.Delete(&txn).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
			return
		}
		// Log the soft delete
		logrus.WithFields(logrus.Fields{
			"user_id":        userID, // User ID
			"transaction_id": txn.ID, // Transaction ID
		}).Info("Transaction soft-deleted")
		invalidateWalletCaches(c, userID) // Invalidate cached list views
		c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
	}
}
