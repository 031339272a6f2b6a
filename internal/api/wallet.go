package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"finbook/internal/domain" // Importing domain models
	"finbook/internal/ledger" // Ledger core
	"finbook/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateWalletRequest represents a wallet creation request
type CreateWalletRequest struct {
	Name           string          `json:"name" binding:"required"`                                // Display name
	Kind           string          `json:"kind" binding:"required,oneof=cash bank ewallet credit"` // Wallet kind
	OpeningBalance decimal.Decimal `json:"opening_balance"`                                        // Starting balance, defaults to 0
}

// UpdateWalletRequest represents an administrative wallet edit. Balance here
// is a direct set, allowed only on this CRUD path, never on the transaction
// path.
type UpdateWalletRequest struct {
	Name     *string          `json:"name"`     // New display name
	Kind     *string          `json:"kind"`     // New wallet kind
	Balance  *decimal.Decimal `json:"balance"`  // Direct balance correction (admin edit)
	Archived *bool            `json:"archived"` // Direct archived-flag edit
}

// invalidateWalletCaches drops the cached wallet views for a user after a
// ledger mutation
func invalidateWalletCaches(c *gin.Context, userID uint) {
	// Redis client is injected into the context by the route group
	if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
		ctx := context.Background()                              // Context for Redis operations
		userKey := strconv.Itoa(int(userID))                     // User ID as string
		_ = utils.DeleteCache(ctx, rdb, "wallets:user:"+userKey) // Invalidate wallet list cache
		// Invalidate paginated transaction list cache (simple version: delete first 5 pages)
		for i := 1; i <= 5; i++ {
			_ = utils.DeleteCache(ctx, rdb, "txlist:user:"+userKey+":page:"+strconv.Itoa(i)+":size:20")
		}
	}
}

// CreateWalletHandler creates a wallet; the balance starts at the opening
// balance and is only moved by posted entries afterwards
func CreateWalletHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req CreateWalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create wallet with balance equal to the opening balance
		wallet := domain.Wallet{
			UserID:         userID,                      // Owner
			Name:           req.Name,                    // Display name
			Kind:           domain.WalletKind(req.Kind), // Wallet kind
			OpeningBalance: req.OpeningBalance,          // Starting balance
			Balance:        req.OpeningBalance,          // Current balance starts at opening
		}
		// Save the new wallet
		if err := db.Create(&wallet).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create wallet") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create wallet"})
			return
		}
		invalidateWalletCaches(c, userID) // Invalidate cached wallet views
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
	}
}

// ListWalletsHandler returns the authenticated user's wallets
func ListWalletsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		ctx := context.Background()                                // Context for Redis operations
		cacheKey := "wallets:user:" + strconv.Itoa(int(userID))    // Cache key for wallet list
		var wallets []domain.Wallet                                // Slice to hold wallets
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallets) // Try to get from cache
		if err == nil && found {
			// Return cached wallets
			c.JSON(http.StatusOK, gin.H{"wallets": wallets, "cached": true})
			return
		}
		// If not in cache, fetch from DB; archived wallets are included but flagged
		if err := db.Where("user_id = ?", userID).Order("id").Find(&wallets).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallets"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallets, 60*time.Second)   // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallets": wallets, "cached": false}) // Return wallet list
	}
}

// GetWalletHandler returns a single wallet owned by the authenticated user
func GetWalletHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var wallet domain.Wallet // Wallet struct to hold data
		// Query wallet by ID scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet}) // Return wallet info
	}
}

// UpdateWalletHandler applies administrative edits to a wallet. This is the
// only path that may set the balance directly; the transaction path moves it
// through relative deltas exclusively.
func UpdateWalletHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req UpdateWalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var wallet domain.Wallet // Fetch the wallet
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		// Apply the provided fields
		if req.Name != nil {
			wallet.Name = *req.Name
		}
		if req.Kind != nil {
			kind := domain.WalletKind(*req.Kind)
			if !kind.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet kind"})
				return
			}
			wallet.Kind = kind
		}
		if req.Balance != nil {
			wallet.Balance = *req.Balance // Direct set, administrative edit only
		}
		if req.Archived != nil {
			wallet.Archived = *req.Archived
		}
		// Save the edits
		if err := db.Save(&wallet).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wallet"})
			return
		}
		// Log the administrative edit
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,    // User ID
			"wallet_id": wallet.ID, // Wallet ID
		}).Info("Wallet updated")
		invalidateWalletCaches(c, userID)              // Invalidate cached wallet views
		c.JSON(http.StatusOK, gin.H{"wallet": wallet}) // Return updated wallet
	}
}

// ArchiveWalletHandler retires a wallet through the ledger core; a wallet
// referenced by any entry is refused with HAS_ENTRIES
func ArchiveWalletHandler(engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		// Parse the wallet ID from the path
		walletID, err := strconv.Atoi(c.Param("id"))
		if err != nil || walletID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet id"})
			return
		}
		// Delegate to the ledger core
		wallet, err := engine.ArchiveWallet(c.Request.Context(), userID, uint(walletID))
		if err != nil {
			respondLedgerError(c, err) // Map ledger failure to HTTP status
			return
		}
		invalidateWalletCaches(c, userID)              // Invalidate cached wallet views
		c.JSON(http.StatusOK, gin.H{"wallet": wallet}) // Return archived wallet
	}
}
