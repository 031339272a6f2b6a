package api

import (
	"net/http" // HTTP status codes

	"finbook/internal/ledger" // Ledger failure taxonomy

	"github.com/gin-gonic/gin" // Gin web framework
)

// respondLedgerError maps a ledger failure kind to an HTTP response:
// not found -> 404, invalid/unsupported -> 400, conflict -> 409,
// transient or unknown -> 500
func respondLedgerError(c *gin.Context, err error) {
	switch ledger.KindOf(err) {
	case ledger.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ledger.KindInvalid, ledger.KindUnsupported:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case ledger.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed, please retry"})
	}
}

// currentUserID pulls the authenticated user's ID out of the Gin context
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID") // Set by the JWT middleware
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	id, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return id, true
}
