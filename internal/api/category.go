package api

import (
	"net/http" // HTTP status codes
	"strings"  // String matching on DB errors

	"finbook/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CategoryRequest represents a category create/update request
type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`                        // Category name
	Type     string `json:"type" binding:"required,oneof=income expense"`   // Category type
	ParentID *uint  `json:"parent_id"`                                      // Optional parent of the same type
}

// validateCategoryParent checks that a parent exists, is owned by the user,
// shares the type, and does not create a cycle
func validateCategoryParent(db *gorm.DB, userID uint, categoryID uint, typ domain.CategoryType, parentID uint) (int, string) {
	if parentID == categoryID && categoryID != 0 {
		return http.StatusBadRequest, "Category cannot be its own parent"
	}
	var parent domain.Category // Fetch the parent
	if err := db.Where("id = ? AND user_id = ?", parentID, userID).First(&parent).Error; err != nil {
		return http.StatusNotFound, "Parent category not found"
	}
	// Parent must be of the same type
	if parent.Type != typ {
		return http.StatusBadRequest, "Parent category must have the same type"
	}
	// Walk up the chain to reject cycles
	for parent.ParentID != nil {
		if *parent.ParentID == categoryID {
			return http.StatusBadRequest, "Category parent chain would form a cycle"
		}
		if err := db.First(&parent, *parent.ParentID).Error; err != nil {
			break
		}
	}
	return 0, ""
}

// CreateCategoryHandler creates a category; the name is unique per owner and
// type
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req CategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		typ := domain.CategoryType(req.Type) // Category type
		// Validate the parent relationship if one is given
		if req.ParentID != nil {
			if status, msg := validateCategoryParent(db, userID, 0, typ, *req.ParentID); status != 0 {
				c.JSON(status, gin.H{"error": msg})
				return
			}
		}
		// Create the category
		category := domain.Category{
			UserID:   userID,       // Owner
			Name:     req.Name,     // Name
			Type:     typ,          // Type
			ParentID: req.ParentID, // Optional parent
		}
		if err := db.Create(&category).Error; err != nil {
			// Duplicate name within (owner, type) violates the unique index
			if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
				c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"category": category}) // Return the category
	}
}

// ListCategoriesHandler returns the authenticated user's categories,
// optionally filtered by type
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		query := db.Where("user_id = ?", userID) // Scope to the owner
		// Optional type filter
		if t := c.Query("type"); t != "" {
			query = query.Where("type = ?", t)
		}
		var categories []domain.Category // Slice to hold categories
		if err := query.Order("type, name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories}) // Return category list
	}
}

// UpdateCategoryHandler renames or re-parents a category; the type is fixed
// once transactions may reference it
func UpdateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req struct {
			Name     *string `json:"name"`      // New name
			ParentID *uint   `json:"parent_id"` // New parent
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var category domain.Category // Fetch the category scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		// Apply the provided fields
		if req.Name != nil {
			category.Name = *req.Name
		}
		if req.ParentID != nil {
			if status, msg := validateCategoryParent(db, userID, category.ID, category.Type, *req.ParentID); status != 0 {
				c.JSON(status, gin.H{"error": msg})
				return
			}
			category.ParentID = req.ParentID
		}
		// Save the edits
		if err := db.Save(&category).Error; err != nil {
			if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
				c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"category": category}) // Return updated category
	}
}

// DeleteCategoryHandler removes a category that no transaction references
func DeleteCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var category domain.Category // Fetch the category scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&category).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		// Refuse when transactions still reference the category (soft-deleted included)
		var refs int64
		if err := db.Unscoped().Model(&domain.Transaction{}).Where("category_id = ?", category.ID).Count(&refs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category usage"})
			return
		}
		if refs > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category is referenced by transactions"})
			return
		}
		// Refuse when children would be orphaned
		var children int64
		if err := db.Model(&domain.Category{}).Where("parent_id = ?", category.ID).Count(&children).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check child categories"})
			return
		}
		if children > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category has child categories"})
			return
		}
		// Delete the category
		if err := db.Delete(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
