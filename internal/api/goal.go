package api

import (
	"net/http" // HTTP status codes

	"finbook/internal/domain" // Importing domain models
	"finbook/internal/ledger" // Ledger core (goal aggregator)

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Decimal money amounts
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// GoalRequest represents a goal create request
type GoalRequest struct {
	Name          string          `json:"name" binding:"required"` // Display name
	ParentID      *uint           `json:"parent_id"`               // Optional parent goal
	TargetValue   decimal.Decimal `json:"target_value"`            // Target value
	CurrentValue  decimal.Decimal `json:"current_value"`           // Starting progress
	AutoCalculate bool            `json:"auto_calculate"`          // Recompute from children
}

// UpdateGoalRequest represents a goal update request
type UpdateGoalRequest struct {
	Name          *string          `json:"name"`           // New display name
	TargetValue   *decimal.Decimal `json:"target_value"`   // New target value
	CurrentValue  *decimal.Decimal `json:"current_value"`  // New progress value
	AutoCalculate *bool            `json:"auto_calculate"` // Toggle auto calculation
}

// recalculateParent triggers the auto-aggregator on a goal's parent after a
// child mutation; best effort, a failure is logged and not surfaced
func recalculateParent(c *gin.Context, engine *ledger.Engine, parentID *uint) {
	if parentID == nil {
		return
	}
	if _, err := engine.RecalculateGoal(c.Request.Context(), *parentID); err != nil {
		// Aggregation is eventual; the child mutation already succeeded
		logrus.WithFields(logrus.Fields{
			"goal_id": *parentID,   // Parent goal ID
			"error":   err.Error(), // Error message
		}).Warn("Parent goal recalculation failed")
	}
}

// CreateGoalHandler creates a goal and refreshes the parent's aggregate
func CreateGoalHandler(db *gorm.DB, engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req GoalRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// A parent must exist and be owned by the same user
		if req.ParentID != nil {
			var parent domain.Goal
			if err := db.Where("id = ? AND user_id = ?", *req.ParentID, userID).First(&parent).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Parent goal not found"})
				return
			}
		}
		// Create the goal
		goal := domain.Goal{
			UserID:        userID,            // Owner
			Name:          req.Name,          // Display name
			ParentID:      req.ParentID,      // Optional parent
			TargetValue:   req.TargetValue,   // Target value
			CurrentValue:  req.CurrentValue,  // Starting progress
			AutoCalculate: req.AutoCalculate, // Auto calculation flag
			Status:        domain.GoalNotStarted,
		}
		if goal.CurrentValue.IsPositive() {
			goal.Status = domain.GoalInProgress
		}
		if err := db.Create(&goal).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
			return
		}
		recalculateParent(c, engine, goal.ParentID)          // Refresh the parent aggregate
		c.JSON(http.StatusCreated, gin.H{"goal": goal})      // Return the goal
	}
}

// ListGoalsHandler returns the authenticated user's goals with children and
// milestones
func ListGoalsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var goals []domain.Goal // Slice to hold goals
		// Top-level goals with their children and milestones preloaded
		if err := db.Where("user_id = ? AND parent_id IS NULL", userID).
			Preload("Children").
			Preload("Milestones").
			Order("id").
			Find(&goals).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"goals": goals}) // Return goal list
	}
}

// UpdateGoalHandler updates a goal and refreshes the parent's aggregate
func UpdateGoalHandler(db *gorm.DB, engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req UpdateGoalRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var goal domain.Goal // Fetch the goal scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&goal).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		// Apply the provided fields
		if req.Name != nil {
			goal.Name = *req.Name
		}
		if req.TargetValue != nil {
			goal.TargetValue = *req.TargetValue
		}
		if req.CurrentValue != nil {
			goal.CurrentValue = *req.CurrentValue
		}
		if req.AutoCalculate != nil {
			goal.AutoCalculate = *req.AutoCalculate
		}
		// Save the edits
		if err := db.Save(&goal).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
			return
		}
		recalculateParent(c, engine, goal.ParentID) // Refresh the parent aggregate
		// Refresh the goal's own aggregate when it calculates from children
		if goal.AutoCalculate {
			if updated, err := engine.RecalculateGoal(c.Request.Context(), goal.ID); err == nil {
				goal = *updated
			}
		}
		c.JSON(http.StatusOK, gin.H{"goal": goal}) // Return updated goal
	}
}

// DeleteGoalHandler removes a goal with its milestones and refreshes the
// parent's aggregate
func DeleteGoalHandler(db *gorm.DB, engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var goal domain.Goal // Fetch the goal scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&goal).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		// Refuse when the goal still has children
		var children int64
		if err := db.Model(&domain.Goal{}).Where("parent_id = ?", goal.ID).Count(&children).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check child goals"})
			return
		}
		if children > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Goal has child goals"})
			return
		}
		// Delete milestones first, then the goal
		if err := db.Where("goal_id = ?", goal.ID).Delete(&domain.Milestone{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete milestones"})
			return
		}
		if err := db.Delete(&goal).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete goal"})
			return
		}
		recalculateParent(c, engine, goal.ParentID) // Refresh the parent aggregate
		c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
	}
}

// MilestoneRequest represents a milestone create/update request
type MilestoneRequest struct {
	Name      string `json:"name" binding:"required"` // Display name
	Completed bool   `json:"completed"`               // Completion flag
}

// AddMilestoneHandler attaches a milestone to a goal and refreshes the goal's
// status
func AddMilestoneHandler(db *gorm.DB, engine *ledger.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c) // Get userID from context
		if !ok {
			return
		}
		var req MilestoneRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var goal domain.Goal // The milestone's goal, scoped to the owner
		if err := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&goal).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
			return
		}
		// Create the milestone
		milestone := domain.Milestone{GoalID: goal.ID, Name: req.Name, Completed: req.Completed}
		if err := db.Create(&milestone).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create milestone"})
			return
		}
		// Milestone ratio drives the goal status when milestones exist
		if _, err := engine.RecalculateGoal(c.Request.Context(), goal.ID); err != nil {
			logrus.WithFields(logrus.Fields{"goal_id": goal.ID, "error": err.Error()}).Warn("Goal recalculation failed")
		}
		c.JSON(http.StatusCreated, gin.H{"milestone": milestone}) // Return the milestone
	}
}
