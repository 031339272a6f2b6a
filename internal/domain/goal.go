package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus represents the progress state of a goal
type GoalStatus string

// Goal statuses
const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
)

// Goal Model. Goals are hierarchical (a yearly parent with monthly children);
// a parent with AutoCalculate set has its CurrentValue recomputed from its
// children after any child update. Goals are independent of the ledger.
type Goal struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                              // Primary key
	UserID        uint            `gorm:"index;not null" json:"user_id"`                     // Foreign key to the owning User
	Name          string          `gorm:"size:64;not null" json:"name"`                      // Display name
	ParentID      *uint           `gorm:"index" json:"parent_id,omitempty"`                  // Optional parent goal
	TargetValue   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"target_value"`   // Value the goal aims for
	CurrentValue  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"current_value"`  // Progress so far
	AutoCalculate bool            `gorm:"not null;default:false" json:"auto_calculate"`      // Recompute CurrentValue from children
	Status        GoalStatus      `gorm:"size:16;not null;default:not_started" json:"status"` // Derived progress state
	CreatedAt     time.Time       `json:"created_at"`                                        // Timestamp of creation
	UpdatedAt     time.Time       `json:"updated_at"`                                        // Timestamp of last update

	Children   []Goal      `gorm:"foreignKey:ParentID" json:"children,omitempty"` // Child goals
	Milestones []Milestone `gorm:"foreignKey:GoalID" json:"milestones,omitempty"` // Milestones attached to the goal
}

// Milestone Model. When a goal has milestones, its completion ratio is the
// share of milestones marked done rather than value over target.
type Milestone struct {
	ID        uint      `gorm:"primaryKey" json:"id"`          // Primary key
	GoalID    uint      `gorm:"index;not null" json:"goal_id"` // Foreign key to the owning Goal
	Name      string    `gorm:"size:64;not null" json:"name"`  // Display name
	Completed bool      `gorm:"not null;default:false" json:"completed"` // Whether the milestone is done
	CreatedAt time.Time `json:"created_at"`                    // Timestamp of creation
	UpdatedAt time.Time `json:"updated_at"`                    // Timestamp of last update
}
