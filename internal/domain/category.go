package domain

import "time"

// CategoryType represents the type of category
type CategoryType string

// Category types; a category tags transactions of the matching type only
const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// IsValid reports whether t is a supported category type
func (t CategoryType) IsValid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category Model. Classification tag for income/expense transactions; name is
// unique per (user, type), and a parent must share the type without forming a
// cycle.
type Category struct {
	ID        uint         `gorm:"primaryKey" json:"id"`                                              // Primary key
	UserID    uint         `gorm:"uniqueIndex:idx_category_owner_type_name;not null" json:"user_id"`  // Foreign key to the owning User
	Type      CategoryType `gorm:"uniqueIndex:idx_category_owner_type_name;size:16;not null" json:"type"` // income / expense
	Name      string       `gorm:"uniqueIndex:idx_category_owner_type_name;size:64;not null" json:"name"` // Unique per owner and type
	ParentID  *uint        `gorm:"index" json:"parent_id,omitempty"`                                  // Optional parent of the same type
	CreatedAt time.Time    `json:"created_at"`                                                        // Timestamp of creation
	UpdatedAt time.Time    `json:"updated_at"`                                                        // Timestamp of last update

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`   // Parent category, if any
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"` // Child categories
}
