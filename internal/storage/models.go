package storage

import "time"

// FavoriteModel is the GORM model for the favorites table.
type FavoriteModel struct {
	Signature   string    `gorm:"primaryKey"`
	RecipeName  string    `gorm:"not null;index:idx_recipe_name"`
	Ingredients string    `gorm:"not null;default:'[]'"` // JSON array
	SavedAt     time.Time `gorm:"not null;index:idx_saved_at"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Steps []FavoriteStepModel `gorm:"foreignKey:Signature;references:Signature;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (FavoriteModel) TableName() string { return "favorites" }

// FavoriteStepModel is the GORM model for the steps stored with a favorite.
type FavoriteStepModel struct {
	ID              uint   `gorm:"primaryKey"`
	Signature       string `gorm:"not null;index:idx_step_signature"`
	Position        int    `gorm:"not null"`
	Number          int    `gorm:"not null;default:0"`
	Description     string `gorm:"not null;default:''"`
	IngredientsUsed string `gorm:"not null;default:'[]'"` // JSON array
	TimeMinutes     int    `gorm:"not null;default:0;check:time_minutes >= 0"`
}

// TableName specifies the table name for GORM
func (FavoriteStepModel) TableName() string { return "favorite_steps" }
