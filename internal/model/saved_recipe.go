package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedRecipe joins a user to a recipe they saved. The (user_id, recipe_id)
// pair is unique so repeated saves behave as a set insert.
type SavedRecipe struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"saved_at"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_recipe" json:"recipe_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_recipe" json:"user_id"`
}

func (SavedRecipe) TableName() string {
	return "user_saved_recipes"
}

func (s *SavedRecipe) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
