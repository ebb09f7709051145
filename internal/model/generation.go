package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDArray stores a list of UUIDs as JSONB
type UUIDArray []uuid.UUID

func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *UUIDArray) Scan(value interface{}) error {
	if value == nil {
		*a = UUIDArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// RecipeGeneration is the append-only audit row written once per successful
// generation. It is never updated after insertion.
type RecipeGeneration struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt           time.Time        `json:"created_at"`
	SessionID           string           `gorm:"size:255;index" json:"session_id"`
	Ingredients         JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	CuisineType         string           `gorm:"size:50" json:"cuisine_type"`
	SpiceLevel          string           `gorm:"size:20" json:"spice_level"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	CookingTime         int              `json:"cooking_time"`
	GeneratedRecipeIDs  UUIDArray        `gorm:"type:jsonb;not null;default:'[]'" json:"generated_recipe_ids"`
}

func (RecipeGeneration) TableName() string {
	return "recipe_generations"
}

func (g *RecipeGeneration) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
