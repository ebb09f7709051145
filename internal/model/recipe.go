package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
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

// Ingredient is one line item of a recipe's ingredient list.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit,omitempty"`
}

// IngredientList stores ingredient line items as JSONB
type IngredientList []Ingredient

func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
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

	return json.Unmarshal(bytes, l)
}

// Instruction is one numbered step of a recipe. Time is minutes and optional.
type Instruction struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
	Time        int    `json:"time,omitempty"`
}

// InstructionList stores instruction steps as JSONB
type InstructionList []Instruction

func (l InstructionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *InstructionList) Scan(value interface{}) error {
	if value == nil {
		*l = InstructionList{}
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

	return json.Unmarshal(bytes, l)
}

// NutritionInfo is the per-recipe nutrition estimate. Protein, carbs and fat
// stay in the form the model emits them ("25g"), calories as a number.
type NutritionInfo struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  string  `json:"protein,omitempty"`
	Carbs    string  `json:"carbs,omitempty"`
	Fat      string  `json:"fat,omitempty"`
}

func (n NutritionInfo) Value() (driver.Value, error) {
	return json.Marshal(n)
}

func (n *NutritionInfo) Scan(value interface{}) error {
	if value == nil {
		*n = NutritionInfo{}
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

	return json.Unmarshal(bytes, n)
}

// Recipe is a persisted recipe row. ExpiresAt is set on anonymous
// generations and cleared when a user saves the recipe.
type Recipe struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	DeletedAt           gorm.DeletedAt   `gorm:"index" json:"-"`
	Name                string           `gorm:"size:255;not null" json:"name"`
	Description         string           `gorm:"type:text" json:"description"`
	CuisineType         string           `gorm:"size:50" json:"cuisine_type"`
	SpiceLevel          string           `gorm:"size:20" json:"spice_level"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	Difficulty          string           `gorm:"size:20" json:"difficulty"`
	Servings            int              `json:"servings"`
	CookingTime         int              `json:"cooking_time"`
	Ingredients         IngredientList   `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions        InstructionList  `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	NutritionInfo       NutritionInfo    `gorm:"type:jsonb;not null;default:'{}'" json:"nutrition_info"`
	Tags                JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	ImageURL            string           `gorm:"size:512" json:"image_url"`
	ExpiresAt           *time.Time       `gorm:"index" json:"expires_at,omitempty"`
}

// BeforeCreate assigns the durable identifier. Done in the application so
// the same models work against both postgres and the sqlite test database.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
