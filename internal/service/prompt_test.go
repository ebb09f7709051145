package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresIngredient(t *testing.T) {
	assert.ErrorIs(t, (&GenerationRequest{}).Validate(), ErrIngredientsRequired)
	assert.ErrorIs(t, (&GenerationRequest{Ingredients: []string{"", "  "}}).Validate(), ErrIngredientsRequired)
	assert.NoError(t, (&GenerationRequest{Ingredients: []string{" rice "}}).Validate())
}

func TestBuildPromptDeterministic(t *testing.T) {
	req := &GenerationRequest{
		Ingredients:         []string{"chicken", "rice"},
		CuisineType:         "Thai",
		SpiceLevel:          "Hot",
		DietaryRestrictions: []string{"gluten-free"},
		CookingTime:         30,
	}
	assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
}

func TestBuildPromptContents(t *testing.T) {
	req := &GenerationRequest{
		Ingredients:         []string{"chicken", "rice"},
		CuisineType:         "Thai",
		SpiceLevel:          "Hot",
		DietaryRestrictions: []string{"gluten-free", "dairy-free"},
		CookingTime:         30,
	}

	prompt := BuildPrompt(req)
	assert.Contains(t, prompt, "Available Ingredients: chicken, rice")
	assert.Contains(t, prompt, "Cuisine Type: Thai")
	assert.Contains(t, prompt, "Spice Level: Hot")
	assert.Contains(t, prompt, "Dietary Restrictions: gluten-free, dairy-free")
	assert.Contains(t, prompt, "Maximum Cooking Time: 30 minutes")
	assert.Contains(t, prompt, `"recipes"`)
}

func TestBuildPromptDefaults(t *testing.T) {
	prompt := BuildPrompt(&GenerationRequest{Ingredients: []string{"eggs"}})
	assert.Contains(t, prompt, "Cuisine Type: Any")
	assert.Contains(t, prompt, "Spice Level: Medium")
	assert.Contains(t, prompt, "Dietary Restrictions: None")
	assert.Contains(t, prompt, "Maximum Cooking Time: 60 minutes")
}
