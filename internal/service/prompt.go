package service

import (
	"fmt"
	"strings"
)

// GenerationRequest is the structured user input behind one generation call.
type GenerationRequest struct {
	Ingredients         []string `json:"ingredients"`
	CuisineType         string   `json:"cuisineType"`
	SpiceLevel          string   `json:"spiceLevel"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	CookingTime         int      `json:"cookingTime"`
	SessionID           string   `json:"sessionId"`
}

// Validate rejects requests without at least one non-empty ingredient.
func (r *GenerationRequest) Validate() error {
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing) != "" {
			return nil
		}
	}
	return ErrIngredientsRequired
}

// BuildPrompt renders the generation request into the model prompt. It is
// pure and deterministic: the same request always yields byte-identical
// text. The JSON shape embedded here is the contract the ingestion parser
// decodes; the two must change together.
func BuildPrompt(req *GenerationRequest) string {
	cuisine := req.CuisineType
	if cuisine == "" {
		cuisine = "Any"
	}
	spice := req.SpiceLevel
	if spice == "" {
		spice = "Medium"
	}
	dietary := "None"
	if len(req.DietaryRestrictions) > 0 {
		dietary = strings.Join(req.DietaryRestrictions, ", ")
	}
	cookingTime := req.CookingTime
	if cookingTime <= 0 {
		cookingTime = 60
	}

	return fmt.Sprintf(`Generate 6 diverse and creative recipes using the following criteria:

Available Ingredients: %s
Cuisine Type: %s
Spice Level: %s
Dietary Restrictions: %s
Maximum Cooking Time: %d minutes

Requirements:
- Each recipe should primarily use the provided ingredients
- Include realistic cooking times and serving sizes
- Provide VERY DETAILED step-by-step instructions (minimum 6-12 steps per recipe)
- Each instruction should be specific, clear, and actionable
- Include preparation techniques, cooking methods, temperatures, and timing
- Mention visual cues and doneness indicators
- Include tips for seasoning, texture, and flavor development
- Add specific cooking times for each step where relevant
- Include nutritional estimates where possible
- Add relevant tags for easy categorization
- Make recipes practical and achievable for home cooking
- Vary the difficulty levels across recipes
- Ensure recipes respect dietary restrictions if specified
- Instructions should be detailed enough that a beginner can follow them successfully

Please respond with a JSON object in this exact format:
{
  "recipes": [
    {
      "name": "Recipe Name",
      "description": "Brief description",
      "cuisine_type": "Cuisine Type",
      "spice_level": "mild/medium/hot",
      "difficulty": "Easy/Medium/Hard",
      "servings": 4,
      "cooking_time": 30,
      "ingredients": [
        {"name": "ingredient", "amount": "1 cup", "unit": "cup"}
      ],
      "instructions": [
        {"step": 1, "instruction": "Detailed step", "time": 5}
      ],
      "nutrition_info": {
        "calories": 350,
        "protein": "25g",
        "carbs": "30g",
        "fat": "15g"
      },
      "tags": ["tag1", "tag2"]
    }
  ]
}`, strings.Join(req.Ingredients, ", "), cuisine, spice, dietary, cookingTime)
}
