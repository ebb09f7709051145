package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pageza/whatscooking/backend/internal/model"
)

// rawSnippetLimit bounds how much of a failed response is kept for
// diagnostics.
const rawSnippetLimit = 500

// RecipeCandidate is one recipe decoded and defaulted from the model
// response, prior to persistence.
type RecipeCandidate struct {
	Name         string
	Description  string
	CuisineType  string
	SpiceLevel   string
	Difficulty   string
	Servings     int
	CookingTime  int
	Ingredients  []model.Ingredient
	Instructions []model.Instruction
	Nutrition    model.NutritionInfo
	Tags         []string
}

// flexInt accepts a JSON number or a numeric string
type flexInt struct {
	Value int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = int(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err == nil {
			f.Value = n
		}
		return nil
	}

	// Unusable shape resolves to zero; coercion fills the default later.
	f.Value = 0
	return nil
}

// flexString accepts a JSON string or a number rendered back to a string
type flexString struct {
	Value string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		f.Value = str
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = strconv.FormatFloat(num, 'f', -1, 64)
		return nil
	}

	f.Value = ""
	return nil
}

type rawIngredient struct {
	Name   string     `json:"name"`
	Amount flexString `json:"amount"`
	Unit   string     `json:"unit"`
}

type rawInstruction struct {
	Step        flexInt `json:"step"`
	Instruction string  `json:"instruction"`
	Time        flexInt `json:"time"`
}

type rawNutrition struct {
	Calories flexInt    `json:"calories"`
	Protein  flexString `json:"protein"`
	Carbs    flexString `json:"carbs"`
	Fat      flexString `json:"fat"`
}

type rawRecipe struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	CuisineType  string           `json:"cuisine_type"`
	SpiceLevel   string           `json:"spice_level"`
	Difficulty   string           `json:"difficulty"`
	Servings     flexInt          `json:"servings"`
	CookingTime  flexInt          `json:"cooking_time"`
	Ingredients  []rawIngredient  `json:"ingredients"`
	Instructions []rawInstruction `json:"instructions"`
	Nutrition    rawNutrition     `json:"nutrition_info"`
	Tags         []string         `json:"tags"`
}

var titleCaser = cases.Title(language.English)

// Ingest turns raw model output into defaulted recipe candidates. It repairs
// the known defect classes, strict-parses once, validates the recipes array
// and coerces every field to a safe value. Coercion itself cannot fail: a
// recipe that parsed is always normalized, never rejected.
func Ingest(raw string, req *GenerationRequest) ([]RecipeCandidate, error) {
	repaired, err := RepairJSON(raw)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Recipes []rawRecipe `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(repaired), &wrapper); err != nil {
		return nil, &MalformedJSONError{Snippet: Snippet(raw), Err: err}
	}

	if len(wrapper.Recipes) == 0 {
		return nil, ErrEmptyRecipeList
	}

	candidates := make([]RecipeCandidate, 0, len(wrapper.Recipes))
	for _, r := range wrapper.Recipes {
		candidates = append(candidates, coerceRecipe(r, req))
	}
	return candidates, nil
}

// Snippet returns a bounded prefix of a raw response for logging.
func Snippet(raw string) string {
	if len(raw) > rawSnippetLimit {
		return raw[:rawSnippetLimit]
	}
	return raw
}

func coerceRecipe(r rawRecipe, req *GenerationRequest) RecipeCandidate {
	c := RecipeCandidate{
		Name:        r.Name,
		Description: r.Description,
		CuisineType: r.CuisineType,
		SpiceLevel:  r.SpiceLevel,
		Difficulty:  normalizeDifficulty(r.Difficulty),
		Servings:    r.Servings.Value,
		CookingTime: r.CookingTime.Value,
	}

	if c.Name == "" {
		c.Name = "Untitled Recipe"
	}
	if c.Description == "" {
		c.Description = "A delicious recipe"
	}
	if c.CuisineType == "" {
		c.CuisineType = req.CuisineType
	}
	if c.CuisineType == "" {
		c.CuisineType = "Any"
	}
	if c.SpiceLevel == "" {
		c.SpiceLevel = req.SpiceLevel
	}
	if c.SpiceLevel == "" {
		c.SpiceLevel = "Medium"
	}
	if c.Servings <= 0 {
		c.Servings = 4
	}
	if c.CookingTime <= 0 {
		c.CookingTime = req.CookingTime
	}
	if c.CookingTime <= 0 {
		c.CookingTime = 60
	}

	c.Ingredients = make([]model.Ingredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		c.Ingredients = append(c.Ingredients, model.Ingredient{
			Name:   ing.Name,
			Amount: ing.Amount.Value,
			Unit:   ing.Unit,
		})
	}

	// Step numbers are renumbered from 1 regardless of what the model sent,
	// so downstream display never sees gaps or repeats.
	c.Instructions = make([]model.Instruction, 0, len(r.Instructions))
	for i, ins := range r.Instructions {
		c.Instructions = append(c.Instructions, model.Instruction{
			Step:        i + 1,
			Instruction: ins.Instruction,
			Time:        ins.Time.Value,
		})
	}

	c.Nutrition = model.NutritionInfo{
		Calories: float64(r.Nutrition.Calories.Value),
		Protein:  r.Nutrition.Protein.Value,
		Carbs:    r.Nutrition.Carbs.Value,
		Fat:      r.Nutrition.Fat.Value,
	}

	c.Tags = r.Tags
	if c.Tags == nil {
		c.Tags = []string{}
	}

	return c
}

// normalizeDifficulty canonicalizes the difficulty label and defaults to
// Medium for anything outside the known set.
func normalizeDifficulty(difficulty string) string {
	switch titleCaser.String(strings.ToLower(strings.TrimSpace(difficulty))) {
	case "Easy":
		return "Easy"
	case "Hard":
		return "Hard"
	default:
		return "Medium"
	}
}
