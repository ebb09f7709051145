package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/whatscooking/backend/internal/model"
)

// anonymousRecipeTTL is how long an unsaved recipe survives before the
// expiry sweep may collect it.
const anonymousRecipeTTL = time.Hour

// RecipeService drives generation, browsing and save/unsave.
type RecipeService struct {
	db  *gorm.DB
	llm LLMClient
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, llm LLMClient) *RecipeService {
	return &RecipeService{
		db:  db,
		llm: llm,
	}
}

// GenerateRecipes is the single generation entry point: validate the
// request, build the prompt, call the model, ingest the response and
// persist the results. Inserts are per-row without a transaction, so a
// mid-batch failure surfaces as a StoreError that still carries the rows
// already persisted.
func (s *RecipeService) GenerateRecipes(ctx context.Context, req *GenerationRequest) ([]model.Recipe, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req)

	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrModelTimeout) {
			return nil, err
		}
		return nil, &ModelError{Err: err}
	}

	candidates, err := Ingest(raw, req)
	if err != nil {
		// Parse failures keep a bounded prefix of the raw response for
		// operators; the caller only sees a generic parse error.
		log.Printf("recipe ingestion failed: %v; raw response prefix: %q", err, Snippet(raw))
		return nil, err
	}

	expiresAt := time.Now().Add(anonymousRecipeTTL)
	persisted := make([]model.Recipe, 0, len(candidates))
	for _, c := range candidates {
		recipe := model.Recipe{
			Name:                c.Name,
			Description:         c.Description,
			CuisineType:         c.CuisineType,
			SpiceLevel:          c.SpiceLevel,
			DietaryRestrictions: model.JSONBStringArray(req.DietaryRestrictions),
			Difficulty:          c.Difficulty,
			Servings:            c.Servings,
			CookingTime:         c.CookingTime,
			Ingredients:         model.IngredientList(c.Ingredients),
			Instructions:        model.InstructionList(c.Instructions),
			NutritionInfo:       c.Nutrition,
			Tags:                model.JSONBStringArray(c.Tags),
			ImageURL:            placeholderImageURL(c.Name, c.CuisineType),
			ExpiresAt:           &expiresAt,
		}
		if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
			return persisted, &StoreError{Persisted: persisted, Err: err}
		}
		persisted = append(persisted, recipe)
	}

	// Audit row: append-only, one per successful generation. Its failure is
	// logged but does not undo a generation that already succeeded.
	ids := make(model.UUIDArray, 0, len(persisted))
	for _, r := range persisted {
		ids = append(ids, r.ID)
	}
	generation := model.RecipeGeneration{
		SessionID:           req.SessionID,
		Ingredients:         model.JSONBStringArray(req.Ingredients),
		CuisineType:         req.CuisineType,
		SpiceLevel:          req.SpiceLevel,
		DietaryRestrictions: model.JSONBStringArray(req.DietaryRestrictions),
		CookingTime:         req.CookingTime,
		GeneratedRecipeIDs:  ids,
	}
	if err := s.db.WithContext(ctx).Create(&generation).Error; err != nil {
		log.Printf("failed to record recipe generation for session %s: %v", req.SessionID, err)
	}

	return persisted, nil
}

// placeholderImageURL derives the image placeholder deterministically from
// the recipe name and cuisine.
func placeholderImageURL(name, cuisine string) string {
	if name == "" {
		name = "Recipe"
	}
	if cuisine == "" {
		cuisine = "dish"
	}
	return fmt.Sprintf("/placeholder.svg?height=300&width=400&query=%s", url.QueryEscape(name+" "+cuisine))
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes lists recipes, optionally restricted to one generation session.
func (s *RecipeService) ListRecipes(ctx context.Context, sessionID string) ([]model.Recipe, error) {
	query := s.db.WithContext(ctx)
	if sessionID != "" {
		var generations []model.RecipeGeneration
		if err := query.Where("session_id = ?", sessionID).Find(&generations).Error; err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0)
		for _, g := range generations {
			ids = append(ids, g.GeneratedRecipeIDs...)
		}
		if len(ids) == 0 {
			return []model.Recipe{}, nil
		}
		query = query.Where("id IN ?", ids)
	}

	var recipes []model.Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// SaveRecipe saves a recipe for a user. Saving is idempotent and claims the
// recipe from the expiry sweep by clearing its expiry.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return err
	}

	saved := model.SavedRecipe{RecipeID: recipeID, UserID: userID}
	if err := s.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		FirstOrCreate(&saved).Error; err != nil {
		return err
	}

	if recipe.ExpiresAt != nil {
		if err := s.db.WithContext(ctx).Model(&recipe).Update("expires_at", nil).Error; err != nil {
			return err
		}
	}

	return nil
}

// UnsaveRecipe removes a saved recipe. Unsaving a recipe that was never
// saved is a no-op, matching set semantics on the join table.
func (s *RecipeService) UnsaveRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Delete(&model.SavedRecipe{}).Error
}

// ListSavedRecipes returns the recipes a user has saved, newest first.
func (s *RecipeService) ListSavedRecipes(ctx context.Context, userID uuid.UUID) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := s.db.WithContext(ctx).
		Joins("JOIN user_saved_recipes ON user_saved_recipes.recipe_id = recipes.id").
		Where("user_saved_recipes.user_id = ?", userID).
		Order("user_saved_recipes.created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// DeleteExpired removes anonymous recipes whose expiry has passed. Saved
// recipes have a cleared expiry and are never touched.
func (s *RecipeService) DeleteExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&model.Recipe{})
	return result.RowsAffected, result.Error
}
