package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/whatscooking/backend/internal/middleware"
	"github.com/pageza/whatscooking/backend/internal/service"
)

// RecipeHandler handles recipe generation, browsing and save/unsave.
type RecipeHandler struct {
	recipeService *service.RecipeService
	authService   *service.AuthService
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(recipeService *service.RecipeService, authService *service.AuthService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		authService:   authService,
	}
}

// RegisterRoutes registers the recipe routes. generateLimiter guards the
// generation endpoint and may be nil in tests.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, generateLimiter gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		if generateLimiter != nil {
			recipes.POST("/generate", generateLimiter, h.GenerateRecipes)
		} else {
			recipes.POST("/generate", h.GenerateRecipes)
		}
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("/:id/save", middleware.AuthMiddleware(h.authService), h.SaveRecipe)
		recipes.DELETE("/:id/save", middleware.AuthMiddleware(h.authService), h.UnsaveRecipe)
	}
	router.GET("/saved-recipes", middleware.AuthMiddleware(h.authService), h.ListSavedRecipes)
}

// GenerateRecipes handles the full generation flow. Parse failures from the
// model surface as a generic error; the raw response stays in the server
// log only.
func (h *RecipeHandler) GenerateRecipes(c *gin.Context) {
	var req service.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	recipes, err := h.recipeService.GenerateRecipes(c.Request.Context(), &req)
	if err != nil {
		var modelErr *service.ModelError
		var malformed *service.MalformedJSONError
		var storeErr *service.StoreError

		switch {
		case errors.Is(err, service.ErrIngredientsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Ingredients are required"})
		case errors.Is(err, service.ErrModelTimeout), errors.As(err, &modelErr):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Failed to generate recipes. Please try again."})
		case errors.Is(err, service.ErrNoJSONFound), errors.Is(err, service.ErrEmptyRecipeList), errors.As(err, &malformed):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse recipe data"})
		case errors.As(err, &storeErr):
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":         false,
				"error":           "Failed to save recipes to database.",
				"persisted_count": len(storeErr.Persisted),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate recipes. Please try again."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"recipes": recipes,
		"count":   len(recipes),
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// SaveRecipe saves a recipe for the authenticated user. Only durable,
// database-assigned identifiers are accepted: a synthetic id from a failed
// insert is rejected with an explanation instead of being forwarded to the
// store.
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	recipeID, ok := durableRecipeID(c)
	if !ok {
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.recipeService.SaveRecipe(c.Request.Context(), userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe_id": recipeID})
}

// UnsaveRecipe removes a saved recipe. Unsaving something never saved is a
// successful no-op.
func (h *RecipeHandler) UnsaveRecipe(c *gin.Context) {
	recipeID, ok := durableRecipeID(c)
	if !ok {
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.recipeService.UnsaveRecipe(c.Request.Context(), userID, recipeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recipe_id": recipeID})
}

func (h *RecipeHandler) ListSavedRecipes(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	recipes, err := h.recipeService.ListSavedRecipes(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch saved recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// durableRecipeID parses the path id and rejects anything that is not a
// version-4 UUID, i.e. not assigned by the database.
func durableRecipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id.Version() != 4 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "This recipe has a temporary identifier and cannot be saved. Please regenerate your recipes.",
		})
		return uuid.Nil, false
	}
	return id, true
}
