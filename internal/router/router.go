package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/whatscooking/backend/internal/api"
	"github.com/pageza/whatscooking/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	redisClient *redis.Client,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	var generateLimiter gin.HandlerFunc
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     10,
			KeyPrefix: "ratelimit:generate",
		})
		generateLimiter = limiter.RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1, generateLimiter)

	return router
}
