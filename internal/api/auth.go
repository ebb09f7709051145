package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/whatscooking/backend/internal/middleware"
	"github.com/pageza/whatscooking/backend/internal/service"
)

// AuthHandler handles signup, OTP verification, login and logout.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "All fields are required"})
		return
	}

	token, err := h.authService.SignUp(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send OTP email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "OTP sent to your email. Please check and verify.",
		"signup_token": token,
	})
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		SignupToken string `json:"signupToken" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email and OTP are required"})
		return
	}

	token, err := h.authService.VerifyOTP(c.Request.Context(), req.SignupToken, req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid or expired OTP"})
		case errors.Is(err, service.ErrSignupExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Signup session expired. Please try again."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account created successfully!",
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email and password are required"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// Logout acknowledges the logout; the token is stateless, so the client
// discards it.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	profile, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
