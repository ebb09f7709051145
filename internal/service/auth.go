package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/whatscooking/backend/internal/middleware"
	"github.com/pageza/whatscooking/backend/internal/model"
)

// pendingSignupTTL is how long a signup may sit between requesting an OTP
// and verifying it.
const pendingSignupTTL = 10 * time.Minute

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrSignupExpired      = errors.New("signup session expired")
)

type AuthService struct {
	db        *gorm.DB
	store     SignupStore
	email     IEmailService
	jwtSecret string
}

func NewAuthService(db *gorm.DB, store SignupStore, email IEmailService, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		store:     store,
		email:     email,
		jwtSecret: jwtSecret,
	}
}

// SignUp starts registration: it parks the signup server-side under an
// opaque token and emails a one-time code. The pending write and the email
// dispatch run concurrently for latency, but both must succeed — a failed
// email aborts the signup even though the pending entry may already exist.
func (s *AuthService) SignUp(ctx context.Context, fullName, email, password string) (string, error) {
	var existing model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return "", ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	if err := s.store.PutOTP(ctx, email, code, pendingSignupTTL); err != nil {
		return "", err
	}

	token := uuid.NewString()
	pending := &PendingSignup{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hashed),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.PutPending(gctx, token, pending, pendingSignupTTL)
	})
	g.Go(func() error {
		return s.email.SendOTPEmail(email, code)
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	return token, nil
}

// VerifyOTP completes registration: check the code, load the pending entry,
// create the account and profile, send the welcome email and sign the user
// in. Profile creation failure is logged but does not abort the account.
func (s *AuthService) VerifyOTP(ctx context.Context, token, email, code string) (string, error) {
	stored, err := s.store.GetOTP(ctx, email)
	if err != nil || stored != code {
		return "", ErrInvalidOTP
	}

	pending, err := s.store.GetPending(ctx, token)
	if err != nil || pending.Email != email {
		return "", ErrSignupExpired
	}

	user := model.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return "", err
	}

	// The code is burned only once the account exists, so a transient
	// create failure leaves the verification retryable.
	if err := s.store.DeleteOTP(ctx, email); err != nil {
		log.Printf("failed to delete OTP for %s: %v", email, err)
	}

	profile := model.UserProfile{
		ID:       user.ID,
		FullName: pending.FullName,
		Email:    pending.Email,
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		log.Printf("profile creation failed for user %s: %v", user.ID, err)
	}

	if err := s.store.DeletePending(ctx, token); err != nil {
		log.Printf("failed to delete pending signup %s: %v", token, err)
	}

	// Welcome mail is best effort; delivery failure never fails the signup.
	go func() {
		if err := s.email.SendWelcomeEmail(pending.Email, pending.FullName); err != nil {
			log.Printf("failed to send welcome email to %s: %v", pending.Email, err)
		}
	}()

	return s.generateToken(user.ID, user.Email)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID, user.Email)
}

// GetProfile returns the profile row for a user.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *AuthService) generateToken(userID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			return nil, errors.New("invalid token claims")
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, err
		}

		email, _ := claims["email"].(string)

		return &middleware.TokenClaims{
			UserID: userID,
			Email:  email,
		}, nil
	}

	return nil, errors.New("invalid token")
}

// generateOTP returns a 6-digit numeric one-time code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
