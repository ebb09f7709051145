package service

import (
	"context"
	"time"
)

// LLMClient is the model collaborator: one prompt in, raw text out.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IEmailService is the outbound mail collaborator.
type IEmailService interface {
	Send(to, subject, htmlBody, textBody string) error
	SendOTPEmail(to, code string) error
	SendWelcomeEmail(to, name string) error
}

// PendingSignup is the transient registration state held server-side between
// signup and OTP verification. The password is stored already hashed.
type PendingSignup struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// SignupStore holds pending signups and OTP codes with expiry. Backed by
// Redis in production.
type SignupStore interface {
	PutPending(ctx context.Context, token string, pending *PendingSignup, ttl time.Duration) error
	GetPending(ctx context.Context, token string) (*PendingSignup, error)
	DeletePending(ctx context.Context, token string) error

	PutOTP(ctx context.Context, email, code string, ttl time.Duration) error
	GetOTP(ctx context.Context, email string) (string, error)
	DeleteOTP(ctx context.Context, email string) error
}
