package ports

import (
	"context"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// TokenMessage is returned by every operation that hands a token back.
type TokenMessage struct {
	Token   string       `json:"token"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// AuthService handles registration, login and token checks.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*TokenMessage, error)
	Login(ctx context.Context, login, password string) (*TokenMessage, error)
	CheckToken(ctx context.Context, p domain.Principal) (*TokenMessage, error)
}
