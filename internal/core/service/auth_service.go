package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

// TokenIssuer signs bearer tokens for users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// AuthService implements registration, login and token checks.
type AuthService struct {
	users  ports.UserRepository
	tokens TokenIssuer
	logger zerolog.Logger
	cost   int
}

func NewAuthService(users ports.UserRepository, tokens TokenIssuer, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger, cost: bcrypt.DefaultCost}
}

// Register creates an account with the user role and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.TokenMessage, error) {
	user, err := s.create(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	metrics.UsersRegisteredTotal.Inc()
	return s.tokenMessage(user, "user created")
}

// CreateAdmin bootstraps an administrator account.
func (s *AuthService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleAdmin)
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	var fields []domain.FieldError
	if in.Name == "" {
		fields = append(fields, domain.FieldError{Field: "user_name", Message: "is required"})
	}
	if in.Email == "" {
		fields = append(fields, domain.FieldError{Field: "email", Message: "is required"})
	}
	if in.Password == "" {
		fields = append(fields, domain.FieldError{Field: "password", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", role).Msg("user created")
	return created, nil
}

// Login accepts either the email or the user name.
func (s *AuthService) Login(ctx context.Context, login, password string) (*ports.TokenMessage, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.ErrInvalidLogin
	}

	user, err := s.users.FindByLogin(ctx, login)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidLogin
	}

	return s.tokenMessage(user, "logged in")
}

// CheckToken echoes the caller's token with the current user record.
func (s *AuthService) CheckToken(ctx context.Context, p domain.Principal) (*ports.TokenMessage, error) {
	if p.Anonymous() {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ports.TokenMessage{Token: p.Token, Message: "token valid", User: user}, nil
}

func (s *AuthService) tokenMessage(user *domain.User, msg string) (*ports.TokenMessage, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.TokenMessage{Token: token, Message: msg, User: user}, nil
}
