package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

type UserService struct {
	users  ports.UserRepository
	cats   ports.CatRepository
	opts   Options
	logger zerolog.Logger
	cost   int
}

func NewUserService(users ports.UserRepository, cats ports.CatRepository, opts Options, logger zerolog.Logger) *UserService {
	return &UserService{users: users, cats: cats, opts: opts, logger: logger, cost: bcrypt.DefaultCost}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return listResult(users, s.opts, "users")
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// UpdateSelf updates the caller's own account. A role in the input is
// ignored.
func (s *UserService) UpdateSelf(ctx context.Context, p domain.Principal, in ports.UserUpdateInput) (*domain.User, error) {
	if err := auth.Authorize(p, auth.ActionUserModifyOwn, p.ID); err != nil {
		return nil, err
	}
	in.Role = nil
	return s.update(ctx, p.ID, in)
}

// DeleteSelf removes the caller's account and every cat it owns.
func (s *UserService) DeleteSelf(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if err := auth.Authorize(p, auth.ActionUserModifyOwn, p.ID); err != nil {
		return nil, err
	}
	return s.delete(ctx, p.ID)
}

func (s *UserService) UpdateAsAdmin(ctx context.Context, p domain.Principal, id string, in ports.UserUpdateInput) (*domain.User, error) {
	if err := auth.Authorize(p, auth.ActionUserModifyAny, ""); err != nil {
		return nil, err
	}
	return s.update(ctx, id, in)
}

func (s *UserService) DeleteAsAdmin(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	if err := auth.Authorize(p, auth.ActionUserModifyAny, ""); err != nil {
		return nil, err
	}
	return s.delete(ctx, id)
}

func (s *UserService) update(ctx context.Context, id string, in ports.UserUpdateInput) (*domain.User, error) {
	patch, err := s.userPatch(in)
	if err != nil {
		return nil, err
	}
	user, err := s.users.MergeUpdate(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

// delete removes the user's cats before the user, so a failure part way
// never leaves a cat owned by a missing user.
func (s *UserService) delete(ctx context.Context, id string) (*domain.User, error) {
	if err := s.cats.DeleteByOwner(ctx, id); err != nil {
		return nil, fmt.Errorf("delete cats of user %s: %w", id, err)
	}
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return user, nil
}

func (s *UserService) userPatch(in ports.UserUpdateInput) (domain.UserPatch, error) {
	var (
		patch  domain.UserPatch
		fields []domain.FieldError
	)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			fields = append(fields, domain.FieldError{Field: "user_name", Message: "must not be empty"})
		}
		patch.Name = &name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			fields = append(fields, domain.FieldError{Field: "email", Message: "must not be empty"})
		}
		patch.Email = &email
	}
	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			fields = append(fields, domain.FieldError{Field: "role", Message: "must be admin or user"})
		}
		patch.Role = in.Role
	}
	if in.Password != nil {
		if *in.Password == "" {
			fields = append(fields, domain.FieldError{Field: "password", Message: "must not be empty"})
		}
	}
	if len(fields) > 0 {
		return domain.UserPatch{}, domain.NewValidationError(fields...)
	}

	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return domain.UserPatch{}, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		patch.PasswordHash = &h
	}
	return patch, nil
}
