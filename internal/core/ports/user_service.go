package ports

import (
	"context"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// UserUpdateInput is a partial user update as received from a client.
// Password is plain text; the service hashes it.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserService defines use-case operations for users.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateSelf(ctx context.Context, p domain.Principal, in UserUpdateInput) (*domain.User, error)
	DeleteSelf(ctx context.Context, p domain.Principal) (*domain.User, error)
	UpdateAsAdmin(ctx context.Context, p domain.Principal, id string, in UserUpdateInput) (*domain.User, error)
	DeleteAsAdmin(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
}
