package ports

import (
	"context"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// UserRepository defines persistence operations for users.
//
// Implementations translate backend outcomes into domain errors:
// domain.ErrNotFound for unmatched ids, domain.ErrConflict for unique
// violations and domain.ErrStoreUnavailable for I/O failures.
type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByLogin matches either the email or the user name.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// MergeUpdate overwrites only the fields present in patch.
	MergeUpdate(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
}
