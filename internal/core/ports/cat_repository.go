package ports

import (
	"context"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// CatRepository defines persistence operations for cats.
//
// ownerID arguments scope a write to cats owned by that user. An empty
// ownerID leaves the write unscoped (admin routes).
type CatRepository interface {
	List(ctx context.Context) ([]*domain.Cat, error)
	FindByID(ctx context.Context, id string) (*domain.Cat, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Cat, error)
	FindWithinBox(ctx context.Context, box domain.Box) ([]*domain.Cat, error)
	Create(ctx context.Context, cat *domain.Cat) (*domain.Cat, error)
	MergeUpdate(ctx context.Context, id, ownerID string, patch domain.CatPatch) (*domain.Cat, error)
	Delete(ctx context.Context, id, ownerID string) (*domain.Cat, error)
	DeleteByOwner(ctx context.Context, ownerID string) error
	// IsCatOwnedBy is an existence query; it never returns the record.
	IsCatOwnedBy(ctx context.Context, catID, userID string) (bool, error)
}
