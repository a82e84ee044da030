package ports

import (
	"context"
	"strings"
	"time"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// CreateCatInput carries the client supplied fields of a new cat. The owner
// comes from the principal and the coordinates from the photo.
type CreateCatInput struct {
	Name        string
	Weight      float64
	Birthdate   time.Time
	Filename    string
	Coordinates *domain.Coordinates
}

// DetailErrors lists the problems with name, weight and birthdate. It can run
// before a photo is stored, so the filename is not checked here.
func (in CreateCatInput) DetailErrors() []domain.FieldError {
	var fields []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "cat_name", Message: "is required"})
	}
	if in.Weight <= 0 {
		fields = append(fields, domain.FieldError{Field: "weight", Message: "must be a positive number"})
	}
	if in.Birthdate.IsZero() {
		fields = append(fields, domain.FieldError{Field: "birthdate", Message: "is required"})
	}
	return fields
}

// CatService defines use-case operations for cats.
type CatService interface {
	List(ctx context.Context) ([]*domain.Cat, error)
	Get(ctx context.Context, id string) (*domain.Cat, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Cat, error)
	ListWithinBox(ctx context.Context, box domain.Box) ([]*domain.Cat, error)
	Create(ctx context.Context, p domain.Principal, in CreateCatInput) (*domain.Cat, error)
	Update(ctx context.Context, p domain.Principal, id string, patch domain.CatPatch) (*domain.Cat, error)
	Delete(ctx context.Context, p domain.Principal, id string) (*domain.Cat, error)
	UpdateAsAdmin(ctx context.Context, p domain.Principal, id string, patch domain.CatPatch) (*domain.Cat, error)
	DeleteAsAdmin(ctx context.Context, p domain.Principal, id string) (*domain.Cat, error)
}
