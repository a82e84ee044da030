package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

type CatService struct {
	cats   ports.CatRepository
	users  ports.UserRepository
	guard  *auth.Guard
	opts   Options
	logger zerolog.Logger
}

func NewCatService(cats ports.CatRepository, users ports.UserRepository, opts Options, logger zerolog.Logger) *CatService {
	return &CatService{
		cats:   cats,
		users:  users,
		guard:  auth.NewGuard(cats),
		opts:   opts,
		logger: logger,
	}
}

func (s *CatService) List(ctx context.Context) ([]*domain.Cat, error) {
	cats, err := s.cats.List(ctx)
	if err != nil {
		return nil, err
	}
	return listResult(cats, s.opts, "cats")
}

func (s *CatService) Get(ctx context.Context, id string) (*domain.Cat, error) {
	return s.cats.FindByID(ctx, id)
}

func (s *CatService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Cat, error) {
	cats, err := s.cats.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return listResult(cats, s.opts, "cats")
}

// ListWithinBox returns the cats inside the axis-aligned box. The corners
// may be given in any order.
func (s *CatService) ListWithinBox(ctx context.Context, box domain.Box) ([]*domain.Cat, error) {
	cats, err := s.cats.FindWithinBox(ctx, box.Normalized())
	if err != nil {
		return nil, err
	}
	return listResult(cats, s.opts, "cats in area")
}

// Create stores a new cat owned by p. Missing coordinates fall back to
// domain.DefaultCoordinates.
func (s *CatService) Create(ctx context.Context, p domain.Principal, in ports.CreateCatInput) (*domain.Cat, error) {
	if err := auth.Authorize(p, auth.ActionCatCreate, ""); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	fields := in.DetailErrors()
	if strings.TrimSpace(in.Filename) == "" {
		fields = append(fields, domain.FieldError{Field: "filename", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError(fields...)
	}

	if err := s.ensureOwner(ctx, p.ID); err != nil {
		return nil, err
	}

	coords := domain.DefaultCoordinates
	if in.Coordinates != nil {
		coords = *in.Coordinates
	}

	created, err := s.cats.Create(ctx, &domain.Cat{
		Name:        in.Name,
		Weight:      in.Weight,
		Filename:    in.Filename,
		Birthdate:   in.Birthdate,
		Coordinates: coords,
		OwnerID:     p.ID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("cat_id", created.ID).Str("owner", p.ID).Msg("cat created")
	return created, nil
}

// Update merges patch into a cat owned by p. Admins may update any cat.
func (s *CatService) Update(ctx context.Context, p domain.Principal, id string, patch domain.CatPatch) (*domain.Cat, error) {
	if err := s.authorizeOwn(ctx, p, id); err != nil {
		return nil, err
	}
	return s.update(ctx, id, ownerScope(p), patch)
}

// Delete removes a cat owned by p. Admins may delete any cat.
func (s *CatService) Delete(ctx context.Context, p domain.Principal, id string) (*domain.Cat, error) {
	if err := s.authorizeOwn(ctx, p, id); err != nil {
		return nil, err
	}
	return s.delete(ctx, id, ownerScope(p))
}

func (s *CatService) UpdateAsAdmin(ctx context.Context, p domain.Principal, id string, patch domain.CatPatch) (*domain.Cat, error) {
	if err := auth.Authorize(p, auth.ActionCatModifyAny, ""); err != nil {
		return nil, err
	}
	return s.update(ctx, id, "", patch)
}

func (s *CatService) DeleteAsAdmin(ctx context.Context, p domain.Principal, id string) (*domain.Cat, error) {
	if err := auth.Authorize(p, auth.ActionCatModifyAny, ""); err != nil {
		return nil, err
	}
	return s.delete(ctx, id, "")
}

// authorizeOwn runs the ownership check. A cat that does not exist at all
// is reported as not found rather than not owned.
func (s *CatService) authorizeOwn(ctx context.Context, p domain.Principal, id string) error {
	err := s.guard.AuthorizeCat(ctx, p, auth.ActionCatModifyOwn, id)
	if errors.Is(err, domain.ErrNotOwner) {
		if _, ferr := s.cats.FindByID(ctx, id); errors.Is(ferr, domain.ErrNotFound) {
			return ferr
		}
	}
	return err
}

func (s *CatService) update(ctx context.Context, id, scope string, patch domain.CatPatch) (*domain.Cat, error) {
	if err := s.validatePatch(ctx, patch); err != nil {
		return nil, err
	}
	cat, err := s.cats.MergeUpdate(ctx, id, scope, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("cat_id", id).Msg("cat updated")
	return cat, nil
}

func (s *CatService) delete(ctx context.Context, id, scope string) (*domain.Cat, error) {
	cat, err := s.cats.Delete(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("cat_id", id).Msg("cat deleted")
	return cat, nil
}

func (s *CatService) validatePatch(ctx context.Context, patch domain.CatPatch) error {
	var fields []domain.FieldError
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		fields = append(fields, domain.FieldError{Field: "cat_name", Message: "must not be empty"})
	}
	if patch.Weight != nil && *patch.Weight <= 0 {
		fields = append(fields, domain.FieldError{Field: "weight", Message: "must be a positive number"})
	}
	if patch.Filename != nil && strings.TrimSpace(*patch.Filename) == "" {
		fields = append(fields, domain.FieldError{Field: "filename", Message: "must not be empty"})
	}
	if patch.Birthdate != nil && patch.Birthdate.IsZero() {
		fields = append(fields, domain.FieldError{Field: "birthdate", Message: "must not be empty"})
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}
	if patch.OwnerID != nil {
		return s.ensureOwner(ctx, *patch.OwnerID)
	}
	return nil
}

func (s *CatService) ensureOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return domain.NewValidationError(domain.FieldError{Field: "owner", Message: "is required"})
	}
	_, err := s.users.FindByID(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewValidationError(domain.FieldError{Field: "owner", Message: "does not reference an existing user"})
	}
	return err
}

// ownerScope keys conditional writes by the caller's id so that ownership
// cannot change between the check and the write. Admin writes are unscoped.
func ownerScope(p domain.Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.ID
}
