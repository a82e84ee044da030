package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

// OwnershipChecker answers "is cat X owned by user Y" without loading the cat.
type OwnershipChecker interface {
	IsCatOwnedBy(ctx context.Context, catID, userID string) (bool, error)
}

// Authorize decides whether p may perform action on a resource owned by
// ownerID. A nil error is Allow; otherwise the error is one of
// domain.ErrNotAuthenticated, domain.ErrNotOwner or domain.ErrNotAdmin.
//
// Admins pass the own-resource rules as well.
func Authorize(p domain.Principal, action Action, ownerID string) error {
	err := decide(p, action, ownerID)
	observe(action, err)
	return err
}

func decide(p domain.Principal, action Action, ownerID string) error {
	switch action {
	case ActionCatRead, ActionUserRead, ActionUserRegister:
		return nil
	case ActionCatCreate:
		if p.Anonymous() {
			return domain.ErrNotAuthenticated
		}
		return nil
	case ActionCatModifyOwn, ActionUserModifyOwn:
		switch {
		case p.Anonymous():
			return domain.ErrNotAuthenticated
		case p.IsAdmin(), ownerID != "" && p.ID == ownerID:
			return nil
		default:
			return domain.ErrNotOwner
		}
	case ActionCatModifyAny, ActionUserModifyAny:
		switch {
		case p.Anonymous():
			return domain.ErrNotAuthenticated
		case p.IsAdmin():
			return nil
		default:
			return domain.ErrNotAdmin
		}
	}
	return fmt.Errorf("%w: unknown action %q", domain.ErrNotAuthorized, action)
}

func observe(action Action, err error) {
	result := "allow"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotAuthenticated):
		result = "not_authenticated"
	case errors.Is(err, domain.ErrNotOwner):
		result = "not_owner"
	case errors.Is(err, domain.ErrNotAdmin):
		result = "not_admin"
	default:
		result = "deny"
	}
	metrics.AuthzDecisionsTotal.WithLabelValues(string(action), result).Inc()
}

// Guard binds the decision table to an ownership existence query.
type Guard struct {
	owners OwnershipChecker
}

func NewGuard(owners OwnershipChecker) *Guard {
	return &Guard{owners: owners}
}

// AuthorizeCat authorizes action on the cat catID. For own-cat mutations the
// store is asked only whether the principal owns the cat; anonymous callers
// and admins are decided without touching the store.
func (g *Guard) AuthorizeCat(ctx context.Context, p domain.Principal, action Action, catID string) error {
	if action != ActionCatModifyOwn || p.Anonymous() || p.IsAdmin() {
		return Authorize(p, action, p.ID)
	}

	owned, err := g.owners.IsCatOwnedBy(ctx, catID, p.ID)
	if err != nil {
		return fmt.Errorf("ownership check: %w", err)
	}
	owner := ""
	if owned {
		owner = p.ID
	}
	return Authorize(p, action, owner)
}
