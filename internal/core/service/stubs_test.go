package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
	calls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.calls++
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFoundf("user %s", id)
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.calls++
	for _, u := range r.users {
		if u.Email == login || u.Name == login {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NotFoundf("user %s", login)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.calls++
	for _, u := range r.users {
		if u.Email == user.Email || u.Name == user.Name {
			return nil, fmt.Errorf("user exists: %w", domain.ErrConflict)
		}
	}
	r.seq++
	c := cloneUser(user)
	if c.ID == "" {
		c.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.users[c.ID] = cloneUser(c)
	return c, nil
}

func (r *stubUserRepo) MergeUpdate(_ context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFoundf("user %s", id)
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) (*domain.User, error) {
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFoundf("user %s", id)
	}
	delete(r.users, id)
	return u, nil
}

type stubCatRepo struct {
	cats  map[string]*domain.Cat
	seq   int
	calls int
	err   error // if set, every call returns this error
}

func newStubCatRepo() *stubCatRepo {
	return &stubCatRepo{cats: make(map[string]*domain.Cat)}
}

func cloneCat(c *domain.Cat) *domain.Cat {
	clone := *c
	return &clone
}

func (r *stubCatRepo) sorted(keep func(*domain.Cat) bool) []*domain.Cat {
	out := []*domain.Cat{}
	for _, c := range r.cats {
		if keep(c) {
			out = append(out, cloneCat(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubCatRepo) List(_ context.Context) ([]*domain.Cat, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.sorted(func(*domain.Cat) bool { return true }), nil
}

func (r *stubCatRepo) FindByID(_ context.Context, id string) (*domain.Cat, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.cats[id]
	if !ok {
		return nil, domain.NotFoundf("cat %s", id)
	}
	return cloneCat(c), nil
}

func (r *stubCatRepo) FindByOwner(_ context.Context, ownerID string) ([]*domain.Cat, error) {
	r.calls++
	return r.sorted(func(c *domain.Cat) bool { return c.OwnerID == ownerID }), nil
}

func (r *stubCatRepo) FindWithinBox(_ context.Context, box domain.Box) ([]*domain.Cat, error) {
	r.calls++
	return r.sorted(func(c *domain.Cat) bool { return box.Contains(c.Coordinates) }), nil
}

func (r *stubCatRepo) Create(_ context.Context, cat *domain.Cat) (*domain.Cat, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.seq++
	c := cloneCat(cat)
	if c.ID == "" {
		c.ID = fmt.Sprintf("c%d", r.seq)
	}
	r.cats[c.ID] = cloneCat(c)
	return c, nil
}

// scoped mirrors the conditional write of the real stores.
func (r *stubCatRepo) scoped(id, ownerID string) (*domain.Cat, error) {
	c, ok := r.cats[id]
	if !ok || (ownerID != "" && c.OwnerID != ownerID) {
		return nil, domain.NotFoundf("cat %s", id)
	}
	return c, nil
}

func (r *stubCatRepo) MergeUpdate(_ context.Context, id, ownerID string, p domain.CatPatch) (*domain.Cat, error) {
	r.calls++
	c, err := r.scoped(id, ownerID)
	if err != nil {
		return nil, err
	}
	merged := p.Apply(*c)
	r.cats[id] = &merged
	return cloneCat(&merged), nil
}

func (r *stubCatRepo) Delete(_ context.Context, id, ownerID string) (*domain.Cat, error) {
	r.calls++
	c, err := r.scoped(id, ownerID)
	if err != nil {
		return nil, err
	}
	delete(r.cats, id)
	return c, nil
}

func (r *stubCatRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	for id, c := range r.cats {
		if c.OwnerID == ownerID {
			delete(r.cats, id)
		}
	}
	return nil
}

func (r *stubCatRepo) IsCatOwnedBy(_ context.Context, catID, userID string) (bool, error) {
	r.calls++
	c, ok := r.cats[catID]
	return ok && c.OwnerID == userID, nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(u *domain.User) (string, error) {
	return "token-" + u.ID, nil
}
