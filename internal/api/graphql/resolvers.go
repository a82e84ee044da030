package graphql

import (
	"errors"

	gql "github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

// Resolver holds the services behind every field. The caller is read from
// the auth.Scope in the request context.
type Resolver struct {
	auth  ports.AuthService
	users ports.UserService
	cats  ports.CatService
	errs  errorMapper
}

func NewResolver(authService ports.AuthService, users ports.UserService, cats ports.CatService, dev bool, log zerolog.Logger) *Resolver {
	return &Resolver{
		auth:  authService,
		users: users,
		cats:  cats,
		errs:  errorMapper{dev: dev, log: log},
	}
}

// wrap maps errors returned by fn to coded GraphQL errors.
func (r *Resolver) wrap(fn gql.FieldResolveFn) gql.FieldResolveFn {
	return func(p gql.ResolveParams) (any, error) {
		v, err := fn(p)
		if err != nil {
			return nil, r.errs.convert(err)
		}
		return v, nil
	}
}

// --- Query ---

func (r *Resolver) queryCats(p gql.ResolveParams) (any, error) {
	return r.cats.List(p.Context)
}

func (r *Resolver) catByID(p gql.ResolveParams) (any, error) {
	return r.cats.Get(p.Context, stringArg(p.Args, "id"))
}

func (r *Resolver) catsByOwner(p gql.ResolveParams) (any, error) {
	return r.cats.ListByOwner(p.Context, stringArg(p.Args, "ownerId"))
}

func (r *Resolver) catsByArea(p gql.ResolveParams) (any, error) {
	box := domain.Box{
		TopRight:   *coordinatesArg(p.Args, "topRight"),
		BottomLeft: *coordinatesArg(p.Args, "bottomLeft"),
	}
	return r.cats.ListWithinBox(p.Context, box)
}

func (r *Resolver) queryUsers(p gql.ResolveParams) (any, error) {
	return r.users.List(p.Context)
}

func (r *Resolver) userByID(p gql.ResolveParams) (any, error) {
	return r.users.Get(p.Context, stringArg(p.Args, "id"))
}

func (r *Resolver) checkToken(p gql.ResolveParams) (any, error) {
	return r.auth.CheckToken(p.Context, auth.PrincipalFrom(p.Context))
}

// catOwner resolves Cat.owner. A dangling reference resolves to null.
func (r *Resolver) catOwner(p gql.ResolveParams) (any, error) {
	cat, ok := p.Source.(*domain.Cat)
	if !ok || cat.OwnerID == "" {
		return nil, nil
	}
	user, err := r.users.Get(p.Context, cat.OwnerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.errs.convert(err)
	}
	return user, nil
}

// --- Mutation: cats ---

// caller returns the principal of a cat mutation. Anonymous callers are
// rejected before any argument is parsed.
func caller(p gql.ResolveParams) (domain.Principal, error) {
	principal := auth.PrincipalFrom(p.Context)
	if principal.Anonymous() {
		return principal, domain.ErrNotAuthenticated
	}
	return principal, nil
}

func (r *Resolver) createCat(p gql.ResolveParams) (any, error) {
	principal, err := caller(p)
	if err != nil {
		return nil, err
	}
	birthdate, err := domain.ParseBirthdate(stringArg(p.Args, "birthdate"))
	if err != nil {
		return nil, err
	}
	in := ports.CreateCatInput{
		Name:        stringArg(p.Args, "cat_name"),
		Weight:      floatArg(p.Args, "weight"),
		Birthdate:   birthdate,
		Filename:    stringArg(p.Args, "filename"),
		Coordinates: coordinatesArg(p.Args, "coordinates"),
	}

	cat, err := r.cats.Create(p.Context, principal, in)
	if err != nil {
		return nil, err
	}
	metrics.CatsCreatedTotal.WithLabelValues("graphql").Inc()
	return cat, nil
}

func (r *Resolver) updateCat(p gql.ResolveParams) (any, error) {
	principal, err := caller(p)
	if err != nil {
		return nil, err
	}
	patch, err := catPatch(p.Args)
	if err != nil {
		return nil, err
	}
	return r.cats.Update(p.Context, principal, stringArg(p.Args, "id"), patch)
}

func (r *Resolver) deleteCat(p gql.ResolveParams) (any, error) {
	return r.cats.Delete(p.Context, auth.PrincipalFrom(p.Context), stringArg(p.Args, "id"))
}

func (r *Resolver) updateCatAsAdmin(p gql.ResolveParams) (any, error) {
	principal, err := caller(p)
	if err != nil {
		return nil, err
	}
	patch, err := catPatch(p.Args)
	if err != nil {
		return nil, err
	}
	return r.cats.UpdateAsAdmin(p.Context, principal, stringArg(p.Args, "id"), patch)
}

func (r *Resolver) deleteCatAsAdmin(p gql.ResolveParams) (any, error) {
	return r.cats.DeleteAsAdmin(p.Context, auth.PrincipalFrom(p.Context), stringArg(p.Args, "id"))
}

// --- Mutation: users ---

func (r *Resolver) login(p gql.ResolveParams) (any, error) {
	creds := objectArg(p.Args, "credentials")
	return r.auth.Login(p.Context, stringArg(creds, "username"), stringArg(creds, "password"))
}

func (r *Resolver) register(p gql.ResolveParams) (any, error) {
	u := objectArg(p.Args, "user")
	return r.auth.Register(p.Context, ports.RegisterInput{
		Name:     stringArg(u, "user_name"),
		Email:    stringArg(u, "email"),
		Password: stringArg(u, "password"),
	})
}

func (r *Resolver) updateUser(p gql.ResolveParams) (any, error) {
	caller := auth.PrincipalFrom(p.Context)
	user, err := r.users.UpdateSelf(p.Context, caller, userUpdate(objectArg(p.Args, "user")))
	if err != nil {
		return nil, err
	}
	return &ports.TokenMessage{Token: caller.Token, Message: "user updated", User: user}, nil
}

func (r *Resolver) deleteUser(p gql.ResolveParams) (any, error) {
	caller := auth.PrincipalFrom(p.Context)
	user, err := r.users.DeleteSelf(p.Context, caller)
	if err != nil {
		return nil, err
	}
	return &ports.TokenMessage{Token: caller.Token, Message: "user deleted", User: user}, nil
}

func (r *Resolver) updateUserAsAdmin(p gql.ResolveParams) (any, error) {
	caller := auth.PrincipalFrom(p.Context)
	user, err := r.users.UpdateAsAdmin(p.Context, caller, stringArg(p.Args, "id"), userUpdate(objectArg(p.Args, "user")))
	if err != nil {
		return nil, err
	}
	return &ports.TokenMessage{Token: caller.Token, Message: "user updated", User: user}, nil
}

func (r *Resolver) deleteUserAsAdmin(p gql.ResolveParams) (any, error) {
	caller := auth.PrincipalFrom(p.Context)
	user, err := r.users.DeleteAsAdmin(p.Context, caller, stringArg(p.Args, "id"))
	if err != nil {
		return nil, err
	}
	return &ports.TokenMessage{Token: caller.Token, Message: "user deleted", User: user}, nil
}
