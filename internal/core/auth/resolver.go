package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

const defaultCacheSize = 1024

// Claims is the payload of every token issued by the API.
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ResolverConfig holds everything the resolver needs; nothing is read from
// globals.
type ResolverConfig struct {
	Secret    string
	Issuer    string
	TTL       time.Duration
	CacheSize int
}

type cachedPrincipal struct {
	principal domain.Principal
	expiresAt time.Time
}

// Resolver issues bearer tokens and turns them back into principals.
type Resolver struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cache  *lru.Cache[string, cachedPrincipal]
	now    func() time.Time
}

func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, cachedPrincipal](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("auth: token cache: %w", err)
	}
	return &Resolver{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		cache:  cache,
		now:    time.Now,
	}, nil
}

// Issue signs a token for user.
func (r *Resolver) Issue(user *domain.User) (string, error) {
	now := r.now()
	claims := Claims{
		ID:   user.ID,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    r.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// ResolveHeader resolves the value of an Authorization header. An absent
// header yields the anonymous principal; any other scheme than Bearer is an
// invalid credential.
func (r *Resolver) ResolveHeader(header string) (domain.Principal, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return domain.Principal{}, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return domain.Principal{}, fmt.Errorf("%w: malformed authorization header", domain.ErrInvalidCredential)
	}
	return r.Resolve(strings.TrimSpace(parts[1]))
}

// Resolve verifies a raw token. An empty token is anonymous, not an error.
func (r *Resolver) Resolve(token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, nil
	}

	now := r.now()
	if hit, ok := r.cache.Get(token); ok {
		if now.Before(hit.expiresAt) {
			return hit.principal, nil
		}
		r.cache.Remove(token)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}
	if claims.ID == "" || !domain.ValidRole(claims.Role) {
		return domain.Principal{}, fmt.Errorf("%w: missing id or role claim", domain.ErrInvalidCredential)
	}

	p := domain.Principal{ID: claims.ID, Role: claims.Role, Token: token}
	r.cache.Add(token, cachedPrincipal{principal: p, expiresAt: claims.ExpiresAt.Time})
	return p, nil
}
