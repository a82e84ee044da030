package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

func newTestResolver(t *testing.T, issuer string) *Resolver {
	t.Helper()
	r, err := NewResolver(ResolverConfig{Secret: "test-secret", Issuer: issuer, TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestNewResolver_RequiresSecret(t *testing.T) {
	if _, err := NewResolver(ResolverConfig{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestResolver_IssueAndResolve(t *testing.T) {
	r := newTestResolver(t, "cats-api")
	user := &domain.User{ID: "u1", Role: domain.RoleAdmin}

	token, err := r.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p, err := r.ResolveHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("ResolveHeader: %v", err)
	}
	if p.ID != "u1" || p.Role != domain.RoleAdmin || p.Token != token {
		t.Fatalf("unexpected principal: %+v", p)
	}

	// Second resolution is served from the cache with the same result.
	again, err := r.Resolve(token)
	if err != nil || again != p {
		t.Fatalf("cached resolve: %+v, %v", again, err)
	}
}

func TestResolver_AbsentCredentialIsAnonymous(t *testing.T) {
	r := newTestResolver(t, "")

	for _, h := range []string{"", "   "} {
		p, err := r.ResolveHeader(h)
		if err != nil {
			t.Fatalf("ResolveHeader(%q): %v", h, err)
		}
		if !p.Anonymous() {
			t.Fatalf("expected anonymous principal, got %+v", p)
		}
	}
}

func TestResolver_InvalidCredentials(t *testing.T) {
	r := newTestResolver(t, "cats-api")
	valid, _ := r.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})

	otherSecret, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: "u1", Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cats-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))

	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		ID: "u1", Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cats-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: "u1", Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: "u1", Role: domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "cats-api"},
	}).SignedString([]byte("test-secret"))

	badRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID: "u1", Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cats-api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))

	headers := map[string]string{
		"basic scheme": "Basic " + valid,
		"bearer only":  "Bearer",
		"garbage":      "Bearer not-a-jwt",
		"other secret": "Bearer " + otherSecret,
		"wrong alg":    "Bearer " + wrongAlg,
		"wrong issuer": "Bearer " + wrongIssuer,
		"missing exp":  "Bearer " + noExpiry,
		"unknown role": "Bearer " + badRole,
	}
	for name, h := range headers {
		if _, err := r.ResolveHeader(h); !errors.Is(err, domain.ErrInvalidCredential) {
			t.Fatalf("%s: expected ErrInvalidCredential, got %v", name, err)
		}
	}
}

func TestResolver_Expired(t *testing.T) {
	r := newTestResolver(t, "")
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return issuedAt }

	token, err := r.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := r.Resolve(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	// The cached entry must not outlive the token.
	r.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := r.Resolve(token); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for expired token, got %v", err)
	}
}
