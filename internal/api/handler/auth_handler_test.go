package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.TokenMessage, error) {
			if in.Name != "alice" || in.Email != "a@example.com" || in.Password != "secret" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.TokenMessage{
				Token:   "tkn",
				Message: "user created",
				User:    &domain.User{ID: "u1", Name: in.Name, Email: in.Email, PasswordHash: "hash", Role: domain.RoleUser},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/user", `{"user_name":"alice","email":"a@example.com","password":"secret","role":"admin"}`)
	c, rec := newContext(req, domain.Principal{})

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["user_name"] != "alice" || user["role"] != domain.RoleUser {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password hash leaked: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ListsEveryInvalidField(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.TokenMessage, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/user", `{"user_name":"al","email":"nope"}`)
	c, _ := newContext(req, domain.Principal{})

	err := handler.Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := map[string]bool{}
	for _, f := range ve.Fields {
		got[f.Field] = true
	}
	for _, want := range []string{"user_name", "email", "password"} {
		if !got[want] {
			t.Fatalf("field %s missing from %+v", want, ve.Fields)
		}
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.TokenMessage, error) {
			return nil, domain.ErrConflict
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/user", `{"user_name":"bob","email":"b@example.com","password":"secret"}`)
	c, _ := newContext(req, domain.Principal{})

	if err := handler.Register(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, login, password string) (*ports.TokenMessage, error) {
			if login != "alice" || password != "secret" {
				return nil, domain.ErrInvalidLogin
			}
			return &ports.TokenMessage{Token: "tkn", Message: "logged in", User: &domain.User{ID: "u1"}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret"}`), domain.Principal{})
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tkn"`) {
		t.Fatalf("token missing: %s", rec.Body.String())
	}

	c, _ = newContext(jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`), domain.Principal{})
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidLogin) {
		t.Fatalf("expected ErrInvalidLogin, got %v", err)
	}
}

func TestAuthHandler_CheckToken_PassesPrincipal(t *testing.T) {
	caller := domain.Principal{ID: "u1", Role: domain.RoleUser, Token: "tkn"}
	stub := &stubAuthService{
		checkFn: func(ctx context.Context, p domain.Principal) (*ports.TokenMessage, error) {
			if p != caller {
				t.Fatalf("unexpected principal %+v", p)
			}
			return &ports.TokenMessage{Token: p.Token, Message: "token valid"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/user/token", nil), caller)
	if err := handler.CheckToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
