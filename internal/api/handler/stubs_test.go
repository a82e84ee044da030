package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.TokenMessage, error)
	loginFn    func(ctx context.Context, login, password string) (*ports.TokenMessage, error)
	checkFn    func(ctx context.Context, p domain.Principal) (*ports.TokenMessage, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.TokenMessage, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, login, password string) (*ports.TokenMessage, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubAuthService) CheckToken(ctx context.Context, p domain.Principal) (*ports.TokenMessage, error) {
	return s.checkFn(ctx, p)
}

type stubUserService struct {
	ports.UserService
	updateSelfFn    func(ctx context.Context, p domain.Principal, in ports.UserUpdateInput) (*domain.User, error)
	deleteAsAdminFn func(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
}

func (s *stubUserService) UpdateSelf(ctx context.Context, p domain.Principal, in ports.UserUpdateInput) (*domain.User, error) {
	return s.updateSelfFn(ctx, p, in)
}

func (s *stubUserService) DeleteAsAdmin(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	return s.deleteAsAdminFn(ctx, p, id)
}

// stubCatService embeds the interface so tests only implement what they call.
type stubCatService struct {
	ports.CatService
	createFn        func(ctx context.Context, p domain.Principal, in ports.CreateCatInput) (*domain.Cat, error)
	updateFn        func(ctx context.Context, p domain.Principal, id string, patch domain.CatPatch) (*domain.Cat, error)
	listWithinBoxFn func(ctx context.Context, box domain.Box) ([]*domain.Cat, error)
	listByOwnerFn   func(ctx context.Context, ownerID string) ([]*domain.Cat, error)
}

func (s *stubCatService) Create(ctx context.Context, p domain.Principal, in ports.CreateCatInput) (*domain.Cat, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubCatService) Update(ctx context.Context, p domain.Principal, id string, patch domain.CatPatch) (*domain.Cat, error) {
	return s.updateFn(ctx, p, id, patch)
}

func (s *stubCatService) ListWithinBox(ctx context.Context, box domain.Box) ([]*domain.Cat, error) {
	return s.listWithinBoxFn(ctx, box)
}

func (s *stubCatService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Cat, error) {
	return s.listByOwnerFn(ctx, ownerID)
}

type memPhotoStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemPhotoStore() *memPhotoStore {
	return &memPhotoStore{files: map[string][]byte{}}
}

func (m *memPhotoStore) Save(_ context.Context, name string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = b
	return nil
}

func (m *memPhotoStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[name]
	if !ok {
		return nil, domain.NotFoundf("photo %s", name)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type fixedCoords struct {
	c domain.Coordinates
}

func (f fixedCoords) Coordinates(_ context.Context, r io.Reader) domain.Coordinates {
	_, _ = io.Copy(io.Discard, r)
	return f.c
}

type recordingQueue struct {
	photos []string
}

func (q *recordingQueue) Enqueue(photo string) bool {
	q.photos = append(q.photos, photo)
	return true
}

// newContext builds an echo context for req with p as the caller.
func newContext(req *http.Request, p domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req = req.WithContext(auth.WithScope(req.Context(), &auth.Scope{Principal: p}))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
