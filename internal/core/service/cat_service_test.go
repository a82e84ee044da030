package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

var (
	owner    = domain.Principal{ID: "u1", Role: domain.RoleUser}
	stranger = domain.Principal{ID: "u2", Role: domain.RoleUser}
	admin    = domain.Principal{ID: "a1", Role: domain.RoleAdmin}
	anon     = domain.Principal{}
)

func newTestCatService(opts Options) (*CatService, *stubCatRepo, *stubUserRepo) {
	users := newStubUserRepo()
	for _, p := range []domain.Principal{owner, stranger, admin} {
		users.users[p.ID] = &domain.User{ID: p.ID, Name: p.ID, Email: p.ID + "@example.com", Role: p.Role}
	}
	cats := newStubCatRepo()
	cats.cats["c1"] = &domain.Cat{
		ID:          "c1",
		Name:        "Misu",
		Weight:      4.2,
		Filename:    "misu.jpg",
		Birthdate:   time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		Coordinates: domain.Coordinates{Lat: 60.17, Lng: 24.94},
		OwnerID:     owner.ID,
	}
	return NewCatService(cats, users, opts, zerolog.Nop()), cats, users
}

func validCatInput() ports.CreateCatInput {
	return ports.CreateCatInput{
		Name:      "Katti",
		Weight:    3.5,
		Birthdate: time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
		Filename:  "katti.jpg",
	}
}

func TestCatService_Create_DefaultsCoordinatesAndOwner(t *testing.T) {
	svc, _, _ := newTestCatService(Options{})

	cat, err := svc.Create(context.Background(), stranger, validCatInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cat.OwnerID != stranger.ID {
		t.Fatalf("expected owner %s, got %s", stranger.ID, cat.OwnerID)
	}
	if cat.Coordinates != domain.DefaultCoordinates {
		t.Fatalf("expected fallback coordinates, got %+v", cat.Coordinates)
	}

	in := validCatInput()
	in.Coordinates = &domain.Coordinates{Lat: 61, Lng: 24}
	cat, err = svc.Create(context.Background(), stranger, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cat.Coordinates != *in.Coordinates {
		t.Fatalf("expected extracted coordinates, got %+v", cat.Coordinates)
	}
}

func TestCatService_Create_ListsEveryMissingField(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	cats.calls = 0

	_, err := svc.Create(context.Background(), owner, ports.CreateCatInput{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"cat_name", "weight", "birthdate", "filename"}
	var got []string
	for _, f := range verr.Fields {
		got = append(got, f.Field)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected fields %v, got %v", want, got)
	}
	if cats.calls != 0 {
		t.Fatalf("store touched on invalid input")
	}
}

func TestCatService_Create_UnknownOwner(t *testing.T) {
	svc, _, _ := newTestCatService(Options{})
	ghost := domain.Principal{ID: "ghost", Role: domain.RoleUser}

	_, err := svc.Create(context.Background(), ghost, validCatInput())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCatService_Update_EmptyPatchIsNoop(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	before := *cats.cats["c1"]

	for _, p := range []domain.Principal{owner, admin} {
		got, err := svc.Update(context.Background(), p, "c1", domain.CatPatch{})
		if err != nil {
			t.Fatalf("Update as %s: %v", p.ID, err)
		}
		if *got != before || *cats.cats["c1"] != before {
			t.Fatalf("empty patch changed the cat: %+v", got)
		}
	}
}

func TestCatService_Update_MergesOnlyPresentFields(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	before := *cats.cats["c1"]

	name := "Mirri"
	got, err := svc.Update(context.Background(), owner, "c1", domain.CatPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := before
	want.Name = name
	if *got != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}

func TestCatService_Update_OwnerReassignment(t *testing.T) {
	svc, _, _ := newTestCatService(Options{})

	newOwner := stranger.ID
	got, err := svc.Update(context.Background(), owner, "c1", domain.CatPatch{OwnerID: &newOwner})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.OwnerID != stranger.ID {
		t.Fatalf("owner not reassigned")
	}

	ghost := "ghost"
	if _, err := svc.Update(context.Background(), stranger, "c1", domain.CatPatch{OwnerID: &ghost}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown owner, got %v", err)
	}
}

func TestCatService_NonOwnerIsDenied(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	name := "stolen"

	if _, err := svc.Delete(context.Background(), stranger, "c1"); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
	if _, err := svc.Update(context.Background(), stranger, "c1", domain.CatPatch{Name: &name}); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if !errors.Is(domain.ErrNotOwner, domain.ErrNotAuthorized) {
		t.Fatalf("ErrNotOwner must be an ErrNotAuthorized")
	}
	if _, ok := cats.cats["c1"]; !ok || cats.cats["c1"].Name != "Misu" {
		t.Fatalf("cat modified by non-owner")
	}
}

func TestCatService_MissingCatIsNotFound(t *testing.T) {
	svc, _, _ := newTestCatService(Options{})

	if _, err := svc.Delete(context.Background(), owner, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.DeleteAsAdmin(context.Background(), admin, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatService_AdminRoutes(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	w := 5.0

	if _, err := svc.UpdateAsAdmin(context.Background(), owner, "c1", domain.CatPatch{Weight: &w}); !errors.Is(err, domain.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := svc.UpdateAsAdmin(context.Background(), admin, "c1", domain.CatPatch{Weight: &w}); err != nil {
		t.Fatalf("UpdateAsAdmin: %v", err)
	}
	if cats.cats["c1"].Weight != 5 {
		t.Fatalf("weight not updated")
	}
	if _, err := svc.Delete(context.Background(), admin, "c1"); err != nil {
		t.Fatalf("admin delete through own route: %v", err)
	}
}

func TestCatService_AnonymousWritesDoNotTouchStore(t *testing.T) {
	svc, cats, users := newTestCatService(Options{})
	name := "x"

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if _, err := svc.Get(context.Background(), "c1"); err != nil {
		t.Fatalf("anonymous get: %v", err)
	}

	cats.calls, users.calls = 0, 0
	calls := map[string]func() error{
		"create": func() error { _, err := svc.Create(context.Background(), anon, validCatInput()); return err },
		"update": func() error { _, err := svc.Update(context.Background(), anon, "c1", domain.CatPatch{Name: &name}); return err },
		"delete": func() error { _, err := svc.Delete(context.Background(), anon, "c1"); return err },
		"update admin": func() error {
			_, err := svc.UpdateAsAdmin(context.Background(), anon, "c1", domain.CatPatch{Name: &name})
			return err
		},
		"delete admin": func() error { _, err := svc.DeleteAsAdmin(context.Background(), anon, "c1"); return err },
	}
	for op, call := range calls {
		if err := call(); !errors.Is(err, domain.ErrNotAuthenticated) {
			t.Fatalf("%s: expected ErrNotAuthenticated, got %v", op, err)
		}
	}
	if cats.calls != 0 || users.calls != 0 {
		t.Fatalf("store touched: cats=%d users=%d", cats.calls, users.calls)
	}
}

func TestCatService_ListWithinBox(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	cats.cats = map[string]*domain.Cat{
		"in1":     {ID: "in1", Coordinates: domain.Coordinates{Lat: 61, Lng: 24}},
		"in2":     {ID: "in2", Coordinates: domain.Coordinates{Lat: 60, Lng: 25}},
		"edge":    {ID: "edge", Coordinates: domain.Coordinates{Lat: 62, Lng: 23}},
		"north":   {ID: "north", Coordinates: domain.Coordinates{Lat: 62.01, Lng: 24}},
		"east":    {ID: "east", Coordinates: domain.Coordinates{Lat: 61, Lng: 25.5}},
		"default": {ID: "default", Coordinates: domain.DefaultCoordinates},
	}

	box := domain.Box{
		TopRight:   domain.Coordinates{Lat: 62, Lng: 25},
		BottomLeft: domain.Coordinates{Lat: 60, Lng: 23},
	}
	got, err := svc.ListWithinBox(context.Background(), box)
	if err != nil {
		t.Fatalf("ListWithinBox: %v", err)
	}
	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	want := []string{"edge", "in1", "in2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}

	// Swapped corners describe the same box.
	swapped := domain.Box{TopRight: box.BottomLeft, BottomLeft: box.TopRight}
	got, err = svc.ListWithinBox(context.Background(), swapped)
	if err != nil || len(got) != 3 {
		t.Fatalf("swapped corners: %v, %d cats", err, len(got))
	}
}

func TestCatService_EmptyListPolicy(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{EmptyListNotFound: true})
	cats.cats = map[string]*domain.Cat{}

	if _, err := svc.List(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ListByOwner(context.Background(), owner.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	svc.opts.EmptyListNotFound = false
	got, err := svc.List(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty success, got %v, %v", got, err)
	}
}

func TestCatService_StoreErrorsPropagate(t *testing.T) {
	svc, cats, _ := newTestCatService(Options{})
	cats.err = domain.StoreError("list cats", errors.New("connection reset"))

	if _, err := svc.List(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
