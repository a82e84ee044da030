package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

func TestCatSet_OnlyPresentFields(t *testing.T) {
	set, err := catSet(domain.CatPatch{})
	if err != nil || len(set) != 0 {
		t.Fatalf("empty patch produced %v, %v", set, err)
	}

	name := "Mirri"
	w := 4.5
	set, err = catSet(domain.CatPatch{Name: &name, Weight: &w})
	if err != nil {
		t.Fatalf("catSet: %v", err)
	}
	if len(set) != 2 || set["cat_name"] != "Mirri" || set["weight"] != 4.5 {
		t.Fatalf("unexpected $set: %v", set)
	}
}

func TestCatSet_Owner(t *testing.T) {
	oid := primitive.NewObjectID()
	hex := oid.Hex()
	set, err := catSet(domain.CatPatch{OwnerID: &hex})
	if err != nil {
		t.Fatalf("catSet: %v", err)
	}
	if set["owner"] != oid {
		t.Fatalf("owner not converted to ObjectID: %v", set["owner"])
	}

	bad := "not-hex"
	if _, err := catSet(domain.CatPatch{OwnerID: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUserSet(t *testing.T) {
	email := "a@example.com"
	set := userSet(domain.UserPatch{Email: &email})
	if len(set) != 1 || set["email"] != email {
		t.Fatalf("unexpected $set: %v", set)
	}
	if len(userSet(domain.UserPatch{})) != 0 {
		t.Fatalf("empty patch produced fields")
	}
}

func TestBoxFilter(t *testing.T) {
	box := domain.Box{
		TopRight:   domain.Coordinates{Lat: 62, Lng: 25},
		BottomLeft: domain.Coordinates{Lat: 60, Lng: 23},
	}
	f := boxFilter(box)

	lat := f["coordinates.lat"].(bson.M)
	lng := f["coordinates.lng"].(bson.M)
	if lat["$gte"] != 60.0 || lat["$lte"] != 62.0 || lng["$gte"] != 23.0 || lng["$lte"] != 25.0 {
		t.Fatalf("unexpected filter: %v", f)
	}
}

func TestScopedFilter(t *testing.T) {
	cat := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	f, err := scopedFilter(cat.Hex(), "")
	if err != nil || len(f) != 1 || f["_id"] != cat {
		t.Fatalf("unscoped filter: %v, %v", f, err)
	}

	f, err = scopedFilter(cat.Hex(), owner.Hex())
	if err != nil || f["owner"] != owner {
		t.Fatalf("scoped filter: %v, %v", f, err)
	}

	if _, err := scopedFilter("nope", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestTranslate(t *testing.T) {
	if err := translate("op", "cat", "1", mongo.ErrNoDocuments); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	cause := errors.New("socket closed")
	err := translate("op", "cat", "1", cause)
	if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped ErrStoreUnavailable, got %v", err)
	}
	if translate("op", "cat", "1", nil) != nil {
		t.Fatalf("nil error translated")
	}
}

func TestCatDoc_ToDomain(t *testing.T) {
	d := catDoc{
		ID:          primitive.NewObjectID(),
		Name:        "Misu",
		Weight:      3,
		Filename:    "misu.jpg",
		Birthdate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Coordinates: coordinatesDoc{Lat: 60, Lng: 24},
		Owner:       primitive.NewObjectID(),
	}
	c := d.toDomain()
	if c.ID != d.ID.Hex() || c.OwnerID != d.Owner.Hex() || c.Coordinates.Lat != 60 || c.Name != "Misu" {
		t.Fatalf("unexpected cat: %+v", c)
	}
}
