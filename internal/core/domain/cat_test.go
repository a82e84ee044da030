package domain

import (
	"errors"
	"testing"
	"time"
)

func TestBox_Normalized(t *testing.T) {
	b := Box{
		TopRight:   Coordinates{Lat: 10, Lng: -5},
		BottomLeft: Coordinates{Lat: 20, Lng: 5},
	}
	n := b.Normalized()

	if n.TopRight != (Coordinates{Lat: 20, Lng: 5}) {
		t.Fatalf("TopRight = %+v", n.TopRight)
	}
	if n.BottomLeft != (Coordinates{Lat: 10, Lng: -5}) {
		t.Fatalf("BottomLeft = %+v", n.BottomLeft)
	}
}

func TestBox_Contains(t *testing.T) {
	// Corners deliberately swapped.
	b := Box{
		TopRight:   Coordinates{Lat: 0, Lng: 0},
		BottomLeft: Coordinates{Lat: 30, Lng: 70},
	}
	cases := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"inside", DefaultCoordinates, true},
		{"on edge", Coordinates{Lat: 30, Lng: 0}, true},
		{"north of box", Coordinates{Lat: 31, Lng: 10}, false},
		{"west of box", Coordinates{Lat: 10, Lng: -0.1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Contains(tc.c); got != tc.want {
				t.Fatalf("Contains(%+v) = %v, want %v", tc.c, got, tc.want)
			}
		})
	}
}

func TestCatPatch_Apply(t *testing.T) {
	birth := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	orig := Cat{ID: "c1", Name: "Miso", Weight: 4, Filename: "a.jpg", Birthdate: birth, OwnerID: "u1"}

	name := "Tofu"
	weight := 5.5
	got := CatPatch{Name: &name, Weight: &weight}.Apply(orig)

	if got.Name != "Tofu" || got.Weight != 5.5 {
		t.Fatalf("patched fields not applied: %+v", got)
	}
	if got.ID != "c1" || got.Filename != "a.jpg" || !got.Birthdate.Equal(birth) || got.OwnerID != "u1" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if orig.Name != "Miso" {
		t.Fatalf("Apply modified its receiver argument: %+v", orig)
	}
}

func TestCatPatch_Empty(t *testing.T) {
	if !(CatPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	owner := "u2"
	if (CatPatch{OwnerID: &owner}).Empty() {
		t.Fatal("patch with owner should not be empty")
	}
}

func TestParseBirthdate(t *testing.T) {
	got, err := ParseBirthdate("2021-03-04")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if !got.Equal(time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date only parsed as %v", got)
	}

	got, err = ParseBirthdate(" 2021-03-04T10:00:00+02:00 ")
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if !got.Equal(time.Date(2021, 3, 4, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 parsed as %v", got)
	}

	_, err = ParseBirthdate("yesterday")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "birthdate" {
		t.Fatalf("expected birthdate field error, got %v", err)
	}
}
