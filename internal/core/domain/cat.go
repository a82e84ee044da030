package domain

import (
	"strings"
	"time"
)

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCoordinates is used whenever a photo carries no usable GPS data.
var DefaultCoordinates = Coordinates{Lat: 24, Lng: 61}

// Box is an axis-aligned area described by two opposite corners.
type Box struct {
	TopRight   Coordinates
	BottomLeft Coordinates
}

// Normalized returns the box with TopRight holding the maximum and
// BottomLeft the minimum of each axis.
func (b Box) Normalized() Box {
	return Box{
		TopRight: Coordinates{
			Lat: max(b.TopRight.Lat, b.BottomLeft.Lat),
			Lng: max(b.TopRight.Lng, b.BottomLeft.Lng),
		},
		BottomLeft: Coordinates{
			Lat: min(b.TopRight.Lat, b.BottomLeft.Lat),
			Lng: min(b.TopRight.Lng, b.BottomLeft.Lng),
		},
	}
}

// Contains reports whether c lies inside the box, edges included.
func (b Box) Contains(c Coordinates) bool {
	n := b.Normalized()
	return c.Lat >= n.BottomLeft.Lat && c.Lat <= n.TopRight.Lat &&
		c.Lng >= n.BottomLeft.Lng && c.Lng <= n.TopRight.Lng
}

// Cat is the core aggregate of the API.
type Cat struct {
	ID          string      `json:"id"`
	Name        string      `json:"cat_name"`
	Weight      float64     `json:"weight"`
	Filename    string      `json:"filename"`
	Birthdate   time.Time   `json:"birthdate"`
	Coordinates Coordinates `json:"coordinates"`
	OwnerID     string      `json:"owner"`
}

// CatPatch carries the fields of a partial cat update. Nil fields keep
// their stored value.
type CatPatch struct {
	Name        *string
	Weight      *float64
	Filename    *string
	Birthdate   *time.Time
	Coordinates *Coordinates
	OwnerID     *string
}

// Empty reports whether the patch changes nothing.
func (p CatPatch) Empty() bool {
	return p.Name == nil && p.Weight == nil && p.Filename == nil &&
		p.Birthdate == nil && p.Coordinates == nil && p.OwnerID == nil
}

// Apply merges the patch into c and returns the result. c is not modified.
func (p CatPatch) Apply(c Cat) Cat {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Weight != nil {
		c.Weight = *p.Weight
	}
	if p.Filename != nil {
		c.Filename = *p.Filename
	}
	if p.Birthdate != nil {
		c.Birthdate = *p.Birthdate
	}
	if p.Coordinates != nil {
		c.Coordinates = *p.Coordinates
	}
	if p.OwnerID != nil {
		c.OwnerID = *p.OwnerID
	}
	return c
}

// birthdateLayouts are tried in order by ParseBirthdate.
var birthdateLayouts = []string{time.DateOnly, time.RFC3339}

// ParseBirthdate accepts a calendar date or an RFC 3339 timestamp. Failure is
// a ValidationError on the birthdate field.
func ParseBirthdate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range birthdateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, NewValidationError(FieldError{Field: "birthdate", Message: "must be a date (YYYY-MM-DD)"})
}
