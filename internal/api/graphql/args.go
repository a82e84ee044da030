package graphql

import (
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func floatArg(args map[string]any, name string) float64 {
	switch v := args[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func optString(args map[string]any, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func objectArg(args map[string]any, name string) map[string]any {
	m, _ := args[name].(map[string]any)
	return m
}

// coordinatesArg returns nil when the argument is absent.
func coordinatesArg(args map[string]any, name string) *domain.Coordinates {
	m := objectArg(args, name)
	if m == nil {
		return nil
	}
	return &domain.Coordinates{Lat: floatArg(m, "lat"), Lng: floatArg(m, "lng")}
}

func catPatch(args map[string]any) (domain.CatPatch, error) {
	patch := domain.CatPatch{
		Name:        optString(args, "cat_name"),
		Filename:    optString(args, "filename"),
		OwnerID:     optString(args, "owner"),
		Coordinates: coordinatesArg(args, "coordinates"),
	}
	if w, ok := args["weight"].(float64); ok {
		patch.Weight = &w
	}
	if raw := optString(args, "birthdate"); raw != nil {
		t, err := domain.ParseBirthdate(*raw)
		if err != nil {
			return domain.CatPatch{}, err
		}
		patch.Birthdate = &t
	}
	return patch, nil
}

func userUpdate(args map[string]any) ports.UserUpdateInput {
	return ports.UserUpdateInput{
		Name:     optString(args, "user_name"),
		Email:    optString(args, "email"),
		Password: optString(args, "password"),
		Role:     optString(args, "role"),
	}
}
