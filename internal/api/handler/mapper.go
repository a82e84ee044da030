package handler

import (
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

// --- Request → Service input ---

func toUserUpdateInput(req updateUserRequest) ports.UserUpdateInput {
	return ports.UserUpdateInput{
		Name:     req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
}

func toCatPatch(req updateCatRequest) (domain.CatPatch, error) {
	patch := domain.CatPatch{
		Name:     req.CatName,
		Weight:   req.Weight,
		Filename: req.Filename,
		OwnerID:  req.Owner,
	}
	if req.Birthdate != nil {
		t, err := domain.ParseBirthdate(*req.Birthdate)
		if err != nil {
			return domain.CatPatch{}, err
		}
		patch.Birthdate = &t
	}
	if req.Coordinates != nil {
		patch.Coordinates = &domain.Coordinates{Lat: req.Coordinates.Lat, Lng: req.Coordinates.Lng}
	}
	return patch, nil
}
