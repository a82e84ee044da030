package handler

import (
	"github.com/ollivarila/wsk2/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses. Fields is set for validation failures, Detail only in
// development.
type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldIssue `json:"fields,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

type fieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// messageResponse wraps the result of every write.
type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// --- Request / Response types ---

type loginRequest struct {
	// Username is either the email or the user name.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	UserName string `json:"user_name" validate:"required,min=3"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=3"`
}

type updateUserRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=3"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Password *string `json:"password"  validate:"omitempty,min=3"`
	Role     *string `json:"role"      validate:"omitempty,oneof=user admin"`
}

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type updateCatRequest struct {
	CatName     *string             `json:"cat_name"    validate:"omitempty,min=1"`
	Weight      *float64            `json:"weight"      validate:"omitempty,gt=0"`
	Birthdate   *string             `json:"birthdate"`
	Filename    *string             `json:"filename"    validate:"omitempty,min=1"`
	Coordinates *coordinatesRequest `json:"coordinates"`
	Owner       *string             `json:"owner"       validate:"omitempty,min=1"`
}

type photoResponse struct {
	Filename    string             `json:"filename"`
	Coordinates domain.Coordinates `json:"coordinates"`
}
