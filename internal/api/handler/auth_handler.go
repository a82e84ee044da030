package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and logs it in.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  ports.TokenMessage
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.UserName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, msg)
}

// Login authenticates a user by email or user name and returns a token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.TokenMessage
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, msg)
}

// CheckToken echoes the caller's token back together with its user.
//
// @Summary      Check the bearer token
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.TokenMessage
// @Failure      401  {object}  errorResponse
// @Router       /user/token [get]
func (h *AuthHandler) CheckToken(c echo.Context) error {
	msg, err := h.authService.CheckToken(c.Request().Context(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msg)
}
