package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/ports"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      404  {object}  errorResponse
// @Router       /user [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /user/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /user/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateSelf handles PUT /user. The role field is ignored.
//
// @Summary      Update the current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /user [put]
func (h *UserHandler) UpdateSelf(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateSelf(c.Request().Context(), principal(c), toUserUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user updated", Data: user})
}

// DeleteSelf handles DELETE /user.
//
// @Summary      Delete the current user and their cats
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user [delete]
func (h *UserHandler) DeleteSelf(c echo.Context) error {
	user, err := h.service.DeleteSelf(c.Request().Context(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted", Data: user})
}

// UpdateAsAdmin handles PUT /user/:id.
//
// @Summary      Update any user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /user/{id} [put]
func (h *UserHandler) UpdateAsAdmin(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateAsAdmin(c.Request().Context(), principal(c), c.Param("id"), toUserUpdateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user updated", Data: user})
}

// DeleteAsAdmin handles DELETE /user/:id.
//
// @Summary      Delete any user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/{id} [delete]
func (h *UserHandler) DeleteAsAdmin(c echo.Context) error {
	user, err := h.service.DeleteAsAdmin(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted", Data: user})
}
