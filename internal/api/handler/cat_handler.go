package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

// CatHandler handles HTTP requests for cat operations.
type CatHandler struct {
	service ports.CatService
	photos  *PhotoIntake
}

func NewCatHandler(service ports.CatService, photos *PhotoIntake) *CatHandler {
	return &CatHandler{service: service, photos: photos}
}

// List handles GET /cat.
//
// @Summary      List cats
// @Tags         cats
// @Produce      json
// @Success      200  {array}   domain.Cat
// @Failure      404  {object}  errorResponse
// @Router       /cat [get]
func (h *CatHandler) List(c echo.Context) error {
	cats, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// Get handles GET /cat/:id.
//
// @Summary      Get a cat
// @Tags         cats
// @Produce      json
// @Param        id   path      string  true  "Cat id"
// @Success      200  {object}  domain.Cat
// @Failure      404  {object}  errorResponse
// @Router       /cat/{id} [get]
func (h *CatHandler) Get(c echo.Context) error {
	cat, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

// Area handles GET /cat/area?topRight=lat,lng&bottomLeft=lat,lng.
//
// @Summary      List cats inside a box
// @Tags         cats
// @Produce      json
// @Param        topRight    query     string  true  "lat,lng"
// @Param        bottomLeft  query     string  true  "lat,lng"
// @Success      200         {array}   domain.Cat
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /cat/area [get]
func (h *CatHandler) Area(c echo.Context) error {
	var fields []domain.FieldError
	topRight, err := parsePoint(c.QueryParam("topRight"))
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "topRight", Message: err.Error()})
	}
	bottomLeft, err := parsePoint(c.QueryParam("bottomLeft"))
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "bottomLeft", Message: err.Error()})
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}

	cats, err := h.service.ListWithinBox(c.Request().Context(), domain.Box{TopRight: topRight, BottomLeft: bottomLeft})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// ListOwn handles GET /cat/user.
//
// @Summary      List the current user's cats
// @Tags         cats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Cat
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cat/user [get]
func (h *CatHandler) ListOwn(c echo.Context) error {
	p := principal(c)
	if p.Anonymous() {
		return domain.ErrNotAuthenticated
	}
	cats, err := h.service.ListByOwner(c.Request().Context(), p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// Create handles POST /cat. The photo is read from the "cat" multipart
// field and the coordinates from its geotag.
//
// @Summary      Create a cat
// @Tags         cats
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        cat        formData  file    true  "Photo"
// @Param        cat_name   formData  string  true  "Name"
// @Param        weight     formData  number  true  "Weight"
// @Param        birthdate  formData  string  true  "Birthdate (YYYY-MM-DD)"
// @Success      201        {object}  messageResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /cat [post]
func (h *CatHandler) Create(c echo.Context) error {
	p := principal(c)
	if p.Anonymous() {
		return domain.ErrNotAuthenticated
	}

	in := ports.CreateCatInput{Name: c.FormValue("cat_name")}
	var fields []domain.FieldError
	if raw := strings.TrimSpace(c.FormValue("weight")); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "weight", Message: "must be a number"})
		}
		in.Weight = w
	}
	if raw := c.FormValue("birthdate"); raw != "" {
		t, err := domain.ParseBirthdate(raw)
		if err != nil {
			fields = append(fields, domain.FieldError{Field: "birthdate", Message: "must be a date (YYYY-MM-DD)"})
		}
		in.Birthdate = t
	}
	if len(fields) == 0 {
		fields = in.DetailErrors()
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields...)
	}

	ctx := c.Request().Context()
	if fh, err := c.FormFile(photoField); err == nil {
		photo, err := h.photos.Accept(ctx, fh)
		if err != nil {
			return err
		}
		in.Filename = photo.Filename
		in.Coordinates = auth.ScopeFrom(ctx).Coordinates
	}

	cat, err := h.service.Create(ctx, p, in)
	if err != nil {
		return err
	}
	metrics.CatsCreatedTotal.WithLabelValues("rest").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: "cat created", Data: cat})
}

// Update handles PUT /cat/:id for the owner (or an admin).
//
// @Summary      Update an own cat
// @Tags         cats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Cat id"
// @Param        body  body      updateCatRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /cat/{id} [put]
func (h *CatHandler) Update(c echo.Context) error {
	patch, err := h.bindPatch(c)
	if err != nil {
		return err
	}
	cat, err := h.service.Update(c.Request().Context(), principal(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "cat updated", Data: cat})
}

// Delete handles DELETE /cat/:id for the owner (or an admin).
//
// @Summary      Delete an own cat
// @Tags         cats
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cat id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cat/{id} [delete]
func (h *CatHandler) Delete(c echo.Context) error {
	cat, err := h.service.Delete(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "cat deleted", Data: cat})
}

// UpdateAsAdmin handles PUT /cat/admin/:id.
//
// @Summary      Update any cat
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Cat id"
// @Param        body  body      updateCatRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /cat/admin/{id} [put]
func (h *CatHandler) UpdateAsAdmin(c echo.Context) error {
	patch, err := h.bindPatch(c)
	if err != nil {
		return err
	}
	cat, err := h.service.UpdateAsAdmin(c.Request().Context(), principal(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "cat updated", Data: cat})
}

// DeleteAsAdmin handles DELETE /cat/admin/:id.
//
// @Summary      Delete any cat
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cat id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cat/admin/{id} [delete]
func (h *CatHandler) DeleteAsAdmin(c echo.Context) error {
	cat, err := h.service.DeleteAsAdmin(c.Request().Context(), principal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "cat deleted", Data: cat})
}

func (h *CatHandler) bindPatch(c echo.Context) (domain.CatPatch, error) {
	var req updateCatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return domain.CatPatch{}, err
	}
	return toCatPatch(req)
}

// parsePoint parses "lat,lng".
func parsePoint(s string) (domain.Coordinates, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, errPointFormat
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinates{}, errPointFormat
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return domain.Coordinates{}, errPointFormat
	}
	return domain.Coordinates{Lat: la, Lng: ln}, nil
}

var errPointFormat = errors.New("must be lat,lng")
