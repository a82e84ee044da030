package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/domain"
	"github.com/ollivarila/wsk2/internal/core/ports"
)

// photoField is the multipart field carrying the cat photo.
const photoField = "cat"

// CoordinateReader reads the GPS position of a photo, falling back to
// domain.DefaultCoordinates.
type CoordinateReader interface {
	Coordinates(ctx context.Context, r io.Reader) domain.Coordinates
}

// ThumbnailQueue schedules thumbnail generation for a stored photo.
type ThumbnailQueue interface {
	Enqueue(photo string) bool
}

// PhotoIntake stores uploaded photos, reads their geotag and schedules a
// thumbnail. It backs both POST /upload and POST /cat.
type PhotoIntake struct {
	store  ports.PhotoStore
	coords CoordinateReader
	thumbs ThumbnailQueue
	log    zerolog.Logger
}

func NewPhotoIntake(store ports.PhotoStore, coords CoordinateReader, thumbs ThumbnailQueue, log zerolog.Logger) *PhotoIntake {
	return &PhotoIntake{store: store, coords: coords, thumbs: thumbs, log: log}
}

// Accept stores fh under a fresh uuid name and records the photo's
// coordinates in the request scope. Anything that does not sniff as an image
// is rejected with a validation error on the photo field.
func (p *PhotoIntake) Accept(ctx context.Context, fh *multipart.FileHeader) (*photoResponse, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("sniff upload: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, domain.NewValidationError(domain.FieldError{Field: photoField, Message: "must be an image"})
	}

	name := uuid.NewString()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	if err := p.store.Save(ctx, name, f); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	coords := p.coords.Coordinates(ctx, f)
	auth.ScopeFrom(ctx).Coordinates = &coords

	if !p.thumbs.Enqueue(name) {
		p.log.Warn().Str("photo", name).Msg("thumbnail not scheduled")
	}

	p.log.Info().
		Str("photo", name).
		Str("mime", mt.String()).
		Int64("size", fh.Size).
		Float64("lat", coords.Lat).
		Float64("lng", coords.Lng).
		Msg("photo stored")

	return &photoResponse{Filename: name, Coordinates: coords}, nil
}

// UploadHandler handles POST /upload.
type UploadHandler struct {
	photos *PhotoIntake
}

func NewUploadHandler(photos *PhotoIntake) *UploadHandler {
	return &UploadHandler{photos: photos}
}

// Upload stores a photo and returns its name and coordinates.
//
// @Summary      Upload a cat photo
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        cat  formData  file  true  "Photo"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile(photoField)
	if err != nil {
		return domain.NewValidationError(domain.FieldError{Field: photoField, Message: "is required"})
	}

	photo, err := h.photos.Accept(c.Request().Context(), fh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "file uploaded", Data: photo})
}
