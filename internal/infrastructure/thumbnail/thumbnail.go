// Package thumbnail renders square PNG previews of uploaded photos.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/ollivarila/wsk2/internal/core/ports"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

const (
	Size   = 160
	Suffix = "_thumb"
)

// Name returns the object name of the thumbnail of photo.
func Name(photo string) string { return photo + Suffix }

// Generator reads a photo from the store and writes its thumbnail next to it.
type Generator struct {
	photos ports.PhotoStore
}

func NewGenerator(photos ports.PhotoStore) *Generator {
	return &Generator{photos: photos}
}

// Process implements queue.Processor.
func (g *Generator) Process(ctx context.Context, photo string) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.ThumbnailsTotal.WithLabelValues(result).Inc()
		metrics.ThumbnailDuration.Observe(time.Since(start).Seconds())
	}()

	rc, err := g.photos.Open(ctx, photo)
	if err != nil {
		return fmt.Errorf("open %s: %w", photo, err)
	}
	defer rc.Close()

	src, _, err := image.Decode(rc)
	if err != nil {
		return fmt.Errorf("decode %s: %w", photo, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Render(src)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return g.photos.Save(ctx, Name(photo), &buf)
}

// Render scales the centred square crop of src to Size x Size.
func Render(src image.Image) image.Image {
	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}
