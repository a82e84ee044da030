package ports

import (
	"context"
	"io"
)

// PhotoStore persists uploaded cat photos and their thumbnails.
type PhotoStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
