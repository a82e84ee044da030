package service

import (
	"github.com/ollivarila/wsk2/internal/core/domain"
)

// Options holds policy switches shared by the services.
type Options struct {
	// EmptyListNotFound turns a list with zero results into domain.ErrNotFound.
	EmptyListNotFound bool
}

func listResult[T any](items []T, opts Options, what string) ([]T, error) {
	if len(items) == 0 {
		if opts.EmptyListNotFound {
			return nil, domain.NotFoundf("no %s found", what)
		}
		return []T{}, nil
	}
	return items, nil
}
