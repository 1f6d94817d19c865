// Package pagination runs a page query and its count concurrently and wraps
// the result in the shared page envelope.
package pagination

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/frota/pkg/models"
)

// Fetch normalizes p, then runs list and count in parallel. The first error
// cancels the other query.
func Fetch[T any](ctx context.Context, p models.PageParams, list func(context.Context, models.PageParams) ([]T, error), count func(context.Context) (int64, error)) (*models.Page[T], error) {
	p = p.Normalize()

	var (
		data  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = list(gctx, p)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return models.NewPage(data, total, p), nil
}
