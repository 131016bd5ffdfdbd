package services

import (
	"context"

	"kitchen_control/internal/apperr"
	"kitchen_control/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// viewReads loads the independent data sets of one view concurrently. A read
// that fails leaves its target empty and is logged; only an authentication
// failure aborts the view, because the session is no longer usable.
type viewReads struct {
	view string
	g    *errgroup.Group
	ctx  context.Context
}

func newViewReads(ctx context.Context, view string) *viewReads {
	g, gctx := errgroup.WithContext(ctx)
	return &viewReads{view: view, g: g, ctx: gctx}
}

// load schedules fn and stores its result in dst.
func load[T any](r *viewReads, source string, dst *[]T, fn func(context.Context) ([]T, error)) {
	r.g.Go(func() error {
		items, err := fn(r.ctx)
		if err != nil {
			if apperr.Is(err, apperr.KindAuthentication) {
				return err
			}
			utils.LogWarn(err, "View read failed, rendering empty", map[string]interface{}{
				"view":   r.view,
				"source": source,
				"kind":   apperr.KindOf(err).String(),
			})
			*dst = []T{}
			return nil
		}
		if items == nil {
			items = []T{}
		}
		*dst = items
		return nil
	})
}

// wait blocks until every read finished.
func (r *viewReads) wait() error {
	return r.g.Wait()
}
