package page

import (
	"context"
	"errors"
	"fmt"
)

// WithViewport resizes p to vp for the duration of fn and restores the
// previous viewport afterwards, even when fn fails.
func WithViewport(ctx context.Context, p Page, vp Viewport, fn func() error) (err error) {
	prev := p.Viewport()
	if err := p.SetViewport(ctx, vp); err != nil {
		return fmt.Errorf("set viewport %s: %w", vp, err)
	}
	defer func() {
		if rerr := p.SetViewport(ctx, prev); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restore viewport %s: %w", prev, rerr))
		}
	}()
	return fn()
}

// WithStyle injects css for the duration of fn and removes it afterwards.
func WithStyle(ctx context.Context, p Page, css string, fn func() error) (err error) {
	remove, err := p.InjectStyle(ctx, css)
	if err != nil {
		return fmt.Errorf("inject style: %w", err)
	}
	defer func() {
		if rerr := remove(ctx); rerr != nil {
			err = errors.Join(err, fmt.Errorf("remove style: %w", rerr))
		}
	}()
	return fn()
}
