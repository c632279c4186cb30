package rules

import (
	"context"

	"bitvcheck/internal/page"
)

// CaptureFunc attaches evidence to records using the page as it is now.
type CaptureFunc func(ctx context.Context, p page.Page, records []ErrorRecord) []ErrorRecord

type captureKey struct{}

// WithCapture returns a context through which a rule can capture evidence
// before it restores page state.
func WithCapture(ctx context.Context, fn CaptureFunc) context.Context {
	return context.WithValue(ctx, captureKey{}, fn)
}

// CaptureNow lets rules that magnify the viewport or inject styles take
// their screenshots before the page is restored. Without a CaptureFunc in
// ctx the records are returned unchanged and the runner captures later.
func CaptureNow(ctx context.Context, p page.Page, records []ErrorRecord) []ErrorRecord {
	fn, ok := ctx.Value(captureKey{}).(CaptureFunc)
	if !ok || fn == nil {
		return records
	}
	return fn(ctx, p, records)
}
