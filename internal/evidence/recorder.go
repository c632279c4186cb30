package evidence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

// DefaultVisibleTimeout bounds the wait for an element before capture.
const DefaultVisibleTimeout = 5 * time.Second

// Recorder attaches screenshots to error records. Every failure is soft:
// the record is kept without an evidence path.
type Recorder struct {
	Store          *Store
	VisibleTimeout time.Duration
	Logger         *zap.SugaredLogger
}

// Annotate returns a copy of records with EvidencePath set where a
// screenshot could be captured according to mode. A nil Recorder returns
// records unchanged.
func (r *Recorder) Annotate(ctx context.Context, p page.Page, ruleID string, mode rules.EvidenceMode, records []rules.ErrorRecord) []rules.ErrorRecord {
	if r == nil || r.Store == nil || mode == rules.EvidenceNone || len(records) == 0 {
		return records
	}
	out := make([]rules.ErrorRecord, len(records))
	copy(out, records)

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		var path string
		switch mode {
		case rules.EvidenceElement:
			path = r.captureElement(ctx, p, ruleID, out[i].Selector, true)
		case rules.EvidenceElementOnly:
			path = r.captureElement(ctx, p, ruleID, out[i].Selector, false)
		case rules.EvidenceFullPage:
			path = r.captureFull(ctx, p, ruleID, false)
		case rules.EvidenceFirstFullPage:
			if i == 0 {
				path = r.captureFull(ctx, p, ruleID, false)
			}
		}
		out[i].EvidencePath = path
	}
	return out
}

func (r *Recorder) captureElement(ctx context.Context, p page.Page, ruleID, selector string, fallback bool) string {
	if selector != "" && selector != "body" {
		if err := p.WaitVisible(ctx, selector, r.timeout()); err != nil {
			r.logger().Debugw("element not visible before capture", "rule", ruleID, "selector", selector, "error", err)
			if !fallback {
				return ""
			}
		}
		box, err := p.BoundingBox(ctx, selector)
		if err != nil {
			r.logger().Debugw("bounding box unavailable", "rule", ruleID, "selector", selector, "error", err)
		}
		if box != nil && box.Valid() {
			png, err := p.Screenshot(ctx, box)
			if err == nil {
				return r.save(ruleID, false, png)
			}
			if errors.Is(err, page.ErrUnsupported) {
				return ""
			}
			r.logger().Warnw("element screenshot failed", "rule", ruleID, "selector", selector, "error", err)
		}
	}
	if !fallback {
		return ""
	}
	return r.captureFull(ctx, p, ruleID, true)
}

func (r *Recorder) captureFull(ctx context.Context, p page.Page, ruleID string, fallback bool) string {
	png, err := p.Screenshot(ctx, nil)
	if err != nil {
		if !errors.Is(err, page.ErrUnsupported) {
			r.logger().Warnw("full-page screenshot failed", "rule", ruleID, "error", err)
		}
		return ""
	}
	return r.save(ruleID, fallback, png)
}

func (r *Recorder) save(ruleID string, fallback bool, png []byte) string {
	path, err := r.Store.Save(ruleID, fallback, png)
	if err != nil {
		r.logger().Warnw("storing evidence failed", "rule", ruleID, "error", err)
		return ""
	}
	return path
}

func (r *Recorder) timeout() time.Duration {
	if r.VisibleTimeout > 0 {
		return r.VisibleTimeout
	}
	return DefaultVisibleTimeout
}

func (r *Recorder) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}
