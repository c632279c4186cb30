package checks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"bitvcheck/internal/dom"
	"bitvcheck/internal/page"
	"bitvcheck/internal/rules"
)

const defaultTrackTimeout = 10 * time.Second

// AudioDescriptionRule verifies that description tracks can be loaded.
type AudioDescriptionRule struct {
	rules.Definition

	// Client is used to probe http(s) tracks. Nil uses a default client.
	Client  *http.Client
	timeout time.Duration
}

func (r *AudioDescriptionRule) Options() []rules.Option {
	return []rules.Option{
		{
			Name:        "timeout",
			Description: "Timeout for loading a single description track.",
			Default:     defaultTrackTimeout.String(),
		},
	}
}

func (r *AudioDescriptionRule) Configure(opts map[string]string) error {
	r.timeout = defaultTrackTimeout
	if v, ok := opts["timeout"]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q", v)
		}
		r.timeout = d
	}
	return nil
}

func (r *AudioDescriptionRule) Inspect(ctx context.Context, p page.Page) ([]rules.ErrorRecord, error) {
	doc, err := snapshot(ctx, p)
	if err != nil {
		return nil, err
	}

	var errs []rules.ErrorRecord
	for _, video := range doc.ByTag("video") {
		tracks := video.Find(func(n *dom.Node) bool {
			return n.Tag == "track" && strings.EqualFold(n.Attr("kind"), "descriptions")
		})
		if len(tracks) == 0 {
			continue
		}
		loaded := false
		for _, t := range tracks {
			if r.reachable(ctx, doc.URL, t.Attr("src")) {
				loaded = true
				break
			}
		}
		if !loaded {
			errs = append(errs, rules.ElementError(video, "Invalid or missing audio description"))
		}
	}
	return errs, nil
}

func (r *AudioDescriptionRule) reachable(ctx context.Context, base, src string) bool {
	src = strings.TrimSpace(src)
	if src == "" {
		return false
	}
	ref, err := url.Parse(src)
	if err != nil {
		return false
	}
	if b, err := url.Parse(base); err == nil {
		ref = b.ResolveReference(ref)
	}

	switch ref.Scheme {
	case "data":
		return true
	case "file":
		_, err := os.Stat(ref.Path)
		return err == nil
	case "http", "https":
	default:
		return false
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = defaultTrackTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return false
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func init() {
	rules.Register(&AudioDescriptionRule{Definition: rules.Definition{
		RuleID:    "1.2.5",
		Title:     "Audio Description (Prerecorded)",
		Level:     rules.SeverityMedium,
		Principle: rules.CategoryPerceivable,
		Fix:       "Make sure the `src` of every `<track kind=\"descriptions\">` points to a WebVTT file that is publicly reachable.",
		Capture:   rules.EvidenceNone,
	}})
}
