// Package github publishes audit reports as GitHub issues.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v81/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type Client struct {
	Client *github.Client
	HTTP   *http.Client
}

type options struct {
	logger  *zap.SugaredLogger
	baseURL string
}

type Option func(*options)

// WithLogger logs one debug line per API request and response.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBaseURL points the client at a GitHub Enterprise Server or a test
// server instead of api.github.com.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		o.baseURL = raw
	}
}

// loggingRoundTripper emits one line per request and response, including
// latency.
type loggingRoundTripper struct {
	base http.RoundTripper
	log  *zap.SugaredLogger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.log.Debugw("github api request", "method", req.Method, "url", req.URL.String())
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start).Truncate(time.Millisecond)
	if err != nil {
		t.log.Debugw("github api error", "duration", dur, "error", err)
	} else {
		t.log.Debugw("github api response", "status", resp.StatusCode, "duration", dur)
	}
	return resp, err
}

func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if ctx == nil {
		return nil, fmt.Errorf("github client: ctx is nil")
	}

	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}

	transport := http.DefaultTransport
	if o.logger != nil {
		transport = &loggingRoundTripper{base: transport, log: o.logger}
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	tc := &http.Client{Transport: transport, Timeout: 30 * time.Second}

	gh := github.NewClient(tc)
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github client: invalid base url: %w", err)
		}
		gh.BaseURL = u
		gh.UploadURL = u
	}

	return &Client{
		Client: gh,
		HTTP:   tc,
	}, nil
}
