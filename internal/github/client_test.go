package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ctx is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "", WithBaseURL("://bad")); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestNewClient_LogsAndAuthHeader(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	for _, tc := range []struct {
		name     string
		token    string
		wantAuth bool
	}{
		{"unauthenticated", "", false},
		{"authenticated", "test-token", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			gotAuth = ""
			core, logs := observer.New(zapcore.DebugLevel)
			c, err := NewClient(ctx, tc.token, WithLogger(zap.New(core).Sugar()), WithBaseURL(server.URL))
			if err != nil {
				t.Fatalf("NewClient failed: %v", err)
			}
			req, err := c.Client.NewRequest("GET", "rate_limit", nil)
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			if _, err := c.Client.Do(ctx, req, nil); err != nil {
				t.Fatalf("Do: %v", err)
			}
			if logs.FilterMessage("github api request").Len() != 1 || logs.FilterMessage("github api response").Len() != 1 {
				t.Fatalf("expected request and response log lines, got %v", logs.All())
			}
			if tc.wantAuth && !strings.Contains(gotAuth, "test-token") {
				t.Fatalf("expected Authorization header to contain token, got %q", gotAuth)
			}
			if !tc.wantAuth && gotAuth != "" {
				t.Fatalf("expected no Authorization header, got %q", gotAuth)
			}
		})
	}
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in          string
		owner, repo string
		wantErr     bool
	}{
		{"acme/site", "acme", "site", false},
		{" acme/site ", "acme", "site", false},
		{"acme", "", "", true},
		{"acme/", "", "", true},
		{"/site", "", "", true},
		{"acme/site/extra", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRepo(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepo(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepo(%q) = %q, %q", tt.in, owner, repo)
		}
	}
}

// issueServer fakes the issue endpoints of one repository.
type issueServer struct {
	mu      sync.Mutex
	issues  []map[string]any
	created []map[string]any
	edited  map[int]map[string]any
}

func (s *issueServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/site/issues", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r.URL.Query().Get("state") != "open" {
			t.Errorf("state = %q, want open", r.URL.Query().Get("state"))
		}
		// Two pages: the first issue alone, then the rest.
		page := s.issues
		if r.URL.Query().Get("page") == "" && len(s.issues) > 1 {
			page = s.issues[:1]
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/acme/site/issues?page=2&state=open>; rel="next"`, r.Host))
		} else if r.URL.Query().Get("page") == "2" {
			page = s.issues[1:]
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("POST /repos/acme/site/issues", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var body map[string]any
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		s.created = append(s.created, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number": 42, "html_url": "https://github.com/acme/site/issues/42"}`))
	})
	mux.HandleFunc("PATCH /repos/acme/site/issues/{number}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var body map[string]any
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		var n int
		_, _ = fmt.Sscanf(r.PathValue("number"), "%d", &n)
		s.edited[n] = body
		_, _ = fmt.Fprintf(w, `{"number": %d, "html_url": "https://github.com/acme/site/issues/%d"}`, n, n)
	})
	return mux
}

func newIssueTestClient(t *testing.T, s *issueServer) *Client {
	t.Helper()
	srv := httptest.NewServer(s.handler(t))
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), "token", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPublishIssue_CreatesWhenMissing(t *testing.T) {
	s := &issueServer{
		issues: []map[string]any{{"number": 1, "title": "Something else"}},
		edited: map[int]map[string]any{},
	}
	c := newIssueTestClient(t, s)

	ref, err := c.PublishIssue(context.Background(), "acme", "site", "Accessibility audit: https://example.org/", "body", []string{"accessibility"})
	if err != nil {
		t.Fatalf("PublishIssue: %v", err)
	}
	if !ref.Created || ref.Number != 42 || ref.URL != "https://github.com/acme/site/issues/42" {
		t.Fatalf("ref = %+v", ref)
	}
	if len(s.created) != 1 {
		t.Fatalf("created %d issues", len(s.created))
	}
	if s.created[0]["title"] != "Accessibility audit: https://example.org/" || s.created[0]["body"] != "body" {
		t.Errorf("created = %v", s.created[0])
	}
	if labels, _ := s.created[0]["labels"].([]any); len(labels) != 1 || labels[0] != "accessibility" {
		t.Errorf("labels = %v", s.created[0]["labels"])
	}
}

func TestPublishIssue_UpdatesExistingOnLaterPage(t *testing.T) {
	title := "Accessibility audit: https://example.org/"
	s := &issueServer{
		issues: []map[string]any{
			{"number": 1, "title": "Something else"},
			{"number": 5, "title": title, "pull_request": map[string]any{"url": "x"}},
			{"number": 7, "title": title},
		},
		edited: map[int]map[string]any{},
	}
	c := newIssueTestClient(t, s)

	ref, err := c.PublishIssue(context.Background(), "acme", "site", title, "updated body", nil)
	if err != nil {
		t.Fatalf("PublishIssue: %v", err)
	}
	if ref.Created || ref.Number != 7 {
		t.Fatalf("ref = %+v, want update of #7", ref)
	}
	if len(s.created) != 0 {
		t.Errorf("unexpected create: %v", s.created)
	}
	if s.edited[7]["body"] != "updated body" {
		t.Errorf("edited = %v", s.edited)
	}
	if _, ok := s.edited[7]["title"]; ok {
		t.Errorf("title should not be sent on update: %v", s.edited[7])
	}
}

func TestTruncateBody(t *testing.T) {
	short := "short"
	if got := truncateBody(short); got != short {
		t.Errorf("short body changed: %q", got)
	}
	long := strings.Repeat("ä", maxIssueBody)
	got := truncateBody(long)
	if len(got) > maxIssueBody {
		t.Errorf("len = %d, want <= %d", len(got), maxIssueBody)
	}
	if !strings.HasSuffix(got, "_Report truncated._\n") {
		t.Errorf("missing truncation marker")
	}
	if !strings.HasPrefix(got, "ää") || !utf8.ValidString(got) {
		t.Errorf("body split inside a rune")
	}
}
