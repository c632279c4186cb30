package output

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/github"
	"bitvcheck/internal/report"
)

// IssuePublisher creates or updates an issue by title.
type IssuePublisher interface {
	PublishIssue(ctx context.Context, owner, repo, title, body string, labels []string) (*github.IssueRef, error)
}

// IssueSink publishes the Markdown report of each target as a GitHub issue
// titled "Accessibility audit: <url>". Re-running an audit updates the
// open issue instead of opening a new one.
type IssueSink struct {
	ctx       context.Context
	publisher IssuePublisher
	owner     string
	repo      string
	labels    []string

	mu        sync.Mutex
	published []github.IssueRef
	now       func() time.Time
}

func NewIssueSink(ctx context.Context, p IssuePublisher, ownerRepo string, labels []string) (*IssueSink, error) {
	if p == nil {
		return nil, fmt.Errorf("issue publisher must not be nil")
	}
	owner, repo, err := github.ParseRepo(ownerRepo)
	if err != nil {
		return nil, err
	}
	return &IssueSink{ctx: ctx, publisher: p, owner: owner, repo: repo, labels: labels, now: time.Now}, nil
}

// IssueTitle is the title used to find the issue of target on later runs.
func IssueTitle(target string) string {
	return "Accessibility audit: " + target
}

func (s *IssueSink) Write(v any) error {
	res, ok := v.(*audit.RunResult)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	body := report.RenderMarkdown([]*audit.RunResult{res}, s.now())
	ref, err := s.publisher.PublishIssue(s.ctx, s.owner, s.repo, IssueTitle(res.URL), body, s.labels)
	if err != nil {
		return fmt.Errorf("publish issue for %s: %w", res.URL, err)
	}
	s.published = append(s.published, *ref)
	return nil
}

// Published returns the issues created or updated so far.
func (s *IssueSink) Published() []github.IssueRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]github.IssueRef(nil), s.published...)
}

func (s *IssueSink) Close() error { return nil }
