package github

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v81/github"
)

// maxIssueBody is the GitHub limit for an issue body in characters.
const maxIssueBody = 65536

// IssueRef identifies a published issue.
type IssueRef struct {
	Number  int
	URL     string
	Created bool
}

// ParseRepo splits "owner/repo".
func ParseRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected OWNER/REPO", s)
	}
	return owner, repo, nil
}

// PublishIssue updates the open issue titled title, or creates it. Pull
// requests are never matched. Labels are only applied on creation.
func (c *Client) PublishIssue(ctx context.Context, owner, repo, title, body string, labels []string) (*IssueRef, error) {
	body = truncateBody(body)

	existing, err := c.findOpenIssue(ctx, owner, repo, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		issue, _, err := c.Client.Issues.Edit(ctx, owner, repo, existing.GetNumber(), &github.IssueRequest{Body: github.Ptr(body)})
		if err != nil {
			return nil, fmt.Errorf("update issue #%d: %w", existing.GetNumber(), err)
		}
		return &IssueRef{Number: issue.GetNumber(), URL: issue.GetHTMLURL()}, nil
	}

	req := &github.IssueRequest{Title: github.Ptr(title), Body: github.Ptr(body)}
	if len(labels) > 0 {
		req.Labels = &labels
	}
	issue, _, err := c.Client.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &IssueRef{Number: issue.GetNumber(), URL: issue.GetHTMLURL(), Created: true}, nil
}

func (c *Client) findOpenIssue(ctx context.Context, owner, repo, title string) (*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := c.Client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues of %s/%s: %w", owner, repo, err)
		}
		for _, issue := range issues {
			if !issue.IsPullRequest() && issue.GetTitle() == title {
				return issue, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return nil, nil
		}
		opts.ListOptions.Page = resp.NextPage
	}
}

func truncateBody(body string) string {
	const marker = "\n\n_Report truncated._\n"
	if len(body) <= maxIssueBody {
		return body
	}
	cut := maxIssueBody - len(marker)
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + marker
}
