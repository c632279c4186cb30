package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

type AuthTokenSource string

const (
	AuthTokenSourceExplicit AuthTokenSource = "explicit"
	AuthTokenSourceEnv      AuthTokenSource = "env:GITHUB_TOKEN"
	AuthTokenSourceGHEnv    AuthTokenSource = "env:GH_TOKEN"
	AuthTokenSourceGitHubCL AuthTokenSource = "gh"
)

// ResolveAuthToken finds a token for publishing issues.
//
// Precedence:
//  1. provided (if non-empty)
//  2. GITHUB_TOKEN, then GH_TOKEN
//  3. GitHub CLI: `gh auth token -h github.com`
//
// An empty token without error means none was found. The token is never
// logged.
func ResolveAuthToken(ctx context.Context, provided string) (token string, source AuthTokenSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, AuthTokenSourceExplicit, nil
	}

	for _, env := range []struct {
		name   string
		source AuthTokenSource
	}{
		{"GITHUB_TOKEN", AuthTokenSourceEnv},
		{"GH_TOKEN", AuthTokenSourceGHEnv},
	} {
		if v := strings.TrimSpace(os.Getenv(env.name)); v != "" {
			return v, env.source, nil
		}
	}

	tok, ok, err := tokenFromGitHubCLI(ctx)
	if err != nil {
		return "", "", err
	}
	if ok {
		return tok, AuthTokenSourceGitHubCL, nil
	}
	return "", "", nil
}

func tokenFromGitHubCLI(ctx context.Context) (token string, ok bool, err error) {
	if _, lookErr := exec.LookPath("gh"); lookErr != nil {
		return "", false, nil
	}

	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, "gh", "auth", "token", "-h", "github.com")
	env := os.Environ()
	filtered := env[:0]
	for _, entry := range env {
		if !strings.HasPrefix(entry, "GH_PAGER=") {
			filtered = append(filtered, entry)
		}
	}
	cmd.Env = append(filtered, "GH_PAGER=cat")
	out, runErr := cmd.Output()
	if runErr != nil {
		if cmdCtx.Err() != nil {
			return "", false, cmdCtx.Err()
		}
		// Not logged in; gh output is not surfaced.
		return "", false, nil
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", false, nil
	}
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", false, errors.New("invalid token returned by gh: contains whitespace")
	}
	return tok, true, nil
}
