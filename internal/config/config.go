// Package config holds the audit configuration assembled from flags and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bitvcheck/internal/github"
	"bitvcheck/internal/page"
	"bitvcheck/internal/report"
	"bitvcheck/internal/rules"
)

type Config struct {
	// MAINTAINER NOTE: fields that can also come from the config file must
	// be mirrored in File and File.ApplyTo.
	Targeting Targeting
	Rules     Rules
	Browser   Browser
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// URLs are the pages to audit: http(s) URLs, file:// URLs or local paths
	// (see --url and positional arguments). Comma-separated lists accepted.
	URLs []string

	// Static parses the raw HTML without a browser (see --static). Layout,
	// computed stylesheets and screenshots are unavailable.
	Static bool
}

type Rules struct {
	// Selector is a comma-separated list of rule ids; empty runs all rules
	// (see --rules).
	Selector string

	// Set provides per-rule option overrides as ruleID:option=value
	// (repeatable; comma-separated accepted; see --set). List-valued options
	// separate items with '|'.
	Set []string

	// EvidenceDir receives screenshots (see --evidence-dir).
	EvidenceDir string

	// NoEvidence disables screenshots (see --no-evidence).
	NoEvidence bool
}

type Browser struct {
	// ChromePath overrides the browser executable (see --chrome-path).
	ChromePath string

	// Viewport is the default window size as WIDTHxHEIGHT (see --viewport).
	Viewport string

	// AcceptLanguage is sent with every request (see --accept-language).
	AcceptLanguage string
}

type Output struct {
	// ConsoleFormat controls the console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterSeverity limits console rule output to these severities
	// (see --console-filter-severity). Normalized to upper case.
	ConsoleFilterSeverity []string

	// Report writes a Markdown report covering all targets (see --report).
	Report string

	// HTML writes one HTML document per target (see --html). The path may
	// contain {slug}; it must when more than one target is audited.
	HTML string

	// NoQRCode omits the QR code from HTML documents (see --no-qrcode).
	NoQRCode bool

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. Inferred from the extension when empty.
	OutFormat string

	// Emit writes an additional structured stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool

	// GitHubIssue publishes each target's report as an issue in OWNER/REPO
	// (see --github-issue).
	GitHubIssue string

	// IssueLabels are applied to newly created issues (see --issue-label).
	IssueLabels []string
}

type Runtime struct {
	// Concurrency bounds how many targets are audited at once
	// (see --concurrency). Must be >= 1.
	Concurrency int

	// Timeout bounds loading and auditing one target (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose enables debug logging (see --verbose).
	Verbose bool

	// Watch re-runs the audit when a local target file changes (see --watch).
	Watch bool
}

// DefaultAcceptLanguage prefers German content, as audits target German
// public sector sites.
const DefaultAcceptLanguage = "de-DE,de;q=0.9,en;q=0.8"

func New() *Config {
	return &Config{
		Rules: Rules{
			EvidenceDir: "evidence",
		},
		Browser: Browser{
			Viewport:       "1920x1080",
			AcceptLanguage: DefaultAcceptLanguage,
		},
		Output: Output{
			ConsoleFormat: "text",
			IssueLabels:   []string{"accessibility"},
		},
		Runtime: Runtime{
			Concurrency: 2,
			Timeout:     10 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	c.Targeting.URLs = splitCommaList(c.Targeting.URLs)
	c.Rules.Set = splitCommaList(c.Rules.Set)
	c.Output.Emit = splitCommaList(c.Output.Emit)
	c.Output.IssueLabels = splitCommaList(c.Output.IssueLabels)

	if len(c.Targeting.URLs) == 0 {
		return errors.New("at least one target must be provided (argument or --url)")
	}
	if c.Runtime.Watch && !allLocal(c.Targeting.URLs) {
		return errors.New("--watch requires local file targets")
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	var severities []string
	for _, raw := range splitCommaList(c.Output.ConsoleFilterSeverity) {
		sev, err := rules.ParseSeverity(raw)
		if err != nil {
			return fmt.Errorf("invalid --console-filter-severity: %w", err)
		}
		severities = append(severities, string(sev))
	}
	c.Output.ConsoleFilterSeverity = severities

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", v)
		}
		c.Output.Emit[i] = v
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			case "":
				return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
			default:
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	if c.Output.HTML != "" && len(c.Targeting.URLs) > 1 && !strings.Contains(c.Output.HTML, report.SlugPlaceholder) {
		return fmt.Errorf("--html must contain %s when auditing more than one target", report.SlugPlaceholder)
	}

	if c.Output.GitHubIssue != "" {
		if _, _, err := github.ParseRepo(c.Output.GitHubIssue); err != nil {
			return fmt.Errorf("invalid --github-issue: %w", err)
		}
	}

	// Browser validation
	if _, err := ParseViewport(c.Browser.Viewport); err != nil {
		return fmt.Errorf("invalid --viewport: %w", err)
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if len(c.Rules.Set) > 0 {
		if _, err := ParseRuleOptionAssignments(c.Rules.Set); err != nil {
			return err
		}
	}

	return nil
}

// Severities returns the console severity filter. Call after Validate.
func (o Output) Severities() []rules.Severity {
	var out []rules.Severity
	for _, s := range o.ConsoleFilterSeverity {
		out = append(out, rules.Severity(s))
	}
	return out
}

// ParseViewport parses WIDTHxHEIGHT. An empty value is the default viewport.
func ParseViewport(raw string) (page.Viewport, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return page.DefaultViewport, nil
	}
	w, h, ok := strings.Cut(strings.ToLower(raw), "x")
	if !ok {
		return page.Viewport{}, fmt.Errorf("%q: expected WIDTHxHEIGHT", raw)
	}
	width, werr := strconv.Atoi(strings.TrimSpace(w))
	height, herr := strconv.Atoi(strings.TrimSpace(h))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return page.Viewport{}, fmt.Errorf("%q: expected positive WIDTHxHEIGHT", raw)
	}
	return page.Viewport{Width: width, Height: height, DeviceScaleFactor: 1}, nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func allLocal(targets []string) bool {
	for _, t := range targets {
		if _, ok := page.LocalPath(t); !ok {
			return false
		}
	}
	return true
}

// ParseRuleOptionAssignments parses values of the form
// "ruleID:option=value".
//
// Notes:
//   - Rule ids contain dots, so the rule and option are separated by ':'.
//   - This validates syntax only; the engine checks rule ids and option
//     names against the registry.
//   - Empty values are allowed ("2.4.4:phrases=").
func ParseRuleOptionAssignments(values []string) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for _, raw := range splitCommaList(values) {
		left, value, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected ruleID:option=value", raw)
		}
		ruleID, opt, ok := strings.Cut(strings.TrimSpace(left), ":")
		if !ok {
			return nil, fmt.Errorf("invalid --set entry %q: expected ruleID:option=value", raw)
		}
		ruleID = strings.TrimSpace(ruleID)
		opt = strings.TrimSpace(opt)
		if ruleID == "" || opt == "" {
			return nil, fmt.Errorf("invalid --set entry %q: expected non-empty rule and option", raw)
		}
		if _, ok := out[ruleID]; !ok {
			out[ruleID] = make(map[string]string)
		}
		out[ruleID][opt] = strings.TrimSpace(value)
	}
	return out, nil
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
