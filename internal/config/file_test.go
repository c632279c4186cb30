package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"bitvcheck/internal/flags"
)

const sampleFile = `
targets:
  - ${TARGET_URL}
  - https://example.org/contact
static: true
rules: "1.1.1,2.4.4"
set:
  - "2.4.4:phrases=weiter|mehr"
browser:
  viewport: 1280x720
  acceptLanguage: en
output:
  report: audit.md
  html: "out/{slug}.html"
  githubIssue: acme/site
  issueLabels: [a11y, bitv]
runtime:
  concurrency: 4
  timeout: 90s
monitor:
  schedule: "@every 1h"
  threshold: 65
  notify:
    - "generic+https://hooks.example.org/audit"
`

func TestParseFile(t *testing.T) {
	t.Setenv("TARGET_URL", "https://example.org/")

	f, err := ParseFile([]byte(sampleFile))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if want := []string{"https://example.org/", "https://example.org/contact"}; !reflect.DeepEqual(f.Targets, want) {
		t.Errorf("targets = %v", f.Targets)
	}
	if f.Static == nil || !*f.Static {
		t.Errorf("static = %v", f.Static)
	}
	if f.Runtime.Timeout != 90*time.Second || f.Runtime.Concurrency != 4 {
		t.Errorf("runtime = %+v", f.Runtime)
	}
	if f.Monitor == nil || f.Monitor.Schedule != "@every 1h" || f.Monitor.Threshold != 65 || len(f.Monitor.Notify) != 1 {
		t.Errorf("monitor = %+v", f.Monitor)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"unknown key", "targets: [a]\ncolour: red\n", "field colour not found"},
		{"multiple documents", "targets: [a]\n---\ntargets: [b]\n", "multiple YAML documents"},
		{"monitor without schedule", "monitor:\n  threshold: 50\n", "Schedule"},
		{"threshold out of range", "monitor:\n  schedule: '@daily'\n  threshold: 120\n", "Threshold"},
		{"negative concurrency", "runtime:\n  concurrency: -1\n", "Concurrency"},
		{"empty target", "targets: ['']\n", "Targets"},
		{"bad out format", "output:\n  outFormat: xml\n", "OutFormat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseFile_Empty(t *testing.T) {
	f, err := ParseFile(nil)
	if err != nil {
		t.Fatalf("ParseFile(empty): %v", err)
	}
	if f.Monitor != nil || len(f.Targets) != 0 {
		t.Errorf("f = %+v", f)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitvcheck.yaml")
	if err := os.WriteFile(path, []byte("targets: [page.html]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f.Targets, []string{"page.html"}) {
		t.Errorf("targets = %v", f.Targets)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyTo(t *testing.T) {
	t.Setenv("TARGET_URL", "https://example.org/")
	f, err := ParseFile([]byte(sampleFile))
	if err != nil {
		t.Fatal(err)
	}

	cfg := New()
	cfg.Rules.Set = []string{"2.4.4:phrases=hier"}
	cfg.Runtime.Concurrency = 8
	explicit := map[string]bool{flags.FlagConcurrency: true}
	f.ApplyTo(cfg, func(name string) bool { return explicit[name] })

	if len(cfg.Targeting.URLs) != 2 || !cfg.Targeting.Static || cfg.Rules.Selector != "1.1.1,2.4.4" {
		t.Errorf("targeting/rules = %+v %+v", cfg.Targeting, cfg.Rules)
	}
	if want := []string{"2.4.4:phrases=weiter|mehr", "2.4.4:phrases=hier"}; !reflect.DeepEqual(cfg.Rules.Set, want) {
		t.Errorf("set = %v, want file entries first", cfg.Rules.Set)
	}
	if cfg.Browser.Viewport != "1280x720" || cfg.Browser.AcceptLanguage != "en" || cfg.Browser.ChromePath != "" {
		t.Errorf("browser = %+v", cfg.Browser)
	}
	if cfg.Output.Report != "audit.md" || cfg.Output.GitHubIssue != "acme/site" || !reflect.DeepEqual(cfg.Output.IssueLabels, []string{"a11y", "bitv"}) {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Runtime.Concurrency != 8 {
		t.Errorf("explicit --concurrency overridden: %d", cfg.Runtime.Concurrency)
	}
	if cfg.Runtime.Timeout != 90*time.Second {
		t.Errorf("timeout = %v", cfg.Runtime.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate after ApplyTo: %v", err)
	}

	// Later --set entries win when options are merged in order.
	opts, err := ParseRuleOptionAssignments(cfg.Rules.Set)
	if err != nil {
		t.Fatal(err)
	}
	if opts["2.4.4"]["phrases"] != "hier" {
		t.Errorf("phrases = %q", opts["2.4.4"]["phrases"])
	}
}

func TestApplyTo_CommandLineTargetsWin(t *testing.T) {
	f := &File{Targets: []string{"https://example.org/"}}
	cfg := New()
	cfg.Targeting.URLs = []string{"local.html"}
	f.ApplyTo(cfg, nil)
	if !reflect.DeepEqual(cfg.Targeting.URLs, []string{"local.html"}) {
		t.Errorf("urls = %v", cfg.Targeting.URLs)
	}
}
