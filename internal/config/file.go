package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"bitvcheck/internal/flags"
)

// File is the YAML configuration file. ${VAR} references are expanded from
// the environment before parsing, e.g. targets: ["${TARGET_URL}"].
type File struct {
	Targets []string `yaml:"targets" validate:"dive,required"`
	Static  *bool    `yaml:"static"`
	Rules   string   `yaml:"rules"`
	Set     []string `yaml:"set" validate:"dive,required"`

	Browser *FileBrowser `yaml:"browser" validate:"omitempty"`
	Output  *FileOutput  `yaml:"output" validate:"omitempty"`
	Runtime *FileRuntime `yaml:"runtime" validate:"omitempty"`
	Monitor *Monitor     `yaml:"monitor" validate:"omitempty"`
}

type FileBrowser struct {
	ChromePath     string `yaml:"chromePath"`
	Viewport       string `yaml:"viewport"`
	AcceptLanguage string `yaml:"acceptLanguage"`
}

type FileOutput struct {
	EvidenceDir string   `yaml:"evidenceDir"`
	NoEvidence  *bool    `yaml:"noEvidence"`
	Report      string   `yaml:"report"`
	HTML        string   `yaml:"html"`
	Out         string   `yaml:"out"`
	OutFormat   string   `yaml:"outFormat" validate:"omitempty,oneof=json ndjson"`
	GitHubIssue string   `yaml:"githubIssue"`
	IssueLabels []string `yaml:"issueLabels"`
}

type FileRuntime struct {
	Concurrency int           `yaml:"concurrency" validate:"omitempty,gte=1"`
	Timeout     time.Duration `yaml:"timeout" validate:"omitempty,gt=0"`
}

// Monitor configures scheduled audits.
type Monitor struct {
	// Schedule is a cron expression or descriptor such as "@every 1h".
	Schedule string `yaml:"schedule" validate:"required"`
	// Threshold notifies when a target scores below it.
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=100"`
	// Notify lists shoutrrr service URLs.
	Notify []string `yaml:"notify" validate:"dive,required"`
	// Template overrides the notification message template.
	Template string `yaml:"template"`
	// RunOnStart audits once before the first scheduled run.
	RunOnStart bool `yaml:"runOnStart"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads, expands and validates a config file. Unknown keys are
// rejected.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseFile(data)
}

// ParseFile is LoadFile without the file system.
func ParseFile(data []byte) (*File, error) {
	data, err := envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("expanding env vars: %w", err)
	}

	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, fmt.Errorf("parsing config: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &f, nil
}

// ApplyTo copies file values into cfg. Values of flags for which explicit
// reports true were set on the command line and win over the file.
func (f *File) ApplyTo(cfg *Config, explicit func(flag string) bool) {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	setString := func(flag string, dst *string, v string) {
		if v != "" && !explicit(flag) {
			*dst = v
		}
	}
	setBool := func(flag string, dst *bool, v *bool) {
		if v != nil && !explicit(flag) {
			*dst = *v
		}
	}

	if len(f.Targets) > 0 && !explicit(flags.FlagURL) && len(cfg.Targeting.URLs) == 0 {
		cfg.Targeting.URLs = append([]string(nil), f.Targets...)
	}
	setBool(flags.FlagStatic, &cfg.Targeting.Static, f.Static)
	setString(flags.FlagRules, &cfg.Rules.Selector, f.Rules)
	// File options come first so --set entries override them.
	if len(f.Set) > 0 {
		cfg.Rules.Set = append(append([]string(nil), f.Set...), cfg.Rules.Set...)
	}

	if b := f.Browser; b != nil {
		setString(flags.FlagChromePath, &cfg.Browser.ChromePath, b.ChromePath)
		setString(flags.FlagViewport, &cfg.Browser.Viewport, b.Viewport)
		setString(flags.FlagAcceptLanguage, &cfg.Browser.AcceptLanguage, b.AcceptLanguage)
	}

	if o := f.Output; o != nil {
		setString(flags.FlagEvidenceDir, &cfg.Rules.EvidenceDir, o.EvidenceDir)
		setBool(flags.FlagNoEvidence, &cfg.Rules.NoEvidence, o.NoEvidence)
		setString(flags.FlagReport, &cfg.Output.Report, o.Report)
		setString(flags.FlagHTML, &cfg.Output.HTML, o.HTML)
		setString(flags.FlagOut, &cfg.Output.Out, o.Out)
		setString(flags.FlagOutFormat, &cfg.Output.OutFormat, o.OutFormat)
		setString(flags.FlagGitHubIssue, &cfg.Output.GitHubIssue, o.GitHubIssue)
		if len(o.IssueLabels) > 0 && !explicit(flags.FlagIssueLabel) {
			cfg.Output.IssueLabels = append([]string(nil), o.IssueLabels...)
		}
	}

	if r := f.Runtime; r != nil {
		if r.Concurrency > 0 && !explicit(flags.FlagConcurrency) {
			cfg.Runtime.Concurrency = r.Concurrency
		}
		if r.Timeout > 0 && !explicit(flags.FlagTimeout) {
			cfg.Runtime.Timeout = r.Timeout
		}
	}
}
