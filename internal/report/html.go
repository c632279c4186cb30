package report

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/skip2/go-qrcode"
	"github.com/yuin/goldmark"

	"bitvcheck/internal/audit"
)

// SlugPlaceholder in an HTML path is replaced by Slug of the target URL.
const SlugPlaceholder = "{slug}"

//go:embed templates/report.html.tmpl
var templates embed.FS

// HTMLOptions controls RenderHTML.
type HTMLOptions struct {
	Generated time.Time
	// Dir is the directory the document is written to. Evidence paths are
	// linked relative to it when set.
	Dir string
	// NoQRCode omits the QR code linking to the audited page.
	NoQRCode bool
}

type htmlData struct {
	Record      Record
	Rules       []audit.RuleResult
	Partial     bool
	FailedRules []string
	QRCode      template.URL
}

// RenderHTML writes a standalone HTML document for one audit pass.
func RenderHTML(w io.Writer, res *audit.RunResult, opts HTMLOptions) error {
	generated := opts.Generated
	if generated.IsZero() {
		generated = res.FinishedAt
	}

	funcs := sprig.FuncMap()
	funcs["markdown"] = renderMarkdownHTML
	funcs["evidence"] = func(path string) string {
		if opts.Dir == "" {
			return filepath.ToSlash(path)
		}
		rel, err := filepath.Rel(opts.Dir, path)
		if err != nil {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(rel)
	}

	t, err := template.New("report.html.tmpl").Funcs(funcs).ParseFS(templates, "templates/report.html.tmpl")
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	data := htmlData{
		Record:      BuildRecord(res, generated),
		Rules:       res.Rules(),
		Partial:     res.Partial(),
		FailedRules: res.FailedRules,
	}
	if !opts.NoQRCode && res.URL != "" {
		data.QRCode = qrCodeDataURL(res.URL)
	}

	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// renderMarkdownHTML converts a fix suggestion to HTML. Fix suggestions are
// part of the rule definitions, never page content.
func renderMarkdownHTML(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func qrCodeDataURL(content string) template.URL {
	png, err := qrcode.Encode(content, qrcode.Medium, 128)
	if err != nil {
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

// Slug turns a target URL into a file-name-safe name, e.g.
// "https://example.org/about/team" becomes "example-org-about-team".
func Slug(target string) string {
	name := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		name = u.Host + u.Path
	} else if err == nil && u.Scheme == "file" {
		name = filepath.Base(u.Path)
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "page"
	}
	return slug
}
