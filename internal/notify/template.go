package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"bitvcheck/internal/audit"
	"bitvcheck/internal/rules"
)

// DefaultTemplate is used when a monitor does not configure its own.
const DefaultTemplate = `{{ .Emoji }} {{ .URL }} scored {{ printf "%.1f" .Score }}% ({{ .Status }}), below {{ printf "%.0f" .Threshold }}%.
{{ .TotalErrors }} {{ if eq .TotalErrors 1 }}error{{ else }}errors{{ end }}: {{ .Critical }} critical, {{ .High }} high, {{ .Medium }} medium, {{ .Low }} low.
{{- if .FailedRules }}
Checks that could not run: {{ join ", " .FailedRules }}.
{{- end }}`

// TemplateData holds all data available to notification templates.
type TemplateData struct {
	URL         string
	Score       float64
	Status      string
	Emoji       string
	Threshold   float64
	TotalErrors int
	Critical    int
	High        int
	Medium      int
	Low         int
	FailedRules []string
	Generated   string
}

// BuildTemplateData flattens a run result for templates.
func BuildTemplateData(res *audit.RunResult, threshold float64) TemplateData {
	counts := res.ErrorCountsBySeverity
	return TemplateData{
		URL:         res.URL,
		Score:       res.Score,
		Status:      res.ComplianceLabel,
		Emoji:       statusEmoji(res.ComplianceLabel),
		Threshold:   threshold,
		TotalErrors: res.TotalErrors,
		Critical:    counts[rules.SeverityCritical],
		High:        counts[rules.SeverityHigh],
		Medium:      counts[rules.SeverityMedium],
		Low:         counts[rules.SeverityLow],
		FailedRules: append([]string(nil), res.FailedRules...),
		Generated:   res.FinishedAt.Format("2006-01-02 15:04"),
	}
}

func statusEmoji(label string) string {
	switch label {
	case audit.LabelNotCompliant:
		return "\U0001f534" // 🔴
	case audit.LabelPartiallyCompliant:
		return "\U0001f7e0" // 🟠
	case audit.LabelSubstantiallyCompliant:
		return "\U0001f7e1" // 🟡
	case audit.LabelLargelyCompliant:
		return "\U0001f7e2" // 🟢
	default:
		return "\u2753" // ❓
	}
}

func parse(tmplStr string) (*template.Template, error) {
	if tmplStr == "" {
		tmplStr = DefaultTemplate
	}
	t, err := template.New("notify").Funcs(sprig.TxtFuncMap()).Parse(tmplStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return t, nil
}

// Render executes a Go text/template string with Sprig functions. An empty
// template selects DefaultTemplate.
func Render(tmplStr string, data TemplateData) (string, error) {
	t, err := parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
