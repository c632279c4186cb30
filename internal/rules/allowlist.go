package rules

import (
	"regexp"
	"strings"
)

// AllowList suppresses known and accepted violations. Records are matched
// by selector or by message against glob patterns.
type AllowList struct {
	Selectors []string
	Messages  []string
}

// Options returns the standard configuration options for allow-listing.
func (a *AllowList) Options() []Option {
	return []Option{
		{
			Name:        "allow.selectors",
			Description: "List of glob patterns separated by '|'. Records whose selector matches are dropped (e.g. #cookie-banner|img[src=\"/ads/*\"]).",
		},
		{
			Name:        "allow.messages",
			Description: "List of glob patterns separated by '|'. Records whose message matches are dropped (e.g. Contrast too low: 4.3*).",
		},
	}
}

// Configure parses the configuration options to populate the AllowList.
func (a *AllowList) Configure(opts map[string]string) {
	a.Selectors = SplitList(opts["allow.selectors"])
	a.Messages = SplitList(opts["allow.messages"])
}

// IsAllowed reports whether the record is allow-listed and by which option.
func (a *AllowList) IsAllowed(rec ErrorRecord) (bool, string) {
	for _, pattern := range a.Selectors {
		if globMatch(pattern, rec.Selector) {
			return true, "allow.selectors"
		}
	}
	for _, pattern := range a.Messages {
		if globMatch(pattern, rec.Message) {
			return true, "allow.messages"
		}
	}
	return false, ""
}

// Filter returns the records that are not allow-listed.
func (a *AllowList) Filter(records []ErrorRecord) []ErrorRecord {
	if len(a.Selectors) == 0 && len(a.Messages) == 0 {
		return records
	}
	kept := records[:0:0]
	for _, rec := range records {
		if allowed, _ := a.IsAllowed(rec); !allowed {
			kept = append(kept, rec)
		}
	}
	return kept
}

// SplitList splits an option value on '|' and drops empty entries.
func SplitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// globMatch matches s against a pattern in which '*' stands for any run of
// characters. Everything else, including brackets, is literal.
func globMatch(pattern, s string) bool {
	expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
