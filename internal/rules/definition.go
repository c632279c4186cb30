package rules

// Definition holds the immutable metadata of a rule. Rules embed it and
// implement Inspect.
type Definition struct {
	RuleID    string
	Title     string
	Level     Severity
	Principle Category
	Fixable   bool
	Fix       string
	Capture   EvidenceMode
}

func (d Definition) ID() string                { return d.RuleID }
func (d Definition) Description() string       { return d.Title }
func (d Definition) Severity() Severity        { return d.Level }
func (d Definition) Category() Category        { return d.Principle }
func (d Definition) FixableByAutomation() bool { return d.Fixable }
func (d Definition) FixSuggestion() string     { return d.Fix }

func (d Definition) Evidence() EvidenceMode {
	if d.Capture == "" {
		return EvidenceNone
	}
	return d.Capture
}
