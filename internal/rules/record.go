package rules

import "bitvcheck/internal/dom"

// ErrorRecord describes one violation. Severity and category belong to the
// owning rule and are never set per record.
type ErrorRecord struct {
	Message             string `json:"message"`
	Selector            string `json:"selector,omitempty"`
	ElementSnippet      string `json:"elementSnippet,omitempty"`
	Text                string `json:"text,omitempty"`
	ForegroundColor     string `json:"foregroundColor,omitempty"`
	BackgroundColor     string `json:"backgroundColor,omitempty"`
	EvidencePath        string `json:"evidencePath,omitempty"`
	ManualCheckRequired string `json:"manualCheckRequired,omitempty"`
}

// ElementError returns a record locating the violation at n.
func ElementError(n *dom.Node, message string) ErrorRecord {
	return ErrorRecord{
		Message:        message,
		Selector:       n.Selector(),
		ElementSnippet: n.Snippet,
	}
}

// PageError returns a record for a page-level violation.
func PageError(message string) ErrorRecord {
	return ErrorRecord{Message: message, Selector: "body"}
}
