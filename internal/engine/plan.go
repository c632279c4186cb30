package engine

import (
	"fmt"
	"strings"

	"bitvcheck/internal/rules"
)

// AuditPlan lists the targets of a run and the rules each one gets, in
// execution order.
type AuditPlan struct {
	Targets []string
	Rules   []rules.Rule

	seen map[string]struct{}
}

func NewAuditPlan(selected []rules.Rule) *AuditPlan {
	return &AuditPlan{
		Rules: selected,
		seen:  make(map[string]struct{}),
	}
}

// AddTarget appends target unless it is already planned.
func (p *AuditPlan) AddTarget(target string) error {
	if p == nil {
		return fmt.Errorf("audit plan is nil")
	}
	if p.seen == nil {
		return fmt.Errorf("audit plan is not initialized; use NewAuditPlan")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("empty target")
	}
	if _, ok := p.seen[target]; ok {
		return nil
	}
	p.seen[target] = struct{}{}
	p.Targets = append(p.Targets, target)
	return nil
}
