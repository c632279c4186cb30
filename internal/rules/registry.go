package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	registry = make(map[string]Rule)
	mu       sync.RWMutex
)

// Register adds r to the registry. It panics on duplicate ids and on
// severities, categories or evidence modes outside their closed sets.
func Register(r Rule) {
	mu.Lock()
	defer mu.Unlock()
	if r.ID() == "" {
		panic("rule registered without id")
	}
	if _, exists := registry[r.ID()]; exists {
		panic(fmt.Sprintf("rule %s already registered", r.ID()))
	}
	if !r.Severity().Valid() {
		panic(fmt.Sprintf("rule %s has unknown severity %q", r.ID(), r.Severity()))
	}
	if !r.Category().Valid() {
		panic(fmt.Sprintf("rule %s has unknown category %q", r.ID(), r.Category()))
	}
	if !r.Evidence().Valid() {
		panic(fmt.Sprintf("rule %s has unknown evidence mode %q", r.ID(), r.Evidence()))
	}
	// Wrap the rule with AllowListWrapper to provide automatic allowlist support
	registry[r.ID()] = &AllowListWrapper{Rule: r}
}

// List returns every rule ordered by success criterion number.
func List() []Rule {
	mu.RLock()
	defer mu.RUnlock()
	return list()
}

func list() []Rule {
	rules := make([]Rule, 0, len(registry))
	for _, r := range registry {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		return LessID(rules[i].ID(), rules[j].ID())
	})
	return rules
}

// Get returns the rule with the given id.
func Get(id string) (Rule, bool) {
	mu.RLock()
	defer mu.RUnlock()
	r, ok := registry[id]
	return r, ok
}

// Resolve returns the rules named by a comma-separated selector in List
// order. An empty selector selects every rule.
func Resolve(selector string) ([]Rule, error) {
	mu.RLock()
	defer mu.RUnlock()

	if strings.TrimSpace(selector) == "" {
		return list(), nil
	}

	wanted := make(map[string]bool)
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := registry[id]; !ok {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
		wanted[id] = true
	}

	var selected []Rule
	for _, r := range list() {
		if wanted[r.ID()] {
			selected = append(selected, r)
		}
	}
	return selected, nil
}

// LessID orders success criterion ids numerically per component, so that
// "1.4.3" < "1.4.10" and "1.3.1" < "1.3.1a".
func LessID(a, b string) bool {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, sa := splitNumber(pa[i])
		nb, sb := splitNumber(pb[i])
		if na != nb {
			return na < nb
		}
		if sa != sb {
			return sa < sb
		}
	}
	return len(pa) < len(pb)
}

func splitNumber(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return -1, s
	}
	return n, s[i:]
}
