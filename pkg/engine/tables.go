package engine

import "strings"

// severityPriority maps scanner severity 1..4 (Low..Critical) to priority.
var severityPriority = map[int]Priority{
	1: PriorityLow,
	2: PriorityMedium,
	3: PriorityHigh,
	4: PriorityUrgent,
}

// PriorityForSeverity maps a scanner severity to a priority.
// Severity 0 (informational) and anything out of range have no priority.
func PriorityForSeverity(severity int) (Priority, bool) {
	p, ok := severityPriority[severity]
	return p, ok
}

type complexityRule struct {
	keywords   []string
	complexity Complexity
}

// complexityRules are evaluated in order; the first rule with a matching
// keyword wins, so "upgrade ... redesign" is Easy.
var complexityRules = []complexityRule{
	{keywords: []string{"upgrade", "update", "patch"}, complexity: ComplexityEasy},
	{keywords: []string{"configure", "disable"}, complexity: ComplexityMedium},
	{keywords: []string{"redesign", "replace"}, complexity: ComplexityComplex},
}

// ClassifyRemediation estimates the remediation complexity of a solution text.
func ClassifyRemediation(solution string) (Complexity, bool) {
	if solution == "" {
		return 0, false
	}
	lower := strings.ToLower(solution)
	for _, rule := range complexityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.complexity, true
			}
		}
	}
	return 0, false
}
