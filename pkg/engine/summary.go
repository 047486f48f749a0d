package engine

import (
	"fmt"
	"sort"
	"strings"
)

// UncategorizedLabel buckets records that carry no category.
const UncategorizedLabel = "Uncategorized"

// PriorityCounts holds per-priority record counts.
type PriorityCounts struct {
	Urgent int `json:"urgent" yaml:"urgent"`
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// Summary aggregates a batch of vulnerabilities for reporting.
type Summary struct {
	Total      int            `json:"total" yaml:"total"`
	ByPriority PriorityCounts `json:"byPriority" yaml:"byPriority"`
	ByCategory map[string]int `json:"byCategory" yaml:"byCategory"`
}

// Summarize counts each record once by priority and once by category.
// Records without a priority are counted in Total only.
func Summarize(batch []Vulnerability) Summary {
	s := Summary{
		Total:      len(batch),
		ByCategory: make(map[string]int),
	}

	for _, v := range batch {
		if v.Priority != nil {
			switch *v.Priority {
			case PriorityUrgent:
				s.ByPriority.Urgent++
			case PriorityHigh:
				s.ByPriority.High++
			case PriorityMedium:
				s.ByPriority.Medium++
			case PriorityLow:
				s.ByPriority.Low++
			}
		}

		category := UncategorizedLabel
		if v.Category != nil && *v.Category != "" {
			category = *v.Category
		}
		s.ByCategory[category]++
	}
	return s
}

// Report returns a text rendering of the summary.
func (s Summary) Report() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Summary (%d vulnerabilities):\n", s.Total))
	sb.WriteString("--------------------------------------------------\n")
	sb.WriteString(fmt.Sprintf("Critical: %d, High: %d, Medium: %d, Low: %d\n",
		s.ByPriority.Urgent, s.ByPriority.High, s.ByPriority.Medium, s.ByPriority.Low))

	categories := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", c, s.ByCategory[c]))
	}
	return sb.String()
}
