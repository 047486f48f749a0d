package engine

// Priority is the normalized triage rank of a vulnerability (1=Low .. 4=Urgent).
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// Complexity estimates how hard a remediation is (1=Easy .. 3=Complex).
type Complexity int

const (
	ComplexityEasy    Complexity = 1
	ComplexityMedium  Complexity = 2
	ComplexityComplex Complexity = 3
)

// Vulnerability is the canonical, locale-indexed record every importer converges on.
// Absent optional values are nil and serialize as null.
type Vulnerability struct {
	CVSSv3                *string     `json:"cvssv3" yaml:"cvssv3" mapstructure:"cvssv3"`
	CVSSv4                *string     `json:"cvssv4" yaml:"cvssv4" mapstructure:"cvssv4"`
	Priority              *Priority   `json:"priority" yaml:"priority" mapstructure:"priority"`
	RemediationComplexity *Complexity `json:"remediationComplexity" yaml:"remediationComplexity" mapstructure:"remediationComplexity"`
	Category              *string     `json:"category" yaml:"category" mapstructure:"category"`
	Details               []Detail    `json:"details" yaml:"details" mapstructure:"details"`
}

// Detail holds the locale-specific text of a vulnerability.
type Detail struct {
	Locale       string        `json:"locale" yaml:"locale" mapstructure:"locale"`
	Title        string        `json:"title" yaml:"title" mapstructure:"title"`
	VulnType     *string       `json:"vulnType" yaml:"vulnType" mapstructure:"vulnType"`
	Description  string        `json:"description" yaml:"description" mapstructure:"description"`
	Observation  string        `json:"observation" yaml:"observation" mapstructure:"observation"`
	Remediation  string        `json:"remediation" yaml:"remediation" mapstructure:"remediation"`
	References   []string      `json:"references" yaml:"references" mapstructure:"references"`
	CustomFields []CustomField `json:"customFields" yaml:"customFields" mapstructure:"customFields"`
}

// CustomField is a user-defined field value attached to a detail.
type CustomField struct {
	CustomField string `json:"customField" yaml:"customField" mapstructure:"customField"`
	Text        any    `json:"text" yaml:"text" mapstructure:"text"`
}

// UnknownTitle is used when a source carries no usable title.
const UnknownTitle = "Unknown Vulnerability"

// NewDetail returns a detail with empty, non-nil sequences.
func NewDetail(locale, title string) Detail {
	if title == "" {
		title = UnknownTitle
	}
	return Detail{
		Locale:       locale,
		Title:        title,
		References:   []string{},
		CustomFields: []CustomField{},
	}
}

// DetailFor returns the detail for locale, if any.
func (v *Vulnerability) DetailFor(locale string) (*Detail, bool) {
	for i := range v.Details {
		if v.Details[i].Locale == locale {
			return &v.Details[i], true
		}
	}
	return nil, false
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func PriorityPtr(p Priority) *Priority { return &p }

func ComplexityPtr(c Complexity) *Complexity { return &c }
