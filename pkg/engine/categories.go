package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// builtinCategories maps Nessus plugin families to platform categories.
// Families mapped to "" are known but deliberately uncategorized.
var builtinCategories = map[string]string{
	"Web Servers":                      "Web Application",
	"CGI abuses":                       "Web Application",
	"CGI abuses : XSS":                 "Web Application",
	"Databases":                        "Database",
	"DNS":                              "Network",
	"FTP":                              "Network",
	"Firewalls":                        "Network",
	"Gain a shell remotely":            "Remote Code Execution",
	"General":                          "",
	"Misc.":                            "",
	"Netware":                          "Network",
	"Peer-To-Peer File Sharing":        "Network",
	"Policy Compliance":                "Compliance",
	"Port scanners":                    "",
	"RPC":                              "Network",
	"SCADA":                            "Industrial Control Systems",
	"SMTP problems":                    "Network",
	"SNMP":                             "Network",
	"Service detection":                "",
	"Settings":                         "",
	"Slackware Local Security Checks":  "Operating System",
	"Ubuntu Local Security Checks":     "Operating System",
	"Red Hat Local Security Checks":    "Operating System",
	"CentOS Local Security Checks":     "Operating System",
	"Debian Local Security Checks":     "Operating System",
	"Fedora Local Security Checks":     "Operating System",
	"Windows":                          "Operating System",
	"Windows : Microsoft Bulletins":    "Operating System",
	"Windows : User management":        "Operating System",
	"MacOS X Local Security Checks":    "Operating System",
	"Backdoors":                        "Malware",
	"Brute force attacks":              "Authentication",
	"Default Unix Accounts":            "Authentication",
	"Denial of Service":                "Denial of Service",
	"Gentoo Local Security Checks":     "Operating System",
	"HP-UX Local Security Checks":      "Operating System",
	"Mandriva Local Security Checks":   "Operating System",
	"Mobile Devices":                   "Mobile",
	"Solaris Local Security Checks":    "Operating System",
	"SuSE Local Security Checks":       "Operating System",
	"VMware ESX Local Security Checks": "Virtualization",
	"Virtuozzo Local Security Checks":  "Virtualization",
}

var defaultCategories = CategoryTable{entries: builtinCategories}

// CategoryTable is an immutable plugin-family -> category lookup.
// Matching is exact; there is no partial or fuzzy matching.
type CategoryTable struct {
	entries map[string]string
}

// DefaultCategories returns the built-in table.
func DefaultCategories() CategoryTable {
	return defaultCategories
}

// Lookup returns the category for a plugin family.
func (t CategoryTable) Lookup(family string) (string, bool) {
	if t.entries == nil {
		t = defaultCategories
	}
	c, ok := t.entries[family]
	if !ok || c == "" {
		return "", false
	}
	return c, true
}

// Len returns the number of known families.
func (t CategoryTable) Len() int {
	if t.entries == nil {
		return len(defaultCategories.entries)
	}
	return len(t.entries)
}

// With returns a copy of t with overrides applied on top.
// An override with an empty category unmaps the family.
func (t CategoryTable) With(overrides map[string]string) CategoryTable {
	base := t.entries
	if base == nil {
		base = defaultCategories.entries
	}
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return CategoryTable{entries: merged}
}

// LoadCategoryOverrides reads a YAML mapping of plugin family to category
// and merges it over the built-in table.
func LoadCategoryOverrides(path string) (CategoryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CategoryTable{}, err
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return CategoryTable{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return DefaultCategories().With(overrides), nil
}
