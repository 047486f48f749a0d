package importers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/logging"
	"github.com/user/vulnimport/pkg/metrics"
	"github.com/user/vulnimport/pkg/xmltree"
)

const (
	nvdDetailURL     = "https://nvd.nist.gov/vuln/detail/"
	tenablePluginURL = "https://www.tenable.com/plugins/nessus/"
)

// NessusImporter reads Nessus v2 XML reports.
type NessusImporter struct{}

func (NessusImporter) Name() string {
	return FormatNessus
}

func (NessusImporter) Description() string {
	return "Nessus v2 XML report (.nessus): one record per distinct plugin, informational findings skipped."
}

func (n NessusImporter) Import(data []byte, opts Options) ([]engine.Vulnerability, error) {
	tree, err := xmltree.DecodeBytes(data)
	if err != nil {
		return nil, &engine.ParseError{Source: "nessus report", Err: err}
	}
	return ParseNessus(tree, opts)
}

// ParseNessus walks an already decoded Nessus tree. Hosts and items may each
// be a single node or a list of nodes.
func ParseNessus(tree map[string]any, opts Options) ([]engine.Vulnerability, error) {
	root, ok := tree["NessusClientData_v2"]
	if !ok {
		return nil, &engine.InvalidFormatError{Reason: "Invalid Nessus XML format: missing NessusClientData_v2"}
	}
	report, ok := xmltree.Child(root, "Report")
	if !ok || report == "" {
		return nil, &engine.InvalidFormatError{Reason: "Invalid Nessus XML format: missing Report"}
	}

	locale := opts.locale()
	seen := make(map[string]struct{})
	var vulns []engine.Vulnerability

	hostNodes, _ := xmltree.Child(report, "ReportHost")
	for h, host := range xmltree.AsList(hostNodes) {
		if host == "" {
			continue
		}
		if _, ok := host.(map[string]any); !ok {
			return nil, &engine.ParseError{
				Source: "nessus report",
				Err:    fmt.Errorf("ReportHost #%d is not an element", h+1),
			}
		}
		hostName := xmltree.Field(host, "name")

		itemNodes, _ := xmltree.Child(host, "ReportItem")
		for i, item := range xmltree.AsList(itemNodes) {
			if _, ok := item.(map[string]any); !ok {
				return nil, &engine.ParseError{
					Source: "nessus report",
					Err:    fmt.Errorf("ReportItem #%d on host %q is not an element", i+1, hostName),
				}
			}

			severity, known := parseSeverity(xmltree.Field(item, "severity"))
			if known && severity == 0 {
				opts.Metrics.Skipped(FormatNessus, metrics.ReasonInformational)
				continue
			}

			pluginID := xmltree.Field(item, "pluginID")
			if _, dup := seen[pluginID]; dup {
				logging.Logger.Debugw("skipping duplicate plugin", "pluginID", pluginID, "host", hostName)
				opts.Metrics.Skipped(FormatNessus, metrics.ReasonDuplicate)
				continue
			}
			seen[pluginID] = struct{}{}

			vulns = append(vulns, nessusVulnerability(item, severity, known, locale, opts.Categories))
		}
	}

	opts.Metrics.Parsed(FormatNessus, len(vulns))
	logging.Logger.Debugw("parsed nessus report", "records", len(vulns), "plugins", len(seen))
	return vulns, nil
}

// parseSeverity reads the leading integer of a severity attribute.
// A missing or non-numeric value is reported as unknown.
func parseSeverity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && (raw[end] >= '0' && raw[end] <= '9' || end == 0 && raw[end] == '-') {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func nessusVulnerability(item any, severity int, severityKnown bool, locale string, categories engine.CategoryTable) engine.Vulnerability {
	detail := engine.NewDetail(locale, xmltree.Field(item, "pluginName"))
	detail.VulnType = engine.StringPtr(xmltree.Field(item, "pluginFamily"))
	detail.Description = nessusDescription(item)
	detail.Observation = nessusObservation(item)
	if solution := xmltree.Field(item, "solution"); solution != "" {
		detail.Remediation = "<p>" + nl2br(solution) + "</p>"
	}
	detail.References = nessusReferences(item)

	v := engine.Vulnerability{
		CVSSv3:  engine.StringPtr(xmltree.Field(item, "cvss3_vector")),
		Details: []engine.Detail{detail},
	}
	if severityKnown {
		if p, ok := engine.PriorityForSeverity(severity); ok {
			v.Priority = engine.PriorityPtr(p)
		}
	}
	if c, ok := engine.ClassifyRemediation(xmltree.Field(item, "solution")); ok {
		v.RemediationComplexity = engine.ComplexityPtr(c)
	}
	if category, ok := categories.Lookup(xmltree.Field(item, "pluginFamily")); ok {
		v.Category = engine.StringPtr(category)
	}
	return v
}

func nessusDescription(item any) string {
	var b strings.Builder
	if synopsis := xmltree.Field(item, "synopsis"); synopsis != "" {
		b.WriteString("<p><strong>Synopsis:</strong></p><p>" + EscapeHTML(synopsis) + "</p>")
	}
	if desc := xmltree.Field(item, "description"); desc != "" {
		b.WriteString("<p><strong>Description:</strong></p><p>" + nl2br(desc) + "</p>")
	}
	if output := xmltree.Field(item, "plugin_output"); output != "" {
		b.WriteString("<p><strong>Plugin Output:</strong></p><pre>" + EscapeHTML(output) + "</pre>")
	}
	return b.String()
}

func nessusObservation(item any) string {
	port := xmltree.Field(item, "port")
	if port == "" || port == "0" {
		return ""
	}
	protocol := xmltree.Field(item, "protocol")
	if protocol == "" {
		protocol = "tcp"
	}
	return "<p>Affected Port: " + EscapeHTML(port) + "/" + EscapeHTML(protocol) + "</p>"
}

// nessusReferences lists CVE links, then see_also lines, then the plugin page.
func nessusReferences(item any) []string {
	refs := []string{}
	cves, _ := xmltree.Child(item, "cve")
	for _, cve := range xmltree.AsList(cves) {
		if id := xmltree.Text(cve); id != "" {
			refs = append(refs, nvdDetailURL+id)
		}
	}
	seeAlso, _ := xmltree.Child(item, "see_also")
	for _, entry := range xmltree.AsList(seeAlso) {
		for _, line := range strings.Split(xmltree.Text(entry), "\n") {
			if strings.TrimSpace(line) != "" {
				refs = append(refs, line)
			}
		}
	}
	if pluginID := xmltree.Field(item, "pluginID"); pluginID != "" {
		refs = append(refs, tenablePluginURL+pluginID)
	}
	return refs
}
