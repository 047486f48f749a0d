package importers

import (
	"encoding/json"
	"strings"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/logging"
)

// SerpicoImporter reads Serpico finding exports: a JSON array of flat records
// whose text fields carry Serpico markup.
type SerpicoImporter struct{}

func (SerpicoImporter) Name() string {
	return FormatSerpico
}

func (SerpicoImporter) Description() string {
	return "Serpico JSON export: markup transcoded to HTML, one detail per record."
}

func (s SerpicoImporter) Import(data []byte, opts Options) ([]engine.Vulnerability, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &engine.ParseError{Source: "serpico export", Err: err}
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, &engine.InvalidFormatError{Reason: "serpico export must be a JSON array"}
	}
	vulns := ParseSerpico(items)
	opts.Metrics.Parsed(FormatSerpico, len(vulns))
	return vulns, nil
}

// ParseSerpico converts each record independently. Records that are not
// objects, or whose fields are not strings, degrade to empty fields.
func ParseSerpico(items []any) []engine.Vulnerability {
	vulns := make([]engine.Vulnerability, 0, len(items))
	for i, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			logging.Logger.Warnw("serpico record is not an object", "index", i)
		}

		locale, ok := Transcode(stringField(rec, "language"))
		if !ok {
			locale = DefaultLocale
		}
		title, _ := Transcode(stringField(rec, "title"))
		detail := engine.NewDetail(locale, title)
		vulnType, _ := Transcode(stringField(rec, "type"))
		detail.VulnType = engine.StringPtr(vulnType)
		detail.Description, _ = Transcode(stringField(rec, "overview"))
		detail.Observation, _ = Transcode(stringField(rec, "poc"))
		detail.Remediation, _ = Transcode(stringField(rec, "remediation"))
		detail.References = serpicoReferences(stringField(rec, "references"))

		vulns = append(vulns, engine.Vulnerability{
			CVSSv3:  engine.StringPtr(stringField(rec, "c3_vs")),
			Details: []engine.Detail{detail},
		})
	}
	return vulns
}

// serpicoReferences splits a paragraph-wrapped reference list.
func serpicoReferences(raw string) []string {
	refs := []string{}
	if raw == "" {
		return refs
	}
	raw = strings.ReplaceAll(raw, "<paragraph>", "")
	for _, ref := range strings.Split(raw, "</paragraph>") {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}
