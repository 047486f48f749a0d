package importers

import (
	"bytes"
	"encoding/json"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/logging"
)

// BulkImporter reads documents already in the canonical shape, as YAML or JSON.
type BulkImporter struct{}

func (BulkImporter) Name() string {
	return FormatBulk
}

func (BulkImporter) Description() string {
	return "Canonical YAML/JSON records, with legacy top-level references copied into details."
}

func (b BulkImporter) Import(data []byte, opts Options) ([]engine.Vulnerability, error) {
	doc, err := decodeBulk(data)
	if err != nil {
		return nil, &engine.ParseError{Source: "bulk document", Err: err}
	}
	vulns, err := ParseBulk(doc)
	if err != nil {
		return nil, err
	}
	opts.Metrics.Parsed(FormatBulk, len(vulns))
	return vulns, nil
}

func decodeBulk(data []byte) (any, error) {
	var doc any
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		if err := json.Unmarshal(trimmed, &doc); err == nil {
			return doc, nil
		}
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseBulk normalises a decoded document: a list of records or a single record.
// List elements that are not mappings are dropped. Fields that cannot be
// coerced to their canonical type are left absent; the record is kept.
func ParseBulk(doc any) ([]engine.Vulnerability, error) {
	switch t := doc.(type) {
	case []any:
		vulns := make([]engine.Vulnerability, 0, len(t))
		for i, elem := range t {
			m, ok := elem.(map[string]any)
			if !ok {
				logging.Logger.Warnw("dropping bulk element that is not a mapping", "index", i)
				continue
			}
			vulns = append(vulns, decodeBulkRecord(m))
		}
		return vulns, nil
	case map[string]any:
		return []engine.Vulnerability{decodeBulkRecord(t)}, nil
	default:
		return nil, &engine.InvalidFormatError{Reason: "bulk document must be a mapping or a list of mappings"}
	}
}

func decodeBulkRecord(m map[string]any) engine.Vulnerability {
	var v engine.Vulnerability
	decodeField(m, "cvssv3", &v.CVSSv3)
	decodeField(m, "cvssv4", &v.CVSSv4)
	decodeField(m, "priority", &v.Priority)
	decodeField(m, "remediationComplexity", &v.RemediationComplexity)
	decodeField(m, "category", &v.Category)

	// The legacy top-level references only count when they are a real sequence.
	var legacyRefs []string
	if _, ok := m["references"].([]any); ok {
		decodeField(m, "references", &legacyRefs)
	}

	v.Details = []engine.Detail{}
	var rawDetails []any
	switch t := m["details"].(type) {
	case nil:
	case []any:
		rawDetails = t
	case map[string]any:
		rawDetails = []any{t}
	default:
		logging.Logger.Warnw("ignoring bulk details that are not a list", "details", t)
	}
	for i, raw := range rawDetails {
		dm, ok := raw.(map[string]any)
		if !ok {
			logging.Logger.Warnw("dropping bulk detail that is not a mapping", "index", i)
			continue
		}
		v.Details = append(v.Details, decodeBulkDetail(dm))
	}
	v.Details = firstPerLocale(v.Details)

	for i := range v.Details {
		d := &v.Details[i]
		if len(d.References) == 0 && len(legacyRefs) > 0 {
			d.References = append([]string(nil), legacyRefs...)
		}
	}
	return v
}

func decodeBulkDetail(m map[string]any) engine.Detail {
	d := engine.Detail{
		References:   []string{},
		CustomFields: []engine.CustomField{},
	}
	decodeField(m, "locale", &d.Locale)
	decodeField(m, "title", &d.Title)
	decodeField(m, "vulnType", &d.VulnType)
	decodeField(m, "description", &d.Description)
	decodeField(m, "observation", &d.Observation)
	decodeField(m, "remediation", &d.Remediation)
	decodeField(m, "references", &d.References)
	decodeField(m, "customFields", &d.CustomFields)
	if d.References == nil {
		d.References = []string{}
	}
	if d.CustomFields == nil {
		d.CustomFields = []engine.CustomField{}
	}
	return d
}

// decodeField weakly decodes m[key] into dst. Missing or null values leave dst
// untouched; values that cannot be coerced are logged and ignored.
func decodeField[T any](m map[string]any, key string, dst *T) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return
	}

	var val T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &val,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err == nil {
		err = dec.Decode(raw)
	}
	if err != nil {
		logging.Logger.Warnw("ignoring malformed bulk field", "field", key, "error", err)
		return
	}
	*dst = val
}

// firstPerLocale keeps the first detail seen for each locale.
func firstPerLocale(details []engine.Detail) []engine.Detail {
	seen := make(map[string]bool, len(details))
	out := details[:0]
	for _, d := range details {
		if seen[d.Locale] {
			logging.Logger.Warnw("dropping duplicate locale detail", "locale", d.Locale, "title", d.Title)
			continue
		}
		seen[d.Locale] = true
		out = append(out, d)
	}
	return out
}
