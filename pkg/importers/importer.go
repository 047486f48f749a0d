package importers

import (
	"fmt"
	"sort"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/metrics"
)

// Supported input formats.
const (
	FormatNessus  = "nessus"
	FormatSerpico = "serpico"
	FormatBulk    = "bulk"
)

// DefaultLocale is used when the caller does not choose a target locale.
const DefaultLocale = "en"

// Options tune a single import call.
type Options struct {
	// Locale is the detail locale for formats that carry none (Nessus).
	Locale string
	// Categories maps plugin families to categories. The zero value is the built-in table.
	Categories engine.CategoryTable
	// Metrics receives parse counters. Optional.
	Metrics *metrics.Metrics
}

func (o Options) locale() string {
	if o.Locale == "" {
		return DefaultLocale
	}
	return o.Locale
}

// Importer converts one input document into canonical vulnerabilities.
// Implementations hold no state between calls and are safe for concurrent use.
type Importer interface {
	Name() string
	Description() string
	Import(data []byte, opts Options) ([]engine.Vulnerability, error)
}

var registry = map[string]Importer{
	FormatNessus:  NessusImporter{},
	FormatSerpico: SerpicoImporter{},
	FormatBulk:    BulkImporter{},
}

// New returns the importer registered for format.
func New(format string) (Importer, error) {
	imp, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown import format: %s", format)
	}
	return imp, nil
}

// Formats lists the registered format names.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
