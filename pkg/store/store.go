package store

import (
	"context"
	"errors"
	"time"

	"github.com/user/vulnimport/pkg/engine"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("vulnerability not found")

// DefaultMergeTitle is the title given to a merged record when none is supplied.
const DefaultMergeTitle = "Merged Findings"

// Store persists canonical vulnerabilities.
type Store interface {
	// CreateBatch inserts records atomically. A record is skipped as a duplicate
	// when any of its (locale, title) pairs already exists, in the store or
	// earlier in the same batch.
	CreateBatch(ctx context.Context, batch []engine.Vulnerability) (CreateResult, error)
	// MergeByIDs replaces two or more records by a single merged record.
	MergeByIDs(ctx context.Context, ids []string, title, locale string) (MergeResult, error)
	List(ctx context.Context) ([]Record, error)
	Purge(ctx context.Context) (int, error)
	Close() error
}

// Record is a stored vulnerability.
type Record struct {
	ID            string               `json:"id" yaml:"id"`
	CreatedAt     time.Time            `json:"createdAt" yaml:"createdAt"`
	Vulnerability engine.Vulnerability `json:"vulnerability" yaml:"vulnerability"`
}

// CreateResult reports the outcome of CreateBatch.
type CreateResult struct {
	Created    int
	Duplicates []string // titles of skipped records
}

// MergeResult reports the outcome of MergeByIDs.
type MergeResult struct {
	Merged int
	ID     string
}

// Message renders the import outcome the way the CLI reports it.
func (r CreateResult) Message() string {
	switch {
	case r.Created == 0 && len(r.Duplicates) == 0:
		return "No vulnerabilities to import"
	case len(r.Duplicates) == 0:
		return "Vulnerabilities imported successfully"
	case r.Created == 0:
		return "All vulnerabilities already exist"
	default:
		return "Some vulnerabilities already exist, others were imported"
	}
}

// mergeVulnerabilities folds sources in order. Details are unioned per locale
// with the first occurrence kept; the detail for locale is retitled.
// Scalars take the first non-nil value.
func mergeVulnerabilities(sources []engine.Vulnerability, title, locale string) engine.Vulnerability {
	var merged engine.Vulnerability
	for _, src := range sources {
		if merged.CVSSv3 == nil {
			merged.CVSSv3 = src.CVSSv3
		}
		if merged.CVSSv4 == nil {
			merged.CVSSv4 = src.CVSSv4
		}
		if merged.Priority == nil {
			merged.Priority = src.Priority
		}
		if merged.RemediationComplexity == nil {
			merged.RemediationComplexity = src.RemediationComplexity
		}
		if merged.Category == nil {
			merged.Category = src.Category
		}
		for _, d := range src.Details {
			if _, ok := merged.DetailFor(d.Locale); !ok {
				merged.Details = append(merged.Details, d)
			}
		}
	}

	if title == "" {
		title = DefaultMergeTitle
	}
	if d, ok := merged.DetailFor(locale); ok {
		d.Title = title
	} else {
		merged.Details = append(merged.Details, engine.NewDetail(locale, title))
	}
	return merged
}
