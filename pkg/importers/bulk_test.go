package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnimport/pkg/engine"
)

func TestBulkImport_YAML(t *testing.T) {
	vulns, err := BulkImporter{}.Import(loadFixture(t, "bulk.yml"), Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 2, "the scalar element is dropped")

	first := vulns[0]
	require.NotNil(t, first.Priority)
	assert.Equal(t, engine.PriorityUrgent, *first.Priority)
	require.NotNil(t, first.RemediationComplexity)
	assert.Equal(t, engine.ComplexityEasy, *first.RemediationComplexity)
	require.NotNil(t, first.Category)
	assert.Equal(t, "Infrastructure", *first.Category)
	assert.Nil(t, first.CVSSv4)

	require.Len(t, first.Details, 2, "duplicate locale keeps the first detail")
	en, ok := first.DetailFor("en")
	require.True(t, ok)
	assert.Equal(t, "Outdated OpenSSL", en.Title)
	assert.Equal(t, []string{"https://example.com/legacy-advisory"}, en.References)
	fr, ok := first.DetailFor("fr")
	require.True(t, ok)
	assert.Equal(t, []string{"https://example.fr/avis"}, fr.References)

	second := vulns[1]
	assert.Nil(t, second.Priority)
	require.Len(t, second.Details, 1)
	assert.NotNil(t, second.Details[0].References)
	assert.Empty(t, second.Details[0].References)
	assert.Equal(t, []engine.CustomField{{CustomField: "owner", Text: "ops"}}, second.Details[0].CustomFields)
}

func TestBulkImport_SingleObjectJSON(t *testing.T) {
	vulns, err := BulkImporter{}.Import(loadFixture(t, "bulk_single.json"), Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	require.NotNil(t, vulns[0].Priority)
	assert.Equal(t, engine.PriorityMedium, *vulns[0].Priority)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, vulns[0].Details[0].References)
}

func TestBulkImport_BackfillDoesNotAlias(t *testing.T) {
	doc := `
references: [r1]
details:
  - {locale: en, title: A}
  - {locale: fr, title: B}
`
	vulns, err := BulkImporter{}.Import([]byte(doc), Options{})
	require.NoError(t, err)
	vulns[0].Details[0].References[0] = "changed"
	assert.Equal(t, []string{"r1"}, vulns[0].Details[1].References)
}

func TestBulkImport_InvalidShape(t *testing.T) {
	for _, doc := range []string{"just a scalar", "42", ""} {
		_, err := BulkImporter{}.Import([]byte(doc), Options{})
		assert.True(t, engine.IsInvalidFormat(err), "%q", doc)
	}
}

func TestBulkImport_Unparseable(t *testing.T) {
	_, err := BulkImporter{}.Import([]byte("details: [unterminated"), Options{})
	var pe *engine.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseBulk_MalformedDetailsAreIgnored(t *testing.T) {
	vulns, err := ParseBulk([]any{
		map[string]any{"priority": 3, "details": "not a list of details"},
		map[string]any{"details": []any{"scalar", map[string]any{"locale": "en", "title": "ok"}}},
	})
	require.NoError(t, err)
	require.Len(t, vulns, 2)
	require.NotNil(t, vulns[0].Priority)
	assert.Equal(t, engine.PriorityHigh, *vulns[0].Priority)
	assert.NotNil(t, vulns[0].Details)
	assert.Empty(t, vulns[0].Details)
	require.Len(t, vulns[1].Details, 1)
	assert.Equal(t, "ok", vulns[1].Details[0].Title)
}

func TestBulkImport_BadScalarKeepsRecord(t *testing.T) {
	single := `
priority: High
remediationComplexity: [1, 2]
category: Web
details:
  - {locale: en, title: Reflected XSS, references: [r1]}
`
	vulns, err := BulkImporter{}.Import([]byte(single), Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Nil(t, vulns[0].Priority)
	assert.Nil(t, vulns[0].RemediationComplexity)
	require.NotNil(t, vulns[0].Category)
	assert.Equal(t, "Web", *vulns[0].Category)
	assert.Equal(t, "Reflected XSS", vulns[0].Details[0].Title)

	list := `
- priority: High
  details: [{locale: en, title: First}]
- priority: 2
  details: [{locale: en, title: Second}]
`
	vulns, err = BulkImporter{}.Import([]byte(list), Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 2)
	assert.Nil(t, vulns[0].Priority)
	assert.Equal(t, "First", vulns[0].Details[0].Title)
	require.NotNil(t, vulns[1].Priority)
	assert.Equal(t, engine.PriorityMedium, *vulns[1].Priority)
}

func TestBulkImport_ScalarLegacyReferencesNotCopied(t *testing.T) {
	doc := `
references: http://a
details:
  - {locale: en, title: A}
`
	vulns, err := BulkImporter{}.Import([]byte(doc), Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.NotNil(t, vulns[0].Details[0].References)
	assert.Empty(t, vulns[0].Details[0].References)
}
