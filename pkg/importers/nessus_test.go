package importers

import (
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/metrics"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestNessusImport_Fixture(t *testing.T) {
	m := metrics.NewMetrics()
	vulns, err := NessusImporter{}.Import(loadFixture(t, "sample.nessus"), Options{Metrics: m})
	require.NoError(t, err)
	require.Len(t, vulns, 3)

	// Informational plugin 19506 is dropped; 51192 is kept once.
	titles := []string{}
	for _, v := range vulns {
		require.Len(t, v.Details, 1)
		titles = append(titles, v.Details[0].Title)
	}
	assert.Equal(t, []string{
		"SSL Certificate Cannot Be Trusted",
		"SSH Terrapin Prefix Truncation Weakness",
		"HTTP Server Type and Version",
	}, titles)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsParsed.WithLabelValues(FormatNessus)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FindingsSkipped.WithLabelValues(FormatNessus, metrics.ReasonInformational)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FindingsSkipped.WithLabelValues(FormatNessus, metrics.ReasonDuplicate)))
}

func TestNessusImport_CertificateFinding(t *testing.T) {
	vulns, err := NessusImporter{}.Import(loadFixture(t, "sample.nessus"), Options{})
	require.NoError(t, err)

	v := vulns[0]
	d := v.Details[0]
	assert.Equal(t, "en", d.Locale)
	require.NotNil(t, v.Priority)
	assert.Equal(t, engine.PriorityMedium, *v.Priority)
	assert.Nil(t, v.Category, "General is a known but uncategorized family")
	assert.Nil(t, v.CVSSv3)
	assert.Nil(t, v.RemediationComplexity)
	require.NotNil(t, d.VulnType)
	assert.Equal(t, "General", *d.VulnType)

	assert.Equal(t,
		"<p><strong>Synopsis:</strong></p><p>The SSL certificate for this service cannot be trusted.</p>"+
			"<p><strong>Description:</strong></p><p>The server&#039;s X.509 certificate cannot be trusted.<br>It is signed by an unknown authority.</p>"+
			"<p><strong>Plugin Output:</strong></p><pre>Subject : CN=lab &amp; test</pre>",
		d.Description)
	assert.Equal(t, "<p>Affected Port: 443/tcp</p>", d.Observation)
	assert.Equal(t, "<p>Purchase or generate a proper SSL certificate for this service.</p>", d.Remediation)
	assert.Equal(t, []string{
		"https://www.itu.int/rec/T-REC-X.509/en",
		"https://en.wikipedia.org/wiki/X.509",
		"https://www.tenable.com/plugins/nessus/51192",
	}, d.References)
}

func TestNessusImport_CriticalFinding(t *testing.T) {
	vulns, err := NessusImporter{}.Import(loadFixture(t, "sample.nessus"), Options{})
	require.NoError(t, err)

	v := vulns[1]
	require.NotNil(t, v.Priority)
	assert.Equal(t, engine.PriorityUrgent, *v.Priority)
	require.NotNil(t, v.CVSSv3)
	assert.Equal(t, "CVSS:3.0/AV:N/AC:H/PR:N/UI:N/S:U/C:N/I:H/A:N", *v.CVSSv3)
	require.NotNil(t, v.RemediationComplexity)
	assert.Equal(t, engine.ComplexityEasy, *v.RemediationComplexity)
	assert.Equal(t, []string{
		"https://nvd.nist.gov/vuln/detail/CVE-2023-48795",
		"https://nvd.nist.gov/vuln/detail/CVE-2023-46445",
		"https://terrapin-attack.com/",
		"https://www.openssh.com/txt/release-9.6",
		"https://www.tenable.com/plugins/nessus/187315",
	}, v.Details[0].References)
}

func TestNessusImport_DefaultsAndCategory(t *testing.T) {
	vulns, err := NessusImporter{}.Import(loadFixture(t, "sample.nessus"), Options{Locale: "fr"})
	require.NoError(t, err)

	v := vulns[2]
	assert.Equal(t, "fr", v.Details[0].Locale)
	assert.Equal(t, "<p>Affected Port: 80/tcp</p>", v.Details[0].Observation)
	require.NotNil(t, v.Category)
	assert.Equal(t, "Web Application", *v.Category)
	require.NotNil(t, v.RemediationComplexity)
	assert.Equal(t, engine.ComplexityMedium, *v.RemediationComplexity)
	assert.Equal(t, "", v.Details[0].Description)
}

func TestNessusImport_CategoryOverrides(t *testing.T) {
	opts := Options{Categories: engine.DefaultCategories().With(map[string]string{"General": "PKI"})}
	vulns, err := NessusImporter{}.Import(loadFixture(t, "sample.nessus"), opts)
	require.NoError(t, err)
	require.NotNil(t, vulns[0].Category)
	assert.Equal(t, "PKI", *vulns[0].Category)
}

func TestParseNessus_SingleAndListAreEquivalent(t *testing.T) {
	item := map[string]any{
		"pluginID": "42", "pluginName": "Single", "severity": "1", "port": "0",
	}
	single := map[string]any{"NessusClientData_v2": map[string]any{
		"Report": map[string]any{"ReportHost": map[string]any{"name": "h", "ReportItem": item}},
	}}
	listed := map[string]any{"NessusClientData_v2": map[string]any{
		"Report": map[string]any{"ReportHost": []any{map[string]any{"name": "h", "ReportItem": []any{item}}}},
	}}

	a, err := ParseNessus(single, Options{})
	require.NoError(t, err)
	b, err := ParseNessus(listed, Options{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.Len(t, a, 1)
	assert.Equal(t, "", a[0].Details[0].Observation)
	assert.Equal(t, []string{"https://www.tenable.com/plugins/nessus/42"}, a[0].Details[0].References)
}

func TestParseNessus_RepeatedSeeAlso(t *testing.T) {
	tree := map[string]any{"NessusClientData_v2": map[string]any{
		"Report": map[string]any{"ReportHost": map[string]any{"ReportItem": map[string]any{
			"pluginID": "7",
			"severity": "1",
			"cve":      "CVE-2020-0001",
			"see_also": []any{"https://a.example\nhttps://b.example", "https://c.example"},
		}}},
	}}
	vulns, err := ParseNessus(tree, Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, []string{
		"https://nvd.nist.gov/vuln/detail/CVE-2020-0001",
		"https://a.example",
		"https://b.example",
		"https://c.example",
		"https://www.tenable.com/plugins/nessus/7",
	}, vulns[0].Details[0].References)
}

func TestParseNessus_UnknownSeverityIsKept(t *testing.T) {
	tree := map[string]any{"NessusClientData_v2": map[string]any{
		"Report": map[string]any{"ReportHost": map[string]any{"ReportItem": []any{
			map[string]any{"pluginID": "1", "pluginName": "No severity"},
			map[string]any{"pluginID": "2", "severity": "high"},
		}}},
	}}
	vulns, err := ParseNessus(tree, Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 2)
	assert.Nil(t, vulns[0].Priority)
	assert.Equal(t, engine.UnknownTitle, vulns[1].Details[0].Title)
}

func TestParseNessus_MissingPluginIDDedupsTogether(t *testing.T) {
	tree := map[string]any{"NessusClientData_v2": map[string]any{
		"Report": map[string]any{"ReportHost": map[string]any{"ReportItem": []any{
			map[string]any{"pluginName": "first", "severity": "2"},
			map[string]any{"pluginName": "second", "severity": "2"},
		}}},
	}}
	vulns, err := ParseNessus(tree, Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, "first", vulns[0].Details[0].Title)
	assert.Empty(t, vulns[0].Details[0].References)
}

func TestParseNessus_EmptyReport(t *testing.T) {
	tree := map[string]any{"NessusClientData_v2": map[string]any{
		"Report": map[string]any{"name": "nothing here"},
	}}
	vulns, err := ParseNessus(tree, Options{})
	require.NoError(t, err)
	assert.Empty(t, vulns)
}

func TestNessusImport_InvalidFormat(t *testing.T) {
	tests := map[string]string{
		"wrong root":   `<Other><Report/></Other>`,
		"no report":    `<NessusClientData_v2><Policy/></NessusClientData_v2>`,
		"empty report": `<NessusClientData_v2><Report/></NessusClientData_v2>`,
		"blank report": "<NessusClientData_v2>\n<Report>\n  </Report>\n</NessusClientData_v2>",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NessusImporter{}.Import([]byte(doc), Options{})
			require.Error(t, err)
			assert.True(t, engine.IsInvalidFormat(err))
		})
	}
}

func TestNessusImport_BlankHostIsSkipped(t *testing.T) {
	doc := `<NessusClientData_v2><Report name="r">
<ReportHost>
</ReportHost>
<ReportHost name="h"><ReportItem pluginID="1" severity="2" pluginName="Kept"/></ReportHost>
</Report></NessusClientData_v2>`
	vulns, err := NessusImporter{}.Import([]byte(doc), Options{})
	require.NoError(t, err)
	require.Len(t, vulns, 1)
	assert.Equal(t, "Kept", vulns[0].Details[0].Title)
}

func TestNessusImport_ParseErrors(t *testing.T) {
	tests := map[string]string{
		"malformed xml": `<NessusClientData_v2><Report>`,
		"text item":     `<NessusClientData_v2><Report><ReportHost name="h"><ReportItem>oops</ReportItem></ReportHost></Report></NessusClientData_v2>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NessusImporter{}.Import([]byte(doc), Options{})
			require.Error(t, err)
			var pe *engine.ParseError
			assert.ErrorAs(t, err, &pe)
			assert.False(t, engine.IsInvalidFormat(err))
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		known bool
	}{
		{"0", 0, true},
		{"3", 3, true},
		{" 4 ", 4, true},
		{"2abc", 2, true},
		{"", 0, false},
		{"high", 0, false},
	}
	for _, tt := range tests {
		got, known := parseSeverity(tt.raw)
		assert.Equal(t, tt.known, known, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
