package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		want     string
	}{
		{"nessus", "scan.nessus", "", FormatNessus},
		{"xml", "SCAN.XML", "", FormatNessus},
		{"yaml", "vulns.yml", "", FormatBulk},
		{"yaml long ext", "vulns.yaml", "", FormatBulk},
		{"serpico", "export.json", `[{"id": 12, "title": "x"}]`, FormatSerpico},
		{"serpico string id", "export.json", `[{"id": "abc"}]`, FormatSerpico},
		{"json without id", "vulns.json", `[{"details": []}]`, FormatBulk},
		{"json zero id", "vulns.json", `[{"id": 0}]`, FormatBulk},
		{"json object", "vulns.json", `{"details": []}`, FormatBulk},
		{"json empty array", "vulns.json", `[]`, FormatBulk},
		{"serpico with odd tail", "export.json", `[{"id": 5}, "note", 3]`, FormatSerpico},
		{"scalar first element", "vulns.json", `["x", {"id": 1}]`, FormatBulk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.filename, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_Unsupported(t *testing.T) {
	_, err := Detect("report.pdf", nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, name := range Formats() {
		imp, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, imp.Name())
		assert.NotEmpty(t, imp.Description())
	}
	assert.Equal(t, []string{FormatBulk, FormatNessus, FormatSerpico}, Formats())

	_, err := New("csv")
	assert.Error(t, err)
}
