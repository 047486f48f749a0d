package importers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Detect picks a format from the file extension and, for JSON, the content.
// A JSON array whose first element carries an id is a Serpico export;
// any other JSON is treated as a bulk document.
func Detect(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".nessus", ".xml":
		return FormatNessus, nil
	case ".yml", ".yaml":
		return FormatBulk, nil
	case ".json":
		if isSerpicoExport(data) {
			return FormatSerpico, nil
		}
		return FormatBulk, nil
	default:
		return "", fmt.Errorf("cannot detect format of %s: unsupported extension", filename)
	}
}

func isSerpicoExport(data []byte) bool {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
		return false
	}
	first, ok := items[0].(map[string]any)
	if !ok {
		return false
	}
	switch id := first["id"].(type) {
	case nil:
		return false
	case string:
		return id != ""
	case float64:
		return id != 0
	case bool:
		return id
	default:
		return true
	}
}
