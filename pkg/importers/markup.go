package importers

import "strings"

type rewrite struct {
	from, to string
}

// markupRewrites are applied strictly in order. Bullet pairs must be rewritten
// before the bare <paragraph> tags or they would be swallowed as plain
// paragraphs, and nested bullets are flattened onto first-level list items.
var markupRewrites = []rewrite{
	{"<h4>", "<b>"},
	{"</h4>", "</b>"},
	{"<paragraph><bullet>", "<li><p>"},
	{"</bullet></paragraph>", "</p></li>"},
	{"<paragraph><bullet1>", "<li><p>"},
	{"</bullet1></paragraph>", "</p></li>"},
	{"<paragraph>", "<p>"},
	{"</paragraph>", "</p>"},
	{"<indented>", "    "},
	{"</indented>", ""},
	{"<italics>", "<i>"},
	{"</italics>", "</i>"},
	{"[[[", "<pre><code>"},
	{"]]]", "</code></pre>"},
}

var languageCodes = map[string]string{
	"English": "en",
	"French":  "fr",
}

// Transcode rewrites report-tool markup into the platform's HTML subset.
// Empty input yields ok == false. Language names short-circuit to locale codes.
func Transcode(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if code, ok := languageCodes[text]; ok {
		return code, true
	}

	res := text
	for _, rw := range markupRewrites {
		res = strings.ReplaceAll(res, rw.from, rw.to)
	}
	res = UnescapeHTML(res)
	res = strings.TrimSuffix(res, "\n")
	return res, true
}
