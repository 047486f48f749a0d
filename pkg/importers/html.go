package importers

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Only the entities the report tool emits are decoded; anything else stays literal.
var htmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// UnescapeHTML reverses the minimal entity set.
func UnescapeHTML(text string) string {
	return htmlUnescaper.Replace(text)
}

// nl2br escapes text and turns newlines into line breaks.
func nl2br(text string) string {
	return strings.ReplaceAll(EscapeHTML(text), "\n", "<br>")
}
