package message

import (
	"strings"

	"hearingbot/internal/records"
)

// Render substitutes every literal {Column} whose column is present and
// non-null on the record. Unknown or null placeholders pass through
// verbatim; leaving them visible in the outgoing message is the agreed
// behavior, not an error.
func Render(tmpl string, rec records.ClientRecord) string {
	out := tmpl
	for col, val := range rec.Fields {
		out = strings.ReplaceAll(out, "{"+col+"}", val)
	}
	return out
}
