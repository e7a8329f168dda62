// Package records loads and filters the tabular client source that drives a
// send pass.
package records

import (
	"errors"
	"strings"
	"time"
)

// ErrData marks fatal problems with the record source (missing file, stale
// file, missing required columns). A run never reaches the browser session
// once ErrData is raised.
var ErrData = errors.New("record source error")

// ClientRecord is one row of the client table. Records are immutable after
// the loader produces them.
type ClientRecord struct {
	Client   string
	Contact  string // whitespace-stripped identifier
	Category string

	// NextHearingDate is nil when the cell was empty or unparseable; such
	// records never pass the filter.
	NextHearingDate *time.Time

	// Columns preserves header order; Fields holds the raw non-empty cell
	// values used for template substitution.
	Columns []string
	Fields  map[string]string
}

// Field returns the raw value for a column and whether it is present and
// non-null.
func (r ClientRecord) Field(col string) (string, bool) {
	v, ok := r.Fields[col]
	return v, ok
}

// normalizeContact strips edge and internal whitespace from a contact
// identifier ("+1 234 567" -> "+1234567").
func normalizeContact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// hearingDateLayouts covers the formats the upstream export has been seen
// producing. First match wins.
var hearingDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
	"02/01/2006",
	"02-Jan-2006",
	"2 January 2006",
}

// parseHearingDate returns nil for anything it cannot parse; a bad date is a
// filtering exclusion, not an error.
func parseHearingDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range hearingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// SameDate reports whether two timestamps fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
