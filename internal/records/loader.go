package records

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"hearingbot/internal/config"
	"hearingbot/pkg/logx"
)

// Loader reads the client CSV, enforces freshness and required columns, and
// normalizes contact identifiers.
type Loader struct {
	path string
	biz  config.BusinessConfig
	log  logx.Logger
	now  func() time.Time
}

func NewLoader(path string, biz config.BusinessConfig, log logx.Logger) *Loader {
	return &Loader{path: path, biz: biz, log: log, now: time.Now}
}

// Load returns the rows in file order. All failure modes here wrap ErrData
// and abort the run before any session is acquired.
func (l *Loader) Load() ([]ClientRecord, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrData, l.path, err)
	}

	age := l.now().Sub(info.ModTime())
	maxAge := time.Duration(l.biz.CSVMaxAgeHours) * time.Hour
	warnAge := time.Duration(l.biz.CSVWarningAgeHours) * time.Hour
	if maxAge > 0 && age > maxAge {
		return nil, fmt.Errorf("%w: %s is %.1fh old (max %dh), refresh the export",
			ErrData, l.path, age.Hours(), l.biz.CSVMaxAgeHours)
	}
	if warnAge > 0 && age > warnAge {
		l.log.Warn("record source is getting stale",
			logx.String("path", l.path),
			logx.Duration("age", age))
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrData, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged exports happen; validate columns instead
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrData, l.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrData, l.path)
	}

	header := rows[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, col := range l.biz.RequiredCSVColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s missing required columns %v", ErrData, l.path, missing)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	out := make([]ClientRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := ClientRecord{
			Columns: columns,
			Fields:  make(map[string]string, len(columns)),
		}
		for i, col := range columns {
			if i >= len(row) {
				break
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue // empty cell is null
			}
			if col == "Contact" {
				v = normalizeContact(v)
			}
			rec.Fields[col] = v
		}
		rec.Client = rec.Fields["Client"]
		rec.Contact = rec.Fields["Contact"]
		rec.Category = rec.Fields["Category"]
		rec.NextHearingDate = parseHearingDate(rec.Fields["NextHearingDate"])
		out = append(out, rec)
	}

	l.log.Info("record source loaded",
		logx.String("path", l.path),
		logx.Int("records", len(out)),
		logx.Time("modified", info.ModTime()))

	l.exportJSON(out)
	return out, nil
}

// exportJSON mirrors the loaded table next to the CSV for downstream
// tooling. Best-effort only.
func (l *Loader) exportJSON(recs []ClientRecord) {
	path := strings.TrimSuffix(l.path, ".csv") + ".json"
	rows := make([]map[string]string, len(recs))
	for i, r := range recs {
		rows[i] = r.Fields
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err == nil {
		err = os.WriteFile(path, b, 0o644)
	}
	if err != nil {
		l.log.Warn("record export skipped", logx.String("path", path), logx.Err(err))
		return
	}
	l.log.Info("record export written", logx.String("path", path))
}
