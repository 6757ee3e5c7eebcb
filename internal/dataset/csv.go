package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/quantlab/tradesim/internal/observ"
)

// minRows is the smallest series the indicator stack can warm up on.
const minRows = 200

var requiredColumns = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// Load reads an OHLCV CSV into a Frame, sorted ascending by date. Indicator
// and scaled columns are not populated; see ComputeIndicators and Scaler.
func Load(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("dataset %s missing required column %q", path, name)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for lineNo, rec := range records[1:] {
		date, err := parseDate(rec[col["Date"]])
		if err != nil {
			return nil, fmt.Errorf("dataset %s line %d: %w", path, lineNo+2, err)
		}
		row := Row{Date: date}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"Open", &row.Open}, {"High", &row.High}, {"Low", &row.Low},
			{"Close", &row.Close}, {"Adj Close", &row.AdjClose}, {"Volume", &row.Volume},
		} {
			v, err := strconv.ParseFloat(rec[col[f.name]], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset %s line %d column %s: %w", path, lineNo+2, f.name, err)
			}
			*f.dst = v
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	if len(rows) < minRows {
		return nil, fmt.Errorf("dataset %s has %d rows, need at least %d for indicator warm-up", path, len(rows), minRows)
	}
	if err := rejectZeroColumns(rows); err != nil {
		return nil, err
	}

	observ.Log("dataset_loaded", map[string]any{
		"path": path,
		"rows": len(rows),
		"from": rows[0].Date.Format("2006-01-02"),
		"to":   rows[len(rows)-1].Date.Format("2006-01-02"),
	})
	return NewFrame(rows), nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// rejectZeroColumns fails the load when a required price column is entirely
// zero, which indicates a corrupt export rather than a quiet market.
func rejectZeroColumns(rows []Row) error {
	type probe struct {
		name string
		get  func(Row) float64
	}
	probes := []probe{
		{"Open", func(r Row) float64 { return r.Open }},
		{"High", func(r Row) float64 { return r.High }},
		{"Low", func(r Row) float64 { return r.Low }},
		{"Close", func(r Row) float64 { return r.Close }},
		{"Volume", func(r Row) float64 { return r.Volume }},
	}
	for _, p := range probes {
		allZero := true
		for _, row := range rows {
			if p.get(row) != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return fmt.Errorf("column %s is entirely zero-filled", p.name)
		}
	}
	return nil
}
