// Package golden loads the CSV formation fixtures used to replay the
// engine's stop-limit and trailing-stop deciders against a broad set of
// OHLC/threshold orderings, mirroring the formation-CSV harness the
// original implementation's test suite was built around.
package golden

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// StopLimitRow is one formation from a stop-limit CSV fixture: a bar, a
// stop/limit pair, and the expected fill outcome for the stop trigger and
// the child limit.
type StopLimitRow struct {
	Formation              string
	Open, High, Low, Close decimal.Decimal
	Stop, Limit            decimal.Decimal
	StopFill, LimitFill    string
}

// LoadStopLimitCSV reads a stop-limit formation fixture. Expected header:
// Formation,Open,High,Low,Close,Stop,Limit,StopFill,LimitFill
func LoadStopLimitCSV(path string) ([]StopLimitRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, "Formation", "Open", "High", "Low", "Close", "Stop", "Limit", "StopFill", "LimitFill")
	if err != nil {
		return nil, fmt.Errorf("golden: %s: %w", path, err)
	}

	rows := make([]StopLimitRow, 0, len(records))
	for i, rec := range records {
		row := StopLimitRow{Formation: rec[idx["Formation"]]}
		var err error
		if row.Open, err = parseDecimal(rec[idx["Open"]]); err != nil {
			return nil, rowErr(path, i, "Open", err)
		}
		if row.High, err = parseDecimal(rec[idx["High"]]); err != nil {
			return nil, rowErr(path, i, "High", err)
		}
		if row.Low, err = parseDecimal(rec[idx["Low"]]); err != nil {
			return nil, rowErr(path, i, "Low", err)
		}
		if row.Close, err = parseDecimal(rec[idx["Close"]]); err != nil {
			return nil, rowErr(path, i, "Close", err)
		}
		if row.Stop, err = parseDecimal(rec[idx["Stop"]]); err != nil {
			return nil, rowErr(path, i, "Stop", err)
		}
		if row.Limit, err = parseDecimal(rec[idx["Limit"]]); err != nil {
			return nil, rowErr(path, i, "Limit", err)
		}
		row.StopFill = strings.TrimSpace(rec[idx["StopFill"]])
		row.LimitFill = strings.TrimSpace(rec[idx["LimitFill"]])
		rows = append(rows, row)
	}
	return rows, nil
}

// TrailingRow is one formation from a trailing-stop CSV fixture.
type TrailingRow struct {
	Formation              string
	Open, High, Low, Close decimal.Decimal
	TrailingDistance       *decimal.Decimal
	TrailingPercent        *decimal.Decimal
	CarriedExtremePrice    *decimal.Decimal
	StopFill, OrderFill    string
}

// LoadTrailingCSV reads a trailing-stop formation fixture. Expected header:
// Formation,Open,High,Low,Close,TrailingDistance,TrailingPercent,CarriedExtremePrice,StopFill,OrderFill
func LoadTrailingCSV(path string) ([]TrailingRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, "Formation", "Open", "High", "Low", "Close",
		"TrailingDistance", "TrailingPercent", "CarriedExtremePrice", "StopFill", "OrderFill")
	if err != nil {
		return nil, fmt.Errorf("golden: %s: %w", path, err)
	}

	rows := make([]TrailingRow, 0, len(records))
	for i, rec := range records {
		row := TrailingRow{Formation: rec[idx["Formation"]]}
		var err error
		if row.Open, err = parseDecimal(rec[idx["Open"]]); err != nil {
			return nil, rowErr(path, i, "Open", err)
		}
		if row.High, err = parseDecimal(rec[idx["High"]]); err != nil {
			return nil, rowErr(path, i, "High", err)
		}
		if row.Low, err = parseDecimal(rec[idx["Low"]]); err != nil {
			return nil, rowErr(path, i, "Low", err)
		}
		if row.Close, err = parseDecimal(rec[idx["Close"]]); err != nil {
			return nil, rowErr(path, i, "Close", err)
		}
		if row.TrailingDistance, err = parseOptionalDecimal(rec[idx["TrailingDistance"]]); err != nil {
			return nil, rowErr(path, i, "TrailingDistance", err)
		}
		if row.TrailingPercent, err = parseOptionalDecimal(rec[idx["TrailingPercent"]]); err != nil {
			return nil, rowErr(path, i, "TrailingPercent", err)
		}
		if row.CarriedExtremePrice, err = parseOptionalDecimal(rec[idx["CarriedExtremePrice"]]); err != nil {
			return nil, rowErr(path, i, "CarriedExtremePrice", err)
		}
		row.StopFill = strings.TrimSpace(rec[idx["StopFill"]])
		row.OrderFill = strings.TrimSpace(rec[idx["OrderFill"]])
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseFillCell parses a formation fixture's fill-outcome cell: "No fill",
// "Open (148)", "Stop (151)", or "Limit (149)". ok is false for "No fill".
func ParseFillCell(s string) (kind string, price decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "No fill") {
		return "", decimal.Zero, false
	}
	openParen := strings.IndexByte(s, '(')
	closeParen := strings.IndexByte(s, ')')
	if openParen < 0 || closeParen < 0 || closeParen < openParen {
		return "", decimal.Zero, false
	}
	kind = strings.TrimSpace(s[:openParen])
	priceStr := strings.TrimSpace(s[openParen+1 : closeParen])
	p, err := decimal.NewFromString(priceStr)
	if err != nil {
		return "", decimal.Zero, false
	}
	return kind, p, true
}

func readCSV(path string) (records [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("golden: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err = r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("golden: %s: read header: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("golden: %s: %w", path, err)
		}
		records = append(records, rec)
	}
	return records, header, nil
}

func columnIndex(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("missing column %q", w)
		}
	}
	return idx, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func rowErr(path string, i int, field string, err error) error {
	return fmt.Errorf("golden: %s: row %d: %s: %w", path, i+1, field, err)
}
