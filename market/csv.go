package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSV files carry one bar per row:
//
//	Timestamp,Open,High,Low,Close,Volume
//
// The header row is required. Header names are matched case-insensitively.
var csvHeader = []string{"Timestamp", "Open", "High", "Low", "Close", "Volume"}

// TimeLayout is the timestamp format written by WriteCSV.
const TimeLayout = "2006-01-02 15:04:05"

var timeLayouts = []string{
	TimeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
}

// ReadCSV parses bars from r.
func ReadCSV(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read bars: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var bars []Bar
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// LoadCSV reads a bar file from disk.
func LoadCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// WriteCSV writes bars with a header row.
func WriteCSV(w io.Writer, bars []Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		err := cw.Write([]string{
			b.Time.UTC().Format(TimeLayout),
			f(b.Open),
			f(b.High),
			f(b.Low),
			f(b.Close),
			f(b.Volume),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes bars to path, replacing any existing file.
func SaveCSV(path string, bars []Bar) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(fh, bars); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// ParseTime accepts the timestamp formats found in bar files.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

func checkHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("read bars: header has %d columns, want %d", len(header), len(csvHeader))
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return fmt.Errorf("read bars: column %d is %q, want %q", i, header[i], name)
		}
	}
	return nil
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) != len(csvHeader) {
		return Bar{}, fmt.Errorf("got %d fields, want %d", len(row), len(csvHeader))
	}

	t, err := ParseTime(row[0])
	if err != nil {
		return Bar{}, err
	}

	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad %s %q: %w", strings.ToLower(csvHeader[i+1]), row[i+1], err)
		}
		vals[i] = v
	}

	return Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
