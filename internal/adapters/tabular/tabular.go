// Package tabular converts CSV and JSON documents to raw transaction rows and
// renders result tables back to CSV or JSON.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/partyrisk/internal/domain/model"
)

// Formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Errors.
var (
	ErrFormat = errors.New("unsupported format")
	ErrInput  = errors.New("invalid input document")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
}

// Read parses r in the given format.
func Read(r io.Reader, format string) ([]model.RawTransaction, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrFormat, format)
}

// ReadCSV parses a CSV document with a header row. Cells stay strings;
// blank lines are skipped.
func ReadCSV(r io.Reader) ([]model.RawTransaction, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", ErrInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []model.RawTransaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInput, err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrInput, line, len(rec), len(header))
		}
		row := make(model.RawTransaction, len(header))
		for i, v := range rec {
			if header[i] != "" {
				row[header[i]] = strings.TrimSpace(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadJSON parses either an array of objects or an object with a "rows"
// array. Numbers keep their literal text as json.Number.
func ReadJSON(r io.Reader) ([]model.RawTransaction, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	raw = bytes.TrimSpace(raw)

	var rows []model.RawTransaction
	switch {
	case len(raw) > 0 && raw[0] == '[':
		if err := decodeNumbers(raw, &rows); err != nil {
			return nil, err
		}
	case len(raw) > 0 && raw[0] == '{':
		var doc struct {
			Rows []model.RawTransaction `json:"rows"`
		}
		if err := decodeNumbers(raw, &doc); err != nil {
			return nil, err
		}
		rows = doc.Rows
	default:
		return nil, fmt.Errorf("%w: expected an array or an object with rows", ErrInput)
	}
	return rows, nil
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInput, err)
	}
	return nil
}

// Write renders rows in the given format.
func Write(w io.Writer, rows []model.ResultRow, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}

// WriteCSV renders the result table with its standard header.
func WriteCSV(w io.Writer, rows []model.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.TableColumns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.PartyName,
			formatFloat(r.DelayProbability),
			formatFloat(r.ExpectedDelayDays),
			formatFloat(r.RiskScore),
			string(r.RiskTier),
			r.Recommendation,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON renders the result table as an indented JSON array.
func WriteJSON(w io.Writer, rows []model.ResultRow) error {
	if rows == nil {
		rows = []model.ResultRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
