package columns

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/partyrisk/internal/domain/model"
)

var zero = decimal.Zero

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

// cleanNumber strips whitespace and thousands separators.
func cleanNumber(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

func parseFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		return parseFloat(t.String())
	case decimal.Decimal:
		f = t.InexactFloat64()
	case string:
		var err error
		f, err = strconv.ParseFloat(cleanNumber(t), 64)
		if err != nil {
			return 0, errNotNumber
		}
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", errNotNumber, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case string:
		d, err := decimal.NewFromString(cleanNumber(t))
		if err != nil {
			return zero, errNotNumber
		}
		return d, nil
	case json.Number:
		return parseDecimal(t.String())
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	}
	f, err := parseFloat(v)
	if err != nil {
		return zero, err
	}
	return decimal.NewFromFloat(f), nil
}

func parseBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "1", "1.0":
			return true, nil
		case "false", "f", "no", "n", "0", "0.0":
			return false, nil
		}
		return false, errNotBool
	}
	f, err := parseFloat(v)
	if err != nil {
		return false, errNotBool
	}
	switch f {
	case 1:
		return true, nil
	case 0:
		return false, nil
	}
	return false, errNotBool
}

func (m *Mapping) decimalField(row int, raw model.RawTransaction, canonical string, required bool) (decimal.Decimal, error) {
	v, col, ok := m.value(raw, canonical)
	if !ok {
		if required {
			return zero, &ParseError{Row: row, Field: canonical, Err: errMissingValue}
		}
		return zero, nil
	}
	d, err := parseDecimal(v)
	if err != nil {
		return zero, &ParseError{Row: row, Field: canonical, Column: col, Value: v, Err: err}
	}
	return d, nil
}
