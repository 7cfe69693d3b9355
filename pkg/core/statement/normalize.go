package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MissingText is the placeholder the provider renders for an empty cell.
const MissingText = "-"

var thousand = decimal.NewFromInt(1000)

// Normalize maps one cell to a Value. Raw text goes through NormalizeText;
// numbers that were already parsed pass through unchanged. Any other type
// is rejected rather than guessed at.
func Normalize(raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case string:
		return NormalizeText(v)
	case float64:
		return Number(v), nil
	case float32:
		return Number(float64(v)), nil
	case int:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case int32:
		return Number(float64(v)), nil
	}
	return Missing, &Error{
		Op:     "normalize",
		Text:   fmt.Sprint(raw),
		Detail: fmt.Sprintf("unsupported cell type %T", raw),
		Err:    ErrUnparseableValue,
	}
}

// NormalizeText parses a cell's text:
//
//	"-"        -> Missing
//	"1,234"    -> 1234    (no decimal point: whole number)
//	"1,234.5"  -> 1234.5
//	"1.2K"     -> 1200
//	"K"        -> 1000
//
// Anything else fails with ErrUnparseableValue.
func NormalizeText(raw string) (Value, error) {
	text := strings.TrimSpace(raw)
	if text == MissingText {
		return Missing, nil
	}

	s := strings.ReplaceAll(text, ",", "")
	scale := decimal.NewFromInt(1)
	if strings.HasSuffix(s, "K") {
		s = strings.TrimSuffix(s, "K")
		if s == "" {
			return Number(1000), nil
		}
		scale = thousand
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Missing, &Error{Op: "normalize", Text: raw, Detail: err.Error(), Err: ErrUnparseableValue}
	}
	if !strings.Contains(s, ".") {
		d = d.Truncate(0)
	}

	f, _ := d.Mul(scale).Float64()
	return Number(f), nil
}
