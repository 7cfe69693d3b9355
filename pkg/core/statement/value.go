package statement

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is a normalized cell: either a number or explicitly missing.
// The zero Value is Missing.
type Value struct {
	num   float64
	valid bool
}

// Missing is the normalized form of the provider's "-" placeholder.
var Missing = Value{}

// Number wraps f as a present value.
func Number(f float64) Value {
	return Value{num: f, valid: true}
}

// IsMissing reports whether the cell carried no data.
func (v Value) IsMissing() bool { return !v.valid }

// Float returns the number and whether it is present.
func (v Value) Float() (float64, bool) { return v.num, v.valid }

// String renders the value for flat-file export; missing cells are empty.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.num)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Number(f)
	return nil
}
