package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string `gorm:"size:120;not null;index" json:"name"`
	Description string `gorm:"size:500;not null" json:"description"`
	Price       Number `gorm:"type:varchar(64)" json:"price"`
	Quantity    Number `gorm:"type:varchar(64)" json:"quantity"`
}

func (Product) TableName() string { return "mirrored_products" }

// UnmarshalJSON accepts the id as a JSON integer, an integral float or a
// quoted integer. An id that is none of those decodes as 0 so one bad record
// does not fail a whole list.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		ID json.RawMessage `json:"id"`
		*plain
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.ID = decodeID(aux.ID)
	return nil
}

func decodeID(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
		text = strings.TrimSpace(text)
	}
	if id, err := strconv.ParseInt(text, 10, 64); err == nil {
		return id
	}
	f := NumberFromString(text).Float()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0
	}
	return int64(f)
}

// Number is a numeric product attribute kept in the textual form the backend
// sent it. Values that do not parse evaluate to NaN instead of failing the
// whole record.
type Number struct {
	raw string
}

func NumberFromFloat(v float64) Number {
	return Number{raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

func NumberFromInt(v int64) Number {
	return Number{raw: strconv.FormatInt(v, 10)}
}

func NumberFromString(v string) Number {
	return Number{raw: strings.TrimSpace(v)}
}

func (n Number) String() string { return n.raw }

// Float returns the parsed value, or NaN when the text is empty or not a
// number. Out-of-range values saturate to an infinity. The only infinity
// spelling accepted is "Infinity" with an optional sign; Go's "inf" and "nan"
// forms are not numbers here.
func (n Number) Float() float64 {
	if n.raw == "" {
		return math.NaN()
	}
	body, sign := n.raw, 1
	switch body[0] {
	case '-':
		body, sign = body[1:], -1
	case '+':
		body = body[1:]
	}
	if body == "Infinity" {
		return math.Inf(sign)
	}
	lower := strings.ToLower(body)
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(n.raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func (n Number) Valid() bool { return !math.IsNaN(n.Float()) }

// Format2 renders the value with two decimals.
func (n Number) Format2() string {
	f := n.Float()
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.raw == "" {
		return []byte("null"), nil
	}
	f := n.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(n.raw)
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		n.raw = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.raw = strings.TrimSpace(s)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		n.raw = string(data)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		n.raw = num.String()
		return nil
	}
}

func (n Number) Value() (driver.Value, error) {
	return n.raw, nil
}

func (n *Number) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.raw = ""
	case string:
		n.raw = v
	case []byte:
		n.raw = string(v)
	case int64:
		n.raw = strconv.FormatInt(v, 10)
	case float64:
		n.raw = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("scan number: unsupported type %T", src)
	}
	return nil
}
