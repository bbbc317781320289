package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is a row identifier taken from a request. It accepts a JSON number or a
// numeric string and rejects anything that is not a positive integer.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	n, err := parseID(b)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

// Int64 returns the id as stored
func (id ID) Int64() int64 {
	return int64(id)
}

// ParseID parses an id from a query parameter
func ParseID(s string) (int64, error) {
	return parseID([]byte(strconv.Quote(s)))
}

func parseID(b []byte) (int64, error) {
	text, ok := scalarText(b)
	if !ok || text == "" {
		return 0, fmt.Errorf("id must be a positive integer, got %s", b)
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %s", b)
	}
	return n, nil
}

// NullID is an optional reference to another row. Null or an empty string
// clears the reference; any other non-id value is rejected.
type NullID struct {
	Set   bool
	Valid bool
	Int64 int64
}

func (n *NullID) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Valid = false
	n.Int64 = 0

	if text, ok := scalarText(b); isNullText(b) || (ok && text == "") {
		return nil
	}
	id, err := parseID(b)
	if err != nil {
		return err
	}
	n.Valid, n.Int64 = true, id
	return nil
}

// Ptr returns nil for a cleared reference
func (n NullID) Ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// NullInt is an optional integer field. Empty strings, null, NaN and text that
// does not parse as a number all decode to null rather than zero. Fractions
// are truncated toward zero.
type NullInt struct {
	Set   bool
	Valid bool
	Int64 int64
}

func (n *NullInt) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Int64, n.Valid = CoerceInt(b)
	return nil
}

func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Int64, 10)), nil
}

// Ptr returns nil for null
func (n NullInt) Ptr() *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// NullFloat is an optional real field with the same coercion as NullInt
type NullFloat struct {
	Set     bool
	Valid   bool
	Float64 float64
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Float64, n.Valid = CoerceFloat(b)
	return nil
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Float64, 'f', -1, 64)), nil
}

// Ptr returns nil for null
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// CoerceFloat reads a JSON number or numeric string; ok is false for anything else
func CoerceFloat(b []byte) (float64, bool) {
	text, ok := scalarText(b)
	if !ok || text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceInt is CoerceFloat truncated to an int64
func CoerceInt(b []byte) (int64, bool) {
	f, ok := CoerceFloat(b)
	if !ok || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// CoerceText reads a JSON string, trimmed. Null reads as empty.
func CoerceText(b []byte) (string, error) {
	if isNullText(b) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("must be a string")
	}
	return strings.TrimSpace(s), nil
}

// scalarText returns the trimmed text of a JSON number or string literal
func scalarText(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || isNullText(b) {
		return "", false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	if b[0] == '-' || (b[0] >= '0' && b[0] <= '9') {
		return string(b), true
	}
	return "", false
}

func isNullText(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
