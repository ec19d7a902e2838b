package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Int is an integer request field that also accepts a quoted decimal,
// so {"count": 3} and {"count": "3"} decode the same.
type Int int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int) UnmarshalJSON(b []byte) error {
	s, quoted, err := unquoteNumber(b)
	if err != nil {
		return err
	}
	if !quoted {
		var v int
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*n = Int(v)
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("model: %q is not an integer", s)
	}
	*n = Int(v)
	return nil
}

// Float is a float request field that also accepts a quoted decimal.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	s, quoted, err := unquoteNumber(b)
	if err != nil {
		return err
	}
	if !quoted {
		var v float64
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("model: %q is not a number", s)
	}
	*f = Float(v)
	return nil
}

// unquoteNumber returns the trimmed contents of a JSON string literal.
// quoted is false when b is not a string, in which case s is empty.
func unquoteNumber(b []byte) (s string, quoted bool, err error) {
	if len(b) == 0 || b[0] != '"' {
		return "", false, nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return "", true, err
	}
	return strings.TrimSpace(s), true, nil
}
