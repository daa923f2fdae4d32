package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value stored with two decimal places. It accepts
// JSON numbers as well as numeric strings.
type Amount float64

// RoundCents rounds v to two decimal places, half away from zero. The
// intermediate rounding drops binary noise so that 499.995 becomes 500.00
// rather than 499.99.
func RoundCents(v float64) float64 {
	scaled := math.Round(v*100*1e6) / 1e6
	return math.Round(scaled) / 100
}

// Rounded returns a rounded to cents.
func (a Amount) Rounded() Amount {
	return Amount(RoundCents(float64(a)))
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid amount %q", raw)
	}
	*a = Amount(v)
	return nil
}
