package validate

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"marketplace/internal/domain"
)

// MaxAmount bounds every price and stock figure so that rounding, line
// totals and sums stay well inside int64.
const MaxAmount = 1e12

// Amount accepts a JSON number or a numeric string. A nil *Amount means the
// field was absent.
type Amount struct {
	v float64
}

func NewAmount(v float64) *Amount { return &Amount{v: v} }

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Invalidf("%q is not a number", string(b))
	}
	if math.Abs(f) > MaxAmount {
		return domain.Invalidf("%s is out of range", string(b))
	}
	a.v = f
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v)
}

// Rounded is round(x), halves away from zero.
func (a Amount) Rounded() int64 { return int64(math.Round(a.v)) }

// NonNegative rounds a and rejects negative input.
func (a Amount) NonNegative(field string) (int64, error) {
	if a.v < 0 {
		return 0, domain.Invalidf("%s must not be negative", field)
	}
	if a.v > MaxAmount {
		return 0, domain.Invalidf("%s is out of range", field)
	}
	return a.Rounded(), nil
}

// Quantity rounds a and clamps it into [0, MaxAmount]. A nil amount yields
// def.
func Quantity(a *Amount, def int64) int64 {
	if a == nil {
		return def
	}
	switch {
	case a.v <= 0:
		return 0
	case a.v > MaxAmount:
		return MaxAmount
	}
	return a.Rounded()
}
