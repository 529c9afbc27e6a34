package atcf

import (
	"math"
	"strconv"
	"strings"
)

// nullInt decodes a nullable integer cell. Empty cells and not-a-number
// markers decode to nil. Some decks encode integer cells as floats
// ("34.0"), so the raw value is parsed as a float and rounded before the
// integer conversion.
func nullInt(cell string) (*int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, err
	}
	n := int(math.Round(f))
	return &n, nil
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

// Quantity is a magnitude paired with a unit label. Values arriving from
// unit-aware upstreams are unwrapped to their bare magnitude by a single
// typed conversion step before any generic normalization.
type Quantity struct {
	Magnitude float64
	Unit      string
}

// Round returns the bare magnitude rounded to digits decimal places,
// discarding the unit.
func (q Quantity) Round(digits int) float64 {
	return roundTo(q.Magnitude, digits)
}

// Int returns the bare magnitude rounded to the nearest integer.
func (q Quantity) Int() int {
	return int(math.Round(q.Magnitude))
}

func (q Quantity) String() string {
	s := strconv.FormatFloat(q.Magnitude, 'f', -1, 64)
	if q.Unit == "" {
		return s
	}
	return s + " " + q.Unit
}
