package diff

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance selects how numbers are compared.
// Rounding modes consider two numbers equal when they round to the same value at their precision.
type Tolerance int

// Tolerance modes, in increasing strictness. The zero value rounds to the nearest integer.
const (
	RoundInteger Tolerance = iota
	OneDecimal
	TwoDecimals
	Exact
)

var errUnknownTolerance = errors.New("unknown tolerance (want: exact, integer, one-decimal, two-decimals)")

// ParseTolerance converts a tolerance name into a Tolerance.
func ParseTolerance(name string) (Tolerance, error) {
	switch name {
	case "", "integer":
		return RoundInteger, nil
	case "one-decimal":
		return OneDecimal, nil
	case "two-decimals":
		return TwoDecimals, nil
	case "exact":
		return Exact, nil
	default:
		return RoundInteger, fmt.Errorf("%w: %q", errUnknownTolerance, name)
	}
}

func (t Tolerance) String() string {
	switch t {
	case RoundInteger:
		return "integer"
	case OneDecimal:
		return "one-decimal"
	case TwoDecimals:
		return "two-decimals"
	case Exact:
		return "exact"
	default:
		return fmt.Sprintf("tolerance(%d)", int(t))
	}
}

// Round returns x at the precision of the tolerance, rounding half to even.
func (t Tolerance) Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	rounded := x
	if t != Exact {
		rounded = scalar.RoundEven(x, int(t))
	}

	if rounded == 0 {
		// Fold negative zero.
		return 0
	}

	return rounded
}

func (t Tolerance) numbersEqual(left, right any) bool {
	li, lok := asInt(left)
	ri, rok := asInt(right)

	switch {
	case lok && rok:
		return li == ri
	case lok:
		return t.intEqual(li, right)
	case rok:
		return t.intEqual(ri, left)
	}

	lf, rf := t.Round(asFloat(left)), t.Round(asFloat(right))
	if math.IsNaN(lf) && math.IsNaN(rf) {
		return true
	}

	return lf == rf
}

// intEqual compares an integer with a non-integer number without going through float64,
// which cannot hold every int64 and would make equality intransitive.
func (t Tolerance) intEqual(integer int64, other any) bool {
	rounded := t.Round(asFloat(other))
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) || rounded != math.Trunc(rounded) {
		return false
	}

	if rounded >= math.MaxInt64 || rounded < math.MinInt64 {
		return false
	}

	return int64(rounded) == integer
}
