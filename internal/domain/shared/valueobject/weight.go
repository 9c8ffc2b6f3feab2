package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WeightPrecision is the number of decimal places kept for gold weights.
// Three places give milligram precision.
const WeightPrecision int32 = 3

// weightTolerance is the epsilon below which a remaining weight is treated
// as fully settled, compensating for quantization at conversion boundaries.
var weightTolerance = decimal.RequireFromString("0.001")

// WeightTolerance returns the settlement tolerance (0.001 g).
func WeightTolerance() decimal.Decimal {
	return weightTolerance
}

// Weight is a value object representing a gold weight in grams.
// It is immutable - all operations return new Weight instances.
// Arithmetic is performed on arbitrary-precision decimals; quantization to
// milligram precision happens only through Quantize, never implicitly.
type Weight struct {
	grams decimal.Decimal
}

// NewWeight creates a Weight from a decimal number of grams.
func NewWeight(grams decimal.Decimal) (Weight, error) {
	if grams.IsNegative() {
		return Weight{}, errors.New("weight cannot be negative")
	}
	return Weight{grams: grams}, nil
}

// NewWeightFromString creates a Weight from a string representation.
func NewWeightFromString(grams string) (Weight, error) {
	d, err := decimal.NewFromString(grams)
	if err != nil {
		return Weight{}, fmt.Errorf("invalid weight string: %w", err)
	}
	return NewWeight(d)
}

// MustNewWeight creates a Weight and panics on error.
func MustNewWeight(grams decimal.Decimal) Weight {
	w, err := NewWeight(grams)
	if err != nil {
		panic(err)
	}
	return w
}

// MustNewWeightFromString creates a Weight from a string and panics on error.
func MustNewWeightFromString(grams string) Weight {
	w, err := NewWeightFromString(grams)
	if err != nil {
		panic(err)
	}
	return w
}

// ZeroWeight returns a zero weight.
func ZeroWeight() Weight {
	return Weight{grams: decimal.Zero}
}

// Grams returns the decimal number of grams.
func (w Weight) Grams() decimal.Decimal {
	return w.grams
}

// IsZero returns true if the weight is zero.
func (w Weight) IsZero() bool {
	return w.grams.IsZero()
}

// IsPositive returns true if the weight is positive.
func (w Weight) IsPositive() bool {
	return w.grams.IsPositive()
}

// Quantize rounds the weight to milligram precision using round-half-up.
// decimal.Round rounds half away from zero, which is identical to half-up
// for the non-negative values a Weight can hold.
func (w Weight) Quantize() Weight {
	return Weight{grams: w.grams.Round(WeightPrecision)}
}

// Add returns a new Weight with the sum of both weights.
func (w Weight) Add(other Weight) Weight {
	return Weight{grams: w.grams.Add(other.grams)}
}

// Sub returns a new Weight with the difference.
// Returns an error if the result would be negative.
func (w Weight) Sub(other Weight) (Weight, error) {
	result := w.grams.Sub(other.grams)
	if result.IsNegative() {
		return Weight{}, errors.New("resulting weight would be negative")
	}
	return Weight{grams: result}, nil
}

// MustSub subtracts weights, panics if the result would be negative.
func (w Weight) MustSub(other Weight) Weight {
	result, err := w.Sub(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MulInt returns the weight multiplied by an integer factor.
func (w Weight) MulInt(factor int64) Weight {
	return Weight{grams: w.grams.Mul(decimal.NewFromInt(factor))}
}

// DivInt returns the weight divided by an integer divisor, unquantized.
func (w Weight) DivInt(divisor int64) (Weight, error) {
	if divisor <= 0 {
		return Weight{}, errors.New("divisor must be positive")
	}
	return Weight{grams: w.grams.Div(decimal.NewFromInt(divisor))}, nil
}

// Equal returns true if both weights are numerically equal.
func (w Weight) Equal(other Weight) bool {
	return w.grams.Equal(other.grams)
}

// LessThan returns true if this weight is less than the other.
func (w Weight) LessThan(other Weight) bool {
	return w.grams.LessThan(other.grams)
}

// GreaterThan returns true if this weight is greater than the other.
func (w Weight) GreaterThan(other Weight) bool {
	return w.grams.GreaterThan(other.grams)
}

// WithinTolerance returns true if the weight is at or below the settlement
// tolerance, i.e. it counts as nothing left to pay.
func (w Weight) WithinTolerance() bool {
	return w.grams.LessThanOrEqual(weightTolerance)
}

// String returns the weight formatted at milligram precision.
func (w Weight) String() string {
	return w.grams.StringFixed(WeightPrecision)
}

// MarshalJSON implements json.Marshaler.
func (w Weight) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.grams.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Weight) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid weight: %w", err)
	}
	if d.IsNegative() {
		return errors.New("weight cannot be negative")
	}
	w.grams = d
	return nil
}

// Value implements driver.Valuer for database storage.
func (w Weight) Value() (driver.Value, error) {
	return w.grams.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (w *Weight) Scan(value any) error {
	if value == nil {
		w.grams = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		w.grams = decimal.NewFromFloat(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Weight", value)
	}

	val, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	w.grams = val
	return nil
}
