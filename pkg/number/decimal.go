package number

import (
	"github.com/shopspring/decimal"
)

// Precision fixed point precision for token amounts
const Precision int32 = 18

var unit = decimal.New(1, -Precision)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Floor truncate d to the fixed point precision
func Floor(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(Precision)
}

// Div floor(a / b) at fixed point precision, zero when b is zero
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, _ := a.QuoRem(b, Precision)
	return q
}

// DivCeil ceil(a / b) at fixed point precision, zero when b is zero
func DivCeil(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, r := a.QuoRem(b, Precision)
	if !r.IsZero() && a.Sign() == b.Sign() {
		q = q.Add(unit)
	}

	return q
}

// MulDiv floor(a * b / c) at fixed point precision
func MulDiv(a, b, c decimal.Decimal) decimal.Decimal {
	return Div(a.Mul(b), c)
}

// MulCeil ceil(a * b) at fixed point precision
func MulCeil(a, b decimal.Decimal) decimal.Decimal {
	return Ceil(a.Mul(b), Precision)
}
