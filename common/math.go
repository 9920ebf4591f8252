package common

import (
	"errors"
	"math"
	"math/bits"
)

// BasisPointsDenominator is the number of basis points in 100%.
const BasisPointsDenominator = 10_000

var (
	// ErrOverflow is returned when the result of an addition or a
	// multiplication does not fit into 64 bits.
	ErrOverflow = errors.New("arithmetic overflow occurred")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("arithmetic underflow occurred")
	// ErrDivisionByZero is returned by Div for a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
)

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b or ErrUnderflow.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// Mul returns a*b or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// Div returns a/b truncated toward zero.
func Div(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// AddInt64 is Add for signed timestamps. Both directions of overflow are
// reported as ErrOverflow.
func AddInt64(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// BasisPoints returns floor(amount * bps / 10000). The product is computed in
// 64 bits, so amounts above MaxUint64/bps fail with ErrOverflow.
func BasisPoints(amount, bps uint64) (uint64, error) {
	p, err := Mul(amount, bps)
	if err != nil {
		return 0, err
	}
	return Div(p, BasisPointsDenominator)
}
