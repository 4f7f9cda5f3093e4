package conv

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// ErrOverflow is wrapped by every conversion or arithmetic failure.
var ErrOverflow = errors.New("integer overflow")

// Int64ToUint16 converts int64 to uint16 safely.
func Int64ToUint16(v int64) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint16", ErrOverflow, v)
	}
	return uint16(v), nil
}

// Int64ToUint32 converts int64 to uint32 safely.
func Int64ToUint32(v int64) (uint32, error) {
	if v < 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint32", ErrOverflow, v)
	}
	return uint32(v), nil
}

// Int64ToInt converts int64 to int safely (relevant on 32-bit platforms).
func Int64ToInt(v int64) (int, error) {
	if v > math.MaxInt || v < math.MinInt {
		return 0, fmt.Errorf("%w: %d cannot be converted to int", ErrOverflow, v)
	}
	return int(v), nil
}

// Uint64ToInt64 converts uint64 to int64 safely.
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d cannot be converted to int64 (too large)", ErrOverflow, v)
	}
	return int64(v), nil
}

// AddInt64 returns a+b for non-negative operands, failing instead of wrapping.
func AddInt64(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand %d + %d", ErrOverflow, a, b)
	}
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("%w: %d + %d exceeds int64", ErrOverflow, a, b)
	}
	return a + b, nil
}

// MulInt64 returns a*b for non-negative operands, failing instead of wrapping.
func MulInt64(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand %d * %d", ErrOverflow, a, b)
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d * %d exceeds int64", ErrOverflow, a, b)
	}
	return int64(lo), nil
}

// NextCapacity doubles current until it is at least required.
// A non-positive current starts from required.
func NextCapacity(current, required int64) (int64, error) {
	if required < 0 {
		return 0, fmt.Errorf("%w: negative capacity %d", ErrOverflow, required)
	}
	if current <= 0 {
		return required, nil
	}
	next := current
	for next < required {
		doubled, err := MulInt64(next, 2)
		if err != nil {
			// Doubling overflowed; the exact requirement may still be representable.
			return required, nil
		}
		next = doubled
	}
	return next, nil
}
