package numeric

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// ErrOverflow reports an arithmetic result exceeding 256 bits.
	ErrOverflow = errors.New("numeric: arithmetic overflow")
	// ErrDivisionByZero reports a division with a zero divisor.
	ErrDivisionByZero = errors.New("numeric: division by zero")
)

// BasisPointScale is the parts-per-10000 denominator shared by fee rates,
// coverage ratios and deviation thresholds.
var BasisPointScale = FromUint64(10_000)

// Uint256 is an unsigned 256-bit integer with checked arithmetic. The zero
// value is zero and ready to use; values are copied freely.
//
// Add/Mul fail with ErrOverflow instead of wrapping, Div fails with
// ErrDivisionByZero instead of returning zero. Those two contracts are what
// the payout and loss arithmetic rely on: a wrapped intermediate would
// silently corrupt a financial result.
type Uint256 struct {
	i uint256.Int
}

// Zero is the additive identity.
var Zero = Uint256{}

// FromUint64 widens a machine word.
func FromUint64(v uint64) Uint256 {
	var x Uint256
	x.i.SetUint64(v)
	return x
}

// FromBig converts a big.Int. Negative values and values wider than 256 bits
// are rejected with ErrOverflow.
func FromBig(b *big.Int) (Uint256, error) {
	if b == nil {
		return Zero, nil
	}
	if b.Sign() < 0 {
		return Zero, fmt.Errorf("negative value %s: %w", b, ErrOverflow)
	}
	var x Uint256
	if x.i.SetFromBig(b) {
		return Zero, fmt.Errorf("value %s exceeds 256 bits: %w", b, ErrOverflow)
	}
	return x, nil
}

// FromBytes interprets b as a big-endian unsigned integer.
func FromBytes(b []byte) (Uint256, error) {
	if len(b) > 32 {
		return Zero, fmt.Errorf("%d bytes exceed 256 bits: %w", len(b), ErrOverflow)
	}
	var x Uint256
	x.i.SetBytes(b)
	return x, nil
}

// FromBytes32 interprets a 32-byte word (e.g. a hash digest) as big-endian.
func FromBytes32(b [32]byte) Uint256 {
	var x Uint256
	x.i.SetBytes32(b[:])
	return x
}

// FromDecimal parses a base-10 string.
func FromDecimal(s string) (Uint256, error) {
	var x Uint256
	if err := x.i.SetFromDecimal(s); err != nil {
		return Zero, fmt.Errorf("parse %q: %w", s, err)
	}
	return x, nil
}

// Add returns x+y or ErrOverflow.
func (x Uint256) Add(y Uint256) (Uint256, error) {
	var z Uint256
	if _, overflow := z.i.AddOverflow(&x.i, &y.i); overflow {
		return Zero, fmt.Errorf("%s + %s: %w", x.i.Dec(), y.i.Dec(), ErrOverflow)
	}
	return z, nil
}

// SubSat returns x-y, clamped to zero when y > x. Saturation is deliberate:
// "loss below deductible" style business rules read a negative difference
// as zero, never as an error.
func (x Uint256) SubSat(y Uint256) Uint256 {
	var z Uint256
	if _, underflow := z.i.SubOverflow(&x.i, &y.i); underflow {
		return Zero
	}
	return z
}

// Mul returns x*y or ErrOverflow.
func (x Uint256) Mul(y Uint256) (Uint256, error) {
	var z Uint256
	if _, overflow := z.i.MulOverflow(&x.i, &y.i); overflow {
		return Zero, fmt.Errorf("%s * %s: %w", x.i.Dec(), y.i.Dec(), ErrOverflow)
	}
	return z, nil
}

// Div returns x/y truncated toward zero, or ErrDivisionByZero.
func (x Uint256) Div(y Uint256) (Uint256, error) {
	if y.i.IsZero() {
		return Zero, fmt.Errorf("%s / 0: %w", x.i.Dec(), ErrDivisionByZero)
	}
	var z Uint256
	z.i.Div(&x.i, &y.i)
	return z, nil
}

// Cmp returns -1, 0 or +1; Uint256 is totally ordered.
func (x Uint256) Cmp(y Uint256) int {
	return x.i.Cmp(&y.i)
}

// IsZero reports whether x == 0.
func (x Uint256) IsZero() bool {
	return x.i.IsZero()
}

// Uint64 narrows to a machine word for loop bounds and counts. Values that
// do not fit fail with ErrOverflow.
func (x Uint256) Uint64() (uint64, error) {
	v, overflow := x.i.Uint64WithOverflow()
	if overflow {
		return 0, fmt.Errorf("value %s exceeds 64 bits: %w", x.i.Dec(), ErrOverflow)
	}
	return v, nil
}

// Big returns a fresh big.Int copy.
func (x Uint256) Big() *big.Int {
	return x.i.ToBig()
}

// String renders base-10.
func (x Uint256) String() string {
	return x.i.Dec()
}

// MarshalText renders base-10, so JSON carries exact decimal strings.
func (x Uint256) MarshalText() ([]byte, error) {
	return []byte(x.i.Dec()), nil
}

// UnmarshalText parses base-10.
func (x *Uint256) UnmarshalText(b []byte) error {
	return x.i.SetFromDecimal(string(b))
}
