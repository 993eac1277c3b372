package decimal

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var (
	// ErrOverflow is returned when a result does not fit into 256 bits.
	ErrOverflow = errors.New("decimal: overflow")
	// ErrUnderflow is returned when a subtraction would drop below zero.
	ErrUnderflow = errors.New("decimal: underflow")
	// ErrDivideByZero is returned when a ratio or inverse has a zero divisor.
	ErrDivideByZero  = errors.New("decimal: divide by zero")
	errInvalidNumber = errors.New("decimal: invalid number")
)

// Uint is an unsigned 256-bit integer amount with checked arithmetic. The zero
// value is a valid zero amount and values are safe to copy.
type Uint struct {
	v uint256.Int
}

// NewUint returns the amount for the provided machine integer.
func NewUint(x uint64) Uint {
	var u Uint
	u.v.SetUint64(x)
	return u
}

// ZeroUint returns the zero amount.
func ZeroUint() Uint { return Uint{} }

// ParseUint parses a base-10 integer string.
func ParseUint(s string) (Uint, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Uint{}, fmt.Errorf("%w: empty amount", errInvalidNumber)
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return Uint{}, fmt.Errorf("%w: %q", errInvalidNumber, s)
		}
	}
	var u Uint
	if err := u.v.SetFromDecimal(trimmed); err != nil {
		return Uint{}, fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return u, nil
}

// MustParseUint is ParseUint that panics on malformed input. Intended for
// constants and tests.
func MustParseUint(s string) Uint {
	u, err := ParseUint(s)
	if err != nil {
		panic(err)
	}
	return u
}

// UintFromBig converts a big integer, rejecting negatives and values wider
// than 256 bits.
func UintFromBig(b *big.Int) (Uint, error) {
	if b == nil {
		return Uint{}, nil
	}
	if b.Sign() < 0 {
		return Uint{}, ErrUnderflow
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Uint{}, ErrOverflow
	}
	return Uint{v: *v}, nil
}

// maxPow10 is the largest exponent whose power of ten fits into 256 bits.
const maxPow10 = 77

// CheckedPow10 returns 10^exp or ErrOverflow when the power does not fit.
func CheckedPow10(exp uint8) (Uint, error) {
	if exp > maxPow10 {
		return Uint{}, ErrOverflow
	}
	return Pow10(exp), nil
}

// Pow10 returns 10^exp. The exponent must not exceed 77.
func Pow10(exp uint8) Uint {
	var u Uint
	u.v.Exp(uint256.NewInt(10), uint256.NewInt(uint64(exp)))
	return u
}

// Big returns the amount as a freshly allocated big integer.
func (u Uint) Big() *big.Int { return u.v.ToBig() }

// Uint64 returns the low 64 bits and whether the value fits.
func (u Uint) Uint64() (uint64, bool) { return u.v.Uint64(), u.v.IsUint64() }

func (u Uint) IsZero() bool { return u.v.IsZero() }

// Cmp compares u and x and returns -1, 0 or +1.
func (u Uint) Cmp(x Uint) int { return u.v.Cmp(&x.v) }

func (u Uint) LT(x Uint) bool { return u.v.Lt(&x.v) }
func (u Uint) GT(x Uint) bool { return u.v.Gt(&x.v) }

func (u Uint) Add(x Uint) (Uint, error) {
	var out Uint
	if _, overflow := out.v.AddOverflow(&u.v, &x.v); overflow {
		return Uint{}, ErrOverflow
	}
	return out, nil
}

func (u Uint) Sub(x Uint) (Uint, error) {
	var out Uint
	if _, underflow := out.v.SubOverflow(&u.v, &x.v); underflow {
		return Uint{}, fmt.Errorf("%w: %s - %s", ErrUnderflow, u, x)
	}
	return out, nil
}

func (u Uint) Mul(x Uint) (Uint, error) {
	var out Uint
	if _, overflow := out.v.MulOverflow(&u.v, &x.v); overflow {
		return Uint{}, ErrOverflow
	}
	return out, nil
}

// MulRatio returns floor(u * num / den) computed through a 512-bit
// intermediate.
func (u Uint) MulRatio(num, den Uint) (Uint, error) {
	if den.IsZero() {
		return Uint{}, ErrDivideByZero
	}
	var out Uint
	if _, overflow := out.v.MulDivOverflow(&u.v, &num.v, &den.v); overflow {
		return Uint{}, ErrOverflow
	}
	return out, nil
}

// MulDecimal returns floor(u * d).
func (u Uint) MulDecimal(d Decimal) (Uint, error) {
	return u.MulRatio(d.atomics, fractional)
}

// Quo returns floor(u / x).
func (u Uint) Quo(x Uint) (Uint, error) {
	if x.IsZero() {
		return Uint{}, ErrDivideByZero
	}
	var out Uint
	out.v.Div(&u.v, &x.v)
	return out, nil
}

// Min returns the smaller of u and x.
func (u Uint) Min(x Uint) Uint {
	if u.LT(x) {
		return u
	}
	return x
}

func (u Uint) String() string { return u.v.Dec() }

// MarshalJSON encodes the amount as a quoted decimal string so values wider
// than 53 bits survive JavaScript clients.
func (u Uint) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

func (u *Uint) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	parsed, err := ParseUint(text)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalText allows amounts in TOML and YAML documents.
func (u Uint) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *Uint) UnmarshalText(text []byte) error {
	parsed, err := ParseUint(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (u Uint) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, u.v.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (u *Uint) DecodeRLP(s *rlp.Stream) error {
	b, err := s.BigInt()
	if err != nil {
		return err
	}
	decoded, err := UintFromBig(b)
	if err != nil {
		return err
	}
	*u = decoded
	return nil
}

// Rescale converts an amount expressed with from fractional digits into one
// expressed with to fractional digits. Scaling down truncates.
func Rescale(amount Uint, from, to uint8) (Uint, error) {
	switch {
	case from == to:
		return amount, nil
	case from > to:
		factor, err := CheckedPow10(from - to)
		if err != nil {
			return Uint{}, err
		}
		return amount.Quo(factor)
	default:
		factor, err := CheckedPow10(to - from)
		if err != nil {
			return Uint{}, err
		}
		return amount.Mul(factor)
	}
}

// QuoDecimal returns floor(u / d).
func (u Uint) QuoDecimal(d Decimal) (Uint, error) {
	if d.IsZero() {
		return Uint{}, ErrDivideByZero
	}
	return u.MulRatio(fractional, d.atomics)
}
