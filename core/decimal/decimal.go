// Package decimal implements deterministic fixed-point arithmetic for ledger
// amounts and prices. Decimal carries 18 fractional digits; products and
// quotients go through a 512-bit intermediate before truncating back to 256
// bits so no precision is lost on the way.
package decimal

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
)

// Places is the number of fractional digits carried by a Decimal.
const Places = 18

var (
	fractional        = Pow10(Places)
	fractionalSquared = mustMul(fractional, fractional)
)

func mustMul(a, b Uint) Uint {
	out, err := a.Mul(b)
	if err != nil {
		panic(err)
	}
	return out
}

// Decimal is an unsigned fixed-point number with 18 fractional digits. The
// zero value is zero.
type Decimal struct {
	atomics Uint
}

// Zero returns 0.
func Zero() Decimal { return Decimal{} }

// One returns 1.
func One() Decimal { return Decimal{atomics: fractional} }

// FromAtomics builds a decimal from its raw representation (value * 10^18).
func FromAtomics(atomics Uint) Decimal { return Decimal{atomics: atomics} }

// Percent returns n/100.
func Percent(n uint64) Decimal {
	d, _ := FromRatio(NewUint(n), NewUint(100))
	return d
}

// Permille returns n/1000.
func Permille(n uint64) Decimal {
	d, _ := FromRatio(NewUint(n), NewUint(1000))
	return d
}

// FromRatio returns floor(num/den) with 18 digits of precision.
func FromRatio(num, den Uint) (Decimal, error) {
	if den.IsZero() {
		return Decimal{}, ErrDivideByZero
	}
	atomics, err := num.MulRatio(fractional, den)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{atomics: atomics}, nil
}

// MustFromRatio is FromRatio that panics on a zero denominator.
func MustFromRatio(num, den uint64) Decimal {
	d, err := FromRatio(NewUint(num), NewUint(den))
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDecimal parses strings such as "1", "0.157284" or "12.5".
func ParseDecimal(s string) (Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Decimal{}, fmt.Errorf("%w: empty decimal", errInvalidNumber)
	}
	whole, frac, hasPoint := strings.Cut(trimmed, ".")
	if whole == "" || (hasPoint && frac == "") {
		return Decimal{}, fmt.Errorf("%w: %q", errInvalidNumber, s)
	}
	if len(frac) > Places {
		return Decimal{}, fmt.Errorf("%w: %q has more than %d fractional digits", errInvalidNumber, s, Places)
	}
	wholeValue, err := ParseUint(whole)
	if err != nil {
		return Decimal{}, err
	}
	atomics, err := wholeValue.Mul(fractional)
	if err != nil {
		return Decimal{}, err
	}
	if frac != "" {
		fracValue, err := ParseUint(frac + strings.Repeat("0", Places-len(frac)))
		if err != nil {
			return Decimal{}, err
		}
		if atomics, err = atomics.Add(fracValue); err != nil {
			return Decimal{}, err
		}
	}
	return Decimal{atomics: atomics}, nil
}

// MustParseDecimal is ParseDecimal that panics on malformed input.
func MustParseDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Atomics returns the raw representation (value * 10^18).
func (d Decimal) Atomics() Uint { return d.atomics }

func (d Decimal) IsZero() bool { return d.atomics.IsZero() }

func (d Decimal) Cmp(x Decimal) int { return d.atomics.Cmp(x.atomics) }

func (d Decimal) LT(x Decimal) bool { return d.atomics.LT(x.atomics) }
func (d Decimal) GT(x Decimal) bool { return d.atomics.GT(x.atomics) }

// Max returns the larger of d and x.
func (d Decimal) Max(x Decimal) Decimal {
	if d.LT(x) {
		return x
	}
	return d
}

func (d Decimal) Add(x Decimal) (Decimal, error) {
	sum, err := d.atomics.Add(x.atomics)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{atomics: sum}, nil
}

func (d Decimal) Sub(x Decimal) (Decimal, error) {
	diff, err := d.atomics.Sub(x.atomics)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{atomics: diff}, nil
}

// Mul returns floor(d * x).
func (d Decimal) Mul(x Decimal) (Decimal, error) {
	product, err := d.atomics.MulRatio(x.atomics, fractional)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{atomics: product}, nil
}

// Inv returns floor(1/d).
func (d Decimal) Inv() (Decimal, error) {
	if d.IsZero() {
		return Decimal{}, ErrDivideByZero
	}
	inv, err := fractionalSquared.Quo(d.atomics)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{atomics: inv}, nil
}

func (d Decimal) String() string {
	whole, _ := d.atomics.Quo(fractional)
	scaled, _ := whole.Mul(fractional)
	rest, _ := d.atomics.Sub(scaled)
	if rest.IsZero() {
		return whole.String()
	}
	digits := rest.String()
	digits = strings.Repeat("0", Places-len(digits)) + digits
	return whole.String() + "." + strings.TrimRight(digits, "0")
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDecimal(strings.Trim(strings.TrimSpace(string(data)), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Decimal) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Decimal) UnmarshalText(text []byte) error {
	parsed, err := ParseDecimal(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EncodeRLP stores the atomics so the encoding stays exact.
func (d Decimal) EncodeRLP(w io.Writer) error { return d.atomics.EncodeRLP(w) }

func (d *Decimal) DecodeRLP(s *rlp.Stream) error { return d.atomics.DecodeRLP(s) }
