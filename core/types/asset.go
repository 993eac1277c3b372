package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/crypto"
)

// NativeDecimals is the precision of every native denomination.
const NativeDecimals uint8 = 6

// AssetKind distinguishes native denominations from token contracts.
type AssetKind uint8

const (
	AssetKindToken AssetKind = iota + 1
	AssetKindNative
)

var errInvalidAsset = errors.New("invalid asset")

// Asset identifies either a native denomination or a token contract.
type Asset struct {
	Kind     AssetKind
	Denom    string
	Contract crypto.Address
}

func NativeAsset(denom string) Asset {
	return Asset{Kind: AssetKindNative, Denom: strings.TrimSpace(denom)}
}

func TokenAsset(contract crypto.Address) Asset {
	return Asset{Kind: AssetKindToken, Contract: contract}
}

func (a Asset) IsNative() bool { return a.Kind == AssetKindNative }

// Validate checks that the asset carries the identifier its kind requires.
func (a Asset) Validate() error {
	switch a.Kind {
	case AssetKindNative:
		if a.Denom == "" {
			return fmt.Errorf("%w: empty denom", errInvalidAsset)
		}
	case AssetKindToken:
		if a.Contract.IsZero() {
			return fmt.Errorf("%w: empty token contract", errInvalidAsset)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", errInvalidAsset, a.Kind)
	}
	return nil
}

func (a Asset) String() string {
	if a.IsNative() {
		return a.Denom
	}
	return a.Contract.String()
}

type assetJSON struct {
	Native string `json:"native,omitempty"`
	Token  string `json:"token,omitempty"`
}

func (a Asset) MarshalJSON() ([]byte, error) {
	if a.IsNative() {
		return sonnet.Marshal(assetJSON{Native: a.Denom})
	}
	return sonnet.Marshal(assetJSON{Token: a.Contract.String()})
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw assetJSON
	if err := sonnet.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Native != "" && raw.Token != "":
		return fmt.Errorf("%w: both native and token set", errInvalidAsset)
	case raw.Native != "":
		*a = NativeAsset(raw.Native)
	case raw.Token != "":
		contract, err := crypto.DecodeAddress(raw.Token)
		if err != nil {
			return fmt.Errorf("%w: %v", errInvalidAsset, err)
		}
		*a = TokenAsset(contract)
	default:
		return fmt.Errorf("%w: empty asset", errInvalidAsset)
	}
	return nil
}

// Coin is an amount of a native denomination.
type Coin struct {
	Denom  string       `json:"denom"`
	Amount decimal.Uint `json:"amount"`
}

func NewCoin(denom string, amount decimal.Uint) Coin {
	return Coin{Denom: denom, Amount: amount}
}

func (c Coin) String() string { return c.Amount.String() + c.Denom }
