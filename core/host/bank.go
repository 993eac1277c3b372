package host

import (
	"errors"
	"fmt"

	"olympuspro/core/decimal"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/crypto"
)

// ErrInsufficientFunds is returned when a native transfer exceeds the
// sender's balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// bank keeps native coin balances and supplies in the host namespace.
type bank struct {
	kv *state.Manager
}

func balanceKey(denom string, addr crypto.Address) []byte {
	return state.BucketKey("bank/balance/"+denom, addr.Bytes())
}

func supplyKey(denom string) []byte {
	return state.ItemKey("bank/supply/" + denom)
}

func (b bank) balance(addr crypto.Address, denom string) (decimal.Uint, error) {
	var amount decimal.Uint
	if _, err := b.kv.KVGet(balanceKey(denom, addr), &amount); err != nil {
		return decimal.Uint{}, err
	}
	return amount, nil
}

func (b bank) setBalance(addr crypto.Address, denom string, amount decimal.Uint) error {
	if amount.IsZero() {
		return b.kv.KVDelete(balanceKey(denom, addr))
	}
	return b.kv.KVPut(balanceKey(denom, addr), amount)
}

func (b bank) supply(denom string) (decimal.Uint, error) {
	var amount decimal.Uint
	if _, err := b.kv.KVGet(supplyKey(denom), &amount); err != nil {
		return decimal.Uint{}, err
	}
	return amount, nil
}

// mint credits to and grows the denomination's supply.
func (b bank) mint(to crypto.Address, coin types.Coin) error {
	current, err := b.balance(to, coin.Denom)
	if err != nil {
		return err
	}
	next, err := current.Add(coin.Amount)
	if err != nil {
		return err
	}
	supply, err := b.supply(coin.Denom)
	if err != nil {
		return err
	}
	if supply, err = supply.Add(coin.Amount); err != nil {
		return err
	}
	if err := b.setBalance(to, coin.Denom, next); err != nil {
		return err
	}
	return b.kv.KVPut(supplyKey(coin.Denom), supply)
}

func (b bank) send(from, to crypto.Address, coins []types.Coin) error {
	for _, coin := range coins {
		if coin.Amount.IsZero() {
			continue
		}
		if coin.Denom == "" {
			return fmt.Errorf("host: coin denom required")
		}
		fromBal, err := b.balance(from, coin.Denom)
		if err != nil {
			return err
		}
		if fromBal.LT(coin.Amount) {
			return fmt.Errorf("%w: %s has %s%s, needs %s", ErrInsufficientFunds, from, fromBal, coin.Denom, coin)
		}
		remaining, err := fromBal.Sub(coin.Amount)
		if err != nil {
			return err
		}
		if err := b.setBalance(from, coin.Denom, remaining); err != nil {
			return err
		}
		toBal, err := b.balance(to, coin.Denom)
		if err != nil {
			return err
		}
		credited, err := toBal.Add(coin.Amount)
		if err != nil {
			return err
		}
		if err := b.setBalance(to, coin.Denom, credited); err != nil {
			return err
		}
	}
	return nil
}
