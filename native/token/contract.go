// Package token implements the minimal fungible-token ledger used for payout
// and principal assets hosted next to the bond contracts.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	errNotInitialised      = errors.New("token: not initialised")
)

var (
	infoKey       = state.ItemKey("token/info")
	minterKey     = state.ItemKey("token/minter")
	balanceBucket = "token/balance"
)

// Contract is the token code registered with the host.
type Contract struct{}

func New() *Contract { return &Contract{} }

type ledger struct {
	kv *state.Manager
}

func newLedger(deps types.Deps) *ledger {
	return &ledger{kv: state.NewManager(deps.Storage)}
}

func (l *ledger) info() (*Info, error) {
	var info Info
	ok, err := l.kv.KVGet(infoKey, &info)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotInitialised
	}
	return &info, nil
}

func (l *ledger) balance(addr crypto.Address) (decimal.Uint, error) {
	var amount decimal.Uint
	if _, err := l.kv.KVGet(state.BucketKey(balanceBucket, addr.Bytes()), &amount); err != nil {
		return decimal.Uint{}, err
	}
	return amount, nil
}

func (l *ledger) setBalance(addr crypto.Address, amount decimal.Uint) error {
	key := state.BucketKey(balanceBucket, addr.Bytes())
	if amount.IsZero() {
		return l.kv.KVDelete(key)
	}
	return l.kv.KVPut(key, amount)
}

func (l *ledger) move(from, to crypto.Address, amount decimal.Uint) error {
	if amount.IsZero() {
		return common.ErrAmountZero
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	fromBalance, err := l.balance(from)
	if err != nil {
		return err
	}
	if fromBalance.LT(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, fromBalance, amount)
	}
	remaining, err := fromBalance.Sub(amount)
	if err != nil {
		return err
	}
	if err := l.setBalance(from, remaining); err != nil {
		return err
	}
	toBalance, err := l.balance(to)
	if err != nil {
		return err
	}
	credited, err := toBalance.Add(amount)
	if err != nil {
		return err
	}
	return l.setBalance(to, credited)
}

func (c *Contract) Instantiate(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("token: decode instantiate: %w", err)
	}
	if strings.TrimSpace(msg.Symbol) == "" {
		return nil, fmt.Errorf("token: symbol required")
	}
	l := newLedger(deps)
	supply := decimal.ZeroUint()
	for _, bal := range msg.InitialBalances {
		current, err := l.balance(bal.Address)
		if err != nil {
			return nil, err
		}
		next, err := current.Add(bal.Amount)
		if err != nil {
			return nil, err
		}
		if err := l.setBalance(bal.Address, next); err != nil {
			return nil, err
		}
		if supply, err = supply.Add(bal.Amount); err != nil {
			return nil, err
		}
	}
	record := Info{Name: msg.Name, Symbol: msg.Symbol, Decimals: msg.Decimals, TotalSupply: supply}
	if err := l.kv.KVPut(infoKey, &record); err != nil {
		return nil, err
	}
	if !msg.Minter.IsZero() {
		if err := l.kv.KVPut(minterKey, msg.Minter); err != nil {
			return nil, err
		}
	}
	return types.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("symbol", msg.Symbol).
		AddAttribute("total_supply", supply.String()), nil
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	msg, err := decodeExecute(raw)
	if err != nil {
		return nil, err
	}
	l := newLedger(deps)
	if _, err := l.info(); err != nil {
		return nil, err
	}
	switch {
	case msg.Transfer != nil:
		if err := l.move(info.Sender, msg.Transfer.Recipient, msg.Transfer.Amount); err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "transfer").
			AddAttribute("from", info.Sender.String()).
			AddAttribute("to", msg.Transfer.Recipient.String()).
			AddAttribute("amount", msg.Transfer.Amount.String()), nil
	case msg.Send != nil:
		if err := l.move(info.Sender, msg.Send.Contract, msg.Send.Amount); err != nil {
			return nil, err
		}
		hook, err := EncodeReceive(ReceiveHook{Sender: info.Sender, Amount: msg.Send.Amount, Msg: msg.Send.Msg})
		if err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "send").
			AddAttribute("from", info.Sender.String()).
			AddAttribute("to", msg.Send.Contract.String()).
			AddAttribute("amount", msg.Send.Amount.String()).
			AddMessage(types.ExecuteContractMsg{Contract: msg.Send.Contract, Msg: hook}), nil
	default:
		return c.mint(l, info, msg.Mint)
	}
}

func (c *Contract) mint(l *ledger, info types.MessageInfo, msg *MintMsg) (*types.Response, error) {
	var minter crypto.Address
	ok, err := l.kv.KVGet(minterKey, &minter)
	if err != nil {
		return nil, err
	}
	if !ok || !info.Sender.Equal(minter) {
		return nil, common.ErrUnauthorized
	}
	if msg.Amount.IsZero() {
		return nil, common.ErrAmountZero
	}
	record, err := l.info()
	if err != nil {
		return nil, err
	}
	if record.TotalSupply, err = record.TotalSupply.Add(msg.Amount); err != nil {
		return nil, err
	}
	current, err := l.balance(msg.Recipient)
	if err != nil {
		return nil, err
	}
	next, err := current.Add(msg.Amount)
	if err != nil {
		return nil, err
	}
	if err := l.setBalance(msg.Recipient, next); err != nil {
		return nil, err
	}
	if err := l.kv.KVPut(infoKey, record); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "mint").
		AddAttribute("to", msg.Recipient.String()).
		AddAttribute("amount", msg.Amount.String()), nil
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg queryEnvelope
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("token: decode query: %w", err)
	}
	l := newLedger(deps)
	switch {
	case msg.TokenInfo != nil:
		record, err := l.info()
		if err != nil {
			return nil, err
		}
		return sonnet.Marshal(record)
	case msg.Balance != nil:
		amount, err := l.balance(msg.Balance.Address)
		if err != nil {
			return nil, err
		}
		return sonnet.Marshal(BalanceResponse{Balance: amount})
	default:
		return nil, common.ErrUnknownMessage
	}
}

func (c *Contract) Migrate(deps types.Deps, env types.Env, raw []byte) (*types.Response, error) {
	return types.NewResponse(), nil
}
