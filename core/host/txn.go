package host

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"olympuspro/core/decimal"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/storage"
)

// txn is the state of one top-level call.
type txn struct {
	host   *Host
	cache  *storage.CacheDB
	kv     *state.Manager
	bank   bank
	now    time.Time
	height uint64
	events []types.Event
}

func contractStore(parent storage.Database, addr crypto.Address) storage.Database {
	prefix := append(append([]byte(nil), contractPrefix...), addr.Bytes()...)
	return storage.NewPrefixDB(parent, append(prefix, '/'))
}

func (tx *txn) deps(addr crypto.Address) types.Deps {
	return types.Deps{Storage: contractStore(tx.cache, addr), Querier: tx}
}

func (tx *txn) env(addr crypto.Address) types.Env {
	return types.Env{Time: tx.now, Height: tx.height, Contract: addr}
}

func (tx *txn) lookup(addr crypto.Address) (*Instance, types.Contract, error) {
	var inst Instance
	ok, err := tx.kv.KVGet(state.BucketKey(instanceBucket, addr.Bytes()), &inst)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownContract, addr)
	}
	code, ok := tx.host.codes[inst.CodeID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCode, inst.CodeID)
	}
	return &inst, code, nil
}

func (tx *txn) nextAddress(codeID uint64) (crypto.Address, error) {
	var seq uint64
	if _, err := tx.kv.KVGet(sequenceKey, &seq); err != nil {
		return crypto.Address{}, err
	}
	if err := tx.kv.KVPut(sequenceKey, seq+1); err != nil {
		return crypto.Address{}, err
	}
	return crypto.ContractAddress(codeID, seq), nil
}

func (tx *txn) instantiate(sender crypto.Address, codeID uint64, msg []byte, funds []types.Coin, label string) (crypto.Address, []byte, error) {
	return tx.instantiateAt(sender, codeID, msg, funds, label, 0)
}

func (tx *txn) instantiateAt(sender crypto.Address, codeID uint64, msg []byte, funds []types.Coin, label string, depth int) (crypto.Address, []byte, error) {
	code, ok := tx.host.codes[codeID]
	if !ok {
		return crypto.Address{}, nil, fmt.Errorf("%w: %d", ErrUnknownCode, codeID)
	}
	addr, err := tx.nextAddress(codeID)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	inst := Instance{Address: addr, CodeID: codeID, Label: label, Creator: sender}
	if err := tx.kv.KVPut(state.BucketKey(instanceBucket, addr.Bytes()), &inst); err != nil {
		return crypto.Address{}, nil, err
	}
	if err := tx.bank.send(sender, addr, funds); err != nil {
		return crypto.Address{}, nil, err
	}
	resp, err := code.Instantiate(tx.deps(addr), tx.env(addr), types.MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return crypto.Address{}, nil, fmt.Errorf("instantiate %s: %w", tx.host.names[codeID], err)
	}
	tx.events = append(tx.events, types.Event{
		Type: "instantiate",
		Attributes: map[string]string{
			"_contract_address": addr.String(),
			"code_id":           strconv.FormatUint(codeID, 10),
		},
	})
	data, err := tx.handleResponse(addr, resp, depth)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	return addr, data, nil
}

func (tx *txn) execute(sender, contract crypto.Address, msg []byte, funds []types.Coin) ([]byte, error) {
	return tx.executeAt(sender, contract, msg, funds, 0)
}

func (tx *txn) executeAt(sender, contract crypto.Address, msg []byte, funds []types.Coin, depth int) ([]byte, error) {
	inst, code, err := tx.lookup(contract)
	if err != nil {
		return nil, err
	}
	if err := tx.bank.send(sender, contract, funds); err != nil {
		return nil, err
	}
	resp, err := code.Execute(tx.deps(contract), tx.env(contract), types.MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", tx.host.names[inst.CodeID], err)
	}
	return tx.handleResponse(contract, resp, depth)
}

// handleResponse records the response's events and runs its outgoing
// instructions depth first.
func (tx *txn) handleResponse(contract crypto.Address, resp *types.Response, depth int) ([]byte, error) {
	if resp == nil {
		return nil, nil
	}
	if len(resp.Attributes) > 0 {
		attrs := make(map[string]string, len(resp.Attributes)+1)
		for _, attr := range resp.Attributes {
			attrs[attr.Key] = attr.Value
		}
		attrs["_contract_address"] = contract.String()
		tx.events = append(tx.events, types.Event{Type: "wasm", Attributes: attrs})
	}
	tx.events = append(tx.events, resp.Events...)
	data := resp.Data
	for _, sub := range resp.Messages {
		replyData, err := tx.dispatch(contract, sub, depth+1)
		if err != nil {
			return nil, err
		}
		if replyData != nil {
			data = replyData
		}
	}
	return data, nil
}

// dispatch runs one outgoing instruction issued by contract. When a reply is
// requested the issuer is called back and its reply data is returned.
func (tx *txn) dispatch(contract crypto.Address, sub types.SubMsg, depth int) ([]byte, error) {
	if depth > maxCallDepth {
		return nil, ErrCallDepth
	}
	mark := len(tx.events)
	var (
		target crypto.Address
		data   []byte
		err    error
	)
	switch msg := sub.Msg.(type) {
	case types.BankSendMsg:
		target = msg.ToAddress
		err = tx.bank.send(contract, msg.ToAddress, msg.Amount)
		if err == nil {
			tx.events = append(tx.events, bankEvent(contract, msg))
		}
	case types.ExecuteContractMsg:
		target = msg.Contract
		data, err = tx.executeAt(contract, msg.Contract, msg.Msg, msg.Funds, depth)
	case types.InstantiateContractMsg:
		target, data, err = tx.instantiateAt(contract, msg.CodeID, msg.Msg, msg.Funds, msg.Label, depth)
	default:
		err = fmt.Errorf("host: unsupported message %T", sub.Msg)
	}
	if err != nil {
		return nil, err
	}
	if sub.ReplyOn != types.ReplySuccess {
		return nil, nil
	}
	inst, code, err := tx.lookup(contract)
	if err != nil {
		return nil, err
	}
	replier, ok := code.(types.Replier)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoReplyHandler, contract)
	}
	reply := types.Reply{
		ID:              sub.ID,
		ContractAddress: target,
		Data:            data,
		Events:          append([]types.Event(nil), tx.events[mark:]...),
	}
	resp, err := replier.Reply(tx.deps(contract), tx.env(contract), reply)
	if err != nil {
		return nil, fmt.Errorf("reply %s: %w", tx.host.names[inst.CodeID], err)
	}
	return tx.handleResponse(contract, resp, depth)
}

func bankEvent(from crypto.Address, msg types.BankSendMsg) types.Event {
	coins := make([]string, 0, len(msg.Amount))
	for _, coin := range msg.Amount {
		coins = append(coins, coin.String())
	}
	sort.Strings(coins)
	return types.Event{
		Type: "transfer",
		Attributes: map[string]string{
			"sender":    from.String(),
			"recipient": msg.ToAddress.String(),
			"amount":    strings.Join(coins, ","),
		},
	}
}

// QueryContract implements types.Querier against the call's write buffer so
// peers observe writes made earlier in the same call tree.
func (tx *txn) QueryContract(contract crypto.Address, msg []byte) ([]byte, error) {
	_, code, err := tx.lookup(contract)
	if err != nil {
		return nil, err
	}
	return code.Query(tx.deps(contract), tx.env(contract), msg)
}

func (tx *txn) NativeSupply(denom string) (decimal.Uint, error) {
	return tx.bank.supply(denom)
}
