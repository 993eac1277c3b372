package token

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
)

// Balance is an initial allocation made at instantiation.
type Balance struct {
	Address crypto.Address `json:"address"`
	Amount  decimal.Uint   `json:"amount"`
}

type InstantiateMsg struct {
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	Decimals        uint8          `json:"decimals"`
	InitialBalances []Balance      `json:"initial_balances"`
	Minter          crypto.Address `json:"minter,omitempty"`
}

type TransferMsg struct {
	Recipient crypto.Address `json:"recipient"`
	Amount    decimal.Uint   `json:"amount"`
}

// SendMsg transfers tokens to a contract and invokes its receive hook.
type SendMsg struct {
	Contract crypto.Address `json:"contract"`
	Amount   decimal.Uint   `json:"amount"`
	Msg      []byte         `json:"msg"`
}

type MintMsg struct {
	Recipient crypto.Address `json:"recipient"`
	Amount    decimal.Uint   `json:"amount"`
}

type executeEnvelope struct {
	Transfer *TransferMsg `json:"transfer,omitempty"`
	Send     *SendMsg     `json:"send,omitempty"`
	Mint     *MintMsg     `json:"mint,omitempty"`
}

// ReceiveHook is delivered to a contract that received tokens through Send.
type ReceiveHook struct {
	Sender crypto.Address `json:"sender"`
	Amount decimal.Uint   `json:"amount"`
	Msg    []byte         `json:"msg"`
}

type receiveEnvelope struct {
	Receive *ReceiveHook `json:"receive"`
}

type tokenInfoQuery struct{}

type balanceQuery struct {
	Address crypto.Address `json:"address"`
}

type queryEnvelope struct {
	TokenInfo *tokenInfoQuery `json:"token_info,omitempty"`
	Balance   *balanceQuery   `json:"balance,omitempty"`
}

// Info describes a token's metadata and supply.
type Info struct {
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Decimals    uint8        `json:"decimals"`
	TotalSupply decimal.Uint `json:"total_supply"`
}

type BalanceResponse struct {
	Balance decimal.Uint `json:"balance"`
}

func EncodeTransfer(msg TransferMsg) ([]byte, error) {
	return sonnet.Marshal(executeEnvelope{Transfer: &msg})
}

func EncodeSend(msg SendMsg) ([]byte, error) {
	return sonnet.Marshal(executeEnvelope{Send: &msg})
}

func EncodeMint(msg MintMsg) ([]byte, error) {
	return sonnet.Marshal(executeEnvelope{Mint: &msg})
}

// EncodeReceive renders the hook message the token sends to a receiving
// contract.
func EncodeReceive(hook ReceiveHook) ([]byte, error) {
	return sonnet.Marshal(receiveEnvelope{Receive: &hook})
}

func EncodeTokenInfoQuery() ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{TokenInfo: &tokenInfoQuery{}})
}

func EncodeBalanceQuery(addr crypto.Address) ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{Balance: &balanceQuery{Address: addr}})
}

// TransferAsset builds the instruction moving amount of asset from the issuing
// contract to recipient.
func TransferAsset(asset types.Asset, recipient crypto.Address, amount decimal.Uint) (types.Msg, error) {
	if asset.IsNative() {
		return types.BankSendMsg{
			ToAddress: recipient,
			Amount:    []types.Coin{types.NewCoin(asset.Denom, amount)},
		}, nil
	}
	payload, err := EncodeTransfer(TransferMsg{Recipient: recipient, Amount: amount})
	if err != nil {
		return nil, err
	}
	return types.ExecuteContractMsg{Contract: asset.Contract, Msg: payload}, nil
}

// QueryInfo resolves supply and precision for either kind of asset. Native
// denominations always carry NativeDecimals.
func QueryInfo(q types.Querier, asset types.Asset) (Info, error) {
	if q == nil {
		return Info{}, fmt.Errorf("token: querier not configured")
	}
	if asset.IsNative() {
		supply, err := q.NativeSupply(asset.Denom)
		if err != nil {
			return Info{}, fmt.Errorf("token: native supply %s: %w", asset.Denom, err)
		}
		return Info{Name: asset.Denom, Symbol: asset.Denom, Decimals: types.NativeDecimals, TotalSupply: supply}, nil
	}
	payload, err := EncodeTokenInfoQuery()
	if err != nil {
		return Info{}, err
	}
	raw, err := q.QueryContract(asset.Contract, payload)
	if err != nil {
		return Info{}, fmt.Errorf("token: query %s: %w", asset.Contract, err)
	}
	var info Info
	if err := sonnet.Unmarshal(raw, &info); err != nil {
		return Info{}, fmt.Errorf("token: decode info: %w", err)
	}
	return info, nil
}

func decodeExecute(raw []byte) (*executeEnvelope, error) {
	var env executeEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("token: decode execute: %w", err)
	}
	count := 0
	for _, set := range []bool{env.Transfer != nil, env.Send != nil, env.Mint != nil} {
		if set {
			count++
		}
	}
	if count != 1 {
		return nil, common.ErrUnknownMessage
	}
	return &env, nil
}
