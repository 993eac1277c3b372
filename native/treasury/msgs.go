package treasury

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
)

type InstantiateMsg struct {
	PayoutToken  types.Asset    `json:"payout_token"`
	InitialOwner crypto.Address `json:"initial_owner"`
}

// ExecuteMsg is the closed set of treasury operations.
type ExecuteMsg interface {
	isExecuteMsg()
}

type SendPayoutTokensMsg struct {
	Amount decimal.Uint `json:"amount"`
}

type WithdrawMsg struct {
	Asset     types.Asset    `json:"asset"`
	Amount    decimal.Uint   `json:"amount"`
	Recipient crypto.Address `json:"recipient"`
}

type WhitelistBondMsg struct {
	Bond      crypto.Address `json:"bond"`
	Whitelist bool           `json:"whitelist"`
}

type UpdateConfigMsg struct {
	Policy *crypto.Address `json:"policy,omitempty"`
}

func (SendPayoutTokensMsg) isExecuteMsg() {}
func (WithdrawMsg) isExecuteMsg()         {}
func (WhitelistBondMsg) isExecuteMsg()    {}
func (UpdateConfigMsg) isExecuteMsg()     {}

type executeEnvelope struct {
	SendPayoutTokens *SendPayoutTokensMsg `json:"send_payout_tokens,omitempty"`
	Withdraw         *WithdrawMsg         `json:"withdraw,omitempty"`
	WhitelistBond    *WhitelistBondMsg    `json:"whitelist_bond,omitempty"`
	UpdateConfig     *UpdateConfigMsg     `json:"update_config,omitempty"`
}

// EncodeExecute renders an execute message in its wire form.
func EncodeExecute(msg ExecuteMsg) ([]byte, error) {
	var env executeEnvelope
	switch m := msg.(type) {
	case SendPayoutTokensMsg:
		env.SendPayoutTokens = &m
	case WithdrawMsg:
		env.Withdraw = &m
	case WhitelistBondMsg:
		env.WhitelistBond = &m
	case UpdateConfigMsg:
		env.UpdateConfig = &m
	default:
		return nil, common.ErrUnknownMessage
	}
	return sonnet.Marshal(env)
}

// DecodeExecute parses the wire form of an execute message.
func DecodeExecute(raw []byte) (ExecuteMsg, error) {
	var env executeEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("treasury: decode execute: %w", err)
	}
	var out []ExecuteMsg
	if env.SendPayoutTokens != nil {
		out = append(out, *env.SendPayoutTokens)
	}
	if env.Withdraw != nil {
		out = append(out, *env.Withdraw)
	}
	if env.WhitelistBond != nil {
		out = append(out, *env.WhitelistBond)
	}
	if env.UpdateConfig != nil {
		out = append(out, *env.UpdateConfig)
	}
	if len(out) != 1 {
		return nil, common.ErrUnknownMessage
	}
	return out[0], nil
}

type configQuery struct{}

type bondWhitelistQuery struct {
	Bond crypto.Address `json:"bond"`
}

type valueOfTokenQuery struct {
	Asset  types.Asset  `json:"asset"`
	Amount decimal.Uint `json:"amount"`
}

type queryEnvelope struct {
	Config        *configQuery        `json:"config,omitempty"`
	BondWhitelist *bondWhitelistQuery `json:"bond_whitelist,omitempty"`
	ValueOfToken  *valueOfTokenQuery  `json:"value_of_token,omitempty"`
}

type ConfigResponse struct {
	PayoutToken types.Asset    `json:"payout_token"`
	Policy      crypto.Address `json:"policy"`
}

type BondWhitelistResponse struct {
	Whitelisted bool `json:"whitelisted"`
}

type ValueOfTokenResponse struct {
	Value decimal.Uint `json:"value"`
}

func EncodeConfigQuery() ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{Config: &configQuery{}})
}

func EncodeBondWhitelistQuery(bond crypto.Address) ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{BondWhitelist: &bondWhitelistQuery{Bond: bond}})
}

func EncodeValueOfTokenQuery(asset types.Asset, amount decimal.Uint) ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{ValueOfToken: &valueOfTokenQuery{Asset: asset, Amount: amount}})
}

// QueryConfig fetches the configuration of the treasury at addr.
func QueryConfig(q types.Querier, addr crypto.Address) (*ConfigResponse, error) {
	if q == nil {
		return nil, errNilQuerier
	}
	payload, err := EncodeConfigQuery()
	if err != nil {
		return nil, err
	}
	raw, err := q.QueryContract(addr, payload)
	if err != nil {
		return nil, fmt.Errorf("treasury: query config %s: %w", addr, err)
	}
	var resp ConfigResponse
	if err := sonnet.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("treasury: decode config: %w", err)
	}
	return &resp, nil
}
