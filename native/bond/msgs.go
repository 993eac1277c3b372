package bond

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
	"olympuspro/native/token"
)

type InstantiateMsg struct {
	CustomTreasury  crypto.Address    `json:"custom_treasury"`
	PrincipalToken  types.Asset       `json:"principal_token"`
	OlympusTreasury crypto.Address    `json:"olympus_treasury"`
	SubsidyRouter   crypto.Address    `json:"subsidy_router"`
	InitialOwner    crypto.Address    `json:"initial_owner"`
	OlympusDAO      crypto.Address    `json:"olympus_dao"`
	TierCeilings    []decimal.Uint    `json:"tier_ceilings"`
	FeeRates        []decimal.Decimal `json:"fee_rates"`
	FeeInPayout     bool              `json:"fee_in_payout"`
}

type MigrateMsg struct{}

// ExecuteMsg is the closed set of bond operations.
type ExecuteMsg interface {
	isExecuteMsg()
}

// ReceiveMsg is the token receive hook carrying a DepositHook.
type ReceiveMsg token.ReceiveHook

type DepositMsg struct {
	MaxPrice  decimal.Decimal `json:"max_price"`
	Depositor crypto.Address  `json:"depositor"`
}

type RedeemMsg struct {
	User crypto.Address `json:"user"`
}

type PaySubsidyMsg struct{}

type UpdateConfigMsg struct {
	Policy          *crypto.Address `json:"policy,omitempty"`
	OlympusTreasury *crypto.Address `json:"olympus_treasury,omitempty"`
}

type InitializeBondMsg struct {
	Terms       Terms        `json:"terms"`
	InitialDebt decimal.Uint `json:"initial_debt"`
}

type SetBondTermsMsg struct {
	VestingTerm *uint64          `json:"vesting_term,omitempty"`
	MaxPayout   *decimal.Decimal `json:"max_payout,omitempty"`
	MaxDebt     *decimal.Uint    `json:"max_debt,omitempty"`
}

type SetAdjustmentMsg struct {
	Addition  bool            `json:"addition"`
	Increment decimal.Decimal `json:"increment"`
	Target    decimal.Decimal `json:"target"`
	Buffer    uint64          `json:"buffer"`
}

type UpdateOlympusTreasuryMsg struct {
	OlympusTreasury crypto.Address `json:"olympus_treasury"`
}

func (ReceiveMsg) isExecuteMsg()               {}
func (DepositMsg) isExecuteMsg()               {}
func (RedeemMsg) isExecuteMsg()                {}
func (PaySubsidyMsg) isExecuteMsg()            {}
func (UpdateConfigMsg) isExecuteMsg()          {}
func (InitializeBondMsg) isExecuteMsg()        {}
func (SetBondTermsMsg) isExecuteMsg()          {}
func (SetAdjustmentMsg) isExecuteMsg()         {}
func (UpdateOlympusTreasuryMsg) isExecuteMsg() {}

type executeEnvelope struct {
	Receive               *ReceiveMsg               `json:"receive,omitempty"`
	Deposit               *DepositMsg               `json:"deposit,omitempty"`
	Redeem                *RedeemMsg                `json:"redeem,omitempty"`
	PaySubsidy            *PaySubsidyMsg            `json:"pay_subsidy,omitempty"`
	UpdateConfig          *UpdateConfigMsg          `json:"update_config,omitempty"`
	InitializeBond        *InitializeBondMsg        `json:"initialize_bond,omitempty"`
	SetBondTerms          *SetBondTermsMsg          `json:"set_bond_terms,omitempty"`
	SetAdjustment         *SetAdjustmentMsg         `json:"set_adjustment,omitempty"`
	UpdateOlympusTreasury *UpdateOlympusTreasuryMsg `json:"update_olympus_treasury,omitempty"`
}

// EncodeExecute renders an execute message in its wire form.
func EncodeExecute(msg ExecuteMsg) ([]byte, error) {
	var env executeEnvelope
	switch m := msg.(type) {
	case ReceiveMsg:
		env.Receive = &m
	case DepositMsg:
		env.Deposit = &m
	case RedeemMsg:
		env.Redeem = &m
	case PaySubsidyMsg:
		env.PaySubsidy = &m
	case UpdateConfigMsg:
		env.UpdateConfig = &m
	case InitializeBondMsg:
		env.InitializeBond = &m
	case SetBondTermsMsg:
		env.SetBondTerms = &m
	case SetAdjustmentMsg:
		env.SetAdjustment = &m
	case UpdateOlympusTreasuryMsg:
		env.UpdateOlympusTreasury = &m
	default:
		return nil, common.ErrUnknownMessage
	}
	return sonnet.Marshal(env)
}

// DecodeExecute parses the wire form of an execute message. Exactly one
// variant must be present.
func DecodeExecute(raw []byte) (ExecuteMsg, error) {
	var env executeEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("bond: decode execute: %w", err)
	}
	var out []ExecuteMsg
	if env.Receive != nil {
		out = append(out, *env.Receive)
	}
	if env.Deposit != nil {
		out = append(out, *env.Deposit)
	}
	if env.Redeem != nil {
		out = append(out, *env.Redeem)
	}
	if env.PaySubsidy != nil {
		out = append(out, *env.PaySubsidy)
	}
	if env.UpdateConfig != nil {
		out = append(out, *env.UpdateConfig)
	}
	if env.InitializeBond != nil {
		out = append(out, *env.InitializeBond)
	}
	if env.SetBondTerms != nil {
		out = append(out, *env.SetBondTerms)
	}
	if env.SetAdjustment != nil {
		out = append(out, *env.SetAdjustment)
	}
	if env.UpdateOlympusTreasury != nil {
		out = append(out, *env.UpdateOlympusTreasury)
	}
	if len(out) != 1 {
		return nil, common.ErrUnknownMessage
	}
	return out[0], nil
}

// DepositHook is the payload a depositor attaches to a token Send.
type DepositHook struct {
	MaxPrice  decimal.Decimal `json:"max_price"`
	Depositor crypto.Address  `json:"depositor"`
}

type hookEnvelope struct {
	Deposit *DepositHook `json:"deposit,omitempty"`
}

// EncodeDepositHook renders the payload for a token Send into the bond.
func EncodeDepositHook(hook DepositHook) ([]byte, error) {
	return sonnet.Marshal(hookEnvelope{Deposit: &hook})
}

func decodeDepositHook(raw []byte) (*DepositHook, error) {
	var env hookEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("bond: decode hook: %w", err)
	}
	if env.Deposit == nil {
		return nil, errInvalidHook
	}
	return env.Deposit, nil
}

// QueryMsg is the closed set of bond queries.
type QueryMsg interface {
	isQueryMsg()
}

type ConfigQuery struct{}
type StateQuery struct{}
type BondPriceQuery struct{}
type MaxPayoutQuery struct{}
type CurrentDebtQuery struct{}
type CurrentOlympusFeeQuery struct{}

type PayoutForQuery struct {
	Amount decimal.Uint `json:"amount"`
}

type BondInfoQuery struct {
	User crypto.Address `json:"user"`
}

func (ConfigQuery) isQueryMsg()            {}
func (StateQuery) isQueryMsg()             {}
func (BondPriceQuery) isQueryMsg()         {}
func (MaxPayoutQuery) isQueryMsg()         {}
func (CurrentDebtQuery) isQueryMsg()       {}
func (CurrentOlympusFeeQuery) isQueryMsg() {}
func (PayoutForQuery) isQueryMsg()         {}
func (BondInfoQuery) isQueryMsg()          {}

type queryEnvelope struct {
	Config            *ConfigQuery            `json:"config,omitempty"`
	State             *StateQuery             `json:"state,omitempty"`
	BondPrice         *BondPriceQuery         `json:"bond_price,omitempty"`
	MaxPayout         *MaxPayoutQuery         `json:"max_payout,omitempty"`
	PayoutFor         *PayoutForQuery         `json:"payout_for,omitempty"`
	CurrentDebt       *CurrentDebtQuery       `json:"current_debt,omitempty"`
	CurrentOlympusFee *CurrentOlympusFeeQuery `json:"current_olympus_fee,omitempty"`
	BondInfo          *BondInfoQuery          `json:"bond_info,omitempty"`
}

// EncodeQuery renders a query in its wire form.
func EncodeQuery(msg QueryMsg) ([]byte, error) {
	var env queryEnvelope
	switch m := msg.(type) {
	case ConfigQuery:
		env.Config = &m
	case StateQuery:
		env.State = &m
	case BondPriceQuery:
		env.BondPrice = &m
	case MaxPayoutQuery:
		env.MaxPayout = &m
	case PayoutForQuery:
		env.PayoutFor = &m
	case CurrentDebtQuery:
		env.CurrentDebt = &m
	case CurrentOlympusFeeQuery:
		env.CurrentOlympusFee = &m
	case BondInfoQuery:
		env.BondInfo = &m
	default:
		return nil, common.ErrUnknownMessage
	}
	return sonnet.Marshal(env)
}

// DecodeQuery parses the wire form of a query.
func DecodeQuery(raw []byte) (QueryMsg, error) {
	var env queryEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("bond: decode query: %w", err)
	}
	var out []QueryMsg
	if env.Config != nil {
		out = append(out, *env.Config)
	}
	if env.State != nil {
		out = append(out, *env.State)
	}
	if env.BondPrice != nil {
		out = append(out, *env.BondPrice)
	}
	if env.MaxPayout != nil {
		out = append(out, *env.MaxPayout)
	}
	if env.PayoutFor != nil {
		out = append(out, *env.PayoutFor)
	}
	if env.CurrentDebt != nil {
		out = append(out, *env.CurrentDebt)
	}
	if env.CurrentOlympusFee != nil {
		out = append(out, *env.CurrentOlympusFee)
	}
	if env.BondInfo != nil {
		out = append(out, *env.BondInfo)
	}
	if len(out) != 1 {
		return nil, common.ErrUnknownMessage
	}
	return out[0], nil
}

type BondPriceResponse struct {
	Price     decimal.Decimal `json:"price"`
	TruePrice decimal.Decimal `json:"true_price"`
}

type MaxPayoutResponse struct {
	MaxPayout decimal.Uint `json:"max_payout"`
}

type PayoutForResponse struct {
	Payout decimal.Uint `json:"payout"`
	Fee    decimal.Uint `json:"fee"`
}

type CurrentDebtResponse struct {
	CurrentDebt decimal.Uint `json:"current_debt"`
}

type CurrentOlympusFeeResponse struct {
	Fee decimal.Decimal `json:"fee"`
}

type BondInfoResponse struct {
	BondInfo
	PendingPayout decimal.Uint `json:"pending_payout"`
}

// QueryState fetches the ledger of the bond at addr.
func QueryState(q types.Querier, addr crypto.Address) (*State, error) {
	if q == nil {
		return nil, errNilQuerier
	}
	payload, err := EncodeQuery(StateQuery{})
	if err != nil {
		return nil, err
	}
	raw, err := q.QueryContract(addr, payload)
	if err != nil {
		return nil, fmt.Errorf("bond: query state %s: %w", addr, err)
	}
	var st State
	if err := sonnet.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("bond: decode state: %w", err)
	}
	return &st, nil
}
