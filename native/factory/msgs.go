package factory

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
)

type InstantiateMsg struct {
	CustomBondCode     uint64         `json:"custom_bond_id"`
	CustomTreasuryCode uint64         `json:"custom_treasury_id"`
	Treasury           crypto.Address `json:"treasury"`
	SubsidyRouter      crypto.Address `json:"subsidy_router"`
	OlympusDAO         crypto.Address `json:"olympus_dao"`
}

// ExecuteMsg is the closed set of factory operations. All of them require the
// policy.
type ExecuteMsg interface {
	isExecuteMsg()
}

type UpdateConfigMsg struct {
	CustomBondCode     *uint64         `json:"custom_bond_id,omitempty"`
	CustomTreasuryCode *uint64         `json:"custom_treasury_id,omitempty"`
	Policy             *crypto.Address `json:"policy,omitempty"`
}

type CreateTreasuryMsg struct {
	PayoutToken  types.Asset    `json:"payout_token"`
	InitialOwner crypto.Address `json:"initial_owner"`
}

type CreateBondMsg struct {
	PrincipalToken types.Asset       `json:"principal_token"`
	CustomTreasury crypto.Address    `json:"custom_treasury"`
	InitialOwner   crypto.Address    `json:"initial_owner"`
	TierCeilings   []decimal.Uint    `json:"tier_ceilings"`
	FeeRates       []decimal.Decimal `json:"fee_rates"`
	FeeInPayout    bool              `json:"fee_in_payout"`
}

type CreateBondAndTreasuryMsg struct {
	PayoutToken    types.Asset       `json:"payout_token"`
	PrincipalToken types.Asset       `json:"principal_token"`
	InitialOwner   crypto.Address    `json:"initial_owner"`
	TierCeilings   []decimal.Uint    `json:"tier_ceilings"`
	FeeRates       []decimal.Decimal `json:"fee_rates"`
	FeeInPayout    bool              `json:"fee_in_payout"`
}

func (UpdateConfigMsg) isExecuteMsg()          {}
func (CreateTreasuryMsg) isExecuteMsg()        {}
func (CreateBondMsg) isExecuteMsg()            {}
func (CreateBondAndTreasuryMsg) isExecuteMsg() {}

type executeEnvelope struct {
	UpdateConfig          *UpdateConfigMsg          `json:"update_config,omitempty"`
	CreateTreasury        *CreateTreasuryMsg        `json:"create_treasury,omitempty"`
	CreateBond            *CreateBondMsg            `json:"create_bond,omitempty"`
	CreateBondAndTreasury *CreateBondAndTreasuryMsg `json:"create_bond_and_treasury,omitempty"`
}

func EncodeExecute(msg ExecuteMsg) ([]byte, error) {
	var env executeEnvelope
	switch m := msg.(type) {
	case UpdateConfigMsg:
		env.UpdateConfig = &m
	case CreateTreasuryMsg:
		env.CreateTreasury = &m
	case CreateBondMsg:
		env.CreateBond = &m
	case CreateBondAndTreasuryMsg:
		env.CreateBondAndTreasury = &m
	default:
		return nil, common.ErrUnknownMessage
	}
	return sonnet.Marshal(env)
}

func DecodeExecute(raw []byte) (ExecuteMsg, error) {
	var env executeEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("factory: decode execute: %w", err)
	}
	var out []ExecuteMsg
	if env.UpdateConfig != nil {
		out = append(out, *env.UpdateConfig)
	}
	if env.CreateTreasury != nil {
		out = append(out, *env.CreateTreasury)
	}
	if env.CreateBond != nil {
		out = append(out, *env.CreateBond)
	}
	if env.CreateBondAndTreasury != nil {
		out = append(out, *env.CreateBondAndTreasury)
	}
	if len(out) != 1 {
		return nil, common.ErrUnknownMessage
	}
	return out[0], nil
}

type configQuery struct{}

type stateQuery struct{}

type bondInfoQuery struct {
	BondID uint64 `json:"bond_id"`
}

type queryEnvelope struct {
	Config   *configQuery   `json:"config,omitempty"`
	State    *stateQuery    `json:"state,omitempty"`
	BondInfo *bondInfoQuery `json:"bond_info,omitempty"`
}

type ConfigResponse struct {
	CustomBondCode     uint64         `json:"custom_bond_id"`
	CustomTreasuryCode uint64         `json:"custom_treasury_id"`
	Treasury           crypto.Address `json:"treasury"`
	SubsidyRouter      crypto.Address `json:"subsidy_router"`
	OlympusDAO         crypto.Address `json:"olympus_dao"`
	Policy             crypto.Address `json:"policy"`
}

func EncodeConfigQuery() ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{Config: &configQuery{}})
}

func EncodeStateQuery() ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{State: &stateQuery{}})
}

func EncodeBondInfoQuery(id uint64) ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{BondInfo: &bondInfoQuery{BondID: id}})
}
