package subsidy

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/crypto"
	"olympuspro/native/common"
)

type InstantiateMsg struct {
	Policy crypto.Address `json:"policy"`
}

// ExecuteMsg is the closed set of router operations.
type ExecuteMsg interface {
	isExecuteMsg()
}

type PaySubsidyMsg struct{}

type UpdateConfigMsg struct {
	Policy *crypto.Address `json:"policy,omitempty"`
}

type AddSubsidyControllerMsg struct {
	Controller crypto.Address `json:"subsidy_controller"`
	Bond       crypto.Address `json:"bond"`
}

type RemoveSubsidyControllerMsg struct {
	Controller crypto.Address `json:"subsidy_controller"`
}

func (PaySubsidyMsg) isExecuteMsg()              {}
func (UpdateConfigMsg) isExecuteMsg()            {}
func (AddSubsidyControllerMsg) isExecuteMsg()    {}
func (RemoveSubsidyControllerMsg) isExecuteMsg() {}

type executeEnvelope struct {
	PaySubsidy              *PaySubsidyMsg              `json:"pay_subsidy,omitempty"`
	UpdateConfig            *UpdateConfigMsg            `json:"update_config,omitempty"`
	AddSubsidyController    *AddSubsidyControllerMsg    `json:"add_subsidy_controller,omitempty"`
	RemoveSubsidyController *RemoveSubsidyControllerMsg `json:"remove_subsidy_controller,omitempty"`
}

func EncodeExecute(msg ExecuteMsg) ([]byte, error) {
	var env executeEnvelope
	switch m := msg.(type) {
	case PaySubsidyMsg:
		env.PaySubsidy = &m
	case UpdateConfigMsg:
		env.UpdateConfig = &m
	case AddSubsidyControllerMsg:
		env.AddSubsidyController = &m
	case RemoveSubsidyControllerMsg:
		env.RemoveSubsidyController = &m
	default:
		return nil, common.ErrUnknownMessage
	}
	return sonnet.Marshal(env)
}

func DecodeExecute(raw []byte) (ExecuteMsg, error) {
	var env executeEnvelope
	if err := sonnet.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("subsidy: decode execute: %w", err)
	}
	var out []ExecuteMsg
	if env.PaySubsidy != nil {
		out = append(out, *env.PaySubsidy)
	}
	if env.UpdateConfig != nil {
		out = append(out, *env.UpdateConfig)
	}
	if env.AddSubsidyController != nil {
		out = append(out, *env.AddSubsidyController)
	}
	if env.RemoveSubsidyController != nil {
		out = append(out, *env.RemoveSubsidyController)
	}
	if len(out) != 1 {
		return nil, common.ErrUnknownMessage
	}
	return out[0], nil
}

type configQuery struct{}

type bondForControllerQuery struct {
	Controller crypto.Address `json:"subsidy_controller"`
}

type queryEnvelope struct {
	Config            *configQuery            `json:"config,omitempty"`
	BondForController *bondForControllerQuery `json:"bond_for_controller,omitempty"`
}

type ConfigResponse struct {
	Policy crypto.Address `json:"policy"`
}

type BondForControllerResponse struct {
	Bond crypto.Address `json:"bond"`
}

func EncodeConfigQuery() ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{Config: &configQuery{}})
}

func EncodeBondForControllerQuery(controller crypto.Address) ([]byte, error) {
	return sonnet.Marshal(queryEnvelope{BondForController: &bondForControllerQuery{Controller: controller}})
}
