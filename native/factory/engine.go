// Package factory deploys custom treasury and custom bond pairs and keeps a
// registry of the bonds it created.
package factory

import (
	"strconv"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/events"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/common"
	"olympuspro/native/treasury"
)

type Engine struct {
	state   engineState
	emitter events.Emitter
	self    crypto.Address
}

func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetAddress(addr crypto.Address) { e.self = addr }

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) config() (*Config, error) {
	if e.state == nil {
		return nil, errNilState
	}
	cfg, ok, err := e.state.Config()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errConfigNotFound
	}
	return cfg, nil
}

// Instantiate stores the configuration with the sender as policy.
func (e *Engine) Instantiate(info types.MessageInfo, msg InstantiateMsg) (*types.Response, error) {
	if e.state == nil {
		return nil, errNilState
	}
	cfg := &Config{
		CustomBondCode:     msg.CustomBondCode,
		CustomTreasuryCode: msg.CustomTreasuryCode,
		Treasury:           msg.Treasury,
		SubsidyRouter:      msg.SubsidyRouter,
		OlympusDAO:         msg.OlympusDAO,
		Policy:             info.Sender,
	}
	if err := e.state.PutConfig(cfg); err != nil {
		return nil, err
	}
	if err := e.state.PutState(&State{}); err != nil {
		return nil, err
	}
	return types.NewResponse(), nil
}

func (e *Engine) Execute(info types.MessageInfo, msg ExecuteMsg) (*types.Response, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if err := common.AssertPolicy(info, cfg.Policy); err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case UpdateConfigMsg:
		return e.updateConfig(cfg, m)
	case CreateTreasuryMsg:
		sub, err := instantiateTreasury(cfg, m.PayoutToken, m.InitialOwner, replyTreasuryCreated, types.ReplyNever)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddSubMessage(sub).
			AddAttribute("action", "create_treasury"), nil
	case CreateBondMsg:
		pending := &pendingBond{
			PrincipalToken: m.PrincipalToken,
			CustomTreasury: m.CustomTreasury,
			InitialOwner:   m.InitialOwner,
			TierCeilings:   m.TierCeilings,
			FeeRates:       m.FeeRates,
			FeeInPayout:    m.FeeInPayout,
		}
		if err := e.state.PutPending(pending); err != nil {
			return nil, err
		}
		sub, err := instantiateBond(cfg, pending)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddSubMessage(sub).
			AddAttribute("action", "create_bond"), nil
	case CreateBondAndTreasuryMsg:
		pending := &pendingBond{
			PrincipalToken: m.PrincipalToken,
			InitialOwner:   m.InitialOwner,
			TierCeilings:   m.TierCeilings,
			FeeRates:       m.FeeRates,
			FeeInPayout:    m.FeeInPayout,
		}
		if err := e.state.PutPending(pending); err != nil {
			return nil, err
		}
		sub, err := instantiateTreasury(cfg, m.PayoutToken, m.InitialOwner, replyTreasuryCreated, types.ReplySuccess)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddSubMessage(sub).
			AddAttribute("action", "create_bond_and_treasury"), nil
	default:
		return nil, common.ErrUnknownMessage
	}
}

func (e *Engine) updateConfig(cfg *Config, msg UpdateConfigMsg) (*types.Response, error) {
	next := cfg.Clone()
	if msg.CustomBondCode != nil {
		next.CustomBondCode = *msg.CustomBondCode
	}
	if msg.CustomTreasuryCode != nil {
		next.CustomTreasuryCode = *msg.CustomTreasuryCode
	}
	if msg.Policy != nil {
		next.Policy = *msg.Policy
	}
	if err := e.state.PutConfig(next); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "update_config"), nil
}

func instantiateTreasury(cfg *Config, payout types.Asset, owner crypto.Address, id uint64, on types.ReplyOn) (types.SubMsg, error) {
	payload, err := sonnet.Marshal(treasury.InstantiateMsg{PayoutToken: payout, InitialOwner: owner})
	if err != nil {
		return types.SubMsg{}, err
	}
	return types.SubMsg{
		ID:      id,
		Msg:     types.InstantiateContractMsg{CodeID: cfg.CustomTreasuryCode, Msg: payload, Label: "custom treasury"},
		ReplyOn: on,
	}, nil
}

func instantiateBond(cfg *Config, pending *pendingBond) (types.SubMsg, error) {
	payload, err := sonnet.Marshal(bond.InstantiateMsg{
		CustomTreasury:  pending.CustomTreasury,
		PrincipalToken:  pending.PrincipalToken,
		OlympusTreasury: cfg.Treasury,
		SubsidyRouter:   cfg.SubsidyRouter,
		InitialOwner:    pending.InitialOwner,
		OlympusDAO:      cfg.OlympusDAO,
		TierCeilings:    pending.TierCeilings,
		FeeRates:        pending.FeeRates,
		FeeInPayout:     pending.FeeInPayout,
	})
	if err != nil {
		return types.SubMsg{}, err
	}
	return types.SubMsg{
		ID:      replyBondCreated,
		Msg:     types.InstantiateContractMsg{CodeID: cfg.CustomBondCode, Msg: payload, Label: "custom bond"},
		ReplyOn: types.ReplySuccess,
	}, nil
}

// Reply continues a creation in flight. A treasury reply chains the bond
// instantiate; a bond reply registers the deployed pair.
func (e *Engine) Reply(reply types.Reply) (*types.Response, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	pending, ok, err := e.state.Pending()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPendingBond
	}
	switch reply.ID {
	case replyTreasuryCreated:
		pending.CustomTreasury = reply.ContractAddress
		if err := e.state.PutPending(pending); err != nil {
			return nil, err
		}
		sub, err := instantiateBond(cfg, pending)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddSubMessage(sub).
			AddAttribute("action", "treasury_created").
			AddAttribute("custom_treasury", reply.ContractAddress.String()), nil
	case replyBondCreated:
		return e.registerBond(pending, reply.ContractAddress)
	default:
		return nil, ErrUnknownReply
	}
}

func (e *Engine) registerBond(pending *pendingBond, addr crypto.Address) (*types.Response, error) {
	st, err := e.state.State()
	if err != nil {
		return nil, err
	}
	id := st.BondLength
	record := &BondRecord{
		PrincipalToken: pending.PrincipalToken,
		CustomTreasury: pending.CustomTreasury,
		Bond:           addr,
		InitialOwner:   pending.InitialOwner,
		FeeTiers:       pending.feeTiers(),
		FeeInPayout:    pending.FeeInPayout,
	}
	if err := e.state.PutBond(id, record); err != nil {
		return nil, err
	}
	st.BondLength++
	if err := e.state.PutState(st); err != nil {
		return nil, err
	}
	if err := e.state.ClearPending(); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.BondRegistered{Factory: e.self, BondID: id, Bond: addr, Treasury: pending.CustomTreasury})
	return types.NewResponse().
		AddAttribute("action", "register_bond").
		AddAttribute("bond_id", strconv.FormatUint(id, 10)).
		AddAttribute("bond", addr.String()).
		AddAttribute("custom_treasury", pending.CustomTreasury.String()), nil
}

func (e *Engine) Config() (*ConfigResponse, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{
		CustomBondCode:     cfg.CustomBondCode,
		CustomTreasuryCode: cfg.CustomTreasuryCode,
		Treasury:           cfg.Treasury,
		SubsidyRouter:      cfg.SubsidyRouter,
		OlympusDAO:         cfg.OlympusDAO,
		Policy:             cfg.Policy,
	}, nil
}

func (e *Engine) State() (*State, error) {
	if e.state == nil {
		return nil, errNilState
	}
	return e.state.State()
}

// BondInfo returns the registry entry for id.
func (e *Engine) BondInfo(id uint64) (*BondRecord, error) {
	if e.state == nil {
		return nil, errNilState
	}
	record, ok, err := e.state.Bond(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBondNotFound
	}
	return record, nil
}
