// Package subsidy implements the subsidy router. Each registered controller
// is bound to one bond and may settle that bond's subsidy counter.
package subsidy

import (
	"fmt"

	"olympuspro/core/events"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
	"olympuspro/native/common"
)

// BondQuerier reads a bond's ledger.
type BondQuerier interface {
	BondState(addr crypto.Address) (*bond.State, error)
}

type peerQuerier struct {
	q types.Querier
}

// NewPeerQuerier answers router queries through the host querier.
func NewPeerQuerier(q types.Querier) BondQuerier { return peerQuerier{q: q} }

func (p peerQuerier) BondState(addr crypto.Address) (*bond.State, error) {
	return bond.QueryState(p.q, addr)
}

type Engine struct {
	state   engineState
	querier BondQuerier
	emitter events.Emitter
	self    crypto.Address
}

func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetQuerier(q BondQuerier) { e.querier = q }

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

func (e *Engine) Instantiate(msg InstantiateMsg) (*types.Response, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if msg.Policy.IsZero() {
		return nil, errInvalidPolicy
	}
	if err := e.state.PutConfig(&Config{Policy: msg.Policy}); err != nil {
		return nil, err
	}
	return types.NewResponse(), nil
}

// Execute dispatches a router operation. PaySubsidy is open to registered
// controllers; everything else requires the policy.
func (e *Engine) Execute(info types.MessageInfo, msg ExecuteMsg) (*types.Response, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if _, ok := msg.(PaySubsidyMsg); ok {
		return e.paySubsidy(info)
	}
	if err := common.AssertPolicy(info, cfg.Policy); err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case UpdateConfigMsg:
		next := cfg.Clone()
		if m.Policy != nil {
			if m.Policy.IsZero() {
				return nil, errInvalidPolicy
			}
			next.Policy = *m.Policy
		}
		if err := e.state.PutConfig(next); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "update_config"), nil
	case AddSubsidyControllerMsg:
		return e.addController(m)
	case RemoveSubsidyControllerMsg:
		return e.removeController(m)
	default:
		return nil, common.ErrUnknownMessage
	}
}

// paySubsidy forwards PaySubsidy to the controller's bond and reports the
// payout accrued since the last settlement.
func (e *Engine) paySubsidy(info types.MessageInfo) (*types.Response, error) {
	target, ok, err := e.state.BondFor(info.Sender)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrControllerNotFound
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	st, err := e.querier.BondState(target)
	if err != nil {
		return nil, err
	}
	payload, err := bond.EncodeExecute(bond.PaySubsidyMsg{})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(types.ExecuteContractMsg{Contract: target, Msg: payload}).
		AddAttribute("action", "pay_subsidy").
		AddAttribute("amount", st.PayoutSinceLastSubsidy.String()), nil
}

func (e *Engine) addController(msg AddSubsidyControllerMsg) (*types.Response, error) {
	if msg.Controller.IsZero() || msg.Bond.IsZero() {
		return nil, fmt.Errorf("subsidy engine: controller and bond required")
	}
	if err := e.state.PutController(msg.Controller, msg.Bond); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.SubsidyControllerUpdated{Router: e.self, Controller: msg.Controller, Bond: msg.Bond})
	return types.NewResponse().
		AddAttribute("action", "add_subsidy_controller").
		AddAttribute("subsidy_controller", msg.Controller.String()).
		AddAttribute("bond", msg.Bond.String()), nil
}

func (e *Engine) removeController(msg RemoveSubsidyControllerMsg) (*types.Response, error) {
	if err := e.state.DeleteController(msg.Controller); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.SubsidyControllerUpdated{Router: e.self, Controller: msg.Controller, Removed: true})
	return types.NewResponse().
		AddAttribute("action", "remove_subsidy_controller").
		AddAttribute("subsidy_controller", msg.Controller.String()), nil
}

// Config returns the stored configuration.
func (e *Engine) Config() (*ConfigResponse, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{Policy: cfg.Policy}, nil
}

// BondForController resolves the bond bound to controller.
func (e *Engine) BondForController(controller crypto.Address) (*BondForControllerResponse, error) {
	if e.state == nil {
		return nil, errNilState
	}
	target, ok, err := e.state.BondFor(controller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrControllerNotFound
	}
	return &BondForControllerResponse{Bond: target}, nil
}
