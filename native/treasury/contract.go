package treasury

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/events"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/native/common"
)

// Contract adapts the treasury engine to the host contract interface.
type Contract struct {
	pauses common.PauseView
}

func New(pauses common.PauseView) *Contract { return &Contract{pauses: pauses} }

func (c *Contract) engine(deps types.Deps, env types.Env, emitter events.Emitter) *Engine {
	engine := NewEngine()
	engine.SetState(NewStore(state.NewManager(deps.Storage)))
	engine.SetQuerier(deps.Querier)
	engine.SetPauses(c.pauses)
	engine.SetAddress(env.Contract)
	engine.SetEmitter(emitter)
	return engine
}

func (c *Contract) Instantiate(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("treasury: decode instantiate: %w", err)
	}
	return c.engine(deps, env, nil).Instantiate(msg)
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	msg, err := DecodeExecute(raw)
	if err != nil {
		return nil, err
	}
	collector := &events.Collector{}
	resp, err := c.engine(deps, env, collector).Execute(info, msg)
	if err != nil {
		return nil, err
	}
	resp.Events = append(resp.Events, collector.Drain()...)
	return resp, nil
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg queryEnvelope
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("treasury: decode query: %w", err)
	}
	engine := c.engine(deps, env, nil)
	switch {
	case msg.Config != nil:
		resp, err := engine.Config()
		if err != nil {
			return nil, err
		}
		return sonnet.Marshal(resp)
	case msg.BondWhitelist != nil:
		resp, err := engine.BondWhitelist(msg.BondWhitelist.Bond)
		if err != nil {
			return nil, err
		}
		return sonnet.Marshal(resp)
	case msg.ValueOfToken != nil:
		resp, err := engine.ValueOfToken(msg.ValueOfToken.Asset, msg.ValueOfToken.Amount)
		if err != nil {
			return nil, err
		}
		return sonnet.Marshal(resp)
	default:
		return nil, common.ErrUnknownMessage
	}
}

func (c *Contract) Migrate(deps types.Deps, env types.Env, raw []byte) (*types.Response, error) {
	return types.NewResponse(), nil
}
