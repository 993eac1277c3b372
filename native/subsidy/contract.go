package subsidy

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/events"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/native/common"
)

// Contract adapts the router engine to the host contract interface.
type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) engine(deps types.Deps, env types.Env, emitter events.Emitter) *Engine {
	engine := NewEngine()
	engine.SetState(NewStore(state.NewManager(deps.Storage)))
	engine.SetQuerier(NewPeerQuerier(deps.Querier))
	engine.SetAddress(env.Contract)
	engine.SetEmitter(emitter)
	return engine
}

func (c *Contract) Instantiate(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("subsidy: decode instantiate: %w", err)
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
		return nil, fmt.Errorf("subsidy: decode query: %w", err)
	}
	engine := c.engine(deps, env, nil)
	switch {
	case msg.Config != nil:
		resp, err := engine.Config()
		if err != nil {
			return nil, err
		}
		return sonnet.Marshal(resp)
	case msg.BondForController != nil:
		resp, err := engine.BondForController(msg.BondForController.Controller)
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
