package factory

import (
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/events"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/native/common"
)

// Contract adapts the factory engine to the host contract interface. It also
// implements types.Replier to receive instantiate results.
type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) engine(deps types.Deps, env types.Env, emitter events.Emitter) *Engine {
	engine := NewEngine()
	engine.SetState(NewStore(state.NewManager(deps.Storage)))
	engine.SetAddress(env.Contract)
	engine.SetEmitter(emitter)
	return engine
}

func (c *Contract) Instantiate(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("factory: decode instantiate: %w", err)
	}
	return c.engine(deps, env, nil).Instantiate(info, msg)
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	msg, err := DecodeExecute(raw)
	if err != nil {
		return nil, err
	}
	return c.engine(deps, env, nil).Execute(info, msg)
}

func (c *Contract) Reply(deps types.Deps, env types.Env, reply types.Reply) (*types.Response, error) {
	collector := &events.Collector{}
	resp, err := c.engine(deps, env, collector).Reply(reply)
	if err != nil {
		return nil, err
	}
	resp.Events = append(resp.Events, collector.Drain()...)
	return resp, nil
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg queryEnvelope
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("factory: decode query: %w", err)
	}
	engine := c.engine(deps, env, nil)
	var (
		out interface{}
		err error
	)
	switch {
	case msg.Config != nil:
		out, err = engine.Config()
	case msg.State != nil:
		out, err = engine.State()
	case msg.BondInfo != nil:
		out, err = engine.BondInfo(msg.BondInfo.BondID)
	default:
		return nil, common.ErrUnknownMessage
	}
	if err != nil {
		return nil, err
	}
	return sonnet.Marshal(out)
}

func (c *Contract) Migrate(deps types.Deps, env types.Env, raw []byte) (*types.Response, error) {
	return types.NewResponse(), nil
}
