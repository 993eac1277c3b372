package bond

import (
	"fmt"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"olympuspro/core/events"
	"olympuspro/core/state"
	"olympuspro/core/types"
	"olympuspro/native/common"
)

// Contract adapts the bond engine to the host contract interface. A fresh
// engine is assembled for every invocation from the deps handed in by the
// host.
type Contract struct {
	pauses common.PauseView
}

func New(pauses common.PauseView) *Contract { return &Contract{pauses: pauses} }

func (c *Contract) engine(deps types.Deps, env types.Env, emitter events.Emitter) *Engine {
	engine := NewEngine()
	engine.SetState(NewStore(state.NewManager(deps.Storage)))
	engine.SetQuerier(NewPeerQuerier(deps.Querier))
	engine.SetPauses(c.pauses)
	engine.SetAddress(env.Contract)
	engine.SetEmitter(emitter)
	blockTime := env.Time
	engine.SetNowFunc(func() time.Time { return blockTime })
	return engine
}

func (c *Contract) Instantiate(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := sonnet.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("bond: decode instantiate: %w", err)
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
	msg, err := DecodeQuery(raw)
	if err != nil {
		return nil, err
	}
	engine := c.engine(deps, env, nil)
	var out interface{}
	switch q := msg.(type) {
	case ConfigQuery:
		out, err = engine.Config()
	case StateQuery:
		out, err = engine.State()
	case BondPriceQuery:
		out, err = engine.BondPrice()
	case MaxPayoutQuery:
		out, err = engine.MaxPayout()
	case PayoutForQuery:
		out, err = engine.PayoutFor(q)
	case CurrentDebtQuery:
		out, err = engine.CurrentDebt()
	case CurrentOlympusFeeQuery:
		out, err = engine.CurrentOlympusFee()
	case BondInfoQuery:
		out, err = engine.BondInfo(q.User)
	default:
		return nil, common.ErrUnknownMessage
	}
	if err != nil {
		return nil, err
	}
	return sonnet.Marshal(out)
}

// Migrate is a no-op hook reserved for ledger schema migrations.
func (c *Contract) Migrate(deps types.Deps, env types.Env, raw []byte) (*types.Response, error) {
	return types.NewResponse().AddAttribute("action", "migrate"), nil
}
