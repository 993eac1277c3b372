package treasury

import (
	"fmt"

	"olympuspro/core/decimal"
	"olympuspro/core/events"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
	"olympuspro/native/token"
)

// moduleName is the pause-guard key of the treasury.
const moduleName = "treasury"

// Engine implements the custom treasury: it custodies the payout asset and
// releases it only to whitelisted bonds.
type Engine struct {
	state   engineState
	querier types.Querier
	emitter events.Emitter
	pauses  common.PauseView
	self    crypto.Address
}

// NewEngine creates a treasury engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetQuerier configures the peer query capability.
func (e *Engine) SetQuerier(q types.Querier) { e.querier = q }

// SetPauses configures the pause view consulted before releases.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetAddress records the treasury's own address for event reporting.
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
	if err := msg.PayoutToken.Validate(); err != nil {
		return nil, err
	}
	if msg.InitialOwner.IsZero() {
		return nil, errInvalidPolicy
	}
	cfg := &Config{PayoutToken: msg.PayoutToken, Policy: msg.InitialOwner}
	if err := e.state.PutConfig(cfg); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "instantiate"), nil
}

// Execute dispatches a treasury operation. SendPayoutTokens is open to
// whitelisted bonds; every other operation requires the policy.
func (e *Engine) Execute(info types.MessageInfo, msg ExecuteMsg) (*types.Response, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if m, ok := msg.(SendPayoutTokensMsg); ok {
		return e.sendPayoutTokens(cfg, info, m.Amount)
	}
	if err := common.AssertPolicy(info, cfg.Policy); err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case WithdrawMsg:
		return e.withdraw(m)
	case WhitelistBondMsg:
		return e.whitelistBond(m)
	case UpdateConfigMsg:
		return e.updateConfig(cfg, m)
	default:
		return nil, common.ErrUnknownMessage
	}
}

func (e *Engine) sendPayoutTokens(cfg *Config, info types.MessageInfo, amount decimal.Uint) (*types.Response, error) {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	whitelisted, err := e.state.Whitelisted(info.Sender)
	if err != nil {
		return nil, err
	}
	if !whitelisted {
		return nil, ErrNotWhitelisted
	}
	if amount.IsZero() {
		return nil, common.ErrAmountZero
	}
	transfer, err := token.TransferAsset(cfg.PayoutToken, info.Sender, amount)
	if err != nil {
		return nil, err
	}
	e.emitter.Emit(events.PayoutReleased{Treasury: e.self, Bond: info.Sender, Asset: cfg.PayoutToken, Amount: amount})
	return types.NewResponse().
		AddMessage(transfer).
		AddAttribute("action", "send_payout_token").
		AddAttribute("amount", amount.String()).
		AddAttribute("recipient", info.Sender.String()), nil
}

func (e *Engine) withdraw(msg WithdrawMsg) (*types.Response, error) {
	if err := msg.Asset.Validate(); err != nil {
		return nil, err
	}
	if msg.Recipient.IsZero() {
		return nil, errInvalidReceiver
	}
	if msg.Amount.IsZero() {
		return nil, common.ErrAmountZero
	}
	transfer, err := token.TransferAsset(msg.Asset, msg.Recipient, msg.Amount)
	if err != nil {
		return nil, err
	}
	e.emitter.Emit(events.TreasuryWithdrawal{Treasury: e.self, Recipient: msg.Recipient, Asset: msg.Asset, Amount: msg.Amount})
	return types.NewResponse().
		AddMessage(transfer).
		AddAttribute("action", "withdraw").
		AddAttribute("amount", msg.Amount.String()).
		AddAttribute("recipient", msg.Recipient.String()), nil
}

func (e *Engine) whitelistBond(msg WhitelistBondMsg) (*types.Response, error) {
	if msg.Bond.IsZero() {
		return nil, fmt.Errorf("treasury engine: bond address required")
	}
	if err := e.state.SetWhitelisted(msg.Bond, msg.Whitelist); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.BondWhitelistUpdated{Treasury: e.self, Bond: msg.Bond, Whitelisted: msg.Whitelist})
	return types.NewResponse().
		AddAttribute("action", "whitelist_bond").
		AddAttribute("bond", msg.Bond.String()).
		AddAttribute("whitelist", fmt.Sprintf("%t", msg.Whitelist)), nil
}

func (e *Engine) updateConfig(cfg *Config, msg UpdateConfigMsg) (*types.Response, error) {
	next := cfg.Clone()
	if msg.Policy != nil {
		if msg.Policy.IsZero() {
			return nil, errInvalidPolicy
		}
		next.Policy = *msg.Policy
	}
	if err := e.state.PutConfig(next); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "update_config"), nil
}

// Config returns the stored configuration.
func (e *Engine) Config() (*ConfigResponse, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	return &ConfigResponse{PayoutToken: cfg.PayoutToken, Policy: cfg.Policy}, nil
}

// BondWhitelist reports whether bond may request payouts.
func (e *Engine) BondWhitelist(bond crypto.Address) (*BondWhitelistResponse, error) {
	if e.state == nil {
		return nil, errNilState
	}
	whitelisted, err := e.state.Whitelisted(bond)
	if err != nil {
		return nil, err
	}
	return &BondWhitelistResponse{Whitelisted: whitelisted}, nil
}

// ValueOfToken converts amount of asset into payout-token units by rescaling
// between the two assets' decimal precisions.
func (e *Engine) ValueOfToken(asset types.Asset, amount decimal.Uint) (*ValueOfTokenResponse, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	assetInfo, err := token.QueryInfo(e.querier, asset)
	if err != nil {
		return nil, err
	}
	payoutInfo, err := token.QueryInfo(e.querier, cfg.PayoutToken)
	if err != nil {
		return nil, err
	}
	value, err := decimal.Rescale(amount, assetInfo.Decimals, payoutInfo.Decimals)
	if err != nil {
		return nil, err
	}
	return &ValueOfTokenResponse{Value: value}, nil
}
