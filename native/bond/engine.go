// Package bond implements the custom bond: a discounted sale of a payout
// token against a principal asset, priced by a control variable times the
// outstanding debt ratio and released to depositors over a vesting term.
package bond

import (
	"fmt"
	"strconv"
	"time"

	"olympuspro/core/decimal"
	"olympuspro/core/events"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/common"
	"olympuspro/native/token"
	"olympuspro/native/treasury"
)

// Engine wires the bond business logic with its ledger, the peer querier and
// an event emitter. One engine serves one bond instance.
type Engine struct {
	state   engineState
	querier Querier
	emitter events.Emitter
	pauses  common.PauseView
	self    crypto.Address
	nowFn   func() time.Time
}

// NewEngine creates a bond engine with a no-op emitter and the wall clock.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   time.Now,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetQuerier configures the peer query capability.
func (e *Engine) SetQuerier(q Querier) { e.querier = q }

// SetPauses configures the pause view consulted before deposits.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetAddress records the bond's own address for event reporting.
func (e *Engine) SetAddress(addr crypto.Address) { e.self = addr }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = time.Now
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) now() uint64 {
	ts := e.nowFn().Unix()
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func (e *Engine) load() (*Config, *State, error) {
	if e.state == nil {
		return nil, nil, errNilState
	}
	cfg, ok, err := e.state.Config()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errConfigNotFound
	}
	st, ok, err := e.state.State()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errStateNotFound
	}
	return cfg, st, nil
}

func (e *Engine) payoutSupply(cfg *Config) (decimal.Uint, error) {
	if e.querier == nil {
		return decimal.Uint{}, errNilQuerier
	}
	info, err := e.querier.TokenInfo(cfg.PayoutToken)
	if err != nil {
		return decimal.Uint{}, err
	}
	return info.TotalSupply, nil
}

// Instantiate stores the configuration and a zeroed ledger. The payout token
// is read from the custom treasury and both assets' precisions are queried.
func (e *Engine) Instantiate(msg InstantiateMsg) (*types.Response, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	tiers, err := buildFeeTiers(msg.TierCeilings, msg.FeeRates)
	if err != nil {
		return nil, err
	}
	if err := msg.PrincipalToken.Validate(); err != nil {
		return nil, err
	}
	payoutToken, err := e.querier.TreasuryPayoutToken(msg.CustomTreasury)
	if err != nil {
		return nil, err
	}
	payoutInfo, err := e.querier.TokenInfo(payoutToken)
	if err != nil {
		return nil, err
	}
	principalInfo, err := e.querier.TokenInfo(msg.PrincipalToken)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		CustomTreasury:    msg.CustomTreasury,
		PayoutToken:       payoutToken,
		PrincipalToken:    msg.PrincipalToken,
		OlympusTreasury:   msg.OlympusTreasury,
		SubsidyRouter:     msg.SubsidyRouter,
		Policy:            msg.InitialOwner,
		OlympusDAO:        msg.OlympusDAO,
		FeeTiers:          tiers,
		FeeInPayout:       msg.FeeInPayout,
		PayoutDecimals:    payoutInfo.Decimals,
		PrincipalDecimals: principalInfo.Decimals,
	}
	if err := e.state.PutConfig(cfg); err != nil {
		return nil, err
	}
	if err := e.state.PutState(&State{}); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("payout_token", payoutToken.String()).
		AddAttribute("principal_token", msg.PrincipalToken.String()), nil
}

// Execute dispatches a bond operation. Public operations are matched first;
// anything else requires the policy.
func (e *Engine) Execute(info types.MessageInfo, msg ExecuteMsg) (*types.Response, error) {
	cfg, st, err := e.load()
	if err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case ReceiveMsg:
		return e.receive(cfg, st, info, m)
	case DepositMsg:
		amount, err := receivedNativeFunds(cfg, info)
		if err != nil {
			return nil, err
		}
		return e.deposit(cfg, st, amount, m.MaxPrice, m.Depositor)
	case RedeemMsg:
		return e.redeem(cfg, m.User)
	case PaySubsidyMsg:
		return e.paySubsidy(cfg, st, info)
	case UpdateOlympusTreasuryMsg:
		return e.updateOlympusTreasury(cfg, info, m)
	}
	if err := common.AssertPolicy(info, cfg.Policy); err != nil {
		return nil, err
	}
	switch m := msg.(type) {
	case UpdateConfigMsg:
		return e.updateConfig(cfg, m)
	case InitializeBondMsg:
		return e.initializeBond(st, m)
	case SetBondTermsMsg:
		return e.setBondTerms(st, m)
	case SetAdjustmentMsg:
		return e.setAdjustment(st, m)
	default:
		return nil, common.ErrUnknownMessage
	}
}

func (e *Engine) receive(cfg *Config, st *State, info types.MessageInfo, msg ReceiveMsg) (*types.Response, error) {
	if cfg.PrincipalToken.IsNative() || !info.Sender.Equal(cfg.PrincipalToken.Contract) {
		return nil, ErrInvalidCW20Token
	}
	hook, err := decodeDepositHook(msg.Msg)
	if err != nil {
		return nil, err
	}
	return e.deposit(cfg, st, msg.Amount, hook.MaxPrice, hook.Depositor)
}

// receivedNativeFunds extracts the deposit from the attached coins. Exactly
// one coin of the principal denomination is accepted.
func receivedNativeFunds(cfg *Config, info types.MessageInfo) (decimal.Uint, error) {
	if !cfg.PrincipalToken.IsNative() {
		return decimal.Uint{}, ErrTokenPrincipal
	}
	if len(info.Funds) != 1 || info.Funds[0].Denom != cfg.PrincipalToken.Denom {
		return decimal.Uint{}, ErrInvalidDenom
	}
	return info.Funds[0].Amount, nil
}

// deposit exchanges amount of principal for a vesting payout.
func (e *Engine) deposit(cfg *Config, st *State, amount decimal.Uint, maxPrice decimal.Decimal, depositor crypto.Address) (*types.Response, error) {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, common.ErrAmountZero
	}
	if depositor.IsZero() {
		return nil, fmt.Errorf("bond engine: depositor required")
	}
	now := e.now()
	if err := DecayDebt(st, now); err != nil {
		return nil, err
	}
	supply, err := e.payoutSupply(cfg)
	if err != nil {
		return nil, err
	}

	market, err := marketPrice(st, supply, now)
	if err != nil {
		return nil, err
	}
	price := market.Max(st.Terms.MinimumPrice)
	if price.IsZero() {
		return nil, ErrBondNotInitialized
	}
	if !st.Terms.MinimumPrice.IsZero() && market.GT(st.Terms.MinimumPrice) {
		st.Terms.MinimumPrice = decimal.Zero()
	}
	feeRate := CurrentFee(cfg, st)
	truePrice, err := withFee(price, feeRate)
	if err != nil {
		return nil, err
	}
	if maxPrice.LT(truePrice) {
		return nil, ErrSlippageLimit
	}

	value, err := decimal.Rescale(amount, cfg.PrincipalDecimals, cfg.PayoutDecimals)
	if err != nil {
		return nil, err
	}
	payout, fee, err := PayoutFor(cfg, amount, price, feeRate)
	if err != nil {
		return nil, err
	}
	if payout.LT(MinimumPayout(cfg.PayoutDecimals)) {
		return nil, ErrBondTooSmall
	}
	maxPayout, err := MaxPayout(st, supply)
	if err != nil {
		return nil, err
	}
	if payout.GT(maxPayout) {
		return nil, ErrBondTooLarge
	}
	if st.TotalDebt, err = st.TotalDebt.Add(value); err != nil {
		return nil, err
	}
	if st.TotalDebt.GT(st.Terms.MaxDebt) {
		return nil, ErrMaxCapacity
	}

	info, _, err := e.state.BondInfo(depositor)
	if err != nil {
		return nil, err
	}
	if info == nil {
		info = &BondInfo{}
	}
	if info.Payout, err = info.Payout.Add(payout); err != nil {
		return nil, err
	}
	info.Vesting = st.Terms.VestingTerm
	info.LastTime = now
	info.TruePricePaid = truePrice

	if st.TotalPrincipalBonded, err = st.TotalPrincipalBonded.Add(amount); err != nil {
		return nil, err
	}
	if st.TotalPayoutGiven, err = st.TotalPayoutGiven.Add(payout); err != nil {
		return nil, err
	}
	if st.PayoutSinceLastSubsidy, err = st.PayoutSinceLastSubsidy.Add(payout); err != nil {
		return nil, err
	}

	resp := types.NewResponse()
	if err := e.settleDeposit(resp, cfg, amount, payout, fee); err != nil {
		return nil, err
	}

	ticked, initial, err := Adjust(st, now)
	if err != nil {
		return nil, err
	}
	if err := e.state.PutBondInfo(depositor, info); err != nil {
		return nil, err
	}
	if err := e.state.PutState(st); err != nil {
		return nil, err
	}

	e.emitter.Emit(events.BondDeposited{
		Bond:      e.self,
		Depositor: depositor,
		Deposit:   amount,
		Payout:    payout,
		Fee:       fee,
		Expires:   now + st.Terms.VestingTerm,
		Price:     truePrice,
	})
	if ticked {
		e.emitter.Emit(events.ControlVariableAdjusted{
			Bond:     e.self,
			Initial:  initial,
			Current:  st.Terms.ControlVariable,
			Rate:     st.Adjustment.Rate,
			Addition: st.Adjustment.Addition,
		})
	}
	resp.AddAttribute("action", "deposit").
		AddAttribute("depositor", depositor.String()).
		AddAttribute("amount", amount.String()).
		AddAttribute("payout", payout.String()).
		AddAttribute("fee", fee.String()).
		AddAttribute("true_price", truePrice.String()).
		AddAttribute("adjusted", strconv.FormatBool(ticked))
	if ticked {
		resp.AddAttribute("initial_control_variable", initial.String()).
			AddAttribute("control_variable", st.Terms.ControlVariable.String())
	}
	return resp, nil
}

// settleDeposit appends the transfers of a deposit: principal to the custom
// treasury, payout (plus a payout-denominated fee) requested from the
// treasury, and the protocol fee to the olympus treasury.
func (e *Engine) settleDeposit(resp *types.Response, cfg *Config, amount, payout, fee decimal.Uint) error {
	principalFee := decimal.ZeroUint()
	payoutFee := decimal.ZeroUint()
	if cfg.FeeInPayout {
		payoutFee = fee
	} else {
		principalFee = fee
	}
	forwarded, err := amount.Sub(principalFee)
	if err != nil {
		return err
	}
	if !forwarded.IsZero() {
		msg, err := token.TransferAsset(cfg.PrincipalToken, cfg.CustomTreasury, forwarded)
		if err != nil {
			return err
		}
		resp.AddMessage(msg)
	}
	if !principalFee.IsZero() {
		msg, err := token.TransferAsset(cfg.PrincipalToken, cfg.OlympusTreasury, principalFee)
		if err != nil {
			return err
		}
		resp.AddMessage(msg)
	}
	requested, err := payout.Add(payoutFee)
	if err != nil {
		return err
	}
	payload, err := treasury.EncodeExecute(treasury.SendPayoutTokensMsg{Amount: requested})
	if err != nil {
		return err
	}
	resp.AddMessage(types.ExecuteContractMsg{Contract: cfg.CustomTreasury, Msg: payload})
	if !payoutFee.IsZero() {
		msg, err := token.TransferAsset(cfg.PayoutToken, cfg.OlympusTreasury, payoutFee)
		if err != nil {
			return err
		}
		resp.AddMessage(msg)
	}
	return nil
}

// redeem releases the vested part of user's payout.
func (e *Engine) redeem(cfg *Config, user crypto.Address) (*types.Response, error) {
	info, ok, err := e.state.BondInfo(user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNothingToRedeem
	}
	released, done, err := vest(info, e.now())
	if err != nil {
		return nil, err
	}
	if done {
		err = e.state.DeleteBondInfo(user)
	} else {
		err = e.state.PutBondInfo(user, info)
	}
	if err != nil {
		return nil, err
	}
	transfer, err := token.TransferAsset(cfg.PayoutToken, user, released)
	if err != nil {
		return nil, err
	}
	e.emitter.Emit(events.BondRedeemed{Bond: e.self, Recipient: user, Payout: released, Remaining: info.Payout})
	return types.NewResponse().
		AddMessage(transfer).
		AddAttribute("action", "redeem").
		AddAttribute("recipient", user.String()).
		AddAttribute("amount", released.String()).
		AddAttribute("remaining", info.Payout.String()), nil
}

func (e *Engine) paySubsidy(cfg *Config, st *State, info types.MessageInfo) (*types.Response, error) {
	if cfg.SubsidyRouter.IsZero() || !info.Sender.Equal(cfg.SubsidyRouter) {
		return nil, ErrOnlySubsidyController
	}
	paid := st.PayoutSinceLastSubsidy
	st.PayoutSinceLastSubsidy = decimal.ZeroUint()
	if err := e.state.PutState(st); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.SubsidyPaid{Bond: e.self, Amount: paid})
	return types.NewResponse().
		AddAttribute("action", "pay_subsidy").
		AddAttribute("amount", paid.String()), nil
}

func (e *Engine) updateOlympusTreasury(cfg *Config, info types.MessageInfo, msg UpdateOlympusTreasuryMsg) (*types.Response, error) {
	if cfg.OlympusDAO.IsZero() || !info.Sender.Equal(cfg.OlympusDAO) {
		return nil, common.ErrUnauthorized
	}
	if msg.OlympusTreasury.IsZero() {
		return nil, fmt.Errorf("bond engine: olympus treasury required")
	}
	next := cfg.Clone()
	next.OlympusTreasury = msg.OlympusTreasury
	if err := e.state.PutConfig(next); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "update_olympus_treasury").
		AddAttribute("olympus_treasury", msg.OlympusTreasury.String()), nil
}

func (e *Engine) updateConfig(cfg *Config, msg UpdateConfigMsg) (*types.Response, error) {
	next := cfg.Clone()
	if msg.Policy != nil {
		next.Policy = *msg.Policy
	}
	if msg.OlympusTreasury != nil {
		next.OlympusTreasury = *msg.OlympusTreasury
	}
	if err := e.state.PutConfig(next); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "update_config"), nil
}

func validateTerms(terms Terms) error {
	if terms.VestingTerm < MinVestingTerm {
		return ErrVestingTooShort
	}
	if terms.MaxPayout.GT(MaxPayoutCeiling) {
		return ErrPayoutAboveOnePercent
	}
	return nil
}

func (e *Engine) initializeBond(st *State, msg InitializeBondMsg) (*types.Response, error) {
	now := e.now()
	current, err := CurrentDebt(st, now)
	if err != nil {
		return nil, err
	}
	if !current.IsZero() {
		return nil, ErrDebtNotZero
	}
	if err := validateTerms(msg.Terms); err != nil {
		return nil, err
	}
	st.Terms = msg.Terms
	st.TotalDebt = msg.InitialDebt
	st.LastDecay = now
	if err := e.state.PutState(st); err != nil {
		return nil, err
	}
	e.emitter.Emit(events.BondInitialized{
		Bond:            e.self,
		ControlVariable: msg.Terms.ControlVariable,
		VestingTerm:     msg.Terms.VestingTerm,
		InitialDebt:     msg.InitialDebt,
	})
	return types.NewResponse().AddAttribute("action", "initialize_bond"), nil
}

func (e *Engine) setBondTerms(st *State, msg SetBondTermsMsg) (*types.Response, error) {
	if msg.VestingTerm != nil {
		if *msg.VestingTerm < MinVestingTerm {
			return nil, ErrVestingTooShort
		}
		st.Terms.VestingTerm = *msg.VestingTerm
	}
	if msg.MaxPayout != nil {
		if msg.MaxPayout.GT(MaxPayoutCeiling) {
			return nil, ErrPayoutAboveOnePercent
		}
		st.Terms.MaxPayout = *msg.MaxPayout
	}
	if msg.MaxDebt != nil {
		st.Terms.MaxDebt = *msg.MaxDebt
	}
	if err := e.state.PutState(st); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "set_bond_terms"), nil
}

func (e *Engine) setAdjustment(st *State, msg SetAdjustmentMsg) (*types.Response, error) {
	if err := validateIncrement(st.Terms.ControlVariable, msg.Increment); err != nil {
		return nil, err
	}
	st.Adjustment = Adjustment{
		Addition: msg.Addition,
		Rate:     msg.Increment,
		Target:   msg.Target,
		Buffer:   msg.Buffer,
		LastTime: e.now(),
	}
	if err := e.state.PutState(st); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "set_adjustment"), nil
}
