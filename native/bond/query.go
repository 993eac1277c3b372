package bond

import "olympuspro/crypto"

// Config returns the stored configuration.
func (e *Engine) Config() (*Config, error) {
	cfg, _, err := e.load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// State returns the stored ledger without applying decay.
func (e *Engine) State() (*State, error) {
	_, st, err := e.load()
	if err != nil {
		return nil, err
	}
	return st, nil
}

// BondPrice returns the floored bond price and the fee-inclusive price.
func (e *Engine) BondPrice() (*BondPriceResponse, error) {
	cfg, st, err := e.load()
	if err != nil {
		return nil, err
	}
	supply, err := e.payoutSupply(cfg)
	if err != nil {
		return nil, err
	}
	now := e.now()
	price, err := BondPrice(st, supply, now)
	if err != nil {
		return nil, err
	}
	truePrice, err := withFee(price, CurrentFee(cfg, st))
	if err != nil {
		return nil, err
	}
	return &BondPriceResponse{Price: price, TruePrice: truePrice}, nil
}

// MaxPayout returns the payout cap of a single deposit.
func (e *Engine) MaxPayout() (*MaxPayoutResponse, error) {
	cfg, st, err := e.load()
	if err != nil {
		return nil, err
	}
	supply, err := e.payoutSupply(cfg)
	if err != nil {
		return nil, err
	}
	limit, err := MaxPayout(st, supply)
	if err != nil {
		return nil, err
	}
	return &MaxPayoutResponse{MaxPayout: limit}, nil
}

// PayoutFor quotes the payout and fee a deposit of amount principal would
// receive now.
func (e *Engine) PayoutFor(q PayoutForQuery) (*PayoutForResponse, error) {
	cfg, st, err := e.load()
	if err != nil {
		return nil, err
	}
	supply, err := e.payoutSupply(cfg)
	if err != nil {
		return nil, err
	}
	price, err := BondPrice(st, supply, e.now())
	if err != nil {
		return nil, err
	}
	payout, fee, err := PayoutFor(cfg, q.Amount, price, CurrentFee(cfg, st))
	if err != nil {
		return nil, err
	}
	return &PayoutForResponse{Payout: payout, Fee: fee}, nil
}

// CurrentDebt returns the decayed debt at the current time.
func (e *Engine) CurrentDebt() (*CurrentDebtResponse, error) {
	_, st, err := e.load()
	if err != nil {
		return nil, err
	}
	debt, err := CurrentDebt(st, e.now())
	if err != nil {
		return nil, err
	}
	return &CurrentDebtResponse{CurrentDebt: debt}, nil
}

// CurrentOlympusFee returns the fee rate of the active tier.
func (e *Engine) CurrentOlympusFee() (*CurrentOlympusFeeResponse, error) {
	cfg, st, err := e.load()
	if err != nil {
		return nil, err
	}
	return &CurrentOlympusFeeResponse{Fee: CurrentFee(cfg, st)}, nil
}

// BondInfo returns a depositor's position together with the payout
// redeemable right now. Unknown depositors yield an empty position.
func (e *Engine) BondInfo(user crypto.Address) (*BondInfoResponse, error) {
	if e.state == nil {
		return nil, errNilState
	}
	info, ok, err := e.state.BondInfo(user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &BondInfoResponse{}, nil
	}
	pending, err := PendingPayout(info, e.now())
	if err != nil {
		return nil, err
	}
	return &BondInfoResponse{BondInfo: *info, PendingPayout: pending}, nil
}
