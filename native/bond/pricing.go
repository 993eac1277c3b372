package bond

import "olympuspro/core/decimal"

// DebtRatio is current debt divided by the payout token supply.
func DebtRatio(st *State, supply decimal.Uint, now uint64) (decimal.Decimal, error) {
	if supply.IsZero() {
		return decimal.Decimal{}, errZeroSupply
	}
	current, err := CurrentDebt(st, now)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.FromRatio(current, supply)
}

// marketPrice is the unfloored control variable times debt ratio.
func marketPrice(st *State, supply decimal.Uint, now uint64) (decimal.Decimal, error) {
	ratio, err := DebtRatio(st, supply, now)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return st.Terms.ControlVariable.Mul(ratio)
}

// BondPrice is the market price floored at the minimum price.
func BondPrice(st *State, supply decimal.Uint, now uint64) (decimal.Decimal, error) {
	price, err := marketPrice(st, supply, now)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price.Max(st.Terms.MinimumPrice), nil
}

// TrueBondPrice adds the current protocol fee on top of the bond price.
func TrueBondPrice(cfg *Config, st *State, supply decimal.Uint, now uint64) (decimal.Decimal, error) {
	price, err := BondPrice(st, supply, now)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return withFee(price, CurrentFee(cfg, st))
}

func withFee(price, fee decimal.Decimal) (decimal.Decimal, error) {
	surcharge, err := price.Mul(fee)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return price.Add(surcharge)
}

// PayoutFor converts a principal amount into (payout, fee) at price. When the
// fee is charged in payout the fee is denominated in payout units, otherwise
// it is denominated in principal units and withheld before conversion.
func PayoutFor(cfg *Config, amount decimal.Uint, price, feeRate decimal.Decimal) (payout, fee decimal.Uint, err error) {
	if price.IsZero() {
		return decimal.Uint{}, decimal.Uint{}, ErrBondNotInitialized
	}
	if cfg.FeeInPayout {
		value, err := decimal.Rescale(amount, cfg.PrincipalDecimals, cfg.PayoutDecimals)
		if err != nil {
			return decimal.Uint{}, decimal.Uint{}, err
		}
		total, err := value.QuoDecimal(price)
		if err != nil {
			return decimal.Uint{}, decimal.Uint{}, err
		}
		if fee, err = total.MulDecimal(feeRate); err != nil {
			return decimal.Uint{}, decimal.Uint{}, err
		}
		if payout, err = total.Sub(fee); err != nil {
			return decimal.Uint{}, decimal.Uint{}, err
		}
		return payout, fee, nil
	}
	if fee, err = amount.MulDecimal(feeRate); err != nil {
		return decimal.Uint{}, decimal.Uint{}, err
	}
	net, err := amount.Sub(fee)
	if err != nil {
		return decimal.Uint{}, decimal.Uint{}, err
	}
	value, err := decimal.Rescale(net, cfg.PrincipalDecimals, cfg.PayoutDecimals)
	if err != nil {
		return decimal.Uint{}, decimal.Uint{}, err
	}
	if payout, err = value.QuoDecimal(price); err != nil {
		return decimal.Uint{}, decimal.Uint{}, err
	}
	return payout, fee, nil
}

// MaxPayout is the largest payout a single deposit may receive.
func MaxPayout(st *State, supply decimal.Uint) (decimal.Uint, error) {
	return supply.MulDecimal(st.Terms.MaxPayout)
}

// MinimumPayout is one hundredth of a whole payout token.
func MinimumPayout(payoutDecimals uint8) decimal.Uint {
	if payoutDecimals < 2 {
		return decimal.NewUint(1)
	}
	return decimal.Pow10(payoutDecimals - 2)
}
