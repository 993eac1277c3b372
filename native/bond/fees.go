package bond

import "olympuspro/core/decimal"

// CurrentFee resolves the protocol fee rate for the cumulative principal
// bonded so far. The first tier whose ceiling exceeds that total applies;
// past the last ceiling the last rate applies.
func CurrentFee(cfg *Config, st *State) decimal.Decimal {
	if len(cfg.FeeTiers) == 0 {
		return decimal.Zero()
	}
	for _, tier := range cfg.FeeTiers {
		if st.TotalPrincipalBonded.LT(tier.TierCeiling) {
			return tier.FeeRate
		}
	}
	return cfg.FeeTiers[len(cfg.FeeTiers)-1].FeeRate
}

func buildFeeTiers(ceilings []decimal.Uint, rates []decimal.Decimal) ([]FeeTier, error) {
	if len(ceilings) != len(rates) {
		return nil, ErrTierLengthMismatch
	}
	tiers := make([]FeeTier, len(ceilings))
	for i := range ceilings {
		tiers[i] = FeeTier{TierCeiling: ceilings[i], FeeRate: rates[i]}
	}
	return tiers, nil
}
