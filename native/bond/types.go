package bond

import (
	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
)

const (
	// MinVestingTerm is the shortest vesting window policy may configure, in
	// seconds (36 hours).
	MinVestingTerm uint64 = 129600

	// moduleName is the pause-guard key of bond contracts.
	moduleName = "bond"
)

var (
	// MaxPayoutCeiling bounds the per-bond payout as a fraction of supply.
	MaxPayoutCeiling = decimal.Percent(1)
	// MaxAdjustmentShare bounds an adjustment increment relative to the
	// current control variable.
	MaxAdjustmentShare = decimal.Percent(3)
)

// FeeTier maps cumulative principal bonded below TierCeiling to FeeRate.
type FeeTier struct {
	TierCeiling decimal.Uint    `json:"tier_ceiling"`
	FeeRate     decimal.Decimal `json:"fee_rate"`
}

// Config captures the addresses, assets and fee model of a bond. It is written
// at instantiation and afterwards only touched by privileged updates.
type Config struct {
	CustomTreasury    crypto.Address `json:"custom_treasury"`
	PayoutToken       types.Asset    `json:"payout_token"`
	PrincipalToken    types.Asset    `json:"principal_token"`
	OlympusTreasury   crypto.Address `json:"olympus_treasury"`
	SubsidyRouter     crypto.Address `json:"subsidy_router"`
	Policy            crypto.Address `json:"policy"`
	OlympusDAO        crypto.Address `json:"olympus_dao"`
	FeeTiers          []FeeTier      `json:"fee_tiers"`
	FeeInPayout       bool           `json:"fee_in_payout"`
	PayoutDecimals    uint8          `json:"payout_decimals"`
	PrincipalDecimals uint8          `json:"principal_decimals"`
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.FeeTiers = append([]FeeTier(nil), c.FeeTiers...)
	return &clone
}

// Terms are the pricing and capacity parameters of a bond.
type Terms struct {
	ControlVariable decimal.Decimal `json:"control_variable"`
	VestingTerm     uint64          `json:"vesting_term"`
	MinimumPrice    decimal.Decimal `json:"minimum_price"`
	// MaxPayout is a fraction of the payout token's total supply.
	MaxPayout decimal.Decimal `json:"max_payout"`
	MaxDebt   decimal.Uint    `json:"max_debt"`
}

// Adjustment schedules a rate-limited drift of the control variable toward
// Target.
type Adjustment struct {
	Addition bool            `json:"addition"`
	Rate     decimal.Decimal `json:"rate"`
	Target   decimal.Decimal `json:"target"`
	Buffer   uint64          `json:"buffer"`
	LastTime uint64          `json:"last_time"`
}

// State is the global ledger of a bond.
type State struct {
	TotalDebt              decimal.Uint `json:"total_debt"`
	Terms                  Terms        `json:"terms"`
	LastDecay              uint64       `json:"last_decay"`
	Adjustment             Adjustment   `json:"adjustment"`
	PayoutSinceLastSubsidy decimal.Uint `json:"payout_since_last_subsidy"`
	TotalPrincipalBonded   decimal.Uint `json:"total_principal_bonded"`
	TotalPayoutGiven       decimal.Uint `json:"total_payout_given"`
}

// Clone returns a copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// BondInfo is a depositor's vesting position.
type BondInfo struct {
	Payout        decimal.Uint    `json:"payout"`
	Vesting       uint64          `json:"vesting"`
	LastTime      uint64          `json:"last_time"`
	TruePricePaid decimal.Decimal `json:"true_price_paid"`
}

// Clone returns a copy of the bond info.
func (b *BondInfo) Clone() *BondInfo {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
