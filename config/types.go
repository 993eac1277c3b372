package config

import (
	"olympuspro/core/decimal"
	"olympuspro/crypto"
)

// Deployment describes the contracts a fresh bond host is seeded with.
type Deployment struct {
	Accounts Accounts `toml:"accounts"`
	Native   []Native `toml:"native"`
	Tokens   []Token  `toml:"tokens"`
	Bonds    []Bond   `toml:"bonds"`
}

// Accounts holds the protocol level addresses shared by every bond.
type Accounts struct {
	// Policy owns the factory and the subsidy router.
	Policy          crypto.Address `toml:"policy"`
	DAO             crypto.Address `toml:"dao"`
	OlympusTreasury crypto.Address `toml:"olympus_treasury"`
}

// Native seeds a native coin balance.
type Native struct {
	Address crypto.Address `toml:"address"`
	Denom   string         `toml:"denom"`
	Amount  decimal.Uint   `toml:"amount"`
}

// Token is a fungible token deployed before any bond.
type Token struct {
	Key      string         `toml:"key"`
	Name     string         `toml:"name"`
	Symbol   string         `toml:"symbol"`
	Decimals uint8          `toml:"decimals"`
	Minter   crypto.Address `toml:"minter"`
	Balances []Balance      `toml:"balances"`
}

type Balance struct {
	Address crypto.Address `toml:"address"`
	Amount  decimal.Uint   `toml:"amount"`
}

// Bond is one treasury/bond pair created through the factory.
type Bond struct {
	// PayoutToken and PrincipalToken reference either a token key
	// ("token:<key>") or a native denomination ("native:<denom>").
	PayoutToken    string           `toml:"payout_token"`
	PrincipalToken string           `toml:"principal_token"`
	InitialOwner   crypto.Address   `toml:"initial_owner"`
	FeeInPayout    bool             `toml:"fee_in_payout"`
	FeeTiers       []FeeTier        `toml:"fee_tiers"`
	Terms          Terms            `toml:"terms"`
	Adjustment     *Adjustment      `toml:"adjustment"`
	Funding        *Funding         `toml:"funding"`
	Controllers    []crypto.Address `toml:"subsidy_controllers"`
}

type FeeTier struct {
	Ceiling decimal.Uint    `toml:"ceiling"`
	Rate    decimal.Decimal `toml:"rate"`
}

type Terms struct {
	ControlVariable decimal.Decimal `toml:"control_variable"`
	VestingTerm     uint64          `toml:"vesting_term"`
	MinimumPrice    decimal.Decimal `toml:"minimum_price"`
	MaxPayout       decimal.Decimal `toml:"max_payout"`
	MaxDebt         decimal.Uint    `toml:"max_debt"`
	InitialDebt     decimal.Uint    `toml:"initial_debt"`
}

type Adjustment struct {
	Addition  bool            `toml:"addition"`
	Increment decimal.Decimal `toml:"increment"`
	Target    decimal.Decimal `toml:"target"`
	Buffer    uint64          `toml:"buffer"`
}

// Funding moves payout tokens from From into the freshly created treasury.
type Funding struct {
	From   crypto.Address `toml:"from"`
	Amount decimal.Uint   `toml:"amount"`
}
