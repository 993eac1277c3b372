package factory

import (
	"errors"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
	"olympuspro/native/bond"
)

const (
	replyTreasuryCreated uint64 = 1
	replyBondCreated     uint64 = 2
)

var (
	// ErrBondNotFound is returned for unknown bond ids.
	ErrBondNotFound = errors.New("bond not found")
	// ErrNoPendingBond is returned when a reply arrives without a creation in
	// flight.
	ErrNoPendingBond = errors.New("no pending bond creation")
	// ErrUnknownReply rejects reply ids the factory never issued.
	ErrUnknownReply = errors.New("unknown reply id")

	errNilState       = errors.New("factory engine: state not configured")
	errConfigNotFound = errors.New("factory engine: config not found")
)

// Config holds the codes the factory deploys and the addresses every bond is
// wired to.
type Config struct {
	CustomBondCode     uint64
	CustomTreasuryCode uint64
	Treasury           crypto.Address
	SubsidyRouter      crypto.Address
	OlympusDAO         crypto.Address
	Policy             crypto.Address
}

func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// State counts registered bonds.
type State struct {
	BondLength uint64 `json:"bond_length"`
}

// BondRecord describes a bond deployed through the factory.
type BondRecord struct {
	PrincipalToken types.Asset    `json:"principal_token"`
	CustomTreasury crypto.Address `json:"custom_treasury"`
	Bond           crypto.Address `json:"bond"`
	InitialOwner   crypto.Address `json:"initial_owner"`
	FeeTiers       []bond.FeeTier `json:"fee_tiers"`
	FeeInPayout    bool           `json:"fee_in_payout"`
}

// pendingBond carries a creation request across instantiate replies. The
// custom treasury is zero until its instantiate reply arrives.
type pendingBond struct {
	PrincipalToken types.Asset
	CustomTreasury crypto.Address
	InitialOwner   crypto.Address
	TierCeilings   []decimal.Uint
	FeeRates       []decimal.Decimal
	FeeInPayout    bool
}

func (p *pendingBond) feeTiers() []bond.FeeTier {
	tiers := make([]bond.FeeTier, 0, len(p.TierCeilings))
	for i := range p.TierCeilings {
		if i >= len(p.FeeRates) {
			break
		}
		tiers = append(tiers, bond.FeeTier{TierCeiling: p.TierCeilings[i], FeeRate: p.FeeRates[i]})
	}
	return tiers
}
