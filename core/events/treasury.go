package events

import (
	"strconv"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
)

const (
	// TypePayoutReleased is emitted when the treasury funds a whitelisted bond.
	TypePayoutReleased = "treasury.payout_released"
	// TypeTreasuryWithdrawal is emitted when the policy withdraws an asset.
	TypeTreasuryWithdrawal = "treasury.withdrawal"
	// TypeBondWhitelistUpdated is emitted when a bond is added to or removed
	// from the whitelist.
	TypeBondWhitelistUpdated = "treasury.whitelist_updated"
)

type PayoutReleased struct {
	Treasury crypto.Address
	Bond     crypto.Address
	Asset    types.Asset
	Amount   decimal.Uint
}

func (PayoutReleased) EventType() string { return TypePayoutReleased }

func (e PayoutReleased) Event() *types.Event {
	return &types.Event{
		Type: TypePayoutReleased,
		Attributes: map[string]string{
			"treasury": e.Treasury.String(),
			"bond":     e.Bond.String(),
			"asset":    e.Asset.String(),
			"amount":   e.Amount.String(),
		},
	}
}

type TreasuryWithdrawal struct {
	Treasury  crypto.Address
	Recipient crypto.Address
	Asset     types.Asset
	Amount    decimal.Uint
}

func (TreasuryWithdrawal) EventType() string { return TypeTreasuryWithdrawal }

func (e TreasuryWithdrawal) Event() *types.Event {
	return &types.Event{
		Type: TypeTreasuryWithdrawal,
		Attributes: map[string]string{
			"treasury":  e.Treasury.String(),
			"recipient": e.Recipient.String(),
			"asset":     e.Asset.String(),
			"amount":    e.Amount.String(),
		},
	}
}

type BondWhitelistUpdated struct {
	Treasury    crypto.Address
	Bond        crypto.Address
	Whitelisted bool
}

func (BondWhitelistUpdated) EventType() string { return TypeBondWhitelistUpdated }

func (e BondWhitelistUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeBondWhitelistUpdated,
		Attributes: map[string]string{
			"treasury":    e.Treasury.String(),
			"bond":        e.Bond.String(),
			"whitelisted": strconv.FormatBool(e.Whitelisted),
		},
	}
}
