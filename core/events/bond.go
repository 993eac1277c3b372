package events

import (
	"strconv"

	"olympuspro/core/decimal"
	"olympuspro/core/types"
	"olympuspro/crypto"
)

const (
	// TypeBondDeposited is emitted when principal is exchanged for a vesting payout.
	TypeBondDeposited = "bond.deposited"
	// TypeBondRedeemed is emitted when vested payout is released to a depositor.
	TypeBondRedeemed = "bond.redeemed"
	// TypeControlVariableAdjusted is emitted when an adjustment tick fires.
	TypeControlVariableAdjusted = "bond.control_variable_adjusted"
	// TypeBondInitialized is emitted when terms and initial debt are set.
	TypeBondInitialized = "bond.initialized"
	// TypeSubsidyPaid is emitted when the subsidy counter is settled.
	TypeSubsidyPaid = "bond.subsidy_paid"
)

type BondDeposited struct {
	Bond      crypto.Address
	Depositor crypto.Address
	Deposit   decimal.Uint
	Payout    decimal.Uint
	Fee       decimal.Uint
	Expires   uint64
	Price     decimal.Decimal
}

func (BondDeposited) EventType() string { return TypeBondDeposited }

func (e BondDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeBondDeposited,
		Attributes: map[string]string{
			"bond":      e.Bond.String(),
			"depositor": e.Depositor.String(),
			"deposit":   e.Deposit.String(),
			"payout":    e.Payout.String(),
			"fee":       e.Fee.String(),
			"expires":   strconv.FormatUint(e.Expires, 10),
			"price":     e.Price.String(),
		},
	}
}

type BondRedeemed struct {
	Bond      crypto.Address
	Recipient crypto.Address
	Payout    decimal.Uint
	Remaining decimal.Uint
}

func (BondRedeemed) EventType() string { return TypeBondRedeemed }

func (e BondRedeemed) Event() *types.Event {
	return &types.Event{
		Type: TypeBondRedeemed,
		Attributes: map[string]string{
			"bond":      e.Bond.String(),
			"recipient": e.Recipient.String(),
			"payout":    e.Payout.String(),
			"remaining": e.Remaining.String(),
		},
	}
}

type ControlVariableAdjusted struct {
	Bond     crypto.Address
	Initial  decimal.Decimal
	Current  decimal.Decimal
	Rate     decimal.Decimal
	Addition bool
}

func (ControlVariableAdjusted) EventType() string { return TypeControlVariableAdjusted }

func (e ControlVariableAdjusted) Event() *types.Event {
	return &types.Event{
		Type: TypeControlVariableAdjusted,
		Attributes: map[string]string{
			"bond":     e.Bond.String(),
			"initial":  e.Initial.String(),
			"current":  e.Current.String(),
			"rate":     e.Rate.String(),
			"addition": strconv.FormatBool(e.Addition),
		},
	}
}

type BondInitialized struct {
	Bond            crypto.Address
	ControlVariable decimal.Decimal
	VestingTerm     uint64
	InitialDebt     decimal.Uint
}

func (BondInitialized) EventType() string { return TypeBondInitialized }

func (e BondInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeBondInitialized,
		Attributes: map[string]string{
			"bond":            e.Bond.String(),
			"controlVariable": e.ControlVariable.String(),
			"vestingTerm":     strconv.FormatUint(e.VestingTerm, 10),
			"initialDebt":     e.InitialDebt.String(),
		},
	}
}

type SubsidyPaid struct {
	Bond   crypto.Address
	Amount decimal.Uint
}

func (SubsidyPaid) EventType() string { return TypeSubsidyPaid }

func (e SubsidyPaid) Event() *types.Event {
	return &types.Event{
		Type: TypeSubsidyPaid,
		Attributes: map[string]string{
			"bond":   e.Bond.String(),
			"amount": e.Amount.String(),
		},
	}
}
