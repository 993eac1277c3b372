package events

import (
	"strconv"

	"olympuspro/core/types"
	"olympuspro/crypto"
)

const (
	// TypeBondRegistered is emitted when the factory records a deployed bond.
	TypeBondRegistered = "factory.bond_registered"
	// TypeSubsidyControllerUpdated is emitted when the router maps or unmaps
	// a controller.
	TypeSubsidyControllerUpdated = "subsidy.controller_updated"
)

type BondRegistered struct {
	Factory  crypto.Address
	BondID   uint64
	Bond     crypto.Address
	Treasury crypto.Address
}

func (BondRegistered) EventType() string { return TypeBondRegistered }

func (e BondRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeBondRegistered,
		Attributes: map[string]string{
			"factory":  e.Factory.String(),
			"bondId":   strconv.FormatUint(e.BondID, 10),
			"bond":     e.Bond.String(),
			"treasury": e.Treasury.String(),
		},
	}
}

type SubsidyControllerUpdated struct {
	Router     crypto.Address
	Controller crypto.Address
	Bond       crypto.Address
	Removed    bool
}

func (SubsidyControllerUpdated) EventType() string { return TypeSubsidyControllerUpdated }

func (e SubsidyControllerUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeSubsidyControllerUpdated,
		Attributes: map[string]string{
			"router":     e.Router.String(),
			"controller": e.Controller.String(),
			"bond":       e.Bond.String(),
			"removed":    strconv.FormatBool(e.Removed),
		},
	}
}
