package treasury

import (
	"errors"

	"olympuspro/core/types"
	"olympuspro/crypto"
)

var (
	// ErrNotWhitelisted rejects payout requests from unknown bonds.
	ErrNotWhitelisted = errors.New("not whitelisted")

	errNilState        = errors.New("treasury engine: state not configured")
	errNilQuerier      = errors.New("treasury engine: querier not configured")
	errConfigNotFound  = errors.New("treasury engine: config not found")
	errInvalidPolicy   = errors.New("treasury engine: initial owner required")
	errInvalidReceiver = errors.New("treasury engine: recipient required")
)

// Config stores the payout asset custodied by the treasury and its policy
// owner.
type Config struct {
	PayoutToken types.Asset
	Policy      crypto.Address
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
