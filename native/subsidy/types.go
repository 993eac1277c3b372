package subsidy

import (
	"errors"

	"olympuspro/crypto"
)

var (
	// ErrControllerNotFound rejects PaySubsidy from an unmapped sender.
	ErrControllerNotFound = errors.New("subsidy controller not found")

	errNilState       = errors.New("subsidy engine: state not configured")
	errNilQuerier     = errors.New("subsidy engine: querier not configured")
	errConfigNotFound = errors.New("subsidy engine: config not found")
	errInvalidPolicy  = errors.New("subsidy engine: policy required")
)

// Config holds the router's policy owner.
type Config struct {
	Policy crypto.Address
}

func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
