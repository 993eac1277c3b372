package common

import (
	"errors"

	"olympuspro/core/types"
	"olympuspro/crypto"
)

var (
	// ErrUnauthorized is returned when a privileged operation is invoked by
	// anyone other than the configured policy.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAmountZero rejects deposits and transfers of nothing.
	ErrAmountZero = errors.New("amount is zero")
	// ErrUnknownMessage is returned when a message carries no known variant.
	ErrUnknownMessage = errors.New("unknown message")
)

// AssertPolicy fails with ErrUnauthorized unless the caller is the policy.
func AssertPolicy(info types.MessageInfo, policy crypto.Address) error {
	if policy.IsZero() || !info.Sender.Equal(policy) {
		return ErrUnauthorized
	}
	return nil
}
