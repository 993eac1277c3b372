package config

import (
	"fmt"
	"strings"
)

// MinVestingTerm mirrors the bond contract's lower bound so bad files fail
// before anything is deployed.
const MinVestingTerm = uint64(129600)

// Validate checks the deployment for references and terms the contracts would
// reject.
func (d *Deployment) Validate() error {
	if d.Accounts.Policy.IsZero() {
		return fmt.Errorf("accounts: policy required")
	}
	if d.Accounts.DAO.IsZero() {
		return fmt.Errorf("accounts: dao required")
	}
	if d.Accounts.OlympusTreasury.IsZero() {
		return fmt.Errorf("accounts: olympus_treasury required")
	}
	for i, coin := range d.Native {
		if coin.Address.IsZero() || coin.Denom == "" {
			return fmt.Errorf("native[%d]: address and denom required", i)
		}
	}
	seen := make(map[string]struct{}, len(d.Tokens))
	for i, tok := range d.Tokens {
		if tok.Key == "" {
			return fmt.Errorf("tokens[%d]: key required", i)
		}
		if _, dup := seen[tok.Key]; dup {
			return fmt.Errorf("tokens[%d]: duplicate key %q", i, tok.Key)
		}
		seen[tok.Key] = struct{}{}
		if tok.Symbol == "" {
			return fmt.Errorf("tokens[%d]: symbol required", i)
		}
	}
	for i := range d.Bonds {
		if err := d.validateBond(&d.Bonds[i]); err != nil {
			return fmt.Errorf("bonds[%d]: %w", i, err)
		}
	}
	return nil
}

func (d *Deployment) validateBond(b *Bond) error {
	if err := d.validateRef(b.PayoutToken); err != nil {
		return fmt.Errorf("payout_token: %w", err)
	}
	if !strings.HasPrefix(b.PayoutToken, TokenRefPrefix) {
		return fmt.Errorf("payout_token must reference a token")
	}
	if err := d.validateRef(b.PrincipalToken); err != nil {
		return fmt.Errorf("principal_token: %w", err)
	}
	if b.InitialOwner.IsZero() {
		return fmt.Errorf("initial_owner required")
	}
	if b.Terms.ControlVariable.IsZero() {
		return fmt.Errorf("terms: control_variable required")
	}
	if b.Terms.VestingTerm < MinVestingTerm {
		return fmt.Errorf("terms: vesting_term must be at least %d", MinVestingTerm)
	}
	if b.Adjustment != nil && b.Adjustment.Increment.IsZero() {
		return fmt.Errorf("adjustment: increment required")
	}
	if b.Funding != nil && (b.Funding.From.IsZero() || b.Funding.Amount.IsZero()) {
		return fmt.Errorf("funding: from and amount required")
	}
	return nil
}

func (d *Deployment) validateRef(ref string) error {
	switch {
	case strings.HasPrefix(ref, TokenRefPrefix):
		key := strings.TrimPrefix(ref, TokenRefPrefix)
		if _, ok := d.Token(key); !ok {
			return fmt.Errorf("unknown token %q", key)
		}
		return nil
	case strings.HasPrefix(ref, NativeRefPrefix):
		if strings.TrimPrefix(ref, NativeRefPrefix) == "" {
			return fmt.Errorf("native denom required")
		}
		return nil
	default:
		return fmt.Errorf("asset reference %q must start with %q or %q", ref, TokenRefPrefix, NativeRefPrefix)
	}
}
